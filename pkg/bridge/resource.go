package bridge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Attributes is a normalized JSON object
type Attributes map[string]any

// Get returns the raw value stored under key
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

// String returns the value under key when it is a string or a JSON number
func (a Attributes) String(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// Bool returns the value under key when it is a boolean
func (a Attributes) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// Int returns the value under key as an integer
func (a Attributes) Int(key string) (int64, bool) {
	return toInt(a[key])
}

// Map returns the nested object under key
func (a Attributes) Map(key string) Attributes {
	switch v := a[key].(type) {
	case Attributes:
		return v
	case Object:
		return v.Attributes()
	}
	return nil
}

// Slice returns the array under key
func (a Attributes) Slice(key string) []any {
	s, _ := a[key].([]any)
	return s
}

// Strings returns the string elements of the array under key
func (a Attributes) Strings(key string) []string {
	var out []string
	for _, v := range a.Slice(key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether every key is present
func (a Attributes) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one key is present
func (a Attributes) HasAny(keys ...string) bool {
	for _, k := range keys {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}

// Keys returns the attribute names in sorted order
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Object is a materialized Bridge resource
type Object interface {
	Type() string
	Attributes() Attributes
}

// mutableObject is implemented by every type embedding Resource
type mutableObject interface {
	Object
	base() *Resource
}

// Resource is the attribute bag shared by every typed Bridge object
type Resource struct {
	object  string
	values  Attributes
	deleted bool
}

// NewResource builds an untyped-by-registry resource with the given tag
func NewResource(object string, attrs Attributes) *Resource {
	r := newResource(object, attrs)
	return &r
}

func newResource(object string, attrs Attributes) Resource {
	if attrs == nil {
		attrs = Attributes{}
	}
	return Resource{object: object, values: attrs.Clone()}
}

func (r *Resource) base() *Resource { return r }

// Type returns the resource's discriminator
func (r *Resource) Type() string { return r.object }

// Attributes returns a copy of the attribute map
func (r *Resource) Attributes() Attributes { return r.values.Clone() }

// Get returns the attribute stored under key
func (r *Resource) Get(key string) (any, bool) { return r.values.Get(key) }

// String returns a string attribute
func (r *Resource) String(key string) string { return r.values.String(key) }

// ID returns the resource identifier
func (r *Resource) ID() string { return r.values.String("id") }

// Time parses an RFC 3339 timestamp attribute. Missing or malformed values yield the zero time.
func (r *Resource) Time(key string) time.Time {
	s := r.values.String(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Decimal parses a numeric attribute that may be encoded as a string or number
func (r *Resource) Decimal(key string) (decimal.Decimal, bool) {
	return toDecimal(r.values[key])
}

// Keys returns the attribute names in sorted order
func (r *Resource) Keys() []string { return r.values.Keys() }

// Deleted reports whether the resource was deleted through the client
func (r *Resource) Deleted() bool { return r.deleted }

// MarshalJSON encodes the attribute map
func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

func (r *Resource) merge(attrs Attributes) {
	for k, v := range attrs {
		r.values[k] = v
	}
}

func (r *Resource) markDeleted() {
	r.deleted = true
	r.values["deleted"] = true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return decimal.Zero, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func attributesOf(v any) Attributes {
	switch t := v.(type) {
	case Object:
		return t.Attributes()
	case Attributes:
		return t
	case map[string]any:
		return Attributes(t)
	}
	return nil
}

func idOf(v any) string {
	return attributesOf(v).String("id")
}

func describe(v any) string {
	if o, ok := v.(Object); ok {
		return o.Type()
	}
	return fmt.Sprintf("%T", v)
}
