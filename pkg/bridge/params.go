package bridge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"
)

// Params is a loosely typed request payload
type Params map[string]any

// ListParams carries cursor pagination for list endpoints
type ListParams struct {
	Limit         int
	StartingAfter string
	EndingBefore  string
	Extra         Params
}

// Params flattens the list parameters into a payload
func (p ListParams) Params() Params {
	out := Params{}
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Limit > 0 {
		out["limit"] = p.Limit
	}
	if p.StartingAfter != "" {
		out["starting_after"] = p.StartingAfter
	}
	if p.EndingBefore != "" {
		out["ending_before"] = p.EndingBefore
	}
	return out
}

type paramsProvider interface {
	Params() Params
}

// encodeQuery serializes a GET/DELETE payload as query values
func encodeQuery(payload any) (url.Values, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	case paramsProvider:
		return valuesFromMap(p.Params())
	case Params:
		return valuesFromMap(p)
	case map[string]any:
		return valuesFromMap(p)
	case map[string]string:
		v := url.Values{}
		for k, s := range p {
			v.Set(k, s)
		}
		return v, nil
	}

	// Structs go through their JSON representation so json tags apply.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPayloadType, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPayloadType, payload)
	}
	return valuesFromMap(m)
}

func valuesFromMap(m map[string]any) (url.Values, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	v := url.Values{}
	for _, k := range keys {
		switch val := m[k].(type) {
		case nil:
		case []any:
			for _, item := range val {
				v.Add(k, formatValue(item))
			}
		case []string:
			for _, item := range val {
				v.Add(k, item)
			}
		case map[string]any, Params, Attributes:
			return nil, fmt.Errorf("%w: nested object under %q", ErrUnsupportedPayloadType, k)
		default:
			v.Set(k, formatValue(val))
		}
	}
	return v, nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
