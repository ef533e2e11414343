package bridge

import (
	"fmt"

	"github.com/rail-service/bridge_sdk/pkg/metrics"
	"go.uber.org/zap"
)

// Materializer turns decoded JSON into domain objects
type Materializer struct {
	registry *Registry
	logger   *zap.Logger
}

// NewMaterializer creates a materializer backed by reg
func NewMaterializer(reg *Registry, logger *zap.Logger) *Materializer {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Materializer{registry: reg, logger: logger}
}

// Materialize converts value into a *List, a registered Object, an
// Attributes map or leaves it unchanged when it is a scalar.
//
// A recognised resource is built from its attributes as-is; nested objects
// are only converted for untyped maps and list items.
func (m *Materializer) Materialize(value any, hint string) any {
	return m.materialize(normalize(value), hint)
}

func (m *Materializer) materialize(value any, hint string) any {
	switch v := value.(type) {
	case Attributes:
		return m.materializeObject(v, hint)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = m.materialize(item, hint)
		}
		return out
	default:
		return value
	}
}

func (m *Materializer) materializeObject(attrs Attributes, hint string) any {
	tag := inferObject(m.registry, attrs, hint)
	switch tag {
	case ListType:
		return m.buildList(attrs, hint)
	case "":
		m.logger.Debug("No resource type matched, keeping plain map",
			zap.String("hint", hint),
			zap.Strings("keys", attrs.Keys()))
		metrics.MaterializeUnmatchedTotal.Inc()

		out := make(Attributes, len(attrs))
		for k, v := range attrs {
			out[k] = m.materialize(v, "")
		}
		return out
	default:
		construct, _ := m.registry.Lookup(tag)
		return construct(attrs)
	}
}

func (m *Materializer) buildList(attrs Attributes, hint string) *List {
	raw, ok := attrs["data"].([]any)
	if !ok {
		return newList(attrs, nil)
	}
	items := make([]any, len(raw))
	for i, item := range raw {
		items[i] = m.materialize(item, hint)
	}
	return newList(attrs, items)
}

// normalize converts every object in value into Attributes with string keys.
// Already materialized objects are flattened back to their attributes.
func normalize(value any) any {
	switch v := value.(type) {
	case Object:
		return normalize(v.Attributes())
	case Attributes:
		return normalizeMap(v)
	case map[string]any:
		return normalizeMap(v)
	case map[any]any:
		out := make(Attributes, len(v))
		for k, val := range v {
			out[keyString(k)] = normalize(val)
		}
		return out
	case map[string]string:
		out := make(Attributes, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeMap(item)
		}
		return out
	case []Attributes:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeMap(item)
		}
		return out
	case []Object:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}

func normalizeMap(m map[string]any) Attributes {
	out := make(Attributes, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

func keyString(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(k)
}
