package bridge

// ListType tags list envelopes; it is never a registered discriminator
const ListType = "list"

// List wraps a paginated collection returned by the API
type List struct {
	Resource
	items []any
}

func newList(attrs Attributes, items []any) *List {
	l := &List{Resource: newResource(ListType, attrs), items: items}
	if items != nil {
		l.values["data"] = items
	}
	return l
}

// Data returns the materialized items
func (l *List) Data() []any {
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of items in this page
func (l *List) Len() int { return len(l.items) }

// Count returns the declared count, or the page size when the API omitted it
func (l *List) Count() int {
	if n, ok := l.values.Int("count"); ok {
		return int(n)
	}
	return len(l.items)
}

// HasMore reports whether another page follows
func (l *List) HasMore() bool { return l.values.Bool("has_more") }

// URL returns the list's url attribute, when present
func (l *List) URL() string { return l.String("url") }

// Empty reports whether the page holds no items
func (l *List) Empty() bool { return len(l.items) == 0 }

// At returns the item at index i, or nil when out of range
func (l *List) At(i int) any {
	if i < 0 || i >= len(l.items) {
		return nil
	}
	return l.items[i]
}

// First returns the first item, or nil
func (l *List) First() any { return l.At(0) }

// Last returns the last item, or nil
func (l *List) Last() any { return l.At(len(l.items) - 1) }

// Objects returns the items that were materialized into typed objects
func (l *List) Objects() []Object {
	var out []Object
	for _, it := range l.items {
		if o, ok := it.(Object); ok {
			out = append(out, o)
		}
	}
	return out
}
