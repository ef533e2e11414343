package bridge

// shapePattern recognises a resource from the keys it carries: every
// required key must be present and, when anyOf is set, at least one of it.
type shapePattern struct {
	discriminator string
	required      []string
	anyOf         []string
}

func (p shapePattern) matches(a Attributes) bool {
	if !a.Has(p.required...) {
		return false
	}
	return len(p.anyOf) == 0 || a.HasAny(p.anyOf...)
}

// Evaluated in order; the first full match wins.
var shapePatterns = []shapePattern{
	{discriminator: TypeWallet, required: []string{"id", "chain", "address"}},
	{discriminator: TypeCustomer, required: []string{"id"}, anyOf: []string{"email", "name", "customer_type"}},
	{discriminator: TypeVirtualAccount, required: []string{"id", "account_number"}},
	{discriminator: TypeTransactionHistory, required: []string{"id"}, anyOf: []string{"amount", "transaction_date"}},
	{discriminator: TypeKYCLink, required: []string{"id", "redirect_url"}},
}

// Infer decides which type value represents. It returns ListType for list
// envelopes, a registered discriminator for resources, or "" when the value
// is untyped. The payload is value with its keys normalized.
//
// Strategies, first match wins: a "data" key makes a list; an "object"
// field naming a known type; the caller's hint when known; the shape table.
func Infer(reg *Registry, value any, hint string) (string, any) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	payload := normalize(value)
	attrs, ok := payload.(Attributes)
	if !ok {
		return "", payload
	}
	return inferObject(reg, attrs, hint), payload
}

func inferObject(reg *Registry, attrs Attributes, hint string) string {
	if _, ok := attrs["data"]; ok {
		return ListType
	}
	if object, ok := attrs["object"].(string); ok && reg.Has(object) {
		return object
	}
	if hint != "" && reg.Has(hint) {
		return hint
	}
	return matchShape(reg, attrs)
}

func matchShape(reg *Registry, attrs Attributes) string {
	for _, p := range shapePatterns {
		if p.matches(attrs) && reg.Has(p.discriminator) {
			return p.discriminator
		}
	}
	return ""
}
