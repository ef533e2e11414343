package bridge

import (
	"fmt"
	"regexp"
	"sort"
)

// Constructor builds a typed domain object from normalized attributes
type Constructor func(Attributes) Object

var discriminatorPattern = regexp.MustCompile(`^[a-z][a-z_]*[a-z]$`)

// Registry maps type discriminators to constructors.
// It is populated once at startup and only read afterwards.
type Registry struct {
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor for discriminator. It panics on a duplicate or
// non-canonical discriminator since both are programming errors.
func (r *Registry) Register(discriminator string, constructor Constructor) {
	if !discriminatorPattern.MatchString(discriminator) {
		panic(fmt.Sprintf("bridge: invalid discriminator %q", discriminator))
	}
	if constructor == nil {
		panic(fmt.Sprintf("bridge: nil constructor for %q", discriminator))
	}
	if _, exists := r.constructors[discriminator]; exists {
		panic(fmt.Sprintf("bridge: discriminator %q already registered", discriminator))
	}
	r.constructors[discriminator] = constructor
}

// Lookup returns the constructor for discriminator. Absence is a normal outcome.
func (r *Registry) Lookup(discriminator string) (Constructor, bool) {
	c, ok := r.constructors[discriminator]
	return c, ok
}

// Has reports whether discriminator is registered
func (r *Registry) Has(discriminator string) bool {
	_, ok := r.constructors[discriminator]
	return ok
}

// Discriminators returns the registered discriminators in sorted order
func (r *Registry) Discriminators() []string {
	out := make([]string, 0, len(r.constructors))
	for d := range r.constructors {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the process-wide registry of Bridge resource types
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeWallet, func(a Attributes) Object { return &Wallet{Resource: newResource(TypeWallet, a)} })
	r.Register(TypeCustomer, func(a Attributes) Object { return &Customer{Resource: newResource(TypeCustomer, a)} })
	r.Register(TypeTransactionHistory, func(a Attributes) Object {
		return &TransactionHistory{Resource: newResource(TypeTransactionHistory, a)}
	})
	r.Register(TypeRewardRate, func(a Attributes) Object { return &RewardRate{Resource: newResource(TypeRewardRate, a)} })
	r.Register(TypeKYCLink, func(a Attributes) Object { return &KYCLink{Resource: newResource(TypeKYCLink, a)} })
	r.Register(TypeWebhook, func(a Attributes) Object { return &Webhook{Resource: newResource(TypeWebhook, a)} })
	r.Register(TypeWebhookEvent, func(a Attributes) Object { return &WebhookEvent{Resource: newResource(TypeWebhookEvent, a)} })
	r.Register(TypeWebhookEventDeliveryLog, func(a Attributes) Object {
		return &WebhookEventDeliveryLog{Resource: newResource(TypeWebhookEventDeliveryLog, a)}
	})
	r.Register(TypeVirtualAccount, func(a Attributes) Object {
		return &VirtualAccount{Resource: newResource(TypeVirtualAccount, a)}
	})
	return r
}
