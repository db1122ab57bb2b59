package rule

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRule is returned when a rule id is registered twice.
	ErrDuplicateRule = errors.New("duplicate rule registration")
	// ErrRegistrySealed is returned when registering after Seal.
	ErrRegistrySealed = errors.New("rule registry is sealed")
)

// Registry holds the known rules in registration order.
// It is populated once during startup and sealed before the walk begins.
type Registry struct {
	rules  []Rule
	byID   map[string]Rule
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Rule),
	}
}

// Register adds a rule. Duplicate ids are a fatal configuration error.
func (r *Registry) Register(rule Rule) error {
	if r.sealed {
		return fmt.Errorf("%w: cannot add %s", ErrRegistrySealed, rule.ID())
	}
	if _, exists := r.byID[rule.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID())
	}
	r.byID[rule.ID()] = rule
	r.rules = append(r.rules, rule)
	return nil
}

// Seal freezes the registry; later Register calls fail.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Get retrieves a rule by id.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Rules returns all registered rules in registration order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}
