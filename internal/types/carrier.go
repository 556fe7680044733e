package types

// Carrier split/join (spec §4.1 "Carrier split/join"). A carrier is a
// constructor name registered against a domain; splitCarrier/
// joinCarrier let the rest of the system treat e.g. Result<V, E> as a
// (value, state) pair without hard-coding "Result" anywhere outside
// this registry.
//
// Grounded loosely on the teacher's hard-coded Row{Kind: EffectRow}
// special case in row_unification.go — generalized here into a
// registrable table because the teacher never had *named* carriers
// spanning multiple domains (see DESIGN.md).
type CarrierRule struct {
	Domain   string
	TypeName string
	// ValueIndex/StateIndex select which type arguments are the value
	// and the state component; -1 means "no state component" (the
	// carrier is unary, value only).
	ValueIndex int
	StateIndex int
}

// CarrierRegistry is consulted by Unify and by internal/solver's
// numeric/boolean/branch-join phases.
type CarrierRegistry struct {
	byTypeName map[string]CarrierRule
}

func NewCarrierRegistry() *CarrierRegistry {
	return &CarrierRegistry{byTypeName: make(map[string]CarrierRule)}
}

// DefaultCarrierRegistry registers the "effect" domain's canonical
// Result<V, E> carrier (spec §4.1, §4.9's worked Result example).
func DefaultCarrierRegistry() *CarrierRegistry {
	r := NewCarrierRegistry()
	r.Register(CarrierRule{Domain: "effect", TypeName: "Result", ValueIndex: 0, StateIndex: 1})
	return r
}

func (r *CarrierRegistry) Register(rule CarrierRule) {
	r.byTypeName[rule.TypeName] = rule
}

// Split returns the carrier's domain, value, and state components if
// t is a registered carrier constructor.
func (r *CarrierRegistry) Split(t Type) (domain string, value, state Type, ok bool) {
	c, isCon := t.(*Constructor)
	if !isCon {
		return "", nil, nil, false
	}
	rule, known := r.byTypeName[c.Name]
	if !known {
		return "", nil, nil, false
	}
	if rule.ValueIndex >= len(c.Args) {
		return "", nil, nil, false
	}
	value = c.Args[rule.ValueIndex]
	if rule.StateIndex >= 0 && rule.StateIndex < len(c.Args) {
		state = c.Args[rule.StateIndex]
	}
	return rule.Domain, value, state, true
}

// Join rebuilds a carrier constructor from its domain, value, and
// state, using a carrier type registered for domain (which one, if
// several are registered, is not defined). If none is registered it
// returns value unchanged.
func (r *CarrierRegistry) Join(domain string, value, state Type) Type {
	for name, rule := range r.byTypeName {
		if rule.Domain != domain {
			continue
		}
		args := make([]Type, max2(rule.ValueIndex, rule.StateIndex)+1)
		args[rule.ValueIndex] = value
		if rule.StateIndex >= 0 {
			args[rule.StateIndex] = state
		}
		return &Constructor{Name: name, Args: args}
	}
	return value
}

// IsCarrierOf reports whether t is a carrier registered for domain.
func (r *CarrierRegistry) IsCarrierOf(t Type, domain string) bool {
	d, _, _, ok := r.Split(t)
	return ok && d == domain
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}
