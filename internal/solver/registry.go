// Package solver implements Layer 2 of the pipeline (component C9):
// fixed-phase stub resolution over the substitution Layer 1 left
// behind, plus constraint-label propagation, carrier reification, and
// hole-conflict detection (spec §4.9).
//
// The teacher has no equivalent component in this shape — it solves
// Haskell-style class/instance dictionaries, not gradual-typing holes
// and effect labels — so this package is grounded secondarily on
// internal/types/dictionaries.go and instances.go for the
// "fixed-phase resolution consuming a constraint buffer, mutating a
// running substitution" control-flow shape (see DESIGN.md).
package solver

import (
	"gopkg.in/yaml.v3"
)

// DomainRule describes one constraint-label domain (spec §6
// "Infection registry"): its state kind, how duplicate/flowed labels
// merge, which tag pairs conflict outright, and its return-boundary
// policy.
type DomainRule struct {
	Name         string   `yaml:"name"`
	StateKind    string   `yaml:"stateKind"` // "plain" | "rowbag"
	MergeRow     string   `yaml:"mergeRow"`  // "union" | "keepLeft" | "keepRight"
	ConflictPairs [][2]string `yaml:"conflictPairs"`
	Boundary     string   `yaml:"boundary"` // "" | "MustBeCarrier" | "MustBeEmpty"
}

// OpRule binds an operator to the domain stub it should emit —
// reserved for future operator-level policy extensions; the fixed
// phases (numeric/boolean/calls) do not consult it today.
type OpRule struct {
	Operator string `yaml:"operator"`
	Domain   string `yaml:"domain"`
}

// PolicyRule names a require_exact/any/not_state or require_at_return
// policy attached to a function by name, for declaration-level
// `policy` nodes outside this module's AST surface.
type PolicyRule struct {
	Function string   `yaml:"function"`
	Domain   string   `yaml:"domain"`
	Kind     string   `yaml:"kind"` // "exact" | "any" | "not" | "at_return"
	Tags     []string `yaml:"tags"`
}

// AnnotationRule binds a user-facing `@domain(...)` annotation name to
// the ConstraintSource/Rewrite it should expand to.
type AnnotationRule struct {
	Name   string   `yaml:"name"`
	Domain string   `yaml:"domain"`
	Tags   []string `yaml:"tags"`
}

// InfectionRegistry is the optional, declarative bundle spec §6
// describes. The solver reads it; Layer 1 emits raw stubs regardless
// of whether one is supplied.
type InfectionRegistry struct {
	Domains     []DomainRule     `yaml:"domains"`
	Ops         []OpRule         `yaml:"ops"`
	Policies    []PolicyRule     `yaml:"policies"`
	Annotations []AnnotationRule `yaml:"annotations"`

	byName map[string]DomainRule
}

// LoadInfectionRegistry parses a YAML-encoded registry document (spec
// §6: "parsed from declaration-level domain/op/policy/annotate
// nodes" — here flattened to one document, since this pipeline has no
// separate declaration-node surface for them).
func LoadInfectionRegistry(data []byte) (*InfectionRegistry, error) {
	var r InfectionRegistry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	r.index()
	return &r, nil
}

func (r *InfectionRegistry) index() {
	r.byName = make(map[string]DomainRule, len(r.Domains))
	for _, d := range r.Domains {
		r.byName[d.Name] = d
	}
}

// Domain looks up a declared domain rule by name.
func (r *InfectionRegistry) Domain(name string) (DomainRule, bool) {
	if r == nil {
		return DomainRule{}, false
	}
	if r.byName == nil {
		r.index()
	}
	d, ok := r.byName[name]
	return d, ok
}

// DefaultInfectionRegistry registers the "effect" domain's boundary
// and merge policy spec §4.9's worked Result example assumes even
// with no registry supplied.
func DefaultInfectionRegistry() *InfectionRegistry {
	r := &InfectionRegistry{
		Domains: []DomainRule{
			{Name: "effect", StateKind: "rowbag", MergeRow: "union", Boundary: "MustBeCarrier"},
		},
	}
	r.index()
	return r
}
