package infer

import (
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// UnknownInfo is the hole registry's value type (spec §3 "Hole
// registry"): why a hole exists, and what kind of failure produced it.
type UnknownInfo struct {
	Provenance types.Provenance
	Category   HoleCategory
	Origin     ids.NodeID
	Related    []ids.NodeID
}

type HoleCategory string

const (
	CategoryFree         HoleCategory = "free"
	CategoryLocalConflict HoleCategory = "local_conflict"
	CategoryIncomplete    HoleCategory = "incomplete"
	CategoryInternal      HoleCategory = "internal"
)

// Context is the mutable aggregate threaded through every inference
// call (spec §4.4). Grounded on
// internal/types/typechecker_core.go's CoreTypeChecker/InferenceContext
// shape: one struct per compilation unit, mutated in place, never
// shared across units (spec §5).
type Context struct {
	Env     *Env
	ADTEnv  *types.ADTEnv
	Subst   types.Subst
	Carriers *types.CarrierRegistry

	AllBindings map[string]*types.Scheme

	Marks         map[ids.NodeID]Mark
	TypeExprMarks map[ids.TypeExprID]TypeExprMark
	NonExhaustive map[ids.NodeID]MarkNonExhaustive

	NodeTypes map[ids.NodeID]types.Type
	Holes     map[ids.NodeID]UnknownInfo

	Stubs       []Stub
	Diagnostics diag.List

	Registry *ids.Registry

	// OpClasses maps a user-declared infix/prefix operator to its
	// declared class ("numeric" | "boolean" | ""), populated while
	// processing InfixDeclaration/PrefixDeclaration nodes (spec §4.6:
	// "Record a Numeric or Boolean stub when the operator's class is
	// known from the declaration").
	OpClasses map[string]string

	nextVar types.VarID
}

// NewContext creates a fresh per-unit context (spec §4.4). reg is the
// node/span registry the caller used to build the AST (needed when
// inference itself introduces nodes, e.g. lowering leftovers or
// materialisation placeholders).
func NewContext(reg *ids.Registry) *Context {
	return &Context{
		Env:           NewEnv(),
		ADTEnv:        types.NewADTEnv(),
		Subst:         types.Subst{},
		Carriers:      types.DefaultCarrierRegistry(),
		AllBindings:   map[string]*types.Scheme{},
		Marks:         map[ids.NodeID]Mark{},
		TypeExprMarks: map[ids.TypeExprID]TypeExprMark{},
		NonExhaustive: map[ids.NodeID]MarkNonExhaustive{},
		NodeTypes:     map[ids.NodeID]types.Type{},
		Holes:         map[ids.NodeID]UnknownInfo{},
		Registry:      reg,
		OpClasses:     map[string]string{},
	}
}

// FreshVar implements types.VarFactory with a per-context monotonic
// counter (spec §5: counters must never be process-global).
func (c *Context) FreshVar() *types.Var {
	c.nextVar++
	return &types.Var{ID: c.nextVar}
}

// Unifier returns a types.Unifier bound to this context's ADT/carrier
// tables and fresh-var counter.
func (c *Context) Unifier() *types.Unifier {
	return types.NewUnifier(c.ADTEnv, c.Carriers, c)
}

// Unify attempts to unify a and b, composing any resulting
// substitution into c.Subst on success. Returns the success flag and
// the error (if any) so callers decide whether to mark (spec §4.4:
// "unify(a,b) returning a boolean and storing the last failure").
func (c *Context) Unify(a, b types.Type) (bool, *types.UnifyError) {
	s, err := c.Unifier().UnifyWith(a, b, c.Subst)
	if err != nil {
		var uerr *types.UnifyError
		if ue, ok := err.(*types.UnifyError); ok {
			uerr = ue
		}
		return false, uerr
	}
	c.Subst = s
	return true, nil
}

// Apply applies the context's current substitution to t.
func (c *Context) Apply(t types.Type) types.Type { return types.Apply(c.Subst, t) }

// WithScopedEnv pushes a new environment frame, runs fn, then
// restores the previous frame regardless of how fn returns (spec
// §4.4 withScopedEnv / §5: "restored on every exit path").
func (c *Context) WithScopedEnv(fn func()) {
	saved := c.Env
	c.Env = c.Env.Push()
	defer func() { c.Env = saved }()
	fn()
}

// RecordExprType stores the substitution-applied type of expr at
// nodeTypes[id] and, if it is still a hole, registers it in the hole
// table (spec §4.6 "recordExprType").
func (c *Context) RecordExprType(id ids.NodeID, t types.Type) types.Type {
	applied := c.Apply(t)
	c.NodeTypes[id] = applied
	if u, ok := applied.(*types.Unknown); ok {
		c.registerHole(id, u.Provenance)
	}
	return applied
}

func (c *Context) registerHole(id ids.NodeID, prov types.Provenance) {
	category := CategoryIncomplete
	switch prov.(type) {
	case types.ErrorFreeVar:
		category = CategoryFree
	case types.ErrorNotFunction, types.ErrorOccursCheck, types.ErrorInconsistent:
		category = CategoryLocalConflict
	case types.ErrorInternal:
		category = CategoryInternal
	}
	if _, exists := c.Holes[id]; !exists {
		c.Holes[id] = UnknownInfo{Provenance: prov, Category: category, Origin: id}
	}
}

// Mark records m against its node id, and — unless the failure is a
// pure gradual-typing event between two incomplete holes (spec §7.1)
// — appends a diagnostic.
func (c *Context) Mark(m Mark, reason diag.Reason, details map[string]any) {
	c.Marks[m.NodeID()] = m
	c.NodeTypes[m.NodeID()] = m.Type()
	if u, ok := m.Type().(*types.Unknown); ok {
		c.registerHole(m.NodeID(), u.Provenance)
	}
	if isGradualEvent(details) {
		return
	}
	c.Diagnostics.Add(diag.New(m.NodeID(), reason, details))
}

// isGradualEvent reports whether both sides of an inconsistency mark
// are already-incomplete holes — in which case no diagnostic is
// emitted, only the mark itself (spec §7.1).
func isGradualEvent(details map[string]any) bool {
	expected, hasExpected := details["expected"].(types.Type)
	actual, hasActual := details["actual"].(types.Type)
	if !hasExpected || !hasActual {
		return false
	}
	return types.IsHole(expected) && types.IsHole(actual) && isIncomplete(expected) && isIncomplete(actual)
}

func isIncomplete(t types.Type) bool {
	u, ok := t.(*types.Unknown)
	if !ok {
		return false
	}
	switch u.Provenance.(type) {
	case types.UserHole, types.ExprHole, types.Incomplete:
		return true
	default:
		return false
	}
}

// Emit appends a stub to the constraint-stub log; emission order is
// significant (spec §4.4/§5: parent-before-child, pre-order).
func (c *Context) Emit(s Stub) { c.Stubs = append(c.Stubs, s) }

// Bind adds name to both the current environment frame and the flat
// allBindings record (spec §4.4: "used by the LSP").
func (c *Context) Bind(name string, s *types.Scheme) {
	c.Env.Bind(name, s)
	c.AllBindings[name] = s
}
