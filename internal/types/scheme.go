package types

// Scheme is a polymorphic type: a pair of universally quantified
// variables and a body (spec §3). Grounded on the teacher's
// TypeScheme.Instantiate (internal/types/types.go) and
// typechecker_core.go's generalize.
type Scheme struct {
	Quantifiers []VarID
	Body        Type
}

// Mono wraps a monomorphic type as a scheme with no quantifiers.
func Mono(t Type) *Scheme { return &Scheme{Body: t} }

// FreeVars returns the free (non-quantified) variables of the scheme's
// body — used by generalize to decide what may still be quantified.
func (s *Scheme) FreeVars() map[VarID]bool {
	bound := make(map[VarID]bool, len(s.Quantifiers))
	for _, q := range s.Quantifiers {
		bound[q] = true
	}
	free := make(map[VarID]bool)
	collectFreeVars(s.Body, bound, free)
	return free
}

func collectFreeVars(t Type, bound, out map[VarID]bool) {
	switch n := t.(type) {
	case *Var:
		if !bound[n.ID] {
			out[n.ID] = true
		}
	case *Func:
		collectFreeVars(n.From, bound, out)
		collectFreeVars(n.To, bound, out)
	case *Tuple:
		for _, e := range n.Elements {
			collectFreeVars(e, bound, out)
		}
	case *Array:
		collectFreeVars(n.Element, bound, out)
	case *Record:
		for _, f := range n.Fields {
			collectFreeVars(f, bound, out)
		}
	case *Constructor:
		for _, a := range n.Args {
			collectFreeVars(a, bound, out)
		}
	case *EffectRow:
		for _, p := range n.Cases {
			if p != nil {
				collectFreeVars(p, bound, out)
			}
		}
		if n.Tail != nil && !bound[n.Tail.ID] {
			out[n.Tail.ID] = true
		}
	}
}

// VarFactory allocates fresh VarIDs. internal/infer.Context implements
// this with a per-context counter (spec §5); types never allocates an
// id on its own.
type VarFactory interface {
	FreshVar() *Var
}

// Instantiate replaces every quantified variable with a fresh one
// supplied by fresh, producing a monotype (spec §4.1).
func (s *Scheme) Instantiate(fresh VarFactory) Type {
	if len(s.Quantifiers) == 0 {
		return s.Body
	}
	sub := make(Subst, len(s.Quantifiers))
	for _, q := range s.Quantifiers {
		sub[q] = fresh.FreshVar()
	}
	return Apply(sub, s.Body)
}

// EnvFreeVars is implemented by anything generalize can ask "which
// variables are already bound in the environment and must not be
// generalized" (spec §4.6: generalize against the substitution-applied
// environment).
type EnvFreeVars interface {
	FreeVars() map[VarID]bool
}

// Generalize quantifies every free variable of t that is not free in
// env (spec §4.6).
func Generalize(t Type, env EnvFreeVars) *Scheme {
	envFree := env.FreeVars()
	tFree := make(map[VarID]bool)
	collectFreeVars(t, nil, tFree)

	var quantifiers []VarID
	for v := range tFree {
		if !envFree[v] {
			quantifiers = append(quantifiers, v)
		}
	}
	return &Scheme{Quantifiers: quantifiers, Body: t}
}
