package types

import "fmt"

// UnifyReason is the fixed failure taxonomy for unification (spec
// §4.1).
type UnifyReason string

const (
	ReasonTypeMismatch  UnifyReason = "TypeMismatch"
	ReasonArityMismatch UnifyReason = "ArityMismatch"
	ReasonOccursCheck   UnifyReason = "OccursCheck"
)

// UnifyError carries both offending types alongside the reason (spec
// §4.1: "reason is one of {TypeMismatch, ArityMismatch, OccursCheck}
// with both offending types").
type UnifyError struct {
	Reason UnifyReason
	A, B   Type
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("%s: %s vs %s", e.Reason, e.A, e.B)
}

// Unifier bundles the context unification needs beyond the two types
// themselves: the ADT environment (for alias expansion and
// record-sugar arity checks), the carrier registry (for same-domain
// carrier unification), and a fresh-variable source (for the row
// union algorithm's fresh remainder variable). Grounded on the
// teacher's RowUnifier (internal/types/row_unification.go), folded
// into the same struct as ordinary structural unification rather than
// being a separate pass, per spec §4.1's single `unify` entry point.
type Unifier struct {
	ADTEnv   *ADTEnv
	Carriers *CarrierRegistry
	Fresh    VarFactory
}

func NewUnifier(adtEnv *ADTEnv, carriers *CarrierRegistry, fresh VarFactory) *Unifier {
	if carriers == nil {
		carriers = DefaultCarrierRegistry()
	}
	return &Unifier{ADTEnv: adtEnv, Carriers: carriers, Fresh: fresh}
}

// Unify implements spec §4.1's unification rules over a running
// substitution that is applied to both sides first.
func (u *Unifier) Unify(a, b Type) (Subst, error) {
	return u.unify(a, b, Subst{})
}

// UnifyWith unifies a and b under an already-accumulated substitution,
// returning the composed result — used by callers (internal/infer,
// internal/solver) threading a running ctx.subst through many calls.
func (u *Unifier) UnifyWith(a, b Type, s Subst) (Subst, error) {
	return u.unify(Apply(s, a), Apply(s, b), s)
}

func (u *Unifier) unify(a, b Type, s Subst) (Subst, error) {
	a = Apply(s, a)
	b = Apply(s, b)

	// Gradual typing: a hole on either side always succeeds, binding
	// nothing (spec §4.1).
	if IsHole(a) || IsHole(b) {
		return s, nil
	}

	// Var binds the other side after an occurs check.
	if av, ok := a.(*Var); ok {
		return u.bindVar(av, b, s)
	}
	if bv, ok := b.(*Var); ok {
		return u.bindVar(bv, a, s)
	}

	// Alias expansion before the usual rules (spec §4.1).
	if ac, ok := a.(*Constructor); ok {
		if expanded, isAlias := u.ADTEnv.ResolveAlias(ac.Name, ac.Args); isAlias {
			return u.unify(expanded, b, s)
		}
	}
	if bc, ok := b.(*Constructor); ok {
		if expanded, isAlias := u.ADTEnv.ResolveAlias(bc.Name, bc.Args); isAlias {
			return u.unify(a, expanded, s)
		}
	}

	switch x := a.(type) {
	case *Primitive:
		y, ok := b.(*Primitive)
		if !ok || x.Name != y.Name {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		return s, nil

	case *Func:
		y, ok := b.(*Func)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		s, err := u.unify(x.From, y.From, s)
		if err != nil {
			return nil, err
		}
		return u.unify(x.To, y.To, s)

	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		if len(x.Elements) != len(y.Elements) {
			return nil, &UnifyError{Reason: ReasonArityMismatch, A: a, B: b}
		}
		var err error
		for i := range x.Elements {
			s, err = u.unify(x.Elements[i], y.Elements[i], s)
			if err != nil {
				return nil, err
			}
		}
		return s, nil

	case *Array:
		y, ok := b.(*Array)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		if x.Length != y.Length {
			return nil, &UnifyError{Reason: ReasonArityMismatch, A: a, B: b}
		}
		return u.unify(x.Element, y.Element, s)

	case *Record:
		y, ok := b.(*Record)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		if len(x.Fields) != len(y.Fields) {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		var err error
		for name, xt := range x.Fields {
			yt, ok := y.Fields[name]
			if !ok {
				return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
			}
			s, err = u.unify(xt, yt, s)
			if err != nil {
				return nil, err
			}
		}
		return s, nil

	case *Constructor:
		y, ok := b.(*Constructor)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		return u.unifyConstructors(x, y, s)

	case *EffectRow:
		y, ok := b.(*EffectRow)
		if !ok {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
		}
		return u.unifyRows(x, y, s)
	}

	return nil, &UnifyError{Reason: ReasonTypeMismatch, A: a, B: b}
}

func (u *Unifier) unifyConstructors(x, y *Constructor, s Subst) (Subst, error) {
	// (a) same-domain carriers unify value/state components instead of
	// requiring identical constructor names.
	if u.Carriers != nil {
		xd, xv, xst, xok := u.Carriers.Split(x)
		yd, yv, yst, yok := u.Carriers.Split(y)
		if xok && yok && xd == yd {
			var err error
			s, err = u.unify(xv, yv, s)
			if err != nil {
				return nil, err
			}
			if xst != nil && yst != nil {
				return u.unify(xst, yst, s)
			}
			return s, nil
		}
	}

	// (b) fixed numeric-compatibility table.
	if x.Name != y.Name && NumericCompatible(x.Name, y.Name) && len(x.Args) == 0 && len(y.Args) == 0 {
		return s, nil
	}

	// (c) bare vs. record-sugar arity mismatch, when the ADT declares
	// record fields of that arity.
	if x.Name == y.Name && len(x.Args) != len(y.Args) {
		n := len(x.Args)
		if len(y.Args) > n {
			n = len(y.Args)
		}
		if u.ADTEnv != nil && u.ADTEnv.HasRecordArity(x.Name, n) {
			// Sugar: the shorter side is treated as matching on
			// whichever args are present; excess args on the longer
			// side are accepted without further constraint.
			shorter, longer := x.Args, y.Args
			if len(y.Args) < len(x.Args) {
				shorter, longer = y.Args, x.Args
			}
			var err error
			for i := range shorter {
				s, err = u.unify(shorter[i], longer[i], s)
				if err != nil {
					return nil, err
				}
			}
			return s, nil
		}
		return nil, &UnifyError{Reason: ReasonArityMismatch, A: x, B: y}
	}

	if x.Name != y.Name {
		return nil, &UnifyError{Reason: ReasonTypeMismatch, A: x, B: y}
	}
	if len(x.Args) != len(y.Args) {
		return nil, &UnifyError{Reason: ReasonArityMismatch, A: x, B: y}
	}
	var err error
	for i := range x.Args {
		s, err = u.unify(x.Args[i], y.Args[i], s)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// bindVar binds v to t after an occurs check, with the degenerate
// row-polymorphic exception from spec §3: EffectRow(cases, tail=v)
// with v unbound elsewhere in the row is allowed (v binds to the
// closed row with its own tail variable removed).
func (u *Unifier) bindVar(v *Var, t Type, s Subst) (Subst, error) {
	if vt, ok := t.(*Var); ok && vt.ID == v.ID {
		return s, nil
	}
	if row, ok := t.(*EffectRow); ok && row.Tail != nil && row.Tail.ID == v.ID {
		closed := &EffectRow{Cases: row.Cases, Tail: nil}
		if Occurs(v.ID, closed) {
			return nil, &UnifyError{Reason: ReasonOccursCheck, A: v, B: t}
		}
		out := Compose(Subst{v.ID: closed}, s)
		return out, nil
	}
	if Occurs(v.ID, t) {
		return nil, &UnifyError{Reason: ReasonOccursCheck, A: v, B: t}
	}
	out := Compose(Subst{v.ID: t}, s)
	return out, nil
}

// unifyRows implements row union semantics (spec §4.1): common labels
// unify payload-wise; leftover labels on one side are pushed into the
// other side's tail as a new closed remainder; tail-to-tail unification
// closes the loop with a fresh shared remainder variable. Grounded
// directly on the teacher's RowUnifier.UnifyRows algorithm
// (internal/types/row_unification.go).
func (u *Unifier) unifyRows(r1, r2 *EffectRow, s Subst) (Subst, error) {
	only1 := map[string]Type{}
	only2 := map[string]Type{}
	var err error

	for label, t1 := range r1.Cases {
		if t2, ok := r2.Cases[label]; ok {
			if t1 != nil && t2 != nil {
				s, err = u.unify(t1, t2, s)
				if err != nil {
					return nil, err
				}
			}
		} else {
			only1[label] = t1
		}
	}
	for label, t2 := range r2.Cases {
		if _, ok := r1.Cases[label]; !ok {
			only2[label] = t2
		}
	}

	switch {
	case r1.Tail == nil && r2.Tail == nil:
		if len(only1) > 0 || len(only2) > 0 {
			return nil, &UnifyError{Reason: ReasonTypeMismatch, A: r1, B: r2}
		}
		return s, nil

	case r1.Tail != nil && r2.Tail == nil:
		closed := &EffectRow{Cases: only2, Tail: nil}
		return u.bindVar(r1.Tail, closed, s)

	case r1.Tail == nil && r2.Tail != nil:
		closed := &EffectRow{Cases: only1, Tail: nil}
		return u.bindVar(r2.Tail, closed, s)

	default: // both open
		if r1.Tail.ID == r2.Tail.ID {
			if len(only1) > 0 || len(only2) > 0 {
				return nil, &UnifyError{Reason: ReasonTypeMismatch, A: r1, B: r2}
			}
			return s, nil
		}
		fresh := u.Fresh.FreshVar()
		s, err = u.bindVar(r1.Tail, &EffectRow{Cases: only2, Tail: fresh}, s)
		if err != nil {
			return nil, err
		}
		return u.bindVar(r2.Tail, &EffectRow{Cases: only1, Tail: fresh}, s)
	}
}
