package types

// Subst maps unification variables to types (spec §3). Composition is
// left-applied: Apply always walks to a fixed point so that applying a
// substitution twice is a no-op (spec invariant 3 / property P4),
// mirroring the teacher's ApplySubstitution (typechecker_substitution.go).
type Subst map[VarID]Type

// Apply recursively substitutes every variable in t, chasing chains of
// var-to-var bindings until reaching a non-var or an unbound var.
func Apply(s Subst, t Type) Type {
	switch n := t.(type) {
	case *Var:
		if repl, ok := s[n.ID]; ok {
			// Chase in case s[n.ID] is itself a substituted var; bounded
			// by the finiteness of s, never an infinite loop in a
			// well-formed (occurs-checked) substitution.
			return Apply(s, repl)
		}
		return n
	case *Func:
		return &Func{From: Apply(s, n.From), To: Apply(s, n.To)}
	case *Tuple:
		elems := make([]Type, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = Apply(s, e)
		}
		return &Tuple{Elements: elems}
	case *Array:
		return &Array{Length: n.Length, Element: Apply(s, n.Element)}
	case *Record:
		fields := make(map[string]Type, len(n.Fields))
		for k, v := range n.Fields {
			fields[k] = Apply(s, v)
		}
		return &Record{Fields: fields}
	case *Constructor:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = Apply(s, a)
		}
		return &Constructor{Name: n.Name, Args: args}
	case *EffectRow:
		return applySubstRow(s, n)
	default:
		// Primitive, Unknown: no substitutable variables inside.
		return t
	}
}

func applySubstRow(s Subst, r *EffectRow) *EffectRow {
	cases := make(map[string]Type, len(r.Cases))
	for k, v := range r.Cases {
		if v != nil {
			cases[k] = Apply(s, v)
		} else {
			cases[k] = nil
		}
	}
	if r.Tail == nil {
		return &EffectRow{Cases: cases, Tail: nil}
	}
	repl, ok := s[r.Tail.ID]
	if !ok {
		return &EffectRow{Cases: cases, Tail: r.Tail}
	}
	switch sub := repl.(type) {
	case *Var:
		return &EffectRow{Cases: cases, Tail: sub}
	case *EffectRow:
		for k, v := range sub.Cases {
			if _, exists := cases[k]; !exists {
				cases[k] = v
			}
		}
		return &EffectRow{Cases: cases, Tail: sub.Tail}
	default:
		// A row tail can only ever be substituted with a row or a
		// further row variable; anything else is an internal bug,
		// not something that should reach this function given C9's
		// own invariants. Fail closed by treating the row as closed.
		return &EffectRow{Cases: cases, Tail: nil}
	}
}

// ApplyScheme applies a substitution to a scheme's body, leaving
// quantifiers untouched (they are bound, never substituted).
func ApplyScheme(s Subst, sc *Scheme) *Scheme {
	return &Scheme{Quantifiers: sc.Quantifiers, Body: Apply(s, sc.Body)}
}

// Compose returns a substitution equivalent to applying s2 then s1.
func Compose(s1, s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = Apply(s1, v)
	}
	for k, v := range s1 {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Occurs reports whether v occurs free within t (spec §3 occurs
// check). The EffectRow degenerate case — binding a row's own tail
// variable to its closed remainder — is special-cased in Unify, not
// here: Occurs always reports the literal structural answer.
func Occurs(v VarID, t Type) bool {
	switch n := t.(type) {
	case *Var:
		return n.ID == v
	case *Func:
		return Occurs(v, n.From) || Occurs(v, n.To)
	case *Tuple:
		for _, e := range n.Elements {
			if Occurs(v, e) {
				return true
			}
		}
	case *Array:
		return Occurs(v, n.Element)
	case *Record:
		for _, f := range n.Fields {
			if Occurs(v, f) {
				return true
			}
		}
	case *Constructor:
		for _, a := range n.Args {
			if Occurs(v, a) {
				return true
			}
		}
	case *EffectRow:
		for _, p := range n.Cases {
			if p != nil && Occurs(v, p) {
				return true
			}
		}
		if n.Tail != nil && n.Tail.ID == v {
			return true
		}
	}
	return false
}

// IsIdempotent reports whether applying s to t twice gives the same
// result as applying it once — a property-test helper backing P4.
func IsIdempotent(s Subst, t Type) bool {
	once := Apply(s, t)
	twice := Apply(s, once)
	return Equal(once, twice)
}
