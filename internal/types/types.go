// Package types implements the type IR and substitution machinery
// (spec §3, §4.1): types, schemes, substitutions, unification, and the
// carrier split/join used by the constraint-label solver (internal/
// solver).
package types

import (
	"fmt"
	"sort"
	"strings"
)

// VarID identifies a unification variable. Allocated from a
// per-Context counter (internal/infer.Context.freshVar), never a
// package-global one (spec §5).
type VarID uint64

// Type is a tagged union over the variants in spec §3. It is closed:
// every case is implemented in this file and switch statements over
// Type elsewhere are expected to be exhaustive, with a default branch
// that produces MarkUnsupportedExpr/MarkInternal rather than panicking
// (spec §9 "duck typing" note).
type Type interface {
	isType()
	String() string
}

// Var is a unification variable.
type Var struct{ ID VarID }

func (*Var) isType()          {}
func (v *Var) String() string { return fmt.Sprintf("t%d", v.ID) }

// Primitive is one of Int, Bool, Char, String, Unit.
type Primitive struct{ Name string }

func (*Primitive) isType()          {}
func (p *Primitive) String() string { return p.Name }

var (
	Int    = &Primitive{Name: "Int"}
	Bool   = &Primitive{Name: "Bool"}
	Char   = &Primitive{Name: "Char"}
	String = &Primitive{Name: "String"}
	Unit   = &Primitive{Name: "Unit"}
)

// Func is a unary function type; multi-argument functions are curried
// by the caller (spec §3).
type Func struct {
	From Type
	To   Type
}

func (*Func) isType() {}
func (f *Func) String() string {
	from := f.From.String()
	if _, ok := f.From.(*Func); ok {
		from = "(" + from + ")"
	}
	return fmt.Sprintf("%s -> %s", from, f.To.String())
}

// Tuple is an ordered, fixed-arity product.
type Tuple struct{ Elements []Type }

func (*Tuple) isType() {}
func (t *Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Array is a fixed-length homogeneous sequence (optional extension,
// spec §3).
type Array struct {
	Length  int
	Element Type
}

func (*Array) isType()          {}
func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.Element.String(), a.Length) }

// Record is an unordered field mapping, no row variable (spec §3:
// records reduce to constructor shape via declared aliases — there is
// no open-record polymorphism, only the closed map here).
type Record struct{ Fields map[string]Type }

func (*Record) isType() {}
func (r *Record) String() string {
	names := make([]string, 0, len(r.Fields))
	for n := range r.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s: %s", n, r.Fields[n].String())
	}
	return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
}

// Constructor is an applied named ADT, e.g. List<Int> or Result<V, E>.
type Constructor struct {
	Name string
	Args []Type
}

func (*Constructor) isType() {}
func (c *Constructor) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", c.Name, strings.Join(parts, ", "))
}

// EffectRow is a row-polymorphic mapping from label to optional
// payload, with an optional row-variable tail for openness (spec §3).
type EffectRow struct {
	Cases map[string]Type // payload may be nil (label carries no value)
	Tail  *Var            // nil means closed
}

func (*EffectRow) isType() {}
func (e *EffectRow) String() string {
	names := make([]string, 0, len(e.Cases))
	for n := range e.Cases {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if p := e.Cases[n]; p != nil {
			parts = append(parts, fmt.Sprintf("%s(%s)", n, p.String()))
		} else {
			parts = append(parts, n)
		}
	}
	body := strings.Join(parts, ", ")
	if e.Tail != nil {
		if body != "" {
			body += " | " + e.Tail.String()
		} else {
			body = e.Tail.String()
		}
	}
	return fmt.Sprintf("{%s}", body)
}

// Unknown is a hole: a type whose provenance records why it is
// unknown. Two holes differing only in provenance are not equal
// (spec §3) — Unify (in unify.go) always treats an Unknown on either
// side as a unification success without binding, never as "equal".
type Unknown struct {
	Provenance Provenance
}

func (*Unknown) isType()          {}
func (u *Unknown) String() string { return fmt.Sprintf("?(%s)", u.Provenance.Kind()) }

// IsHole reports whether t is an Unknown.
func IsHole(t Type) bool {
	_, ok := t.(*Unknown)
	return ok
}

// ContainsHole reports whether t transitively contains any Unknown
// (used by P3: "for every Solved(t), t contains no hole transitively").
func ContainsHole(t Type) bool {
	switch n := t.(type) {
	case *Unknown:
		return true
	case *Func:
		return ContainsHole(n.From) || ContainsHole(n.To)
	case *Tuple:
		for _, e := range n.Elements {
			if ContainsHole(e) {
				return true
			}
		}
	case *Array:
		return ContainsHole(n.Element)
	case *Record:
		for _, f := range n.Fields {
			if ContainsHole(f) {
				return true
			}
		}
	case *Constructor:
		for _, a := range n.Args {
			if ContainsHole(a) {
				return true
			}
		}
	case *EffectRow:
		for _, p := range n.Cases {
			if p != nil && ContainsHole(p) {
				return true
			}
		}
	}
	return false
}
