package types

import (
	"fmt"

	"github.com/marklang/markc/internal/ids"
)

// Provenance records why a hole exists (spec §3). It is a closed sum
// type mirroring the teacher's TypeErrorKind/*TypeCheckError pairing
// (internal/types/errors.go in the teacher), except the payload lives
// directly on the type rather than on a side-channel error value,
// because spec requires provenance to be part of the type itself.
type Provenance interface {
	isProvenance()
	Kind() string
}

type provBase struct{}

func (provBase) isProvenance() {}

// UserHole is an explicit `?` written by the programmer.
type UserHole struct{ provBase }

func (UserHole) Kind() string { return "UserHole" }

// ExprHole is a hole standing in for an expression the inferer could
// not type at all (distinct from an error — a deliberately-absent
// expression, e.g. a stub body).
type ExprHole struct{ provBase }

func (ExprHole) Kind() string { return "ExprHole" }

// Incomplete marks a hole arising from a partially-elaborated program.
type Incomplete struct {
	provBase
	Reason string
}

func (Incomplete) Kind() string { return "Incomplete" }

// ErrorFreeVar marks a hole from an unbound identifier.
type ErrorFreeVar struct {
	provBase
	Name string
}

func (ErrorFreeVar) Kind() string { return "ErrorFreeVar" }

// ErrorNotFunction marks a hole from calling a non-function.
type ErrorNotFunction struct {
	provBase
	CalleeType Type
}

func (ErrorNotFunction) Kind() string { return "ErrorNotFunction" }

// ErrorOccursCheck marks a hole from a failed occurs check.
type ErrorOccursCheck struct {
	provBase
	L, R Type
}

func (ErrorOccursCheck) Kind() string { return "ErrorOccursCheck" }

// ErrorInconsistent marks a hole from a unification mismatch.
type ErrorInconsistent struct {
	provBase
	Expected, Actual Type
}

func (ErrorInconsistent) Kind() string { return "ErrorInconsistent" }

// ErrorTypeExprUnknown marks an unresolvable type-expression name.
type ErrorTypeExprUnknown struct {
	provBase
	Name string
}

func (ErrorTypeExprUnknown) Kind() string { return "ErrorTypeExprUnknown" }

// ErrorTypeExprArity marks a type-expression arity mismatch.
type ErrorTypeExprArity struct {
	provBase
	Name             string
	Expected, Actual int
}

func (ErrorTypeExprArity) Kind() string { return "ErrorTypeExprArity" }

// ErrorTypeExprUnsupported marks an unsupported type-expression shape.
type ErrorTypeExprUnsupported struct {
	provBase
	ExprKind string
}

func (ErrorTypeExprUnsupported) Kind() string { return "ErrorTypeExprUnsupported" }

// ErrorInternal marks a hole produced by an internal-invariant
// violation (spec §7 layer 3): never escapes as a panic, always
// surfaces this way instead.
type ErrorInternal struct {
	provBase
	Reason string
}

func (ErrorInternal) Kind() string { return "ErrorInternal" }

// ErrorUnfillableHole marks a hole the solver could not resolve due to
// conflicting constraints (spec §4.9 "hole conflict detection").
type ErrorUnfillableHole struct {
	provBase
	HoleID    ids.NodeID
	Conflicts []Conflict
}

func (ErrorUnfillableHole) Kind() string { return "ErrorUnfillableHole" }

// Conflict records one pairwise unification failure discovered while
// classifying a hole's accumulated constraints.
type Conflict struct {
	A, B   Type
	Reason string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s vs %s (%s)", c.A, c.B, c.Reason)
}
