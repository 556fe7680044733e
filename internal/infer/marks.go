package infer

import (
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// Mark is a raw-AST expression replacement recording a local
// contradiction (spec §3 "Marked AST"). Every variant carries the
// node id it replaces so internal/marked can re-attach it verbatim.
type Mark interface {
	ast_node()
	NodeID() ids.NodeID
	Type() types.Type
}

type markBase struct {
	ID  ids.NodeID
	Typ types.Type
}

func (m markBase) ast_node()        {}
func (m markBase) NodeID() ids.NodeID { return m.ID }
func (m markBase) Type() types.Type   { return m.Typ }

// MarkFreeVar replaces an Identifier whose name is absent from env.
type MarkFreeVar struct {
	markBase
	Name string
}

// MarkNotFunction replaces a Call/Constructor application whose
// callee resolved to a non-function type.
type MarkNotFunction struct {
	markBase
	CalleeType types.Type
}

// MarkOccursCheck replaces an expression whose unification would have
// produced an infinite type.
type MarkOccursCheck struct {
	markBase
	Left, Right types.Type
}

// MarkInconsistent replaces an expression whose inferred type
// conflicted with an expected type.
type MarkInconsistent struct {
	markBase
	Expected, Actual types.Type
}

// MarkUnsupportedExpr replaces an expression/pattern kind the
// inferencer has no rule for. A non-exhaustive match is not replaced
// by this mark: it only gets MarkNonExhaustive metadata (spec §9 Open
// Question 1).
type MarkUnsupportedExpr struct {
	markBase
	ExprKind string
}

// MarkNonExhaustive is attached as metadata to a Match node (not a
// node replacement — see spec §9 Open Question 1) recording the
// constructor names the match failed to cover.
type MarkNonExhaustive struct {
	Origin            ids.NodeID
	MissingCases      []string
	EffectRowCoverage map[string][]string
}

// ---- Type-expression marks ----

type TypeExprMark interface {
	typeExprMark()
	TypeExprID() ids.TypeExprID
}

type typeExprMarkBase struct {
	ID ids.TypeExprID
}

func (m typeExprMarkBase) typeExprMark()            {}
func (m typeExprMarkBase) TypeExprID() ids.TypeExprID { return m.ID }

// MarkTypeExprUnknown replaces a type expression naming an unknown type.
type MarkTypeExprUnknown struct {
	typeExprMarkBase
	Name string
}

// MarkTypeExprArity replaces a type expression applying a known type
// constructor to the wrong number of arguments.
type MarkTypeExprArity struct {
	typeExprMarkBase
	Name             string
	Expected, Actual int
}

// MarkTypeExprUnsupported replaces a type-expression kind with no
// translation rule.
type MarkTypeExprUnsupported struct {
	typeExprMarkBase
	ExprKind string
}

// ---- Declaration marks (not node replacements; recorded as
// diagnostics + staged-rollback bookkeeping in C5) ----

// MarkTypeDeclDuplicate records a type name collision.
type MarkTypeDeclDuplicate struct {
	Origin ids.NodeID
	Name   string
}

// MarkTypeDeclInvalidMember records a constructor whose shape does
// not match its declared ADT, or a duplicate constructor name.
type MarkTypeDeclInvalidMember struct {
	Origin ids.NodeID
	Name   string
	Reason string
}

// MarkInternal records an internal invariant violation (spec §7.3);
// never aborts the pipeline.
type MarkInternal struct {
	markBase
	Reason string
}
