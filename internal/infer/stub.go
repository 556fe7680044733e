// Package infer implements Layer 1 of the type-checking pipeline
// (components C4 through C7): a mutable inference context, two-pass
// declaration registration, and the recursive expression/pattern/match
// inferencer. It never returns an error for ill-typed input — local
// contradictions are represented in-band as marks plus diagnostics,
// per the teacher's own "never throw" typechecker discipline
// (internal/types/typechecker_core.go).
package infer

import (
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// Stub is a deferred typing obligation emitted during Layer 1 for the
// solver (internal/solver) to resolve. The concrete variants mirror
// spec §3's constraint-stub family.
type Stub interface{ stub() }

// Call records a single curried application step: fnType was unified
// against Func(argType, result) at origin.
type Call struct {
	Origin            ids.NodeID
	Callee            ids.NodeID
	Argument          ids.NodeID
	Result            ids.NodeID
	Index             int
	ArgumentValueType types.Type
}

func (Call) stub() {}

// BranchJoin lists every arm body of a match/match_fn for Layer 2 to
// fold pairwise into the match's result type.
type BranchJoin struct {
	Origin            ids.NodeID
	Scrutinee         ids.NodeID
	Branches          []ids.NodeID
	DischargesResult  bool
	EffectRowCoverage map[string][]string // domain ("effect") -> covered labels, only set for effect-row scrutinees
}

func (BranchJoin) stub() {}

// Annotation records a user type annotation that Layer 2 must unify
// against the value's inferred type.
type Annotation struct {
	Origin ids.NodeID
	Value  ids.NodeID
	Subject ids.NodeID
}

func (Annotation) stub() {}

// HasField records a record projection constraint.
type HasField struct {
	Origin ids.NodeID
	Target ids.NodeID
	Field  string
	Result ids.NodeID
}

func (HasField) stub() {}

// Numeric records an arithmetic operator application.
type Numeric struct {
	Origin   ids.NodeID
	Operator string
	Operands []ids.NodeID
	Result   ids.NodeID
}

func (Numeric) stub() {}

// Boolean records a boolean-operator application.
type Boolean struct {
	Origin   ids.NodeID
	Operator string
	Operands []ids.NodeID
	Result   ids.NodeID
}

func (Boolean) stub() {}

// ---- Constraint-label family (spec §4.9) ----

// ConstraintSource seeds a node's per-domain label.
type ConstraintSource struct {
	Node  ids.NodeID
	Domain string
	Row    []string
}

func (ConstraintSource) stub() {}

// ConstraintFlow propagates a label from one node to another.
type ConstraintFlow struct {
	From, To ids.NodeID
	Domain   string
}

func (ConstraintFlow) stub() {}

// ConstraintRewrite applies an inline add/remove to a node's label,
// applied immediately in emission order (crucial for nested matches).
type ConstraintRewrite struct {
	Node   ids.NodeID
	Domain string
	Remove []string
	Add    []string
}

func (ConstraintRewrite) stub() {}

type RequireExactState struct {
	Node   ids.NodeID
	Domain string
	Tags   []string
}

func (RequireExactState) stub() {}

type RequireAnyState struct {
	Node   ids.NodeID
	Domain string
	Tags   []string
}

func (RequireAnyState) stub() {}

type RequireNotState struct {
	Node   ids.NodeID
	Domain string
	Tags   []string
}

func (RequireNotState) stub() {}

type AddStateTags struct {
	Node   ids.NodeID
	Domain string
	Tags   []string
}

func (AddStateTags) stub() {}

type RequireAtReturn struct {
	Node   ids.NodeID
	Domain string
}

func (RequireAtReturn) stub() {}

type CallRejectsInfection struct {
	Origin ids.NodeID
	Callee ids.NodeID
}

func (CallRejectsInfection) stub() {}

type CallRejectsDomains struct {
	Origin  ids.NodeID
	Callee  ids.NodeID
	Domains []string
}

func (CallRejectsDomains) stub() {}
