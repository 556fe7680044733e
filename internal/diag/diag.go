// Package diag provides the structured diagnostic type shared by both
// inference layers (spec §6, §7). Diagnostics are plain data: nothing
// in this package ever panics or wraps itself as a Go error, since the
// pipeline surfaces every failure in-band rather than by throwing
// (spec §7).
package diag

import (
	"encoding/json"
	"sort"

	"github.com/marklang/markc/internal/ids"
)

// Reason is the fixed failure taxonomy from spec §4.9.
type Reason string

const (
	ReasonNotFunction            Reason = "not_function"
	ReasonTypeMismatch           Reason = "type_mismatch"
	ReasonArityMismatch          Reason = "arity_mismatch"
	ReasonOccursCycle            Reason = "occurs_cycle"
	ReasonMissingField           Reason = "missing_field"
	ReasonNotRecord              Reason = "not_record"
	ReasonNotNumeric             Reason = "not_numeric"
	ReasonNotBoolean             Reason = "not_boolean"
	ReasonBranchMismatch         Reason = "branch_mismatch"
	ReasonNonExhaustiveMatch     Reason = "non_exhaustive_match"
	ReasonFreeVariable           Reason = "free_variable"
	ReasonDuplicateRecordField   Reason = "duplicate_record_field"
	ReasonIncompatibleConstraint Reason = "incompatible_constraints"
	ReasonBoundaryViolation     Reason = "boundary_violation"
	ReasonRequireExactState     Reason = "require_exact_state"
	ReasonRequireAnyState       Reason = "require_any_state"
	ReasonRequireNotState       Reason = "require_not_state"
	ReasonRequireAtReturn       Reason = "require_at_return"
	ReasonCallRejectsInfection  Reason = "call_rejects_infection"
	ReasonCallRejectsDomains    Reason = "call_rejects_domains"
	ReasonTypeExprUnknown       Reason = "type_expr_unknown"
	ReasonTypeExprArity         Reason = "type_expr_arity"
	ReasonTypeExprUnsupported   Reason = "type_expr_unsupported"
	ReasonTypeDeclDuplicate     Reason = "type_decl_duplicate"
	ReasonTypeDeclInvalidMember Reason = "type_decl_invalid_member"
	ReasonUnfillableHole        Reason = "unfillable_hole"
	ReasonInternalError         Reason = "internal_error"
	ReasonUnknownEffectTag      Reason = "unknown_effect_tag"
)

// Diagnostic is the public shape from spec §6:
// Diagnostic{origin, reason, details}; span is attached later by the
// presentation layer (internal/present), not stored here, so Layer 1
// and Layer 2 never need a span index to emit one.
type Diagnostic struct {
	Origin  ids.NodeID     `json:"origin"`
	Reason  Reason         `json:"reason"`
	Details map[string]any `json:"details,omitempty"`
}

// New builds a Diagnostic with a details map, sorting nothing itself
// — encoding/json already writes map keys in sorted order on encode.
func New(origin ids.NodeID, reason Reason, details map[string]any) Diagnostic {
	if details == nil {
		details = map[string]any{}
	}
	return Diagnostic{Origin: origin, Reason: reason, Details: details}
}

// SortedDetailKeys returns the detail keys in sorted order: Go's
// encoding/json already sorts map keys for map[string]any, but we keep
// this explicit helper so callers that hand-render diagnostics for
// golden tests get the same order as json.Marshal does.
func (d Diagnostic) SortedDetailKeys() []string {
	keys := make([]string, 0, len(d.Details))
	for k := range d.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToJSON renders the diagnostic deterministically.
func (d Diagnostic) ToJSON() (string, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// List is an append-only diagnostic buffer. Both layer1Diagnostics
// (internal/infer.Context) and the solver's diagnostics (internal/
// solver.Result) are a List; nothing in the pipeline ever returns
// early on encountering one (spec §7 propagation policy).
type List []Diagnostic

func (l *List) Add(d Diagnostic) { *l = append(*l, d) }
