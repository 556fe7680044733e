package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/types"
)

// TestSolve_NumericPhase_ResolvesBareIntAddition exercises phase 3
// directly (bypassing internal/infer) the way the teacher's own
// solver-adjacent tests build a minimal input by hand rather than
// running a whole program through every stage.
func TestSolve_NumericPhase_ResolvesBareIntAddition(t *testing.T) {
	reg := ids.NewRegistry()
	left := reg.NewNode(ids.Span{})
	right := reg.NewNode(ids.Span{})
	result := reg.NewNode(ids.Span{})
	origin := reg.NewNode(ids.Span{})

	in := Input{
		NodeTypeByID: map[ids.NodeID]types.Type{
			left:  types.Int,
			right: types.Int,
		},
		ConstraintStubs: []infer.Stub{
			infer.Numeric{Origin: origin, Operator: "+", Operands: []ids.NodeID{left, right}, Result: result},
		},
		Holes: map[ids.NodeID]infer.UnknownInfo{},
	}

	res := Solve(in)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, types.Int, res.ResolvedNodeTypes[result])
}

// TestSolve_NumericPhase_RejectsBooleanOperand checks the
// not_numeric diagnostic path when an operand can't unify with Int.
func TestSolve_NumericPhase_RejectsBooleanOperand(t *testing.T) {
	reg := ids.NewRegistry()
	left := reg.NewNode(ids.Span{})
	right := reg.NewNode(ids.Span{})
	result := reg.NewNode(ids.Span{})
	origin := reg.NewNode(ids.Span{})

	in := Input{
		NodeTypeByID: map[ids.NodeID]types.Type{
			left:  types.Int,
			right: types.Bool,
		},
		ConstraintStubs: []infer.Stub{
			infer.Numeric{Origin: origin, Operator: "+", Operands: []ids.NodeID{left, right}, Result: result},
		},
		Holes: map[ids.NodeID]infer.UnknownInfo{},
	}

	res := Solve(in)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, diag.ReasonNotNumeric, res.Diagnostics[0].Reason)
}

// TestSolve_CallPhase_SolvesResultType exercises the Call stub against
// a concrete Func type.
func TestSolve_CallPhase_SolvesResultType(t *testing.T) {
	reg := ids.NewRegistry()
	callee := reg.NewNode(ids.Span{})
	result := reg.NewNode(ids.Span{})
	origin := reg.NewNode(ids.Span{})

	in := Input{
		NodeTypeByID: map[ids.NodeID]types.Type{
			callee: &types.Func{From: types.Int, To: types.Bool},
		},
		ConstraintStubs: []infer.Stub{
			infer.Call{Origin: origin, Callee: callee, Result: result, ArgumentValueType: types.Int},
		},
		Holes: map[ids.NodeID]infer.UnknownInfo{},
	}

	res := Solve(in)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, types.Bool, res.ResolvedNodeTypes[result])
}

// TestSolve_LabelPhase_DetectsConflictingResourceState exercises
// constraint-label propagation and detectLabelConflicts against the
// default registry's builtin "locked"/"unlocked" conflict pair.
func TestSolve_LabelPhase_DetectsConflictingResourceState(t *testing.T) {
	reg := ids.NewRegistry()
	node := reg.NewNode(ids.Span{})

	in := Input{
		NodeTypeByID: map[ids.NodeID]types.Type{},
		ConstraintStubs: []infer.Stub{
			infer.ConstraintSource{Node: node, Domain: "resource", Row: []string{"locked"}},
			infer.AddStateTags{Node: node, Domain: "resource", Tags: []string{"unlocked"}},
		},
		Holes: map[ids.NodeID]infer.UnknownInfo{},
	}

	res := Solve(in)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, diag.ReasonIncompatibleConstraint, res.Diagnostics[0].Reason)
}

// TestSolve_HoleConflict_ReportsUnfillable forces the same hole node
// to be unified against Int then Bool via a Numeric and a Boolean stub
// that share it as an operand (and as their origin), which should
// surface as an unfillable_hole conflict.
func TestSolve_HoleConflict_ReportsUnfillable(t *testing.T) {
	reg := ids.NewRegistry()
	holeNode := reg.NewNode(ids.Span{})
	intNode := reg.NewNode(ids.Span{})
	boolNode := reg.NewNode(ids.Span{})
	resultA := reg.NewNode(ids.Span{})
	resultB := reg.NewNode(ids.Span{})

	hole := &types.Unknown{Provenance: types.Incomplete{Reason: "test"}}

	in := Input{
		NodeTypeByID: map[ids.NodeID]types.Type{
			holeNode: hole,
			intNode:  types.Int,
			boolNode: types.Bool,
		},
		ConstraintStubs: []infer.Stub{
			infer.Numeric{Origin: holeNode, Operator: "+", Operands: []ids.NodeID{holeNode, intNode}, Result: resultA},
			infer.Boolean{Origin: holeNode, Operator: "&&", Operands: []ids.NodeID{holeNode, boolNode}, Result: resultB},
		},
		Holes: map[ids.NodeID]infer.UnknownInfo{
			holeNode: {},
		},
	}

	res := Solve(in)
	var found bool
	for _, d := range res.Diagnostics {
		if d.Origin == holeNode && d.Reason == diag.ReasonUnfillableHole {
			found = true
		}
	}
	require.True(t, found, "expected an unfillable_hole diagnostic on the shared hole node")
}
