package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAllocatesMonotonically(t *testing.T) {
	r := NewRegistry()
	a := r.NewNode(Span{})
	b := r.NewNode(Span{})
	require.Less(t, uint64(a), uint64(b))
}

func TestRegistrySpanLookup(t *testing.T) {
	r := NewRegistry()
	span := Span{Start: Pos{Line: 1, Column: 1}, End: Pos{Line: 1, Column: 5}}
	id := r.NewNode(span)
	got, ok := r.Span(id)
	require.True(t, ok)
	require.Equal(t, span, got)
}

func TestRegistriesAreIndependentPerUnit(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()
	r1.NewNode(Span{})
	r1.NewNode(Span{})
	first := r2.NewNode(Span{})
	// r2's first id is unaffected by r1's allocations — proves the
	// counter is per-Registry, not a shared/global one (spec §9).
	require.Equal(t, NodeID(1), first)
}

func TestTypeExprCounterIsSeparateFromNodeCounter(t *testing.T) {
	r := NewRegistry()
	n := r.NewNode(Span{})
	te := r.NewTypeExpr(Span{})
	require.Equal(t, NodeID(1), n)
	require.Equal(t, TypeExprID(1), te)
}
