package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyIdempotent(t *testing.T) {
	s := Subst{1: Int, 2: &Var{ID: 1}}
	ty := &Tuple{Elements: []Type{&Var{ID: 1}, &Var{ID: 2}}}
	require.True(t, IsIdempotent(s, ty))
}

func TestComposeAppliesLeftAfterRight(t *testing.T) {
	s2 := Subst{1: &Var{ID: 2}}
	s1 := Subst{2: Int}
	composed := Compose(s1, s2)
	require.True(t, Equal(Apply(composed, &Var{ID: 1}), Int))
}

func TestOccursDetectsSelfReference(t *testing.T) {
	v := VarID(1)
	require.True(t, Occurs(v, &Tuple{Elements: []Type{&Var{ID: 1}}}))
	require.False(t, Occurs(v, Int))
}

func TestContainsHole(t *testing.T) {
	require.True(t, ContainsHole(&Tuple{Elements: []Type{Int, &Unknown{Provenance: UserHole{}}}}))
	require.False(t, ContainsHole(&Tuple{Elements: []Type{Int, Bool}}))
}
