package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type counterFresh struct{ n VarID }

func (c *counterFresh) FreshVar() *Var {
	c.n++
	return &Var{ID: c.n}
}

func newTestUnifier() (*Unifier, *counterFresh) {
	fresh := &counterFresh{}
	return NewUnifier(NewADTEnv(), DefaultCarrierRegistry(), fresh), fresh
}

func TestUnifyPrimitivesMatch(t *testing.T) {
	u, _ := newTestUnifier()
	s, err := u.Unify(Int, Int)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestUnifyPrimitivesMismatch(t *testing.T) {
	u, _ := newTestUnifier()
	_, err := u.Unify(Int, Bool)
	require.Error(t, err)
	var uerr *UnifyError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, ReasonTypeMismatch, uerr.Reason)
}

func TestUnifyVarBinds(t *testing.T) {
	u, _ := newTestUnifier()
	v := &Var{ID: 1}
	s, err := u.Unify(v, Int)
	require.NoError(t, err)
	require.True(t, Equal(Apply(s, v), Int))
}

func TestUnifyOccursCheck(t *testing.T) {
	u, _ := newTestUnifier()
	v := &Var{ID: 1}
	selfRef := &Func{From: v, To: Int}
	_, err := u.Unify(v, selfRef)
	require.Error(t, err)
	var uerr *UnifyError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, ReasonOccursCheck, uerr.Reason)
}

func TestUnifyHoleAlwaysSucceeds(t *testing.T) {
	u, _ := newTestUnifier()
	hole := &Unknown{Provenance: UserHole{}}
	s, err := u.Unify(hole, Int)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestUnifyArityMismatch(t *testing.T) {
	u, _ := newTestUnifier()
	a := &Tuple{Elements: []Type{Int, Int}}
	b := &Tuple{Elements: []Type{Int}}
	_, err := u.Unify(a, b)
	require.Error(t, err)
	var uerr *UnifyError
	require.ErrorAs(t, err, &uerr)
	require.Equal(t, ReasonArityMismatch, uerr.Reason)
}

func TestUnifyNumericCompatibility(t *testing.T) {
	u, _ := newTestUnifier()
	u32 := &Constructor{Name: "U32"}
	cuint := &Constructor{Name: "CUInt"}
	_, err := u.Unify(u32, cuint)
	require.NoError(t, err)
}

func TestUnifyDistinctConstructorsFail(t *testing.T) {
	u, _ := newTestUnifier()
	a := &Constructor{Name: "Circle", Args: []Type{Int}}
	b := &Constructor{Name: "Square", Args: []Type{Int}}
	_, err := u.Unify(a, b)
	require.Error(t, err)
}

func TestUnifyCarriersSameDomain(t *testing.T) {
	u, _ := newTestUnifier()
	a := &Constructor{Name: "Result", Args: []Type{Int, &Var{ID: 1}}}
	b := &Constructor{Name: "Result", Args: []Type{&Var{ID: 2}, String}}
	s, err := u.Unify(a, b)
	require.NoError(t, err)
	require.True(t, Equal(Apply(s, &Var{ID: 2}), Int))
	require.True(t, Equal(Apply(s, &Var{ID: 1}), String))
}

func TestUnifyRecordFieldwise(t *testing.T) {
	u, _ := newTestUnifier()
	a := &Record{Fields: map[string]Type{"x": Int, "y": &Var{ID: 1}}}
	b := &Record{Fields: map[string]Type{"x": Int, "y": Bool}}
	s, err := u.Unify(a, b)
	require.NoError(t, err)
	require.True(t, Equal(Apply(s, &Var{ID: 1}), Bool))
}

func TestUnifyEffectRowClosedMismatch(t *testing.T) {
	u, _ := newTestUnifier()
	a := &EffectRow{Cases: map[string]Type{"IO": nil}}
	b := &EffectRow{Cases: map[string]Type{"FS": nil}}
	_, err := u.Unify(a, b)
	require.Error(t, err)
}

func TestUnifyEffectRowOpenAbsorbsClosed(t *testing.T) {
	u, _ := newTestUnifier()
	tail := &Var{ID: 1}
	open := &EffectRow{Cases: map[string]Type{}, Tail: tail}
	closed := &EffectRow{Cases: map[string]Type{"IO": nil}}
	s, err := u.Unify(open, closed)
	require.NoError(t, err)
	result := Apply(s, tail)
	row, ok := result.(*EffectRow)
	require.True(t, ok)
	require.Contains(t, row.Cases, "IO")
	require.Nil(t, row.Tail)
}

func TestUnifyEffectRowBothOpenDistinctTails(t *testing.T) {
	u, _ := newTestUnifier()
	t1 := &Var{ID: 1}
	t2 := &Var{ID: 2}
	r1 := &EffectRow{Cases: map[string]Type{"IO": nil}, Tail: t1}
	r2 := &EffectRow{Cases: map[string]Type{"Net": nil}, Tail: t2}
	s, err := u.Unify(r1, r2)
	require.NoError(t, err)
	res1 := Apply(s, t1).(*EffectRow)
	require.Contains(t, res1.Cases, "Net")
	res2 := Apply(s, t2).(*EffectRow)
	require.Contains(t, res2.Cases, "IO")
}

func TestUnifyCommutativity(t *testing.T) {
	cases := []struct{ a, b Type }{
		{Int, Int},
		{&Tuple{Elements: []Type{Int, Bool}}, &Tuple{Elements: []Type{Int, Bool}}},
		{&Var{ID: 1}, Int},
	}
	for _, c := range cases {
		u1, _ := newTestUnifier()
		_, err1 := u1.Unify(c.a, c.b)
		u2, _ := newTestUnifier()
		_, err2 := u2.Unify(c.b, c.a)
		require.Equal(t, err1 == nil, err2 == nil)
	}
}
