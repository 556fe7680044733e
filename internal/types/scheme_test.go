package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstantiateFreshensQuantifiers(t *testing.T) {
	fresh := &counterFresh{n: 100}
	scheme := &Scheme{Quantifiers: []VarID{1}, Body: &Func{From: &Var{ID: 1}, To: &Var{ID: 1}}}
	inst := scheme.Instantiate(fresh)
	fn, ok := inst.(*Func)
	require.True(t, ok)
	require.True(t, Equal(fn.From, fn.To))
	v, ok := fn.From.(*Var)
	require.True(t, ok)
	require.NotEqual(t, VarID(1), v.ID)
}

type fixedEnv struct{ free map[VarID]bool }

func (f fixedEnv) FreeVars() map[VarID]bool { return f.free }

func TestGeneralizeExcludesEnvFreeVars(t *testing.T) {
	// t2 is free in env, so it must not be generalized; t1 is not, so it is.
	body := &Func{From: &Var{ID: 1}, To: &Var{ID: 2}}
	env := fixedEnv{free: map[VarID]bool{2: true}}
	scheme := Generalize(body, env)
	require.Contains(t, scheme.Quantifiers, VarID(1))
	require.NotContains(t, scheme.Quantifiers, VarID(2))
}

func TestRoundTripGeneralizeInstantiate(t *testing.T) {
	fresh := &counterFresh{n: 0}
	body := &Func{From: &Var{ID: 1}, To: &Var{ID: 1}}
	scheme := Generalize(body, fixedEnv{free: map[VarID]bool{}})
	inst := scheme.Instantiate(fresh)
	re := Generalize(inst, fixedEnv{free: map[VarID]bool{}})
	require.Len(t, re.Quantifiers, len(scheme.Quantifiers))
}
