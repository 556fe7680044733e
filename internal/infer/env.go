package infer

import "github.com/marklang/markc/internal/types"

// Env is a cons-list of binding frames, innermost first. Grounded on
// internal/types/env.go's TypeEnv: each scope snapshots the previous
// frame by reference, not by copy, so lookups walk outward until a
// binding is found or the chain is exhausted.
type Env struct {
	bindings map[string]*types.Scheme
	parent   *Env
}

// NewEnv returns an empty root environment.
func NewEnv() *Env {
	return &Env{bindings: map[string]*types.Scheme{}}
}

// Push returns a new child frame; bindings added to it shadow the
// parent's without mutating it.
func (e *Env) Push() *Env {
	return &Env{bindings: map[string]*types.Scheme{}, parent: e}
}

// Bind adds (or shadows) a name in this frame.
func (e *Env) Bind(name string, s *types.Scheme) {
	e.bindings[name] = s
}

// Lookup searches this frame then its ancestors.
func (e *Env) Lookup(name string) (*types.Scheme, bool) {
	for frame := e; frame != nil; frame = frame.parent {
		if s, ok := frame.bindings[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// FreeVars implements types.EnvFreeVars: the set of unification
// variables free anywhere in the environment chain, used by
// Generalize to avoid quantifying over variables still in scope.
func (e *Env) FreeVars() map[types.VarID]bool {
	out := map[types.VarID]bool{}
	for frame := e; frame != nil; frame = frame.parent {
		for _, s := range frame.bindings {
			for v := range s.FreeVars() {
				out[v] = true
			}
		}
	}
	return out
}
