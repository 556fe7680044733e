package infer

import (
	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// inferLetBinding implements spec §4.6's "Let declarations" rule for a
// single (possibly self-recursive) binding: non-recursive bindings
// infer their body directly and generalize against the current
// environment; self-recursive ones pre-bind a fresh monomorphic var,
// infer, unify, then generalize against the environment from BEFORE
// the pre-binding (so the binding's own free vars do not leak in).
func inferLetBinding(c *Context, name string, params []ast.Param, returnType ast.TypeExpr, body ast.Expr, rec bool, groupID int, origin ids.NodeID) {
	if !rec {
		outerEnv := c.Env
		var fn types.Type
		c.WithScopedEnv(func() {
			fn = inferFunctionType(c, params, returnType, body, origin)
		})
		scheme := types.Generalize(c.Apply(fn), outerEnv)
		c.Bind(name, scheme)
		return
	}

	outerEnv := c.Env
	c.Env = c.Env.Push()
	preVar := c.FreshVar()
	c.Env.Bind(name, types.Mono(preVar))

	var fn types.Type
	c.WithScopedEnv(func() {
		fn = inferFunctionType(c, params, returnType, body, origin)
	})
	c.Unify(preVar, fn)

	c.Env = outerEnv
	scheme := types.Generalize(c.Apply(preVar), outerEnv)
	c.Bind(name, scheme)
}

// InferLetGroup implements the mutual-recursion path of spec §4.6:
// every member of a `let rec ... and ...` group is pre-bound with a
// fresh monomorphic var before any body is inferred, so calls across
// the group resolve; generalization happens only after every member
// has been inferred and unified against its own pre-binding, and is
// computed against the environment from before the whole group was
// pre-bound.
func InferLetGroup(c *Context, decls []*ast.LetDeclaration) {
	outerEnv := c.Env
	c.Env = c.Env.Push()

	preVars := make(map[string]*types.Var, len(decls))
	for _, d := range decls {
		v := c.FreshVar()
		preVars[d.Name] = v
		c.Env.Bind(d.Name, types.Mono(v))
	}

	for _, d := range decls {
		var fn types.Type
		c.WithScopedEnv(func() {
			fn = inferFunctionType(c, d.Params, d.ReturnType, d.Body, d.NodeID())
		})
		c.Unify(preVars[d.Name], fn)
	}

	c.Env = outerEnv
	for _, d := range decls {
		scheme := types.Generalize(c.Apply(preVars[d.Name]), outerEnv)
		c.Bind(d.Name, scheme)
	}
}
