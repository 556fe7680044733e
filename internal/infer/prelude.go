package infer

import "github.com/marklang/markc/internal/types"

// RegisterPrelude binds the fixed set of primitive names (spec §4.5).
// Grounded on the teacher's NewTypeEnvWithBuiltins (internal/types/
// env.go): a small hard-coded table of schemes bound before the
// program's own declarations are processed.
func RegisterPrelude(c *Context) {
	bind := func(name string, quantifiers []types.VarID, body types.Type) {
		c.Bind(name, &types.Scheme{Quantifiers: quantifiers, Body: body})
	}

	intBinOp := &types.Func{From: types.Int, To: &types.Func{From: types.Int, To: types.Int}}
	bind("__op_+", nil, intBinOp)
	bind("__op_-", nil, intBinOp)
	bind("__op_*", nil, intBinOp)
	bind("__op_/", nil, intBinOp)

	ordering := &types.Constructor{Name: "Ordering"}
	intCompare := &types.Func{From: types.Int, To: &types.Func{From: types.Int, To: ordering}}
	bind("compare", nil, intCompare)

	boolBinOp := &types.Func{From: types.Bool, To: &types.Func{From: types.Bool, To: types.Bool}}
	bind("__op_&&", nil, boolBinOp)
	bind("__op_||", nil, boolBinOp)
	bind("__prefix_!", nil, &types.Func{From: types.Bool, To: types.Bool})
	bind("__prefix_-", nil, &types.Func{From: types.Int, To: types.Int})

	a := c.FreshVar().ID
	eqFn := &types.Func{From: &types.Var{ID: a}, To: &types.Func{From: &types.Var{ID: a}, To: types.Bool}}
	bind("__op_==", []types.VarID{a}, eqFn)
	a2 := c.FreshVar().ID
	bind("__op_!=", []types.VarID{a2}, &types.Func{From: &types.Var{ID: a2}, To: &types.Func{From: &types.Var{ID: a2}, To: types.Bool}})

	charEq := &types.Func{From: types.Char, To: &types.Func{From: types.Char, To: types.Bool}}
	bind("charEquals", nil, charEq)

	for _, op := range []string{"<", ">", "<=", ">="} {
		bind("__op_"+op, nil, &types.Func{From: types.Int, To: &types.Func{From: types.Int, To: types.Bool}})
	}

	b := c.FreshVar().ID
	printFn := &types.Func{From: &types.Var{ID: b}, To: types.Unit}
	bind("print", []types.VarID{b}, printFn)

	stringToList := &types.Func{From: types.String, To: &types.Constructor{Name: "List", Args: []types.Type{types.Char}}}
	bind("stringToList", nil, stringToList)
}
