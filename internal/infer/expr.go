package infer

import (
	"fmt"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// InferExpr is spec §4.6's inferExpr: the recursive expression
// inferencer. It never returns an error — local contradictions become
// marks, and the function always returns a (possibly hole) type so
// the caller can keep going (spec §7 propagation policy).
func InferExpr(c *Context, e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.Identifier:
		return inferIdentifier(c, n)
	case *ast.Literal:
		return inferLiteral(c, n)
	case *ast.Constructor:
		return inferConstructor(c, n)
	case *ast.Tuple:
		return inferTuple(c, n)
	case *ast.RecordLiteral:
		return inferRecordLiteral(c, n)
	case *ast.RecordProjection:
		return inferRecordProjection(c, n)
	case *ast.Call:
		return inferCall(c, n)
	case *ast.Binary:
		return inferBinary(c, n)
	case *ast.Unary:
		return inferUnary(c, n)
	case *ast.Arrow:
		return inferArrow(c, n)
	case *ast.Block:
		return inferBlock(c, n)
	case *ast.Match:
		return InferMatch(c, n)
	case *ast.MatchFn:
		return InferMatchFn(c, n)
	case *ast.MatchBundleLiteral:
		return inferMatchBundle(c, n)
	default:
		hole := &types.Unknown{Provenance: types.Incomplete{Reason: "unsupported_expr"}}
		kind := fmt.Sprintf("%T", e)
		c.Mark(MarkUnsupportedExpr{markBase{e.NodeID(), hole}, kind}, diag.ReasonTypeExprUnsupported, map[string]any{"kind": kind})
		return hole
	}
}

func inferIdentifier(c *Context, n *ast.Identifier) types.Type {
	scheme, ok := c.Env.Lookup(n.Name)
	if !ok {
		hole := &types.Unknown{Provenance: types.ErrorFreeVar{Name: n.Name}}
		c.Mark(MarkFreeVar{markBase{n.NodeID(), hole}, n.Name}, diag.ReasonFreeVariable, map[string]any{"name": n.Name})
		return hole
	}
	t := c.Apply(scheme.Instantiate(c))
	return c.RecordExprType(n.NodeID(), t)
}

func inferLiteral(c *Context, n *ast.Literal) types.Type {
	t := literalKindType(n.Kind)
	return c.RecordExprType(n.NodeID(), t)
}

// inferConstructor implements spec §4.6's "Constructor application":
// instantiate the constructor's scheme, unify each argument in turn,
// and if the residual is still a Func after all supplied arguments,
// emit MarkNotFunction for under-application.
func inferConstructor(c *Context, n *ast.Constructor) types.Type {
	_, ci, ok := c.ADTEnv.FindConstructor(n.Name)
	if !ok {
		hole := &types.Unknown{Provenance: types.ErrorFreeVar{Name: n.Name}}
		c.Mark(MarkFreeVar{markBase{n.NodeID(), hole}, n.Name}, diag.ReasonFreeVariable, map[string]any{"name": n.Name})
		return hole
	}
	current := ci.Scheme.Instantiate(c)
	for _, argExpr := range n.Args {
		argType := InferExpr(c, argExpr)
		fnType, isFunc := c.Apply(current).(*types.Func)
		if !isFunc {
			hole := &types.Unknown{Provenance: types.ErrorNotFunction{CalleeType: c.Apply(current)}}
			c.Mark(MarkNotFunction{markBase{n.NodeID(), hole}, c.Apply(current)}, diag.ReasonNotFunction, map[string]any{"callee_type": c.Apply(current)})
			return hole
		}
		r := c.FreshVar()
		ok, uerr := c.Unify(types.Type(fnType), &types.Func{From: argType, To: r})
		if !ok {
			hole := markInconsistentCall(c, argExpr.NodeID(), fnType.From, argType, uerr)
			return c.RecordExprType(n.NodeID(), hole)
		}
		current = r
	}
	if fnType, isFunc := c.Apply(current).(*types.Func); isFunc && len(n.Args) > 0 {
		hole := &types.Unknown{Provenance: types.ErrorNotFunction{CalleeType: fnType}}
		c.Mark(MarkNotFunction{markBase{n.NodeID(), hole}, fnType}, diag.ReasonNotFunction, map[string]any{"callee_type": fnType})
		return hole
	}
	return c.RecordExprType(n.NodeID(), current)
}

func inferTuple(c *Context, n *ast.Tuple) types.Type {
	elems := make([]types.Type, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = InferExpr(c, e)
	}
	return c.RecordExprType(n.NodeID(), &types.Tuple{Elements: elems})
}

func inferRecordLiteral(c *Context, n *ast.RecordLiteral) types.Type {
	fields := make(map[string]types.Type, len(n.Fields))
	for _, f := range n.Fields {
		if _, dup := fields[f.Name]; dup {
			c.Diagnostics.Add(diag.New(n.NodeID(), diag.ReasonDuplicateRecordField, map[string]any{"field": f.Name}))
			continue
		}
		fields[f.Name] = InferExpr(c, f.Value)
	}
	return c.RecordExprType(n.NodeID(), &types.Record{Fields: fields})
}

// inferRecordProjection never resolves the field type locally: it
// always emits a HasField stub for Layer 2 (spec §4.6), since the
// target may still be a hole/var at Layer 1 time.
func inferRecordProjection(c *Context, n *ast.RecordProjection) types.Type {
	InferExpr(c, n.Target)
	c.Emit(HasField{Origin: n.NodeID(), Target: n.Target.NodeID(), Field: n.Field, Result: n.NodeID()})
	hole := &types.Unknown{Provenance: types.Incomplete{Reason: "has_field"}}
	return c.RecordExprType(n.NodeID(), hole)
}

// inferCall implements spec §4.6's per-argument curry-and-unify loop,
// emitting a Call stub before each step (pre-order, as §5 requires).
func inferCall(c *Context, n *ast.Call) types.Type {
	fnType := InferExpr(c, n.Callee)
	for i, argExpr := range n.Args {
		argType := InferExpr(c, argExpr)
		r := c.FreshVar()
		c.Emit(Call{Origin: n.NodeID(), Callee: n.Callee.NodeID(), Argument: argExpr.NodeID(), Result: n.NodeID(), Index: i, ArgumentValueType: argType})
		ok, uerr := c.Unify(c.Apply(fnType), &types.Func{From: argType, To: r})
		if !ok {
			resolved := c.Apply(fnType)
			_, isFunc := resolved.(*types.Func)
			_, isVar := resolved.(*types.Var)
			// An unresolved Var can still become a Func once unified; a
			// failure against one is always an occurs-check cycle (the
			// uerr branch in markInconsistentCall below), never "callee
			// is concretely not a function".
			if !isFunc && !isVar && !types.IsHole(resolved) {
				hole := &types.Unknown{Provenance: types.ErrorNotFunction{CalleeType: resolved}}
				c.Mark(MarkNotFunction{markBase{n.NodeID(), hole}, resolved}, diag.ReasonNotFunction, map[string]any{"callee_type": resolved})
				return hole
			}
			hole := markInconsistentCall(c, argExpr.NodeID(), expectedArgType(resolved), argType, uerr)
			return c.RecordExprType(n.NodeID(), hole)
		}
		fnType = r
	}
	return c.RecordExprType(n.NodeID(), fnType)
}

func expectedArgType(resolved types.Type) types.Type {
	if fn, ok := resolved.(*types.Func); ok {
		return fn.From
	}
	return resolved
}

// markInconsistentCall replaces node id with MarkInconsistent when a
// call/constructor argument's type disagrees with what the callee
// expects (spec §4.6).
func markInconsistentCall(c *Context, id ids.NodeID, expected, actual types.Type, uerr *types.UnifyError) types.Type {
	if uerr != nil && uerr.Reason == types.ReasonOccursCheck {
		hole := &types.Unknown{Provenance: types.ErrorOccursCheck{L: uerr.A, R: uerr.B}}
		c.Mark(MarkOccursCheck{markBase{id, hole}, uerr.A, uerr.B}, diag.ReasonOccursCycle, map[string]any{"left": uerr.A, "right": uerr.B})
		return hole
	}
	reason := diag.ReasonTypeMismatch
	if uerr != nil && uerr.Reason == types.ReasonArityMismatch {
		reason = diag.ReasonArityMismatch
	}
	hole := &types.Unknown{Provenance: types.ErrorInconsistent{Expected: expected, Actual: actual}}
	c.Mark(MarkInconsistent{markBase{id, hole}, expected, actual}, reason, map[string]any{"expected": expected, "actual": actual})
	return hole
}

// inferBinary resolves `__op_<op>` and applies it as a curried call to
// both operand types, recording a Numeric or Boolean stub when the
// operator's declared class is known (spec §4.6).
func inferBinary(c *Context, n *ast.Binary) types.Type {
	left := InferExpr(c, n.Left)
	right := InferExpr(c, n.Right)

	fnScheme, ok := c.Env.Lookup("__op_" + n.Op)
	var result types.Type
	if !ok {
		hole := &types.Unknown{Provenance: types.ErrorFreeVar{Name: "__op_" + n.Op}}
		c.Mark(MarkFreeVar{markBase{n.NodeID(), hole}, "__op_" + n.Op}, diag.ReasonFreeVariable, map[string]any{"name": n.Op})
		result = hole
	} else {
		fnType := fnScheme.Instantiate(c)
		r1 := c.FreshVar()
		if ok, uerr := c.Unify(fnType, &types.Func{From: left, To: r1}); !ok {
			result = markInconsistentCall(c, n.Left.NodeID(), expectedArgType(c.Apply(fnType)), left, uerr)
		} else {
			r2 := c.FreshVar()
			if ok, uerr := c.Unify(c.Apply(r1), &types.Func{From: right, To: r2}); !ok {
				result = markInconsistentCall(c, n.Right.NodeID(), expectedArgType(c.Apply(r1)), right, uerr)
			} else {
				result = c.Apply(r2)
			}
		}
	}

	switch c.OpClasses[n.Op] {
	case "numeric":
		c.Emit(Numeric{Origin: n.NodeID(), Operator: n.Op, Operands: []ids.NodeID{n.Left.NodeID(), n.Right.NodeID()}, Result: n.NodeID()})
	case "boolean":
		c.Emit(Boolean{Origin: n.NodeID(), Operator: n.Op, Operands: []ids.NodeID{n.Left.NodeID(), n.Right.NodeID()}, Result: n.NodeID()})
	}
	return c.RecordExprType(n.NodeID(), result)
}

// inferUnary resolves `__prefix_<op>` and applies it to the operand.
func inferUnary(c *Context, n *ast.Unary) types.Type {
	operand := InferExpr(c, n.Operand)
	fnScheme, ok := c.Env.Lookup("__prefix_" + n.Op)
	if !ok {
		hole := &types.Unknown{Provenance: types.ErrorFreeVar{Name: "__prefix_" + n.Op}}
		c.Mark(MarkFreeVar{markBase{n.NodeID(), hole}, "__prefix_" + n.Op}, diag.ReasonFreeVariable, map[string]any{"name": n.Op})
		return c.RecordExprType(n.NodeID(), hole)
	}
	fnType := fnScheme.Instantiate(c)
	r := c.FreshVar()
	ok, uerr := c.Unify(fnType, &types.Func{From: operand, To: r})
	if !ok {
		hole := markInconsistentCall(c, n.Operand.NodeID(), expectedArgType(c.Apply(fnType)), operand, uerr)
		return c.RecordExprType(n.NodeID(), hole)
	}

	switch c.OpClasses[n.Op] {
	case "numeric":
		c.Emit(Numeric{Origin: n.NodeID(), Operator: n.Op, Operands: []ids.NodeID{n.Operand.NodeID()}, Result: n.NodeID()})
	case "boolean":
		c.Emit(Boolean{Origin: n.NodeID(), Operator: n.Op, Operands: []ids.NodeID{n.Operand.NodeID()}, Result: n.NodeID()})
	}
	return c.RecordExprType(n.NodeID(), c.Apply(r))
}

// inferArrow implements spec §4.6's lambda rule: open a new scope,
// allocate each parameter's type (annotation or fresh var), infer the
// body, and reduce to a right-associated Func chain.
func inferArrow(c *Context, n *ast.Arrow) types.Type {
	var result types.Type
	c.WithScopedEnv(func() {
		result = inferFunctionType(c, n.Params, n.ReturnType, n.Body, n.NodeID())
	})
	return c.RecordExprType(n.NodeID(), result)
}

// inferFunctionType infers a parameter list plus body within the
// CURRENT scope (callers are responsible for opening/closing it via
// WithScopedEnv) and reduces the result to a right-associated Func
// chain (spec §4.6). Shared between Arrow and let-bound functions
// (C5/C6) since both describe the same "parameters introduce bindings,
// body is inferred in their scope" shape.
func inferFunctionType(c *Context, params []ast.Param, returnType ast.TypeExpr, body ast.Expr, origin ids.NodeID) types.Type {
	paramTypes := make([]types.Type, len(params))
	for i, p := range params {
		var pt types.Type
		if p.Annotation != nil {
			t, mark := translateTypeExpr(c, p.Annotation, nil)
			if mark != nil {
				c.TypeExprMarks[mark.TypeExprID()] = mark
				t = c.FreshVar()
			}
			pt = t
		} else {
			pt = c.FreshVar()
		}
		if v, isVar := p.Pattern.(*ast.VariablePattern); isVar {
			c.Bind(v.Name, types.Mono(pt))
		} else {
			InferPattern(c, p.Pattern, pt, map[string]bool{})
		}
		paramTypes[i] = pt
	}

	bodyType := InferExpr(c, body)
	if returnType != nil {
		rt, mark := translateTypeExpr(c, returnType, nil)
		if mark == nil {
			if ok, uerr := c.Unify(rt, bodyType); !ok {
				bodyType = markInconsistentCall(c, origin, rt, bodyType, uerr)
			}
		}
	}

	fn := c.Apply(bodyType)
	for i := len(paramTypes) - 1; i >= 0; i-- {
		fn = &types.Func{From: c.Apply(paramTypes[i]), To: fn}
	}
	return fn
}

// inferBlock implements spec §4.6: open a scope, fold statements, and
// the result expression (if any) determines the block's type, else
// Unit.
func inferBlock(c *Context, n *ast.Block) types.Type {
	var result types.Type
	c.WithScopedEnv(func() {
		for _, stmt := range n.Statements {
			inferStatement(c, stmt)
		}
		if n.Result != nil {
			result = InferExpr(c, n.Result)
		} else {
			result = types.Unit
		}
	})
	return c.RecordExprType(n.NodeID(), result)
}

func inferStatement(c *Context, s ast.Statement) {
	switch n := s.(type) {
	case *ast.LetStatement:
		inferLetBinding(c, n.Name, n.Params, n.ReturnType, n.Value, n.Rec, n.GroupID, n.NodeID())
	case *ast.ExprStatement:
		InferExpr(c, n.Expression)
	}
}

func inferMatchBundle(c *Context, n *ast.MatchBundleLiteral) types.Type {
	var last types.Type = types.Unit
	for _, m := range n.Matches {
		last = InferMatch(c, m)
	}
	return c.RecordExprType(n.NodeID(), last)
}
