package infer

import (
	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/types"
)

// InferPattern implements spec §4.6's inferPattern: binds names into
// the current environment frame, unifies the pattern's shape against
// expected, and returns the pattern's type (which may be a hole on
// local failure). seen tracks variable names already bound by an
// earlier sub-pattern of the same top-level pattern, so a duplicate
// name inside one pattern is not bound again and gets an Incomplete
// hole as the inner sub-pattern's recorded type, rather than failing
// the whole match. No mark and no diagnostic are recorded for it.
func InferPattern(c *Context, p ast.Pattern, expected types.Type, seen map[string]bool) types.Type {
	if seen == nil {
		seen = map[string]bool{}
	}
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return c.RecordExprType(n.NodeID(), expected)

	case *ast.VariablePattern:
		if seen[n.Name] {
			hole := &types.Unknown{Provenance: types.Incomplete{Reason: "duplicate_pattern_binding"}}
			c.NodeTypes[n.NodeID()] = hole
			return hole
		}
		seen[n.Name] = true
		c.Bind(n.Name, types.Mono(expected))
		return c.RecordExprType(n.NodeID(), expected)

	case *ast.LiteralPattern:
		lt := literalKindType(n.Kind)
		ok, uerr := c.Unify(lt, expected)
		if !ok {
			return markInconsistentPattern(c, n.Meta, expected, lt, uerr)
		}
		return c.RecordExprType(n.NodeID(), lt)

	case *ast.TuplePattern:
		elemVars := make([]types.Type, len(n.Elements))
		for i := range elemVars {
			elemVars[i] = c.FreshVar()
		}
		tupleType := types.Type(&types.Tuple{Elements: elemVars})
		ok, uerr := c.Unify(tupleType, expected)
		if !ok {
			return markInconsistentPattern(c, n.Meta, expected, tupleType, uerr)
		}
		for i, elem := range n.Elements {
			InferPattern(c, elem, c.Apply(elemVars[i]), seen)
		}
		return c.RecordExprType(n.NodeID(), tupleType)

	case *ast.ConstructorPattern:
		typeName, ci, ok := c.ADTEnv.FindConstructor(n.Name)
		if !ok {
			hole := &types.Unknown{Provenance: types.ErrorFreeVar{Name: n.Name}}
			c.Mark(MarkFreeVar{markBase{n.NodeID(), hole}, n.Name}, diag.ReasonFreeVariable, map[string]any{"name": n.Name})
			return hole
		}
		if len(n.Args) != ci.Arity {
			mark := MarkInconsistent{markBase{n.NodeID(), nil}, expected, nil}
			hole := &types.Unknown{Provenance: types.ErrorInconsistent{Expected: expected, Actual: nil}}
			mark.Typ = hole
			c.Mark(mark, diag.ReasonArityMismatch, map[string]any{"constructor": n.Name, "expected_arity": ci.Arity, "actual_arity": len(n.Args)})
			return hole
		}
		_ = typeName
		instantiated := ci.Scheme.Instantiate(c)
		for _, arg := range n.Args {
			fnType, isFunc := instantiated.(*types.Func)
			if !isFunc {
				break
			}
			InferPattern(c, arg, c.Apply(fnType.From), seen)
			instantiated = fnType.To
		}
		unifyOK, uerr := c.Unify(instantiated, expected)
		if !unifyOK {
			return markInconsistentPattern(c, n.Meta, expected, instantiated, uerr)
		}
		return c.RecordExprType(n.NodeID(), instantiated)

	case *ast.EffectTagPattern:
		resolved := c.Apply(expected)
		row, ok := effectRowOf(c, resolved)
		if !ok {
			if _, isVar := resolved.(*types.Var); !isVar {
				hole := &types.Unknown{Provenance: types.Incomplete{Reason: "unsupported_pattern"}}
				c.Mark(MarkUnsupportedExpr{markBase{n.NodeID(), hole}, "pattern"}, diag.ReasonTypeExprUnsupported, map[string]any{"kind": "pattern"})
				return hole
			}
			row = &types.EffectRow{Cases: map[string]types.Type{}, Tail: c.FreshVar()}
			if unifyOK, uerr := c.Unify(resolved, row); !unifyOK {
				return markInconsistentPattern(c, n.Meta, expected, row, uerr)
			}
		}
		payloadType, known := row.Cases[n.Tag]
		if !known {
			if row.Tail == nil {
				hole := &types.Unknown{Provenance: types.Incomplete{Reason: "unknown_effect_tag"}}
				c.Mark(MarkUnsupportedExpr{markBase{n.NodeID(), hole}, "pattern"}, diag.ReasonUnknownEffectTag, map[string]any{"tag": n.Tag})
				return hole
			}
			// Row is still open: widen it to name this tag, reusing the
			// unifier's row-union semantics (spec §4.1) instead of
			// mutating the row in place.
			fresh := c.FreshVar()
			widened := &types.EffectRow{Cases: map[string]types.Type{n.Tag: fresh}, Tail: c.FreshVar()}
			if unifyOK, uerr := c.Unify(resolved, widened); !unifyOK {
				return markInconsistentPattern(c, n.Meta, expected, widened, uerr)
			}
			if row, ok = effectRowOf(c, c.Apply(resolved)); ok {
				payloadType = row.Cases[n.Tag]
			} else {
				payloadType = fresh
			}
		}
		if payloadType == nil {
			payloadType = types.Unit
		}
		if n.Payload != nil {
			InferPattern(c, n.Payload, c.Apply(payloadType), seen)
		}
		return c.RecordExprType(n.NodeID(), expected)

	default:
		hole := &types.Unknown{Provenance: types.Incomplete{Reason: "unsupported_pattern"}}
		c.Mark(MarkUnsupportedExpr{markBase{p.NodeID(), hole}, "pattern"}, diag.ReasonTypeExprUnsupported, map[string]any{"kind": "pattern"})
		return hole
	}
}

// effectRowOf reports the effect row a pattern can match tags against:
// either t itself, or the state component of t when t is a registered
// carrier (spec §4.1's Result<V, E> being the canonical E = EffectRow
// case).
func effectRowOf(c *Context, t types.Type) (*types.EffectRow, bool) {
	t = c.Apply(t)
	if row, ok := t.(*types.EffectRow); ok {
		return row, true
	}
	if _, _, state, ok := c.Carriers.Split(t); ok {
		if row, ok := state.(*types.EffectRow); ok {
			return row, true
		}
	}
	return nil, false
}

func literalKindType(k ast.LiteralKind) types.Type {
	switch k {
	case ast.LitInt:
		return types.Int
	case ast.LitBool:
		return types.Bool
	case ast.LitChar:
		return types.Char
	case ast.LitString:
		return types.String
	default:
		return types.Unit
	}
}

func markInconsistentPattern(c *Context, meta ast.Meta, expected, actual types.Type, uerr *types.UnifyError) types.Type {
	if uerr != nil && uerr.Reason == types.ReasonOccursCheck {
		hole := &types.Unknown{Provenance: types.ErrorOccursCheck{L: uerr.A, R: uerr.B}}
		c.Mark(MarkOccursCheck{markBase{meta.ID, hole}, uerr.A, uerr.B}, diag.ReasonOccursCycle, map[string]any{"left": uerr.A, "right": uerr.B})
		return hole
	}
	reason := diag.ReasonTypeMismatch
	if uerr != nil && uerr.Reason == types.ReasonArityMismatch {
		reason = diag.ReasonArityMismatch
	}
	hole := &types.Unknown{Provenance: types.ErrorInconsistent{Expected: expected, Actual: actual}}
	c.Mark(MarkInconsistent{markBase{meta.ID, hole}, expected, actual}, reason, map[string]any{"expected": expected, "actual": actual})
	return hole
}
