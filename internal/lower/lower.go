// Package lower implements parameter lowering (spec §4.3, component
// C3): every function parameter whose pattern is not a bare variable
// is rewritten into a fresh variable parameter wrapping the body in a
// single-arm match against the original pattern. This normalization is
// a precondition of internal/infer's expression inference (C6).
//
// Grounded on internal/elaborate/elaborate.go's surface-to-ANF
// desugaring discipline in the teacher repo: build a replacement node,
// preserve spans, never mutate the original node in place.
package lower

import (
	"fmt"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
)

// Program rewrites every function parameter list in prog, returning a
// new program built from copied nodes; prog itself is not mutated.
// Safe to call twice: a second
// pass is a no-op since every parameter left behind is already a bare
// variable pattern (spec property P10).
func Program(reg *ids.Registry, prog *ast.Program) *ast.Program {
	out := *prog
	decls := make([]ast.TopLevel, len(prog.Declarations))
	for i, d := range prog.Declarations {
		decls[i] = topLevel(reg, d)
	}
	out.Declarations = decls
	return &out
}

func topLevel(reg *ids.Registry, d ast.TopLevel) ast.TopLevel {
	switch n := d.(type) {
	case *ast.LetDeclaration:
		out := *n
		out.Params, out.Body = funcParams(reg, n.Params, expr(reg, n.Body))
		return &out
	default:
		return d
	}
}

// Expr recursively lowers every nested Arrow/Let/match construct
// inside e. Exported so internal/infer (or tests) can lower a
// standalone expression tree without a full Program wrapper.
func Expr(reg *ids.Registry, e ast.Expr) ast.Expr { return expr(reg, e) }

func expr(reg *ids.Registry, e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Arrow:
		out := *n
		out.Params, out.Body = funcParams(reg, n.Params, expr(reg, n.Body))
		return &out
	case *ast.Block:
		out := *n
		stmts := make([]ast.Statement, len(n.Statements))
		for i, s := range n.Statements {
			stmts[i] = statement(reg, s)
		}
		out.Statements = stmts
		out.Result = expr(reg, n.Result)
		return &out
	case *ast.Call:
		out := *n
		out.Callee = expr(reg, n.Callee)
		out.Args = exprs(reg, n.Args)
		return &out
	case *ast.Constructor:
		out := *n
		out.Args = exprs(reg, n.Args)
		return &out
	case *ast.Tuple:
		out := *n
		out.Elements = exprs(reg, n.Elements)
		return &out
	case *ast.RecordLiteral:
		out := *n
		fields := make([]ast.RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ast.RecordField{Name: f.Name, Value: expr(reg, f.Value)}
		}
		out.Fields = fields
		return &out
	case *ast.RecordProjection:
		out := *n
		out.Target = expr(reg, n.Target)
		return &out
	case *ast.Binary:
		out := *n
		out.Left = expr(reg, n.Left)
		out.Right = expr(reg, n.Right)
		return &out
	case *ast.Unary:
		out := *n
		out.Operand = expr(reg, n.Operand)
		return &out
	case *ast.Match:
		out := *n
		out.Scrutinee = expr(reg, n.Scrutinee)
		out.Arms = matchArms(reg, n.Arms)
		return &out
	case *ast.MatchFn:
		out := *n
		out.Arms = matchArms(reg, n.Arms)
		return &out
	case *ast.MatchBundleLiteral:
		out := *n
		matches := make([]*ast.Match, len(n.Matches))
		for i, m := range n.Matches {
			matches[i] = expr(reg, m).(*ast.Match)
		}
		out.Matches = matches
		return &out
	default:
		return e
	}
}

func exprs(reg *ids.Registry, es []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, len(es))
	for i, e := range es {
		out[i] = expr(reg, e)
	}
	return out
}

func matchArms(reg *ids.Registry, arms []ast.MatchArm) []ast.MatchArm {
	out := make([]ast.MatchArm, len(arms))
	for i, a := range arms {
		out[i] = ast.MatchArm{Meta: a.Meta, Pattern: a.Pattern, Guard: expr(reg, a.Guard), Body: expr(reg, a.Body)}
	}
	return out
}

func statement(reg *ids.Registry, s ast.Statement) ast.Statement {
	switch n := s.(type) {
	case *ast.LetStatement:
		out := *n
		out.Params, out.Value = funcParams(reg, n.Params, expr(reg, n.Value))
		return &out
	case *ast.ExprStatement:
		out := *n
		out.Expression = expr(reg, n.Expression)
		return &out
	default:
		return s
	}
}

// funcParams rewrites params so every element's Pattern is a bare
// VariablePattern (or Wildcard), wrapping body in one single-arm match
// per non-trivial pattern, processed right-to-left so the leftmost
// parameter's match ends up outermost (spec §4.3).
//
// The lowered parameter's name is derived from its own fresh NodeID
// rather than a separate counter: reg is already the per-compilation-
// unit monotonic source of identity spec §5 requires, so reusing it
// here avoids introducing a second process-wide mutable counter
// alongside internal/infer's nextVar.
func funcParams(reg *ids.Registry, params []ast.Param, body ast.Expr) ([]ast.Param, ast.Expr) {
	newParams := make([]ast.Param, len(params))
	copy(newParams, params)

	for i := len(params) - 1; i >= 0; i-- {
		p := params[i]
		switch p.Pattern.(type) {
		case *ast.VariablePattern, *ast.WildcardPattern:
			continue // already bare; no rewrite needed
		}

		// The temporary identifier inherits the original pattern's span.
		id := reg.NewNode(p.Pattern.Pos())
		name := fmt.Sprintf("__param%d", id)
		varPattern := &ast.VariablePattern{Meta: ast.Meta{ID: id, Span: p.Pattern.Pos()}, Name: name}

		// The wrapper match inherits the body's span.
		bodySpan := body.Pos()
		scrutinee := &ast.Identifier{Meta: ast.Meta{ID: reg.NewNode(p.Pattern.Pos()), Span: p.Pattern.Pos()}, Name: name}
		arm := ast.MatchArm{
			Meta:    ast.Meta{ID: reg.NewNode(bodySpan), Span: bodySpan},
			Pattern: p.Pattern,
			Body:    body,
		}
		wrapper := &ast.Match{
			Meta:      ast.Meta{ID: reg.NewNode(bodySpan), Span: bodySpan},
			Scrutinee: scrutinee,
			Arms:      []ast.MatchArm{arm},
		}

		newParams[i] = ast.Param{Meta: p.Meta, Pattern: varPattern, Annotation: p.Annotation}
		body = wrapper
	}

	return newParams, body
}
