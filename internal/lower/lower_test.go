package lower

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
)

func span(reg *ids.Registry) ids.Span { return ids.Span{} }

func TestBareVariableParamUntouched(t *testing.T) {
	reg := ids.NewRegistry()
	param := ast.Param{Pattern: &ast.VariablePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "x"}}
	body := &ast.Identifier{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "x"}

	newParams, newBody := funcParams(reg, []ast.Param{param}, body)

	require.Same(t, param.Pattern, newParams[0].Pattern)
	require.Same(t, body, newBody)
}

func TestTuplePatternParamLoweredToWrapperMatch(t *testing.T) {
	reg := ids.NewRegistry()
	tuplePattern := &ast.TuplePattern{
		Meta: ast.Meta{ID: reg.NewNode(span(reg))},
		Elements: []ast.Pattern{
			&ast.VariablePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "a"},
			&ast.VariablePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "b"},
		},
	}
	param := ast.Param{Pattern: tuplePattern}
	body := &ast.Identifier{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "a"}

	newParams, newBody := funcParams(reg, []ast.Param{param}, body)

	_, isVar := newParams[0].Pattern.(*ast.VariablePattern)
	require.True(t, isVar, "lowered param must be a bare variable pattern")

	match, ok := newBody.(*ast.Match)
	require.True(t, ok, "body must be wrapped in a single-arm match")
	require.Len(t, match.Arms, 1)
	require.Same(t, tuplePattern, match.Arms[0].Pattern)
	require.Same(t, body, match.Arms[0].Body)

	scrutinee, ok := match.Scrutinee.(*ast.Identifier)
	require.True(t, ok)
	freshParam := newParams[0].Pattern.(*ast.VariablePattern)
	require.Equal(t, freshParam.Name, scrutinee.Name)
}

func TestConstructorPatternParamLowered(t *testing.T) {
	reg := ids.NewRegistry()
	ctorPattern := &ast.ConstructorPattern{
		Meta: ast.Meta{ID: reg.NewNode(span(reg))},
		Name: "Some",
		Args: []ast.Pattern{&ast.VariablePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "v"}},
	}
	param := ast.Param{Pattern: ctorPattern}
	body := &ast.Identifier{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "v"}

	newParams, newBody := funcParams(reg, []ast.Param{param}, body)
	_, isVar := newParams[0].Pattern.(*ast.VariablePattern)
	require.True(t, isVar)
	match := newBody.(*ast.Match)
	require.Same(t, ctorPattern, match.Arms[0].Pattern)
}

func TestMultipleParamsNestOuterToInner(t *testing.T) {
	reg := ids.NewRegistry()
	p0 := &ast.TuplePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}}
	p1 := &ast.ConstructorPattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Name: "Some"}
	body := &ast.Literal{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Kind: ast.LitUnit}

	newParams, newBody := funcParams(reg, []ast.Param{{Pattern: p0}, {Pattern: p1}}, body)

	require.Len(t, newParams, 2)
	outer, ok := newBody.(*ast.Match)
	require.True(t, ok)
	require.Same(t, p0, outer.Arms[0].Pattern)

	inner, ok := outer.Arms[0].Body.(*ast.Match)
	require.True(t, ok)
	require.Same(t, p1, inner.Arms[0].Pattern)
	require.Same(t, body, inner.Arms[0].Body)
}

// TestIdempotent is property P10 (spec §8): lowering an already-lowered
// parameter list a second time must be a no-op.
func TestIdempotent(t *testing.T) {
	reg := ids.NewRegistry()
	tuplePattern := &ast.TuplePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}}
	param := ast.Param{Pattern: tuplePattern}
	body := &ast.Literal{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Kind: ast.LitUnit}

	firstParams, firstBody := funcParams(reg, []ast.Param{param}, body)
	secondParams, secondBody := funcParams(reg, firstParams, firstBody)

	require.Same(t, firstParams[0].Pattern, secondParams[0].Pattern)
	require.Same(t, firstBody, secondBody)
}

func TestProgramLowersLetDeclarationParams(t *testing.T) {
	reg := ids.NewRegistry()
	tuplePattern := &ast.TuplePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}}
	decl := &ast.LetDeclaration{
		Meta:   ast.Meta{ID: reg.NewNode(span(reg))},
		Name:   "f",
		Params: []ast.Param{{Pattern: tuplePattern}},
		Body:   &ast.Literal{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Kind: ast.LitUnit},
	}
	prog := &ast.Program{Declarations: []ast.TopLevel{decl}}

	out := Program(reg, prog)
	lowered := out.Declarations[0].(*ast.LetDeclaration)
	_, isVar := lowered.Params[0].Pattern.(*ast.VariablePattern)
	require.True(t, isVar)
	_, isMatch := lowered.Body.(*ast.Match)
	require.True(t, isMatch)
}

func TestNestedArrowInsideBlockIsLowered(t *testing.T) {
	reg := ids.NewRegistry()
	tuplePattern := &ast.TuplePattern{Meta: ast.Meta{ID: reg.NewNode(span(reg))}}
	innerArrow := &ast.Arrow{
		Meta:   ast.Meta{ID: reg.NewNode(span(reg))},
		Params: []ast.Param{{Pattern: tuplePattern}},
		Body:   &ast.Literal{Meta: ast.Meta{ID: reg.NewNode(span(reg))}, Kind: ast.LitUnit},
	}
	block := &ast.Block{
		Meta:   ast.Meta{ID: reg.NewNode(span(reg))},
		Result: innerArrow,
	}

	out := Expr(reg, block).(*ast.Block)
	arrow := out.Result.(*ast.Arrow)
	_, isVar := arrow.Params[0].Pattern.(*ast.VariablePattern)
	require.True(t, isVar)
}
