package marked

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/types"
)

func fix(reg *ids.Registry) ast.Meta {
	return ast.Meta{ID: reg.NewNode(ids.Span{})}
}

func ident(reg *ids.Registry, name string) *ast.Identifier {
	return &ast.Identifier{Meta: fix(reg), Name: name}
}

func intLit(reg *ids.Registry, v int) *ast.Literal {
	return &ast.Literal{Meta: fix(reg), Kind: ast.LitInt, Value: v}
}

func varParam(reg *ids.Registry, name string) ast.Param {
	return ast.Param{Meta: fix(reg), Pattern: &ast.VariablePattern{Meta: fix(reg), Name: name}}
}

func letDecl(reg *ids.Registry, name string, params []ast.Param, body ast.Expr) *ast.LetDeclaration {
	return &ast.LetDeclaration{Meta: fix(reg), Name: name, Params: params, Body: body}
}

// TestMaterialize_MarkBecomesHole checks rule 1: a Layer 1 mark on an
// expression node is materialised verbatim as a Hole, not as the
// ordinary node kind it would otherwise become.
func TestMaterialize_MarkBecomesHole(t *testing.T) {
	reg := ids.NewRegistry()

	fBody := &ast.Block{Meta: fix(reg), Result: &ast.Binary{
		Meta:  fix(reg),
		Op:    "+",
		Left:  ident(reg, "x"),
		Right: intLit(reg, 1),
	}}
	fDecl := letDecl(reg, "f", []ast.Param{varParam(reg, "x")}, fBody)

	trueLit := &ast.Literal{Meta: fix(reg), Kind: ast.LitBool, Value: true}
	badBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "f"),
		Args:   []ast.Expr{trueLit},
	}}
	badDecl := letDecl(reg, "bad", nil, badBody)

	prog := &ast.Program{Declarations: []ast.TopLevel{fDecl, badDecl}}
	res := infer.InferProgram(reg, prog, infer.DefaultOptions())
	require.NotEmpty(t, res.Marks, "scenario should produce at least one mark")

	out := Materialize(res)

	var bad Let
	for _, d := range out.Decls {
		if d.Name == "bad" {
			bad = d
		}
	}
	require.NotNil(t, bad.Body)

	block, ok := bad.Body.(Block)
	require.True(t, ok, "bad's body should materialise as a Block node")
	call, ok := block.Result.(Call)
	require.True(t, ok, "bad's block result should materialise as a Call node")
	require.Len(t, call.Args, 1)

	_, isHole := call.Args[0].(Hole)
	require.True(t, isHole, "the mismatched boolean argument should materialise as a Hole")
}

// TestTypeOrHole_FallsBackWhenNoRecordedType checks rule 2 directly:
// a node id absent from NodeTypeByID materialises as a hole carrying
// an "expr.<kind>" provenance reason.
func TestTypeOrHole_FallsBackWhenNoRecordedType(t *testing.T) {
	reg := ids.NewRegistry()
	id := reg.NewNode(ids.Span{})

	res := &infer.InferResult{NodeTypeByID: map[ids.NodeID]types.Type{}}
	m := &materializer{res: res}

	got := m.typeOrHole(id, "identifier")
	unk, ok := got.(*types.Unknown)
	require.True(t, ok)
	inc, ok := unk.Provenance.(types.Incomplete)
	require.True(t, ok)
	require.Equal(t, "expr.identifier", inc.Reason)
}
