package present

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/solver"
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

// TestPresent_PolymorphicIdentity runs `id`/`main` through both layers
// and checks the rendered program and the absence of diagnostics, in
// the teacher parser testutil's cmp.Diff golden-comparison style
// (here against an inline expected string rather than a golden file,
// since there is exactly one rendering shape to pin down).
func TestPresent_PolymorphicIdentity(t *testing.T) {
	reg := ids.NewRegistry()

	idBody := &ast.Block{Meta: fix(reg), Result: ident(reg, "x")}
	idDecl := letDecl(reg, "id", []ast.Param{varParam(reg, "x")}, idBody)

	mainBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "id"),
		Args:   []ast.Expr{intLit(reg, 1)},
	}}
	mainDecl := letDecl(reg, "main", nil, mainBody)

	prog := &ast.Program{Declarations: []ast.TopLevel{idDecl, mainDecl}}

	layer1 := infer.InferProgram(reg, prog, infer.DefaultOptions())
	require.Empty(t, layer1.Diagnostics)

	layer2 := solver.Solve(solver.FromInferResult(layer1))
	require.Empty(t, layer2.Diagnostics)

	view := Present(reg, layer1, layer2)
	require.Empty(t, view.Diagnostics)

	got := PrintProgram(layer2.RemarkedProgram)
	require.Contains(t, got, "main : Int =")

	// Declarations render sorted by name regardless of declaration
	// order ("id" before "main"), which cmp.Diff pins down
	// deterministically without depending on fresh type-variable ids.
	var names []string
	for _, line := range strings.Split(strings.TrimRight(got, "\n"), "\n") {
		names = append(names, strings.SplitN(line, " :", 2)[0])
	}
	if diff := cmp.Diff([]string{"id", "main"}, names); diff != "" {
		t.Errorf("declaration order mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatDiagnostics_EmptyWhenNoDiagnostics(t *testing.T) {
	require.Empty(t, FormatDiagnostics(nil))
}

// TestPresent_RecordProjection_RemarksNestedHole pins down the record-
// projection scenario from cmd/typecheck's demo: `getX = (p) => { p.x }`
// types the projection via a HasField stub, which only resolves after
// Layer 2 solving. Before remarkNode recursed into a Block's Result,
// PrintProgram kept showing the projection's unresolved hole even
// though present.NodeViews already had the right answer.
func TestPresent_RecordProjection_RemarksNestedHole(t *testing.T) {
	reg := ids.NewRegistry()

	proj := &ast.RecordProjection{Meta: fix(reg), Target: ident(reg, "p"), Field: "x"}
	getXBody := &ast.Block{Meta: fix(reg), Result: proj}
	getXDecl := letDecl(reg, "getX", []ast.Param{varParam(reg, "p")}, getXBody)

	record := &ast.RecordLiteral{Meta: fix(reg), Fields: []ast.RecordField{
		{Name: "x", Value: intLit(reg, 1)},
	}}
	mainBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "getX"),
		Args:   []ast.Expr{record},
	}}
	mainDecl := letDecl(reg, "main", nil, mainBody)

	prog := &ast.Program{Declarations: []ast.TopLevel{getXDecl, mainDecl}}

	layer1 := infer.InferProgram(reg, prog, infer.DefaultOptions())
	require.Empty(t, layer1.Diagnostics)

	layer2 := solver.Solve(solver.FromInferResult(layer1))
	require.Empty(t, layer2.Diagnostics)

	got := PrintProgram(layer2.RemarkedProgram)
	require.Contains(t, got, "p.x")
	require.NotContains(t, got, "<infer.Mark", "the nested projection should no longer render as an unresolved hole")
}
