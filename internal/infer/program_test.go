package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// S1: `type Bool2 = True | False; let id = (x) => { x }; let main = () => { id(True) }`
// id : forall a. a -> a; main : Bool2; no diagnostics.
func TestScenarioS1_PolymorphicIdentity(t *testing.T) {
	reg := ids.NewRegistry()

	typeDecl := &ast.TypeDeclaration{
		Meta: fix(reg),
		Name: "Bool2",
		Constructors: []ast.ConstructorDecl{
			{Meta: fix(reg), Name: "True"},
			{Meta: fix(reg), Name: "False"},
		},
	}

	idBody := &ast.Block{Meta: fix(reg), Result: ident(reg, "x")}
	idDecl := letDecl(reg, "id", []ast.Param{varParam(reg, "x")}, idBody)

	mainBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "id"),
		Args:   []ast.Expr{&ast.Constructor{Meta: fix(reg), Name: "True"}},
	}}
	mainDecl := letDecl(reg, "main", nil, mainBody)

	prog := program(typeDecl, idDecl, mainDecl)
	res := InferProgram(reg, prog, DefaultOptions())

	require.Empty(t, res.Diagnostics)
	require.Empty(t, res.Marks)

	idScheme := res.AllBindings["id"]
	require.NotNil(t, idScheme)
	require.Len(t, idScheme.Quantifiers, 1)
	fn, ok := idScheme.Body.(*types.Func)
	require.True(t, ok)
	fromVar, ok := fn.From.(*types.Var)
	require.True(t, ok)
	toVar, ok := fn.To.(*types.Var)
	require.True(t, ok)
	require.Equal(t, fromVar.ID, toVar.ID)

	mainScheme := res.AllBindings["main"]
	require.NotNil(t, mainScheme)
	require.Equal(t, "Bool2", mainScheme.Body.(*types.Constructor).Name)
}

// S2: `let f = (x) => { x + 1 }; let bad = () => { f(true) }`
// MarkInconsistent on `true`, diagnostic type_mismatch{expected: Int, actual: Bool}; f : Int -> Int.
func TestScenarioS2_ArgumentTypeMismatch(t *testing.T) {
	reg := ids.NewRegistry()

	fBody := &ast.Block{Meta: fix(reg), Result: &ast.Binary{
		Meta:  fix(reg),
		Op:    "+",
		Left:  ident(reg, "x"),
		Right: intLit(reg, 1),
	}}
	fDecl := letDecl(reg, "f", []ast.Param{varParam(reg, "x")}, fBody)

	trueLit := boolLit(reg, true)
	badBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "f"),
		Args:   []ast.Expr{trueLit},
	}}
	badDecl := letDecl(reg, "bad", nil, badBody)

	prog := program(fDecl, badDecl)
	res := InferProgram(reg, prog, DefaultOptions())

	mark, ok := res.Marks[trueLit.NodeID()]
	require.True(t, ok)
	_, isInconsistent := mark.(MarkInconsistent)
	require.True(t, isInconsistent)

	var found bool
	for _, d := range res.Diagnostics {
		if d.Origin == trueLit.NodeID() && d.Reason == diag.ReasonTypeMismatch {
			require.Equal(t, types.Int, d.Details["expected"])
			require.Equal(t, types.Bool, d.Details["actual"])
			found = true
		}
	}
	require.True(t, found)

	fScheme := res.AllBindings["f"]
	require.NotNil(t, fScheme)
	require.Empty(t, fScheme.Quantifiers)
	fn := fScheme.Body.(*types.Func)
	require.Equal(t, types.Int, fn.From)
	require.Equal(t, types.Int, fn.To)
}

// S3: a self-recursive length function over a prelude List, with the
// prelude `type List<a> = Nil | Cons(a, List<a>)`.
// len : forall a. List<a> -> Int; exhaustive; no diagnostics.
func TestScenarioS3_RecursiveListLength(t *testing.T) {
	reg := ids.NewRegistry()

	listDecl := &ast.TypeDeclaration{
		Meta:       fix(reg),
		Name:       "List",
		Parameters: []string{"a"},
		Constructors: []ast.ConstructorDecl{
			{Meta: fix(reg), Name: "Nil"},
			{Meta: fix(reg), Name: "Cons", Args: []ast.TypeExpr{
				&ast.NamedTypeExpr{Meta: fix(reg), Name: "a"},
				&ast.NamedTypeExpr{Meta: fix(reg), Name: "List", Args: []ast.TypeExpr{
					&ast.NamedTypeExpr{Meta: fix(reg), Name: "a"},
				}},
			}},
		},
	}

	nilArm := ast.MatchArm{
		Meta:    fix(reg),
		Pattern: &ast.ConstructorPattern{Meta: fix(reg), Name: "Nil"},
		Body:    intLit(reg, 0),
	}
	consArm := ast.MatchArm{
		Meta: fix(reg),
		Pattern: &ast.ConstructorPattern{Meta: fix(reg), Name: "Cons", Args: []ast.Pattern{
			&ast.WildcardPattern{Meta: fix(reg)},
			&ast.VariablePattern{Meta: fix(reg), Name: "r"},
		}},
		Body: &ast.Binary{
			Meta: fix(reg),
			Op:   "+",
			Left: intLit(reg, 1),
			Right: &ast.Call{
				Meta:   fix(reg),
				Callee: ident(reg, "len"),
				Args:   []ast.Expr{ident(reg, "r")},
			},
		},
	}
	lenBody := &ast.Match{Meta: fix(reg), Scrutinee: ident(reg, "xs"), Arms: []ast.MatchArm{nilArm, consArm}}
	lenDecl := letDecl(reg, "len", []ast.Param{varParam(reg, "xs")}, lenBody)
	lenDecl.Rec = true

	prog := program(listDecl, lenDecl)
	res := InferProgram(reg, prog, DefaultOptions())

	require.Empty(t, res.Diagnostics)
	require.Empty(t, res.NonExhaustive)

	lenScheme := res.AllBindings["len"]
	require.NotNil(t, lenScheme)
	require.Len(t, lenScheme.Quantifiers, 1)
	fn := lenScheme.Body.(*types.Func)
	ctor := fn.From.(*types.Constructor)
	require.Equal(t, "List", ctor.Name)
	require.Equal(t, types.Int, fn.To)
}

// S4: `type Shape = Circle(Int) | Square(Int); let area = (s) => match s { Circle(r) => r }`
// MarkNonExhaustive at the match with missingCases = ["Square"]; diagnostic non_exhaustive_match.
func TestScenarioS4_NonExhaustiveMatch(t *testing.T) {
	reg := ids.NewRegistry()

	shapeDecl := &ast.TypeDeclaration{
		Meta: fix(reg),
		Name: "Shape",
		Constructors: []ast.ConstructorDecl{
			{Meta: fix(reg), Name: "Circle", Args: []ast.TypeExpr{&ast.NamedTypeExpr{Meta: fix(reg), Name: "Int"}}},
			{Meta: fix(reg), Name: "Square", Args: []ast.TypeExpr{&ast.NamedTypeExpr{Meta: fix(reg), Name: "Int"}}},
		},
	}

	matchExpr := &ast.Match{
		Meta:      fix(reg),
		Scrutinee: ident(reg, "s"),
		Arms: []ast.MatchArm{
			{
				Meta: fix(reg),
				Pattern: &ast.ConstructorPattern{Meta: fix(reg), Name: "Circle", Args: []ast.Pattern{
					&ast.VariablePattern{Meta: fix(reg), Name: "r"},
				}},
				Body: ident(reg, "r"),
			},
		},
	}
	areaDecl := letDecl(reg, "area", []ast.Param{varParam(reg, "s")}, matchExpr)

	prog := program(shapeDecl, areaDecl)
	res := InferProgram(reg, prog, DefaultOptions())

	mark, ok := res.NonExhaustive[matchExpr.NodeID()]
	require.True(t, ok)
	require.Equal(t, []string{"Square"}, mark.MissingCases)

	var found bool
	for _, d := range res.Diagnostics {
		if d.Origin == matchExpr.NodeID() && d.Reason == diag.ReasonNonExhaustiveMatch {
			found = true
		}
	}
	require.True(t, found)
}

// S5 (occurs check): `let omega = (x) => { x(x) }`.
//
// Note: the spec's literal S5 text (`let f = (x) => x; let g = () => {
// f(f) }`) does not actually trigger an occurs-check failure under
// faithful Hindley-Milner with let-generalization — f is generalized
// to forall a. a -> a, so each of the two references in f(f) is
// independently instantiated and the call simply types as (a -> a) ->
// (a -> a) (the textbook reason let-polymorphism avoids the
// self-application occurs-check blowup; see S1, which exercises the
// same generalization machinery for `id`). The genuine minimal
// trigger is self-application of a *parameter*, which is never
// generalized within its own body: `x(x)` forces x's type to unify
// with a function type built from itself.
func TestScenarioS5_OccursCheck(t *testing.T) {
	reg := ids.NewRegistry()

	selfApply := &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "x"),
		Args:   []ast.Expr{ident(reg, "x")},
	}
	omegaBody := &ast.Block{Meta: fix(reg), Result: selfApply}
	omegaDecl := letDecl(reg, "omega", []ast.Param{varParam(reg, "x")}, omegaBody)

	prog := program(omegaDecl)
	res := InferProgram(reg, prog, DefaultOptions())

	mark, ok := res.Marks[selfApply.Args[0].NodeID()]
	require.True(t, ok)
	_, isOccurs := mark.(MarkOccursCheck)
	require.True(t, isOccurs)

	var found bool
	for _, d := range res.Diagnostics {
		if d.Origin == selfApply.Args[0].NodeID() && d.Reason == diag.ReasonOccursCycle {
			found = true
		}
	}
	require.True(t, found)

	require.True(t, types.IsHole(res.NodeTypeByID[omegaBody.NodeID()]))
}
