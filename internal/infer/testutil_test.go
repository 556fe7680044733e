package infer

import (
	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
)

// fix fabricates a Meta with a fresh NodeID and a zero span, since
// none of these tests care about source positions.
func fix(reg *ids.Registry) ast.Meta {
	return ast.Meta{ID: reg.NewNode(ids.Span{})}
}

func ident(reg *ids.Registry, name string) *ast.Identifier {
	return &ast.Identifier{Meta: fix(reg), Name: name}
}

func intLit(reg *ids.Registry, v int) *ast.Literal {
	return &ast.Literal{Meta: fix(reg), Kind: ast.LitInt, Value: v}
}

func boolLit(reg *ids.Registry, v bool) *ast.Literal {
	return &ast.Literal{Meta: fix(reg), Kind: ast.LitBool, Value: v}
}

func varParam(reg *ids.Registry, name string) ast.Param {
	return ast.Param{Meta: fix(reg), Pattern: &ast.VariablePattern{Meta: fix(reg), Name: name}}
}

func letDecl(reg *ids.Registry, name string, params []ast.Param, body ast.Expr) *ast.LetDeclaration {
	return &ast.LetDeclaration{Meta: fix(reg), Name: name, Params: params, Body: body}
}

func recLetDecl(reg *ids.Registry, name string, params []ast.Param, body ast.Expr) *ast.LetDeclaration {
	return &ast.LetDeclaration{Meta: fix(reg), Name: name, Params: params, Body: body, Rec: true, GroupID: 1}
}

func program(decls ...ast.TopLevel) *ast.Program {
	return &ast.Program{Declarations: decls}
}
