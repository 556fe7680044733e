package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
)

func TestRegisterTypeDeclarations_DuplicateNameDiagnosedAndFirstWins(t *testing.T) {
	reg := ids.NewRegistry()
	c := NewContext(reg)

	first := &ast.TypeDeclaration{
		Meta:         fix(reg),
		Name:         "Dup",
		Constructors: []ast.ConstructorDecl{{Meta: fix(reg), Name: "A"}},
	}
	second := &ast.TypeDeclaration{
		Meta:         fix(reg),
		Name:         "Dup",
		Constructors: []ast.ConstructorDecl{{Meta: fix(reg), Name: "B"}},
	}

	RegisterTypeDeclarations(c, []*ast.TypeDeclaration{first, second})

	info, ok := c.ADTEnv.Get("Dup")
	require.True(t, ok)
	require.Len(t, info.Constructors, 1)
	require.Equal(t, "A", info.Constructors[0].Name)

	var found bool
	for _, d := range c.Diagnostics {
		if d.Origin == second.NodeID() && d.Reason == diag.ReasonTypeDeclDuplicate {
			found = true
		}
	}
	require.True(t, found)
}

// A constructor argument applying an unknown type name to arguments
// (NoSuchGeneric<Int>) rolls the whole declaration back (spec §4.5
// staged rollback): no partial ADT entry, no dangling constructor
// bindings.
func TestRegisterTypeDeclarations_InvalidMemberRollsBackWholeDecl(t *testing.T) {
	reg := ids.NewRegistry()
	c := NewContext(reg)

	decl := &ast.TypeDeclaration{
		Meta: fix(reg),
		Name: "Broken",
		Constructors: []ast.ConstructorDecl{
			{Meta: fix(reg), Name: "Ok"},
			{Meta: fix(reg), Name: "Bad", Args: []ast.TypeExpr{
				&ast.NamedTypeExpr{Meta: fix(reg), Name: "NoSuchGeneric", Args: []ast.TypeExpr{
					&ast.NamedTypeExpr{Meta: fix(reg), Name: "Int"},
				}},
			}},
		},
	}

	RegisterTypeDeclarations(c, []*ast.TypeDeclaration{decl})

	_, ok := c.ADTEnv.Get("Broken")
	require.False(t, ok)

	_, _, found := c.ADTEnv.FindConstructor("Ok")
	require.False(t, found)
}

func TestRegisterTypeDeclarations_AliasExpandsThroughADTEnv(t *testing.T) {
	reg := ids.NewRegistry()
	c := NewContext(reg)

	intAlias := &ast.TypeDeclaration{
		Meta:  fix(reg),
		Name:  "MyInt",
		Alias: &ast.NamedTypeExpr{Meta: fix(reg), Name: "Int"},
	}

	RegisterTypeDeclarations(c, []*ast.TypeDeclaration{intAlias})

	info, ok := c.ADTEnv.Get("MyInt")
	require.True(t, ok)
	require.NotNil(t, info.Alias)
	require.Equal(t, "Int", info.Alias.String())
}
