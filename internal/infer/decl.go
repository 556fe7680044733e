package infer

import (
	"fmt"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// RegisterTypeDeclarations runs the two-pass ADT registration (spec
// §4.5), grounded on the teacher's typechecker_data.go. Pass 1 inserts
// every declared name with fresh parameter vars (allowing forward
// references and mutual recursion); pass 2 translates constructors
// into schemes, rolling back the whole declaration atomically on any
// invalid member.
func RegisterTypeDeclarations(c *Context, decls []*ast.TypeDeclaration) {
	paramVars := make(map[*ast.TypeDeclaration][]types.VarID, len(decls))

	// Pass 1: names only.
	for _, d := range decls {
		if _, exists := c.ADTEnv.Get(d.Name); exists {
			c.Diagnostics.Add(diag.New(d.NodeID(), diag.ReasonTypeDeclDuplicate, map[string]any{"name": d.Name}))
			continue
		}
		vars := make([]types.VarID, len(d.Parameters))
		for i := range d.Parameters {
			vars[i] = c.FreshVar().ID
		}
		paramVars[d] = vars
		c.ADTEnv.Set(d.Name, &types.ADTInfo{Name: d.Name, Parameters: vars, RecordFields: d.RecordFields})
	}

	// Pass 2: constructors / aliases.
	seenCtors := map[string]bool{}
	for _, d := range decls {
		vars, wasRegistered := paramVars[d]
		if !wasRegistered {
			continue // duplicate name from pass 1; already diagnosed
		}

		paramNameToVar := make(map[string]types.VarID, len(d.Parameters))
		for i, name := range d.Parameters {
			paramNameToVar[name] = vars[i]
		}

		if d.Alias != nil {
			aliasType, mark := translateTypeExpr(c, d.Alias, paramNameToVar)
			if mark != nil {
				c.TypeExprMarks[mark.TypeExprID()] = mark
				c.ADTEnv.Delete(d.Name)
				c.Diagnostics.Add(diag.New(d.NodeID(), diag.ReasonTypeDeclInvalidMember, map[string]any{"name": d.Name, "reason": "invalid alias target"}))
				continue
			}
			info, _ := c.ADTEnv.Get(d.Name)
			info.Alias = aliasType
			continue
		}

		info, _ := c.ADTEnv.Get(d.Name)
		var ctors []types.ConstructorInfo
		invalid := false
		for _, cd := range d.Constructors {
			if seenCtors[cd.Name] {
				c.Diagnostics.Add(diag.New(cd.NodeID(), diag.ReasonTypeDeclInvalidMember, map[string]any{"name": cd.Name, "reason": "duplicate constructor"}))
				invalid = true
				break
			}
			argTypes := make([]types.Type, len(cd.Args))
			ok := true
			for i, argExpr := range cd.Args {
				t, mark := translateTypeExpr(c, argExpr, paramNameToVar)
				if mark != nil {
					c.TypeExprMarks[mark.TypeExprID()] = mark
					ok = false
					break
				}
				argTypes[i] = t
			}
			if !ok {
				invalid = true
				break
			}
			returnVars := make([]types.Type, len(vars))
			for i, v := range vars {
				returnVars[i] = &types.Var{ID: v}
			}
			body := types.Type(&types.Constructor{Name: d.Name, Args: returnVars})
			for i := len(argTypes) - 1; i >= 0; i-- {
				body = &types.Func{From: argTypes[i], To: body}
			}
			ctors = append(ctors, types.ConstructorInfo{Name: cd.Name, Arity: len(cd.Args), Scheme: &types.Scheme{Quantifiers: vars, Body: body}})
		}

		if invalid {
			// Staged rollback: remove the ADT entry and any bindings
			// staged for its constructors (spec §4.5).
			for _, ci := range ctors {
				delete(seenCtors, ci.Name)
			}
			c.ADTEnv.Delete(d.Name)
			continue
		}

		for _, ci := range ctors {
			seenCtors[ci.Name] = true
		}
		info.Constructors = ctors
	}
}

// translateTypeExpr resolves a syntactic type expression into a
// types.Type (spec §4.5): scope first (type parameters), then the
// primitive table, then the ADT environment (expanding aliases).
func translateTypeExpr(c *Context, te ast.TypeExpr, params map[string]types.VarID) (types.Type, TypeExprMark) {
	switch n := te.(type) {
	case *ast.NamedTypeExpr:
		if v, ok := params[n.Name]; ok && len(n.Args) == 0 {
			return &types.Var{ID: v}, nil
		}
		if prim, ok := primitiveByName(n.Name); ok && len(n.Args) == 0 {
			return prim, nil
		}
		if info, ok := c.ADTEnv.Get(n.Name); ok {
			if len(n.Args) != len(info.Parameters) && info.Alias == nil {
				return nil, &MarkTypeExprArity{typeExprMarkBase{ids.TypeExprID(n.NodeID())}, n.Name, len(info.Parameters), len(n.Args)}
			}
			args := make([]types.Type, len(n.Args))
			for i, a := range n.Args {
				t, mark := translateTypeExpr(c, a, params)
				if mark != nil {
					return nil, mark
				}
				args[i] = t
			}
			if info.Alias != nil {
				sub := make(types.Subst, len(info.Parameters))
				for i, p := range info.Parameters {
					if i < len(args) {
						sub[p] = args[i]
					}
				}
				return types.Apply(sub, info.Alias), nil
			}
			return &types.Constructor{Name: n.Name, Args: args}, nil
		}
		if len(n.Args) == 0 {
			// Unknown free type variable: fresh-allocate rather than mark
			// (spec §4.5: "either fresh-allocated ... or marked").
			return c.FreshVar(), nil
		}
		return nil, &MarkTypeExprUnknown{typeExprMarkBase{ids.TypeExprID(n.NodeID())}, n.Name}

	case *ast.FuncTypeExpr:
		from, mark := translateTypeExpr(c, n.From, params)
		if mark != nil {
			return nil, mark
		}
		to, mark := translateTypeExpr(c, n.To, params)
		if mark != nil {
			return nil, mark
		}
		return &types.Func{From: from, To: to}, nil

	case *ast.TupleTypeExpr:
		elems := make([]types.Type, len(n.Elements))
		for i, e := range n.Elements {
			t, mark := translateTypeExpr(c, e, params)
			if mark != nil {
				return nil, mark
			}
			elems[i] = t
		}
		return &types.Tuple{Elements: elems}, nil

	case *ast.RecordTypeExpr:
		fields := make(map[string]types.Type, len(n.Fields))
		for _, f := range n.Fields {
			t, mark := translateTypeExpr(c, f.Type, params)
			if mark != nil {
				return nil, mark
			}
			fields[f.Name] = t
		}
		return &types.Record{Fields: fields}, nil

	default:
		return nil, &MarkTypeExprUnsupported{typeExprMarkBase{ids.TypeExprID(te.NodeID())}, fmt.Sprintf("%T", te)}
	}
}

// RegisterOperators binds `__op_<op>`/`__prefix_<op>` to the declared
// implementation function and records the operator's class for
// inferBinary/inferUnary's stub recording (spec §4.6). Fixity itself
// is a non-goal (spec §1): declarations only need their Impl name to
// already be bound in scope.
func RegisterOperators(c *Context, infixes []*ast.InfixDeclaration, prefixes []*ast.PrefixDeclaration) {
	for _, d := range infixes {
		if scheme, ok := c.Env.Lookup(d.Impl); ok {
			c.Bind("__op_"+d.Operator, scheme)
		}
		c.OpClasses[d.Operator] = d.Class
	}
	for _, d := range prefixes {
		if scheme, ok := c.Env.Lookup(d.Impl); ok {
			c.Bind("__prefix_"+d.Operator, scheme)
		}
		c.OpClasses[d.Operator] = d.Class
	}
}

func primitiveByName(name string) (types.Type, bool) {
	switch name {
	case "Int":
		return types.Int, true
	case "Bool":
		return types.Bool, true
	case "Char":
		return types.Char, true
	case "String":
		return types.String, true
	case "Unit":
		return types.Unit, true
	default:
		return nil, false
	}
}
