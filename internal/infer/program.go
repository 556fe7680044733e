package infer

import (
	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/lower"
	"github.com/marklang/markc/internal/types"
)

// Options mirrors spec §6's inferProgram options bag.
type Options struct {
	InitialEnv    *Env
	InitialADTEnv *types.ADTEnv
	RegisterPrelude bool
	// ReifyCarriers is carried through InferResult.Options (spec §9
	// Open Question 2). internal/solver does not read it: Layer 2
	// always unions constraint-label state back into a node's carrier
	// type, whatever this field says.
	ReifyCarriers bool
}

// DefaultOptions matches spec §9's decision: prelude registered,
// carrier reification on by default.
func DefaultOptions() Options {
	return Options{RegisterPrelude: true, ReifyCarriers: true}
}

// InferResult is spec §6's inferProgram output.
type InferResult struct {
	Env           *Env
	ADTEnv        *types.ADTEnv
	AllBindings   map[string]*types.Scheme
	MarkedProgram *ast.Program // the (lowered) raw AST; internal/marked materialises from this + the tables below
	Marks         map[ids.NodeID]Mark
	TypeExprMarks map[ids.TypeExprID]TypeExprMark
	NonExhaustive map[ids.NodeID]MarkNonExhaustive
	Holes         map[ids.NodeID]UnknownInfo
	ConstraintStubs []Stub
	NodeTypeByID  map[ids.NodeID]types.Type
	Diagnostics   diag.List
	Options       Options

	// Carriers and NextVarID let internal/solver build its own
	// types.Unifier/VarFactory continuing this unit's counters instead
	// of colliding with Layer 1's already-allocated variable ids (spec
	// §5: counters are per-context, and Layer 2 is a second context
	// over the same unit).
	Carriers  *types.CarrierRegistry
	NextVarID types.VarID
}

// InferProgram is spec §6's public entry point. It never panics on
// ill-typed input (spec P1): every local failure becomes a mark plus
// diagnostic, and inference continues to the next declaration (spec
// §7 propagation policy).
func InferProgram(reg *ids.Registry, program *ast.Program, opts Options) *InferResult {
	lowered := lower.Program(reg, program)

	c := NewContext(reg)
	if opts.InitialEnv != nil {
		c.Env = opts.InitialEnv
	}
	if opts.InitialADTEnv != nil {
		c.ADTEnv = opts.InitialADTEnv
	}
	if opts.RegisterPrelude {
		RegisterPrelude(c)
	}

	var typeDecls []*ast.TypeDeclaration
	var infixDecls []*ast.InfixDeclaration
	var prefixDecls []*ast.PrefixDeclaration
	var letDecls []*ast.LetDeclaration
	for _, d := range lowered.Declarations {
		switch n := d.(type) {
		case *ast.TypeDeclaration:
			typeDecls = append(typeDecls, n)
		case *ast.InfixDeclaration:
			infixDecls = append(infixDecls, n)
		case *ast.PrefixDeclaration:
			prefixDecls = append(prefixDecls, n)
		case *ast.LetDeclaration:
			letDecls = append(letDecls, n)
		}
	}

	RegisterTypeDeclarations(c, typeDecls)

	// Group mutually-recursive lets by GroupID (spec §4.6); GroupID==0
	// lets (including standalone self-recursive ones) are processed
	// individually. Infixes/prefixes reference an existing Impl name,
	// so they are processed only after every let is bound.
	groups := map[int][]*ast.LetDeclaration{}
	for _, d := range letDecls {
		if d.Rec && d.GroupID != 0 {
			groups[d.GroupID] = append(groups[d.GroupID], d)
		}
	}
	processedGroup := map[int]bool{}
	for _, d := range letDecls {
		if d.Rec && d.GroupID != 0 {
			if processedGroup[d.GroupID] {
				continue
			}
			processedGroup[d.GroupID] = true
			InferLetGroup(c, groups[d.GroupID])
			continue
		}
		inferLetBinding(c, d.Name, d.Params, d.ReturnType, d.Body, d.Rec, d.GroupID, d.NodeID())
	}

	RegisterOperators(c, infixDecls, prefixDecls)

	return &InferResult{
		Env:             c.Env,
		ADTEnv:          c.ADTEnv,
		AllBindings:     c.AllBindings,
		MarkedProgram:   lowered,
		Marks:           c.Marks,
		TypeExprMarks:   c.TypeExprMarks,
		NonExhaustive:   c.NonExhaustive,
		Holes:           c.Holes,
		ConstraintStubs: c.Stubs,
		NodeTypeByID:    c.NodeTypes,
		Diagnostics:     c.Diagnostics,
		Options:         opts,
		Carriers:        c.Carriers,
		NextVarID:       c.nextVar,
	}
}
