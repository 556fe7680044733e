// Package marked builds the marked AST (component C8): the raw/lowered
// AST with every node's inferred type attached, and locally-
// contradictory expressions replaced by their Layer 1 mark. Grounded
// on internal/typedast/typed_ast.go's TypedExpr embedding (NodeID,
// Span, Type, underlying untyped node), generalized here to a closed
// sum of Marked* node kinds mirroring the raw ast package's variants
// one for one, with the teacher's loose interface{}-typed Type/
// EffectRow fields tightened to the concrete types.Type interface
// (see DESIGN.md).
package marked

import (
	"fmt"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/types"
)

// Node is the interface every materialised expression satisfies.
type Node interface {
	GetNodeID() ids.NodeID
	GetSpan() ids.Span
	GetType() types.Type
	String() string
}

// Base carries the identity/type every materialised expression shares.
type Base struct {
	ID   ids.NodeID
	Span ids.Span
	Typ  types.Type
}

func (b Base) GetNodeID() ids.NodeID { return b.ID }
func (b Base) GetSpan() ids.Span     { return b.Span }
func (b Base) GetType() types.Type   { return b.Typ }

// Hole stands in for a node a Mark replaced outright (rule 1: "if a
// mark exists for an expression, use it verbatim").
type Hole struct {
	Base
	Mark infer.Mark
}

func (h Hole) String() string { return fmt.Sprintf("<%T> : %s", h.Mark, h.Typ) }

type Identifier struct {
	Base
	Name string
}

func (n Identifier) String() string { return n.Name }

type Literal struct {
	Base
	Kind  ast.LiteralKind
	Value any
}

func (n Literal) String() string { return fmt.Sprintf("%v", n.Value) }

type Constructor struct {
	Base
	Name string
	Args []Node
}

func (n Constructor) String() string { return fmt.Sprintf("%s(%v)", n.Name, n.Args) }

type Tuple struct {
	Base
	Elements []Node
}

func (n Tuple) String() string { return fmt.Sprintf("(%v)", n.Elements) }

type RecordField struct {
	Name  string
	Value Node
}

type Record struct {
	Base
	Fields []RecordField
}

func (n Record) String() string { return fmt.Sprintf("{%v} : %s", n.Fields, n.Typ) }

type RecordProjection struct {
	Base
	Target Node
	Field  string
}

func (n RecordProjection) String() string { return fmt.Sprintf("%s.%s", n.Target, n.Field) }

type Call struct {
	Base
	Callee Node
	Args   []Node
}

func (n Call) String() string { return fmt.Sprintf("%s(%v) : %s", n.Callee, n.Args, n.Typ) }

type Binary struct {
	Base
	Op          string
	Left, Right Node
}

func (n Binary) String() string { return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right) }

type Unary struct {
	Base
	Op      string
	Operand Node
}

func (n Unary) String() string { return fmt.Sprintf("%s%s", n.Op, n.Operand) }

type Param struct {
	Pattern Pattern
	Type    types.Type
}

type Arrow struct {
	Base
	Params []Param
	Body   Node
}

func (n Arrow) String() string { return fmt.Sprintf("(%v) => %s : %s", n.Params, n.Body, n.Typ) }

type Statement interface {
	GetNodeID() ids.NodeID
	String() string
}

type LetStatement struct {
	ID    ids.NodeID
	Name  string
	Value Node
}

func (s LetStatement) GetNodeID() ids.NodeID { return s.ID }
func (s LetStatement) String() string        { return fmt.Sprintf("let %s = %s", s.Name, s.Value) }

type ExprStatement struct {
	ID         ids.NodeID
	Expression Node
}

func (s ExprStatement) GetNodeID() ids.NodeID { return s.ID }
func (s ExprStatement) String() string        { return s.Expression.String() }

type Block struct {
	Base
	Statements []Statement
	Result     Node // nil means Unit
}

func (n Block) String() string { return fmt.Sprintf("{ %v; %s }", n.Statements, n.Result) }

// Arm is one materialised match arm, carrying the pattern's own
// resolved type alongside the arm body.
type Arm struct {
	Pattern Pattern
	Guard   Node
	Body    Node
}

// Match carries the coverage verdict C7 computed: Exhaustive and, when
// not, the constructor names the match failed to cover.
type Match struct {
	Base
	Scrutinee    Node
	Arms         []Arm
	Exhaustive   bool
	MissingCases []string
}

func (n Match) String() string { return fmt.Sprintf("match %s { ... } : %s", n.Scrutinee, n.Typ) }

type MatchFn struct {
	Base
	Arms         []Arm
	Exhaustive   bool
	MissingCases []string
}

func (n MatchFn) String() string { return fmt.Sprintf("match_fn { ... } : %s", n.Typ) }

// MatchBundle groups the bundle's materialised matches, having
// consumed (and, per rule 4, cleared) each member's coverage entry out
// of the shared NonExhaustive table as it was folded in here.
type MatchBundle struct {
	Base
	Matches []*Match
}

func (n MatchBundle) String() string { return fmt.Sprintf("bundle(%v)", n.Matches) }

// ---- Patterns ----

type Pattern interface {
	GetType() types.Type
	String() string
}

type PatternBase struct{ Typ types.Type }

func (p PatternBase) GetType() types.Type { return p.Typ }

type WildcardPattern struct{ PatternBase }

func (p WildcardPattern) String() string { return "_" }

type VariablePattern struct {
	PatternBase
	Name string
}

func (p VariablePattern) String() string { return p.Name }

type LiteralPattern struct {
	PatternBase
	Value any
}

func (p LiteralPattern) String() string { return fmt.Sprintf("%v", p.Value) }

type TuplePattern struct {
	PatternBase
	Elements []Pattern
}

func (p TuplePattern) String() string { return fmt.Sprintf("(%v)", p.Elements) }

type ConstructorPattern struct {
	PatternBase
	Name string
	Args []Pattern
}

func (p ConstructorPattern) String() string { return fmt.Sprintf("%s(%v)", p.Name, p.Args) }

// EffectTagPattern mirrors ast.EffectTagPattern: matches one label of
// an effect row, optionally binding its payload.
type EffectTagPattern struct {
	PatternBase
	Tag     string
	Payload Pattern
}

func (p EffectTagPattern) String() string {
	if p.Payload == nil {
		return p.Tag
	}
	return fmt.Sprintf("%s(%v)", p.Tag, p.Payload)
}

// Let wraps a top-level let declaration's materialised body alongside
// the generalized scheme Layer 1 bound it to, for internal/present to
// read without re-walking the raw AST.
type Let struct {
	ID     ids.NodeID
	Name   string
	Scheme *types.Scheme
	Body   Node
}

// Program is the materialised root (spec §4.8).
type Program struct {
	Decls []Let
}

// materializer carries the shared tables a whole pass reads from;
// nothing here is mutated except res.NonExhaustive, which bundle
// materialisation drains entries out of (rule 4).
type materializer struct {
	res *infer.InferResult
}

// Materialize builds the marked AST from a Layer 1 result (spec
// §4.8): res.MarkedProgram (the lowered raw AST) plus
// res.NodeTypeByID/res.Marks/res.TypeExprMarks/res.NonExhaustive.
func Materialize(res *infer.InferResult) *Program {
	m := &materializer{res: res}
	prog := &Program{}
	for _, d := range res.MarkedProgram.Declarations {
		let, ok := d.(*ast.LetDeclaration)
		if !ok {
			continue
		}
		prog.Decls = append(prog.Decls, Let{
			ID:     let.NodeID(),
			Name:   let.Name,
			Scheme: res.AllBindings[let.Name],
			Body:   m.expr(let.Body),
		})
	}
	return prog
}

// typeOrHole implements rule 2's fallback: the recorded type if
// present, else a hole whose provenance names the node's expression
// kind (spec §4.8: `"expr.<kind>"`).
func (m *materializer) typeOrHole(id ids.NodeID, kind string) types.Type {
	if t, ok := m.res.NodeTypeByID[id]; ok {
		return t
	}
	return &types.Unknown{Provenance: types.Incomplete{Reason: "expr." + kind}}
}

func (m *materializer) expr(e ast.Expr) Node {
	if e == nil {
		return nil
	}
	if mark, ok := m.res.Marks[e.NodeID()]; ok {
		return Hole{Base: Base{ID: e.NodeID(), Span: e.Pos(), Typ: mark.Type()}, Mark: mark}
	}

	switch n := e.(type) {
	case *ast.Identifier:
		return Identifier{Base: m.nodeBase(n, "identifier"), Name: n.Name}
	case *ast.Literal:
		return Literal{Base: m.nodeBase(n, "literal"), Kind: n.Kind, Value: n.Value}
	case *ast.Constructor:
		args := make([]Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.expr(a)
		}
		return Constructor{Base: m.nodeBase(n, "constructor"), Name: n.Name, Args: args}
	case *ast.Tuple:
		elems := make([]Node, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = m.expr(el)
		}
		return Tuple{Base: m.nodeBase(n, "tuple"), Elements: elems}
	case *ast.RecordLiteral:
		fields := make([]RecordField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = RecordField{Name: f.Name, Value: m.expr(f.Value)}
		}
		return Record{Base: m.nodeBase(n, "record_literal"), Fields: fields}
	case *ast.RecordProjection:
		return RecordProjection{Base: m.nodeBase(n, "record_projection"), Target: m.expr(n.Target), Field: n.Field}
	case *ast.Call:
		args := make([]Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.expr(a)
		}
		return Call{Base: m.nodeBase(n, "call"), Callee: m.expr(n.Callee), Args: args}
	case *ast.Binary:
		return Binary{Base: m.nodeBase(n, "binary"), Op: n.Op, Left: m.expr(n.Left), Right: m.expr(n.Right)}
	case *ast.Unary:
		return Unary{Base: m.nodeBase(n, "unary"), Op: n.Op, Operand: m.expr(n.Operand)}
	case *ast.Arrow:
		return Arrow{Base: m.nodeBase(n, "arrow"), Params: m.params(n.Params), Body: m.expr(n.Body)}
	case *ast.Block:
		return m.block(n)
	case *ast.Match:
		return m.match(n)
	case *ast.MatchFn:
		return m.matchFn(n)
	case *ast.MatchBundleLiteral:
		return m.bundle(n)
	default:
		return Hole{Base: Base{ID: e.NodeID(), Span: e.Pos(), Typ: &types.Unknown{Provenance: types.ErrorInternal{Reason: "marked: unhandled expr kind"}}}}
	}
}

func (m *materializer) nodeBase(n ast.Expr, kind string) Base {
	return Base{ID: n.NodeID(), Span: n.Pos(), Typ: m.typeOrHole(n.NodeID(), kind)}
}

func (m *materializer) params(ps []ast.Param) []Param {
	out := make([]Param, len(ps))
	for i, p := range ps {
		out[i] = Param{Pattern: m.pattern(p.Pattern), Type: m.typeOrHole(p.NodeID(), "param")}
	}
	return out
}

func (m *materializer) block(n *ast.Block) Block {
	stmts := make([]Statement, len(n.Statements))
	for i, s := range n.Statements {
		switch st := s.(type) {
		case *ast.LetStatement:
			stmts[i] = LetStatement{ID: st.NodeID(), Name: st.Name, Value: m.expr(st.Value)}
		case *ast.ExprStatement:
			stmts[i] = ExprStatement{ID: st.NodeID(), Expression: m.expr(st.Expression)}
		}
	}
	var result Node
	if n.Result != nil {
		result = m.expr(n.Result)
	}
	return Block{Base: m.nodeBase(n, "block"), Statements: stmts, Result: result}
}

func (m *materializer) arm(a ast.MatchArm) Arm {
	out := Arm{Pattern: m.pattern(a.Pattern), Body: m.expr(a.Body)}
	if a.Guard != nil {
		out.Guard = m.expr(a.Guard)
	}
	return out
}

func (m *materializer) match(n *ast.Match) *Match {
	arms := make([]Arm, len(n.Arms))
	for i, a := range n.Arms {
		arms[i] = m.arm(a)
	}
	out := &Match{Base: m.nodeBase(n, "match"), Scrutinee: m.expr(n.Scrutinee), Arms: arms, Exhaustive: true}
	if ne, ok := m.res.NonExhaustive[n.NodeID()]; ok {
		out.Exhaustive = false
		out.MissingCases = ne.MissingCases
	}
	return out
}

func (m *materializer) matchFn(n *ast.MatchFn) MatchFn {
	arms := make([]Arm, len(n.Arms))
	for i, a := range n.Arms {
		arms[i] = m.arm(a)
	}
	out := MatchFn{Base: m.nodeBase(n, "match_fn"), Arms: arms, Exhaustive: true}
	if ne, ok := m.res.NonExhaustive[n.NodeID()]; ok {
		out.Exhaustive = false
		out.MissingCases = ne.MissingCases
	}
	return out
}

// bundle materialises every nested match and, per rule 4, drains each
// one's entry out of the shared NonExhaustive table as it is folded
// into the per-match Exhaustive/MissingCases fields above — nothing
// downstream should find that coverage information a second time
// under the bundle's own node id.
func (m *materializer) bundle(n *ast.MatchBundleLiteral) MatchBundle {
	out := MatchBundle{Base: m.nodeBase(n, "match_bundle_literal")}
	for _, mm := range n.Matches {
		materialised := m.match(mm)
		delete(m.res.NonExhaustive, mm.NodeID())
		out.Matches = append(out.Matches, materialised)
	}
	return out
}

func (m *materializer) pattern(p ast.Pattern) Pattern {
	if p == nil {
		return nil
	}
	typ := m.typeOrHole(p.NodeID(), "pattern")
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return WildcardPattern{PatternBase{typ}}
	case *ast.VariablePattern:
		return VariablePattern{PatternBase{typ}, n.Name}
	case *ast.LiteralPattern:
		return LiteralPattern{PatternBase{typ}, n.Value}
	case *ast.TuplePattern:
		elems := make([]Pattern, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = m.pattern(e)
		}
		return TuplePattern{PatternBase{typ}, elems}
	case *ast.ConstructorPattern:
		args := make([]Pattern, len(n.Args))
		for i, a := range n.Args {
			args[i] = m.pattern(a)
		}
		return ConstructorPattern{PatternBase{typ}, n.Name, args}
	case *ast.EffectTagPattern:
		return EffectTagPattern{PatternBase{typ}, n.Tag, m.pattern(n.Payload)}
	default:
		return WildcardPattern{PatternBase{typ}}
	}
}
