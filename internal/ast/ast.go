// Package ast defines the input AST consumed by the inference pipeline
// (spec §6). The lexer/parser that produces this tree is out of scope
// (spec §1) — this package only defines the shape downstream code
// walks. Every node carries a stable NodeID and Span (spec invariant
// 1), both assigned by the external producer via internal/ids.
package ast

import "github.com/marklang/markc/internal/ids"

// Meta is embedded by every node and carries its identity.
type Meta struct {
	ID   ids.NodeID
	Span ids.Span
}

func (m Meta) NodeID() ids.NodeID { return m.ID }
func (m Meta) Pos() ids.Span      { return m.Span }

// Node is the base interface satisfied by every AST node.
type Node interface {
	NodeID() ids.NodeID
	Pos() ids.Span
}

// Program is the root of a compilation unit.
type Program struct {
	Meta
	Imports      []string
	Reexports    []string
	Declarations []TopLevel
}

// TopLevel is any top-level declaration.
type TopLevel interface {
	Node
	topLevel()
}

// LetDeclaration binds a name to a function/value, optionally
// recursive (Rec) and part of a mutually-recursive group (GroupID
// shared by every member of the same `let rec ... and ...` group).
type LetDeclaration struct {
	Meta
	Name       string
	Params     []Param
	ReturnType TypeExpr // optional, nil if absent
	Body       Expr
	Rec        bool
	GroupID    int // 0 means "not part of a recursive group"
}

func (*LetDeclaration) topLevel() {}

// Param is a function parameter: pattern plus optional annotation.
type Param struct {
	Meta
	Pattern    Pattern
	Annotation TypeExpr // optional
}

// TypeDeclaration introduces an ADT or a type alias.
type TypeDeclaration struct {
	Meta
	Name         string
	Parameters   []string // type parameter names
	Alias        TypeExpr // non-nil iff this is `type Foo = Bar<Int>`
	Constructors []ConstructorDecl
	RecordFields []string // present iff this ADT also declares record sugar (§4.1(c))
}

func (*TypeDeclaration) topLevel() {}

// ConstructorDecl is one constructor of an ADT.
type ConstructorDecl struct {
	Meta
	Name string
	Args []TypeExpr
}

// InfixDeclaration binds an infix operator to an implementation
// function; fixity is supplied externally (spec §1 non-goal: no
// inference of operator fixity).
type InfixDeclaration struct {
	Meta
	Operator      string
	Precedence    int
	Associativity string // "left" | "right" | "none"
	Impl          string // name of the function implementing the operator
	Class         string // "numeric" | "boolean" | "" (unknown to C6 recording)
}

func (*InfixDeclaration) topLevel() {}

// PrefixDeclaration binds a prefix operator to an implementation.
type PrefixDeclaration struct {
	Meta
	Operator string
	Impl     string
	Class    string
}

func (*PrefixDeclaration) topLevel() {}

// ---- Expressions ----

// Expr is any expression node.
type Expr interface {
	Node
	expr()
}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitBool
	LitChar
	LitString
	LitUnit
)

// Identifier is a name reference.
type Identifier struct {
	Meta
	Name string
}

func (*Identifier) expr() {}

// Literal is a constant value.
type Literal struct {
	Meta
	Kind  LiteralKind
	Value any
}

func (*Literal) expr() {}

// Constructor is an applied (possibly partially) named-ADT constructor.
type Constructor struct {
	Meta
	Name string
	Args []Expr
}

func (*Constructor) expr() {}

// Tuple is a fixed-arity ordered tuple literal.
type Tuple struct {
	Meta
	Elements []Expr
}

func (*Tuple) expr() {}

// RecordLiteral is a `{ field: value, ... }` literal.
type RecordLiteral struct {
	Meta
	Fields []RecordField
}

func (*RecordLiteral) expr() {}

// RecordField is one field of a record literal.
type RecordField struct {
	Name  string
	Value Expr
}

// RecordProjection is `target.field`.
type RecordProjection struct {
	Meta
	Target Expr
	Field  string
}

func (*RecordProjection) expr() {}

// Call is `callee(arg0, arg1, ...)`, curried one argument at a time by
// the inferer (spec §4.6).
type Call struct {
	Meta
	Callee Expr
	Args   []Expr
}

func (*Call) expr() {}

// Binary is a binary operator application, resolved against
// `__op_<op>` in the environment.
type Binary struct {
	Meta
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) expr() {}

// Unary is a prefix operator application, resolved against
// `__prefix_<op>`.
type Unary struct {
	Meta
	Op      string
	Operand Expr
}

func (*Unary) expr() {}

// Arrow is a lambda: `(params) => body`.
type Arrow struct {
	Meta
	Params     []Param
	ReturnType TypeExpr // optional
	Body       Expr
}

func (*Arrow) expr() {}

// Block is `{ stmt; stmt; result? }`.
type Block struct {
	Meta
	Statements []Statement
	Result     Expr // optional, nil means the block has type Unit
}

func (*Block) expr() {}

// Statement is one statement inside a Block.
type Statement interface {
	Node
	statement()
}

// LetStatement is a non-top-level `let` inside a block.
type LetStatement struct {
	Meta
	Name       string
	Params     []Param
	ReturnType TypeExpr
	Value      Expr
	Rec        bool
	GroupID    int
}

func (*LetStatement) statement() {}

// ExprStatement is an expression evaluated for effect inside a block.
type ExprStatement struct {
	Meta
	Expression Expr
}

func (*ExprStatement) statement() {}

// Match is `match scrutinee { arm, ... }`.
type Match struct {
	Meta
	Scrutinee Expr
	Arms      []MatchArm
}

func (*Match) expr() {}

// MatchArm is one arm of a match.
type MatchArm struct {
	Meta
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
}

// MatchFn is `match_fn { arm, ... }`: a function whose single
// parameter is bound implicitly by each arm's pattern.
type MatchFn struct {
	Meta
	Arms []MatchArm
}

func (*MatchFn) expr() {}

// MatchBundleLiteral groups several match expressions that must share
// coverage/discharge bookkeeping (spec §4.8 "match bundle").
type MatchBundleLiteral struct {
	Meta
	Matches []*Match
}

func (*MatchBundleLiteral) expr() {}

// ---- Patterns ----

type Pattern interface {
	Node
	pattern()
}

// WildcardPattern is `_`.
type WildcardPattern struct{ Meta }

func (*WildcardPattern) pattern() {}

// VariablePattern binds a name.
type VariablePattern struct {
	Meta
	Name string
}

func (*VariablePattern) pattern() {}

// LiteralPattern matches a constant.
type LiteralPattern struct {
	Meta
	Kind  LiteralKind
	Value any
}

func (*LiteralPattern) pattern() {}

// TuplePattern destructures a tuple.
type TuplePattern struct {
	Meta
	Elements []Pattern
}

func (*TuplePattern) pattern() {}

// ConstructorPattern destructures an ADT constructor application.
type ConstructorPattern struct {
	Meta
	Name string
	Args []Pattern
}

func (*ConstructorPattern) pattern() {}

// EffectTagPattern names one label of an effect row (spec §4.7
// "effect-row discharge"), optionally binding that label's payload.
// Unlike ConstructorPattern, Tag is not resolved against internal/
// types.ADTEnv: it names a row label directly.
type EffectTagPattern struct {
	Meta
	Tag     string
	Payload Pattern
}

func (*EffectTagPattern) pattern() {}

// ---- Type expressions ----

// TypeExpr is a syntactic type, translated to types.Type by
// internal/infer's declaration pass (spec §4.5).
type TypeExpr interface {
	Node
	typeExpr()
}

// NamedTypeExpr is a bare name: primitive, type variable, or ADT name.
type NamedTypeExpr struct {
	Meta
	Name string
	Args []TypeExpr // non-empty for applied constructors, e.g. List<Int>
}

func (*NamedTypeExpr) typeExpr() {}

// FuncTypeExpr is `From -> To`.
type FuncTypeExpr struct {
	Meta
	From TypeExpr
	To   TypeExpr
}

func (*FuncTypeExpr) typeExpr() {}

// TupleTypeExpr is `(A, B, ...)`.
type TupleTypeExpr struct {
	Meta
	Elements []TypeExpr
}

func (*TupleTypeExpr) typeExpr() {}

// RecordTypeExpr is `{ field: A, ... }`.
type RecordTypeExpr struct {
	Meta
	Fields []RecordFieldTypeExpr
}

func (*RecordTypeExpr) typeExpr() {}

// RecordFieldTypeExpr is one field of a record type expression.
type RecordFieldTypeExpr struct {
	Name string
	Type TypeExpr
}
