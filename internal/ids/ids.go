// Package ids assigns stable integer identity to AST nodes and tracks
// their source spans.
//
// The allocator is per-context, never global: spec invariant 1 requires
// every node to carry a unique, stable NodeId, and §5 (Concurrency &
// Resource Model) requires the counters backing that identity to be
// per-context so independent compilation units typed in the same
// process never collide.
package ids

import "fmt"

// NodeID is a globally-unique-within-a-registry integer node identity.
type NodeID uint64

// TypeExprID identifies a type-expression node, allocated from a
// separate counter than NodeID (type expressions and value expressions
// are never confused even though both are integers).
type TypeExprID uint64

// Pos is a single point in source text.
type Pos struct {
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open source range.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Registry allocates NodeIDs/TypeExprIDs and remembers their spans.
// One Registry belongs to exactly one inference.Context / compilation
// unit; it must never be shared across units or stored in a package
// level variable.
type Registry struct {
	nextNode     NodeID
	nextTypeExpr TypeExprID
	spans        map[NodeID]Span
	typeExprSpans map[TypeExprID]Span
}

// NewRegistry creates a fresh, empty registry. Counters start at 1 so
// the zero value of NodeID/TypeExprID can serve as a sentinel "no id".
func NewRegistry() *Registry {
	return &Registry{
		nextNode:      1,
		nextTypeExpr:  1,
		spans:         make(map[NodeID]Span),
		typeExprSpans: make(map[TypeExprID]Span),
	}
}

// NewNode allocates a fresh NodeID and records its span.
func (r *Registry) NewNode(span Span) NodeID {
	id := r.nextNode
	r.nextNode++
	r.spans[id] = span
	return id
}

// NewTypeExpr allocates a fresh TypeExprID and records its span.
func (r *Registry) NewTypeExpr(span Span) TypeExprID {
	id := r.nextTypeExpr
	r.nextTypeExpr++
	r.typeExprSpans[id] = span
	return id
}

// Span looks up the span recorded for a NodeID.
func (r *Registry) Span(id NodeID) (Span, bool) {
	s, ok := r.spans[id]
	return s, ok
}

// TypeExprSpan looks up the span recorded for a TypeExprID.
func (r *Registry) TypeExprSpan(id TypeExprID) (Span, bool) {
	s, ok := r.typeExprSpans[id]
	return s, ok
}

// Count reports how many node ids have been allocated so far; used by
// internal/present to walk every allocated id when building its span
// index.
func (r *Registry) Count() uint64 { return uint64(r.nextNode - 1) }
