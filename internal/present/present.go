// Package present implements component C10: building IDE-consumable
// views over the two layers' combined output (spec §6 presentProgram).
// Grounded on internal/typedast/typed_ast.go's FormatType/
// PrintTypedProgram presentation helpers, generalized into a
// NodeId-keyed view map plus a span index built from
// internal/ids.Registry instead of ad hoc string formatting alone.
package present

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/marked"
	"github.com/marklang/markc/internal/solver"
	"github.com/marklang/markc/internal/types"
)

// View is one node's presentation-ready summary.
type View struct {
	Type    types.Type
	Display string
	Marked  bool  // true if Layer 1 replaced this node with a Mark
	Hole    bool  // true if the view's type is still a hole after solving
	Span    ids.Span
	HasSpan bool
}

// DiagnosticView attaches a span (when the registry has one) to a raw
// diagnostic, per spec §6: "optional span is attached by the
// presentation layer via span index."
type DiagnosticView struct {
	diag.Diagnostic
	Span    ids.Span
	HasSpan bool
}

// Result is spec §6's presentProgram output.
type Result struct {
	NodeViews   map[ids.NodeID]View
	Diagnostics []DiagnosticView
	SpanIndex   map[ids.NodeID]ids.Span
}

// Present builds nodeViews/diagnostics/spanIndex from both layers'
// results (spec §6's presentProgram(layer1, layer2)).
func Present(reg *ids.Registry, layer1 *infer.InferResult, layer2 *solver.Result) *Result {
	spanIndex := map[ids.NodeID]ids.Span{}
	if reg != nil {
		for id := ids.NodeID(1); id <= ids.NodeID(reg.Count()); id++ {
			if span, ok := reg.Span(id); ok {
				spanIndex[id] = span
			}
		}
	}

	views := map[ids.NodeID]View{}
	for id, t := range layer1.NodeTypeByID {
		views[id] = buildView(id, t, layer1, spanIndex)
	}
	// Layer 2 may have resolved holes Layer 1 left behind, or
	// introduced fresh node ids (e.g. a HasField stub's synthesised
	// result); its resolved types take precedence.
	for id, t := range layer2.ResolvedNodeTypes {
		views[id] = buildView(id, t, layer1, spanIndex)
	}

	diagViews := make([]DiagnosticView, 0, len(layer2.Diagnostics))
	for _, d := range layer2.Diagnostics {
		span, has := spanIndex[d.Origin]
		diagViews = append(diagViews, DiagnosticView{Diagnostic: d, Span: span, HasSpan: has})
	}

	return &Result{NodeViews: views, Diagnostics: diagViews, SpanIndex: spanIndex}
}

func buildView(id ids.NodeID, t types.Type, layer1 *infer.InferResult, spanIndex map[ids.NodeID]ids.Span) View {
	_, marked := layer1.Marks[id]
	span, hasSpan := spanIndex[id]
	return View{
		Type:    t,
		Display: t.String(),
		Marked:  marked,
		Hole:    types.IsHole(t),
		Span:    span,
		HasSpan: hasSpan,
	}
}

// PrintProgram renders every top-level binding's materialised body for
// human/log consumption, in the teacher's PrintTypedProgram style
// (typed_ast.go), one declaration per line.
func PrintProgram(prog *marked.Program) string {
	if prog == nil {
		return ""
	}
	var b strings.Builder
	names := make([]string, len(prog.Decls))
	byName := make(map[string]marked.Let, len(prog.Decls))
	for i, d := range prog.Decls {
		names[i] = d.Name
		byName[d.Name] = d
	}
	sort.Strings(names)
	for _, name := range names {
		d := byName[name]
		schemeStr := "?"
		if d.Scheme != nil {
			schemeStr = d.Scheme.Body.String()
		}
		b.WriteString(d.Name)
		b.WriteString(" : ")
		b.WriteString(schemeStr)
		b.WriteString(" = ")
		if d.Body != nil {
			b.WriteString(d.Body.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatDiagnostics renders diagnostics with their attached span, one
// per line, for CLI/log consumption (cmd/typecheck).
func FormatDiagnostics(views []DiagnosticView) string {
	var b strings.Builder
	for _, v := range views {
		fmt.Fprintf(&b, "%s at node %d", v.Reason, v.Origin)
		if v.HasSpan {
			fmt.Fprintf(&b, " (%s)", v.Span)
		}
		b.WriteString("\n")
	}
	return b.String()
}
