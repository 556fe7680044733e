package ast

import (
	"fmt"
	"strings"
)

// String renders a compact, debug-only textual form of an expression.
// Never used by inference itself — diagnostics render through
// internal/present, not through this.
func String(e Expr) string {
	switch n := e.(type) {
	case *Identifier:
		return n.Name
	case *Literal:
		return fmt.Sprintf("%v", n.Value)
	case *Constructor:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = String(a)
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
	case *Tuple:
		elems := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = String(el)
		}
		return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
	case *Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = String(a)
		}
		return fmt.Sprintf("%s(%s)", String(n.Callee), strings.Join(args, ", "))
	case *Binary:
		return fmt.Sprintf("(%s %s %s)", String(n.Left), n.Op, String(n.Right))
	case *Unary:
		return fmt.Sprintf("%s%s", n.Op, String(n.Operand))
	case *Arrow:
		return fmt.Sprintf("(...) => %s", String(n.Body))
	case *Block:
		return "{ ... }"
	case *Match:
		return fmt.Sprintf("match %s { ... }", String(n.Scrutinee))
	case *MatchFn:
		return "match_fn { ... }"
	case *RecordLiteral:
		return "{ ...fields }"
	case *RecordProjection:
		return fmt.Sprintf("%s.%s", String(n.Target), n.Field)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
