// Command typecheck is a small cobra CLI driving the two-layer
// pipeline (internal/infer -> internal/solver -> internal/present)
// end to end, in the spirit of the teacher's own cmd/typecheck demo
// binary (sunholo-data-ailang/cmd/typecheck/main.go), whose five
// testXxx functions build an AST by hand, call Infer/SolveConstraints,
// and print the result. Command plumbing itself is grounded on
// MadAppGang/dingo's cmd/dingo/main.go (root command + subcommands,
// version string, SilenceUsage).
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/present"
	"github.com/marklang/markc/internal/solver"
)

var version = "0.1.0"

// Colored output helpers, in the REPL's own style
// (sunholo-data-ailang/internal/repl/repl.go's green/red/dim
// SprintFuncs) rather than raw ANSI codes.
var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "typecheck",
		Short:        "Run the gradual type checker's worked scenarios",
		Long:         `typecheck drives a handful of built-in sample programs through inference, constraint solving, and presentation, and prints the resolved types and diagnostics for each.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var showDiagnostics bool

	cmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Typecheck one (or, with no argument, every) built-in scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range scenarioNames() {
					runScenario(name, showDiagnostics)
				}
				return nil
			}
			name := args[0]
			if _, ok := scenarios[name]; !ok {
				return fmt.Errorf("unknown scenario %q (see 'typecheck list')", name)
			}
			runScenario(name, showDiagnostics)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDiagnostics, "diagnostics", true, "print diagnostics alongside resolved types")

	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenario names",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range scenarioNames() {
				fmt.Println(name)
			}
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runScenario runs one built-in program through both layers and
// prints the bindings present resolves, then its diagnostics.
func runScenario(name string, showDiagnostics bool) {
	reg := ids.NewRegistry()
	prog := scenarios[name](reg)

	layer1 := infer.InferProgram(reg, prog, infer.DefaultOptions())

	input := solver.FromInferResult(layer1)
	layer2 := solver.Solve(input)

	view := present.Present(reg, layer1, layer2)

	fmt.Println(dim(fmt.Sprintf("=== %s ===", name)))
	fmt.Print(green(present.PrintProgram(layer2.RemarkedProgram)))

	if showDiagnostics {
		out := present.FormatDiagnostics(view.Diagnostics)
		if out == "" {
			fmt.Println(dim("(no diagnostics)"))
		} else {
			fmt.Print(red(out))
		}
	}
	fmt.Println()
}

// scenarios mirrors the teacher's testLiteral/testLambda/
// testLetPolymorphism/testRowPolymorphism/testTypeClasses demo
// functions, rebuilt as hand-constructed ASTs (this module has no
// lexer/parser, by spec §1 non-goal) for the spec's own worked
// examples instead of the teacher's.
var scenarios = map[string]func(*ids.Registry) *ast.Program{
	"polymorphic-identity": scenarioPolymorphicIdentity,
	"argument-mismatch":    scenarioArgumentMismatch,
	"record-projection":    scenarioRecordProjection,
}

func fix(reg *ids.Registry) ast.Meta {
	return ast.Meta{ID: reg.NewNode(ids.Span{})}
}

func ident(reg *ids.Registry, name string) *ast.Identifier {
	return &ast.Identifier{Meta: fix(reg), Name: name}
}

func intLit(reg *ids.Registry, v int) *ast.Literal {
	return &ast.Literal{Meta: fix(reg), Kind: ast.LitInt, Value: v}
}

func varParam(reg *ids.Registry, name string) ast.Param {
	return ast.Param{Meta: fix(reg), Pattern: &ast.VariablePattern{Meta: fix(reg), Name: name}}
}

func letDecl(reg *ids.Registry, name string, params []ast.Param, body ast.Expr) *ast.LetDeclaration {
	return &ast.LetDeclaration{Meta: fix(reg), Name: name, Params: params, Body: body}
}

// scenarioPolymorphicIdentity: `let id = (x) => { x }; let main = () => { id(1) }`.
func scenarioPolymorphicIdentity(reg *ids.Registry) *ast.Program {
	idBody := &ast.Block{Meta: fix(reg), Result: ident(reg, "x")}
	idDecl := letDecl(reg, "id", []ast.Param{varParam(reg, "x")}, idBody)

	mainBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "id"),
		Args:   []ast.Expr{intLit(reg, 1)},
	}}
	mainDecl := letDecl(reg, "main", nil, mainBody)

	return &ast.Program{Declarations: []ast.TopLevel{idDecl, mainDecl}}
}

// scenarioArgumentMismatch: `let f = (x) => { x + 1 }; let bad = () => { f(true) }`.
func scenarioArgumentMismatch(reg *ids.Registry) *ast.Program {
	fBody := &ast.Block{Meta: fix(reg), Result: &ast.Binary{
		Meta:  fix(reg),
		Op:    "+",
		Left:  ident(reg, "x"),
		Right: intLit(reg, 1),
	}}
	fDecl := letDecl(reg, "f", []ast.Param{varParam(reg, "x")}, fBody)

	trueLit := &ast.Literal{Meta: fix(reg), Kind: ast.LitBool, Value: true}
	badBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "f"),
		Args:   []ast.Expr{trueLit},
	}}
	badDecl := letDecl(reg, "bad", nil, badBody)

	return &ast.Program{Declarations: []ast.TopLevel{fDecl, badDecl}}
}

// scenarioRecordProjection: `let getX = (p) => { p.x }; let main = () => { getX({x: 1}) }`.
func scenarioRecordProjection(reg *ids.Registry) *ast.Program {
	getXBody := &ast.Block{Meta: fix(reg), Result: &ast.RecordProjection{
		Meta:   fix(reg),
		Target: ident(reg, "p"),
		Field:  "x",
	}}
	getXDecl := letDecl(reg, "getX", []ast.Param{varParam(reg, "p")}, getXBody)

	record := &ast.RecordLiteral{Meta: fix(reg), Fields: []ast.RecordField{
		{Name: "x", Value: intLit(reg, 1)},
	}}
	mainBody := &ast.Block{Meta: fix(reg), Result: &ast.Call{
		Meta:   fix(reg),
		Callee: ident(reg, "getX"),
		Args:   []ast.Expr{record},
	}}
	mainDecl := letDecl(reg, "main", nil, mainBody)

	return &ast.Program{Declarations: []ast.TopLevel{getXDecl, mainDecl}}
}
