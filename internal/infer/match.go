package infer

import (
	"sort"

	"github.com/marklang/markc/internal/ast"
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/types"
)

// coverage tracks which cases a match's arms exhaust, adapted from
// internal/dtree's pattern-matrix compiler (which worked over
// core.CorePattern/core.MatchArm): here it only needs the top-level
// shape per arm, not a full decision tree, since spec §4.7 tracks
// coverage as a flat set rather than compiling a dispatch tree.
type coverage struct {
	booleans     map[bool]bool
	constructors map[string]bool // constructor names covered
	typeName     string
	effectTags   map[string]bool // effect-row labels covered (spec §4.7/§4.9)
	effectRow    *types.EffectRow
	anyWildcard  bool
}

func newCoverage() *coverage {
	return &coverage{
		booleans:     map[bool]bool{},
		constructors: map[string]bool{},
		effectTags:   map[string]bool{},
	}
}

func (cov *coverage) observe(c *Context, p ast.Pattern) {
	switch n := p.(type) {
	case *ast.WildcardPattern, *ast.VariablePattern:
		cov.anyWildcard = true
	case *ast.LiteralPattern:
		if n.Kind == ast.LitBool {
			cov.booleans[n.Value.(bool)] = true
		}
	case *ast.ConstructorPattern:
		cov.constructors[n.Name] = true
		if cov.typeName == "" {
			if tn, _, ok := c.ADTEnv.FindConstructor(n.Name); ok {
				cov.typeName = tn
			}
		}
	case *ast.EffectTagPattern:
		cov.effectTags[n.Tag] = true
	}
}

// missing returns the constructor/boolean/effect-tag cases not yet
// covered, or nil if the match is exhaustive (wildcard present, or
// every case of a known finite domain is covered).
func (cov *coverage) missing(c *Context) []string {
	if cov.anyWildcard {
		return nil
	}
	if len(cov.booleans) > 0 {
		var miss []string
		if !cov.booleans[true] {
			miss = append(miss, "true")
		}
		if !cov.booleans[false] {
			miss = append(miss, "false")
		}
		return miss
	}
	if cov.typeName != "" {
		info, ok := c.ADTEnv.Get(cov.typeName)
		if !ok {
			return nil
		}
		var miss []string
		for _, ctor := range info.Constructors {
			if !cov.constructors[ctor.Name] {
				miss = append(miss, ctor.Name)
			}
		}
		return miss
	}
	if cov.effectRow != nil {
		// An open row (Tail != nil) always has an unnamed remainder, so
		// it can never be exhaustively covered by naming its known cases.
		if cov.effectRow.Tail != nil {
			return []string{"..."}
		}
		var miss []string
		for tag := range cov.effectRow.Cases {
			if !cov.effectTags[tag] {
				miss = append(miss, tag)
			}
		}
		sort.Strings(miss)
		return miss
	}
	return nil
}

// InferMatch implements spec §4.7: infer the scrutinee, type each
// arm's pattern against it, infer each body in the arm's pattern
// scope, fold bodies into a running result type, and track coverage.
func InferMatch(c *Context, n *ast.Match) types.Type {
	scrutineeType := InferExpr(c, n.Scrutinee)
	resultType, _, branches := inferMatchArms(c, n.NodeID(), scrutineeType, n.Arms)

	cov := newCoverage()
	cov.effectRow, _ = effectRowOf(c, c.Apply(scrutineeType))
	for _, arm := range n.Arms {
		cov.observe(c, arm.Pattern)
	}
	missing := cov.missing(c)
	discharges := false
	var effectRowCoverage map[string][]string
	switch {
	case cov.effectRow != nil:
		if missing == nil && len(cov.effectTags) > 0 {
			discharges = true
		}
		effectRowCoverage = map[string][]string{"effect": tagSet(cov.effectTags)}
	case len(cov.constructors) > 0 && !cov.anyWildcard:
		discharges = missing == nil
	}
	if len(missing) > 0 {
		mark := MarkNonExhaustive{Origin: n.NodeID(), MissingCases: missing}
		if effectRowCoverage != nil {
			mark.EffectRowCoverage = effectRowCoverage
		}
		c.NonExhaustive[n.NodeID()] = mark
		c.Diagnostics.Add(diag.New(n.NodeID(), diag.ReasonNonExhaustiveMatch, map[string]any{"missing": missing}))
	}

	c.Emit(BranchJoin{
		Origin:            n.NodeID(),
		Scrutinee:         n.Scrutinee.NodeID(),
		Branches:          branches,
		DischargesResult:  discharges,
		EffectRowCoverage: effectRowCoverage,
	})

	return c.RecordExprType(n.NodeID(), resultType)
}

// tagSet renders a covered-tag set as a sorted slice for deterministic
// stub output.
func tagSet(tags map[string]bool) []string {
	out := make([]string, 0, len(tags))
	for t := range tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// InferMatchFn implements the match_fn expression: its single implicit
// parameter is bound by each arm's pattern directly (no separate
// wrapper, unlike the C3-lowered form, which wraps a function body in
// a single-arm ast.Match; C3 leaves match_fn as it is).
func InferMatchFn(c *Context, n *ast.MatchFn) types.Type {
	paramType := c.FreshVar()
	resultType, _, branches := inferMatchArms(c, n.NodeID(), paramType, n.Arms)

	cov := newCoverage()
	cov.effectRow, _ = effectRowOf(c, c.Apply(paramType))
	for _, arm := range n.Arms {
		cov.observe(c, arm.Pattern)
	}
	missing := cov.missing(c)
	discharges := false
	var effectRowCoverage map[string][]string
	switch {
	case cov.effectRow != nil:
		if missing == nil && len(cov.effectTags) > 0 {
			discharges = true
		}
		effectRowCoverage = map[string][]string{"effect": tagSet(cov.effectTags)}
	case len(cov.constructors) > 0 && !cov.anyWildcard:
		discharges = missing == nil
	}
	if len(missing) > 0 {
		mark := MarkNonExhaustive{Origin: n.NodeID(), MissingCases: missing}
		if effectRowCoverage != nil {
			mark.EffectRowCoverage = effectRowCoverage
		}
		c.NonExhaustive[n.NodeID()] = mark
		c.Diagnostics.Add(diag.New(n.NodeID(), diag.ReasonNonExhaustiveMatch, map[string]any{"missing": missing}))
	}

	c.Emit(BranchJoin{
		Origin:            n.NodeID(),
		Branches:          branches,
		DischargesResult:  discharges,
		EffectRowCoverage: effectRowCoverage,
	})

	fn := &types.Func{From: c.Apply(paramType), To: c.Apply(resultType)}
	return c.RecordExprType(n.NodeID(), fn)
}

func inferMatchArms(c *Context, origin ids.NodeID, scrutineeType types.Type, arms []ast.MatchArm) (types.Type, []types.Type, []ids.NodeID) {
	resultVar := c.FreshVar()
	var result types.Type = resultVar
	first := true
	branches := make([]ids.NodeID, 0, len(arms))

	for _, arm := range arms {
		var bodyType types.Type
		c.WithScopedEnv(func() {
			InferPattern(c, arm.Pattern, c.Apply(scrutineeType), map[string]bool{})
			if arm.Guard != nil {
				guardType := InferExpr(c, arm.Guard)
				c.Unify(guardType, types.Bool)
			}
			bodyType = InferExpr(c, arm.Body)
		})
		branches = append(branches, arm.Body.NodeID())

		if first {
			if ok, uerr := c.Unify(result, bodyType); !ok {
				result = markInconsistentCall(c, origin, result, bodyType, uerr)
			}
			first = false
		} else {
			if ok, uerr := c.Unify(c.Apply(result), bodyType); !ok {
				c.Diagnostics.Add(diag.New(origin, diag.ReasonBranchMismatch, map[string]any{"expected": c.Apply(result), "actual": bodyType}))
				_ = uerr
			}
		}
	}
	return c.Apply(result), nil, branches
}
