package solver

import (
	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/marked"
	"github.com/marklang/markc/internal/types"
)

// HoleSolution is one of {Solved, Partial, Unsolved, Conflicted} (spec
// §6). Only Solve itself constructs these; the variants are exported
// so callers can type-switch on the result.
type HoleSolution interface{ holeSolution() }

type Solved struct{ Type types.Type }
type Partial struct {
	Known         types.Type // nil if nothing concrete is known yet
	Constraints   []types.Type
	Possibilities []types.Type
}
type Unsolved struct{}
type Conflicted struct{ Conflicts []types.Conflict }

func (Solved) holeSolution()     {}
func (Partial) holeSolution()    {}
func (Unsolved) holeSolution()   {}
func (Conflicted) holeSolution() {}

// Input is spec §6's solveConstraints input bag.
type Input struct {
	MarkedProgram     *marked.Program
	ConstraintStubs   []infer.Stub
	Holes             map[ids.NodeID]infer.UnknownInfo
	NodeTypeByID      map[ids.NodeID]types.Type
	Layer1Diagnostics diag.List
	Summaries         map[string]*types.Scheme
	ADTEnv            *types.ADTEnv
	Carriers          *types.CarrierRegistry
	NextVarID         types.VarID
	InfectionRegistry *InfectionRegistry // optional; DefaultInfectionRegistry() used if nil
}

// FromInferResult builds Layer 2's input directly from Layer 1's
// output (spec §6's pipeline wiring), materialising the marked program
// along the way.
func FromInferResult(res *infer.InferResult) Input {
	return Input{
		MarkedProgram:     marked.Materialize(res),
		ConstraintStubs:   res.ConstraintStubs,
		Holes:             res.Holes,
		NodeTypeByID:       res.NodeTypeByID,
		Layer1Diagnostics: res.Diagnostics,
		Summaries:         res.AllBindings,
		ADTEnv:            res.ADTEnv,
		Carriers:          res.Carriers,
		NextVarID:         res.NextVarID,
	}
}

// Result is spec §6's SolverResult.
type Result struct {
	Solutions         map[ids.NodeID]HoleSolution
	Diagnostics       diag.List
	Substitution      types.Subst
	ResolvedNodeTypes map[ids.NodeID]types.Type
	RemarkedProgram   *marked.Program
	Conflicts         map[ids.NodeID][]types.Conflict
	Summaries         map[string]*types.Scheme
	ConstraintFlow    map[ids.NodeID]map[string][]string // domain -> sorted tags, per node; debugging/introspection export
}

type varFactory struct{ next types.VarID }

func (f *varFactory) FreshVar() *types.Var {
	f.next++
	return &types.Var{ID: f.next}
}

// ctx is Layer 2's own mutable aggregate, mirroring internal/infer.
// Context's shape one level up the pipeline (spec §4.9's phases all
// read the prior phase's accumulated substitution from the same
// struct).
type ctx struct {
	subst     types.Subst
	unifier   *types.Unifier
	fresh     *varFactory
	adtEnv    *types.ADTEnv
	carriers  *types.CarrierRegistry
	registry  *InfectionRegistry

	nodeTypes map[ids.NodeID]types.Type
	holes     map[ids.NodeID]infer.UnknownInfo
	// holeConstraints accumulates every type a hole's node was unified
	// against across phases 1-4, for hole-conflict detection.
	holeConstraints map[ids.NodeID][]types.Type

	labels map[ids.NodeID]map[string]Label

	diagnostics diag.List
}

// Solve runs spec §4.9's four fixed phases in order, then constraint-
// label propagation, then hole-conflict detection, then remarking
// (spec §4.10) to produce the public SolverResult.
func Solve(in Input) *Result {
	registry := in.InfectionRegistry
	if registry == nil {
		registry = DefaultInfectionRegistry()
	}
	carriers := in.Carriers
	if carriers == nil {
		carriers = types.DefaultCarrierRegistry()
	}

	c := &ctx{
		subst:           types.Subst{},
		fresh:           &varFactory{next: in.NextVarID},
		adtEnv:          in.ADTEnv,
		carriers:        carriers,
		registry:        registry,
		nodeTypes:       copyNodeTypes(in.NodeTypeByID),
		holes:           in.Holes,
		holeConstraints: map[ids.NodeID][]types.Type{},
		labels:          map[ids.NodeID]map[string]Label{},
	}
	c.unifier = types.NewUnifier(c.adtEnv, c.carriers, c.fresh)

	c.runAnnotationPhase(in.ConstraintStubs)
	c.runCallAndFieldPhase(in.ConstraintStubs)
	c.runNumericBooleanPhase(in.ConstraintStubs)
	c.runBranchJoinPhase(in.ConstraintStubs)
	c.runLabelPhase(in.ConstraintStubs)
	c.detectHoleConflicts()

	remarked := c.remark(in.MarkedProgram)
	summaries := c.applySubstToSummaries(in.Summaries)

	diagnostics := diag.List{}
	diagnostics = append(diagnostics, in.Layer1Diagnostics...)
	diagnostics = append(diagnostics, c.diagnostics...)

	return &Result{
		Solutions:         c.solutions(),
		Diagnostics:       diagnostics,
		Substitution:      c.subst,
		ResolvedNodeTypes: c.nodeTypes,
		RemarkedProgram:   remarked,
		Conflicts:         c.conflictsByNode(),
		Summaries:         summaries,
		ConstraintFlow:    c.flowSnapshot(),
	}
}

func copyNodeTypes(in map[ids.NodeID]types.Type) map[ids.NodeID]types.Type {
	out := make(map[ids.NodeID]types.Type, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// unify wraps c.unifier, threading c.subst and recording the type
// every constrained node was checked against (for hole-conflict
// detection later).
func (c *ctx) unify(origin ids.NodeID, a, b types.Type) (bool, *types.UnifyError) {
	c.holeConstraints[origin] = append(c.holeConstraints[origin], a, b)
	s, err := c.unifier.UnifyWith(a, b, c.subst)
	if err != nil {
		uerr, _ := err.(*types.UnifyError)
		return false, uerr
	}
	c.subst = s
	return true, nil
}

func (c *ctx) apply(t types.Type) types.Type { return types.Apply(c.subst, t) }

func (c *ctx) typeOf(n ids.NodeID) types.Type {
	if t, ok := c.nodeTypes[n]; ok {
		return c.apply(t)
	}
	return &types.Unknown{Provenance: types.Incomplete{Reason: "solver.missing_node_type"}}
}

// ---- Phase 1: annotations ----

// runAnnotationPhase processes Annotation stubs (spec §4.9 phase 1).
// No emission site in internal/infer currently produces one — user
// type annotations are unified eagerly at Layer 1 instead — so this
// phase is a no-op on today's programs but
// remains ready to consume the stub the moment a future annotation
// surface emits it.
func (c *ctx) runAnnotationPhase(stubs []infer.Stub) {
	for _, s := range stubs {
		a, ok := s.(infer.Annotation)
		if !ok {
			continue
		}
		annotated := c.typeOf(a.Subject)
		value := c.typeOf(a.Value)
		if ok, uerr := c.unify(a.Origin, annotated, value); !ok {
			c.diagnostics.Add(diag.New(a.Origin, diag.ReasonTypeMismatch, map[string]any{
				"expected": annotated, "actual": value, "unify_reason": uerr.Reason,
			}))
		}
	}
}

// ---- Phase 2: calls & field projection ----

func (c *ctx) runCallAndFieldPhase(stubs []infer.Stub) {
	for _, s := range stubs {
		switch n := s.(type) {
		case infer.Call:
			c.solveCall(n)
		case infer.HasField:
			c.solveHasField(n)
		}
	}
}

func (c *ctx) solveCall(n infer.Call) {
	calleeType := c.typeOf(n.Callee)
	result := c.fresh.FreshVar()
	ok, uerr := c.unify(n.Origin, calleeType, &types.Func{From: n.ArgumentValueType, To: result})
	if !ok {
		c.diagnostics.Add(diag.New(n.Origin, reasonForUnify(uerr), map[string]any{
			"callee": calleeType, "argument": n.ArgumentValueType,
		}))
		return
	}
	c.nodeTypes[n.Result] = c.apply(result)
}

func (c *ctx) solveHasField(n infer.HasField) {
	target := c.typeOf(n.Target)

	if rec, ok := c.asRecord(target); ok {
		fieldType, has := rec.Fields[n.Field]
		if !has {
			c.diagnostics.Add(diag.New(n.Origin, diag.ReasonMissingField, map[string]any{
				"field": n.Field, "record": rec,
			}))
			return
		}
		c.nodeTypes[n.Result] = fieldType
		return
	}

	if domain, value, state, ok := c.carriers.Split(target); ok {
		if valueRec, isRec := c.asRecord(value); isRec {
			fieldType, has := valueRec.Fields[n.Field]
			if !has {
				c.diagnostics.Add(diag.New(n.Origin, diag.ReasonMissingField, map[string]any{
					"field": n.Field, "record": valueRec,
				}))
				return
			}
			// Preserve the carrier around the projected field, unioning
			// state if the field value is itself a same-domain carrier
			// (spec §4.9: "combine carrier states... via unionRow for
			// the effect domain").
			if fieldDomain, fieldValue, fieldState, isCarrier := c.carriers.Split(fieldType); isCarrier && fieldDomain == domain {
				unioned := unionRow(state, fieldState)
				c.nodeTypes[n.Result] = c.carriers.Join(domain, fieldValue, unioned)
				return
			}
			c.nodeTypes[n.Result] = c.carriers.Join(domain, fieldType, state)
			return
		}
	}

	if types.IsHole(target) || isVar(target) {
		// The target's shape isn't known yet: synthesise a singleton
		// record and unify, letting the hole/var resolve to "has at
		// least this field" (spec §4.9 phase 2, HasField bullet 3).
		synthesised := &types.Record{Fields: map[string]types.Type{n.Field: c.typeOf(n.Result)}}
		if ok, uerr := c.unify(n.Origin, target, synthesised); !ok {
			c.diagnostics.Add(diag.New(n.Origin, reasonForUnify(uerr), map[string]any{
				"field": n.Field, "target": target,
			}))
		}
		return
	}

	c.diagnostics.Add(diag.New(n.Origin, diag.ReasonNotRecord, map[string]any{"target": target}))
}

func (c *ctx) asRecord(t types.Type) (*types.Record, bool) {
	r, ok := t.(*types.Record)
	return r, ok
}

func isVar(t types.Type) bool {
	_, ok := t.(*types.Var)
	return ok
}

// unionRow merges two row-shaped carrier states (spec §4.9's
// unionRow), falling back to keeping whichever side is non-nil when
// either side isn't itself a row.
func unionRow(a, b types.Type) types.Type {
	ar, aok := a.(*types.EffectRow)
	br, bok := b.(*types.EffectRow)
	if !aok && !bok {
		if a != nil {
			return a
		}
		return b
	}
	if !aok {
		return b
	}
	if !bok {
		return a
	}
	out := &types.EffectRow{Cases: map[string]types.Type{}}
	for k, v := range ar.Cases {
		out.Cases[k] = v
	}
	for k, v := range br.Cases {
		if _, exists := out.Cases[k]; !exists {
			out.Cases[k] = v
		}
	}
	if ar.Tail != nil {
		out.Tail = ar.Tail
	} else {
		out.Tail = br.Tail
	}
	return out
}

func reasonForUnify(uerr *types.UnifyError) diag.Reason {
	if uerr != nil && uerr.Reason == types.ReasonOccursCheck {
		return diag.ReasonOccursCycle
	}
	return diag.ReasonTypeMismatch
}

// ---- Phase 3: numeric / boolean ----

var comparisonOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true}

func (c *ctx) runNumericBooleanPhase(stubs []infer.Stub) {
	for _, s := range stubs {
		switch n := s.(type) {
		case infer.Numeric:
			c.solveNumericOrBoolean(n.Origin, n.Operator, n.Operands, n.Result, types.Int)
		case infer.Boolean:
			c.solveNumericOrBoolean(n.Origin, n.Operator, n.Operands, n.Result, types.Bool)
		}
	}
}

func (c *ctx) solveNumericOrBoolean(origin ids.NodeID, op string, operands []ids.NodeID, result ids.NodeID, base *types.Primitive) {
	var state types.Type
	ok := true
	for _, operandID := range operands {
		operandType := c.typeOf(operandID)
		domain, value, operandState, isCarrier := c.carriers.Split(operandType)
		bare := operandType
		if isCarrier {
			bare = value
			if domain == "effect" {
				state = unionRow(state, operandState)
			} else if state == nil {
				state = operandState
			}
		}
		var uerr *types.UnifyError
		if success, e := c.unify(origin, bare, base); !success {
			ok = false
			uerr = e
			reason := diag.ReasonNotNumeric
			if base == types.Bool {
				reason = diag.ReasonNotBoolean
			}
			c.diagnostics.Add(diag.New(origin, reason, map[string]any{
				"operand": operandType, "operator": op, "unify_reason": uerrReason(uerr),
			}))
		}
	}
	if !ok {
		return
	}
	resultType := base
	if comparisonOps[op] {
		resultType = types.Bool
	}
	var final types.Type = resultType
	if state != nil {
		final = c.carriers.Join("effect", resultType, state)
	}
	c.nodeTypes[result] = final
}

func uerrReason(e *types.UnifyError) types.UnifyReason {
	if e == nil {
		return ""
	}
	return e.Reason
}

// ---- Phase 4: branch join ----

func (c *ctx) runBranchJoinPhase(stubs []infer.Stub) {
	for _, s := range stubs {
		bj, ok := s.(infer.BranchJoin)
		if !ok {
			continue
		}
		c.solveBranchJoin(bj)
	}
}

func (c *ctx) solveBranchJoin(n infer.BranchJoin) {
	if len(n.Branches) == 0 {
		return
	}
	joined := c.typeOf(n.Branches[0])
	for _, b := range n.Branches[1:] {
		next := c.typeOf(b)
		joined = c.joinPair(n.Origin, joined, next)
	}
	if n.DischargesResult {
		joined = c.dischargeCarrier(joined)
	}
	c.nodeTypes[n.Origin] = joined
}

// dischargeCarrier implements spec §4.7/§4.9 effect-row discharge
// (property P8): a BranchJoin whose arm patterns exhaustively covered
// an effect row's labels without a wildcard strips that row's carrier
// from the joined result type, leaving just the value component.
func (c *ctx) dischargeCarrier(t types.Type) types.Type {
	_, value, _, ok := c.carriers.Split(t)
	if !ok {
		return t
	}
	return c.apply(value)
}

// joinPair folds two branch-body types pairwise (spec §4.9 phase 4):
// same-domain carriers unify their values and union their states;
// otherwise the two types are unified structurally.
func (c *ctx) joinPair(origin ids.NodeID, a, b types.Type) types.Type {
	ad, av, ast, aok := c.carriers.Split(a)
	bd, bv, bst, bok := c.carriers.Split(b)
	if aok && bok && ad == bd {
		if ok, uerr := c.unify(origin, av, bv); !ok {
			c.diagnostics.Add(diag.New(origin, reasonForUnify(uerr), map[string]any{"left": a, "right": b}))
			return &types.Unknown{Provenance: types.ErrorInconsistent{Expected: a, Actual: b}}
		}
		return c.carriers.Join(ad, c.apply(av), unionRow(ast, bst))
	}
	if ok, uerr := c.unify(origin, a, b); !ok {
		c.diagnostics.Add(diag.New(origin, diag.ReasonBranchMismatch, map[string]any{"left": a, "right": b, "unify_reason": uerrReason(uerr)}))
		return &types.Unknown{Provenance: types.ErrorInconsistent{Expected: a, Actual: b}}
	}
	return c.apply(a)
}

// ---- Hole-conflict detection ----

// detectHoleConflicts extracts, for every hole, the types it was
// constrained against across phases 1-4 (spec §4.9), then pairwise-
// unifies those types; any failing pair is reported as
// unfillable_hole and the hole's provenance is replaced.
func (c *ctx) detectHoleConflicts() {
	for holeID := range c.holes {
		constraints := c.holeConstraints[holeID]
		if len(constraints) < 2 {
			continue
		}
		var conflicts []types.Conflict
		for i := 0; i < len(constraints); i++ {
			for j := i + 1; j < len(constraints); j++ {
				a, b := c.apply(constraints[i]), c.apply(constraints[j])
				if types.IsHole(a) || types.IsHole(b) {
					continue
				}
				if _, err := c.unifier.Unify(a, b); err != nil {
					uerr, _ := err.(*types.UnifyError)
					reason := "TypeMismatch"
					if uerr != nil {
						reason = string(uerr.Reason)
					}
					conflicts = append(conflicts, types.Conflict{A: a, B: b, Reason: reason})
				}
			}
		}
		if len(conflicts) == 0 {
			continue
		}
		c.diagnostics.Add(diag.New(holeID, diag.ReasonUnfillableHole, map[string]any{"conflicts": conflicts}))
		c.nodeTypes[holeID] = &types.Unknown{Provenance: types.ErrorUnfillableHole{HoleID: holeID, Conflicts: conflicts}}
	}
}

func (c *ctx) conflictsByNode() map[ids.NodeID][]types.Conflict {
	out := map[ids.NodeID][]types.Conflict{}
	for id, t := range c.nodeTypes {
		if u, ok := t.(*types.Unknown); ok {
			if ufh, ok := u.Provenance.(types.ErrorUnfillableHole); ok {
				out[id] = ufh.Conflicts
			}
		}
	}
	return out
}

func (c *ctx) flowSnapshot() map[ids.NodeID]map[string][]string {
	out := make(map[ids.NodeID]map[string][]string, len(c.labels))
	for node, byDomain := range c.labels {
		row := make(map[string][]string, len(byDomain))
		for domain, l := range byDomain {
			row[domain] = l.sortedTags()
		}
		out[node] = row
	}
	return out
}

func (c *ctx) solutions() map[ids.NodeID]HoleSolution {
	out := make(map[ids.NodeID]HoleSolution, len(c.holes))
	for id := range c.holes {
		t := c.typeOf(id)
		if !types.IsHole(t) {
			out[id] = Solved{Type: t}
			continue
		}
		if u, ok := t.(*types.Unknown); ok {
			if ufh, ok := u.Provenance.(types.ErrorUnfillableHole); ok {
				out[id] = Conflicted{Conflicts: ufh.Conflicts}
				continue
			}
		}
		if len(c.holeConstraints[id]) > 0 {
			out[id] = Partial{Constraints: dedupeApplied(c, c.holeConstraints[id])}
			continue
		}
		out[id] = Unsolved{}
	}
	return out
}

func dedupeApplied(c *ctx, ts []types.Type) []types.Type {
	out := make([]types.Type, 0, len(ts))
	seen := map[string]bool{}
	for _, t := range ts {
		applied := c.apply(t)
		key := applied.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, applied)
	}
	return out
}

// ---- Remarking (spec §4.10) ----

// remark overwrites every still-hole node type in the marked program
// with its resolved counterpart, per spec §4.10: "for every node whose
// current type is still a hole but whose nodeId now has a resolved
// entry in resolvedNodeTypes, overwrite it."
func (c *ctx) remark(prog *marked.Program) *marked.Program {
	if prog == nil {
		return nil
	}
	out := &marked.Program{Decls: make([]marked.Let, len(prog.Decls))}
	for i, decl := range prog.Decls {
		out.Decls[i] = marked.Let{
			ID:     decl.ID,
			Name:   decl.Name,
			Scheme: decl.Scheme,
			Body:   c.remarkNode(decl.Body),
		}
	}
	return out
}

// remarkNode walks every child slot of n before applying the
// hole-overwrite check to n itself, so a hole nested arbitrarily deep
// inside an otherwise-concrete node (e.g. a RecordProjection inside a
// Block's Result) still gets replaced.
func (c *ctx) remarkNode(n marked.Node) marked.Node {
	if n == nil {
		return nil
	}
	switch v := n.(type) {
	case marked.Constructor:
		v.Args = c.remarkNodes(v.Args)
		return c.retype(v)
	case marked.Tuple:
		v.Elements = c.remarkNodes(v.Elements)
		return c.retype(v)
	case marked.Record:
		fields := make([]marked.RecordField, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = marked.RecordField{Name: f.Name, Value: c.remarkNode(f.Value)}
		}
		v.Fields = fields
		return c.retype(v)
	case marked.RecordProjection:
		v.Target = c.remarkNode(v.Target)
		return c.retype(v)
	case marked.Call:
		v.Callee = c.remarkNode(v.Callee)
		v.Args = c.remarkNodes(v.Args)
		return c.retype(v)
	case marked.Binary:
		v.Left = c.remarkNode(v.Left)
		v.Right = c.remarkNode(v.Right)
		return c.retype(v)
	case marked.Unary:
		v.Operand = c.remarkNode(v.Operand)
		return c.retype(v)
	case marked.Arrow:
		v.Params = c.remarkParams(v.Params)
		v.Body = c.remarkNode(v.Body)
		return c.retype(v)
	case marked.Block:
		v.Statements = c.remarkStatements(v.Statements)
		v.Result = c.remarkNode(v.Result)
		return c.retype(v)
	case *marked.Match:
		return c.remarkMatch(v)
	case marked.MatchFn:
		v.Arms = c.remarkArms(v.Arms)
		return c.retype(v)
	case marked.MatchBundle:
		matches := make([]*marked.Match, len(v.Matches))
		for i, mm := range v.Matches {
			matches[i] = c.remarkMatch(mm)
		}
		v.Matches = matches
		return c.retype(v)
	default:
		// Identifier, Literal, Hole: no child slots to walk.
		return c.retype(n)
	}
}

// remarkMatch walks and (if needed) retypes a *marked.Match in place,
// returning the same concrete pointer type rather than wrapping it in
// retyped{} — marked.MatchBundle.Matches is typed []*marked.Match, a
// concrete pointer slice, not []marked.Node, so a retyped{} wrapper
// could never be stored back into it.
func (c *ctx) remarkMatch(v *marked.Match) *marked.Match {
	clone := *v
	clone.Scrutinee = c.remarkNode(v.Scrutinee)
	clone.Arms = c.remarkArms(v.Arms)
	if types.IsHole(clone.Typ) {
		if resolved, ok := c.nodeTypes[clone.ID]; ok && !types.IsHole(resolved) {
			clone.Typ = c.apply(resolved)
		}
	}
	return &clone
}

func (c *ctx) remarkNodes(ns []marked.Node) []marked.Node {
	out := make([]marked.Node, len(ns))
	for i, n := range ns {
		out[i] = c.remarkNode(n)
	}
	return out
}

func (c *ctx) remarkStatements(stmts []marked.Statement) []marked.Statement {
	out := make([]marked.Statement, len(stmts))
	for i, s := range stmts {
		switch st := s.(type) {
		case marked.LetStatement:
			st.Value = c.remarkNode(st.Value)
			out[i] = st
		case marked.ExprStatement:
			st.Expression = c.remarkNode(st.Expression)
			out[i] = st
		default:
			out[i] = s
		}
	}
	return out
}

func (c *ctx) remarkParams(params []marked.Param) []marked.Param {
	out := make([]marked.Param, len(params))
	for i, p := range params {
		out[i] = marked.Param{Pattern: c.remarkPattern(p.Pattern), Type: p.Type}
	}
	return out
}

func (c *ctx) remarkArms(arms []marked.Arm) []marked.Arm {
	out := make([]marked.Arm, len(arms))
	for i, a := range arms {
		out[i] = marked.Arm{
			Pattern: c.remarkPattern(a.Pattern),
			Guard:   c.remarkNode(a.Guard),
			Body:    c.remarkNode(a.Body),
		}
	}
	return out
}

// remarkPattern walks a pattern's child slots. Patterns carry no node
// id of their own (marked.Pattern has no GetNodeID), so — unlike
// remarkNode — there is nothing here to look up in c.nodeTypes; a
// pattern's type is fixed during Layer 1 and never itself a hole worth
// overwriting. Only the structural walk matters, to reach nested Arm
// bodies consistently with the rest of remarkNode.
func (c *ctx) remarkPattern(p marked.Pattern) marked.Pattern {
	if p == nil {
		return nil
	}
	switch v := p.(type) {
	case marked.TuplePattern:
		v.Elements = c.remarkPatterns(v.Elements)
		return v
	case marked.ConstructorPattern:
		v.Args = c.remarkPatterns(v.Args)
		return v
	case marked.EffectTagPattern:
		v.Payload = c.remarkPattern(v.Payload)
		return v
	default:
		return p
	}
}

func (c *ctx) remarkPatterns(ps []marked.Pattern) []marked.Pattern {
	out := make([]marked.Pattern, len(ps))
	for i, p := range ps {
		out[i] = c.remarkPattern(p)
	}
	return out
}

// retype applies spec §4.10's hole-overwrite check to a single node
// after its children (if any) have already been walked.
func (c *ctx) retype(n marked.Node) marked.Node {
	if !types.IsHole(n.GetType()) {
		return n
	}
	resolved, ok := c.nodeTypes[n.GetNodeID()]
	if !ok || types.IsHole(resolved) {
		return n
	}
	return retyped{Node: n, t: c.apply(resolved)}
}

// retyped overrides GetType for a node whose hole was filled after
// solving, without needing a setter on every concrete marked.Node
// variant.
type retyped struct {
	marked.Node
	t types.Type
}

func (r retyped) GetType() types.Type { return r.t }
func (r retyped) String() string      { return r.Node.String() }

// applySubstToSummaries applies the final substitution to every
// exported scheme's body. Holes inside a scheme body keep their
// original provenance: conflicted holes become ErrorUnfillableHole only
// in the node-type table (detectHoleConflicts), not inside schemes.
func (c *ctx) applySubstToSummaries(in map[string]*types.Scheme) map[string]*types.Scheme {
	out := make(map[string]*types.Scheme, len(in))
	for name, sc := range in {
		out[name] = types.ApplyScheme(c.subst, sc)
	}
	return out
}
