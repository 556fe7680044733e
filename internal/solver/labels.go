package solver

import (
	"sort"

	"github.com/marklang/markc/internal/diag"
	"github.com/marklang/markc/internal/ids"
	"github.com/marklang/markc/internal/infer"
	"github.com/marklang/markc/internal/types"
)

// Label is a node's per-domain state (spec §4.9: "a label is (domain,
// row) where row is an effect row of tags"). Tags are represented as
// a set rather than a multiset — see the row-bag note on
// runLabelPhase below for the one simplification this takes versus
// the spec's full row-bag semantics.
type Label struct {
	Domain string
	Tags   map[string]bool
}

func newLabel(domain string, tags ...string) Label {
	l := Label{Domain: domain, Tags: map[string]bool{}}
	for _, t := range tags {
		l.Tags[t] = true
	}
	return l
}

func (l Label) sortedTags() []string {
	out := make([]string, 0, len(l.Tags))
	for t := range l.Tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// mergePolicy resolves a domain's merge-row policy, defaulting per
// spec §4.9: "union for effect, keep-left otherwise".
func (c *ctx) mergePolicy(domain string) string {
	if d, ok := c.registry.Domain(domain); ok && d.MergeRow != "" {
		return d.MergeRow
	}
	if domain == "effect" {
		return "union"
	}
	return "keepLeft"
}

func mergeLabels(policy string, a, b Label) Label {
	switch policy {
	case "keepRight":
		return b
	case "keepLeft":
		return a
	default: // "union"
		out := newLabel(a.Domain)
		for t := range a.Tags {
			out.Tags[t] = true
		}
		for t := range b.Tags {
			out.Tags[t] = true
		}
		return out
	}
}

func (c *ctx) labelOf(node ids.NodeID, domain string) (Label, bool) {
	byDomain, ok := c.labels[node]
	if !ok {
		return Label{}, false
	}
	l, ok := byDomain[domain]
	return l, ok
}

func (c *ctx) setLabel(node ids.NodeID, l Label) {
	if c.labels[node] == nil {
		c.labels[node] = map[string]Label{}
	}
	if existing, ok := c.labels[node][l.Domain]; ok {
		l = mergeLabels(c.mergePolicy(l.Domain), existing, l)
	}
	c.labels[node][l.Domain] = l
}

// runLabelPhase processes the constraint-label stub family in
// emission order — not topologically, per spec §4.9, since nested
// rewrites must apply before an enclosing flow propagates (rewrites
// are applied inline as they are seen, exactly where the rest of the
// fixed phases only see the end-of-unit stub log).
//
// Row-bag note: spec §4.9 distinguishes "rowbag" domains, where
// identical base tags under distinct identities may legitimately
// coexist, from "plain" domains where a tag is a simple flag. This
// AST surface has no node producing two distinct identities for the
// same tag (no stub carries an identity payload beyond the tag
// string), so Tags is modeled as a set throughout and the richer
// multi-identity case is not modelled; duplicate insertion of the same
// tag is still deduplicated, because a set naturally dedupes it.
func (c *ctx) runLabelPhase(stubs []infer.Stub) {
	for _, s := range stubs {
		switch n := s.(type) {
		case infer.ConstraintSource:
			c.setLabel(n.Node, newLabel(n.Domain, n.Row...))
		case infer.ConstraintFlow:
			if l, ok := c.labelOf(n.From, n.Domain); ok {
				c.setLabel(n.To, l)
			}
		case infer.ConstraintRewrite:
			l, ok := c.labelOf(n.Node, n.Domain)
			if !ok {
				l = newLabel(n.Domain)
			}
			for _, r := range n.Remove {
				delete(l.Tags, r)
			}
			for _, a := range n.Add {
				l.Tags[a] = true
			}
			if c.labels[n.Node] == nil {
				c.labels[n.Node] = map[string]Label{}
			}
			c.labels[n.Node][n.Domain] = l
		case infer.AddStateTags:
			l, ok := c.labelOf(n.Node, n.Domain)
			if !ok {
				l = newLabel(n.Domain)
			}
			for _, t := range n.Tags {
				l.Tags[t] = true
			}
			c.setLabel(n.Node, l)
		case infer.RequireExactState:
			c.checkExactState(n)
		case infer.RequireAnyState:
			c.checkAnyState(n)
		case infer.RequireNotState:
			c.checkNotState(n)
		case infer.RequireAtReturn:
			c.checkAtReturn(n)
		case infer.CallRejectsInfection:
			c.checkRejectsInfection(n)
		case infer.CallRejectsDomains:
			c.checkRejectsDomains(n)
		case infer.BranchJoin:
			c.unionBranchLabels(n)
		}
	}

	c.detectLabelConflicts()
	c.reifyCarriers()
}

// unionBranchLabels implements spec §4.9's "branch_join unions labels
// over all arms": every domain any arm body carries is folded into
// the match's own origin node as the union of the arms' tags, except
// a domain a discharging join already stripped (spec §4.7 P8) — a
// discharged domain's tags end at the match, they don't leak past it.
func (c *ctx) unionBranchLabels(n infer.BranchJoin) {
	discharged := map[string]bool{}
	if n.DischargesResult {
		for domain := range n.EffectRowCoverage {
			discharged[domain] = true
		}
	}
	union := map[string]Label{}
	for _, b := range n.Branches {
		for domain, l := range c.labels[b] {
			if discharged[domain] {
				continue
			}
			if existing, ok := union[domain]; ok {
				union[domain] = mergeLabels("union", existing, l)
			} else {
				union[domain] = l
			}
		}
	}
	for _, l := range union {
		c.setLabel(n.Origin, l)
	}
}

func sameTagSet(tags map[string]bool, want []string) bool {
	if len(tags) != len(want) {
		return false
	}
	for _, w := range want {
		if !tags[w] {
			return false
		}
	}
	return true
}

func (c *ctx) checkExactState(n infer.RequireExactState) {
	l, _ := c.labelOf(n.Node, n.Domain)
	if !sameTagSet(l.Tags, n.Tags) {
		c.diagnostics.Add(diag.New(n.Node, diag.ReasonRequireExactState, map[string]any{
			"domain": n.Domain, "required": n.Tags, "actual": l.sortedTags(),
		}))
	}
}

func (c *ctx) checkAnyState(n infer.RequireAnyState) {
	l, _ := c.labelOf(n.Node, n.Domain)
	for _, want := range n.Tags {
		if l.Tags[want] {
			return
		}
	}
	c.diagnostics.Add(diag.New(n.Node, diag.ReasonRequireAnyState, map[string]any{
		"domain": n.Domain, "required_any": n.Tags, "actual": l.sortedTags(),
	}))
}

func (c *ctx) checkNotState(n infer.RequireNotState) {
	l, _ := c.labelOf(n.Node, n.Domain)
	for _, forbidden := range n.Tags {
		if l.Tags[forbidden] {
			c.diagnostics.Add(diag.New(n.Node, diag.ReasonRequireNotState, map[string]any{
				"domain": n.Domain, "forbidden": forbidden, "actual": l.sortedTags(),
			}))
			return
		}
	}
}

func (c *ctx) checkAtReturn(n infer.RequireAtReturn) {
	l, has := c.labelOf(n.Node, n.Domain)
	rule, _ := c.registry.Domain(n.Domain)
	switch rule.Boundary {
	case "MustBeCarrier":
		t := c.nodeTypes[n.Node]
		if t == nil || !c.carriers.IsCarrierOf(t, n.Domain) {
			c.diagnostics.Add(diag.New(n.Node, diag.ReasonBoundaryViolation, map[string]any{
				"domain": n.Domain, "policy": rule.Boundary,
			}))
		}
	case "MustBeEmpty":
		if has && len(l.Tags) > 0 {
			c.diagnostics.Add(diag.New(n.Node, diag.ReasonBoundaryViolation, map[string]any{
				"domain": n.Domain, "policy": rule.Boundary, "actual": l.sortedTags(),
			}))
		}
	}
}

func (c *ctx) checkRejectsInfection(n infer.CallRejectsInfection) {
	for domain, byNode := range c.labelsByDomain() {
		l, ok := byNode[n.Callee]
		if ok && len(l.Tags) > 0 {
			c.diagnostics.Add(diag.New(n.Origin, diag.ReasonCallRejectsInfection, map[string]any{
				"domain": domain, "actual": l.sortedTags(),
			}))
		}
	}
}

func (c *ctx) checkRejectsDomains(n infer.CallRejectsDomains) {
	for _, domain := range n.Domains {
		l, ok := c.labelOf(n.Callee, domain)
		if ok && len(l.Tags) > 0 {
			c.diagnostics.Add(diag.New(n.Origin, diag.ReasonCallRejectsDomains, map[string]any{
				"domain": domain, "actual": l.sortedTags(),
			}))
		}
	}
}

// labelsByDomain re-indexes c.labels as domain -> node -> Label, for
// checks (like CallRejectsInfection) that must scan every domain a
// node happens to carry.
func (c *ctx) labelsByDomain() map[string]map[ids.NodeID]Label {
	out := map[string]map[ids.NodeID]Label{}
	for node, byDomain := range c.labels {
		for domain, l := range byDomain {
			if out[domain] == nil {
				out[domain] = map[ids.NodeID]Label{}
			}
			out[domain][node] = l
		}
	}
	return out
}

// detectLabelConflicts checks each node's label against its domain's
// declared conflictPairs, plus the builtin default pairs used when no
// registry entry names the domain (spec §4.9 conflict detection).
func (c *ctx) detectLabelConflicts() {
	for node, byDomain := range c.labels {
		for domain, l := range byDomain {
			rule, hasRule := c.registry.Domain(domain)
			pairs := rule.ConflictPairs
			if !hasRule {
				pairs = defaultConflictPairs[domain]
			}
			for _, pair := range pairs {
				if l.Tags[pair[0]] && l.Tags[pair[1]] {
					c.diagnostics.Add(diag.New(node, diag.ReasonIncompatibleConstraint, map[string]any{
						"domain": domain, "conflict": pair,
					}))
				}
			}
		}
	}
}

// defaultConflictPairs covers the spec's own worked example (`locked`
// vs `unlocked`) for domains the supplied registry (or the absence of
// one) does not otherwise declare.
var defaultConflictPairs = map[string][][2]string{
	"resource": {{"locked", "unlocked"}},
}

// reifyCarriers unions each node's label row into its type's carrier
// state component, so the final displayed type surfaces the
// constraints the label tracked (spec §4.9 "carrier reification").
func (c *ctx) reifyCarriers() {
	for node, byDomain := range c.labels {
		t, ok := c.nodeTypes[node]
		if !ok {
			continue
		}
		for domain, l := range byDomain {
			domainOfType, value, state, isCarrier := c.carriers.Split(t)
			if !isCarrier || domainOfType != domain {
				continue
			}
			row := &types.EffectRow{Cases: map[string]types.Type{}}
			if existing, ok := state.(*types.EffectRow); ok {
				for k, v := range existing.Cases {
					row.Cases[k] = v
				}
				row.Tail = existing.Tail
			}
			for tag := range l.Tags {
				if _, exists := row.Cases[tag]; !exists {
					row.Cases[tag] = nil
				}
			}
			t = c.carriers.Join(domain, value, row)
		}
		c.nodeTypes[node] = t
	}
}
