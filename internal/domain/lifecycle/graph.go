package lifecycle

import "fmt"

// Rule describes a single legal edge of the transition graph together with
// the gates consulted before it may be taken.
type Rule struct {
	From State
	To   State

	// Roles permitted to initiate this edge
	Roles []Role

	// CourtScoped requires actor.OrganizationID to match the courtId of the
	// case's latest court submission
	CourtScoped bool

	// StationScoped requires actor.OrganizationID to match the police station
	// that registered the originating FIR
	StationScoped bool

	// RequiresAssignment requires the actor to be the currently assigned
	// officer (SHO of the station is exempt)
	RequiresAssignment bool
}

// PermitsRole returns true if the role may initiate this edge
func (r Rule) PermitsRole(role Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// RuleOption configures an edge as it is permitted
type RuleOption func(*Rule)

// Roles restricts the edge to the given roles
func Roles(roles ...Role) RuleOption {
	return func(r *Rule) {
		r.Roles = roles
	}
}

// CourtScoped marks the edge as gated by the latest court submission's court
func CourtScoped() RuleOption {
	return func(r *Rule) {
		r.CourtScoped = true
	}
}

// StationScoped marks the edge as gated by the FIR's registering station
func StationScoped() RuleOption {
	return func(r *Rule) {
		r.StationScoped = true
	}
}

// RequiresAssignment marks the edge as reserved for the assigned officer
func RequiresAssignment() RuleOption {
	return func(r *Rule) {
		r.RequiresAssignment = true
	}
}

// GraphBuilder assembles a transition graph one source state at a time
type GraphBuilder struct {
	states map[State]*stateConfig
	order  []State
}

// stateConfig collects the outgoing edges of a single source state
type stateConfig struct {
	builder *GraphBuilder
	from    State
	rules   []Rule
}

// NewGraphBuilder creates an empty graph builder
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{states: make(map[State]*stateConfig)}
}

// From returns the configuration for edges leaving the given state
func (b *GraphBuilder) From(state State) *stateConfig {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	cfg, ok := b.states[state]
	if !ok {
		cfg = &stateConfig{builder: b, from: state}
		b.states[state] = cfg
		b.order = append(b.order, state)
	}
	return cfg
}

// Permit adds a legal edge from the configured state to the target state
func (c *stateConfig) Permit(to State, opts ...RuleOption) *stateConfig {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	rule := Rule{From: c.from, To: to}
	for _, opt := range opts {
		opt(&rule)
	}
	c.rules = append(c.rules, rule)
	return c
}

// Build freezes the configured edges into an immutable Graph
func (b *GraphBuilder) Build() *Graph {
	edges := make(map[State][]Rule, len(b.states))
	roles := make(map[State]map[Role]bool)
	courtScoped := make(map[State]bool)
	seen := make(map[State]bool)
	for _, from := range b.order {
		cfg := b.states[from]
		edges[from] = append([]Rule{}, cfg.rules...)
		for _, rule := range cfg.rules {
			if roles[rule.To] == nil {
				roles[rule.To] = make(map[Role]bool)
			}
			for _, role := range rule.Roles {
				roles[rule.To][role] = true
			}
			// A target is court-scoped when every edge into it is
			if seen[rule.To] {
				courtScoped[rule.To] = courtScoped[rule.To] && rule.CourtScoped
			} else {
				courtScoped[rule.To] = rule.CourtScoped
				seen[rule.To] = true
			}
		}
	}
	return &Graph{edges: edges, targetRoles: roles, courtScoped: courtScoped}
}

// Graph is the static transition table: every legal (from, to) edge of the
// case lifecycle with its role and organization gates. Both the pre-flight
// check and the apply path consult the same Graph, so they cannot drift.
type Graph struct {
	edges       map[State][]Rule
	targetRoles map[State]map[Role]bool
	courtScoped map[State]bool
}

// Rule returns the edge rule for (from, to), if the edge exists
func (g *Graph) Rule(from, to State) (Rule, bool) {
	for _, rule := range g.edges[from] {
		if rule.To == to {
			return rule, true
		}
	}
	return Rule{}, false
}

// Allows returns true if (from, to) is an edge in the graph
func (g *Graph) Allows(from, to State) bool {
	_, ok := g.Rule(from, to)
	return ok
}

// TargetsFrom returns the legal next states of the given state, in
// configuration order
func (g *Graph) TargetsFrom(from State) []State {
	rules := g.edges[from]
	targets := make([]State, 0, len(rules))
	for _, rule := range rules {
		targets = append(targets, rule.To)
	}
	return targets
}

// RoleMayTarget returns true if any edge into the target state permits the
// given role. This is the static role → allowed-transitions table.
func (g *Graph) RoleMayTarget(role Role, to State) bool {
	return g.targetRoles[to][role]
}

// TargetCourtScoped returns true if entering the target state always
// requires the actor's organization to match the submitted court
func (g *Graph) TargetCourtScoped(to State) bool {
	return g.courtScoped[to]
}
