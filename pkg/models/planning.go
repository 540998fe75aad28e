package models

// PlannerAction is the Planner's closed action set (C6). Every decision the
// planner emits resolves to exactly one of these six values.
type PlannerAction string

const (
	ActionSearchNotes              PlannerAction = "search_notes"
	ActionSearchArtifactsThenGraph PlannerAction = "search_artifacts_then_graph"
	ActionSearchRelationsThenGraph PlannerAction = "search_relations_then_graph"
	ActionCombinedSearch           PlannerAction = "combined_search"
	ActionClarificationNeeded      PlannerAction = "clarification_needed"
	ActionOutOfScope               PlannerAction = "out_of_scope"
)

// IsValid reports whether a is one of the six closed actions.
func (a PlannerAction) IsValid() bool {
	switch a {
	case ActionSearchNotes, ActionSearchArtifactsThenGraph, ActionSearchRelationsThenGraph,
		ActionCombinedSearch, ActionClarificationNeeded, ActionOutOfScope:
		return true
	default:
		return false
	}
}

// GraphScope is the requested shape of a graph query's traversal.
type GraphScope string

const (
	ScopeRelationships GraphScope = "relationships"
	ScopeFullSubgraph  GraphScope = "full_subgraph"
	ScopeNodeDetails   GraphScope = "node_details"
)

// PlanningParameters carries the Planner's optional decision parameters.
type PlanningParameters struct {
	ArtifactSearchQuery string
	ExpectedCypherScope GraphScope
}

// PlanningDecision is the Planner's (C6) transient output: a closed action
// plus the parameters needed to execute it, or a clarification message.
type PlanningDecision struct {
	Action               PlannerAction
	Reasoning            string
	Parameters           PlanningParameters
	ClarificationMessage string

	// FellBackFromUnknownAction records that the LLM emitted an action
	// outside the closed set and the planner substituted search_notes.
	FellBackFromUnknownAction bool
	RawAction                 string
}
