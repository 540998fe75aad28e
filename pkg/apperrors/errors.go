// Package apperrors defines the sentinel error kinds shared by every
// component, using a sentinel+wrap pattern throughout. Components wrap
// one of these sentinels with %w; pkg/orchestrator and pkg/api are the
// only layers that translate a sentinel into an HTTP status or a
// response body's errorType field.
package apperrors

import "errors"

var (
	// ErrCampaignNotFound means the campaign UUID in the request does not
	// resolve to a live campaign in the metadata registry.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrInvalidQuery means the request's natural-language query failed
	// basic validation (empty, whitespace-only, or over length).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrPlanningFailure means the planner could not produce a usable
	// planning decision within its budget.
	ErrPlanningFailure = errors.New("planning failure")

	// ErrRetrievalFailure means the data collector could not assemble an
	// evidence bundle (vector and/or graph retrieval failed).
	ErrRetrievalFailure = errors.New("retrieval failure")

	// ErrInvalidCypher means the cypher generator produced a query that
	// failed pkg/cypher validation (forbidden write tokens, a procedure not
	// on the allowlist, MATCH/RETURN shape, or missing campaign scoping).
	ErrInvalidCypher = errors.New("invalid cypher")

	// ErrGraphExecutionFailed means a validated Cypher query failed during
	// execution against the graph store.
	ErrGraphExecutionFailed = errors.New("graph execution failed")

	// ErrGraphTimeout means the graph store did not respond within its
	// allotted budget.
	ErrGraphTimeout = errors.New("graph query timeout")

	// ErrLLMTimeout means an LLM call did not complete within its allotted
	// budget.
	ErrLLMTimeout = errors.New("llm call timeout")

	// ErrSynthesisFailure means the synthesizer could not produce a
	// grounded response from the evidence bundle.
	ErrSynthesisFailure = errors.New("synthesis failure")

	// ErrOverallTimeout means the end-to-end request budget was exceeded.
	ErrOverallTimeout = errors.New("overall request timeout")
)

// kindNames maps each sentinel to the stable string used in logs, traces,
// and the API's errorType response field.
var kindNames = map[error]string{
	ErrCampaignNotFound:     "campaign-not-found",
	ErrInvalidQuery:         "invalid-query",
	ErrPlanningFailure:      "planning-failure",
	ErrRetrievalFailure:     "retrieval-failure",
	ErrInvalidCypher:        "invalid-cypher",
	ErrGraphExecutionFailed: "graph-execution-failed",
	ErrGraphTimeout:         "graph-timeout",
	ErrLLMTimeout:           "llm-timeout",
	ErrSynthesisFailure:     "synthesis-failure",
	ErrOverallTimeout:       "overall-timeout",
}

// sentinelsInPriorityOrder is checked in order so that a wrapped error
// matching more than one sentinel (which should not normally happen)
// resolves deterministically.
var sentinelsInPriorityOrder = []error{
	ErrCampaignNotFound,
	ErrInvalidQuery,
	ErrPlanningFailure,
	ErrRetrievalFailure,
	ErrInvalidCypher,
	ErrGraphExecutionFailed,
	ErrGraphTimeout,
	ErrLLMTimeout,
	ErrSynthesisFailure,
	ErrOverallTimeout,
}

// Kind returns the stable error-kind name for err, or "" if err does not
// wrap one of the sentinels above.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range sentinelsInPriorityOrder {
		if errors.Is(err, sentinel) {
			return kindNames[sentinel]
		}
	}
	return ""
}
