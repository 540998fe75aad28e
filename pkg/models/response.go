package models

// ResponseType is the closed set of Assistant Response tags.
type ResponseType string

const (
	ResponseTypeText                 ResponseType = "text"
	ResponseTypeTextAndGraph         ResponseType = "text_and_graph"
	ResponseTypeClarificationNeeded  ResponseType = "clarification_needed"
	ResponseTypeOutOfScope           ResponseType = "out_of_scope"
	ResponseTypeError                ResponseType = "error"
)

// AssistantResponse is the orchestrator's (C11) final output: a tagged
// value carrying a text body, an optional graph payload, citable sources,
// the actions executed for observability, and optional debug info (only
// populated outside production, per §7's propagation policy).
type AssistantResponse struct {
	ResponseType    ResponseType
	ErrorType       string // error kind name (apperrors.Kind), empty unless ResponseType == "error"
	TextResponse    string
	GraphData       *GraphPayload
	Sources         []SourceRef
	ExecutedActions []string
	DebugInfo       map[string]any
}
