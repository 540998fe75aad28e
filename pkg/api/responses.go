package api

import "github.com/codeready-toolchain/assistant-orchestrator/pkg/models"

// QueryResponse is the wire projection of models.AssistantResponse for
// POST /api/campaigns/{campaignUuid}/assistant/query — spec §6's response
// body, field names as the contract fixes them.
type QueryResponse struct {
	ResponseType    string         `json:"responseType"`
	ErrorType       *string        `json:"errorType"`
	TextResponse    string         `json:"textResponse"`
	GraphData       *GraphDataDTO  `json:"graphData"`
	Sources         []SourceDTO    `json:"sources"`
	ExecutedActions []string       `json:"executedActions"`
	DebugInfo       map[string]any `json:"debugInfo"`
}

// GraphDataDTO is the wire shape of a GraphPayload.
type GraphDataDTO struct {
	Nodes []models.NodeDTO `json:"nodes"`
	Edges []models.EdgeDTO `json:"edges"`
}

// SourceDTO is the wire shape of a SourceRef.
type SourceDTO struct {
	NoteID    string `json:"noteId"`
	NoteTitle string `json:"noteTitle"`
}

// toQueryResponse projects an internal AssistantResponse onto the wire
// contract, nil-ing out fields the spec requires to be null rather than
// zero-valued (errorType, graphData, debugInfo).
func toQueryResponse(r models.AssistantResponse) QueryResponse {
	resp := QueryResponse{
		ResponseType:    string(r.ResponseType),
		TextResponse:    r.TextResponse,
		ExecutedActions: r.ExecutedActions,
		Sources:         make([]SourceDTO, 0, len(r.Sources)),
	}
	if r.ErrorType != "" {
		errType := r.ErrorType
		resp.ErrorType = &errType
	}
	if r.GraphData != nil {
		resp.GraphData = &GraphDataDTO{Nodes: r.GraphData.Nodes, Edges: r.GraphData.Edges}
	}
	for _, s := range r.Sources {
		resp.Sources = append(resp.Sources, SourceDTO{NoteID: s.NoteID.String(), NoteTitle: s.NoteTitle})
	}
	if r.DebugInfo != nil {
		resp.DebugInfo = r.DebugInfo
	}
	return resp
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// HealthCheck represents the status of a single health check component.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
