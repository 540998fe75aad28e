package models

import "github.com/google/uuid"

// NodeDTO is the wire representation of a graph node, returned verbatim in
// the HTTP response's graphData.nodes.
type NodeDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	Description  string      `json:"description"`
	CampaignUUID uuid.UUID   `json:"campaignUuid"`
	NoteIDs      []uuid.UUID `json:"noteIds"`
}

// EdgeDTO is the wire representation of a graph edge, returned verbatim in
// the HTTP response's graphData.edges.
type EdgeDTO struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Target      string      `json:"target"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Reasoning   string      `json:"reasoning"`
	NoteIDs     []uuid.UUID `json:"noteIds"`
}

// GraphPayload is the parsed result of one graph-store execution (C3): a
// deduplicated set of nodes and the edges whose endpoints both appear in
// Nodes. An edge whose endpoint is missing from Nodes must never reach
// this struct — the adapter drops it before returning.
type GraphPayload struct {
	Nodes []NodeDTO
	Edges []EdgeDTO
}
