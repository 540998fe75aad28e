package models

import "github.com/google/uuid"

// EvidenceBundle is the Data Collector's (C7) transient output: everything
// gathered from the vector and graph stores for one request, used to
// ground the Synthesizer.
type EvidenceBundle struct {
	Notes         []NoteSearchResult
	FoundArtifact *ArtifactSearchResult
	FoundRelation *RelationshipSearchResult
	Graph         *GraphPayload // nil until C3 has run

	// RetrievalFailed records that the action's sole data source failed
	// outright (C4.7's failure policy), distinct from "zero results".
	RetrievalFailed bool
}

// Sources projects the notes in the bundle into the wire-level source list,
// deduplicating by note ID and preserving the bundle's deterministic order.
func (b EvidenceBundle) Sources() []SourceRef {
	seen := make(map[uuid.UUID]bool, len(b.Notes))
	out := make([]SourceRef, 0, len(b.Notes))
	for _, n := range b.Notes {
		if seen[n.NoteID] {
			continue
		}
		seen[n.NoteID] = true
		out = append(out, SourceRef{NoteID: n.NoteID, NoteTitle: n.Title})
	}
	return out
}

// SourceRef is a citation-eligible reference to a note, exposed in the
// Assistant Response's sources list.
type SourceRef struct {
	NoteID    uuid.UUID
	NoteTitle string
}
