package models

import "github.com/google/uuid"

// VectorPointType discriminates the payload carried by a vector point.
type VectorPointType string

const (
	VectorPointTypeNote         VectorPointType = "note"
	VectorPointTypeArtifact     VectorPointType = "artifact"
	VectorPointTypeRelationship VectorPointType = "relation"
)

// VectorPoint is a point in a campaign's vector collection. Type
// discriminates which of the optional fields below are populated; callers
// must check Type before reading the corresponding fields.
type VectorPoint struct {
	Type VectorPointType

	// Note payload.
	NoteID    uuid.UUID
	NoteTitle string

	// Artifact payload.
	ArtifactID   uuid.UUID
	ArtifactName string
	ArtifactType ArtifactType

	// Relationship payload.
	RelationshipID     uuid.UUID
	RelationshipSource uuid.UUID
	RelationshipTarget uuid.UUID
	RelationshipLabel  string
}

// NoteSearchResult is a scored hit from SearchNotes.
type NoteSearchResult struct {
	NoteID  uuid.UUID
	Title   string
	Snippet string
	Score   float32
}

// ArtifactSearchResult is a scored hit from SearchArtifacts.
type ArtifactSearchResult struct {
	ArtifactID uuid.UUID
	Name       string
	Type       ArtifactType
	Score      float32
}

// RelationshipSearchResult is a scored hit from SearchRelationships.
type RelationshipSearchResult struct {
	RelationshipID uuid.UUID
	Source         uuid.UUID
	Target         uuid.UUID
	Label          string
	Score          float32
}
