package models

import (
	"time"

	"github.com/google/uuid"
)

// ArtifactType is the closed set of artifact kinds a graph node can carry.
type ArtifactType string

const (
	ArtifactTypeCharacter ArtifactType = "character"
	ArtifactTypeLocation  ArtifactType = "location"
	ArtifactTypeItem      ArtifactType = "item"
	ArtifactTypeEvent     ArtifactType = "event"
)

// Artifact is a graph-store node representing a character, location, item,
// or event. Every artifact belongs to exactly one campaign; its node label
// in the graph store is "{sanitizedCampaignLabel}_Artifact".
type Artifact struct {
	ID          uuid.UUID
	Name        string
	Type        ArtifactType
	Description string
	CampaignID  uuid.UUID
	NoteIDs     []uuid.UUID
	CreatedAt   time.Time
}
