package models

import "github.com/google/uuid"

// Campaign is the relational root entity the orchestrator consults to
// resolve a campaign's graph label and vector collection. It is owned by
// the metadata registry; the orchestrator never writes it.
type Campaign struct {
	ID               uuid.UUID
	GraphLabel       string
	VectorCollection string
	Name             string
	Description      string
	OwnerID          uuid.UUID
}
