package models

import (
	"time"

	"github.com/google/uuid"
)

// Relationship is a directed, labeled edge between two artifacts of the
// same campaign.
type Relationship struct {
	ID          uuid.UUID
	Label       string // sanitized, e.g. "KNOWS", "FIGHTS"
	SourceID    uuid.UUID
	TargetID    uuid.UUID
	Description string
	Reasoning   string
	CampaignID  uuid.UUID
	NoteIDs     []uuid.UUID
	CreatedAt   time.Time
}
