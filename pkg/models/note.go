package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a short piece of campaign text, owned and written by ingestion.
// The orchestrator reads notes only through vector search results and the
// IsNoteInCampaign lookup; the full entity is modeled here for clarity
// about what ingestion guarantees (size bound, override semantics).
type Note struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	Title      string
	Body       string // ≤ 500 words, enforced by ingestion
	Override   bool   // supersedes an earlier note when true
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
