// Package vectorstore implements the Vector Search Adapter (C2): per
// campaign, per-type semantic search over a Qdrant collection.
package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

// minK is the lower bound spec §4.2 fixes for every vector search
// ("1 ≤ k ≤ 50"); the upper bound is configured per Adapter (maxK) since
// it is operator-tunable.
const minK = 1

// Embedder generates a fixed-dimension embedding for a query string. It is
// implemented by pkg/llm.Client so the vector store adapter never talks to
// the embedding service directly.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// qdrantClient is the subset of *qdrant.Client the adapter depends on,
// narrowed to an interface so tests can substitute a fake without a live
// Qdrant server.
type qdrantClient interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// Adapter is the Qdrant-backed Vector Search Adapter.
type Adapter struct {
	client   qdrantClient
	embedder Embedder
	embedDim int
	maxK     int
}

// New constructs an Adapter. embedDim is the single configured embedding
// dimension (spec §9 open question 1: never guess between 1536 and 3072).
// maxK is the upper bound every search's k is clamped to (spec §4.2); a
// value <= 0 falls back to 50.
func New(client *qdrant.Client, embedder Embedder, embedDim, maxK int) *Adapter {
	return &Adapter{client: client, embedder: embedder, embedDim: embedDim, maxK: normalizeMaxK(maxK)}
}

// NewWithClient constructs an Adapter against any qdrantClient
// implementation, primarily for tests.
func NewWithClient(client qdrantClient, embedder Embedder, embedDim, maxK int) *Adapter {
	return &Adapter{client: client, embedder: embedder, embedDim: embedDim, maxK: normalizeMaxK(maxK)}
}

func normalizeMaxK(maxK int) int {
	if maxK <= 0 {
		return 50
	}
	return maxK
}

const (
	payloadType               = "type"
	payloadTypeNote           = "note"
	payloadTypeArtifact       = "artifact"
	payloadTypeRelation       = "relation"
	payloadNoteID             = "note_id"
	payloadNoteTitle          = "note_title"
	payloadSnippet            = "snippet"
	payloadArtifactID         = "artifact_id"
	payloadArtifactName       = "artifact_name"
	payloadArtifactType       = "artifact_type"
	payloadRelationshipID     = "relationship_id"
	payloadRelationshipSource = "relationship_source"
	payloadRelationshipTarget = "relationship_target"
	payloadRelationshipLabel  = "relationship_label"
)

// SearchNotes returns up to k note hits for query in campaign's collection,
// ordered by descending similarity.
func (a *Adapter) SearchNotes(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.NoteSearchResult, error) {
	points, err := a.search(ctx, campaign, query, payloadTypeNote, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.NoteSearchResult, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		id, err := uuid.Parse(stringValue(payload[payloadNoteID]))
		if err != nil {
			slog.Warn("vector point missing valid note_id, skipping", "error", err)
			continue
		}
		results = append(results, models.NoteSearchResult{
			NoteID:  id,
			Title:   stringValue(payload[payloadNoteTitle]),
			Snippet: stringValue(payload[payloadSnippet]),
			Score:   p.GetScore(),
		})
	}
	return results, nil
}

// SearchArtifacts returns up to k artifact hits for query.
func (a *Adapter) SearchArtifacts(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.ArtifactSearchResult, error) {
	points, err := a.search(ctx, campaign, query, payloadTypeArtifact, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.ArtifactSearchResult, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		id, err := uuid.Parse(stringValue(payload[payloadArtifactID]))
		if err != nil {
			slog.Warn("vector point missing valid artifact_id, skipping", "error", err)
			continue
		}
		results = append(results, models.ArtifactSearchResult{
			ArtifactID: id,
			Name:       stringValue(payload[payloadArtifactName]),
			Type:       models.ArtifactType(stringValue(payload[payloadArtifactType])),
			Score:      p.GetScore(),
		})
	}
	return results, nil
}

// SearchRelationships returns up to k relationship hits for query.
func (a *Adapter) SearchRelationships(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.RelationshipSearchResult, error) {
	points, err := a.search(ctx, campaign, query, payloadTypeRelation, k)
	if err != nil {
		return nil, err
	}

	results := make([]models.RelationshipSearchResult, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		id, err := uuid.Parse(stringValue(payload[payloadRelationshipID]))
		if err != nil {
			slog.Warn("vector point missing valid relationship_id, skipping", "error", err)
			continue
		}
		results = append(results, models.RelationshipSearchResult{
			RelationshipID: id,
			Source:         uuid.MustParse(stringValue(payload[payloadRelationshipSource])),
			Target:         uuid.MustParse(stringValue(payload[payloadRelationshipTarget])),
			Label:          stringValue(payload[payloadRelationshipLabel]),
			Score:          p.GetScore(),
		})
	}
	return results, nil
}

// search embeds query, checks collection existence (a missing collection is
// an empty result, not an error, per §4.2), and runs a filtered query.
func (a *Adapter) search(ctx context.Context, campaign *models.Campaign, query, pointType string, k int) ([]*qdrant.ScoredPoint, error) {
	if query == "" {
		return nil, fmt.Errorf("vector search: %w: query must not be empty", apperrors.ErrInvalidQuery)
	}
	k = clampK(k, a.maxK)

	exists, err := a.client.CollectionExists(ctx, campaign.VectorCollection)
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", campaign.VectorCollection, apperrors.ErrRetrievalFailure)
	}
	if !exists {
		return nil, nil
	}

	vector, err := a.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", apperrors.ErrRetrievalFailure)
	}
	if len(vector) != a.embedDim {
		return nil, fmt.Errorf("embedding returned %d dims, configured for %d: %w", len(vector), a.embedDim, apperrors.ErrRetrievalFailure)
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: campaign.VectorCollection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(payloadType, pointType),
			},
		},
		Limit:       ptrUint64(uint64(k)),
		WithPayload: qdrant.NewWithPayload(true),
	}

	points, err := a.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", campaign.VectorCollection, apperrors.ErrRetrievalFailure)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].GetScore() > points[j].GetScore() })
	return points, nil
}

func clampK(k, maxK int) int {
	if k < minK {
		return minK
	}
	if k > maxK {
		return maxK
	}
	return k
}

func ptrUint64(v uint64) *uint64 {
	return &v
}

func stringValue(v *qdrant.Value) string {
	if v == nil {
		return ""
	}
	return v.GetStringValue()
}
