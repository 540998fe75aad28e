// Package collector implements the Data Collector (C7): given a planning
// decision, fans out to the Vector Search Adapter and assembles an evidence
// bundle with a deterministic ordering and a sole-source failure policy.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

const combinedSearchLimit = 3

// VectorAdapter is the subset of vectorstore.Adapter the collector depends
// on.
type VectorAdapter interface {
	SearchNotes(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.NoteSearchResult, error)
	SearchArtifacts(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.ArtifactSearchResult, error)
	SearchRelationships(ctx context.Context, campaign *models.Campaign, query string, k int) ([]models.RelationshipSearchResult, error)
}

// Collector assembles an EvidenceBundle from a planning decision.
type Collector struct {
	vector   VectorAdapter
	defaultK int
}

// New constructs a Collector. defaultK is the k passed to every vector
// search (spec §4.2's configured vector_k_default); a value <= 0 falls
// back to 5.
func New(vector VectorAdapter, defaultK int) *Collector {
	if defaultK <= 0 {
		defaultK = 5
	}
	return &Collector{vector: vector, defaultK: defaultK}
}

// Collect fans out to the vector adapter per decision.Action and assembles
// an EvidenceBundle. A failure of the action's sole data source sets
// RetrievalFailed rather than returning an error — spec §4.7.
func (c *Collector) Collect(ctx context.Context, campaign *models.Campaign, query string, decision *models.PlanningDecision) (*models.EvidenceBundle, error) {
	switch decision.Action {
	case models.ActionSearchNotes:
		return c.collectNotes(ctx, campaign, effectiveQuery(decision, query))
	case models.ActionSearchArtifactsThenGraph:
		return c.collectArtifact(ctx, campaign, effectiveQuery(decision, query))
	case models.ActionSearchRelationsThenGraph:
		return c.collectRelationship(ctx, campaign, effectiveQuery(decision, query))
	case models.ActionCombinedSearch:
		return c.collectCombined(ctx, campaign, effectiveQuery(decision, query))
	default:
		return nil, fmt.Errorf("collector: %w: action %q has no data collection strategy", apperrors.ErrRetrievalFailure, decision.Action)
	}
}

func effectiveQuery(decision *models.PlanningDecision, query string) string {
	if decision.Parameters.ArtifactSearchQuery != "" {
		return decision.Parameters.ArtifactSearchQuery
	}
	return query
}

func (c *Collector) collectNotes(ctx context.Context, campaign *models.Campaign, query string) (*models.EvidenceBundle, error) {
	notes, err := c.vector.SearchNotes(ctx, campaign, query, c.defaultK)
	if err != nil {
		return &models.EvidenceBundle{RetrievalFailed: true}, nil
	}
	return &models.EvidenceBundle{Notes: orderNotes(notes)}, nil
}

func (c *Collector) collectArtifact(ctx context.Context, campaign *models.Campaign, query string) (*models.EvidenceBundle, error) {
	hits, err := c.vector.SearchArtifacts(ctx, campaign, query, c.defaultK)
	if err != nil || len(hits) == 0 {
		return &models.EvidenceBundle{RetrievalFailed: err != nil}, nil
	}
	top := topArtifact(hits)
	return &models.EvidenceBundle{FoundArtifact: &top}, nil
}

func (c *Collector) collectRelationship(ctx context.Context, campaign *models.Campaign, query string) (*models.EvidenceBundle, error) {
	hits, err := c.vector.SearchRelationships(ctx, campaign, query, c.defaultK)
	if err != nil || len(hits) == 0 {
		return &models.EvidenceBundle{RetrievalFailed: err != nil}, nil
	}
	top := topRelationship(hits)
	return &models.EvidenceBundle{FoundRelation: &top}, nil
}

// collectCombined invokes all three vector searches concurrently. A failure
// on one or two of the three degrades gracefully (the bundle just omits
// that block); a failure on all three is a sole-source failure.
func (c *Collector) collectCombined(ctx context.Context, campaign *models.Campaign, query string) (*models.EvidenceBundle, error) {
	var (
		notes    []models.NoteSearchResult
		artifact []models.ArtifactSearchResult
		relation []models.RelationshipSearchResult
	)
	var notesErr, artifactErr, relationErr error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(combinedSearchLimit)

	g.Go(func() error {
		notes, notesErr = c.vector.SearchNotes(gctx, campaign, query, c.defaultK)
		return nil
	})
	g.Go(func() error {
		artifact, artifactErr = c.vector.SearchArtifacts(gctx, campaign, query, c.defaultK)
		return nil
	})
	g.Go(func() error {
		relation, relationErr = c.vector.SearchRelationships(gctx, campaign, query, c.defaultK)
		return nil
	})
	_ = g.Wait()

	bundle := &models.EvidenceBundle{}
	if notesErr == nil {
		bundle.Notes = orderNotes(notes)
	}
	if artifactErr == nil && len(artifact) > 0 {
		top := topArtifact(artifact)
		bundle.FoundArtifact = &top
	}
	if relationErr == nil && len(relation) > 0 {
		top := topRelationship(relation)
		bundle.FoundRelation = &top
	}

	if notesErr != nil && artifactErr != nil && relationErr != nil {
		bundle.RetrievalFailed = true
	}
	return bundle, nil
}

func topArtifact(hits []models.ArtifactSearchResult) models.ArtifactSearchResult {
	ordered := append([]models.ArtifactSearchResult(nil), hits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].ArtifactID.String() < ordered[j].ArtifactID.String()
	})
	return ordered[0]
}

func topRelationship(hits []models.RelationshipSearchResult) models.RelationshipSearchResult {
	ordered := append([]models.RelationshipSearchResult(nil), hits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].RelationshipID.String() < ordered[j].RelationshipID.String()
	})
	return ordered[0]
}

// orderNotes sorts notes deterministically by (score desc, UUID
// lexicographic) — spec §4.7's ordering requirement. Type ordering does not
// apply within a single-type note slice.
func orderNotes(notes []models.NoteSearchResult) []models.NoteSearchResult {
	ordered := append([]models.NoteSearchResult(nil), notes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return strings.Compare(ordered[i].NoteID.String(), ordered[j].NoteID.String()) < 0
	})
	return ordered
}
