// Package orchestrator implements the Orchestrator (C11): the single
// pipeline that drives planning, collection, optional graph generation,
// and synthesis under one observability trace and one overall budget.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/cyphergen"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/observability"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/planner"
)

const defaultMaxQueryLength = 500

// MetadataClient resolves a campaign UUID to its registry row.
type MetadataClient interface {
	GetCampaign(ctx context.Context, campaignUUID uuid.UUID) (*models.Campaign, error)
}

// Planner is the subset of planner.Planner the orchestrator depends on.
type Planner interface {
	Decide(ctx context.Context, query string, campaign planner.Campaign) (*models.PlanningDecision, error)
}

// Collector is the subset of collector.Collector the orchestrator depends
// on.
type Collector interface {
	Collect(ctx context.Context, campaign *models.Campaign, query string, decision *models.PlanningDecision) (*models.EvidenceBundle, error)
}

// CypherGenerator is the subset of cyphergen.Generator the orchestrator
// depends on.
type CypherGenerator interface {
	Generate(ctx context.Context, campaignLabel string, campaignUUID uuid.UUID, scope models.GraphScope, subject cyphergen.Subject) (*cyphergen.Result, error)
}

// GraphAdapter is the subset of graphstore.Adapter the orchestrator
// depends on.
type GraphAdapter interface {
	Execute(ctx context.Context, query string, params map[string]any) (*models.GraphPayload, error)
}

// Synthesizer is the subset of synthesizer.Synthesizer the orchestrator
// depends on.
type Synthesizer interface {
	Synthesize(ctx context.Context, campaignName, query string, action models.PlannerAction, evidence *models.EvidenceBundle) (string, error)
}

// Cache is the subset of querycache.Cache the orchestrator depends on.
type Cache interface {
	GetOrPopulate(ctx context.Context, campaignUUID, query string, populate func(ctx context.Context) (models.AssistantResponse, error)) (models.AssistantResponse, error)
}

// Orchestrator wires C1-C10 into the single request pipeline spec §4.11
// names.
type Orchestrator struct {
	metadata  MetadataClient
	cache     Cache
	planner   Planner
	collector Collector
	cyphergen CypherGenerator
	graph     GraphAdapter
	synth     Synthesizer

	overallTimeout time.Duration
	debugEnabled   bool
	maxQueryLength int
}

// New constructs an Orchestrator. debugEnabled governs whether debugInfo
// is attached to error responses (spec §7: only outside production).
// maxQueryLength bounds the inbound query length (spec §4.2's query
// limits); a value <= 0 falls back to the spec default of 500.
func New(
	metadata MetadataClient,
	cache Cache,
	planner Planner,
	collector Collector,
	cyphergen CypherGenerator,
	graph GraphAdapter,
	synth Synthesizer,
	overallTimeout time.Duration,
	debugEnabled bool,
	maxQueryLength int,
) *Orchestrator {
	if overallTimeout <= 0 {
		overallTimeout = 60 * time.Second
	}
	if maxQueryLength <= 0 {
		maxQueryLength = defaultMaxQueryLength
	}
	return &Orchestrator{
		metadata: metadata, cache: cache, planner: planner, collector: collector,
		cyphergen: cyphergen, graph: graph, synth: synth,
		overallTimeout: overallTimeout, debugEnabled: debugEnabled, maxQueryLength: maxQueryLength,
	}
}

// Handle runs the full pipeline for one request — spec §4.11's ten steps.
func (o *Orchestrator) Handle(ctx context.Context, campaignUUID uuid.UUID, query string) models.AssistantResponse {
	if err := validateQuery(query, o.maxQueryLength); err != nil {
		return o.errorResponse(err, nil)
	}

	campaign, err := o.metadata.GetCampaign(ctx, campaignUUID)
	if err != nil {
		return o.errorResponse(fmt.Errorf("%w", apperrors.ErrCampaignNotFound), nil)
	}

	ctx, cancel := context.WithTimeout(ctx, o.overallTimeout)
	defer cancel()

	response, err := o.cache.GetOrPopulate(ctx, campaignUUID.String(), query, func(ctx context.Context) (models.AssistantResponse, error) {
		return o.run(ctx, campaign, query)
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return o.errorResponse(fmt.Errorf("request exceeded %s: %w", o.overallTimeout, apperrors.ErrOverallTimeout), nil)
		}
		return o.errorResponse(err, debugInfoFor(err))
	}
	return response
}

func (o *Orchestrator) run(ctx context.Context, campaign *models.Campaign, query string) (models.AssistantResponse, error) {
	ctx, traceSpan := observability.StartRequestTrace(ctx)
	defer traceSpan.End()

	executedActions := make([]string, 0, 4)

	planCtx, planSpan := observability.StartSpan(ctx, observability.SpanPlanningDecision)
	observability.MarkGeneration(planSpan)
	decision, err := o.planner.Decide(planCtx, query, planner.Campaign{Name: campaign.Name, Description: campaign.Description})
	planSpan.End()
	if err != nil {
		return models.AssistantResponse{}, err
	}
	executedActions = append(executedActions, string(decision.Action))

	switch decision.Action {
	case models.ActionClarificationNeeded:
		return models.AssistantResponse{
			ResponseType:    models.ResponseTypeClarificationNeeded,
			TextResponse:    decision.ClarificationMessage,
			ExecutedActions: executedActions,
		}, nil
	case models.ActionOutOfScope:
		return models.AssistantResponse{
			ResponseType:    models.ResponseTypeOutOfScope,
			TextResponse:    decision.Reasoning,
			ExecutedActions: executedActions,
		}, nil
	}

	collectCtx, collectSpan := observability.StartSpan(ctx, observability.SpanVectorSearchCombined)
	evidence, err := o.collector.Collect(collectCtx, campaign, query, decision)
	collectSpan.End()
	if err != nil {
		return models.AssistantResponse{}, err
	}
	if evidence.RetrievalFailed {
		return models.AssistantResponse{}, fmt.Errorf("%w: sole data source failed for action %s", apperrors.ErrRetrievalFailure, decision.Action)
	}

	if requiresGraph(decision.Action) {
		subject, ok := subjectFor(decision, evidence)
		if ok {
			genCtx, genSpan := observability.StartSpan(ctx, observability.SpanCypherGeneration)
			observability.MarkGeneration(genSpan)
			result, genErr := o.cyphergen.Generate(genCtx, campaign.GraphLabel, campaign.ID, decision.Parameters.ExpectedCypherScope, subject)
			genSpan.End()
			if genErr != nil {
				return models.AssistantResponse{}, genErr
			}
			executedActions = append(executedActions, "cypher-generation")

			execCtx, execSpan := observability.StartSpan(ctx, observability.SpanGraphExecution)
			graph, execErr := o.graph.Execute(execCtx, result.Query, map[string]any{"campaignUuid": campaign.ID.String(), "artifactId": subject.ID})
			execSpan.End()
			if execErr != nil {
				return models.AssistantResponse{}, execErr
			}
			// A read-only execution that matches nothing still returns a
			// non-nil, empty payload — only attach it when it actually
			// carries nodes, per Testable Property 4 (graphData != null
			// implies graphData.nodes is non-empty).
			if len(graph.Nodes) > 0 {
				evidence.Graph = graph
			}
			executedActions = append(executedActions, "graph-execution")
		}
	}

	synthCtx, synthSpan := observability.StartSpan(ctx, observability.SpanResponseSynthesis)
	observability.MarkGeneration(synthSpan)
	text, err := o.synth.Synthesize(synthCtx, campaign.Name, query, decision.Action, evidence)
	synthSpan.End()
	if err != nil {
		return models.AssistantResponse{}, err
	}
	executedActions = append(executedActions, "synthesis")

	responseType := models.ResponseTypeText
	if evidence.Graph != nil {
		responseType = models.ResponseTypeTextAndGraph
	}

	return models.AssistantResponse{
		ResponseType:    responseType,
		TextResponse:    text,
		GraphData:       evidence.Graph,
		Sources:         evidence.Sources(),
		ExecutedActions: executedActions,
	}, nil
}

func requiresGraph(action models.PlannerAction) bool {
	return action == models.ActionSearchArtifactsThenGraph || action == models.ActionSearchRelationsThenGraph
}

// subjectFor extracts the found artifact or relationship the cypher
// generator needs. ok is false when the collector found nothing to anchor
// a graph query on — the request still succeeds with vector-only evidence.
func subjectFor(decision *models.PlanningDecision, evidence *models.EvidenceBundle) (cyphergen.Subject, bool) {
	switch decision.Action {
	case models.ActionSearchArtifactsThenGraph:
		if evidence.FoundArtifact == nil {
			return cyphergen.Subject{}, false
		}
		return cyphergen.Subject{
			ID:   evidence.FoundArtifact.ArtifactID.String(),
			Name: evidence.FoundArtifact.Name,
			Type: string(evidence.FoundArtifact.Type),
		}, true
	case models.ActionSearchRelationsThenGraph:
		if evidence.FoundRelation == nil {
			return cyphergen.Subject{}, false
		}
		return cyphergen.Subject{ID: evidence.FoundRelation.RelationshipID.String(), Name: evidence.FoundRelation.Label}, true
	default:
		return cyphergen.Subject{}, false
	}
}

// validateQuery rejects empty, whitespace-only, and over-length queries —
// Testable Property 7. Trimming happens before the emptiness check so a
// whitespace-only query can't slip through as non-empty.
func validateQuery(query string, maxQueryLength int) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return fmt.Errorf("%w: query must not be empty", apperrors.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(trimmed) > maxQueryLength {
		return fmt.Errorf("%w: query exceeds %d characters", apperrors.ErrInvalidQuery, maxQueryLength)
	}
	return nil
}

// debugInfoFor extracts the debug payload a given pipeline error carries,
// if any. Only the Cypher Generator's validation failures currently carry
// one — spec Scenario S3 requires the offending query echoed back.
func debugInfoFor(err error) map[string]any {
	var ve *cyphergen.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"generatedCypher": ve.Query}
	}
	return nil
}

// errorResponse maps err to the tagged error response, attaching debugInfo
// only when debug is enabled (i.e. outside production) — spec §7.
func (o *Orchestrator) errorResponse(err error, debugInfo map[string]any) models.AssistantResponse {
	response := models.AssistantResponse{
		ResponseType: models.ResponseTypeError,
		ErrorType:    apperrors.Kind(err),
		TextResponse: err.Error(),
	}
	if response.ErrorType == "" {
		response.ErrorType = "internal-error"
	}
	if o.debugEnabled && debugInfo != nil {
		response.DebugInfo = debugInfo
	}
	return response
}
