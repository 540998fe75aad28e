// Package planner implements the Planner (C6): decides which action the
// orchestrator should take next for a user query, via a single LLM call
// against a closed six-action output contract.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/promptregistry"
)

const (
	promptName  = "assistant-planning-v1"
	promptLabel = "production"
)

// Completer is the subset of llm.Client the planner depends on.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message, params llm.Params, binding llm.PromptBinding) (*llm.Completion, error)
}

// Registry is the subset of promptregistry.Registry the planner depends on.
type Registry interface {
	Fetch(ctx context.Context, name, label string, variables map[string]any) (promptregistry.Rendered, error)
}

// Campaign carries the minimal campaign context the planning prompt needs.
type Campaign struct {
	Name        string
	Description string
	Categories  []string
}

// Planner decides the next action for a user query.
type Planner struct {
	registry Registry
	llmModel string
	llm      Completer
}

func New(registry Registry, llmClient Completer, model string) *Planner {
	return &Planner{registry: registry, llmModel: model, llm: llmClient}
}

// rawDecision is the JSON contract the LLM is prompted to emit.
type rawDecision struct {
	Action     string `json:"action"`
	Reasoning  string `json:"reasoning"`
	Parameters struct {
		ArtifactSearchQuery string `json:"artifact_search_query"`
		ExpectedCypherScope string `json:"expected_cypher_scope"`
	} `json:"parameters"`
}

// Decide composes the planning prompt, calls the LLM, and parses the
// closed-action JSON decision. An action outside the closed set falls back
// to search_notes with the fallback recorded on the returned decision —
// spec §4.6.
func (p *Planner) Decide(ctx context.Context, query string, campaign Campaign) (*models.PlanningDecision, error) {
	rendered, err := p.registry.Fetch(ctx, promptName, promptLabel, map[string]any{
		"query":               query,
		"campaignName":        campaign.Name,
		"campaignDescription": campaign.Description,
		"categories":          strings.Join(campaign.Categories, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching planning prompt: %w", apperrors.ErrPlanningFailure, err)
	}

	completion, err := p.llm.Complete(ctx, p.llmModel, toMessages(rendered), llm.Params{}, llm.PromptBinding{
		Name: rendered.Name, Version: rendered.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPlanningFailure, err)
	}

	var raw rawDecision
	if err := json.Unmarshal(extractJSON(completion.Text), &raw); err != nil {
		// Spec §7 names this one of two local-recovery seams: a decision
		// that fails to parse falls back to search_notes once, rather than
		// failing the whole request.
		slog.Warn("planner output failed to parse, falling back to search_notes", "error", err)
		return &models.PlanningDecision{
			Action:                    models.ActionSearchNotes,
			Reasoning:                 "planner output could not be parsed",
			FellBackFromUnknownAction: true,
			RawAction:                 strings.TrimSpace(completion.Text),
		}, nil
	}

	decision := &models.PlanningDecision{
		Action:    models.PlannerAction(raw.Action),
		Reasoning: raw.Reasoning,
		Parameters: models.PlanningParameters{
			ArtifactSearchQuery: raw.Parameters.ArtifactSearchQuery,
			ExpectedCypherScope: models.GraphScope(raw.Parameters.ExpectedCypherScope),
		},
	}

	if !decision.Action.IsValid() {
		slog.Warn("planner emitted an action outside the closed set, falling back to search_notes", "raw_action", raw.Action)
		decision.RawAction = raw.Action
		decision.FellBackFromUnknownAction = true
		decision.Action = models.ActionSearchNotes
	}

	if decision.Action == models.ActionClarificationNeeded {
		decision.ClarificationMessage = raw.Reasoning
	}

	return decision, nil
}

func toMessages(rendered promptregistry.Rendered) []llm.Message {
	if rendered.Kind == promptregistry.KindChat {
		messages := make([]llm.Message, len(rendered.Chat))
		for i, m := range rendered.Chat {
			messages[i] = llm.Message{Role: m.Role, Content: m.Content}
		}
		return messages
	}
	return []llm.Message{{Role: "user", Content: rendered.Text}}
}

// extractJSON strips Markdown code fences the model may have wrapped the
// JSON object in, returning the raw object text.
func extractJSON(text string) []byte {
	trimmed := strings.TrimSpace(text)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end >= start {
			return []byte(trimmed[start : end+1])
		}
	}
	return []byte(trimmed)
}
