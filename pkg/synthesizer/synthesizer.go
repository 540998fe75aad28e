// Package synthesizer implements the Synthesizer (C9): one LLM call that
// turns an evidence bundle into a grounded, cited natural-language answer.
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/promptregistry"
)

const (
	promptName  = "assistant-synthesis"
	promptLabel = "production"

	noEvidenceReply = "I don't have any notes, artifacts, or relationships in this campaign that speak to that — try rephrasing your question or naming a specific character, location, or event."
)

// Completer is the subset of llm.Client the synthesizer depends on.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message, params llm.Params, binding llm.PromptBinding) (*llm.Completion, error)
}

// Registry is the subset of promptregistry.Registry the synthesizer
// depends on.
type Registry interface {
	Fetch(ctx context.Context, name, label string, variables map[string]any) (promptregistry.Rendered, error)
}

// Synthesizer renders the final natural-language answer for a request.
type Synthesizer struct {
	registry Registry
	llmModel string
	llm      Completer
}

func New(registry Registry, llmClient Completer, model string) *Synthesizer {
	return &Synthesizer{registry: registry, llmModel: model, llm: llmClient}
}

// Synthesize produces grounded text for query given action and the
// evidence gathered for it. On empty evidence it returns the canned
// no-evidence reply without an LLM call — the response type is still
// "text", never "error" — spec §4.9.
func (s *Synthesizer) Synthesize(ctx context.Context, campaignName, query string, action models.PlannerAction, evidence *models.EvidenceBundle) (string, error) {
	if isEmpty(evidence) {
		return noEvidenceReply, nil
	}

	rendered, err := s.registry.Fetch(ctx, promptName, promptLabel, map[string]any{
		"campaignName": campaignName,
		"action":       string(action),
		"originalQuery": query,
		"vectorResults": formatVectorResults(evidence),
		"graphResults":  formatGraphResults(evidence.Graph),
	})
	if err != nil {
		return "", fmt.Errorf("%w: fetching synthesis prompt: %w", apperrors.ErrSynthesisFailure, err)
	}

	completion, err := s.llm.Complete(ctx, s.llmModel, toMessages(rendered), llm.Params{}, llm.PromptBinding{
		Name: rendered.Name, Version: rendered.Version,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrSynthesisFailure, err)
	}
	if strings.TrimSpace(completion.Text) == "" {
		return "", fmt.Errorf("%w: llm returned an empty synthesis", apperrors.ErrSynthesisFailure)
	}

	return completion.Text, nil
}

// isEmpty reports whether evidence has nothing a synthesis could be
// grounded in.
func isEmpty(evidence *models.EvidenceBundle) bool {
	if evidence == nil {
		return true
	}
	return len(evidence.Notes) == 0 &&
		evidence.FoundArtifact == nil &&
		evidence.FoundRelation == nil &&
		evidence.Graph == nil
}

func formatVectorResults(evidence *models.EvidenceBundle) string {
	var b strings.Builder
	for _, n := range evidence.Notes {
		fmt.Fprintf(&b, "- [Note: %s] %s\n", n.Title, n.Snippet)
	}
	if evidence.FoundArtifact != nil {
		fmt.Fprintf(&b, "- Artifact: %s (%s)\n", evidence.FoundArtifact.Name, evidence.FoundArtifact.Type)
	}
	if evidence.FoundRelation != nil {
		fmt.Fprintf(&b, "- Relationship: %s\n", evidence.FoundRelation.Label)
	}
	if b.Len() == 0 {
		return "none"
	}
	return b.String()
}

func formatGraphResults(graph *models.GraphPayload) string {
	if graph == nil || (len(graph.Nodes) == 0 && len(graph.Edges) == 0) {
		return "none"
	}
	var b strings.Builder
	for _, n := range graph.Nodes {
		fmt.Fprintf(&b, "- node %s (%s): %s\n", n.Name, n.Type, n.Description)
	}
	for _, e := range graph.Edges {
		fmt.Fprintf(&b, "- edge %s -[%s]-> %s\n", e.Source, e.Label, e.Target)
	}
	return b.String()
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
