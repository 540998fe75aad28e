// Package cyphergen implements the Cypher Generator (C8): one LLM call that
// turns a found artifact or relationship plus a requested scope into a
// validated, read-only Cypher query.
package cyphergen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/cypher"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/promptregistry"
)

const (
	promptName  = "assistant-cypher-generation"
	promptLabel = "production"
)

// Completer is the subset of llm.Client the generator depends on.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message, params llm.Params, binding llm.PromptBinding) (*llm.Completion, error)
}

// Registry is the subset of promptregistry.Registry the generator depends
// on.
type Registry interface {
	Fetch(ctx context.Context, name, label string, variables map[string]any) (promptregistry.Rendered, error)
}

// Subject is the artifact or relationship the graph query is about.
type Subject struct {
	ID   string
	Name string
	Type string
}

// Generator produces and validates Cypher queries via a dedicated, usually
// cheaper model than planning/synthesis — spec §4.8.
type Generator struct {
	registry Registry
	llmModel string
	llm      Completer
}

func New(registry Registry, llmClient Completer, model string) *Generator {
	return &Generator{registry: registry, llmModel: model, llm: llmClient}
}

// Result is a generated, validated query ready for pkg/graphstore.Execute.
type Result struct {
	Query     string
	Reasoning string
}

// ValidationError reports a generated Cypher query that failed C1's
// validation. It carries the offending query so a caller can surface it as
// debugInfo.generatedCypher (spec §6/Scenario S3) without parsing the
// error string.
type ValidationError struct {
	Query  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", apperrors.ErrInvalidCypher, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidCypher
}

type rawGeneration struct {
	Reasoning   string `json:"reasoning"`
	CypherQuery string `json:"cypher_query"`
}

// Generate renders the cypher-generation prompt, calls the LLM, extracts
// the candidate query, and validates it with C1. Validation failure is
// terminal — spec §4.8.
func (g *Generator) Generate(ctx context.Context, campaignLabel string, campaignUUID uuid.UUID, scope models.GraphScope, subject Subject) (*Result, error) {
	rendered, err := g.registry.Fetch(ctx, promptName, promptLabel, map[string]any{
		"campaignLabel": campaignLabel,
		"campaignUuid":  campaignUUID.String(),
		"scope":         string(scope),
		"subjectId":     subject.ID,
		"subjectName":   subject.Name,
		"subjectType":   subject.Type,
		"hopDepth":      hopDepth(scope),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching cypher-generation prompt: %w", apperrors.ErrInvalidCypher, err)
	}

	completion, err := g.llm.Complete(ctx, g.llmModel, toMessages(rendered), llm.Params{}, llm.PromptBinding{
		Name: rendered.Name, Version: rendered.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generating cypher: %w", apperrors.ErrInvalidCypher, err)
	}

	var raw rawGeneration
	if err := json.Unmarshal(extractJSON(completion.Text), &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing cypher generation output: %w", apperrors.ErrInvalidCypher, err)
	}

	result := cypher.Validate(raw.CypherQuery)
	if !result.Valid {
		return nil, &ValidationError{Query: raw.CypherQuery, Reason: result.Reason}
	}

	return &Result{Query: raw.CypherQuery, Reasoning: raw.Reasoning}, nil
}

// hopDepth maps a requested scope to a traversal depth per spec §4.8: 1 hop
// for relationships, 2 hops for full_subgraph, 0 hops for node_details.
func hopDepth(scope models.GraphScope) int {
	switch scope {
	case models.ScopeRelationships:
		return 1
	case models.ScopeFullSubgraph:
		return 2
	case models.ScopeNodeDetails:
		return 0
	default:
		return 1
	}
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

func extractJSON(text string) []byte {
	trimmed := strings.TrimSpace(text)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end >= start {
			return []byte(trimmed[start : end+1])
		}
	}
	return []byte(trimmed)
}
