// Package llm implements the LLM Client (C5): chat completions and
// embeddings over the OpenAI API, with retry-with-backoff, a per-call
// timeout, and GenAI observability attributes on the calling span.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkoukk/tiktoken-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
)

const (
	defaultTimeout      = 30 * time.Second
	maxRetries          = 2
	retryInitialBackoff = 1 * time.Second
)

// Message is one turn of a chat completion request.
type Message struct {
	Role    string // "system", "user", or "assistant"
	Content string
}

// Params carries the optional sampling parameters a caller may override.
type Params struct {
	Temperature *float64
	MaxTokens   *int64
	TopP        *float64
}

// PromptBinding names the prompt template and version that produced a
// call's messages. The client propagates it to the calling span as
// langfuse.observation.prompt.{name,version} — spec §9's observability
// contract.
type PromptBinding struct {
	Name    string
	Version string
}

// Completion is the result of one LLM call.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	ModelUsed    string
	Cost         float64
}

// Client wraps the OpenAI-compatible chat and embeddings APIs.
type Client struct {
	api      openai.Client
	timeout  time.Duration
	embedDim int
	encoder  *tiktoken.Tiktoken
}

// New constructs a Client. baseURL may be empty to use the default OpenAI
// endpoint (an OpenAI-compatible gateway may be substituted via baseURL).
func New(apiKey, baseURL string, timeout time.Duration, embedDim int) (*Client, error) {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	encoder, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		return nil, fmt.Errorf("loading token encoder: %w", err)
	}

	return &Client{
		api:      openai.NewClient(opts...),
		timeout:  timeout,
		embedDim: embedDim,
		encoder:  encoder,
	}, nil
}

// EstimateTokens counts the tokens text would consume, for pre-call
// budgeting and logging. It does not affect the cost actually billed,
// which is computed from the API response's reported usage.
func (c *Client) EstimateTokens(text string) int {
	return len(c.encoder.Encode(text, nil, nil))
}

// Complete issues a chat completion and returns the rendered text, token
// usage, and computed cost. binding may be the zero value if the messages
// were not sourced from the prompt registry.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, params Params, binding PromptBinding) (*Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("gen_ai.system", "openai"),
		attribute.String("gen_ai.request.model", model),
	)
	if binding.Name != "" {
		span.SetAttributes(
			attribute.String("langfuse.observation.prompt.name", binding.Name),
			attribute.String("langfuse.observation.prompt.version", binding.Version),
		)
	}

	reqParams := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: toAPIMessages(messages),
	}
	if params.Temperature != nil {
		reqParams.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens != nil {
		reqParams.MaxTokens = openai.Int(*params.MaxTokens)
	}
	if params.TopP != nil {
		reqParams.TopP = openai.Float(*params.TopP)
	}

	var resp *openai.ChatCompletion
	err := c.withRetry(callCtx, func() error {
		var callErr error
		resp, callErr = c.api.Chat.Completions.New(callCtx, reqParams)
		return callErr
	})
	if err != nil {
		return nil, c.wrapCallError(callCtx, "chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm returned no choices for model %s", model)
	}

	inputTokens := int64(resp.Usage.PromptTokens)
	outputTokens := int64(resp.Usage.CompletionTokens)
	completion := &Completion{
		Text:         resp.Choices[0].Message.Content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  int64(resp.Usage.TotalTokens),
		ModelUsed:    string(resp.Model),
		Cost:         cost(model, inputTokens, outputTokens),
	}

	span.SetAttributes(
		attribute.String("gen_ai.response.model", completion.ModelUsed),
		attribute.Int64("gen_ai.usage.input_tokens", completion.InputTokens),
		attribute.Int64("gen_ai.usage.output_tokens", completion.OutputTokens),
		attribute.Int64("gen_ai.usage.total_tokens", completion.TotalTokens),
		attribute.Float64("gen_ai.usage.cost", completion.Cost),
	)

	return completion, nil
}

// Embed implements vectorstore.Embedder: it embeds text with the
// text-embedding-3-small model and fails if the response dimensionality
// does not match embedDim. The model is fixed here; the llm.embedding_model
// configuration value is not consulted.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	return c.EmbedWithModel(ctx, "text-embedding-3-small", text)
}

// EmbedWithModel embeds text with an explicit model identifier.
func (c *Client) EmbedWithModel(ctx context.Context, model, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.EmbeddingNewParams{
		Model: model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
	}

	var resp *openai.CreateEmbeddingResponse
	err := c.withRetry(callCtx, func() error {
		var callErr error
		resp, callErr = c.api.Embeddings.New(callCtx, params)
		return callErr
	})
	if err != nil {
		return nil, c.wrapCallError(callCtx, "embedding", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response for model %s had no data", model)
	}

	raw := resp.Data[0].Embedding
	if len(raw) != c.embedDim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, configured %d", len(raw), c.embedDim)
	}

	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}

func (c *Client) withRetry(ctx context.Context, operation func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(backoff.WithInitialInterval(retryInitialBackoff)), maxRetries),
		ctx,
	)
	return backoff.Retry(func() error {
		if err := operation(); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, policy)
}

func (c *Client) wrapCallError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s exceeded %s: %w", op, c.timeout, apperrors.ErrLLMTimeout)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func toAPIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, m := range messages {
		switch m.Role {
		case "system":
			out[i] = openai.SystemMessage(m.Content)
		case "assistant":
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}
