package promptregistry

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
)

// Source resolves one template by name and label-or-version. The registry
// wraps a Source with caching and retries; it never talks to the backing
// store itself.
type Source interface {
	FetchTemplate(ctx context.Context, name, label string) (Template, error)
}

//go:embed prompts
var bundledPrompts embed.FS

// fileTemplate is the on-disk JSON shape for a bundled prompt. Chat
// templates set messages; text templates set text.
type fileTemplate struct {
	Version  string        `json:"version"`
	Kind     Kind          `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

// EmbeddedSource serves prompt templates bundled into the binary at build
// time under pkg/promptregistry/prompts/<name>/<label>.json. It never makes
// a network call, so a deployment can run entirely without an external
// prompt management backend.
type EmbeddedSource struct{}

func NewEmbeddedSource() *EmbeddedSource { return &EmbeddedSource{} }

func (s *EmbeddedSource) FetchTemplate(_ context.Context, name, label string) (Template, error) {
	path := fmt.Sprintf("prompts/%s/%s.json", name, label)
	raw, err := bundledPrompts.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("%w: %s@%s", ErrPromptMissing, name, label)
	}

	var ft fileTemplate
	if err := json.Unmarshal(raw, &ft); err != nil {
		return Template{}, fmt.Errorf("parsing bundled prompt %s@%s: %w", name, label, err)
	}

	return Template{
		Name:    name,
		Version: ft.Version,
		Kind:    ft.Kind,
		Text:    ft.Text,
		Chat:    ft.Messages,
	}, nil
}
