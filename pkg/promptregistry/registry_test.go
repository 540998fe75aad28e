package promptregistry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int
	tmpl  Template
	err   error
}

func (f *fakeSource) FetchTemplate(_ context.Context, name, label string) (Template, error) {
	f.calls++
	if f.err != nil {
		return Template{}, f.err
	}
	tmpl := f.tmpl
	tmpl.Name = name
	return tmpl, nil
}

func TestFetch_InterpolatesTextTemplate(t *testing.T) {
	src := &fakeSource{tmpl: Template{Version: "1", Kind: KindText, Text: "Hello {{name}}, your campaign is {{campaign}}."}}
	reg := New(src, time.Minute)

	rendered, err := reg.Fetch(context.Background(), "greeting", "production", map[string]any{
		"name": "Alex", "campaign": "Shattered Peaks",
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello Alex, your campaign is Shattered Peaks.", rendered.Text)
}

func TestFetch_LeavesUnresolvedPlaceholdersIntact(t *testing.T) {
	src := &fakeSource{tmpl: Template{Version: "1", Kind: KindText, Text: "Hello {{name}}, missing: {{unset}}."}}
	reg := New(src, time.Minute)

	rendered, err := reg.Fetch(context.Background(), "greeting", "production", map[string]any{"name": "Alex"})

	require.NoError(t, err)
	assert.Equal(t, "Hello Alex, missing: {{unset}}.", rendered.Text)
}

func TestFetch_ProjectsChatToCanonicalText(t *testing.T) {
	src := &fakeSource{tmpl: Template{
		Version: "1",
		Kind:    KindChat,
		Chat: []ChatMessage{
			{Role: "system", Content: "You are a helper."},
			{Role: "user", Content: "Question: {{query}}"},
		},
	}}
	reg := New(src, time.Minute)

	rendered, err := reg.Fetch(context.Background(), "planner", "production", map[string]any{"query": "who is Rook?"})

	require.NoError(t, err)
	assert.Equal(t, "[SYSTEM]: You are a helper.\n[USER]: Question: who is Rook?", rendered.Text)
	require.Len(t, rendered.Chat, 2)
	assert.Equal(t, "Question: who is Rook?", rendered.Chat[1].Content)
}

func TestFetch_CachesAcrossCalls(t *testing.T) {
	src := &fakeSource{tmpl: Template{Version: "1", Kind: KindText, Text: "static"}}
	reg := New(src, time.Minute)

	_, err := reg.Fetch(context.Background(), "p", "production", nil)
	require.NoError(t, err)
	_, err = reg.Fetch(context.Background(), "p", "production", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
}

func TestFetchNoCache_AlwaysHitsSource(t *testing.T) {
	src := &fakeSource{tmpl: Template{Version: "1", Kind: KindText, Text: "static"}}
	reg := New(src, time.Minute)

	_, err := reg.Fetch(context.Background(), "p", "production", nil)
	require.NoError(t, err)
	_, err = reg.FetchNoCache(context.Background(), "p", "production", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
}

func TestFetch_RetriesThenReturnsPromptMissing(t *testing.T) {
	src := &fakeSource{err: errors.New("backend unavailable")}
	reg := New(src, time.Minute)

	start := time.Now()
	_, err := reg.Fetch(context.Background(), "p", "production", nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromptMissing))
	assert.Equal(t, 2, src.calls)
	assert.GreaterOrEqual(t, elapsed, retryBackoff)
}

func TestEmbeddedSource_ServesBundledPlanningPrompt(t *testing.T) {
	src := NewEmbeddedSource()

	tmpl, err := src.FetchTemplate(context.Background(), "assistant-planning-v1", "production")

	require.NoError(t, err)
	assert.Equal(t, KindChat, tmpl.Kind)
	assert.NotEmpty(t, tmpl.Chat)
}

func TestEmbeddedSource_MissingPromptIsPromptMissing(t *testing.T) {
	reg := New(NewEmbeddedSource(), time.Minute)

	_, err := reg.Fetch(context.Background(), "does-not-exist", "production", nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPromptMissing))
}
