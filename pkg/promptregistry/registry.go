// Package promptregistry implements the Prompt Registry Client (C4): a
// cached, retried front end over a source of versioned prompt templates,
// with {{KEY}} variable interpolation and a chat-to-text projection.
package promptregistry

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	fetchRetries = 1 // one retry after the initial attempt: 2 attempts total
	retryBackoff = 1 * time.Second
)

// Registry fetches, caches, and renders prompt templates.
type Registry struct {
	source Source
	cache  *cache
}

// New constructs a Registry backed by source, caching raw templates for ttl.
func New(source Source, ttl time.Duration) *Registry {
	return &Registry{source: source, cache: newCache(ttl)}
}

// Fetch resolves name@label, interpolates variables, and returns the
// rendered prompt. Template lookups go through the cache.
func (r *Registry) Fetch(ctx context.Context, name, label string, variables map[string]any) (Rendered, error) {
	tmpl, err := r.resolve(ctx, name, label, true)
	if err != nil {
		return Rendered{}, err
	}
	return render(tmpl, variables), nil
}

// FetchNoCache behaves like Fetch but bypasses the cache for this read. It
// does not evict any existing cache entry.
func (r *Registry) FetchNoCache(ctx context.Context, name, label string, variables map[string]any) (Rendered, error) {
	tmpl, err := r.resolve(ctx, name, label, false)
	if err != nil {
		return Rendered{}, err
	}
	return render(tmpl, variables), nil
}

func (r *Registry) resolve(ctx context.Context, name, label string, useCache bool) (Template, error) {
	if useCache {
		if tmpl, ok := r.cache.get(name, label); ok {
			return tmpl, nil
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(retryBackoff), fetchRetries), ctx)

	var tmpl Template
	var lastErr error
	err := backoff.Retry(func() error {
		var fetchErr error
		tmpl, fetchErr = r.source.FetchTemplate(ctx, name, label)
		lastErr = fetchErr
		return fetchErr
	}, policy)
	if err != nil {
		return Template{}, fmt.Errorf("%w: %s@%s: %w", ErrPromptMissing, name, label, lastErr)
	}

	r.cache.set(name, label, tmpl)
	return tmpl, nil
}

var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z0-9_]+)\}\}`)

// render interpolates {{KEY}} placeholders in tmpl using variables, leaving
// any placeholder without a matching key intact.
func render(tmpl Template, variables map[string]any) Rendered {
	out := Rendered{Name: tmpl.Name, Version: tmpl.Version, Kind: tmpl.Kind, Raw: tmpl}

	switch tmpl.Kind {
	case KindChat:
		messages := make([]ChatMessage, len(tmpl.Chat))
		for i, m := range tmpl.Chat {
			messages[i] = ChatMessage{Role: m.Role, Content: interpolate(m.Content, variables)}
		}
		out.Chat = messages
		out.Text = canonicalText(messages)
	default:
		out.Text = interpolate(tmpl.Text, variables)
	}

	return out
}

func interpolate(text string, variables map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := variables[key]; ok {
			return fmt.Sprintf("%v", value)
		}
		return match
	})
}
