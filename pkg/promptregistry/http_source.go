package promptregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource fetches prompt templates from a Langfuse-compatible prompt
// management endpoint: GET {host}/api/public/v2/prompts/{name}?label={label}
// over HTTP basic auth (public key as user, secret key as password) — the
// same ingestion surface the observability pipeline (pkg/observability)
// points its OTLP exporter at. The Go client library for this API was not
// available to verify against, so this talks the documented REST contract
// directly (see DESIGN.md).
type HTTPSource struct {
	httpClient *http.Client
	host       string
	publicKey  string
	secretKey  string
}

func NewHTTPSource(host, publicKey, secretKey string) *HTTPSource {
	return &HTTPSource{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		host:       host,
		publicKey:  publicKey,
		secretKey:  secretKey,
	}
}

type langfusePromptResponse struct {
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Type    string          `json:"type"` // "text" or "chat"
	Prompt  json.RawMessage `json:"prompt"`
}

func (s *HTTPSource) FetchTemplate(ctx context.Context, name, label string) (Template, error) {
	url := fmt.Sprintf("%s/api/public/v2/prompts/%s?label=%s", s.host, name, label)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Template{}, fmt.Errorf("building prompt fetch request: %w", err)
	}
	req.SetBasicAuth(s.publicKey, s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Template{}, fmt.Errorf("fetching prompt %s@%s: %w", name, label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Template{}, fmt.Errorf("prompt host returned HTTP %d for %s@%s", resp.StatusCode, name, label)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Template{}, fmt.Errorf("reading prompt response body: %w", err)
	}

	var parsed langfusePromptResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Template{}, fmt.Errorf("parsing prompt response for %s@%s: %w", name, label, err)
	}

	tmpl := Template{Name: name, Version: fmt.Sprintf("%d", parsed.Version)}
	switch parsed.Type {
	case "chat":
		tmpl.Kind = KindChat
		if err := json.Unmarshal(parsed.Prompt, &tmpl.Chat); err != nil {
			return Template{}, fmt.Errorf("parsing chat prompt %s@%s: %w", name, label, err)
		}
	default:
		tmpl.Kind = KindText
		if err := json.Unmarshal(parsed.Prompt, &tmpl.Text); err != nil {
			return Template{}, fmt.Errorf("parsing text prompt %s@%s: %w", name, label, err)
		}
	}

	return tmpl, nil
}
