package promptregistry

import (
	"fmt"
	"strings"
)

// Kind distinguishes a single-string prompt from a chat message sequence.
type Kind string

const (
	KindText Kind = "text"
	KindChat Kind = "chat"
)

// ChatMessage is one turn of a chat-kind prompt template.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Template is the raw, uninterpolated prompt as held by the registry.
type Template struct {
	Name    string
	Version string
	Kind    Kind
	Text    string        // populated when Kind == KindText
	Chat    []ChatMessage // populated when Kind == KindChat
}

// Rendered is the result of a Fetch call: the interpolated prompt plus the
// metadata needed to bind it to an LLM call's observability attributes.
type Rendered struct {
	Name    string
	Version string
	Kind    Kind
	Text    string        // canonical text projection, always populated
	Chat    []ChatMessage // populated when Kind == KindChat
	Raw     Template      // the uninterpolated template, for debugging
}

// canonicalText projects a chat template to "[ROLE]: content\n..." form for
// text-only downstream consumers — spec §4.4.
func canonicalText(messages []ChatMessage) string {
	text := ""
	for i, m := range messages {
		if i > 0 {
			text += "\n"
		}
		text += fmt.Sprintf("[%s]: %s", strings.ToUpper(m.Role), m.Content)
	}
	return text
}
