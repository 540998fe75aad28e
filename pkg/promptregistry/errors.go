package promptregistry

import "errors"

// ErrPromptMissing is returned when a template cannot be resolved after the
// registry's bounded retries — spec §4.4.
var ErrPromptMissing = errors.New("prompt missing")
