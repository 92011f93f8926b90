package llm

import (
	"context"
	"errors"
	"fmt"
)

// Backend identifiers accepted by the registry.
const (
	BackendGroq   = "groq"
	BackendGemini = "gemini"
)

// Generator is the capability every structured-extraction backend implements:
// instructions plus document text in, raw model text out. Request shaping
// (message formats, auth) is each variant's own business.
type Generator interface {
	Name() string
	Generate(ctx context.Context, instructions, documentText string) (string, error)
}

// ErrUnsupportedBackend is returned by the registry for unknown identifiers.
var ErrUnsupportedBackend = errors.New("unsupported backend")

// BackendError wraps a provider call failure. Status carries the provider's
// HTTP status when one was received (0 for transport-level failures). The
// cause is preserved for diagnostics; nothing at this layer retries.
type BackendError struct {
	Backend string
	Status  int
	Cause   error
}

func (e *BackendError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend %s failed (status %d): %v", e.Backend, e.Status, e.Cause)
	}
	return fmt.Sprintf("backend %s failed: %v", e.Backend, e.Cause)
}

func (e *BackendError) Unwrap() error { return e.Cause }
