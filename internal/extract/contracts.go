package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// Strategy is one concrete way of deriving plain text from a document.
// Returning an empty string is a success: sparse documents are still readable.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, doc entity.Document) (string, error)
}

// StrategyError records one failed attempt in the chain.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

func (e StrategyError) Unwrap() error { return e.Err }

// ExtractionError means every configured strategy failed. The document is
// unreadable; there is nothing further to try.
type ExtractionError struct {
	Attempts []StrategyError
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return "all extraction strategies failed: " + strings.Join(parts, "; ")
}
