package llm

import (
	"encoding/json"
	"strings"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// ParseError means the provider responded but its output was not valid JSON
// after sanitization. Raw holds the original output verbatim. It is the only
// evidence of why extraction produced nothing usable, so callers must log it,
// never discard it.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "model response is not valid JSON"
}

// DecodeInvoiceJSON strips formatting noise from raw model output and parses
// it into a candidate record. Models frequently wrap JSON in a code fence
// despite instructions; one leading and one trailing fence are tolerated.
// No field-level validation or defaulting happens here; that is
// reconciliation's job, which keeps the two independently testable.
func DecodeInvoiceJSON(raw string) (entity.InvoiceRecord, error) {
	cleaned := stripCodeFence(raw)

	var rec entity.InvoiceRecord
	if err := json.Unmarshal([]byte(cleaned), &rec); err != nil {
		return entity.InvoiceRecord{}, &ParseError{Raw: raw}
	}
	return rec, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if rest, ok := strings.CutPrefix(s, "```json"); ok {
			s = rest
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
