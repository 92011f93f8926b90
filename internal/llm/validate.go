package llm

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func invoiceSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		b, err := json.Marshal(BuildInvoiceJSONSchema())
		if err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = jsonschema.CompileString("invoice-schema.json", string(b))
	})
	return compiledSchema, schemaErr
}

// ValidateRecord checks a parsed candidate against the invoice schema.
// A failure here is a diagnostic signal (the model drifted from the prompt
// contract), not a rejection: reconciliation repairs everything the schema
// complains about, so callers log the mismatch and continue.
func ValidateRecord(rec entity.InvoiceRecord) error {
	sch, err := invoiceSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
