package llm

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. It is used locally to flag extracted candidates that drift from
// the prompt contract; it is advisory, not a gate (see ValidateRecord).
func BuildInvoiceJSONSchema() map[string]any {
	datePattern := map[string]any{
		"type":    []string{"string", "null"},
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}

	lineItem := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"unitPrice":   map[string]any{"type": "number"},
			"quantity":    map[string]any{"type": "number"},
			"total":       map[string]any{"type": "number"},
		},
		"required": []string{"description", "unitPrice", "quantity"},
	}

	vendor := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":    map[string]any{"type": "string", "minLength": 1},
			"address": map[string]any{"type": []string{"string", "null"}},
			"taxId":   map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"name"},
	}

	invoice := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"number":     map[string]any{"type": "string", "minLength": 1},
			"date":       map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"currency":   map[string]any{"type": []string{"string", "null"}},
			"subtotal":   map[string]any{"type": []string{"number", "null"}},
			"taxPercent": map[string]any{"type": []string{"number", "null"}},
			"total":      map[string]any{"type": []string{"number", "null"}},
			"poNumber":   map[string]any{"type": []string{"string", "null"}},
			"poDate":     datePattern,
			"lineItems":  map[string]any{"type": "array", "items": lineItem},
		},
		"required": []string{"number", "date", "lineItems"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"vendor":  vendor,
			"invoice": invoice,
		},
		"required": []string{"vendor", "invoice"},
	}
}
