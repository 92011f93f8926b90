package llm

// PromptVersion tracks the instruction wording. The sanitizer's parsing
// assumptions are coupled to this text; bump the version on any change.
const PromptVersion = "v1"

const extractionPrompt = `You are an invoice JSON extractor. Extract fields and return ONLY valid JSON matching this schema:

{
  "vendor": { "name": string, "address": string|null, "taxId": string|null },
  "invoice": { "number": string, "date": "YYYY-MM-DD", "currency": string|null, "subtotal": number|null, "taxPercent": number|null, "total": number|null, "poNumber": string|null, "poDate": "YYYY-MM-DD"|null, "lineItems": [{ "description": string, "unitPrice": number, "quantity": number, "total": number }] }
}

Return exactly valid JSON (no markdown, no commentary). If a field is not found, use null or empty array. Never invent values.`

// BuildExtractionPrompt returns the fixed instruction block sent to every
// backend. Pure and stateless; the document text travels separately.
func BuildExtractionPrompt() string {
	return extractionPrompt
}
