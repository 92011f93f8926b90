// Package entity holds the value types shared across the extraction pipeline.
package entity

// Document is an unprocessed invoice submitted for extraction. It lives for
// the duration of a single pipeline run and is never persisted.
type Document struct {
	Name string
	Data []byte
}

// LineItem is a single billed row. Total is a derived field: reconciliation
// recomputes it from Quantity and UnitPrice and never trusts an upstream value.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
}

// Vendor identifies the issuing party. Empty strings mean "absent" on a
// candidate record; reconciliation substitutes sentinels.
type Vendor struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"taxId"`
}

// InvoiceDetails carries the invoice body. Subtotal and TaxPercent are
// pointers because extraction may legitimately find neither; they pass through
// reconciliation untouched.
type InvoiceDetails struct {
	Number     string     `json:"number"`
	Date       string     `json:"date"` // YYYY-MM-DD
	Currency   string     `json:"currency"`
	Subtotal   *float64   `json:"subtotal"`
	TaxPercent *float64   `json:"taxPercent"`
	Total      float64    `json:"total"`
	PONumber   string     `json:"poNumber"`
	PODate     string     `json:"poDate"` // YYYY-MM-DD
	LineItems  []LineItem `json:"lineItems"`
}

// InvoiceRecord is the structured record produced by the pipeline and edited
// by the UI. The JSON shape here is the exact contract the extraction prompt
// demands from the model. LineItems order is significant and preserved.
type InvoiceRecord struct {
	Vendor  Vendor         `json:"vendor"`
	Invoice InvoiceDetails `json:"invoice"`
}
