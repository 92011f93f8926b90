package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unwrapped = `{"vendor":{"name":"Acme"},"invoice":{"number":"INV-1","date":"2024-01-01","lineItems":[]}}`

func TestDecodeInvoiceJSON_Plain(t *testing.T) {
	rec, err := DecodeInvoiceJSON(unwrapped)
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Vendor.Name)
	assert.Equal(t, "INV-1", rec.Invoice.Number)
	assert.Empty(t, rec.Invoice.LineItems)
}

func TestDecodeInvoiceJSON_FencedEqualsUnwrapped(t *testing.T) {
	fenced := "```json\n" + unwrapped + "\n```"

	got, err := DecodeInvoiceJSON(fenced)
	require.NoError(t, err)
	want, err := DecodeInvoiceJSON(unwrapped)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeInvoiceJSON_BareFence(t *testing.T) {
	fenced := "```\n" + unwrapped + "\n```"
	rec, err := DecodeInvoiceJSON(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Acme", rec.Vendor.Name)
}

func TestDecodeInvoiceJSON_MalformedKeepsRawVerbatim(t *testing.T) {
	raw := "Sorry, I cannot help."

	_, err := DecodeInvoiceJSON(raw)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, raw, pe.Raw, "the raw output is the only debugging evidence; it must survive untouched")
}

func TestDecodeInvoiceJSON_TruncatedJSON(t *testing.T) {
	raw := `{"vendor":{"name":"Acme"`
	_, err := DecodeInvoiceJSON(raw)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, raw, pe.Raw)
}

func TestDecodeInvoiceJSON_NullOptionals(t *testing.T) {
	raw := `{"vendor":{"name":"Acme","address":null,"taxId":null},"invoice":{"number":"INV-2","date":"2024-02-02","currency":null,"subtotal":null,"taxPercent":null,"total":null,"poNumber":null,"poDate":null,"lineItems":[{"description":"Widget","unitPrice":10,"quantity":3,"total":999}]}}`
	rec, err := DecodeInvoiceJSON(raw)
	require.NoError(t, err)
	assert.Nil(t, rec.Invoice.Subtotal)
	assert.Nil(t, rec.Invoice.TaxPercent)
	require.Len(t, rec.Invoice.LineItems, 1)
	assert.Equal(t, 999.0, rec.Invoice.LineItems[0].Total, "sanitizer does not touch fields; reconciliation does")
}
