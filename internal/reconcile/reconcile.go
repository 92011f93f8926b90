// Package reconcile maintains the arithmetic invariants of an invoice record:
// every line total equals quantity times unit price, and the invoice total
// equals the sum of line totals. It is the single entry point for both freshly
// extracted candidates and human edits.
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// Sentinel values substituted for absent required fields.
const (
	UnknownVendor   = "Unknown Vendor"
	DefaultCurrency = "USD"
)

const currencyPlaces = 2

// Normalize fills defaults for missing fields and recomputes derived totals.
// It is total (never fails) and idempotent: every recomputed field is a pure
// function of already-normalized inputs.
func Normalize(candidate entity.InvoiceRecord) entity.InvoiceRecord {
	return NormalizeAt(candidate, time.Now())
}

// NormalizeAt is Normalize with an explicit clock, for callers that need
// deterministic defaulting.
func NormalizeAt(candidate entity.InvoiceRecord, now time.Time) entity.InvoiceRecord {
	out := candidate

	if strings.TrimSpace(out.Vendor.Name) == "" {
		out.Vendor.Name = UnknownVendor
	}
	if strings.TrimSpace(out.Invoice.Number) == "" {
		out.Invoice.Number = "INV-" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	if strings.TrimSpace(out.Invoice.Date) == "" {
		out.Invoice.Date = now.Format("2006-01-02")
	}
	if strings.TrimSpace(out.Invoice.Currency) == "" {
		out.Invoice.Currency = DefaultCurrency
	}

	// Line totals are never trusted from upstream; recompute all of them and
	// derive the invoice total from the recomputed values. Order preserved.
	items := make([]entity.LineItem, len(candidate.Invoice.LineItems))
	copy(items, candidate.Invoice.LineItems)

	sum := decimal.Zero
	for i := range items {
		t := decimal.NewFromFloat(items[i].Quantity).
			Mul(decimal.NewFromFloat(items[i].UnitPrice)).
			Round(currencyPlaces)
		items[i].Total = t.InexactFloat64()
		sum = sum.Add(t)
	}
	out.Invoice.LineItems = items
	out.Invoice.Total = sum.Round(currencyPlaces).InexactFloat64()

	// Subtotal and TaxPercent pass through unmodified. No tax law is derived
	// from them; the stored values are whatever extraction or the editor said.
	return out
}
