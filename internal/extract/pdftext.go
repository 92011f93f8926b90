package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// pdfTextStrategy reads the document's structured text layer page by page.
// This is the primary strategy: it preserves reading order and row grouping,
// which the downstream prompt benefits from.
type pdfTextStrategy struct{}

func (pdfTextStrategy) Name() string { return "pdf-text" }

func (pdfTextStrategy) Extract(ctx context.Context, doc entity.Document) (text string, err error) {
	// The parser panics on some malformed xref tables; surface that as a
	// strategy error so the chain can fall through.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("page %d text: %w", i, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				b.WriteString(word.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
