package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobi-ak/invoiceflow/internal/common"
	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/export"
	"github.com/tobi-ak/invoiceflow/internal/extract"
	"github.com/tobi-ak/invoiceflow/internal/llm"
	"github.com/tobi-ak/invoiceflow/internal/pipeline"
	"github.com/tobi-ak/invoiceflow/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type memRepo struct {
	rows map[uuid.UUID]*repository.Invoice
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[uuid.UUID]*repository.Invoice)}
}

func (m *memRepo) Create(_ context.Context, rec entity.InvoiceRecord, fileID, fileName string) (*repository.Invoice, error) {
	inv := &repository.Invoice{
		ID:         uuid.New(),
		FileID:     fileID,
		FileName:   fileName,
		VendorName: rec.Vendor.Name,
		Number:     rec.Invoice.Number,
		Date:       rec.Invoice.Date,
		Currency:   rec.Invoice.Currency,
		Total:      rec.Invoice.Total,
		Record:     rec,
	}
	m.rows[inv.ID] = inv
	return inv, nil
}

func (m *memRepo) Update(_ context.Context, id uuid.UUID, rec entity.InvoiceRecord) (*repository.Invoice, error) {
	inv, ok := m.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	inv.VendorName = rec.Vendor.Name
	inv.Number = rec.Invoice.Number
	inv.Total = rec.Invoice.Total
	inv.Record = rec
	return inv, nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*repository.Invoice, error) {
	inv, ok := m.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return inv, nil
}

func (m *memRepo) List(_ context.Context, query string) ([]repository.Invoice, error) {
	var out []repository.Invoice
	for _, inv := range m.rows {
		if query == "" || strings.Contains(strings.ToLower(inv.VendorName), strings.ToLower(query)) {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

type stubStrategy struct{ text string }

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Extract(_ context.Context, _ entity.Document) (string, error) {
	return s.text, nil
}

type stubGenerator struct{ out string }

func (g stubGenerator) Name() string { return llm.BackendGroq }

func (g stubGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.out, nil
}

func newTestRouter(t *testing.T, repo repository.InvoiceRepository, gen llm.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chain := extract.NewChain(discard, stubStrategy{text: "Invoice INV-1"})
	p := pipeline.New(chain, llm.NewRegistry(gen), pipeline.Config{}, discard)
	exp := export.NewService(repo, discard)

	r := gin.New()
	New(p, repo, exp, discard).Routes(r)
	return r
}

func uploadRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "a.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadInvoice(t *testing.T) {
	repo := newMemRepo()
	gen := stubGenerator{out: `{"vendor":{"name":"Acme"},"invoice":{"number":"INV-1","date":"2024-01-01","lineItems":[{"description":"Widget","unitPrice":10,"quantity":3,"total":0}]}}`}
	r := newTestRouter(t, repo, gen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/invoices/upload"))

	require.Equal(t, http.StatusCreated, w.Code)

	var inv repository.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, "Acme", inv.VendorName)
	assert.Equal(t, "a.pdf", inv.FileName)
	assert.Equal(t, 30.0, inv.Total, "persisted total is the reconciled one")
	assert.Len(t, repo.rows, 1)
}

func TestUploadInvoice_UnsupportedModel(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/invoices/upload?model=claude"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported model")
	assert.Empty(t, repo.rows)
}

func TestUploadInvoice_NoFile(t *testing.T) {
	r := newTestRouter(t, newMemRepo(), stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/invoices/upload", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInvoice_ManualEntryIsReconciled(t *testing.T) {
	repo := newMemRepo()
	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	body := `{"vendor":{},"invoice":{"lineItems":[{"description":"Widget","unitPrice":10,"quantity":3,"total":999}]}}`
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var inv repository.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, "Unknown Vendor", inv.VendorName)
	assert.Regexp(t, `^INV-\d+$`, inv.Number)
	assert.Equal(t, 30.0, inv.Total)
}

func TestUpdateInvoice_RecomputesTotals(t *testing.T) {
	repo := newMemRepo()
	created, err := repo.Create(context.Background(), entity.InvoiceRecord{
		Vendor:  entity.Vendor{Name: "Acme"},
		Invoice: entity.InvoiceDetails{Number: "INV-1", Date: "2024-01-01", Currency: "USD", Total: 30},
	}, "f1", "a.pdf")
	require.NoError(t, err)

	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	body := `{"vendor":{"name":"Acme"},"invoice":{"number":"INV-1","date":"2024-01-01","currency":"USD","lineItems":[{"description":"Widget","unitPrice":10,"quantity":5,"total":30}]}}`
	req := httptest.NewRequest(http.MethodPut, "/invoices/"+created.ID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var inv repository.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 50.0, inv.Total, "edited quantity drives the stored total")
}

func TestUpdateInvoice_NotFound(t *testing.T) {
	r := newTestRouter(t, newMemRepo(), stubGenerator{out: "{}"})

	body := `{"vendor":{},"invoice":{"lineItems":[]}}`
	req := httptest.NewRequest(http.MethodPut, "/invoices/"+uuid.New().String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetInvoice_BadID(t *testing.T) {
	r := newTestRouter(t, newMemRepo(), stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListInvoices_Search(t *testing.T) {
	repo := newMemRepo()
	_, err := repo.Create(context.Background(), entity.InvoiceRecord{Vendor: entity.Vendor{Name: "Acme"}, Invoice: entity.InvoiceDetails{Number: "INV-1"}}, "", "")
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), entity.InvoiceRecord{Vendor: entity.Vendor{Name: "Globex"}, Invoice: entity.InvoiceDetails{Number: "INV-2"}}, "", "")
	require.NoError(t, err)

	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices?q=acme", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []repository.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].VendorName)
}

func TestDeleteInvoice(t *testing.T) {
	repo := newMemRepo()
	created, err := repo.Create(context.Background(), entity.InvoiceRecord{Vendor: entity.Vendor{Name: "Acme"}}, "", "")
	require.NoError(t, err)

	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/invoices/"+created.ID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Empty(t, repo.rows)
}

func TestExportInvoices(t *testing.T) {
	repo := newMemRepo()
	_, err := repo.Create(context.Background(), entity.InvoiceRecord{
		Vendor:  entity.Vendor{Name: "Acme"},
		Invoice: entity.InvoiceDetails{Number: "INV-1", Date: "2024-01-01", Currency: "USD", Total: 30},
	}, "", "a.pdf")
	require.NoError(t, err)

	r := newTestRouter(t, repo, stubGenerator{out: "{}"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoices.xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}
