package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tobi-ak/invoiceflow/internal/common"
	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/llm"
)

// uploadInvoice receives a document, runs the extraction pipeline with the
// requested backend (query param "model"), and persists the normalized record.
// Internal provider detail is never surfaced to the client; the log line
// carries it.
func (s *Server) uploadInvoice(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}

	doc := entity.Document{Name: fileHeader.Filename, Data: data}
	backendID := c.Query("model")

	rec, err := s.pipeline.Run(c.Request.Context(), doc, backendID)
	if err != nil {
		if errors.Is(err, llm.ErrUnsupportedBackend) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported model"})
			return
		}
		s.logger.Error("server.upload.extract_failed",
			"file", doc.Name, "backend", backendID, "error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
		return
	}

	inv, err := s.invoices.Create(c.Request.Context(), rec, uuid.New().String(), doc.Name)
	if err != nil {
		s.logger.Error("server.upload.persist_failed", "file", doc.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save invoice"})
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// createInvoice is the manual-entry path: no extraction, but the record still
// passes through reconciliation before it is considered valid.
func (s *Server) createInvoice(c *gin.Context) {
	var rec entity.InvoiceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice body"})
		return
	}

	rec = s.pipeline.Reconcile(rec)

	inv, err := s.invoices.Create(c.Request.Context(), rec, "", "")
	if err != nil {
		s.logger.Error("server.create.persist_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save invoice"})
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// updateInvoice is the editing re-entry point: every field edit comes back
// through reconciliation, which recomputes derived totals.
func (s *Server) updateInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var rec entity.InvoiceRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice body"})
		return
	}

	rec = s.pipeline.Reconcile(rec)

	inv, err := s.invoices.Update(c.Request.Context(), id, rec)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.logger.Error("server.update.persist_failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update invoice"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) getInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	inv, err := s.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		s.logger.Error("server.get.failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoice"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (s *Server) listInvoices(c *gin.Context) {
	invoices, err := s.invoices.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.logger.Error("server.list.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (s *Server) deleteInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := s.invoices.Delete(c.Request.Context(), id); err != nil {
		s.logger.Error("server.delete.failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete invoice"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) exportInvoices(c *gin.Context) {
	data, err := s.export.ExportInvoicesXLSX(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.logger.Error("server.export.failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
