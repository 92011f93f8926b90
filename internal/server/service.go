// Package server exposes the pipeline and store over HTTP. It is deliberately
// thin: handlers translate requests, call the pipeline or repository, and map
// failures to generic client-facing errors while full detail stays in logs.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tobi-ak/invoiceflow/internal/export"
	"github.com/tobi-ak/invoiceflow/internal/pipeline"
	"github.com/tobi-ak/invoiceflow/internal/repository"
)

type Server struct {
	pipeline *pipeline.Pipeline
	invoices repository.InvoiceRepository
	export   *export.Service
	logger   *slog.Logger
}

func New(p *pipeline.Pipeline, invoices repository.InvoiceRepository, exp *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{pipeline: p, invoices: invoices, export: exp, logger: logger}
}

// Routes mounts all invoice endpoints on the router.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/healthz", s.health)

	inv := r.Group("/invoices")
	{
		inv.POST("/upload", s.uploadInvoice)
		inv.POST("", s.createInvoice)
		inv.GET("", s.listInvoices)
		inv.GET("/export", s.exportInvoices)
		inv.GET("/:id", s.getInvoice)
		inv.PUT("/:id", s.updateInvoice)
		inv.DELETE("/:id", s.deleteInvoice)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
