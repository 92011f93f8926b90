package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tobi-ak/invoiceflow/internal/common"
	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// Invoice is the stored row. A few fields are lifted out of the record into
// columns so list/search stays a plain query; the full normalized record is
// kept as a JSON document, which is its own serialization anyway.
type Invoice struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	FileID     string               `json:"fileId"`
	FileName   string               `json:"fileName"`
	VendorName string               `gorm:"index" json:"vendorName"`
	Number     string               `gorm:"index" json:"number"`
	Date       string               `json:"date"`
	Currency   string               `json:"currency"`
	Total      float64              `json:"total"`
	Record     entity.InvoiceRecord `gorm:"serializer:json" json:"record"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

func (inv *Invoice) BeforeCreate(_ *gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

// InvoiceRepository is the persistence surface the server depends on.
type InvoiceRepository interface {
	Create(ctx context.Context, rec entity.InvoiceRecord, fileID, fileName string) (*Invoice, error)
	Update(ctx context.Context, id uuid.UUID, rec entity.InvoiceRecord) (*Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, query string) ([]Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *gorm.DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, rec entity.InvoiceRecord, fileID, fileName string) (*Invoice, error) {
	inv := &Invoice{
		FileID:     fileID,
		FileName:   fileName,
		VendorName: rec.Vendor.Name,
		Number:     rec.Invoice.Number,
		Date:       rec.Invoice.Date,
		Currency:   rec.Invoice.Currency,
		Total:      rec.Invoice.Total,
		Record:     rec,
	}
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	r.logger.Info("repository.invoice.created", "id", inv.ID, "number", inv.Number)
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, id uuid.UUID, rec entity.InvoiceRecord) (*Invoice, error) {
	inv, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.VendorName = rec.Vendor.Name
	inv.Number = rec.Invoice.Number
	inv.Date = rec.Invoice.Date
	inv.Currency = rec.Invoice.Currency
	inv.Total = rec.Invoice.Total
	inv.Record = rec
	if err := r.db.WithContext(ctx).Save(inv).Error; err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	r.logger.Info("repository.invoice.updated", "id", inv.ID, "number", inv.Number)
	return inv, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, query string) ([]Invoice, error) {
	var invoices []Invoice
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(vendor_name) LIKE LOWER(?) OR LOWER(number) LIKE LOWER(?)", like, like)
	}
	if err := q.Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&Invoice{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	r.logger.Info("repository.invoice.deleted", "id", id)
	return nil
}
