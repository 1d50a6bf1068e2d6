package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/pdf"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const quoteSequence = "quote"

// Quote totals are compared with a half-cent tolerance to absorb
// client-side float rounding
const totalTolerance = 0.005

// QuoteService issues numbered quote documents. Numbers come from a
// database sequence allocated in the same transaction as the insert, so
// they are unique and gapless under concurrency.
type QuoteService struct {
	db           *gorm.DB
	quoteRepo    *repository.QuoteRepository
	customerRepo *repository.CustomerRepository
	sequenceRepo *repository.NumberSequenceRepository
	fileRepo     *repository.FileRepository
	renderer     *pdf.QuoteRenderer
	store        storage.Storage
	hub          *realtime.Hub
	logger       *zap.Logger
}

func NewQuoteService(
	db *gorm.DB,
	quoteRepo *repository.QuoteRepository,
	customerRepo *repository.CustomerRepository,
	sequenceRepo *repository.NumberSequenceRepository,
	fileRepo *repository.FileRepository,
	renderer *pdf.QuoteRenderer,
	store storage.Storage,
	hub *realtime.Hub,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		db:           db,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		sequenceRepo: sequenceRepo,
		fileRepo:     fileRepo,
		renderer:     renderer,
		store:        store,
		hub:          hub,
		logger:       logger,
	}
}

// FormatQuoteNumber renders a sequence number in display form:
// 45 -> WM000045
func FormatQuoteNumber(n int) string {
	return fmt.Sprintf("WM%06d", n)
}

func (s *QuoteService) List(ctx context.Context, page, pageSize int, customerID *uuid.UUID, status domain.QuoteStatus) ([]domain.Quote, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, customerID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, total, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// Create computes totals from the line items, verifies any client-sent
// total, allocates the next quote number and inserts everything in one
// transaction
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.Quote, error) {
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	items := make([]domain.QuoteItem, len(req.Items))
	subtotal := 0.0
	for i, item := range req.Items {
		unit := item.Unit
		if unit == "" {
			unit = "ton"
		}
		lineTotal := item.Quantity * item.UnitPrice
		items[i] = domain.QuoteItem{
			Description: item.Description,
			Material:    item.Material,
			Quantity:    item.Quantity,
			Unit:        unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		}
		subtotal += lineTotal
	}

	total := subtotal - req.Discount
	if req.Total != nil && math.Abs(*req.Total-total) > totalTolerance {
		return nil, fmt.Errorf("%w: sent %.2f, computed %.2f", ErrTotalMismatch, *req.Total, total)
	}

	quote := &domain.Quote{
		Status:     domain.QuoteStatusDraft,
		CustomerID: req.CustomerID,
		DealID:     req.DealID,
		Subtotal:   subtotal,
		Discount:   req.Discount,
		Total:      total,
		ValidUntil: req.ValidUntil,
		Notes:      req.Notes,
		Items:      items,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := s.sequenceRepo.NextNumber(ctx, tx, quoteSequence)
		if err != nil {
			return err
		}
		quote.Number = FormatQuoteNumber(next)

		if err := s.quoteRepo.CreateWithItems(ctx, tx, quote); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.Float64("total", quote.Total),
	)

	s.hub.Publish(realtime.Event{Table: "quotes", Op: realtime.OpInsert, After: quote})

	return quote, nil
}

// UpdateStatus moves a quote through its lifecycle
func (s *QuoteService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.QuoteStatus) (*domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.quoteRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update quote status: %w", err)
	}
	quote.Status = status

	s.hub.Publish(realtime.Event{Table: "quotes", Op: realtime.OpUpdate, After: quote})

	return quote, nil
}

// RenderPDF renders the quote document and archives a copy in storage.
// A storage failure does not fail the request; the bytes are already
// rendered and the archive is best effort.
func (s *QuoteService) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, *domain.Quote, error) {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.renderer.Render(quote)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render quote: %w", err)
	}

	fileName := quote.Number + ".pdf"
	storagePath, size, err := s.store.Upload(ctx, fileName, "application/pdf", bytes.NewReader(data))
	if err != nil {
		s.logger.Warn("failed to archive quote pdf", zap.String("quote_id", id.String()), zap.Error(err))
		return data, quote, nil
	}

	quoteID := quote.ID
	file := &domain.UploadedFile{
		FileName:    fileName,
		ContentType: "application/pdf",
		StoragePath: storagePath,
		SizeBytes:   size,
		Purpose:     "quote-pdf",
		EntityID:    &quoteID,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.logger.Warn("failed to record quote pdf", zap.String("quote_id", id.String()), zap.Error(err))
	}

	return data, quote, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	quote, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	s.hub.Publish(realtime.Event{Table: "quotes", Op: realtime.OpDelete, Before: quote})

	return nil
}
