package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/pdf"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/storage"
	"github.com/wm-metals/trade-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupQuoteServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createQuoteService(t *testing.T, db *gorm.DB) *service.QuoteService {
	quoteRepo := repository.NewQuoteRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)
	fileRepo := repository.NewFileRepository(db)
	renderer := pdf.NewQuoteRenderer("WM Metals Test")
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	hub := realtime.NewHub(zap.NewNop())
	logger := zap.NewNop()

	return service.NewQuoteService(db, quoteRepo, customerRepo, sequenceRepo, fileRepo, renderer, store, hub, logger)
}

func TestFormatQuoteNumber(t *testing.T) {
	assert.Equal(t, "WM000001", service.FormatQuoteNumber(1))
	assert.Equal(t, "WM000045", service.FormatQuoteNumber(45))
	assert.Equal(t, "WM123456", service.FormatQuoteNumber(123456))
}

func TestQuoteService_Create(t *testing.T) {
	db := setupQuoteServiceTestDB(t)
	svc := createQuoteService(t, db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Quote Customer")

	validUntil := time.Now().Add(14 * 24 * time.Hour)
	req := &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Discount:   500,
		ValidUntil: &validUntil,
		Items: []domain.CreateQuoteItemRequest{
			{Description: "Hot rolled coil", Material: "steel", Quantity: 10, UnitPrice: 800},
			{Description: "Copper cathode", Material: "copper", Quantity: 2, Unit: "ton", UnitPrice: 9000},
		},
	}

	quote, err := svc.Create(ctx, req)
	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Equal(t, 26000.0, quote.Subtotal)
	assert.Equal(t, 25500.0, quote.Total)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, 8000.0, quote.Items[0].LineTotal)
	// Missing unit falls back to tons
	assert.Equal(t, "ton", quote.Items[0].Unit)
}

func TestQuoteService_Create_SequentialNumbers(t *testing.T) {
	db := setupQuoteServiceTestDB(t)
	svc := createQuoteService(t, db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Sequence Customer")

	first, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Items:      []domain.CreateQuoteItemRequest{{Description: "Item", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Items:      []domain.CreateQuoteItemRequest{{Description: "Item", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	assert.Equal(t, "WM000001", first.Number)
	assert.Equal(t, "WM000002", second.Number)
}

func TestQuoteService_Create_TotalMismatch(t *testing.T) {
	db := setupQuoteServiceTestDB(t)
	svc := createQuoteService(t, db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Mismatch Customer")

	wrongTotal := 999.0
	_, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Total:      &wrongTotal,
		Items:      []domain.CreateQuoteItemRequest{{Description: "Item", Quantity: 1, UnitPrice: 100}},
	})
	assert.ErrorIs(t, err, service.ErrTotalMismatch)

	// A total within rounding tolerance is accepted
	closeTotal := 100.004
	quote, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Total:      &closeTotal,
		Items:      []domain.CreateQuoteItemRequest{{Description: "Item", Quantity: 1, UnitPrice: 100}},
	})
	assert.NoError(t, err)
	assert.Equal(t, 100.0, quote.Total)
}

func TestQuoteService_UpdateStatus(t *testing.T) {
	db := setupQuoteServiceTestDB(t)
	svc := createQuoteService(t, db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "Status Customer")

	quote, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Items:      []domain.CreateQuoteItemRequest{{Description: "Item", Quantity: 1, UnitPrice: 100}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, quote.ID, domain.QuoteStatusSent)
	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, updated.Status)

	reloaded, err := svc.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, reloaded.Status)
}

func TestQuoteService_RenderPDF(t *testing.T) {
	db := setupQuoteServiceTestDB(t)
	svc := createQuoteService(t, db)
	ctx := context.Background()
	customer := testutil.CreateTestCustomer(t, db, "PDF Customer")

	quote, err := svc.Create(ctx, &domain.CreateQuoteRequest{
		CustomerID: customer.ID,
		Notes:      "FOB Santos",
		Items:      []domain.CreateQuoteItemRequest{{Description: "Scrap bundle", Quantity: 25, UnitPrice: 320}},
	})
	require.NoError(t, err)

	data, rendered, err := svc.RenderPDF(ctx, quote.ID)
	assert.NoError(t, err)
	assert.Equal(t, quote.ID, rendered.ID)
	assert.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))

	// The rendered document is archived with a file record
	var files []domain.UploadedFile
	require.NoError(t, db.Where("entity_id = ?", quote.ID).Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, "quote-pdf", files[0].Purpose)
	assert.Equal(t, quote.Number+".pdf", files[0].FileName)
}
