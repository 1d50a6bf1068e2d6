package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/internal/storage"
	"github.com/wm-metals/trade-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupImportServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createImportService(t *testing.T, db *gorm.DB) *service.ImportService {
	transactionRepo := repository.NewTransactionRepository(db)
	fileRepo := repository.NewFileRepository(db)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	hub := realtime.NewHub(zap.NewNop())
	logger := zap.NewNop()

	return service.NewImportService(db, transactionRepo, fileRepo, store, hub, logger)
}

func TestImportService_ImportTransactions(t *testing.T) {
	db := setupImportServiceTestDB(t)
	svc := createImportService(t, db)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"description,type,category,amount,date,status",
		"Sale of rebar,receita,sales,1500.50,2026-01-15,paid",
		"Freight to port,despesa,logistics,\"300,25\",15/01/2026,",
		"Copper cathodes,receita,sales,9000,2026-01-20,pending",
	}, "\n")

	result, err := svc.ImportTransactions(ctx, "january.csv", "text/csv", strings.NewReader(csvData), nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.RowsParsed)
	assert.Equal(t, 3, result.RowsImported)
	assert.Equal(t, 0, result.RowsSkipped)
	assert.Empty(t, result.Errors)
	assert.InDelta(t, 10500.50, result.TotalReceitas, 0.001)
	assert.InDelta(t, 300.25, result.TotalDespesas, 0.001)

	var transactions []domain.Transaction
	require.NoError(t, db.Order("amount").Find(&transactions).Error)
	require.Len(t, transactions, 3)

	// A paid row carries its date as the payment date
	var paid domain.Transaction
	require.NoError(t, db.Where("status = ?", domain.TransactionStatusPaid).First(&paid).Error)
	assert.NotNil(t, paid.PaidAt)

	// The raw upload is archived
	var files []domain.UploadedFile
	require.NoError(t, db.Where("purpose = ?", "transaction-import").Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, "january.csv", files[0].FileName)
	assert.Equal(t, files[0].ID, result.FileID)
}

func TestImportService_ImportTransactions_SkipsBadRows(t *testing.T) {
	db := setupImportServiceTestDB(t)
	svc := createImportService(t, db)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"description,type,category,amount,date",
		"Good row,receita,sales,100,2026-02-01",
		",receita,sales,100,2026-02-01",
		"Bad type,transfer,sales,100,2026-02-01",
		"Bad amount,despesa,sales,abc,2026-02-01",
		"Negative,despesa,sales,-5,2026-02-01",
		"Bad date,despesa,sales,100,February 1st",
	}, "\n")

	result, err := svc.ImportTransactions(ctx, "messy.csv", "text/csv", strings.NewReader(csvData), nil)
	assert.NoError(t, err)
	assert.Equal(t, 6, result.RowsParsed)
	assert.Equal(t, 1, result.RowsImported)
	assert.Equal(t, 5, result.RowsSkipped)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "line 3")

	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestImportService_ImportTransactions_MissingColumn(t *testing.T) {
	db := setupImportServiceTestDB(t)
	svc := createImportService(t, db)
	ctx := context.Background()

	csvData := "description,category,amount,date\nNo type column,sales,100,2026-02-01\n"

	_, err := svc.ImportTransactions(ctx, "broken.csv", "text/csv", strings.NewReader(csvData), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}
