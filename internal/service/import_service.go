package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const importPurpose = "transaction-import"

// ImportService parses uploaded CSV spreadsheets into ledger
// transactions. The raw upload is kept in storage so a bad import can
// be audited afterwards. Rows that fail to parse are skipped and
// reported; they never abort the rest of the file.
type ImportService struct {
	db              *gorm.DB
	transactionRepo *repository.TransactionRepository
	fileRepo        *repository.FileRepository
	store           storage.Storage
	hub             *realtime.Hub
	logger          *zap.Logger
}

func NewImportService(
	db *gorm.DB,
	transactionRepo *repository.TransactionRepository,
	fileRepo *repository.FileRepository,
	store storage.Storage,
	hub *realtime.Hub,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		db:              db,
		transactionRepo: transactionRepo,
		fileRepo:        fileRepo,
		store:           store,
		hub:             hub,
		logger:          logger,
	}
}

// ImportTransactions reads a CSV upload, stores the raw file and
// inserts one transaction per valid row. Expected columns:
// description, type, category, amount, date and optionally status.
// Header names are matched case-insensitively in any order.
func (s *ImportService) ImportTransactions(ctx context.Context, fileName, contentType string, data io.Reader, uploadedBy *uuid.UUID) (*domain.ImportResultDTO, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	storagePath, size, err := s.store.Upload(ctx, fileName, contentType, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	file := &domain.UploadedFile{
		FileName:    fileName,
		ContentType: contentType,
		StoragePath: storagePath,
		SizeBytes:   size,
		Purpose:     importPurpose,
		UploadedBy:  uploadedBy,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	result := &domain.ImportResultDTO{FileID: file.ID}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	columns := mapColumns(header)
	for _, required := range []string{"description", "type", "amount", "date"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var transactions []domain.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.RowsParsed++

		transaction, err := parseRow(record, columns)
		if err != nil {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		transactions = append(transactions, *transaction)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range transactions {
			if err := tx.Create(&transactions[i]).Error; err != nil {
				return fmt.Errorf("failed to insert row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, t := range transactions {
		result.RowsImported++
		switch t.Type {
		case domain.TransactionTypeReceita:
			result.TotalReceitas += t.Amount
		case domain.TransactionTypeDespesa:
			result.TotalDespesas += t.Amount
		}
	}

	s.logger.Info("transactions imported",
		zap.String("file_id", file.ID.String()),
		zap.Int("imported", result.RowsImported),
		zap.Int("skipped", result.RowsSkipped),
	)

	if result.RowsImported > 0 {
		s.hub.Publish(realtime.Event{Table: "transactions", Op: realtime.OpInsert})
	}

	return result, nil
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func parseRow(record []string, columns map[string]int) (*domain.Transaction, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	description := field("description")
	if description == "" {
		return nil, fmt.Errorf("empty description")
	}

	transactionType := domain.TransactionType(strings.ToLower(field("type")))
	if transactionType != domain.TransactionTypeReceita && transactionType != domain.TransactionTypeDespesa {
		return nil, fmt.Errorf("unknown type %q", field("type"))
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(field("amount"), ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", field("amount"))
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %.2f", amount)
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return nil, err
	}

	status := domain.TransactionStatus(strings.ToLower(field("status")))
	if status == "" {
		status = domain.TransactionStatusPending
	}
	if status != domain.TransactionStatusPaid && status != domain.TransactionStatusPending {
		return nil, fmt.Errorf("unknown status %q", field("status"))
	}

	transaction := &domain.Transaction{
		Description: description,
		Type:        transactionType,
		Status:      status,
		Category:    field("category"),
		Amount:      amount,
		Date:        date,
	}
	if status == domain.TransactionStatusPaid {
		paidAt := date
		transaction.PaidAt = &paidAt
	}
	return transaction, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", time.RFC3339}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
