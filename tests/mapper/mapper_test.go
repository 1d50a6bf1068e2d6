package mapper_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/mapper"
)

func TestToCustomerDTO(t *testing.T) {
	created := time.Date(2026, 3, 15, 10, 30, 0, 0, time.FixedZone("BRT", -3*3600))
	customer := &domain.Customer{
		BaseModel: domain.BaseModel{
			ID:        uuid.New(),
			CreatedAt: created,
			UpdatedAt: created,
		},
		Name:         "Metais Unidos",
		Status:       domain.CustomerStatusQualified,
		Segment:      domain.CustomerSegmentAluminum,
		QualityScore: 65,
	}

	dto := mapper.ToCustomerDTO(customer)
	assert.Equal(t, customer.ID, dto.ID)
	assert.Equal(t, "Metais Unidos", dto.Name)
	assert.Equal(t, domain.CustomerStatusQualified, dto.Status)
	assert.Equal(t, 65, dto.QualityScore)
	// Timestamps are rendered in UTC
	assert.Equal(t, "2026-03-15T13:30:00Z", dto.CreatedAt)
}

func TestToDealDTO_CustomerName(t *testing.T) {
	deal := &domain.Deal{
		Title:      "Named deal",
		CustomerID: uuid.New(),
	}

	dto := mapper.ToDealDTO(deal)
	assert.Empty(t, dto.CustomerName)

	deal.Customer = &domain.Customer{Name: "Preloaded Inc"}
	dto = mapper.ToDealDTO(deal)
	assert.Equal(t, "Preloaded Inc", dto.CustomerName)
}

func TestToQuoteDTO_Items(t *testing.T) {
	quote := &domain.Quote{
		Number:   "WM000007",
		Status:   domain.QuoteStatusSent,
		Subtotal: 1000,
		Total:    1000,
		Items: []domain.QuoteItem{
			{Description: "Billets", Quantity: 5, Unit: "ton", UnitPrice: 200, LineTotal: 1000},
		},
	}

	dto := mapper.ToQuoteDTO(quote)
	assert.Equal(t, "WM000007", dto.Number)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "Billets", dto.Items[0].Description)
	assert.Equal(t, 1000.0, dto.Items[0].LineTotal)
}

func TestToNotificationDTO_ReadAt(t *testing.T) {
	readAt := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	notification := &domain.Notification{
		Type:   domain.NotificationTypeInfo,
		Title:  "Read one",
		Read:   true,
		ReadAt: &readAt,
	}

	dto := mapper.ToNotificationDTO(notification)
	assert.True(t, dto.Read)
	require.NotNil(t, dto.ReadAt)
	assert.Equal(t, "2026-01-02T08:00:00Z", *dto.ReadAt)

	dto = mapper.ToNotificationDTO(&domain.Notification{Title: "Unread"})
	assert.Nil(t, dto.ReadAt)
}

func TestPaginate(t *testing.T) {
	t.Run("rounds total pages up", func(t *testing.T) {
		response := mapper.Paginate([]string{"a"}, 1, 20, 41)
		assert.Equal(t, 3, response.TotalPages)
		assert.Equal(t, int64(41), response.Total)
		assert.Equal(t, 1, response.Page)
		assert.Equal(t, 20, response.PageSize)
	})

	t.Run("exact fit", func(t *testing.T) {
		response := mapper.Paginate([]string{}, 2, 10, 40)
		assert.Equal(t, 4, response.TotalPages)
	})

	t.Run("empty result", func(t *testing.T) {
		response := mapper.Paginate([]string{}, 1, 20, 0)
		assert.Equal(t, 0, response.TotalPages)
	})
}
