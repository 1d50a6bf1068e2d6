// Package mapper converts database models to response DTOs.
// Timestamps are rendered as UTC ISO 8601 strings.
package mapper

import (
	"time"

	"github.com/wm-metals/trade-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:            c.ID,
		Name:          c.Name,
		Document:      c.Document,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		PostalCode:    c.PostalCode,
		ContactPerson: c.ContactPerson,
		Status:        c.Status,
		Segment:       c.Segment,
		QualityScore:  c.QualityScore,
		Notes:         c.Notes,
		CreatedAt:     formatTime(c.CreatedAt),
		UpdatedAt:     formatTime(c.UpdatedAt),
	}
}

func ToCustomerDTOs(customers []domain.Customer) []domain.CustomerDTO {
	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = ToCustomerDTO(&customers[i])
	}
	return dtos
}

func ToOpportunityDTO(o *domain.Opportunity) domain.OpportunityDTO {
	dto := domain.OpportunityDTO{
		ID:                o.ID,
		Title:             o.Title,
		Description:       o.Description,
		Stage:             o.Stage,
		EstimatedValue:    o.EstimatedValue,
		Probability:       o.Probability,
		ExpectedCloseDate: formatTimePtr(o.ExpectedCloseDate),
		CustomerID:        o.CustomerID,
		OwnerID:           o.OwnerID,
		CreatedAt:         formatTime(o.CreatedAt),
		UpdatedAt:         formatTime(o.UpdatedAt),
	}
	if o.Customer != nil {
		dto.CustomerName = o.Customer.Name
	}
	return dto
}

func ToOpportunityDTOs(opportunities []domain.Opportunity) []domain.OpportunityDTO {
	dtos := make([]domain.OpportunityDTO, len(opportunities))
	for i := range opportunities {
		dtos[i] = ToOpportunityDTO(&opportunities[i])
	}
	return dtos
}

func ToDealDTO(d *domain.Deal) domain.DealDTO {
	dto := domain.DealDTO{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Status:         d.Status,
		EstimatedValue: d.EstimatedValue,
		ActualValue:    d.ActualValue,
		Material:       d.Material,
		QuantityTons:   d.QuantityTons,
		LostReason:     d.LostReason,
		ClosedAt:       formatTimePtr(d.ClosedAt),
		CustomerID:     d.CustomerID,
		OpportunityID:  d.OpportunityID,
		OwnerID:        d.OwnerID,
		CreatedAt:      formatTime(d.CreatedAt),
		UpdatedAt:      formatTime(d.UpdatedAt),
	}
	if d.Customer != nil {
		dto.CustomerName = d.Customer.Name
	}
	return dto
}

func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = ToDealDTO(&deals[i])
	}
	return dtos
}

func ToTransactionDTO(t *domain.Transaction) domain.TransactionDTO {
	dto := domain.TransactionDTO{
		ID:          t.ID,
		Description: t.Description,
		Type:        t.Type,
		Status:      t.Status,
		Category:    t.Category,
		Amount:      t.Amount,
		Date:        formatTime(t.Date),
		PaidAt:      formatTimePtr(t.PaidAt),
		DealID:      t.DealID,
		CustomerID:  t.CustomerID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Customer != nil {
		dto.CustomerName = t.Customer.Name
	}
	return dto
}

func ToTransactionDTOs(transactions []domain.Transaction) []domain.TransactionDTO {
	dtos := make([]domain.TransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = ToTransactionDTO(&transactions[i])
	}
	return dtos
}

func ToQuoteDTO(q *domain.Quote) domain.QuoteDTO {
	dto := domain.QuoteDTO{
		ID:         q.ID,
		Number:     q.Number,
		Status:     q.Status,
		CustomerID: q.CustomerID,
		DealID:     q.DealID,
		Subtotal:   q.Subtotal,
		Discount:   q.Discount,
		Total:      q.Total,
		ValidUntil: formatTimePtr(q.ValidUntil),
		Notes:      q.Notes,
		CreatedAt:  formatTime(q.CreatedAt),
		UpdatedAt:  formatTime(q.UpdatedAt),
	}
	if q.Customer != nil {
		dto.CustomerName = q.Customer.Name
	}
	if len(q.Items) > 0 {
		dto.Items = make([]domain.QuoteItemDTO, len(q.Items))
		for i, item := range q.Items {
			dto.Items[i] = domain.QuoteItemDTO{
				ID:          item.ID,
				Description: item.Description,
				Material:    item.Material,
				Quantity:    item.Quantity,
				Unit:        item.Unit,
				UnitPrice:   item.UnitPrice,
				LineTotal:   item.LineTotal,
			}
		}
	}
	return dto
}

func ToQuoteDTOs(quotes []domain.Quote) []domain.QuoteDTO {
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = ToQuoteDTO(&quotes[i])
	}
	return dtos
}

func ToTaskDTO(t *domain.Task) domain.TaskDTO {
	dto := domain.TaskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     formatTimePtr(t.DueDate),
		CompletedAt: formatTimePtr(t.CompletedAt),
		CustomerID:  t.CustomerID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if t.Customer != nil {
		dto.CustomerName = t.Customer.Name
	}
	return dto
}

func ToTaskDTOs(tasks []domain.Task) []domain.TaskDTO {
	dtos := make([]domain.TaskDTO, len(tasks))
	for i := range tasks {
		dtos[i] = ToTaskDTO(&tasks[i])
	}
	return dtos
}

func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         n.ID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		Read:       n.Read,
		ReadAt:     formatTimePtr(n.ReadAt),
		EntityID:   n.EntityID,
		EntityType: n.EntityType,
		CreatedAt:  formatTime(n.CreatedAt),
	}
}

func ToNotificationDTOs(notifications []domain.Notification) []domain.NotificationDTO {
	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = ToNotificationDTO(&notifications[i])
	}
	return dtos
}

// Paginate wraps a mapped list with paging metadata
func Paginate(data interface{}, page, pageSize int, total int64) domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return domain.PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
