package domain

import (
	"time"

	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are serialized as ISO 8601 strings.

type CustomerDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Document      string          `json:"document,omitempty"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	State         string          `json:"state,omitempty"`
	PostalCode    string          `json:"postalCode,omitempty"`
	ContactPerson string          `json:"contactPerson,omitempty"`
	Status        CustomerStatus  `json:"status"`
	Segment       CustomerSegment `json:"segment,omitempty"`
	QualityScore  int             `json:"qualityScore"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

type OpportunityDTO struct {
	ID                uuid.UUID        `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description,omitempty"`
	Stage             OpportunityStage `json:"stage"`
	EstimatedValue    float64          `json:"estimatedValue"`
	Probability       int              `json:"probability"`
	ExpectedCloseDate *string          `json:"expectedCloseDate,omitempty"`
	CustomerID        uuid.UUID        `json:"customerId"`
	CustomerName      string           `json:"customerName,omitempty"`
	OwnerID           *uuid.UUID       `json:"ownerId,omitempty"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
}

type DealDTO struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         DealStatus `json:"status"`
	EstimatedValue float64    `json:"estimatedValue"`
	ActualValue    *float64   `json:"actualValue,omitempty"`
	Material       string     `json:"material,omitempty"`
	QuantityTons   float64    `json:"quantityTons"`
	LostReason     string     `json:"lostReason,omitempty"`
	ClosedAt       *string    `json:"closedAt,omitempty"`
	CustomerID     uuid.UUID  `json:"customerId"`
	CustomerName   string     `json:"customerName,omitempty"`
	OpportunityID  *uuid.UUID `json:"opportunityId,omitempty"`
	OwnerID        *uuid.UUID `json:"ownerId,omitempty"`
	CreatedAt      string     `json:"createdAt"`
	UpdatedAt      string     `json:"updatedAt"`
}

// DealKanbanDTO groups deals by status for the board view
type DealKanbanDTO struct {
	Columns []DealKanbanColumnDTO `json:"columns"`
}

type DealKanbanColumnDTO struct {
	Status     DealStatus `json:"status"`
	Count      int        `json:"count"`
	TotalValue float64    `json:"totalValue"`
	Deals      []DealDTO  `json:"deals"`
}

type TransactionDTO struct {
	ID           uuid.UUID         `json:"id"`
	Description  string            `json:"description"`
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	Category     string            `json:"category,omitempty"`
	Amount       float64           `json:"amount"`
	Date         string            `json:"date"`
	PaidAt       *string           `json:"paidAt,omitempty"`
	DealID       *uuid.UUID        `json:"dealId,omitempty"`
	CustomerID   *uuid.UUID        `json:"customerId,omitempty"`
	CustomerName string            `json:"customerName,omitempty"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
}

type QuoteDTO struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	Status       QuoteStatus    `json:"status"`
	CustomerID   uuid.UUID      `json:"customerId"`
	CustomerName string         `json:"customerName,omitempty"`
	DealID       *uuid.UUID     `json:"dealId,omitempty"`
	Subtotal     float64        `json:"subtotal"`
	Discount     float64        `json:"discount"`
	Total        float64        `json:"total"`
	ValidUntil   *string        `json:"validUntil,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Items        []QuoteItemDTO `json:"items,omitempty"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Material    string    `json:"material,omitempty"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	UnitPrice   float64   `json:"unitPrice"`
	LineTotal   float64   `json:"lineTotal"`
}

type TaskDTO struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	DueDate      *string      `json:"dueDate,omitempty"`
	CompletedAt  *string      `json:"completedAt,omitempty"`
	CustomerID   *uuid.UUID   `json:"customerId,omitempty"`
	CustomerName string       `json:"customerName,omitempty"`
	AssigneeID   *uuid.UUID   `json:"assigneeId,omitempty"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

type NotificationDTO struct {
	ID         uuid.UUID        `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message,omitempty"`
	Read       bool             `json:"read"`
	ReadAt     *string          `json:"readAt,omitempty"`
	EntityID   *uuid.UUID       `json:"entityId,omitempty"`
	EntityType string           `json:"entityType,omitempty"`
	CreatedAt  string           `json:"createdAt"`
}

// FinancialSummaryDTO aggregates the ledger over a resolved date range
type FinancialSummaryDTO struct {
	RangeFrom       string             `json:"rangeFrom"`
	RangeTo         string             `json:"rangeTo"`
	TotalReceitas   float64            `json:"totalReceitas"`
	TotalDespesas   float64            `json:"totalDespesas"`
	NetResult       float64            `json:"netResult"`
	PaidReceitas    float64            `json:"paidReceitas"`
	PendingReceitas float64            `json:"pendingReceitas"`
	PaidDespesas    float64            `json:"paidDespesas"`
	PendingDespesas float64            `json:"pendingDespesas"`
	ByCategory      []CategoryTotalDTO `json:"byCategory"`
}

type CategoryTotalDTO struct {
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
	Total    float64         `json:"total"`
	Count    int             `json:"count"`
}

// SalesAnalyticsDTO aggregates the pipeline over a resolved date range
type SalesAnalyticsDTO struct {
	RangeFrom      string              `json:"rangeFrom"`
	RangeTo        string              `json:"rangeTo"`
	TotalDeals     int                 `json:"totalDeals"`
	WonDeals       int                 `json:"wonDeals"`
	LostDeals      int                 `json:"lostDeals"`
	OpenDeals      int                 `json:"openDeals"`
	WonValue       float64             `json:"wonValue"`
	PipelineValue  float64             `json:"pipelineValue"`
	ConversionRate float64             `json:"conversionRate"`
	ByStage        []StageBreakdownDTO `json:"byStage"`
	FunnelStages   []FunnelStageDTO    `json:"funnelStages"`
}

type StageBreakdownDTO struct {
	Status     DealStatus `json:"status"`
	Count      int        `json:"count"`
	TotalValue float64    `json:"totalValue"`
}

type FunnelStageDTO struct {
	Stage      OpportunityStage `json:"stage"`
	Count      int              `json:"count"`
	TotalValue float64          `json:"totalValue"`
}

// ImportResultDTO reports the outcome of a spreadsheet import
type ImportResultDTO struct {
	FileID        uuid.UUID `json:"fileId"`
	RowsParsed    int       `json:"rowsParsed"`
	RowsImported  int       `json:"rowsImported"`
	RowsSkipped   int       `json:"rowsSkipped"`
	TotalReceitas float64   `json:"totalReceitas"`
	TotalDespesas float64   `json:"totalDespesas"`
	Errors        []string  `json:"errors,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps a list payload with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

// Request payloads

type CreateCustomerRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Document      string `json:"document" validate:"omitempty,max=32"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	City          string `json:"city" validate:"omitempty,max=100"`
	State         string `json:"state" validate:"omitempty,max=100"`
	PostalCode    string `json:"postalCode" validate:"omitempty,max=20"`
	ContactPerson string `json:"contactPerson" validate:"omitempty,max=200"`
	Segment       string `json:"segment" validate:"omitempty,oneof=steel aluminum copper scrap alloys wholesale other"`
	Notes         string `json:"notes"`
}

type UpdateCustomerRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=200"`
	Document      *string `json:"document" validate:"omitempty,max=32"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Address       *string `json:"address" validate:"omitempty,max=500"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	State         *string `json:"state" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postalCode" validate:"omitempty,max=20"`
	ContactPerson *string `json:"contactPerson" validate:"omitempty,max=200"`
	Status        *string `json:"status" validate:"omitempty,oneof=prospect qualified negotiating customer inactive"`
	Segment       *string `json:"segment" validate:"omitempty,oneof=steel aluminum copper scrap alloys wholesale other"`
	Notes         *string `json:"notes"`
}

type CreateOpportunityRequest struct {
	Title             string     `json:"title" validate:"required,max=200"`
	Description       string     `json:"description"`
	EstimatedValue    float64    `json:"estimatedValue" validate:"gte=0"`
	Probability       int        `json:"probability" validate:"gte=0,lte=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
	CustomerID        uuid.UUID  `json:"customerId" validate:"required"`
}

type UpdateOpportunityRequest struct {
	Title             *string    `json:"title" validate:"omitempty,max=200"`
	Description       *string    `json:"description"`
	Stage             *string    `json:"stage" validate:"omitempty,oneof=prospecting qualification proposal negotiation won lost"`
	EstimatedValue    *float64   `json:"estimatedValue" validate:"omitempty,gte=0"`
	Probability       *int       `json:"probability" validate:"omitempty,gte=0,lte=100"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

type CreateDealRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	Description    string     `json:"description"`
	EstimatedValue float64    `json:"estimatedValue" validate:"gte=0"`
	Material       string     `json:"material" validate:"omitempty,max=100"`
	QuantityTons   float64    `json:"quantityTons" validate:"gte=0"`
	CustomerID     uuid.UUID  `json:"customerId" validate:"required"`
	OpportunityID  *uuid.UUID `json:"opportunityId"`
}

type UpdateDealRequest struct {
	Title          *string  `json:"title" validate:"omitempty,max=200"`
	Description    *string  `json:"description"`
	EstimatedValue *float64 `json:"estimatedValue" validate:"omitempty,gte=0"`
	Material       *string  `json:"material" validate:"omitempty,max=100"`
	QuantityTons   *float64 `json:"quantityTons" validate:"omitempty,gte=0"`
}

type CloseDealWonRequest struct {
	ActualValue float64 `json:"actualValue" validate:"required,gt=0"`
}

type CloseDealLostRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type CreateTransactionRequest struct {
	Description string     `json:"description" validate:"required,max=500"`
	Type        string     `json:"type" validate:"required,oneof=receita despesa"`
	Status      string     `json:"status" validate:"omitempty,oneof=paid pending"`
	Category    string     `json:"category" validate:"omitempty,max=100"`
	Amount      float64    `json:"amount" validate:"required,gt=0"`
	Date        time.Time  `json:"date" validate:"required"`
	DealID      *uuid.UUID `json:"dealId"`
	CustomerID  *uuid.UUID `json:"customerId"`
}

type UpdateTransactionRequest struct {
	Description *string    `json:"description" validate:"omitempty,max=500"`
	Status      *string    `json:"status" validate:"omitempty,oneof=paid pending"`
	Category    *string    `json:"category" validate:"omitempty,max=100"`
	Amount      *float64   `json:"amount" validate:"omitempty,gt=0"`
	Date        *time.Time `json:"date"`
}

type CreateQuoteRequest struct {
	CustomerID uuid.UUID                `json:"customerId" validate:"required"`
	DealID     *uuid.UUID               `json:"dealId"`
	Discount   float64                  `json:"discount" validate:"gte=0"`
	Total      *float64                 `json:"total"`
	ValidUntil *time.Time               `json:"validUntil"`
	Notes      string                   `json:"notes"`
	Items      []CreateQuoteItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CreateQuoteItemRequest struct {
	Description string  `json:"description" validate:"required,max=500"`
	Material    string  `json:"material" validate:"omitempty,max=100"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	Unit        string  `json:"unit" validate:"omitempty,max=20"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	CustomerID  *uuid.UUID `json:"customerId"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" validate:"omitempty,oneof=open done"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
}
