package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// CustomerStatus represents a customer's position in the relationship lifecycle
type CustomerStatus string

const (
	CustomerStatusProspect    CustomerStatus = "prospect"
	CustomerStatusQualified   CustomerStatus = "qualified"
	CustomerStatusNegotiating CustomerStatus = "negotiating"
	CustomerStatusCustomer    CustomerStatus = "customer"
	CustomerStatusInactive    CustomerStatus = "inactive"
)

// ValidCustomerTransitions maps each lifecycle status to the statuses it may move to.
// Inactive customers can be reactivated back to customer.
var ValidCustomerTransitions = map[CustomerStatus][]CustomerStatus{
	CustomerStatusProspect:    {CustomerStatusQualified, CustomerStatusInactive},
	CustomerStatusQualified:   {CustomerStatusNegotiating, CustomerStatusInactive},
	CustomerStatusNegotiating: {CustomerStatusCustomer, CustomerStatusQualified, CustomerStatusInactive},
	CustomerStatusCustomer:    {CustomerStatusInactive},
	CustomerStatusInactive:    {CustomerStatusCustomer, CustomerStatusProspect},
}

// CustomerSegment classifies customers by the material they trade in
type CustomerSegment string

const (
	CustomerSegmentSteel     CustomerSegment = "steel"
	CustomerSegmentAluminum  CustomerSegment = "aluminum"
	CustomerSegmentCopper    CustomerSegment = "copper"
	CustomerSegmentScrap     CustomerSegment = "scrap"
	CustomerSegmentAlloys    CustomerSegment = "alloys"
	CustomerSegmentWholesale CustomerSegment = "wholesale"
	CustomerSegmentOther     CustomerSegment = "other"
)

// Customer represents an organization in the CRM
type Customer struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Document      string          `gorm:"type:varchar(32);index"`
	Email         string          `gorm:"type:varchar(255)"`
	Phone         string          `gorm:"type:varchar(50)"`
	Address       string          `gorm:"type:varchar(500)"`
	City          string          `gorm:"type:varchar(100)"`
	State         string          `gorm:"type:varchar(100)"`
	PostalCode    string          `gorm:"type:varchar(20)"`
	ContactPerson string          `gorm:"type:varchar(200);column:contact_person"`
	Status        CustomerStatus  `gorm:"type:varchar(50);not null;default:'prospect';index"`
	Segment       CustomerSegment `gorm:"type:varchar(50);index"`
	QualityScore  int             `gorm:"not null;default:0;column:quality_score"`
	Notes         string          `gorm:"type:text"`
	Opportunities []Opportunity   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	Deals         []Deal          `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// OpportunityStage represents the position of an opportunity in the sales funnel
type OpportunityStage string

const (
	OpportunityStageProspecting   OpportunityStage = "prospecting"
	OpportunityStageQualification OpportunityStage = "qualification"
	OpportunityStageProposal      OpportunityStage = "proposal"
	OpportunityStageNegotiation   OpportunityStage = "negotiation"
	OpportunityStageWon           OpportunityStage = "won"
	OpportunityStageLost          OpportunityStage = "lost"
)

// IsClosed reports whether the opportunity has reached a terminal stage
func (s OpportunityStage) IsClosed() bool {
	return s == OpportunityStageWon || s == OpportunityStageLost
}

// Opportunity represents a potential sale tracked against a customer
type Opportunity struct {
	BaseModel
	Title             string           `gorm:"type:varchar(200);not null"`
	Description       string           `gorm:"type:text"`
	Stage             OpportunityStage `gorm:"type:varchar(50);not null;default:'prospecting';index"`
	EstimatedValue    float64          `gorm:"type:decimal(15,2);not null;default:0;column:estimated_value"`
	Probability       int              `gorm:"not null;default:0"`
	ExpectedCloseDate *time.Time       `gorm:"column:expected_close_date"`
	CustomerID        uuid.UUID        `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer          *Customer        `gorm:"foreignKey:CustomerID"`
	OwnerID           *uuid.UUID       `gorm:"type:uuid;column:owner_id;index"`
	Owner             *User            `gorm:"foreignKey:OwnerID"`
}

// DealStatus represents the status of a deal on the kanban board
type DealStatus string

const (
	DealStatusQualified DealStatus = "qualified"
	DealStatusWon       DealStatus = "won"
	DealStatusLost      DealStatus = "lost"
)

// Deal represents a qualified negotiation heading to close
type Deal struct {
	BaseModel
	Title          string     `gorm:"type:varchar(200);not null"`
	Description    string     `gorm:"type:text"`
	Status         DealStatus `gorm:"type:varchar(50);not null;default:'qualified';index"`
	EstimatedValue float64    `gorm:"type:decimal(15,2);not null;default:0;column:estimated_value"`
	ActualValue    *float64   `gorm:"type:decimal(15,2);column:actual_value"`
	Material       string     `gorm:"type:varchar(100)"`
	QuantityTons   float64    `gorm:"type:decimal(12,3);not null;default:0;column:quantity_tons"`
	LostReason     string     `gorm:"type:varchar(500);column:lost_reason"`
	ClosedAt       *time.Time `gorm:"column:closed_at"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer       *Customer  `gorm:"foreignKey:CustomerID"`
	OpportunityID  *uuid.UUID `gorm:"type:uuid;column:opportunity_id;index"`
	Opportunity    *Opportunity `gorm:"foreignKey:OpportunityID"`
	OwnerID        *uuid.UUID `gorm:"type:uuid;column:owner_id;index"`
	Owner          *User      `gorm:"foreignKey:OwnerID"`
}

// TransactionType distinguishes money in from money out
type TransactionType string

const (
	TransactionTypeReceita TransactionType = "receita"
	TransactionTypeDespesa TransactionType = "despesa"
)

// TransactionStatus represents the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusPending TransactionStatus = "pending"
)

// Transaction represents a ledger entry, optionally linked to the deal that produced it
type Transaction struct {
	BaseModel
	Description string            `gorm:"type:varchar(500);not null"`
	Type        TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status      TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Category    string            `gorm:"type:varchar(100);index"`
	Amount      float64           `gorm:"type:decimal(15,2);not null"`
	Date        time.Time         `gorm:"not null;index"`
	PaidAt      *time.Time        `gorm:"column:paid_at"`
	DealID      *uuid.UUID        `gorm:"type:uuid;column:deal_id;index"`
	Deal        *Deal             `gorm:"foreignKey:DealID"`
	CustomerID  *uuid.UUID        `gorm:"type:uuid;column:customer_id;index"`
	Customer    *Customer         `gorm:"foreignKey:CustomerID"`
}

// QuoteStatus represents the lifecycle of a quote document
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Quote represents a priced offer document with line items
type Quote struct {
	BaseModel
	Number     string      `gorm:"type:varchar(20);not null;uniqueIndex"`
	Status     QuoteStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	CustomerID uuid.UUID   `gorm:"type:uuid;not null;index;column:customer_id"`
	Customer   *Customer   `gorm:"foreignKey:CustomerID"`
	DealID     *uuid.UUID  `gorm:"type:uuid;column:deal_id;index"`
	Deal       *Deal       `gorm:"foreignKey:DealID"`
	Subtotal   float64     `gorm:"type:decimal(15,2);not null;default:0"`
	Discount   float64     `gorm:"type:decimal(15,2);not null;default:0"`
	Total      float64     `gorm:"type:decimal(15,2);not null;default:0"`
	ValidUntil *time.Time  `gorm:"column:valid_until"`
	Notes      string      `gorm:"type:text"`
	Items      []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteItem is a single priced line on a quote
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Material    string    `gorm:"type:varchar(100)"`
	Quantity    float64   `gorm:"type:decimal(12,3);not null;default:1"`
	Unit        string    `gorm:"type:varchar(20);not null;default:'ton'"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_price"`
	LineTotal   float64   `gorm:"type:decimal(15,2);not null;default:0;column:line_total"`
}

// TaskStatus represents whether a task is still open
type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a follow-up item, optionally linked to a customer
type Task struct {
	BaseModel
	Title       string       `gorm:"type:varchar(200);not null"`
	Description string       `gorm:"type:text"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium';index"`
	DueDate     *time.Time   `gorm:"column:due_date;index"`
	CompletedAt *time.Time   `gorm:"column:completed_at"`
	CustomerID  *uuid.UUID   `gorm:"type:uuid;column:customer_id;index"`
	Customer    *Customer    `gorm:"foreignKey:CustomerID"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;column:assignee_id;index"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID"`
}

// NotificationType represents the visual category of a notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeSuccess NotificationType = "success"
)

// Notification represents an in-app message for a single user
type Notification struct {
	BaseModel
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index;column:user_id"`
	Type       NotificationType `gorm:"type:varchar(20);not null;default:'info'"`
	Title      string           `gorm:"type:varchar(200);not null"`
	Message    string           `gorm:"type:text"`
	Read       bool             `gorm:"not null;default:false;index"`
	ReadAt     *time.Time       `gorm:"column:read_at"`
	EntityID   *uuid.UUID       `gorm:"type:uuid;column:entity_id"`
	EntityType string           `gorm:"type:varchar(50);column:entity_type"`
}

// User represents an authenticated dashboard user
type User struct {
	BaseModel
	DisplayName string `gorm:"type:varchar(200);not null;column:display_name"`
	Email       string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role        string `gorm:"type:varchar(50);not null;default:'sales'"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active"`
}

// NumberSequence tracks the last allocated number per document type.
// Quote numbers are allocated from the "quote" sequence and formatted WM%06d.
type NumberSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EntityType string    `gorm:"type:varchar(50);not null;uniqueIndex;column:entity_type"`
	LastNumber int       `gorm:"not null;default:0;column:last_number"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// UploadedFile records a stored upload (spreadsheet imports, rendered quote PDFs)
type UploadedFile struct {
	BaseModel
	FileName    string     `gorm:"type:varchar(255);not null;column:file_name"`
	ContentType string     `gorm:"type:varchar(100);column:content_type"`
	StoragePath string     `gorm:"type:varchar(500);not null;column:storage_path"`
	SizeBytes   int64      `gorm:"not null;default:0;column:size_bytes"`
	Purpose     string     `gorm:"type:varchar(50);index"`
	EntityID    *uuid.UUID `gorm:"type:uuid;column:entity_id"`
	UploadedBy  *uuid.UUID `gorm:"type:uuid;column:uploaded_by"`
}
