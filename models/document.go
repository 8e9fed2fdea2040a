package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind separates the sales and purchase sides of the ledger.
type DocumentKind string

const (
	DocumentKindSalesOrder    DocumentKind = "sales_order"
	DocumentKindPurchaseOrder DocumentKind = "purchase_order"
)

// OrderType is a state variant of a document, not a separate entity.
type OrderType string

const (
	OrderTypeQuotation OrderType = "quotation"
	OrderTypeOrder     OrderType = "order"
	OrderTypeProforma  OrderType = "proforma"
	OrderTypeInvoice   OrderType = "invoice"
)

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusConfirmed DocumentStatus = "confirmed"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusCancelled DocumentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Document is a commercial record: sales/purchase order, quotation,
// proforma or invoice. Lines are immutable snapshots of item data at
// transaction time, never live references.
type Document struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_company_doc_number,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	DocumentNumber string         `gorm:"not null;uniqueIndex:idx_company_doc_number,priority:2"`
	Kind           DocumentKind   `gorm:"type:varchar(20);index;not null"`
	OrderType      OrderType      `gorm:"type:varchar(20);not null;default:'order'"`
	Status         DocumentStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	PartyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PartyName string    `gorm:"not null"`

	DocumentDate time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Totals aggregate. FinalTotal == round2(sum of line ItemAmount) + RoundOff.
	Subtotal      float64 `gorm:"type:decimal(12,2);not null"`
	TotalDiscount float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalCGST     float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalSGST     float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalIGST     float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalTax      float64 `gorm:"type:decimal(12,2);default:0.0"`
	RoundOff      float64 `gorm:"type:decimal(12,2);default:0.0"`
	FinalTotal    float64 `gorm:"type:decimal(12,2);not null"`

	// Payment sub-aggregate. PaidAmount + PendingAmount == FinalTotal,
	// with PendingAmount clamped at 0.
	PaymentMethod string        `gorm:"default:'cash'"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAmount    float64       `gorm:"type:decimal(12,2);default:0.0"`
	PendingAmount float64       `gorm:"type:decimal(12,2);default:0.0"`
	CreditDays    int           `gorm:"default:0"`
	DueDate       *time.Time

	ConvertedToInvoice  bool       `gorm:"default:false"`
	ConvertedDocumentID *uuid.UUID `gorm:"type:uuid"`

	Notes string

	Lines   []DocumentLine        `gorm:"foreignKey:DocumentID"`
	History []PaymentHistoryEntry `gorm:"foreignKey:DocumentID"`

	gorm.Model
}

func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// Mutable reports whether the document still accepts edits other than
// payment additions and cancellation.
func (d *Document) Mutable() bool {
	return !d.ConvertedToInvoice && d.Status != DocumentStatusCancelled
}

// DocumentLine is a priced line item snapshot.
type DocumentLine struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ItemID     *uuid.UUID `gorm:"type:uuid;index"`

	Name    string `gorm:"not null"`
	HSNCode string
	Unit    string

	Quantity        float64 `gorm:"type:decimal(12,2);not null"`
	UnitPrice       float64 `gorm:"type:decimal(12,2);not null"`
	DiscountPercent float64 `gorm:"type:decimal(5,2);default:0.0"`
	TaxInclusive    bool    `gorm:"default:false"`

	CGSTRate float64 `gorm:"type:decimal(5,2);default:0.0"`
	SGSTRate float64 `gorm:"type:decimal(5,2);default:0.0"`
	IGSTRate float64 `gorm:"type:decimal(5,2);default:0.0"`

	BaseAmount     float64 `gorm:"type:decimal(12,2);not null"`
	DiscountAmount float64 `gorm:"type:decimal(12,2);default:0.0"`
	TaxableAmount  float64 `gorm:"type:decimal(12,2);not null"`
	CGST           float64 `gorm:"type:decimal(12,2);default:0.0"`
	SGST           float64 `gorm:"type:decimal(12,2);default:0.0"`
	IGST           float64 `gorm:"type:decimal(12,2);default:0.0"`
	TotalTax       float64 `gorm:"type:decimal(12,2);default:0.0"`
	ItemAmount     float64 `gorm:"type:decimal(12,2);not null"`
}

func (l *DocumentLine) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}

// PaymentHistoryEntry is an append-only log row under a document.
type PaymentHistoryEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID  `gorm:"type:uuid;index;not null"`
	PaymentID  *uuid.UUID `gorm:"type:uuid;index"`

	Amount           float64 `gorm:"type:decimal(12,2);not null"`
	Method           string  `gorm:"default:'cash'"`
	Reference        string
	RecordedByUserID uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt time.Time
}

func (h *PaymentHistoryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}
