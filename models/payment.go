package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentTypeIn  PaymentType = "payment_in"
	PaymentTypeOut PaymentType = "payment_out"
)

type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateCompleted PaymentState = "completed"
	PaymentStateCancelled PaymentState = "cancelled"
	PaymentStateFailed    PaymentState = "failed"
)

// Payment is an atomic cash movement against a party's running balance.
// PartyBalanceBefore/After snapshot the ledger around the movement:
// After == Before + Amount for payment_in, Before - Amount for payment_out.
type Payment struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	PaymentNumber string      `gorm:"uniqueIndex;not null"`
	Type          PaymentType `gorm:"type:varchar(20);not null"`

	PartyID   uuid.UUID `gorm:"type:uuid;index;not null"`
	PartyName string

	Amount    float64 `gorm:"type:decimal(12,2);not null"`
	Method    string  `gorm:"default:'cash'"`
	Reference string
	Notes     string

	Status PaymentState `gorm:"type:varchar(20);not null;default:'completed'"`

	PartyBalanceBefore float64 `gorm:"type:decimal(12,2);default:0.0"`
	PartyBalanceAfter  float64 `gorm:"type:decimal(12,2);default:0.0"`

	PaymentDate time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	LinkedDocuments []PaymentAllocation `gorm:"foreignKey:PaymentID"`

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// PaymentAllocation links a payment to the document it settles, with a
// snapshot of the document's payment position at allocation time.
type PaymentAllocation struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	PaymentID  uuid.UUID `gorm:"type:uuid;index;not null"`
	DocumentID uuid.UUID `gorm:"type:uuid;index;not null"`

	DocumentNumber  string
	AllocatedAmount float64 `gorm:"type:decimal(12,2);not null"`
	RemainingAmount float64 `gorm:"type:decimal(12,2);default:0.0"`
	IsFullyPaid     bool    `gorm:"default:false"`

	CreatedAt time.Time
}

func (a *PaymentAllocation) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
