package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartyType classifies a party. Unlike the legacy data this column is
// required and non-nullable, so lookups never have to match missing values.
type PartyType string

const (
	PartyTypeCustomer PartyType = "customer"
	PartyTypeSupplier PartyType = "supplier"
	PartyTypeBoth     PartyType = "both"
)

// Party is a unified customer/supplier record.
//
// CurrentBalance is a signed running ledger: positive means the party owes
// the company, negative means the company owes the party. Every payment and
// every document created with a non-zero paid amount moves it.
type Party struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_company_phone,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"uniqueIndex:idx_company_phone,priority:2"`
	Email     string
	GSTNumber string
	Address   string
	PartyType PartyType `gorm:"type:varchar(20);not null;default:'customer'"`

	OpeningBalance float64 `gorm:"type:decimal(12,2);default:0.0"`
	CurrentBalance float64 `gorm:"type:decimal(12,2);default:0.0"`

	IsActive bool `gorm:"default:true"`

	Payments []Payment `gorm:"foreignKey:PartyID"`

	gorm.Model
}

func (p *Party) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// IsCustomer reports whether the party can appear on sales documents.
func (p *Party) IsCustomer() bool {
	return p.PartyType == PartyTypeCustomer || p.PartyType == PartyTypeBoth
}

// IsSupplier reports whether the party can appear on purchase documents.
func (p *Party) IsSupplier() bool {
	return p.PartyType == PartyTypeSupplier || p.PartyType == PartyTypeBoth
}
