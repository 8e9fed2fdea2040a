package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"not null"`
	GSTNumber string
	Address   string
	State     string
	Phone     string
	Email     string

	Users    []User    `gorm:"foreignKey:CompanyID"`
	Parties  []Party   `gorm:"foreignKey:CompanyID"`
	Items    []Item    `gorm:"foreignKey:CompanyID"`
	Payments []Payment `gorm:"foreignKey:CompanyID"`

	gorm.Model
}

func (co *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if co.ID == uuid.Nil {
		co.ID = uuid.New()
	}
	return
}
