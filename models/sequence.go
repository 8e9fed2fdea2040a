package models

import (
	"github.com/google/uuid"
)

// DocumentSequence is a per-(company, document type, calendar day) counter
// used for document numbering. Rows are bumped with an atomic
// upsert-and-increment so concurrent creations never observe the same value.
type DocumentSequence struct {
	ID        uint      `gorm:"primary_key"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_type_day,priority:1"`
	DocType   string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_company_type_day,priority:2"`
	DateKey   string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_company_type_day,priority:3"` // YYYYMMDD
	Value     int64     `gorm:"not null;default:0"`
}
