package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// Item is a product or service sold or purchased by the company.
//
// Each price is stored as a with-tax/without-tax pair. Only one side is
// entered (the *TaxInclusive flag records which); the other side is
// recomputed from GSTRate on every save.
type Item struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_company_item_code,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name     string   `gorm:"not null"`
	ItemCode string   `gorm:"uniqueIndex:idx_company_item_code,priority:2"`
	Type     ItemType `gorm:"type:varchar(20);not null;default:'product'"`
	HSNCode  string
	Unit     string `gorm:"default:'pcs'"`

	GSTRate float64 `gorm:"type:decimal(5,2);default:0.0"`

	SalePrice             float64 `gorm:"type:decimal(12,2);default:0.0"`
	SalePriceWithTax      float64 `gorm:"type:decimal(12,2);default:0.0"`
	SalePriceTaxInclusive bool    `gorm:"default:false"`

	BuyPrice             float64 `gorm:"type:decimal(12,2);default:0.0"`
	BuyPriceWithTax      float64 `gorm:"type:decimal(12,2);default:0.0"`
	BuyPriceTaxInclusive bool    `gorm:"default:false"`

	// Stock fields are meaningful only for products; forced to 0 for services.
	CurrentStock  float64 `gorm:"type:decimal(12,2);default:0.0"`
	MinStockLevel float64 `gorm:"type:decimal(12,2);default:0.0"`

	IsActive bool `gorm:"default:true"`

	gorm.Model
}

func (i *Item) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// BeforeSave keeps the tax-inclusive/exclusive price pairs consistent with
// GSTRate and zeroes stock for services.
func (i *Item) BeforeSave(tx *gorm.DB) (err error) {
	i.SalePrice, i.SalePriceWithTax = recomputePricePair(i.SalePrice, i.SalePriceWithTax, i.GSTRate, i.SalePriceTaxInclusive)
	i.BuyPrice, i.BuyPriceWithTax = recomputePricePair(i.BuyPrice, i.BuyPriceWithTax, i.GSTRate, i.BuyPriceTaxInclusive)

	if i.Type == ItemTypeService {
		i.CurrentStock = 0
		i.MinStockLevel = 0
	}
	return
}

// recomputePricePair derives the missing side of a price pair from the
// entered side and the GST rate, rounding both sides to 2 decimals.
func recomputePricePair(exclusive, inclusive, gstRate float64, enteredInclusive bool) (float64, float64) {
	multiplier := decimal.NewFromInt(1).Add(decimal.NewFromFloat(gstRate).Div(decimal.NewFromInt(100)))
	if enteredInclusive {
		inc := decimal.NewFromFloat(inclusive)
		exc := inc.Div(multiplier).Round(2)
		return exc.InexactFloat64(), inc.Round(2).InexactFloat64()
	}
	exc := decimal.NewFromFloat(exclusive)
	inc := exc.Mul(multiplier).Round(2)
	return exc.Round(2).InexactFloat64(), inc.InexactFloat64()
}
