package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputePricePair_FromExclusive(t *testing.T) {
	exc, inc := recomputePricePair(100, 0, 18, false)
	assert.Equal(t, 100.0, exc)
	assert.Equal(t, 118.0, inc)
}

func TestRecomputePricePair_FromInclusive(t *testing.T) {
	exc, inc := recomputePricePair(0, 118, 18, true)
	assert.Equal(t, 100.0, exc)
	assert.Equal(t, 118.0, inc)

	// A non-round inclusive price backs out to a rounded base.
	exc, _ = recomputePricePair(0, 999, 18, true)
	assert.Equal(t, 846.61, exc)
}

func TestRecomputePricePair_ZeroRate(t *testing.T) {
	exc, inc := recomputePricePair(50, 0, 0, false)
	assert.Equal(t, exc, inc)
}

func TestItemBeforeSave_ZeroesStockForServices(t *testing.T) {
	item := Item{
		Type:          ItemTypeService,
		SalePrice:     100,
		GSTRate:       18,
		CurrentStock:  25,
		MinStockLevel: 5,
	}
	require.NoError(t, item.BeforeSave(nil))

	assert.Equal(t, 0.0, item.CurrentStock)
	assert.Equal(t, 0.0, item.MinStockLevel)
	assert.Equal(t, 118.0, item.SalePriceWithTax)
}

func TestPartyTypeHelpers(t *testing.T) {
	both := Party{PartyType: PartyTypeBoth}
	assert.True(t, both.IsCustomer())
	assert.True(t, both.IsSupplier())

	customer := Party{PartyType: PartyTypeCustomer}
	assert.True(t, customer.IsCustomer())
	assert.False(t, customer.IsSupplier())
}
