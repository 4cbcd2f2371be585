package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSaleLineAmount(t *testing.T) {
	line := SaleLine{Qty: 3, UnitPrice: decimal.RequireFromString("19.99")}
	assert.True(t, line.Amount().Equal(decimal.RequireFromString("59.97")))

	free := SaleLine{Qty: 5, UnitPrice: decimal.Zero}
	assert.True(t, free.Amount().IsZero())
}

func TestMaterialTracked(t *testing.T) {
	assert.True(t, StorageProfile{MaterialStock: MaterialStockInline}.MaterialTracked())
	assert.True(t, StorageProfile{MaterialStock: MaterialStockInventory}.MaterialTracked())
	assert.False(t, StorageProfile{MaterialStock: MaterialStockNone}.MaterialTracked())
}
