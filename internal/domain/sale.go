package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewSale is a sale header about to be inserted.
type NewSale struct {
	Date     time.Time
	Customer string
	StaffID  *int
	Total    decimal.Decimal
}

// SaleLine is one device sold at an effective unit price. The price is the
// caller's override when supplied, the catalog price otherwise.
type SaleLine struct {
	DeviceID  int
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
}

func (l SaleLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// ConsumedLine is the minimal slice of a sale line needed to restore stock
// when the sale is deleted with restock.
type ConsumedLine struct {
	DeviceID int
	Qty      int
}

// SaleSummary is the read model for listing sales. Total is persisted when
// the schema has the column and derived from the lines otherwise.
type SaleSummary struct {
	ID       int
	Date     time.Time
	Customer string
	StaffID  *int
	Total    decimal.Decimal
	Items    int
}
