package domain

import "github.com/shopspring/decimal"

// Material is a raw input consumed by assemblies.
type Material struct {
	ID         int
	Name       string
	UnitCost   decimal.Decimal
	SupplierID *int
	Stock      *int
}

// BOMLine is one row of a device's bill of materials: how much of one
// material a single produced unit consumes.
type BOMLine struct {
	MaterialID int
	QtyPerUnit int
}
