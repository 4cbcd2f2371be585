package domain

import "github.com/shopspring/decimal"

// MedicalDevice is a finished good: manufacturable by an assembly, sellable
// in a sale. Stock may live inline or in the Inventory table depending on
// the storage profile.
type MedicalDevice struct {
	ID          int
	Name        string
	Description *string
	RiskClass   *string
	ApprovedBy  *string
	SpecificUse *string
	Price       decimal.Decimal
	Stock       int
	MinStock    int
}

// DeviceQuote is the slice of a device a sale line needs: current catalog
// price and effective stock under the active storage profile.
type DeviceQuote struct {
	ID    int
	Name  string
	Price decimal.Decimal
	Stock int
}
