package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleInput is what the sale orchestrator consumes. Line unit prices are
// optional overrides; when nil the device's catalog price applies.
type SaleInput struct {
	Customer string
	Date     *time.Time
	StaffID  *int
	Lines    []SaleLineInput
}

type SaleLineInput struct {
	DeviceRef string
	Qty       int
	UnitPrice *decimal.Decimal
}

type SaleResult struct {
	ID    int
	Total decimal.Decimal
}

type CreateSaleRequest struct {
	Customer string            `json:"customer"`
	Date     *time.Time        `json:"date,omitempty"`
	StaffID  *int              `json:"staffId,omitempty"`
	Items    []SaleItemRequest `json:"items"`
}

type SaleItemRequest struct {
	Device    string           `json:"device"`
	Qty       int              `json:"qty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type CreateSaleResponse struct {
	TraceID   string          `json:"traceId"`
	ID        int             `json:"id"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

type SaleListItem struct {
	ID       int             `json:"id"`
	Date     time.Time       `json:"date"`
	Customer string          `json:"customer"`
	StaffID  *int            `json:"staffId,omitempty"`
	Total    decimal.Decimal `json:"total"`
	Items    int             `json:"items"`
}

type DeleteSaleResponse struct {
	TraceID   string `json:"traceId"`
	Restocked bool   `json:"restocked"`
}
