package dto

import "time"

// AssemblyInput is what the assembly orchestrator consumes. DeviceRef may be
// a numeric id or a device name; Lines may be empty, in which case the BOM
// is expanded and scaled by Qty.
type AssemblyInput struct {
	DeviceRef   string
	Qty         int
	Product     *string
	Components  *string
	Date        *time.Time
	Responsible *string
	Lines       []AssemblyLineInput
}

type AssemblyLineInput struct {
	MaterialID int
	Qty        int
}

type AssemblyResult struct {
	ID int
}

type CreateAssemblyRequest struct {
	Device      string                 `json:"device"`
	Qty         int                    `json:"qty"`
	Product     *string                `json:"product,omitempty"`
	Components  *string                `json:"components,omitempty"`
	Date        *time.Time             `json:"date,omitempty"`
	Responsible *string                `json:"responsible,omitempty"`
	Lines       []AssemblyLineRequest  `json:"lines,omitempty"`
}

type AssemblyLineRequest struct {
	MaterialID int `json:"materialId"`
	Qty        int `json:"qty"`
}

type CreateAssemblyResponse struct {
	TraceID   string    `json:"traceId"`
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type AssemblyListItem struct {
	ID          int        `json:"id"`
	Product     *string    `json:"product,omitempty"`
	Components  *string    `json:"components,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Responsible *string    `json:"responsible,omitempty"`
	LineCount   int        `json:"lineCount"`
}

type DeleteAssemblyResponse struct {
	TraceID  string `json:"traceId"`
	Cascaded bool   `json:"cascaded"`
}
