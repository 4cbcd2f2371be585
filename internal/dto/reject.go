package dto

import "time"

type RejectInput struct {
	DeviceID   int
	Cause      string
	Qty        int
	Date       *time.Time
	ReportedBy *string
}

type RejectResult struct {
	ID int
}

type CreateRejectRequest struct {
	DeviceID   int        `json:"deviceId"`
	Cause      string     `json:"cause"`
	Qty        int        `json:"qty"`
	Date       *time.Time `json:"date,omitempty"`
	ReportedBy *string    `json:"reportedBy,omitempty"`
}

type CreateRejectResponse struct {
	TraceID   string    `json:"traceId"`
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

type RejectListItem struct {
	ID         int        `json:"id"`
	DeviceID   int        `json:"deviceId"`
	DeviceName *string    `json:"deviceName,omitempty"`
	Cause      string     `json:"cause"`
	Qty        int        `json:"qty"`
	Date       time.Time  `json:"date"`
	ReportedBy *string    `json:"reportedBy,omitempty"`
}
