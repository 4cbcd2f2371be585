package domain

import "time"

// Reject records discarded units of a device. It has no stock side effects.
type Reject struct {
	ID         int
	DeviceID   int
	DeviceName *string
	Cause      string
	Qty        int
	Date       time.Time
	ReportedBy *string
}
