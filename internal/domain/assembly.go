package domain

import "time"

// NewAssembly is an assembly header about to be inserted. Optional fields
// are written only when both the value is supplied and the column exists.
type NewAssembly struct {
	DeviceID    *int
	Product     *string
	Components  *string
	Date        *time.Time
	Responsible *string
}

// AssemblyLine is one material consumption entry of an assembly event,
// either supplied explicitly or expanded from the BOM.
type AssemblyLine struct {
	MaterialID int
	Qty        int
}

// AssemblySummary is the read model for listing assembly events.
type AssemblySummary struct {
	ID          int
	Product     *string
	Components  *string
	Date        *time.Time
	Responsible *string
	LineCount   int
}
