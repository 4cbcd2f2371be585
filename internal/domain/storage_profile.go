package domain

// DeviceStockMode says where finished-device stock physically lives.
type DeviceStockMode string

const (
	// DeviceStockInline: MedicalDevice carries its own stock column.
	DeviceStockInline DeviceStockMode = "DEVICE"
	// DeviceStockInventory: stock lives in the separate Inventory table.
	DeviceStockInventory DeviceStockMode = "INVENTORY"
)

// MaterialStockMode says where raw-material stock lives, if anywhere.
type MaterialStockMode string

const (
	MaterialStockInline    MaterialStockMode = "MATERIAL"
	MaterialStockInventory MaterialStockMode = "MATERIAL_INVENTORY"
	MaterialStockNone      MaterialStockMode = "NONE"
)

// AssemblySchema lists the optional Assembly columns present in this
// deployment. Inserts include only the columns that exist.
type AssemblySchema struct {
	HasDeviceID    bool
	HasProduct     bool
	HasComponents  bool
	HasDate        bool
	HasResponsible bool
	IdentityKey    bool
}

type SaleSchema struct {
	HasTotal    bool
	HasStaffID  bool
	IdentityKey bool
}

type RejectSchema struct {
	HasReporter bool
	IdentityKey bool
}

// StorageProfile is the runtime-detected shape of the deployment's schema.
// It is resolved once per business operation and passed down; business logic
// branches only on this value, never on ad hoc column checks.
type StorageProfile struct {
	DeviceStock   DeviceStockMode
	MaterialStock MaterialStockMode
	HasBOM        bool
	Assembly      AssemblySchema
	Sale          SaleSchema
	Reject        RejectSchema
}

// MaterialTracked reports whether material consumption affects any stock
// representation at all.
func (p StorageProfile) MaterialTracked() bool {
	return p.MaterialStock != MaterialStockNone
}
