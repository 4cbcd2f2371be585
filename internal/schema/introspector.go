package schema

import (
	"context"
	"database/sql"
	"fmt"

	"medstock/internal/domain"
)

// Table names the engine knows about. Only the assembly/sale core tables are
// assumed to exist; everything else is probed at runtime.
const (
	TableMedicalDevice     = "MedicalDevice"
	TableInventory         = "Inventory"
	TableMaterial          = "Material"
	TableMaterialInventory = "MaterialInventory"
	TableProductBOM        = "ProductBOM"
	TableAssembly          = "Assembly"
	TableAssemblyDetail    = "AssemblyDetail"
	TableSaleHeader        = "SaleHeader"
	TableSaleDetail        = "SaleDetail"
	TableReject            = "Reject"
	TableStaff             = "Staff"
)

// Introspector answers which optional columns and tables this deployment
// actually has. Every query goes to information_schema scoped to the current
// database; nothing is cached, so a schema change between calls is observed
// on the next one.
type Introspector struct {
	db *sql.DB
}

func NewIntrospector(db *sql.DB) *Introspector {
	return &Introspector{db: db}
}

// Columns returns the set of column names of a table. A missing table yields
// an empty set, not an error.
func (i *Introspector) Columns(ctx context.Context, table string) (map[string]bool, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
	`

	rows, err := i.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column name: %w", err)
		}
		cols[name] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns of %s: %w", table, err)
	}

	return cols, nil
}

func (i *Introspector) TableHasColumn(ctx context.Context, table, column string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?
	`

	var count int
	if err := i.db.QueryRowContext(ctx, query, table, column).Scan(&count); err != nil {
		return false, fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}

	return count > 0, nil
}

// IsAutoIncrement reports whether a primary key is generated by the
// database. When it is not, inserts must assign max+1 themselves.
func (i *Introspector) IsAutoIncrement(ctx context.Context, table, column string) (bool, error) {
	query := `
		SELECT COUNT(1)
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ?
		  AND extra LIKE '%auto_increment%'
	`

	var count int
	if err := i.db.QueryRowContext(ctx, query, table, column).Scan(&count); err != nil {
		return false, fmt.Errorf("checking identity of %s.%s: %w", table, column, err)
	}

	return count > 0, nil
}

// DeviceStockMode picks the authoritative finished-device stock location:
// an inline stock column wins over the Inventory table, and inline is the
// fallback when neither exists.
func (i *Introspector) DeviceStockMode(ctx context.Context) (domain.DeviceStockMode, error) {
	inline, err := i.TableHasColumn(ctx, TableMedicalDevice, "stock")
	if err != nil {
		return "", err
	}
	if inline {
		return domain.DeviceStockInline, nil
	}

	separate, err := i.TableHasColumn(ctx, TableInventory, "stock")
	if err != nil {
		return "", err
	}
	if separate {
		return domain.DeviceStockInventory, nil
	}

	return domain.DeviceStockInline, nil
}

// MaterialStockMode is the same probe for materials, except that material
// stock may legitimately not be tracked at all.
func (i *Introspector) MaterialStockMode(ctx context.Context) (domain.MaterialStockMode, error) {
	inline, err := i.TableHasColumn(ctx, TableMaterial, "stock")
	if err != nil {
		return "", err
	}
	if inline {
		return domain.MaterialStockInline, nil
	}

	separate, err := i.TableHasColumn(ctx, TableMaterialInventory, "stock")
	if err != nil {
		return "", err
	}
	if separate {
		return domain.MaterialStockInventory, nil
	}

	return domain.MaterialStockNone, nil
}

// ResolveProfile assembles the full storage profile for one business
// operation. Read-only; callers pass the result down instead of re-probing.
func (i *Introspector) ResolveProfile(ctx context.Context) (*domain.StorageProfile, error) {
	deviceMode, err := i.DeviceStockMode(ctx)
	if err != nil {
		return nil, err
	}

	materialMode, err := i.MaterialStockMode(ctx)
	if err != nil {
		return nil, err
	}

	hasBOM, err := i.TableHasColumn(ctx, TableProductBOM, "device_id")
	if err != nil {
		return nil, err
	}

	assemblyCols, err := i.Columns(ctx, TableAssembly)
	if err != nil {
		return nil, err
	}

	assemblyIdentity, err := i.IsAutoIncrement(ctx, TableAssembly, "id")
	if err != nil {
		return nil, err
	}

	saleCols, err := i.Columns(ctx, TableSaleHeader)
	if err != nil {
		return nil, err
	}

	saleIdentity, err := i.IsAutoIncrement(ctx, TableSaleHeader, "id")
	if err != nil {
		return nil, err
	}

	rejectCols, err := i.Columns(ctx, TableReject)
	if err != nil {
		return nil, err
	}

	rejectIdentity, err := i.IsAutoIncrement(ctx, TableReject, "id")
	if err != nil {
		return nil, err
	}

	return &domain.StorageProfile{
		DeviceStock:   deviceMode,
		MaterialStock: materialMode,
		HasBOM:        hasBOM,
		Assembly: domain.AssemblySchema{
			HasDeviceID:    assemblyCols["device_id"],
			HasProduct:     assemblyCols["product"],
			HasComponents:  assemblyCols["components"],
			HasDate:        assemblyCols["event_date"],
			HasResponsible: assemblyCols["responsible"],
			IdentityKey:    assemblyIdentity,
		},
		Sale: domain.SaleSchema{
			HasTotal:    saleCols["total"],
			HasStaffID:  saleCols["staff_id"],
			IdentityKey: saleIdentity,
		},
		Reject: domain.RejectSchema{
			HasReporter: rejectCols["reported_by"],
			IdentityKey: rejectIdentity,
		},
	}, nil
}
