package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the MySQL test database. Expects a database named
// 'medstock_test' on localhost:3306 (override with MEDSTOCK_TEST_DSN);
// tests are skipped when it is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MEDSTOCK_TEST_DSN")
	if dsn == "" {
		dsn = "root:@tcp(localhost:3306)/medstock_test?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	dropAll(t, db)
	db.Close()
}

// SchemaOptions selects one of the storage layouts the engine must detect.
// The zero value is the richest layout: separate Inventory and
// MaterialInventory tables and auto-generated keys, without the optional
// sale/reject columns.
type SchemaOptions struct {
	InlineDeviceStock   bool
	InlineMaterialStock bool
	NoMaterialStock     bool
	ManualKeys          bool
	SaleTotal           bool
	SaleStaff           bool
	RejectReporter      bool
}

// DefaultSchema is the layout most deployments run: separate stock tables,
// identity keys, persisted sale totals and staff links, reject reporter.
func DefaultSchema() SchemaOptions {
	return SchemaOptions{
		SaleTotal:      true,
		SaleStaff:      true,
		RejectReporter: true,
	}
}

// SetupSchema drops and recreates every table according to opts, so each
// test observes exactly the layout it asks for.
func SetupSchema(t *testing.T, db *sql.DB, opts SchemaOptions) {
	dropAll(t, db)

	identity := " AUTO_INCREMENT"
	if opts.ManualKeys {
		identity = ""
	}

	deviceStockCol := ""
	if opts.InlineDeviceStock {
		deviceStockCol = ",\n\t\tstock INT"
	}

	materialStockCol := ""
	if opts.InlineMaterialStock {
		materialStockCol = ",\n\t\tstock INT"
	}

	saleStaffCol := ""
	if opts.SaleStaff {
		saleStaffCol = ",\n\t\tstaff_id INT"
	}
	saleTotalCol := ""
	if opts.SaleTotal {
		saleTotalCol = ",\n\t\ttotal DECIMAL(18,2)"
	}

	rejectReporterCol := ""
	if opts.RejectReporter {
		rejectReporterCol = ",\n\t\treported_by VARCHAR(120)"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE MedicalDevice (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		description VARCHAR(200),
		risk_class VARCHAR(50),
		approved_by VARCHAR(100),
		specific_use VARCHAR(50),
		price DECIMAL(10,2) NOT NULL DEFAULT 0.00%s
	)`, deviceStockCol),
		fmt.Sprintf(`CREATE TABLE Material (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(120) NOT NULL,
		unit_cost DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		supplier_id INT%s
	)`, materialStockCol),
		`CREATE TABLE ProductBOM (
		device_id INT NOT NULL,
		material_id INT NOT NULL,
		qty_per_unit INT NOT NULL,
		PRIMARY KEY (device_id, material_id)
	)`,
		fmt.Sprintf(`CREATE TABLE Assembly (
		id INT NOT NULL%s PRIMARY KEY,
		device_id INT,
		product VARCHAR(100),
		components VARCHAR(200),
		event_date DATETIME,
		responsible VARCHAR(100)
	)`, identity),
		`CREATE TABLE AssemblyDetail (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		assembly_id INT NOT NULL,
		material_id INT NOT NULL,
		qty INT NOT NULL DEFAULT 1,
		FOREIGN KEY (assembly_id) REFERENCES Assembly(id),
		INDEX idx_assembly (assembly_id)
	)`,
		fmt.Sprintf(`CREATE TABLE SaleHeader (
		id INT NOT NULL%s PRIMARY KEY,
		sale_date DATETIME NOT NULL,
		customer VARCHAR(120) NOT NULL%s%s
	)`, identity, saleStaffCol, saleTotalCol),
		`CREATE TABLE SaleDetail (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sale_id INT NOT NULL,
		device_id INT NOT NULL,
		qty INT NOT NULL DEFAULT 1,
		unit_price DECIMAL(18,2) NOT NULL,
		INDEX idx_sale (sale_id)
	)`,
		fmt.Sprintf(`CREATE TABLE Reject (
		id INT NOT NULL%s PRIMARY KEY,
		device_id INT NOT NULL,
		cause VARCHAR(100) NOT NULL,
		qty INT NOT NULL,
		reject_date DATETIME NOT NULL%s
	)`, identity, rejectReporterCol),
		`CREATE TABLE Staff (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		role VARCHAR(50)
	)`,
	}

	if !opts.InlineDeviceStock {
		stmts = append(stmts, `CREATE TABLE Inventory (
		device_id INT NOT NULL PRIMARY KEY,
		stock INT,
		min_stock INT NOT NULL DEFAULT 0,
		location VARCHAR(100),
		updated_at DATETIME
	)`)
	}

	if !opts.InlineMaterialStock && !opts.NoMaterialStock {
		stmts = append(stmts, `CREATE TABLE MaterialInventory (
		material_id INT NOT NULL PRIMARY KEY,
		stock INT,
		updated_at DATETIME
	)`)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create table: %v\n%s", err, stmt)
		}
	}
}

func dropAll(t *testing.T, db *sql.DB) {
	tables := []string{
		"AssemblyDetail", "Assembly", "SaleDetail", "SaleHeader", "Reject",
		"ProductBOM", "MaterialInventory", "Material", "Inventory",
		"MedicalDevice", "Staff",
	}

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		t.Fatalf("disabling foreign key checks: %v", err)
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			t.Logf("failed to drop table %s: %v", table, err)
		}
	}
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1"); err != nil {
		t.Fatalf("enabling foreign key checks: %v", err)
	}
}
