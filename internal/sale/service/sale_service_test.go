package service

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	catalogrepo "medstock/internal/catalog/repository"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
	"medstock/internal/inventory"
	salerepo "medstock/internal/sale/repository"
	"medstock/internal/schema"
	"medstock/internal/testutil"
)

func newService(db *sql.DB) *SaleService {
	return NewSaleService(
		db,
		schema.NewIntrospector(db),
		catalogrepo.NewMySQLDeviceRepository(db),
		catalogrepo.NewMySQLStaffRepository(db),
		salerepo.NewMySQLSaleRepository(db),
		inventory.NewMySQLStockLedger(),
		zap.NewNop(),
		5*time.Second,
	)
}

func seedDevice(t *testing.T, db *sql.DB, name, price string, stock int) int {
	t.Helper()
	res, err := db.Exec(`INSERT INTO MedicalDevice (name, price) VALUES (?, ?)`, name, price)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Inventory (device_id, stock, min_stock) VALUES (?, ?, 0)`, id, stock)
	require.NoError(t, err)
	return int(id)
}

func queryInt(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateSale_TotalAndStockDecrements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	devP := seedDevice(t, db, "P", "10.00", 5)
	devQ := seedDevice(t, db, "Q", "5.00", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines: []dto.SaleLineInput{
			{DeviceRef: "P", Qty: 2, UnitPrice: price("10.00")},
			{DeviceRef: "Q", Qty: 1, UnitPrice: price("5.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", result.Total)

	assert.Equal(t, 3, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))
	assert.Equal(t, 4, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devQ))
	assert.Equal(t, 2, queryInt(t, db, `SELECT COUNT(*) FROM SaleDetail WHERE sale_id = ?`, result.ID))

	var total decimal.Decimal
	require.NoError(t, db.QueryRow(`SELECT total FROM SaleHeader WHERE id = ?`, result.ID).Scan(&total))
	assert.True(t, total.Equal(result.Total))
}

func TestCreateSale_CatalogPriceByDefault(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	seedDevice(t, db, "P", "12.50", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 2}},
	})
	require.NoError(t, err)

	assert.True(t, result.Total.Equal(decimal.RequireFromString("25.00")))
}

func TestCreateSale_NumericDeviceRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	devP := seedDevice(t, db, "P", "10.00", 5)

	svc := newService(db)
	_, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines:    []dto.SaleLineInput{{DeviceRef: strconv.Itoa(devP), Qty: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))
}

func TestCreateSale_InsufficientStockFailsWholeSale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	devP := seedDevice(t, db, "P", "10.00", 5)
	devQ := seedDevice(t, db, "Q", "5.00", 1)

	svc := newService(db)
	_, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines: []dto.SaleLineInput{
			{DeviceRef: "P", Qty: 2},
			{DeviceRef: "Q", Qty: 3},
		},
	})
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok)

	// All or nothing: the first line's decrement was rolled back too.
	assert.Equal(t, 5, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))
	assert.Equal(t, 1, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devQ))
	assert.Equal(t, 0, queryInt(t, db, `SELECT COUNT(*) FROM SaleHeader`))
	assert.Equal(t, 0, queryInt(t, db, `SELECT COUNT(*) FROM SaleDetail`))
}

func TestCreateSale_UnknownDevice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	svc := newService(db)
	_, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines:    []dto.SaleLineInput{{DeviceRef: "Ghost Device", Qty: 1}},
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCreateSale_UnknownStaff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	seedDevice(t, db, "P", "10.00", 5)

	staffID := 77
	svc := newService(db)
	_, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		StaffID:  &staffID,
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 1}},
	})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCreateSale_StaffIgnoredWhenSchemaLacksColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{SaleTotal: true})

	seedDevice(t, db, "P", "10.00", 5)

	// No staff_id column: the reference is dropped instead of rejected.
	staffID := 77
	svc := newService(db)
	_, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		StaffID:  &staffID,
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 1}},
	})
	require.NoError(t, err)
}

func TestDeleteSale_RestockRestoresStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	devP := seedDevice(t, db, "P", "10.00", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 3}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))

	restocked, err := svc.DeleteSale(context.Background(), result.ID, true)
	require.NoError(t, err)
	assert.True(t, restocked)

	assert.Equal(t, 5, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))
	assert.Equal(t, 0, queryInt(t, db, `SELECT COUNT(*) FROM SaleHeader WHERE id = ?`, result.ID))
	assert.Equal(t, 0, queryInt(t, db, `SELECT COUNT(*) FROM SaleDetail WHERE sale_id = ?`, result.ID))
}

func TestDeleteSale_WithoutRestockLeavesStockAlone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	devP := seedDevice(t, db, "P", "10.00", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 3}},
	})
	require.NoError(t, err)

	restocked, err := svc.DeleteSale(context.Background(), result.ID, false)
	require.NoError(t, err)
	assert.False(t, restocked)

	assert.Equal(t, 2, queryInt(t, db, `SELECT stock FROM Inventory WHERE device_id = ?`, devP))
}

func TestDeleteSale_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	svc := newService(db)
	_, err := svc.DeleteSale(context.Background(), 9999, true)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestListSales_DerivedTotalWithoutTotalColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{})

	seedDevice(t, db, "P", "10.00", 5)
	seedDevice(t, db, "Q", "5.00", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		Lines: []dto.SaleLineInput{
			{DeviceRef: "P", Qty: 2},
			{DeviceRef: "Q", Qty: 1},
		},
	})
	require.NoError(t, err)

	summaries, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, result.ID, summaries[0].ID)
	assert.Equal(t, "General Hospital", summaries[0].Customer)
	assert.Nil(t, summaries[0].StaffID)
	assert.Equal(t, 2, summaries[0].Items)
	// No total column: the summary total is summed from the lines.
	assert.True(t, summaries[0].Total.Equal(decimal.RequireFromString("25.00")),
		"expected derived total 25.00, got %s", summaries[0].Total)
}

func TestListSales_PersistedTotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	_, err := db.Exec(`INSERT INTO Staff (name, role) VALUES ('Dana', 'sales')`)
	require.NoError(t, err)
	staffID := queryInt(t, db, `SELECT id FROM Staff WHERE name = 'Dana'`)

	seedDevice(t, db, "P", "10.00", 5)

	svc := newService(db)
	result, err := svc.CreateSale(context.Background(), dto.SaleInput{
		Customer: "General Hospital",
		StaffID:  &staffID,
		Lines:    []dto.SaleLineInput{{DeviceRef: "P", Qty: 2}},
	})
	require.NoError(t, err)

	summaries, err := svc.ListSales(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].StaffID)
	assert.Equal(t, staffID, *summaries[0].StaffID)
	assert.True(t, summaries[0].Total.Equal(result.Total))
}
