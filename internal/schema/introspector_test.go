package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/internal/domain"
	"medstock/internal/testutil"
)

func TestIntrospector_ResolveProfile_DefaultSchema(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	introspector := NewIntrospector(db)
	profile, err := introspector.ResolveProfile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DeviceStockInventory, profile.DeviceStock)
	assert.Equal(t, domain.MaterialStockInventory, profile.MaterialStock)
	assert.True(t, profile.HasBOM)
	assert.True(t, profile.MaterialTracked())

	assert.True(t, profile.Assembly.HasDeviceID)
	assert.True(t, profile.Assembly.HasProduct)
	assert.True(t, profile.Assembly.HasComponents)
	assert.True(t, profile.Assembly.HasDate)
	assert.True(t, profile.Assembly.HasResponsible)
	assert.True(t, profile.Assembly.IdentityKey)

	assert.True(t, profile.Sale.HasTotal)
	assert.True(t, profile.Sale.HasStaffID)
	assert.True(t, profile.Sale.IdentityKey)

	assert.True(t, profile.Reject.HasReporter)
	assert.True(t, profile.Reject.IdentityKey)
}

func TestIntrospector_ResolveProfile_InlineStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{
		InlineDeviceStock:   true,
		InlineMaterialStock: true,
	})

	introspector := NewIntrospector(db)
	profile, err := introspector.ResolveProfile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.DeviceStockInline, profile.DeviceStock)
	assert.Equal(t, domain.MaterialStockInline, profile.MaterialStock)
	assert.False(t, profile.Sale.HasTotal)
	assert.False(t, profile.Sale.HasStaffID)
	assert.False(t, profile.Reject.HasReporter)
}

func TestIntrospector_ResolveProfile_UntrackedMaterials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{NoMaterialStock: true})

	introspector := NewIntrospector(db)
	profile, err := introspector.ResolveProfile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.MaterialStockNone, profile.MaterialStock)
	assert.False(t, profile.MaterialTracked())
}

func TestIntrospector_ResolveProfile_ManualKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{ManualKeys: true})

	introspector := NewIntrospector(db)
	profile, err := introspector.ResolveProfile(context.Background())
	require.NoError(t, err)

	assert.False(t, profile.Assembly.IdentityKey)
	assert.False(t, profile.Sale.IdentityKey)
	assert.False(t, profile.Reject.IdentityKey)
}

func TestIntrospector_ObservesSchemaChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	introspector := NewIntrospector(db)
	ctx := context.Background()

	mode, err := introspector.DeviceStockMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceStockInventory, mode)

	// Nothing is cached: a migration between calls is seen immediately.
	testutil.SetupSchema(t, db, testutil.SchemaOptions{InlineDeviceStock: true})

	mode, err = introspector.DeviceStockMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceStockInline, mode)
}

func TestIntrospector_Columns_MissingTable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.DefaultSchema())

	introspector := NewIntrospector(db)
	cols, err := introspector.Columns(context.Background(), "NoSuchTable")
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestNextID_EmptyTable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{ManualKeys: true})

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	next, err := NextID(context.Background(), tx, TableAssembly, "id")
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestNextID_Sequential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.SetupSchema(t, db, testutil.SchemaOptions{ManualKeys: true})

	_, err := db.Exec(`INSERT INTO SaleHeader (id, sale_date, customer) VALUES (7, NOW(), 'ACME')`)
	require.NoError(t, err)

	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)
	next, err := NextID(ctx, tx, TableSaleHeader, "id")
	require.NoError(t, err)
	assert.Equal(t, 8, next)
	_, err = tx.Exec(`INSERT INTO SaleHeader (id, sale_date, customer) VALUES (?, NOW(), 'ACME')`, next)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = db.Begin()
	require.NoError(t, err)
	next, err = NextID(ctx, tx, TableSaleHeader, "id")
	require.NoError(t, err)
	assert.Equal(t, 9, next)
	require.NoError(t, tx.Rollback())
}
