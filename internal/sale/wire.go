package sale

import (
	"database/sql"

	"go.uber.org/zap"

	catalogrepo "medstock/internal/catalog/repository"
	"medstock/internal/config"
	"medstock/internal/inventory"
	"medstock/internal/sale/controller"
	salerepo "medstock/internal/sale/repository"
	"medstock/internal/sale/service"
	"medstock/internal/sale/usecase"
	"medstock/internal/schema"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.SaleController {
	introspector := schema.NewIntrospector(db)
	deviceRepo := catalogrepo.NewMySQLDeviceRepository(db)
	staffRepo := catalogrepo.NewMySQLStaffRepository(db)
	saleRepo := salerepo.NewMySQLSaleRepository(db)
	ledger := inventory.NewMySQLStockLedger()

	svc := service.NewSaleService(
		db,
		introspector,
		deviceRepo,
		staffRepo,
		saleRepo,
		ledger,
		logger,
		cfg.Engine.TxTimeout,
	)

	uc := usecase.NewSaleUseCase(svc, logger, cfg.Engine.MaxRetryAttempts)

	return controller.NewSaleController(uc, logger)
}
