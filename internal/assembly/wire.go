package assembly

import (
	"database/sql"

	"go.uber.org/zap"

	"medstock/internal/assembly/controller"
	assemblyrepo "medstock/internal/assembly/repository"
	"medstock/internal/assembly/service"
	"medstock/internal/assembly/usecase"
	catalogrepo "medstock/internal/catalog/repository"
	"medstock/internal/config"
	"medstock/internal/inventory"
	"medstock/internal/schema"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.AssemblyController {
	introspector := schema.NewIntrospector(db)
	deviceRepo := catalogrepo.NewMySQLDeviceRepository(db)
	materialRepo := catalogrepo.NewMySQLMaterialRepository(db)
	assemblyRepo := assemblyrepo.NewMySQLAssemblyRepository(db)
	ledger := inventory.NewMySQLStockLedger()

	svc := service.NewAssemblyService(
		db,
		introspector,
		deviceRepo,
		materialRepo,
		assemblyRepo,
		ledger,
		logger,
		cfg.Engine.TxTimeout,
	)

	uc := usecase.NewAssemblyUseCase(svc, logger, cfg.Engine.MaxRetryAttempts)

	return controller.NewAssemblyController(uc, logger)
}
