package reject

import (
	"database/sql"

	"go.uber.org/zap"

	"medstock/internal/config"
	"medstock/internal/reject/controller"
	rejectrepo "medstock/internal/reject/repository"
	"medstock/internal/reject/service"
	"medstock/internal/schema"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger) *controller.RejectController {
	introspector := schema.NewIntrospector(db)
	rejectRepo := rejectrepo.NewMySQLRejectRepository(db)

	svc := service.NewRejectService(
		db,
		introspector,
		rejectRepo,
		logger,
		cfg.Engine.TxTimeout,
	)

	return controller.NewRejectController(svc, logger)
}
