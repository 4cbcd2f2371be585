package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"medstock/internal/commons"
	"medstock/internal/domain"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type SchemaResolver interface {
	ResolveProfile(ctx context.Context) (*domain.StorageProfile, error)
}

type DeviceResolver interface {
	ResolveRef(ctx context.Context, tx *sql.Tx, ref string) (int, error)
}

type MaterialRepository interface {
	Exists(ctx context.Context, tx *sql.Tx, id int) (bool, error)
}

type AssemblyRepository interface {
	InsertHeader(ctx context.Context, tx *sql.Tx, sch domain.AssemblySchema, a domain.NewAssembly) (int, error)
	InsertLine(ctx context.Context, tx *sql.Tx, assemblyID int, line domain.AssemblyLine) error
	BOMLines(ctx context.Context, tx *sql.Tx, deviceID, productionQty int) ([]domain.AssemblyLine, error)
	CountLines(ctx context.Context, assemblyID int) (int, error)
	DeleteLines(ctx context.Context, tx *sql.Tx, assemblyID int) error
	DeleteHeader(ctx context.Context, tx *sql.Tx, assemblyID int) (int64, error)
	DeleteHeaderDirect(ctx context.Context, assemblyID int) (int64, error)
	List(ctx context.Context, sch domain.AssemblySchema) ([]domain.AssemblySummary, error)
}

type StockLedger interface {
	IncreaseDeviceStock(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, deviceID, qty int) error
	DecreaseMaterialStock(ctx context.Context, tx *sql.Tx, mode domain.MaterialStockMode, materialID, qty int) (bool, error)
}

// AssemblyService runs assembly events as single transactions: header, line
// items, finished-device increase and material decrements either all commit
// or none do.
type AssemblyService struct {
	db           TransactionManager
	schema       SchemaResolver
	deviceRepo   DeviceResolver
	materialRepo MaterialRepository
	assemblyRepo AssemblyRepository
	ledger       StockLedger
	logger       *zap.Logger
	txTimeout    time.Duration
}

func NewAssemblyService(
	db TransactionManager,
	schema SchemaResolver,
	deviceRepo DeviceResolver,
	materialRepo MaterialRepository,
	assemblyRepo AssemblyRepository,
	ledger StockLedger,
	logger *zap.Logger,
	txTimeout time.Duration,
) *AssemblyService {
	return &AssemblyService{
		db:           db,
		schema:       schema,
		deviceRepo:   deviceRepo,
		materialRepo: materialRepo,
		assemblyRepo: assemblyRepo,
		ledger:       ledger,
		logger:       logger,
		txTimeout:    txTimeout,
	}
}

func (s *AssemblyService) CreateAssembly(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error) {
	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("resolving storage profile", err)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once committed.
	defer tx.Rollback()

	var deviceID *int
	if profile.Assembly.HasDeviceID {
		id, err := s.deviceRepo.ResolveRef(txCtx, tx, input.DeviceRef)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError("a valid device is required: supply a device id or an existing name")
			}
			return nil, err
		}
		deviceID = &id
	}

	now := time.Now()
	date := input.Date
	if date == nil {
		date = &now
	}

	header := domain.NewAssembly{
		DeviceID:    deviceID,
		Product:     input.Product,
		Components:  input.Components,
		Date:        date,
		Responsible: input.Responsible,
	}

	assemblyID, err := s.assemblyRepo.InsertHeader(txCtx, tx, profile.Assembly, header)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.AssemblyLine, 0, len(input.Lines))
	for _, ln := range input.Lines {
		lines = append(lines, domain.AssemblyLine{MaterialID: ln.MaterialID, Qty: ln.Qty})
	}

	if len(lines) == 0 && deviceID != nil && profile.HasBOM {
		lines, err = s.assemblyRepo.BOMLines(txCtx, tx, *deviceID, input.Qty)
		if err != nil {
			return nil, err
		}
	}

	// Finished-device stock may not grow out of thin air: when material
	// consumption is tracked, an assembly without lines and without a BOM
	// is rejected.
	if profile.MaterialTracked() && len(lines) == 0 {
		return nil, apperrors.NewValidationError("no material lines or BOM for this device; stock cannot be increased")
	}

	for _, ln := range lines {
		if ln.MaterialID <= 0 {
			return nil, apperrors.NewValidationError("invalid line: material id is required")
		}
		if ln.Qty <= 0 {
			return nil, apperrors.NewValidationError("invalid line: qty must be positive")
		}

		exists, err := s.materialRepo.Exists(txCtx, tx, ln.MaterialID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NewValidationError(fmt.Sprintf("material with id %d does not exist", ln.MaterialID))
		}

		if err := s.assemblyRepo.InsertLine(txCtx, tx, assemblyID, ln); err != nil {
			return nil, err
		}
	}

	if deviceID != nil && input.Qty > 0 {
		if err := s.ledger.IncreaseDeviceStock(txCtx, tx, profile.DeviceStock, *deviceID, input.Qty); err != nil {
			return nil, err
		}
	}

	if profile.MaterialTracked() {
		for _, ln := range lines {
			ok, err := s.ledger.DecreaseMaterialStock(txCtx, tx, profile.MaterialStock, ln.MaterialID, ln.Qty)
			if err != nil {
				return nil, err
			}
			if !ok {
				s.logger.Warn("assembly rolled back: insufficient material stock",
					zap.Int("assemblyId", assemblyID),
					zap.Int("materialId", ln.MaterialID),
					zap.Int("qty", ln.Qty),
				)
				return nil, apperrors.NewConflictError(fmt.Sprintf("insufficient stock for material id %d", ln.MaterialID))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit assembly", zap.Int("assemblyId", assemblyID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("assembly committed",
		zap.Int("assemblyId", assemblyID),
		zap.Int("qty", input.Qty),
		zap.Int("lineCount", len(lines)),
	)

	return &dto.AssemblyResult{ID: assemblyID}, nil
}

// DeleteAssembly removes an assembly header. Without cascade a delete
// blocked by remaining lines is reported as a referential conflict carrying
// the dependent count; with cascade the lines go first, same transaction.
func (s *AssemblyService) DeleteAssembly(ctx context.Context, id int, cascade bool) error {
	if !cascade {
		affected, err := s.assemblyRepo.DeleteHeaderDirect(ctx, id)
		if err != nil {
			if commons.IsForeignKeyViolation(err) {
				count, countErr := s.assemblyRepo.CountLines(ctx, id)
				if countErr != nil {
					count = 0
				}
				return apperrors.NewReferentialConflictError(
					"assembly has line items; delete them or request cascade", count)
			}
			return err
		}
		if affected == 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("assembly with id %d not found", id))
		}
		return nil
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.assemblyRepo.DeleteLines(txCtx, tx, id); err != nil {
		return err
	}

	affected, err := s.assemblyRepo.DeleteHeader(txCtx, tx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("assembly with id %d not found", id))
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("assembly deleted", zap.Int("assemblyId", id), zap.Bool("cascade", true))
	return nil
}

func (s *AssemblyService) ListAssemblies(ctx context.Context) ([]domain.AssemblySummary, error) {
	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("resolving storage profile", err)
	}

	return s.assemblyRepo.List(ctx, profile.Assembly)
}
