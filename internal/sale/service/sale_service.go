package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

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

type DeviceRepository interface {
	ResolveRef(ctx context.Context, tx *sql.Tx, ref string) (int, error)
	QuoteForSale(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, id int) (*domain.DeviceQuote, error)
}

type StaffRepository interface {
	Exists(ctx context.Context, tx *sql.Tx, id int) (bool, error)
}

type SaleRepository interface {
	InsertHeader(ctx context.Context, tx *sql.Tx, sch domain.SaleSchema, s domain.NewSale) (int, error)
	InsertLine(ctx context.Context, tx *sql.Tx, saleID int, line domain.SaleLine) error
	ConsumedLines(ctx context.Context, tx *sql.Tx, saleID int) ([]domain.ConsumedLine, error)
	DeleteLines(ctx context.Context, tx *sql.Tx, saleID int) error
	DeleteHeader(ctx context.Context, tx *sql.Tx, saleID int) (int64, error)
	List(ctx context.Context, sch domain.SaleSchema) ([]domain.SaleSummary, error)
}

type StockLedger interface {
	IncreaseDeviceStock(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, deviceID, qty int) error
	DecreaseDeviceStock(ctx context.Context, tx *sql.Tx, mode domain.DeviceStockMode, deviceID, qty int) (bool, error)
}

// SaleService runs sale events as single transactions: every line is
// price-checked and stock-checked before any write, and the conditional
// decrement re-checks at write time to close the race window.
type SaleService struct {
	db         TransactionManager
	schema     SchemaResolver
	deviceRepo DeviceRepository
	staffRepo  StaffRepository
	saleRepo   SaleRepository
	ledger     StockLedger
	logger     *zap.Logger
	txTimeout  time.Duration
}

func NewSaleService(
	db TransactionManager,
	schema SchemaResolver,
	deviceRepo DeviceRepository,
	staffRepo StaffRepository,
	saleRepo SaleRepository,
	ledger StockLedger,
	logger *zap.Logger,
	txTimeout time.Duration,
) *SaleService {
	return &SaleService{
		db:         db,
		schema:     schema,
		deviceRepo: deviceRepo,
		staffRepo:  staffRepo,
		saleRepo:   saleRepo,
		ledger:     ledger,
		logger:     logger,
		txTimeout:  txTimeout,
	}
}

func (s *SaleService) CreateSale(ctx context.Context, input dto.SaleInput) (*dto.SaleResult, error) {
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
	defer tx.Rollback()

	if profile.Sale.HasStaffID && input.StaffID != nil {
		exists, err := s.staffRepo.Exists(txCtx, tx, *input.StaffID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.NewValidationError(fmt.Sprintf("staff with id %d does not exist", *input.StaffID))
		}
	}

	// Pre-check every line before writing anything: a sale either fits
	// entirely in current stock or fails as a whole.
	lines := make([]domain.SaleLine, 0, len(input.Lines))
	for _, ln := range input.Lines {
		deviceID, err := s.deviceRepo.ResolveRef(txCtx, tx, ln.DeviceRef)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError(fmt.Sprintf("device not found: %s", ln.DeviceRef))
			}
			return nil, err
		}

		quote, err := s.deviceRepo.QuoteForSale(txCtx, tx, profile.DeviceStock, deviceID)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError(fmt.Sprintf("device not found: %s", ln.DeviceRef))
			}
			return nil, err
		}

		if quote.Stock < ln.Qty {
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"insufficient stock for %s (id %d), available: %d", quote.Name, deviceID, quote.Stock))
		}

		price := quote.Price
		if ln.UnitPrice != nil {
			price = *ln.UnitPrice
		}

		lines = append(lines, domain.SaleLine{
			DeviceID:  deviceID,
			Name:      quote.Name,
			Qty:       ln.Qty,
			UnitPrice: price,
		})
	}

	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.Amount())
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	saleID, err := s.saleRepo.InsertHeader(txCtx, tx, profile.Sale, domain.NewSale{
		Date:     date,
		Customer: input.Customer,
		StaffID:  input.StaffID,
		Total:    total,
	})
	if err != nil {
		return nil, err
	}

	for _, ln := range lines {
		if err := s.saleRepo.InsertLine(txCtx, tx, saleID, ln); err != nil {
			return nil, err
		}

		// The guarded decrement re-checks stock at write time; a failure
		// here is a concurrent sale winning the race since the pre-check.
		ok, err := s.ledger.DecreaseDeviceStock(txCtx, tx, profile.DeviceStock, ln.DeviceID, ln.Qty)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.logger.Warn("sale rolled back: insufficient device stock",
				zap.Int("saleId", saleID),
				zap.Int("deviceId", ln.DeviceID),
				zap.Int("qty", ln.Qty),
			)
			return nil, apperrors.NewConflictError(fmt.Sprintf(
				"insufficient stock for %s (id %d)", ln.Name, ln.DeviceID))
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit sale", zap.Int("saleId", saleID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale committed",
		zap.Int("saleId", saleID),
		zap.Int("lineCount", len(lines)),
		zap.String("total", total.String()),
	)

	return &dto.SaleResult{ID: saleID, Total: total}, nil
}

// DeleteSale removes a sale and its lines in one transaction. With restock,
// every consumed quantity is added back to whichever device-stock
// representation is active right now.
func (s *SaleService) DeleteSale(ctx context.Context, id int, restock bool) (bool, error) {
	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return false, apperrors.NewInternalError("resolving storage profile", err)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var consumed []domain.ConsumedLine
	if restock {
		consumed, err = s.saleRepo.ConsumedLines(txCtx, tx, id)
		if err != nil {
			return false, err
		}
	}

	if err := s.saleRepo.DeleteLines(txCtx, tx, id); err != nil {
		return false, err
	}

	affected, err := s.saleRepo.DeleteHeader(txCtx, tx, id)
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, apperrors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}

	for _, ln := range consumed {
		if err := s.ledger.IncreaseDeviceStock(txCtx, tx, profile.DeviceStock, ln.DeviceID, ln.Qty); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	restocked := restock && len(consumed) > 0
	s.logger.Info("sale deleted", zap.Int("saleId", id), zap.Bool("restocked", restocked))

	return restocked, nil
}

func (s *SaleService) ListSales(ctx context.Context) ([]domain.SaleSummary, error) {
	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("resolving storage profile", err)
	}

	return s.saleRepo.List(ctx, profile.Sale)
}
