package usecase

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"medstock/internal/commons"
	"medstock/internal/domain"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
)

type SaleOrchestrator interface {
	CreateSale(ctx context.Context, input dto.SaleInput) (*dto.SaleResult, error)
	DeleteSale(ctx context.Context, id int, restock bool) (bool, error)
	ListSales(ctx context.Context) ([]domain.SaleSummary, error)
}

// SaleUseCase validates input before any transaction starts and retries the
// transactional orchestrator on deadlocks.
type SaleUseCase struct {
	svc              SaleOrchestrator
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewSaleUseCase(svc SaleOrchestrator, logger *zap.Logger, maxRetryAttempts int) *SaleUseCase {
	return &SaleUseCase{
		svc:              svc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *SaleUseCase) CreateSale(ctx context.Context, input dto.SaleInput) (*dto.SaleResult, error) {
	uc.logger.Info("sale started",
		zap.String("customer", input.Customer),
		zap.Int("lineCount", len(input.Lines)),
	)

	var details []apperrors.ValidationDetail

	if strings.TrimSpace(input.Customer) == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customer",
			Message: "customer is required",
		})
	}

	if len(input.Lines) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "at least one item is required",
		})
	}

	for idx, ln := range input.Lines {
		if strings.TrimSpace(ln.DeviceRef) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].device",
				Message: "device is required",
			})
		}
		if ln.Qty <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].qty",
				Message: "qty must be a positive integer",
			})
		}
		if ln.UnitPrice != nil && ln.UnitPrice.IsNegative() {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].unitPrice",
				Message: "unitPrice must be non-negative",
			})
		}
	}

	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return commons.WithDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() (*dto.SaleResult, error) {
		return uc.svc.CreateSale(ctx, input)
	})
}

func (uc *SaleUseCase) DeleteSale(ctx context.Context, id int, restock bool) (bool, error) {
	return commons.WithDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() (bool, error) {
		return uc.svc.DeleteSale(ctx, id, restock)
	})
}

func (uc *SaleUseCase) ListSales(ctx context.Context) ([]domain.SaleSummary, error) {
	return uc.svc.ListSales(ctx)
}
