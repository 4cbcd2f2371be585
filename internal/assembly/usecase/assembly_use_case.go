package usecase

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"medstock/internal/commons"
	"medstock/internal/domain"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
)

type AssemblyOrchestrator interface {
	CreateAssembly(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error)
	DeleteAssembly(ctx context.Context, id int, cascade bool) error
	ListAssemblies(ctx context.Context) ([]domain.AssemblySummary, error)
}

// AssemblyUseCase validates input before any transaction starts and retries
// the transactional orchestrator on deadlocks.
type AssemblyUseCase struct {
	svc              AssemblyOrchestrator
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewAssemblyUseCase(svc AssemblyOrchestrator, logger *zap.Logger, maxRetryAttempts int) *AssemblyUseCase {
	return &AssemblyUseCase{
		svc:              svc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *AssemblyUseCase) CreateAssembly(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error) {
	uc.logger.Info("assembly started",
		zap.String("device", input.DeviceRef),
		zap.Int("qty", input.Qty),
		zap.Int("explicitLines", len(input.Lines)),
	)

	if input.Qty == 0 {
		input.Qty = 1
	}
	if input.Qty < 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "qty",
			Message: "qty must be a positive integer",
		})
	}

	var details []apperrors.ValidationDetail
	for idx, ln := range input.Lines {
		if ln.MaterialID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "lines[" + strconv.Itoa(idx) + "].materialId",
				Message: "materialId must be a positive integer",
			})
		}
		if ln.Qty <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "lines[" + strconv.Itoa(idx) + "].qty",
				Message: "qty must be a positive integer",
			})
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	return commons.WithDeadlockRetry(uc.logger, uc.maxRetryAttempts, func() (*dto.AssemblyResult, error) {
		return uc.svc.CreateAssembly(ctx, input)
	})
}

func (uc *AssemblyUseCase) DeleteAssembly(ctx context.Context, id int, cascade bool) error {
	return uc.svc.DeleteAssembly(ctx, id, cascade)
}

func (uc *AssemblyUseCase) ListAssemblies(ctx context.Context) ([]domain.AssemblySummary, error) {
	return uc.svc.ListAssemblies(ctx)
}
