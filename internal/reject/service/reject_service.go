package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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

type RejectRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, sch domain.RejectSchema, rej domain.Reject) (int, error)
	List(ctx context.Context, sch domain.RejectSchema) ([]domain.Reject, error)
	Delete(ctx context.Context, id int) (int64, error)
}

// RejectService records discarded units. The insert runs in a transaction
// only because non-identity schemas assign the key max+1, which must not
// race the insert.
type RejectService struct {
	db         TransactionManager
	schema     SchemaResolver
	rejectRepo RejectRepository
	logger     *zap.Logger
	txTimeout  time.Duration
}

func NewRejectService(
	db TransactionManager,
	schema SchemaResolver,
	rejectRepo RejectRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *RejectService {
	return &RejectService{
		db:         db,
		schema:     schema,
		rejectRepo: rejectRepo,
		logger:     logger,
		txTimeout:  txTimeout,
	}
}

func (s *RejectService) CreateReject(ctx context.Context, input dto.RejectInput) (*dto.RejectResult, error) {
	var details []apperrors.ValidationDetail
	if input.DeviceID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "deviceId",
			Message: "deviceId must be a positive integer",
		})
	}
	if input.Qty <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "qty",
			Message: "qty must be a positive integer",
		})
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("resolving storage profile", err)
	}

	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id, err := s.rejectRepo.Insert(txCtx, tx, profile.Reject, domain.Reject{
		DeviceID:   input.DeviceID,
		Cause:      input.Cause,
		Qty:        input.Qty,
		Date:       date,
		ReportedBy: input.ReportedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("reject recorded", zap.Int("rejectId", id), zap.Int("deviceId", input.DeviceID))

	return &dto.RejectResult{ID: id}, nil
}

func (s *RejectService) ListRejects(ctx context.Context) ([]domain.Reject, error) {
	profile, err := s.schema.ResolveProfile(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("resolving storage profile", err)
	}

	return s.rejectRepo.List(ctx, profile.Reject)
}

func (s *RejectService) DeleteReject(ctx context.Context, id int) error {
	affected, err := s.rejectRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("reject with id %d not found", id))
	}

	return nil
}
