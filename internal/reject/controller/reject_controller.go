package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medstock/internal/domain"
	"medstock/internal/dto"
	apperrors "medstock/internal/errors"
)

type RejectUseCase interface {
	CreateReject(ctx context.Context, input dto.RejectInput) (*dto.RejectResult, error)
	ListRejects(ctx context.Context) ([]domain.Reject, error)
	DeleteReject(ctx context.Context, id int) error
}

type RejectController struct {
	useCase RejectUseCase
	logger  *zap.Logger
}

func NewRejectController(useCase RejectUseCase, logger *zap.Logger) *RejectController {
	return &RejectController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *RejectController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateRejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	result, err := c.useCase.CreateReject(r.Context(), dto.RejectInput{
		DeviceID:   req.DeviceID,
		Cause:      req.Cause,
		Qty:        req.Qty,
		Date:       req.Date,
		ReportedBy: req.ReportedBy,
	})
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateRejectResponse{
		TraceID:   traceID,
		ID:        result.ID,
		Timestamp: time.Now().UTC(),
	})
}

func (c *RejectController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	rejects, err := c.useCase.ListRejects(r.Context())
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	items := make([]dto.RejectListItem, len(rejects))
	for i, rej := range rejects {
		items[i] = dto.RejectListItem{
			ID:         rej.ID,
			DeviceID:   rej.DeviceID,
			DeviceName: rej.DeviceName,
			Cause:      rej.Cause,
			Qty:        rej.Qty,
			Date:       rej.Date,
			ReportedBy: rej.ReportedBy,
		}
	}

	writeJSON(w, http.StatusOK, items)
}

func (c *RejectController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	if err := c.useCase.DeleteReject(r.Context(), id); err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	TraceID string                       `json:"traceId"`
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	writeJSON(w, status, errorResponse{
		TraceID: traceID,
		Code:    code,
		Message: message,
		Details: details,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
