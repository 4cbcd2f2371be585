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

type AssemblyUseCase interface {
	CreateAssembly(ctx context.Context, input dto.AssemblyInput) (*dto.AssemblyResult, error)
	DeleteAssembly(ctx context.Context, id int, cascade bool) error
	ListAssemblies(ctx context.Context) ([]domain.AssemblySummary, error)
}

type AssemblyController struct {
	useCase AssemblyUseCase
	logger  *zap.Logger
}

func NewAssemblyController(useCase AssemblyUseCase, logger *zap.Logger) *AssemblyController {
	return &AssemblyController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *AssemblyController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateAssemblyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	lines := make([]dto.AssemblyLineInput, len(req.Lines))
	for i, ln := range req.Lines {
		lines[i] = dto.AssemblyLineInput{MaterialID: ln.MaterialID, Qty: ln.Qty}
	}

	input := dto.AssemblyInput{
		DeviceRef:   req.Device,
		Qty:         req.Qty,
		Product:     req.Product,
		Components:  req.Components,
		Date:        req.Date,
		Responsible: req.Responsible,
		Lines:       lines,
	}

	result, err := c.useCase.CreateAssembly(r.Context(), input)
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateAssemblyResponse{
		TraceID:   traceID,
		ID:        result.ID,
		Timestamp: time.Now().UTC(),
	})
}

func (c *AssemblyController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	summaries, err := c.useCase.ListAssemblies(r.Context())
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	items := make([]dto.AssemblyListItem, len(summaries))
	for i, s := range summaries {
		items[i] = dto.AssemblyListItem{
			ID:          s.ID,
			Product:     s.Product,
			Components:  s.Components,
			Date:        s.Date,
			Responsible: s.Responsible,
			LineCount:   s.LineCount,
		}
	}

	writeJSON(w, http.StatusOK, items)
}

func (c *AssemblyController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	cascade := parseBoolFlag(r.URL.Query().Get("cascade"))

	if err := c.useCase.DeleteAssembly(r.Context(), id, cascade); err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteAssemblyResponse{
		TraceID:  traceID,
		Cascaded: cascade,
	})
}

func parseBoolFlag(v string) bool {
	switch v {
	case "1", "true", "yes":
		return true
	}
	return false
}

type errorResponse struct {
	TraceID    string                       `json:"traceId"`
	Code       string                       `json:"code"`
	Message    string                       `json:"message"`
	Details    []apperrors.ValidationDetail `json:"details,omitempty"`
	Dependents *int                         `json:"dependents,omitempty"`
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

	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	if rce, ok := apperrors.IsReferentialConflictError(err); ok {
		resp := errorResponse{
			TraceID:    traceID,
			Code:       "REFERENTIAL_CONFLICT",
			Message:    rce.Message,
			Dependents: &rce.Dependents,
		}
		writeJSON(w, http.StatusConflict, resp)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		writeError(w, traceID, http.StatusConflict, "DEADLOCK", err.Error(), nil)
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
