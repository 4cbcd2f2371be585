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

type SaleUseCase interface {
	CreateSale(ctx context.Context, input dto.SaleInput) (*dto.SaleResult, error)
	DeleteSale(ctx context.Context, id int, restock bool) (bool, error)
	ListSales(ctx context.Context) ([]domain.SaleSummary, error)
}

type SaleController struct {
	useCase SaleUseCase
	logger  *zap.Logger
}

func NewSaleController(useCase SaleUseCase, logger *zap.Logger) *SaleController {
	return &SaleController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *SaleController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	lines := make([]dto.SaleLineInput, len(req.Items))
	for i, item := range req.Items {
		lines[i] = dto.SaleLineInput{
			DeviceRef: item.Device,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
		}
	}

	input := dto.SaleInput{
		Customer: req.Customer,
		Date:     req.Date,
		StaffID:  req.StaffID,
		Lines:    lines,
	}

	result, err := c.useCase.CreateSale(r.Context(), input)
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	w.Header().Set("Location", "/api/sales/"+strconv.Itoa(result.ID))
	writeJSON(w, http.StatusCreated, dto.CreateSaleResponse{
		TraceID:   traceID,
		ID:        result.ID,
		Total:     result.Total,
		Timestamp: time.Now().UTC(),
	})
}

func (c *SaleController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	summaries, err := c.useCase.ListSales(r.Context())
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	items := make([]dto.SaleListItem, len(summaries))
	for i, s := range summaries {
		items[i] = dto.SaleListItem{
			ID:       s.ID,
			Date:     s.Date,
			Customer: s.Customer,
			StaffID:  s.StaffID,
			Total:    s.Total,
			Items:    s.Items,
		}
	}

	writeJSON(w, http.StatusOK, items)
}

func (c *SaleController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	restock := parseBoolFlag(r.URL.Query().Get("restock"))

	restocked, err := c.useCase.DeleteSale(r.Context(), id, restock)
	if err != nil {
		handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteSaleResponse{
		TraceID:   traceID,
		Restocked: restocked,
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
		writeJSON(w, http.StatusConflict, errorResponse{
			TraceID:    traceID,
			Code:       "REFERENTIAL_CONFLICT",
			Message:    rce.Message,
			Dependents: &rce.Dependents,
		})
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
