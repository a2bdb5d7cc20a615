package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// ClosingService defines the behavior needed by PeriodHandler.
type ClosingService interface {
	OpenPeriod(ctx context.Context, input usecase.OpenPeriodInput) (*domain.Period, error)
	GetPeriod(ctx context.Context, id string) (*domain.Period, error)
	ListPeriods(ctx context.Context) ([]*domain.Period, error)
	ClosePeriod(ctx context.Context, input usecase.ClosePeriodInput) (*usecase.ClosePeriodResult, error)
}

// PeriodHandler handles accounting period HTTP requests.
type PeriodHandler struct {
	closingUC ClosingService
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(closingUC ClosingService) *PeriodHandler {
	return &PeriodHandler{closingUC: closingUC}
}

// Open opens a new accounting period.
func (h *PeriodHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenPeriodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.closingUC.OpenPeriod(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to open period", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// Get retrieves a period by ID.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	period, err := h.closingUC.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List lists every period ordered by start date.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	periods, err := h.closingUC.ListPeriods(r.Context())
	if err != nil {
		writeDomainError(w, "failed to list periods", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodsFromDomain(periods))
}

// Close closes a period, posting the closing entry. The body is optional.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.ClosePeriodRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.closingUC.ClosePeriod(r.Context(), usecase.ClosePeriodInput{
		PeriodID:         chi.URLParam(r, "id"),
		RetainedEarnings: req.RetainedEarnings,
	})
	if err != nil {
		writeDomainError(w, "failed to close period", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosePeriodFromResult(result))
}
