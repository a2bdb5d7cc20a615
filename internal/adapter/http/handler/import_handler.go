package handler

import (
	"context"
	"net/http"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/usecase"
)

// ImportService defines the behavior needed by ImportHandler.
type ImportService interface {
	Import(ctx context.Context, input usecase.ImportInput) (*usecase.ImportResult, error)
}

// ImportHandler loads accounts, opening balances and entries in one call.
type ImportHandler struct {
	importUC ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importUC ImportService) *ImportHandler {
	return &ImportHandler{importUC: importUC}
}

// Import applies the batch atomically.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid import", err)
		return
	}

	result, err := h.importUC.Import(r.Context(), input)
	if err != nil {
		writeDomainError(w, "import failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ImportFromResult(result))
}
