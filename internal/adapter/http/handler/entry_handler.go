package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	RecordEntry(ctx context.Context, input usecase.RecordEntryInput) (*domain.JournalEntry, error)
	RecordOpeningBalances(ctx context.Context, input usecase.RecordOpeningBalancesInput) (*domain.JournalEntry, error)
	ReverseEntry(ctx context.Context, input usecase.ReverseEntryInput) (*domain.JournalEntry, error)
	GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
}

// EntryHandler handles journal entry HTTP requests.
type EntryHandler struct {
	entryUC EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC EntryService) *EntryHandler {
	return &EntryHandler{entryUC: entryUC}
}

// Record records a balanced journal entry.
func (h *EntryHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid entry", err)
		return
	}

	entry, err := h.entryUC.RecordEntry(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to record entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// RecordOpening records the opening balances entry.
func (h *EntryHandler) RecordOpening(w http.ResponseWriter, r *http.Request) {
	var req dto.OpeningBalancesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.RecordOpeningBalances(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record opening balances", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Reverse records the reversal of an entry. The body is optional.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req dto.ReverseEntryRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.ReverseEntry(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to reverse entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries in journal order, optionally filtered by date range
// and account.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		Filter: domain.EntryFilter{
			From:    from,
			To:      to,
			Account: r.URL.Query().Get("account"),
		},
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}
