package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// AccountService is the part of the account registry the HTTP layer uses.
type AccountService interface {
	RegisterAccount(ctx context.Context, input usecase.RegisterAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, name string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
	DeactivateAccount(ctx context.Context, name string) (*domain.Account, error)
}

// AccountHandler serves the account registry.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// accountNameParam returns the decoded {name} path segment. Names may hold
// characters such as '/' that only survive the router percent-encoded.
func accountNameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	if raw == "" {
		return "", fmt.Errorf("%w: missing account name", domain.ErrInvalidAccountName)
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidAccountName, err)
	}
	return name, nil
}

// Register handles POST /accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid account", err)
		return
	}

	account, err := h.accounts.RegisterAccount(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to register account", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get handles GET /accounts/{name}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := accountNameParam(r)
	if err != nil {
		writeDomainError(w, "invalid account name", err)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), name)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List handles GET /accounts, ordered by name.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), usecase.ListAccountsInput{
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Deactivate handles POST /accounts/{name}/deactivate. The account keeps
// its history but accepts no new postings.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	name, err := accountNameParam(r)
	if err != nil {
		writeDomainError(w, "invalid account name", err)
		return
	}

	account, err := h.accounts.DeactivateAccount(r.Context(), name)
	if err != nil {
		writeDomainError(w, "failed to deactivate account", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
