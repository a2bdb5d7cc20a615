package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	BalanceOf(ctx context.Context, name string, asOf *time.Time) (decimal.Decimal, error)
	Balances(ctx context.Context, input usecase.BalancesInput) (*domain.BalanceSet, error)
	AccountLedger(ctx context.Context, input usecase.AccountLedgerInput) (*domain.AccountLedger, error)
}

// BalanceHandler serves balances and account ledgers.
type BalanceHandler struct {
	balanceUC BalanceService
	accountUC AccountService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService, accountUC AccountService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC, accountUC: accountUC}
}

// Balance returns the balance of one account as of an optional date.
func (h *BalanceHandler) Balance(w http.ResponseWriter, r *http.Request) {
	name, err := accountNameParam(r)
	if err != nil {
		writeDomainError(w, "invalid account name", err)
		return
	}
	asOf, err := parseDateQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), name)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	balance, err := h.balanceUC.BalanceOf(r.Context(), name, asOf)
	if err != nil {
		writeDomainError(w, "failed to compute balance", err)
		return
	}

	resp := dto.BalanceResponse{
		Account:    account.Name,
		NormalSide: string(account.NormalSide()),
		Balance:    balance,
	}
	if asOf != nil {
		resp.AsOf = &dto.Date{Time: *asOf}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balances returns every account's balance over an optional date range.
// exclude takes a comma separated list of entry kinds to skip.
func (h *BalanceHandler) Balances(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	var exclude []domain.EntryKind
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		for _, k := range strings.Split(raw, ",") {
			exclude = append(exclude, domain.EntryKind(strings.TrimSpace(k)))
		}
	}

	bs, err := h.balanceUC.Balances(r.Context(), usecase.BalancesInput{From: from, To: to, ExcludeKinds: exclude})
	if err != nil {
		writeDomainError(w, "failed to compute balances", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(bs))
}

// Ledger returns the T-account view of one account.
func (h *BalanceHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	name, err := accountNameParam(r)
	if err != nil {
		writeDomainError(w, "invalid account name", err)
		return
	}
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	ledger, err := h.balanceUC.AccountLedger(r.Context(), usecase.AccountLedgerInput{
		From:    from,
		To:      to,
		Account: name,
	})
	if err != nil {
		writeDomainError(w, "failed to build ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountLedgerFromDomain(ledger))
}
