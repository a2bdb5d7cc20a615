package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	TrialBalance(ctx context.Context, asOf *time.Time) (*domain.TrialBalance, error)
	IncomeStatement(ctx context.Context, input usecase.IncomeStatementInput) (*domain.IncomeStatement, error)
	BalanceSheet(ctx context.Context, input usecase.BalanceSheetInput) (*domain.BalanceSheet, error)
}

// ReportHandler serves financial reports.
type ReportHandler struct {
	reportUC ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC}
}

// TrialBalance returns the trial balance as of an optional date.
func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	tb, err := h.reportUC.TrialBalance(r.Context(), asOf)
	if err != nil {
		writeDomainError(w, "failed to build trial balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(tb))
}

// IncomeStatement returns the income statement for a range or a period.
func (h *ReportHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	stmt, err := h.reportUC.IncomeStatement(r.Context(), usecase.IncomeStatementInput{
		From:     from,
		To:       to,
		PeriodID: r.URL.Query().Get("period"),
	})
	if err != nil {
		writeDomainError(w, "failed to build income statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomeStatementFromDomain(stmt))
}

// BalanceSheet returns the balance sheet as of a date or a period end.
func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateQuery(r, "as_of")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	sheet, err := h.reportUC.BalanceSheet(r.Context(), usecase.BalanceSheetInput{
		AsOf:     asOf,
		PeriodID: r.URL.Query().Get("period"),
	})
	if err != nil {
		writeDomainError(w, "failed to build balance sheet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromDomain(sheet))
}
