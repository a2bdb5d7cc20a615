package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Classification   string    `json:"classification"`
	NormalSide       string    `json:"normal_side"`
	ContraOf         string    `json:"contra_of,omitempty"`
	Contra           bool      `json:"contra"`
	RetainedEarnings bool      `json:"retained_earnings"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:               a.ID,
		Name:             a.Name,
		Classification:   string(a.Classification),
		NormalSide:       string(a.NormalSide()),
		ContraOf:         a.ContraOf,
		Contra:           a.Contra,
		RetainedEarnings: a.RetainedEarnings,
		Active:           a.Active,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// PostingResponse is one line of an entry.
type PostingResponse struct {
	Account string          `json:"account"`
	Side    string          `json:"side"`
	Amount  decimal.Decimal `json:"amount"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID          string            `json:"id"`
	Sequence    int64             `json:"sequence"`
	Date        Date              `json:"date"`
	Kind        string            `json:"kind"`
	Description string            `json:"description,omitempty"`
	ReversesID  *string           `json:"reverses_id,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Postings    []PostingResponse `json:"postings"`
	CreatedAt   time.Time         `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.JournalEntry) *EntryResponse {
	postings := make([]PostingResponse, len(e.Postings))
	for i, p := range e.Postings {
		postings[i] = PostingResponse{Account: p.Account, Side: string(p.Side), Amount: p.Amount}
	}
	return &EntryResponse{
		ID:          e.ID,
		Sequence:    e.Sequence,
		Date:        Date{e.Date},
		Kind:        string(e.Kind),
		Description: e.Description,
		ReversesID:  e.ReversesID,
		Metadata:    e.Metadata,
		Postings:    postings,
		CreatedAt:   e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// PeriodResponse represents an accounting period.
type PeriodResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Start          Date       `json:"start"`
	End            Date       `json:"end"`
	Status         string     `json:"status"`
	ClosingEntryID *string    `json:"closing_entry_id,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PeriodFromDomain converts domain period to response.
func PeriodFromDomain(p *domain.Period) *PeriodResponse {
	return &PeriodResponse{
		ID:             p.ID,
		Name:           p.Name,
		Start:          Date{p.Start},
		End:            Date{p.End},
		Status:         string(p.Status),
		ClosingEntryID: p.ClosingEntryID,
		ClosedAt:       p.ClosedAt,
		CreatedAt:      p.CreatedAt,
	}
}

// PeriodsFromDomain converts domain periods to responses.
func PeriodsFromDomain(periods []*domain.Period) []*PeriodResponse {
	result := make([]*PeriodResponse, len(periods))
	for i, p := range periods {
		result[i] = PeriodFromDomain(p)
	}
	return result
}

// ClosePeriodResponse is the outcome of closing a period.
type ClosePeriodResponse struct {
	Period       *PeriodResponse `json:"period"`
	ClosingEntry *EntryResponse  `json:"closing_entry,omitempty"`
}

// ClosePeriodFromResult converts a close result to response.
func ClosePeriodFromResult(r *usecase.ClosePeriodResult) *ClosePeriodResponse {
	resp := &ClosePeriodResponse{Period: PeriodFromDomain(r.Period)}
	if r.Entry != nil {
		resp.ClosingEntry = EntryFromDomain(r.Entry)
	}
	return resp
}

// BalanceResponse is the balance of one account.
type BalanceResponse struct {
	Account    string          `json:"account"`
	NormalSide string          `json:"normal_side"`
	Balance    decimal.Decimal `json:"balance"`
	AsOf       *Date           `json:"as_of,omitempty"`
}

// BalanceLineResponse is one account of a balance listing.
type BalanceLineResponse struct {
	Account        string          `json:"account"`
	Classification string          `json:"classification"`
	Balance        decimal.Decimal `json:"balance"`
	Side           string          `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
}

// BalancesResponse lists every account's balance.
type BalancesResponse struct {
	Accounts     []BalanceLineResponse `json:"accounts"`
	TotalDebits  decimal.Decimal       `json:"total_debits"`
	TotalCredits decimal.Decimal       `json:"total_credits"`
}

// BalancesFromDomain converts a balance set to response.
func BalancesFromDomain(bs *domain.BalanceSet) *BalancesResponse {
	accounts := bs.Accounts()
	resp := &BalancesResponse{Accounts: make([]BalanceLineResponse, 0, len(accounts))}
	for _, a := range accounts {
		side, amount := bs.Column(a.Name)
		resp.Accounts = append(resp.Accounts, BalanceLineResponse{
			Account:        a.Name,
			Classification: string(a.Classification),
			Balance:        bs.Get(a.Name),
			Side:           string(side),
			Amount:         amount,
		})
	}
	resp.TotalDebits, resp.TotalCredits = bs.Totals()
	return resp
}

// LedgerLineResponse is one posting of an account ledger.
type LedgerLineResponse struct {
	Sequence    int64           `json:"sequence"`
	Date        Date            `json:"date"`
	EntryID     string          `json:"entry_id"`
	Description string          `json:"description,omitempty"`
	Kind        string          `json:"kind"`
	Side        string          `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// AccountLedgerResponse is the T-account view of one account.
type AccountLedgerResponse struct {
	Account *AccountResponse     `json:"account"`
	From    *Date                `json:"from,omitempty"`
	To      *Date                `json:"to,omitempty"`
	Opening decimal.Decimal      `json:"opening"`
	Debits  decimal.Decimal      `json:"debits"`
	Credits decimal.Decimal      `json:"credits"`
	Closing decimal.Decimal      `json:"closing"`
	Lines   []LedgerLineResponse `json:"lines"`
}

// AccountLedgerFromDomain converts an account ledger to response.
func AccountLedgerFromDomain(l *domain.AccountLedger) *AccountLedgerResponse {
	lines := make([]LedgerLineResponse, len(l.Lines))
	for i, line := range l.Lines {
		lines[i] = LedgerLineResponse{
			Sequence:    line.Sequence,
			Date:        Date{line.Date},
			EntryID:     line.EntryID,
			Description: line.Description,
			Kind:        string(line.Kind),
			Side:        string(line.Side),
			Amount:      line.Amount,
			Balance:     line.Balance,
		}
	}
	return &AccountLedgerResponse{
		Account: AccountFromDomain(l.Account),
		From:    datePtr(l.From),
		To:      datePtr(l.To),
		Opening: l.Opening,
		Debits:  l.Debits,
		Credits: l.Credits,
		Closing: l.Closing,
		Lines:   lines,
	}
}

// TrialBalanceLineResponse is one line of a trial balance.
type TrialBalanceLineResponse struct {
	Account        string          `json:"account"`
	Classification string          `json:"classification"`
	Contra         bool            `json:"contra"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
}

// TrialBalanceResponse represents a trial balance.
type TrialBalanceResponse struct {
	AsOf         *Date                      `json:"as_of,omitempty"`
	Lines        []TrialBalanceLineResponse `json:"lines"`
	TotalDebits  decimal.Decimal            `json:"total_debits"`
	TotalCredits decimal.Decimal            `json:"total_credits"`
	Balanced     bool                       `json:"balanced"`
}

// TrialBalanceFromDomain converts a trial balance to response.
func TrialBalanceFromDomain(tb *domain.TrialBalance) *TrialBalanceResponse {
	lines := make([]TrialBalanceLineResponse, len(tb.Lines))
	for i, l := range tb.Lines {
		lines[i] = TrialBalanceLineResponse{
			Account:        l.Account,
			Classification: string(l.Classification),
			Contra:         l.Contra,
			Debit:          l.Debit,
			Credit:         l.Credit,
		}
	}
	return &TrialBalanceResponse{
		AsOf:         datePtr(tb.AsOf),
		Lines:        lines,
		TotalDebits:  tb.TotalDebits,
		TotalCredits: tb.TotalCredits,
		Balanced:     tb.Balanced,
	}
}

// ReportLineResponse is one account of a statement section.
type ReportLineResponse struct {
	Account string          `json:"account"`
	Contra  bool            `json:"contra"`
	Amount  decimal.Decimal `json:"amount"`
}

// SectionResponse is a group of statement lines.
type SectionResponse struct {
	Classification string               `json:"classification"`
	Lines          []ReportLineResponse `json:"lines"`
	Total          decimal.Decimal      `json:"total"`
}

func sectionFromDomain(s domain.Section) SectionResponse {
	lines := make([]ReportLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = ReportLineResponse{Account: l.Account, Contra: l.Contra, Amount: l.Amount}
	}
	return SectionResponse{Classification: string(s.Classification), Lines: lines, Total: s.Total}
}

// IncomeStatementResponse represents an income statement.
type IncomeStatementResponse struct {
	From      *Date           `json:"from,omitempty"`
	To        *Date           `json:"to,omitempty"`
	PeriodID  string          `json:"period_id,omitempty"`
	Income    SectionResponse `json:"income"`
	Expenses  SectionResponse `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// IncomeStatementFromDomain converts an income statement to response.
func IncomeStatementFromDomain(s *domain.IncomeStatement) *IncomeStatementResponse {
	return &IncomeStatementResponse{
		From:      datePtr(s.From),
		To:        datePtr(s.To),
		PeriodID:  s.PeriodID,
		Income:    sectionFromDomain(s.Income),
		Expenses:  sectionFromDomain(s.Expenses),
		NetIncome: s.NetIncome,
	}
}

// BalanceSheetResponse represents a balance sheet.
type BalanceSheetResponse struct {
	AsOf                       *Date           `json:"as_of,omitempty"`
	PeriodID                   string          `json:"period_id,omitempty"`
	Assets                     SectionResponse `json:"assets"`
	Liabilities                SectionResponse `json:"liabilities"`
	Capital                    SectionResponse `json:"capital"`
	CurrentEarnings            decimal.Decimal `json:"current_earnings"`
	TotalLiabilitiesAndCapital decimal.Decimal `json:"total_liabilities_and_capital"`
	Balanced                   bool            `json:"balanced"`
}

// BalanceSheetFromDomain converts a balance sheet to response.
func BalanceSheetFromDomain(s *domain.BalanceSheet) *BalanceSheetResponse {
	return &BalanceSheetResponse{
		AsOf:                       datePtr(s.AsOf),
		PeriodID:                   s.PeriodID,
		Assets:                     sectionFromDomain(s.Assets),
		Liabilities:                sectionFromDomain(s.Liabilities),
		Capital:                    sectionFromDomain(s.Capital),
		CurrentEarnings:            s.CurrentEarnings,
		TotalLiabilitiesAndCapital: s.TotalLiabilitiesAndCapital,
		Balanced:                   s.Balanced,
	}
}

// ConsistencyResponse is the result of a ledger consistency check.
type ConsistencyResponse struct {
	CheckedAt         time.Time       `json:"checked_at"`
	Entries           int64           `json:"entries"`
	TotalDebits       decimal.Decimal `json:"total_debits"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	UnbalancedEntries []string        `json:"unbalanced_entries,omitempty"`
	EquationHolds     bool            `json:"equation_holds"`
	Consistent        bool            `json:"consistent"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		CheckedAt:         r.CheckedAt,
		Entries:           r.Entries,
		TotalDebits:       r.TotalDebits,
		TotalCredits:      r.TotalCredits,
		UnbalancedEntries: r.UnbalancedEntries,
		EquationHolds:     r.EquationHolds,
		Consistent:        r.Consistent,
	}
}

// ImportResponse summarizes an import.
type ImportResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Entries  []*EntryResponse   `json:"entries"`
}

// ImportFromResult converts an import result to response.
func ImportFromResult(r *usecase.ImportResult) *ImportResponse {
	return &ImportResponse{
		Accounts: AccountsFromDomain(r.Accounts),
		Entries:  EntriesFromDomain(r.Entries),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func datePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return &Date{*t}
}
