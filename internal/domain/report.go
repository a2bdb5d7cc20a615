package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceLine is one account of a trial balance. Exactly one of
// Debit and Credit is non-zero.
type TrialBalanceLine struct {
	Account        string
	Classification Classification
	Contra         bool
	Debit          decimal.Decimal
	Credit         decimal.Decimal
}

// TrialBalance lists every account with a nonzero balance.
type TrialBalance struct {
	AsOf         *time.Time
	Lines        []TrialBalanceLine
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	Balanced     bool
}

// ReportLine is an account's contribution to a statement section.
// Contra accounts contribute negatively to their section.
type ReportLine struct {
	Account string
	Contra  bool
	Amount  decimal.Decimal
}

// Section is a group of statement lines of one classification.
type Section struct {
	Classification Classification
	Lines          []ReportLine
	Total          decimal.Decimal
}

// IncomeStatement reports income and expenses over a period.
type IncomeStatement struct {
	From      *time.Time
	To        *time.Time
	PeriodID  string
	Income    Section
	Expenses  Section
	NetIncome decimal.Decimal
}

// BalanceSheet reports permanent accounts at a point in time.
type BalanceSheet struct {
	AsOf                       *time.Time
	PeriodID                   string
	Assets                     Section
	Liabilities                Section
	Capital                    Section
	CurrentEarnings            decimal.Decimal
	TotalLiabilitiesAndCapital decimal.Decimal
	Balanced                   bool
}

// BuildTrialBalance projects a balance set into a trial balance.
func BuildTrialBalance(bs *BalanceSet, asOf *time.Time) *TrialBalance {
	tb := &TrialBalance{
		AsOf:         asOf,
		Lines:        []TrialBalanceLine{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}

	for _, acc := range bs.Accounts() {
		if bs.Get(acc.Name).IsZero() {
			continue
		}

		line := TrialBalanceLine{
			Account:        acc.Name,
			Classification: acc.Classification,
			Contra:         acc.Contra,
			Debit:          decimal.Zero,
			Credit:         decimal.Zero,
		}

		side, amount := bs.Column(acc.Name)
		if side == Debit {
			line.Debit = amount
			tb.TotalDebits = tb.TotalDebits.Add(amount)
		} else {
			line.Credit = amount
			tb.TotalCredits = tb.TotalCredits.Add(amount)
		}
		tb.Lines = append(tb.Lines, line)
	}

	tb.Balanced = tb.TotalDebits.Equal(tb.TotalCredits)
	return tb
}

// BuildSection collects the accounts of one classification, netting contra
// accounts against the section total.
func BuildSection(bs *BalanceSet, c Classification) Section {
	s := Section{Classification: c, Lines: []ReportLine{}, Total: decimal.Zero}

	for _, acc := range bs.Accounts() {
		if acc.Classification != c {
			continue
		}
		b := bs.Get(acc.Name)
		if b.IsZero() {
			continue
		}
		if acc.Contra {
			b = b.Neg()
		}
		s.Lines = append(s.Lines, ReportLine{Account: acc.Name, Contra: acc.Contra, Amount: b})
		s.Total = s.Total.Add(b)
	}

	return s
}

// BuildIncomeStatement projects income and expense balances.
func BuildIncomeStatement(bs *BalanceSet) *IncomeStatement {
	is := &IncomeStatement{
		Income:   BuildSection(bs, Income),
		Expenses: BuildSection(bs, Expense),
	}
	is.NetIncome = is.Income.Total.Sub(is.Expenses.Total)
	return is
}

// BuildBalanceSheet projects permanent balances. Temporary balances not yet
// closed are reported as current earnings inside capital.
func BuildBalanceSheet(bs *BalanceSet, asOf *time.Time) *BalanceSheet {
	sheet := &BalanceSheet{
		AsOf:        asOf,
		Assets:      BuildSection(bs, Asset),
		Liabilities: BuildSection(bs, Liability),
		Capital:     BuildSection(bs, Capital),
	}

	sheet.CurrentEarnings = BuildIncomeStatement(bs).NetIncome
	sheet.TotalLiabilitiesAndCapital = sheet.Liabilities.Total.
		Add(sheet.Capital.Total).
		Add(sheet.CurrentEarnings)
	sheet.Balanced = sheet.Assets.Total.Equal(sheet.TotalLiabilitiesAndCapital)

	return sheet
}
