package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBuildTrialBalance(t *testing.T) {
	bs := NewBalanceSet(chart())
	apply(t, bs, journal()...)

	tb := BuildTrialBalance(bs, nil)
	if !tb.Balanced {
		t.Fatalf("trial balance not balanced: %s vs %s", tb.TotalDebits, tb.TotalCredits)
	}
	// retained has no balance and is omitted
	if len(tb.Lines) != 7 {
		t.Fatalf("expected 7 lines, got %d", len(tb.Lines))
	}
	for _, l := range tb.Lines {
		if !l.Debit.IsZero() && !l.Credit.IsZero() {
			t.Fatalf("%s has both columns set", l.Account)
		}
	}
}

func TestBuildIncomeStatement(t *testing.T) {
	bs := NewBalanceSet(chart())
	apply(t, bs, journal()...)

	is := BuildIncomeStatement(bs)
	if !is.Income.Total.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("income = %s, want 280 (sales net of refunds)", is.Income.Total)
	}
	if !is.Expenses.Total.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("expenses = %s, want 160", is.Expenses.Total)
	}
	if !is.NetIncome.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("net income = %s, want 120", is.NetIncome)
	}
	for _, l := range is.Income.Lines {
		if l.Account == "refunds" && !l.Amount.IsNegative() {
			t.Fatalf("contra line should be negative, got %s", l.Amount)
		}
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := NewBalanceSet(chart())
	apply(t, bs, journal()...)

	sheet := BuildBalanceSheet(bs, nil)
	// cash 760 + equipment 400 - depreciation 40
	if !sheet.Assets.Total.Equal(decimal.NewFromInt(1120)) {
		t.Fatalf("assets = %s, want 1120", sheet.Assets.Total)
	}
	if !sheet.CurrentEarnings.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("current earnings = %s, want 120", sheet.CurrentEarnings)
	}
	if !sheet.Balanced {
		t.Fatalf("assets %s != liabilities and capital %s", sheet.Assets.Total, sheet.TotalLiabilitiesAndCapital)
	}

	apply(t, bs, &JournalEntry{ID: "close", Postings: bs.ClosingPostings("retained")})
	closed := BuildBalanceSheet(bs, nil)
	if !closed.CurrentEarnings.IsZero() || !closed.Balanced {
		t.Fatalf("after closing: earnings %s balanced %v", closed.CurrentEarnings, closed.Balanced)
	}
	if !closed.Capital.Total.Equal(decimal.NewFromInt(1120)) {
		t.Fatalf("capital = %s, want 1120", closed.Capital.Total)
	}
}
