package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/usecase"
)

func TestAccountFromDomain(t *testing.T) {
	account := &domain.Account{
		ID:             "acc-1",
		Name:           "returns",
		Classification: domain.Income,
		Contra:         true,
		ContraOf:       "sales",
		Active:         true,
	}

	resp := AccountFromDomain(account)
	if resp.Name != "returns" || resp.Classification != "income" || resp.NormalSide != "debit" || !resp.Contra {
		t.Fatalf("unexpected account response: %+v", resp)
	}
}

func TestEntryFromDomain(t *testing.T) {
	orig := "e0"
	entry := &domain.JournalEntry{
		ID:         "e1",
		Sequence:   7,
		Date:       time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Kind:       domain.EntryKindReversal,
		ReversesID: &orig,
		Postings: []domain.Posting{
			{Account: "cash", Side: domain.Credit, Amount: decimal.NewFromInt(5)},
			{Account: "sales", Side: domain.Debit, Amount: decimal.NewFromInt(5)},
		},
	}

	b, err := json.Marshal(EntryFromDomain(entry))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"date":"2024-01-05"`, `"kind":"reversal"`, `"reverses_id":"e0"`, `"side":"credit"`, `"amount":"5"`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("expected %s in %s", want, b)
		}
	}
}

func TestBalancesFromDomain(t *testing.T) {
	bs := domain.NewBalanceSet([]*domain.Account{
		{Name: "cash", Classification: domain.Asset},
		{Name: "sales", Classification: domain.Income},
	})
	if err := bs.Apply(&domain.JournalEntry{Postings: []domain.Posting{
		{Account: "cash", Side: domain.Debit, Amount: decimal.NewFromInt(40)},
		{Account: "sales", Side: domain.Credit, Amount: decimal.NewFromInt(40)},
	}}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	resp := BalancesFromDomain(bs)
	if len(resp.Accounts) != 2 {
		t.Fatalf("expected two accounts, got %+v", resp.Accounts)
	}
	if !resp.TotalDebits.Equal(decimal.NewFromInt(40)) || !resp.TotalCredits.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected totals %s/%s", resp.TotalDebits, resp.TotalCredits)
	}
}

func TestClosePeriodFromResult(t *testing.T) {
	period := &domain.Period{ID: "q1", Status: domain.PeriodStatusClosed}

	resp := ClosePeriodFromResult(&usecase.ClosePeriodResult{Period: period})
	if resp.Period.Status != "closed" || resp.ClosingEntry != nil {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp = ClosePeriodFromResult(&usecase.ClosePeriodResult{
		Period: period,
		Entry:  &domain.JournalEntry{ID: "close", Kind: domain.EntryKindClosing},
	})
	if resp.ClosingEntry == nil || resp.ClosingEntry.Kind != "closing" {
		t.Fatalf("closing entry missing from %+v", resp)
	}
}

func TestBalanceSheetFromDomain(t *testing.T) {
	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	sheet := &domain.BalanceSheet{
		AsOf:     &asOf,
		Assets:   domain.Section{Classification: domain.Asset, Total: decimal.NewFromInt(100)},
		Capital:  domain.Section{Classification: domain.Capital, Total: decimal.NewFromInt(60)},
		Balanced: true,

		CurrentEarnings:            decimal.NewFromInt(40),
		TotalLiabilitiesAndCapital: decimal.NewFromInt(100),
	}

	b, err := json.Marshal(BalanceSheetFromDomain(sheet))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"as_of":"2024-12-31"`, `"current_earnings":"40"`, `"balanced":true`} {
		if !strings.Contains(string(b), want) {
			t.Fatalf("expected %s in %s", want, b)
		}
	}
}
