package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceSet holds signed balances per account, each expressed on the
// account's normal side. It is maintained incrementally with Apply.
type BalanceSet struct {
	accounts map[string]*Account
	balances map[string]decimal.Decimal
}

// NewBalanceSet creates an empty balance set over the given accounts.
func NewBalanceSet(accounts []*Account) *BalanceSet {
	bs := &BalanceSet{
		accounts: make(map[string]*Account, len(accounts)),
		balances: make(map[string]decimal.Decimal, len(accounts)),
	}
	for _, a := range accounts {
		bs.accounts[a.Name] = a
	}
	return bs
}

// Apply folds every posting of the entry into the set.
func (bs *BalanceSet) Apply(e *JournalEntry) error {
	for _, p := range e.Postings {
		acc, ok := bs.accounts[p.Account]
		if !ok {
			return fmt.Errorf("%w: %s in entry %s", ErrUnknownAccount, p.Account, e.ID)
		}
		bs.balances[p.Account] = bs.Get(p.Account).Add(acc.Signed(p.Side, p.Amount))
	}
	return nil
}

// Get returns the balance of the account, zero if it has no postings.
func (bs *BalanceSet) Get(name string) decimal.Decimal {
	if b, ok := bs.balances[name]; ok {
		return b
	}
	return decimal.Zero
}

// Account returns the account definition the set was built with.
func (bs *BalanceSet) Account(name string) (*Account, bool) {
	acc, ok := bs.accounts[name]
	return acc, ok
}

// Accounts returns all accounts sorted by name.
func (bs *BalanceSet) Accounts() []*Account {
	out := make([]*Account, 0, len(bs.accounts))
	for _, a := range bs.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Column returns the side and absolute amount the balance is reported on
// in a trial balance. Zero balances report on the normal side.
func (bs *BalanceSet) Column(name string) (Side, decimal.Decimal) {
	acc := bs.accounts[name]
	b := bs.Get(name)
	if b.IsNegative() {
		return acc.NormalSide().Opposite(), b.Neg()
	}
	return acc.NormalSide(), b
}

// Totals returns the sums of the debit and credit columns over all accounts.
func (bs *BalanceSet) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for name := range bs.accounts {
		side, amount := bs.Column(name)
		if side == Debit {
			debits = debits.Add(amount)
		} else {
			credits = credits.Add(amount)
		}
	}
	return debits, credits
}

// ClosingPostings returns the postings that zero every temporary account
// against the retained earnings account. It returns nil when there is
// nothing to close.
func (bs *BalanceSet) ClosingPostings(retainedEarnings string) []Posting {
	var postings []Posting
	debits, credits := decimal.Zero, decimal.Zero

	for _, acc := range bs.Accounts() {
		if !acc.IsTemporary() {
			continue
		}
		b := bs.Get(acc.Name)
		if b.IsZero() {
			continue
		}

		side := acc.NormalSide().Opposite()
		amount := b
		if b.IsNegative() {
			side = acc.NormalSide()
			amount = b.Neg()
		}

		postings = append(postings, Posting{Account: acc.Name, Side: side, Amount: amount})
		if side == Debit {
			debits = debits.Add(amount)
		} else {
			credits = credits.Add(amount)
		}
	}

	if len(postings) == 0 {
		return nil
	}

	switch diff := debits.Sub(credits); {
	case diff.IsPositive():
		postings = append(postings, Posting{Account: retainedEarnings, Side: Credit, Amount: diff})
	case diff.IsNegative():
		postings = append(postings, Posting{Account: retainedEarnings, Side: Debit, Amount: diff.Neg()})
	}

	return postings
}

// HasTemporaryBalances reports whether any income or expense account has a
// nonzero balance.
func (bs *BalanceSet) HasTemporaryBalances() bool {
	for name, b := range bs.balances {
		if bs.accounts[name].IsTemporary() && !b.IsZero() {
			return true
		}
	}
	return false
}
