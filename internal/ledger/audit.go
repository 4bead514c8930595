package ledger

import (
	"fmt"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Violation describes one broken ledger invariant.
type Violation struct {
	Subject string // "account" or "loan"
	ID      int
	Rule    string
	Detail  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %d: %s (%s)", v.Subject, v.ID, v.Rule, v.Detail)
}

// Audit replays every account history from zero and checks balances,
// floors and loan flags. It returns nil when the registry is consistent.
func Audit(r *Registry) []Violation {
	var out []Violation
	for _, c := range r.customers {
		for _, a := range c.accounts {
			out = append(out, auditAccount(a)...)
		}
		for _, l := range c.loans {
			out = append(out, auditLoan(l)...)
		}
	}
	return out
}

func auditAccount(a *Account) []Violation {
	var out []Violation
	add := func(rule, detail string) {
		out = append(out, Violation{Subject: "account", ID: a.id, Rule: rule, Detail: detail})
	}

	running := decimal.Zero
	for i, e := range a.history {
		if !domain.IsPositive(e.Amount) {
			add("entry_amount", fmt.Sprintf("entry %d amount %s", i, e.Amount))
		}
		switch e.Kind {
		case EntryDeposit:
			running = running.Add(e.Amount)
		case EntryWithdraw:
			running = running.Sub(e.Amount)
		case EntryTransferOut:
			if !e.HasCounterparty() {
				add("transfer_counterparty", fmt.Sprintf("entry %d has no target", i))
			}
		default:
			add("entry_kind", fmt.Sprintf("entry %d kind %q", i, e.Kind))
		}
		if !running.Equal(e.BalanceAfter) {
			add("entry_chain", fmt.Sprintf("entry %d expected %s got %s", i, running, e.BalanceAfter))
			running = e.BalanceAfter
		}
	}
	if !running.Equal(a.balance) {
		add("balance", fmt.Sprintf("history %s balance %s", running, a.balance))
	}

	switch a.typ {
	case Savings:
		if a.balance.IsNegative() {
			add("savings_floor", a.balance.String())
		}
	case Current:
		if a.balance.LessThan(domain.OverdraftFloor) {
			add("overdraft_floor", a.balance.String())
		}
	}
	return out
}

func auditLoan(l *Loan) []Violation {
	var out []Violation
	add := func(rule, detail string) {
		out = append(out, Violation{Subject: "loan", ID: l.id, Rule: rule, Detail: detail})
	}
	if l.remaining.GreaterThan(l.original) {
		add("remaining_exceeds_original", fmt.Sprintf("%s > %s", l.remaining, l.original))
	}
	if l.remaining.IsNegative() {
		add("remaining_negative", l.remaining.String())
	}
	if l.closed != l.remaining.IsZero() {
		add("closed_iff_zero", fmt.Sprintf("closed=%t remaining=%s", l.closed, l.remaining))
	}
	if l.closed && !l.approved {
		add("closed_requires_approval", "closed loan was never approved")
	}
	return out
}
