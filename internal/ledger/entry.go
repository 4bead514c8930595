package ledger

import (
	"time"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryDeposit     EntryKind = domain.EntryDeposit
	EntryWithdraw    EntryKind = domain.EntryWithdraw
	EntryTransferOut EntryKind = domain.EntryTransferOut
)

// Entry is an immutable record of one balance-affecting event on an account.
// Counterparty is zero unless Kind is EntryTransferOut.
type Entry struct {
	Kind         EntryKind
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	Counterparty int
	CreatedAt    time.Time
}

// HasCounterparty reports whether the entry names a target account.
func (e Entry) HasCounterparty() bool {
	return e.Counterparty != 0
}
