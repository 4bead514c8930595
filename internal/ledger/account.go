package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountType selects the withdrawal and interest policy of an account.
type AccountType string

const (
	Savings AccountType = domain.AccountTypeSavings
	Current AccountType = domain.AccountTypeCurrent
)

// ParseAccountType accepts "savings"/"current" in any case, or the
// numeric selectors "1" and "2".
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", domain.AccountTypeSavings:
		return Savings, nil
	case "2", domain.AccountTypeCurrent:
		return Current, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidAccountType, s)
	}
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == Savings || t == Current
}

// InterestResult describes the outcome of an interest request.
type InterestResult struct {
	Interest decimal.Decimal
	Applied  bool
	Notice   string
}

const noInterestNotice = "no interest on current accounts"

// Account is a single savings or current account. Balance only changes
// through Deposit, Withdraw, Transfer and ApplyInterest, and every change
// appends to the history.
type Account struct {
	id      int
	typ     AccountType
	balance decimal.Decimal
	owner   string // username of the owning customer
	history []Entry
}

func newAccount(id int, typ AccountType, owner string) *Account {
	return &Account{id: id, typ: typ, owner: owner, balance: decimal.Zero}
}

func (a *Account) ID() int                  { return a.id }
func (a *Account) Type() AccountType        { return a.typ }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Owner() string            { return a.owner }

// History returns a copy of the entries in the order they were recorded.
func (a *Account) History() []Entry {
	out := make([]Entry, len(a.history))
	copy(out, a.history)
	return out
}

// Deposit credits a positive amount.
func (a *Account) Deposit(amount decimal.Decimal) (Entry, error) {
	if !domain.IsPositive(amount) {
		return Entry{}, domain.ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	return a.record(EntryDeposit, amount, 0), nil
}

// Withdraw debits amount subject to the account type's floor.
func (a *Account) Withdraw(amount decimal.Decimal) (Entry, error) {
	if err := a.checkWithdraw(amount); err != nil {
		return Entry{}, err
	}
	a.balance = a.balance.Sub(amount)
	return a.record(EntryWithdraw, amount, 0), nil
}

func (a *Account) checkWithdraw(amount decimal.Decimal) error {
	if !domain.IsPositive(amount) {
		return domain.ErrInvalidAmount
	}
	switch a.typ {
	case Current:
		if a.balance.Sub(amount).LessThan(domain.OverdraftFloor) {
			return domain.ErrOverdraftLimit
		}
	default:
		if amount.GreaterThan(a.balance) {
			return domain.ErrInsufficientFunds
		}
	}
	return nil
}

// Transfer moves amount to target. The source must hold at least amount
// regardless of type, so current accounts cannot transfer into overdraft.
// The source records a withdrawal and a transfer-out entry naming the
// target; the target records one deposit.
func (a *Account) Transfer(target *Account, amount decimal.Decimal) (Entry, error) {
	if target == nil {
		return Entry{}, domain.ErrAccountNotFound
	}
	if !domain.IsPositive(amount) {
		return Entry{}, domain.ErrInvalidAmount
	}
	if amount.GreaterThan(a.balance) {
		return Entry{}, domain.ErrInsufficientFunds
	}
	if _, err := a.Withdraw(amount); err != nil {
		return Entry{}, err
	}
	if _, err := target.Deposit(amount); err != nil {
		return Entry{}, err
	}
	return a.record(EntryTransferOut, amount, target.id), nil
}

// ApplyInterest credits savings interest at the fixed rate. Current
// accounts are left untouched and the result carries a notice instead.
func (a *Account) ApplyInterest() (InterestResult, error) {
	if a.typ == Current {
		return InterestResult{Interest: decimal.Zero, Notice: noInterestNotice}, nil
	}
	interest := a.balance.Mul(domain.SavingsInterestRate)
	if _, err := a.Deposit(interest); err != nil {
		return InterestResult{}, fmt.Errorf("apply interest: %w", err)
	}
	return InterestResult{Interest: interest, Applied: true}, nil
}

func (a *Account) record(kind EntryKind, amount decimal.Decimal, counterparty int) Entry {
	e := Entry{
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: a.balance,
		Counterparty: counterparty,
		CreatedAt:    time.Now().UTC(),
	}
	a.history = append(a.history, e)
	return e
}
