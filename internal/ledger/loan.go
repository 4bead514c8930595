package ledger

import (
	"fmt"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// LoanStatus is derived from the approved and closed flags.
type LoanStatus string

const (
	LoanPending  LoanStatus = domain.LoanStatusPending
	LoanApproved LoanStatus = domain.LoanStatusApproved
	LoanClosed   LoanStatus = domain.LoanStatusClosed
)

var loanTransitions = map[LoanStatus]map[LoanStatus]struct{}{
	LoanPending: {
		LoanApproved: {},
	},
	LoanApproved: {
		LoanClosed: {},
	},
	LoanClosed: {},
}

func canTransition(current, next LoanStatus) bool {
	nextStates, ok := loanTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}

// PayoffResult reports the effect of a successful payoff.
type PayoffResult struct {
	LoanID    int
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Closed    bool
	// Withdrawn is false when the first account balance was not strictly
	// greater than the amount; the principal is reduced either way.
	Withdrawn bool
}

// Loan is a loan requested by a customer.
type Loan struct {
	id        int
	customer  string // borrower username
	remaining decimal.Decimal
	original  decimal.Decimal
	approved  bool
	closed    bool
}

func newLoan(id int, customer string, amount decimal.Decimal) *Loan {
	return &Loan{id: id, customer: customer, remaining: amount, original: amount}
}

func (l *Loan) ID() int                             { return l.id }
func (l *Loan) Customer() string                    { return l.customer }
func (l *Loan) PrincipalRemaining() decimal.Decimal { return l.remaining }
func (l *Loan) PrincipalOriginal() decimal.Decimal  { return l.original }
func (l *Loan) Approved() bool                      { return l.approved }
func (l *Loan) Closed() bool                        { return l.closed }

func (l *Loan) Status() LoanStatus {
	switch {
	case l.closed:
		return LoanClosed
	case l.approved:
		return LoanApproved
	default:
		return LoanPending
	}
}

func (l *Loan) transition(next LoanStatus) error {
	current := l.Status()
	if current == next {
		return nil
	}
	if !canTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, next)
	}
	switch next {
	case LoanApproved:
		l.approved = true
	case LoanClosed:
		l.closed = true
	}
	return nil
}

// Approve marks the loan approved and credits the remaining principal to
// first. Approving an already approved loan credits it again; callers that
// need a single disbursement must check Approved first.
func (l *Loan) Approve(first *Account) error {
	if first == nil {
		return domain.ErrNoAccount
	}
	if l.closed {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, LoanClosed, LoanApproved)
	}
	if _, err := first.Deposit(l.remaining); err != nil {
		return fmt.Errorf("disburse loan %d: %w", l.id, err)
	}
	return l.transition(LoanApproved)
}

// CheckEligible reports whether first can cover amount.
func (l *Loan) CheckEligible(first *Account, amount decimal.Decimal) bool {
	return first != nil && first.Balance().GreaterThanOrEqual(amount)
}

// Payoff reduces the remaining principal by amount and closes the loan when
// it reaches zero. Funds are withdrawn from first only when its balance is
// strictly greater than amount.
func (l *Loan) Payoff(first *Account, amount decimal.Decimal) (PayoffResult, error) {
	if first == nil {
		return PayoffResult{}, domain.ErrNoAccount
	}
	if !l.approved {
		return PayoffResult{}, domain.ErrLoanNotApproved
	}
	if l.closed {
		return PayoffResult{}, domain.ErrLoanClosed
	}
	if !l.CheckEligible(first, amount) {
		return PayoffResult{}, domain.ErrNotEligible
	}
	if !domain.IsPositive(amount) || amount.GreaterThan(l.remaining) {
		return PayoffResult{}, domain.ErrInvalidAmount
	}

	withdrawn := false
	if first.Balance().GreaterThan(amount) {
		if _, err := first.Withdraw(amount); err != nil {
			return PayoffResult{}, fmt.Errorf("collect payoff for loan %d: %w", l.id, err)
		}
		withdrawn = true
	}

	l.remaining = l.remaining.Sub(amount)
	if l.remaining.IsZero() {
		if err := l.transition(LoanClosed); err != nil {
			return PayoffResult{}, err
		}
	}

	return PayoffResult{
		LoanID:    l.id,
		Paid:      amount,
		Remaining: l.remaining,
		Closed:    l.closed,
		Withdrawn: withdrawn,
	}, nil
}
