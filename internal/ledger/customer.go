package ledger

import (
	"iter"
	"slices"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Customer owns accounts and loans. The first account opened is the one
// loans disburse into and are repaid from.
type Customer struct {
	Name     string
	Address  string
	Phone    string
	Username string
	password string
	accounts []*Account
	loans    []*Loan
}

// NewCustomer builds an unvalidated customer. Use Registry.RegisterCustomer
// to get the validation rules.
func NewCustomer(name, address, phone, username, password string) *Customer {
	return &Customer{
		Name:     name,
		Address:  address,
		Phone:    phone,
		Username: username,
		password: password,
	}
}

// CheckPassword compares against the stored password.
func (c *Customer) CheckPassword(password string) bool {
	return c.password == password
}

func (c *Customer) setPassword(password string) {
	c.password = password
}

// AddAccount appends an account. Nil is ignored.
func (c *Customer) AddAccount(a *Account) {
	if a == nil {
		return
	}
	c.accounts = append(c.accounts, a)
}

func (c *Customer) Accounts() []*Account {
	return slices.Clone(c.accounts)
}

func (c *Customer) Loans() []*Loan {
	return slices.Clone(c.loans)
}

// FirstAccount returns the account opened first.
func (c *Customer) FirstAccount() (*Account, error) {
	if len(c.accounts) == 0 {
		return nil, domain.ErrNoAccount
	}
	return c.accounts[0], nil
}

// Account finds one of the customer's own accounts.
func (c *Customer) Account(id int) (*Account, error) {
	for _, a := range c.accounts {
		if a.id == id {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// Loan finds one of the customer's own loans.
func (c *Customer) Loan(id int) (*Loan, error) {
	for _, l := range c.loans {
		if l.id == id {
			return l, nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

// PayOffLoan repays part or all of one of the customer's loans from the
// first account.
func (c *Customer) PayOffLoan(loanID int, amount decimal.Decimal) (PayoffResult, error) {
	loan, err := c.Loan(loanID)
	if err != nil {
		return PayoffResult{}, err
	}
	if !loan.approved {
		return PayoffResult{}, domain.ErrLoanNotApproved
	}
	if loan.remaining.LessThan(amount) {
		return PayoffResult{}, domain.ErrPayoffExceeded
	}
	first, err := c.FirstAccount()
	if err != nil {
		return PayoffResult{}, err
	}
	return loan.Payoff(first, amount)
}

// ExistingLoans yields loans that are not closed, in application order.
func (c *Customer) ExistingLoans() iter.Seq[*Loan] {
	return c.loansWhere(func(l *Loan) bool { return !l.closed })
}

// OlderLoans yields closed loans, in application order.
func (c *Customer) OlderLoans() iter.Seq[*Loan] {
	return c.loansWhere(func(l *Loan) bool { return l.closed })
}

func (c *Customer) loansWhere(keep func(*Loan) bool) iter.Seq[*Loan] {
	return func(yield func(*Loan) bool) {
		for _, l := range c.loans {
			if keep(l) && !yield(l) {
				return
			}
		}
	}
}
