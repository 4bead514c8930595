package ledger

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Registry is the root of the ledger: it owns customers and employees,
// allocates identifiers and answers lookup and authentication queries.
// It performs no locking; callers serialize access.
type Registry struct {
	customers []*Customer
	employees []*Employee

	accountIDs  *Sequence
	loanIDs     *Sequence
	employeeIDs *Sequence

	adminUsername string
	adminPassword string
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithAdminCredentials overrides the administrator username and password.
// Blank values keep the defaults.
func WithAdminCredentials(username, password string) Option {
	return func(r *Registry) {
		if strings.TrimSpace(username) != "" {
			r.adminUsername = username
		}
		if strings.TrimSpace(password) != "" {
			r.adminPassword = password
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		accountIDs:    NewSequence(domain.FirstAccountID),
		loanIDs:       NewSequence(domain.FirstLoanID),
		employeeIDs:   NewSequence(domain.FirstEmployeeID),
		adminUsername: domain.DefaultAdminUsername,
		adminPassword: domain.DefaultAdminPassword,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RegisterCustomer validates and builds a customer without adding it.
func (r *Registry) RegisterCustomer(name, address, phone, username, password string) (*Customer, error) {
	switch {
	case isBlank(name):
		return nil, domain.BlankField("name")
	case isBlank(phone):
		return nil, domain.BlankField("phone")
	case isBlank(username):
		return nil, domain.BlankField("username")
	case r.customerUsernameTaken(username):
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, username)
	case isBlank(password):
		return nil, domain.BlankField("password")
	}
	return NewCustomer(name, address, phone, username, password), nil
}

// RegisterEmployee validates and builds an employee without adding it.
// The employee id is allocated here.
func (r *Registry) RegisterEmployee(name, phone, username, password string) (*Employee, error) {
	switch {
	case isBlank(name):
		return nil, domain.BlankField("name")
	case isBlank(phone):
		return nil, domain.BlankField("phone")
	case isBlank(username):
		return nil, domain.BlankField("username")
	case r.employeeUsernameTaken(username):
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, username)
	case isBlank(password):
		return nil, domain.BlankField("password")
	}
	return &Employee{
		ID:       r.employeeIDs.Next(),
		Name:     name,
		Phone:    phone,
		Username: username,
		password: password,
	}, nil
}

func (r *Registry) customerUsernameTaken(username string) bool {
	return slices.ContainsFunc(r.customers, func(c *Customer) bool { return c.Username == username })
}

func (r *Registry) employeeUsernameTaken(username string) bool {
	return slices.ContainsFunc(r.employees, func(e *Employee) bool { return e.Username == username })
}

// AddCustomer appends c. Nil is ignored.
func (r *Registry) AddCustomer(c *Customer) {
	if c == nil {
		return
	}
	r.customers = append(r.customers, c)
}

// AddEmployee appends e. Nil is ignored.
func (r *Registry) AddEmployee(e *Employee) {
	if e == nil {
		return
	}
	r.employees = append(r.employees, e)
}

// OpenAccount creates a zero-balance account for c.
func (r *Registry) OpenAccount(c *Customer, typ AccountType) (*Account, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAccountType, typ)
	}
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	a := newAccount(r.accountIDs.Next(), typ, c.Username)
	c.AddAccount(a)
	return a, nil
}

// ApplyForLoan records a pending loan for c.
func (r *Registry) ApplyForLoan(c *Customer, amount decimal.Decimal) (*Loan, error) {
	if c == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if !domain.IsPositive(amount) {
		return nil, domain.ErrInvalidAmount
	}
	l := newLoan(r.loanIDs.Next(), c.Username, amount)
	c.loans = append(c.loans, l)
	return l, nil
}

// Customers returns the customers in registration order.
func (r *Registry) Customers() []*Customer {
	return slices.Clone(r.customers)
}

// Employees returns the employees in registration order.
func (r *Registry) Employees() []*Employee {
	return slices.Clone(r.employees)
}

// FindCustomerByName returns the first customer whose name matches,
// ignoring case.
func (r *Registry) FindCustomerByName(name string) (*Customer, error) {
	for _, c := range r.customers {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

// FindEmployeeByName returns the first employee whose name matches,
// ignoring case.
func (r *Registry) FindEmployeeByName(name string) (*Employee, error) {
	for _, e := range r.employees {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

func (r *Registry) FindCustomerByUsername(username string) (*Customer, error) {
	for _, c := range r.customers {
		if c.Username == username {
			return c, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *Registry) FindEmployeeByUsername(username string) (*Employee, error) {
	for _, e := range r.employees {
		if e.Username == username {
			return e, nil
		}
	}
	return nil, domain.ErrEmployeeNotFound
}

// FindAccountByNumber scans every customer's accounts.
func (r *Registry) FindAccountByNumber(id int) (*Account, error) {
	for _, c := range r.customers {
		if a, err := c.Account(id); err == nil {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// FindLoanByNumber scans every customer's loans and also returns the owner.
func (r *Registry) FindLoanByNumber(id int) (*Loan, *Customer, error) {
	for _, c := range r.customers {
		if l, err := c.Loan(id); err == nil {
			return l, c, nil
		}
	}
	return nil, nil, domain.ErrLoanNotFound
}

// ApproveLoan approves a loan and disburses it into the owner's first account.
func (r *Registry) ApproveLoan(id int) (*Loan, error) {
	loan, owner, err := r.FindLoanByNumber(id)
	if err != nil {
		return nil, err
	}
	first, err := owner.FirstAccount()
	if err != nil {
		return nil, err
	}
	if err := loan.Approve(first); err != nil {
		return nil, err
	}
	return loan, nil
}

// AuthenticateCustomer matches username and password exactly.
func (r *Registry) AuthenticateCustomer(username, password string) (*Customer, error) {
	c, err := r.FindCustomerByUsername(username)
	if err != nil || !c.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return c, nil
}

// AuthenticateEmployee matches username and password exactly.
func (r *Registry) AuthenticateEmployee(username, password string) (*Employee, error) {
	e, err := r.FindEmployeeByUsername(username)
	if err != nil || !e.CheckPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return e, nil
}

func (r *Registry) AuthenticateAdmin(username, password string) error {
	if username != r.adminUsername || password != r.adminPassword {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// ResetCustomerPassword re-authenticates before replacing the password.
func (r *Registry) ResetCustomerPassword(username, current, next string) error {
	c, err := r.AuthenticateCustomer(username, current)
	if err != nil {
		return err
	}
	if isBlank(next) {
		return domain.BlankField("new password")
	}
	c.setPassword(next)
	return nil
}

// ResetEmployeePassword re-authenticates before replacing the password.
func (r *Registry) ResetEmployeePassword(username, current, next string) error {
	e, err := r.AuthenticateEmployee(username, current)
	if err != nil {
		return err
	}
	if isBlank(next) {
		return domain.BlankField("new password")
	}
	e.setPassword(next)
	return nil
}

// UnapprovedLoans yields pending loans across all customers.
func (r *Registry) UnapprovedLoans() iter.Seq[*Loan] {
	return r.loansWhere(func(l *Loan) bool { return !l.approved && !l.closed })
}

// ApprovedLoans yields approved loans that are still open.
func (r *Registry) ApprovedLoans() iter.Seq[*Loan] {
	return r.loansWhere(func(l *Loan) bool { return l.approved && !l.closed })
}

func (r *Registry) ClosedLoans() iter.Seq[*Loan] {
	return r.loansWhere(func(l *Loan) bool { return l.closed })
}

func (r *Registry) loansWhere(keep func(*Loan) bool) iter.Seq[*Loan] {
	return func(yield func(*Loan) bool) {
		for _, c := range r.customers {
			for _, l := range c.loans {
				if keep(l) && !yield(l) {
					return
				}
			}
		}
	}
}
