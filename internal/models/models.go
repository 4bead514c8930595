package models

import (
	"encoding/json"
	"time"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/google/uuid"
)

// Amounts are rendered as fixed two-decimal strings.

type Account struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
	Owner   string `json:"owner"`
}

type Entry struct {
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	Counterparty *int      `json:"counterparty_account_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Statement struct {
	AccountID int     `json:"account_id"`
	Page      int     `json:"page"`
	PageSize  int     `json:"page_size"`
	Total     int     `json:"total"`
	Entries   []Entry `json:"entries"`
}

type Loan struct {
	ID                 int    `json:"id"`
	Customer           string `json:"customer"`
	Status             string `json:"status"`
	PrincipalRemaining string `json:"principal_remaining"`
	PrincipalOriginal  string `json:"principal_original"`
}

type Payoff struct {
	LoanID    int    `json:"loan_id"`
	Paid      string `json:"paid"`
	Remaining string `json:"remaining"`
	Closed    bool   `json:"closed"`
	Withdrawn bool   `json:"withdrawn"`
	Message   string `json:"message"`
}

type Interest struct {
	AccountID int    `json:"account_id"`
	Interest  string `json:"interest"`
	Applied   bool   `json:"applied"`
	Balance   string `json:"balance"`
	Message   string `json:"message"`
}

type Transfer struct {
	FromAccountID int    `json:"from_account_id"`
	ToAccountID   int    `json:"to_account_id"`
	Amount        string `json:"amount"`
	BalanceAfter  string `json:"balance_after"`
}

type Customer struct {
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Phone    string    `json:"phone"`
	Username string    `json:"username"`
	Accounts []Account `json:"accounts"`
	Loans    []Loan    `json:"loans,omitempty"`
}

type Employee struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
}

// AuditRecord is one entry of the staff action trail.
type AuditRecord struct {
	ID         uuid.UUID       `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   int             `json:"entity_id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	PrevState  string          `json:"prev_state,omitempty"`
	NextState  string          `json:"next_state,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func FromAccount(a *ledger.Account) Account {
	return Account{
		ID:      a.ID(),
		Type:    string(a.Type()),
		Balance: domain.FormatAmount(a.Balance()),
		Owner:   a.Owner(),
	}
}

func FromEntry(e ledger.Entry) Entry {
	out := Entry{
		Kind:         string(e.Kind),
		Amount:       domain.FormatAmount(e.Amount),
		BalanceAfter: domain.FormatAmount(e.BalanceAfter),
		CreatedAt:    e.CreatedAt,
	}
	if e.HasCounterparty() {
		id := e.Counterparty
		out.Counterparty = &id
	}
	return out
}

func FromLoan(l *ledger.Loan) Loan {
	return Loan{
		ID:                 l.ID(),
		Customer:           l.Customer(),
		Status:             string(l.Status()),
		PrincipalRemaining: domain.FormatAmount(l.PrincipalRemaining()),
		PrincipalOriginal:  domain.FormatAmount(l.PrincipalOriginal()),
	}
}

func FromLoans(loans []*ledger.Loan) []Loan {
	out := make([]Loan, 0, len(loans))
	for _, l := range loans {
		out = append(out, FromLoan(l))
	}
	return out
}

func FromCustomer(c *ledger.Customer) Customer {
	out := Customer{
		Name:     c.Name,
		Address:  c.Address,
		Phone:    c.Phone,
		Username: c.Username,
		Accounts: []Account{},
	}
	for _, a := range c.Accounts() {
		out.Accounts = append(out.Accounts, FromAccount(a))
	}
	out.Loans = FromLoans(c.Loans())
	return out
}

func FromEmployee(e *ledger.Employee) Employee {
	return Employee{ID: e.ID, Name: e.Name, Phone: e.Phone, Username: e.Username}
}
