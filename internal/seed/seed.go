// Package seed loads a fixed demo population into a registry.
package seed

import (
	"fmt"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type person struct {
	name    string
	address string
	phone   string
}

var people = []person{
	{"Aarav", "123 Main St, Apt 4B", "9876543210"},
	{"Ananya", "456 Oak Dr, Unit 12", "8765432109"},
	{"Rohan", "789 Pine Ln, Suite 300", "7654321098"},
	{"Sneha", "101 Maple Ave", "6543210987"},
	{"Arjun", "202 Birch Rd, Floor 2", "5432109876"},
	{"Meera", "303 Cedar Blvd", "4321098765"},
	{"Vivek", "404 Spruce St", "3210987654"},
	{"Neha", "505 Elm Ct", "2109876543"},
	{"Manan", "606 Willow Way, Apt 7", "1098765432"},
	{"Yash", "707 Ash Pl, Unit 5", "0987654321"},
}

// Summary counts what Demo created.
type Summary struct {
	Customers     int
	Employees     int
	Loans         int
	ApprovedLoans int
}

// Demo registers ten customers, each with a savings account and a loan of
// 1000 times their position, approving every other loan, and ten employees
// sharing the same names. Usernames and passwords are the lowercase names.
func Demo(r *ledger.Registry) (Summary, error) {
	var sum Summary
	for i, p := range people {
		username := strings.ToLower(p.name)
		c, err := r.RegisterCustomer(p.name, p.address, p.phone, username, username)
		if err != nil {
			return sum, fmt.Errorf("seed customer %s: %w", username, err)
		}
		r.AddCustomer(c)
		sum.Customers++

		if _, err := r.OpenAccount(c, ledger.Savings); err != nil {
			return sum, fmt.Errorf("seed account for %s: %w", username, err)
		}
		loan, err := r.ApplyForLoan(c, decimal.NewFromInt(int64(1000*(i+1))))
		if err != nil {
			return sum, fmt.Errorf("seed loan for %s: %w", username, err)
		}
		sum.Loans++
		if i%2 == 0 {
			if _, err := r.ApproveLoan(loan.ID()); err != nil {
				return sum, fmt.Errorf("approve seed loan %d: %w", loan.ID(), err)
			}
			sum.ApprovedLoans++
		}
	}

	for _, p := range people {
		username := strings.ToLower(p.name)
		e, err := r.RegisterEmployee(p.name, p.phone, username, username)
		if err != nil {
			return sum, fmt.Errorf("seed employee %s: %w", username, err)
		}
		r.AddEmployee(e)
		sum.Employees++
	}

	zap.L().Info("demo data seeded",
		zap.Int("customers", sum.Customers),
		zap.Int("employees", sum.Employees),
		zap.Int("loans", sum.Loans),
		zap.Int("approved_loans", sum.ApprovedLoans),
	)
	return sum, nil
}
