package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the ledger wraps exactly one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrAuth       = errors.New("authentication failed")
	ErrState      = errors.New("invalid state")
)

var (
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInsufficientFunds   = fmt.Errorf("%w: insufficient balance", ErrValidation)
	ErrOverdraftLimit      = fmt.Errorf("%w: overdraft limit exceeded", ErrValidation)
	ErrDuplicateUsername   = fmt.Errorf("%w: username already exists", ErrValidation)
	ErrInvalidAccountType  = fmt.Errorf("%w: invalid account type", ErrValidation)
	ErrNotEligible         = fmt.Errorf("%w: not eligible to pay off loan", ErrValidation)
	ErrBlankField          = fmt.Errorf("%w: field cannot be empty", ErrValidation)
	ErrAccountNotFound     = fmt.Errorf("%w: account", ErrNotFound)
	ErrLoanNotFound        = fmt.Errorf("%w: loan", ErrNotFound)
	ErrCustomerNotFound    = fmt.Errorf("%w: customer", ErrNotFound)
	ErrEmployeeNotFound    = fmt.Errorf("%w: employee", ErrNotFound)
	ErrNoAccount           = fmt.Errorf("%w: customer has no account", ErrNotFound)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrLoanNotApproved     = fmt.Errorf("%w: loan is not yet approved", ErrState)
	ErrLoanAlreadyApproved = fmt.Errorf("%w: loan is already approved", ErrState)
	ErrLoanClosed          = fmt.Errorf("%w: loan is closed", ErrState)
	ErrPayoffExceeded      = fmt.Errorf("%w: payoff amount exceeded", ErrState)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid loan state transition", ErrState)
)

// BlankField reports a required field that was empty.
func BlankField(field string) error {
	return fmt.Errorf("%w: %s", ErrBlankField, field)
}

// Kind names the error kind of err, or "internal" when it wraps none.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrState):
		return "state"
	default:
		return "internal"
	}
}
