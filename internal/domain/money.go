package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// OverdraftFloor is the lowest balance a current account may reach.
	OverdraftFloor = decimal.NewFromInt(-500)
	// SavingsInterestRate is applied once per explicit interest request.
	SavingsInterestRate = decimal.RequireFromString("0.03")
	// MaxAmount caps any single amount a client may submit.
	MaxAmount = decimal.New(1, 12)
)

const (
	amountPlaces = 2
	// amountExponentLimit bounds the decimal exponent. It must be checked
	// before any comparison, since comparing rescales the coefficient.
	amountExponentLimit = 12
)

// ParseAmount parses a decimal amount as sent by clients ("250", "12.50")
// and applies ValidateAmount. It does not check the sign; the ledger does.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, BlankField("amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed amount", ErrValidation)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects amounts finer than a cent or larger than MaxAmount.
func ValidateAmount(d decimal.Decimal) error {
	if exp := d.Exponent(); exp < -amountExponentLimit || exp > amountExponentLimit {
		return fmt.Errorf("%w: amount out of range", ErrValidation)
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: amount exceeds %s", ErrValidation, MaxAmount.StringFixed(amountPlaces))
	}
	if !d.Equal(d.Truncate(amountPlaces)) {
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrValidation, amountPlaces)
	}
	return nil
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsPositive reports whether amount is strictly greater than zero.
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}
