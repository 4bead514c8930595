package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

// newCustomerWithAccount registers, adds and opens a first account.
func newCustomerWithAccount(t *testing.T, r *Registry, username string, typ AccountType) (*Customer, *Account) {
	t.Helper()
	c, err := r.RegisterCustomer("Name "+username, "Somewhere", "555-0100", username, "pw-"+username)
	require.NoError(t, err)
	r.AddCustomer(c)
	a, err := r.OpenAccount(c, typ)
	require.NoError(t, err)
	return c, a
}
