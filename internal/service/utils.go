package service

import (
	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/observability"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// recordOutcome counts a ledger operation by outcome and passes err through.
func recordOutcome(operation string, err error) error {
	outcome := "success"
	if err != nil {
		outcome = domain.KindOf(err)
	}
	observability.IncrementLedgerOperation(operation, outcome)
	return err
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, min(pageSize, maxPageSize)
}

// resolveAccount picks one of c's accounts; zero selects the first.
func resolveAccount(c *ledger.Customer, accountID int) (*ledger.Account, error) {
	if accountID == 0 {
		return c.FirstAccount()
	}
	return c.Account(accountID)
}
