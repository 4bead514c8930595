package service

import (
	"context"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AccountService exposes balance-moving operations and account reads.
type AccountService struct {
	store RegistryStore
}

func NewAccountService(store RegistryStore) *AccountService {
	return &AccountService{store: store}
}

// Deposit credits one of the customer's accounts. accountID zero selects
// the first account.
func (s *AccountService) Deposit(ctx context.Context, username string, accountID int, amount decimal.Decimal) (models.Account, error) {
	var out models.Account
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		a, err := customerAccount(r, username, accountID)
		if err != nil {
			return err
		}
		if _, err := a.Deposit(amount); err != nil {
			return err
		}
		out = models.FromAccount(a)
		return nil
	})
	if recordOutcome("deposit", err) != nil {
		return models.Account{}, err
	}
	zap.L().Info("deposit", zap.String("username", username), zap.Int("account_id", out.ID), zap.String("amount", domain.FormatAmount(amount)))
	return out, nil
}

// Withdraw debits one of the customer's accounts.
func (s *AccountService) Withdraw(ctx context.Context, username string, accountID int, amount decimal.Decimal) (models.Account, error) {
	var out models.Account
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		a, err := customerAccount(r, username, accountID)
		if err != nil {
			return err
		}
		if _, err := a.Withdraw(amount); err != nil {
			return err
		}
		out = models.FromAccount(a)
		return nil
	})
	if recordOutcome("withdraw", err) != nil {
		return models.Account{}, err
	}
	zap.L().Info("withdraw", zap.String("username", username), zap.Int("account_id", out.ID), zap.String("amount", domain.FormatAmount(amount)))
	return out, nil
}

// GetAccount returns any account by number.
func (s *AccountService) GetAccount(ctx context.Context, accountID int) (models.Account, error) {
	var out models.Account
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		a, err := r.FindAccountByNumber(accountID)
		if err != nil {
			return err
		}
		out = models.FromAccount(a)
		return nil
	})
	return out, err
}

// GetCustomerAccount returns one of the customer's own accounts.
func (s *AccountService) GetCustomerAccount(ctx context.Context, username string, accountID int) (models.Account, error) {
	var out models.Account
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		a, err := customerAccount(r, username, accountID)
		if err != nil {
			return err
		}
		out = models.FromAccount(a)
		return nil
	})
	return out, err
}

// GetStatement pages through any account's history in chronological order.
func (s *AccountService) GetStatement(ctx context.Context, accountID, page, pageSize int) (models.Statement, error) {
	var out models.Statement
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		a, err := r.FindAccountByNumber(accountID)
		if err != nil {
			return err
		}
		out = statement(a, page, pageSize)
		return nil
	})
	return out, err
}

// GetCustomerStatement pages through one of the customer's own accounts.
func (s *AccountService) GetCustomerStatement(ctx context.Context, username string, accountID, page, pageSize int) (models.Statement, error) {
	var out models.Statement
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		a, err := customerAccount(r, username, accountID)
		if err != nil {
			return err
		}
		out = statement(a, page, pageSize)
		return nil
	})
	return out, err
}

// ApplyInterest credits savings interest to any account by number.
func (s *AccountService) ApplyInterest(ctx context.Context, accountID int) (models.Interest, error) {
	var out models.Interest
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		a, err := r.FindAccountByNumber(accountID)
		if err != nil {
			return err
		}
		res, err := a.ApplyInterest()
		if err != nil {
			return err
		}
		out = models.Interest{
			AccountID: a.ID(),
			Interest:  domain.FormatAmount(res.Interest),
			Applied:   res.Applied,
			Balance:   domain.FormatAmount(a.Balance()),
			Message:   res.Notice,
		}
		if res.Applied {
			out.Message = "Interest of " + out.Interest + " deposited"
		}
		return nil
	})
	if recordOutcome("interest", err) != nil {
		return models.Interest{}, err
	}
	zap.L().Info("interest applied", zap.Int("account_id", accountID), zap.Bool("applied", out.Applied), zap.String("interest", out.Interest))
	return out, nil
}

func customerAccount(r *ledger.Registry, username string, accountID int) (*ledger.Account, error) {
	c, err := r.FindCustomerByUsername(username)
	if err != nil {
		return nil, err
	}
	return resolveAccount(c, accountID)
}

func statement(a *ledger.Account, page, pageSize int) models.Statement {
	page, pageSize = normalizePage(page, pageSize)
	history := a.History()
	out := models.Statement{
		AccountID: a.ID(),
		Page:      page,
		PageSize:  pageSize,
		Total:     len(history),
		Entries:   []models.Entry{},
	}
	start := (page - 1) * pageSize
	if start >= len(history) {
		return out
	}
	end := min(start+pageSize, len(history))
	for _, e := range history[start:end] {
		out.Entries = append(out.Entries, models.FromEntry(e))
	}
	return out
}
