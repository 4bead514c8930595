package service

import (
	"context"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferService moves funds from a customer's account to any account.
type TransferService struct {
	store RegistryStore
}

func NewTransferService(store RegistryStore) *TransferService {
	return &TransferService{store: store}
}

// Transfer debits the customer's account (first when fromAccountID is
// zero) and credits toAccountID. Both sides apply under one lock.
func (s *TransferService) Transfer(ctx context.Context, username string, fromAccountID, toAccountID int, amount decimal.Decimal) (models.Transfer, error) {
	var out models.Transfer
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		from, err := customerAccount(r, username, fromAccountID)
		if err != nil {
			return err
		}
		to, err := r.FindAccountByNumber(toAccountID)
		if err != nil {
			return err
		}
		e, err := from.Transfer(to, amount)
		if err != nil {
			return err
		}
		out = models.Transfer{
			FromAccountID: from.ID(),
			ToAccountID:   to.ID(),
			Amount:        domain.FormatAmount(e.Amount),
			BalanceAfter:  domain.FormatAmount(e.BalanceAfter),
		}
		return nil
	})
	if recordOutcome("transfer", err) != nil {
		zap.L().Debug("transfer rejected", zap.String("username", username), zap.Int("to_account_id", toAccountID), zap.Error(err))
		return models.Transfer{}, err
	}
	zap.L().Info("transfer",
		zap.Int("from_account_id", out.FromAccountID),
		zap.Int("to_account_id", out.ToAccountID),
		zap.String("amount", out.Amount),
	)
	return out, nil
}
