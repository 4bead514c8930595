package service

import (
	"context"
	"iter"

	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/observability"
	"go.uber.org/zap"
)

// ReconciliationReport summarizes one reconciliation run.
type ReconciliationReport struct {
	Accounts     int
	Loans        int
	PendingLoans int
	Violations   []ledger.Violation
}

// ReconciliationService verifies ledger integrity invariants.
type ReconciliationService struct {
	store RegistryStore
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(store RegistryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run replays every account history and checks loan flags. Violations are
// reported, not returned as an error; an error means the check could not run.
func (s *ReconciliationService) Run(ctx context.Context) (ReconciliationReport, error) {
	var report ReconciliationReport
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		for _, c := range r.Customers() {
			report.Accounts += len(c.Accounts())
			report.Loans += len(c.Loans())
		}
		report.PendingLoans = count(r.UnapprovedLoans())
		report.Violations = ledger.Audit(r)
		return nil
	})
	if err != nil {
		return ReconciliationReport{}, err
	}

	observability.SetPendingLoans(report.PendingLoans)
	if len(report.Violations) > 0 {
		for _, v := range report.Violations {
			observability.IncrementReconciliationViolation(v.Rule)
			zap.L().Error("CRITICAL: ledger invariant violated",
				zap.String("subject", v.Subject),
				zap.Int("id", v.ID),
				zap.String("rule", v.Rule),
				zap.String("detail", v.Detail),
			)
		}
		return report, nil
	}

	zap.L().Info("Ledger Balanced", zap.Int("accounts", report.Accounts), zap.Int("loans", report.Loans))
	return report, nil
}

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
