package service

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/models"
	"github.com/ayo6706/retail-ledger/internal/observability"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Customer loan views.
const (
	LoanViewExisting = "existing"
	LoanViewOlder    = "older"
)

// Staff loan queues.
const (
	LoanQueueUnapproved = "unapproved"
	LoanQueueApproved   = "approved"
	LoanQueueClosed     = "closed"
)

// LoanService drives the loan lifecycle.
type LoanService struct {
	store RegistryStore
	audit *AuditService
}

func NewLoanService(store RegistryStore, audit *AuditService) *LoanService {
	return &LoanService{store: store, audit: audit}
}

// Apply records a pending loan for the customer.
func (s *LoanService) Apply(ctx context.Context, username string, amount decimal.Decimal) (models.Loan, error) {
	var out models.Loan
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		c, err := r.FindCustomerByUsername(username)
		if err != nil {
			return err
		}
		l, err := r.ApplyForLoan(c, amount)
		if err != nil {
			return err
		}
		out = models.FromLoan(l)
		return nil
	})
	if recordOutcome("loan_apply", err) != nil {
		return models.Loan{}, err
	}
	observability.IncrementLoanTransition(domain.LoanStatusPending)
	s.audit.Write(ctx, "loan", out.ID, username, "loan.apply", "", out.Status, map[string]any{"amount": out.PrincipalOriginal})
	zap.L().Info("loan applied", zap.Int("loan_id", out.ID), zap.String("username", username), zap.String("amount", out.PrincipalOriginal))
	return out, nil
}

// Approve approves a pending loan and disburses it into the owner's first
// account. A loan is disbursed at most once through this path.
func (s *LoanService) Approve(ctx context.Context, actor string, loanID int) (models.Loan, error) {
	var (
		out  models.Loan
		prev string
	)
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		l, _, err := r.FindLoanByNumber(loanID)
		if err != nil {
			return err
		}
		prev = string(l.Status())
		if l.Status() == ledger.LoanApproved {
			return domain.ErrLoanAlreadyApproved
		}
		if _, err := r.ApproveLoan(loanID); err != nil {
			return err
		}
		out = models.FromLoan(l)
		return nil
	})
	if recordOutcome("loan_approve", err) != nil {
		return models.Loan{}, err
	}
	observability.IncrementLoanTransition(out.Status)
	s.audit.Write(ctx, "loan", loanID, actor, "loan.approve", prev, out.Status, map[string]any{"disbursed": out.PrincipalRemaining})
	zap.L().Info("loan approved", zap.Int("loan_id", loanID), zap.String("actor", actor))
	return out, nil
}

// PayOff repays a customer's own loan from the first account.
func (s *LoanService) PayOff(ctx context.Context, username string, loanID int, amount decimal.Decimal) (models.Payoff, error) {
	var res ledger.PayoffResult
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		c, err := r.FindCustomerByUsername(username)
		if err != nil {
			return err
		}
		res, err = c.PayOffLoan(loanID, amount)
		return err
	})
	if recordOutcome("loan_payoff", err) != nil {
		return models.Payoff{}, err
	}

	out := models.Payoff{
		LoanID:    res.LoanID,
		Paid:      domain.FormatAmount(res.Paid),
		Remaining: domain.FormatAmount(res.Remaining),
		Closed:    res.Closed,
		Withdrawn: res.Withdrawn,
		Message:   fmt.Sprintf("Paid %s; remaining %s", domain.FormatAmount(res.Paid), domain.FormatAmount(res.Remaining)),
	}
	if res.Closed {
		out.Message = fmt.Sprintf("Loan %d paid off and closed", res.LoanID)
		observability.IncrementLoanTransition(domain.LoanStatusClosed)
		s.audit.Write(ctx, "loan", loanID, username, "loan.close", domain.LoanStatusApproved, domain.LoanStatusClosed, nil)
	}
	if !res.Withdrawn {
		zap.L().Warn("loan payoff recorded without withdrawal",
			zap.Int("loan_id", loanID),
			zap.String("amount", out.Paid),
		)
	}
	zap.L().Info("loan payoff", zap.Int("loan_id", loanID), zap.String("paid", out.Paid), zap.Bool("closed", out.Closed))
	return out, nil
}

// ListForCustomer lists the customer's loans. view is "existing" (default)
// or "older".
func (s *LoanService) ListForCustomer(ctx context.Context, username, view string) ([]models.Loan, error) {
	var out []models.Loan
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		c, err := r.FindCustomerByUsername(username)
		if err != nil {
			return err
		}
		var seq iter.Seq[*ledger.Loan]
		switch strings.ToLower(strings.TrimSpace(view)) {
		case "", LoanViewExisting:
			seq = c.ExistingLoans()
		case LoanViewOlder:
			seq = c.OlderLoans()
		default:
			return fmt.Errorf("%w: unknown loan view %q", domain.ErrValidation, view)
		}
		out = models.FromLoans(slices.Collect(seq))
		return nil
	})
	return out, err
}

// List returns a staff loan queue: "unapproved" (default), "approved" or
// "closed".
func (s *LoanService) List(ctx context.Context, queue string) ([]models.Loan, error) {
	var out []models.Loan
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		var seq iter.Seq[*ledger.Loan]
		switch strings.ToLower(strings.TrimSpace(queue)) {
		case "", LoanQueueUnapproved:
			seq = r.UnapprovedLoans()
		case LoanQueueApproved:
			seq = r.ApprovedLoans()
		case LoanQueueClosed:
			seq = r.ClosedLoans()
		default:
			return fmt.Errorf("%w: unknown loan status %q", domain.ErrValidation, queue)
		}
		out = models.FromLoans(slices.Collect(seq))
		return nil
	})
	return out, err
}
