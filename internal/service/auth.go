package service

import (
	"context"

	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/ledger"
	"go.uber.org/zap"
)

// AuthService checks credentials for the three kinds of principal.
type AuthService struct {
	store RegistryStore
	audit *AuditService
}

func NewAuthService(store RegistryStore, audit *AuditService) *AuthService {
	return &AuthService{store: store, audit: audit}
}

// Authenticate checks username and password for the given role.
func (s *AuthService) Authenticate(ctx context.Context, role, username, password string) error {
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		switch role {
		case domain.RoleCustomer:
			_, err := r.AuthenticateCustomer(username, password)
			return err
		case domain.RoleEmployee:
			_, err := r.AuthenticateEmployee(username, password)
			return err
		case domain.RoleAdmin:
			return r.AuthenticateAdmin(username, password)
		default:
			return domain.ErrInvalidCredentials
		}
	})
	if recordOutcome("login_"+role, err) != nil {
		zap.L().Info("login rejected", zap.String("role", role), zap.String("username", username))
		return err
	}
	return nil
}

// ResetPassword re-authenticates the customer or employee, then replaces
// the password.
func (s *AuthService) ResetPassword(ctx context.Context, role, username, current, next string) error {
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		switch role {
		case domain.RoleCustomer:
			return r.ResetCustomerPassword(username, current, next)
		case domain.RoleEmployee:
			return r.ResetEmployeePassword(username, current, next)
		default:
			return domain.ErrInvalidCredentials
		}
	})
	if recordOutcome("password_reset", err) != nil {
		return err
	}
	s.audit.Write(ctx, role, 0, username, "password.reset", "", "", nil)
	zap.L().Info("password changed", zap.String("role", role), zap.String("username", username))
	return nil
}
