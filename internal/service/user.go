package service

import (
	"context"

	"github.com/ayo6706/retail-ledger/internal/ledger"
	"github.com/ayo6706/retail-ledger/internal/models"
	"go.uber.org/zap"
)

// RegisterCustomerCmd carries a customer registration. AccountType is
// "savings", "current", "1" or "2".
type RegisterCustomerCmd struct {
	Name        string
	Address     string
	Phone       string
	Username    string
	Password    string
	AccountType string
}

type RegisterEmployeeCmd struct {
	Name     string
	Phone    string
	Username string
	Password string
}

// UserService manages customer and employee records.
type UserService struct {
	store RegistryStore
	audit *AuditService
}

func NewUserService(store RegistryStore, audit *AuditService) *UserService {
	return &UserService{store: store, audit: audit}
}

// RegisterCustomer validates the customer, then the account type, and only
// then adds the customer with a first account of that type.
func (s *UserService) RegisterCustomer(ctx context.Context, actor string, cmd RegisterCustomerCmd) (models.Customer, error) {
	var out models.Customer
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		c, err := r.RegisterCustomer(cmd.Name, cmd.Address, cmd.Phone, cmd.Username, cmd.Password)
		if err != nil {
			return err
		}
		typ, err := ledger.ParseAccountType(cmd.AccountType)
		if err != nil {
			return err
		}
		r.AddCustomer(c)
		if _, err := r.OpenAccount(c, typ); err != nil {
			return err
		}
		out = models.FromCustomer(c)
		return nil
	})
	if recordOutcome("register_customer", err) != nil {
		return models.Customer{}, err
	}
	if actor == "" {
		actor = out.Username
	}
	s.audit.Write(ctx, "customer", 0, actor, "customer.register", "", "", map[string]any{"username": out.Username})
	zap.L().Info("customer registered", zap.String("username", out.Username), zap.Int("account_id", out.Accounts[0].ID))
	return out, nil
}

// RegisterEmployee validates and adds an employee.
func (s *UserService) RegisterEmployee(ctx context.Context, actor string, cmd RegisterEmployeeCmd) (models.Employee, error) {
	var out models.Employee
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		e, err := r.RegisterEmployee(cmd.Name, cmd.Phone, cmd.Username, cmd.Password)
		if err != nil {
			return err
		}
		r.AddEmployee(e)
		out = models.FromEmployee(e)
		return nil
	})
	if recordOutcome("register_employee", err) != nil {
		return models.Employee{}, err
	}
	s.audit.Write(ctx, "employee", out.ID, actor, "employee.register", "", "", map[string]any{"username": out.Username})
	zap.L().Info("employee registered", zap.Int("employee_id", out.ID), zap.String("username", out.Username))
	return out, nil
}

// OpenAccount opens an additional account for the customer.
func (s *UserService) OpenAccount(ctx context.Context, username, accountType string) (models.Account, error) {
	var out models.Account
	err := s.store.RunInTx(ctx, func(r *ledger.Registry) error {
		typ, err := ledger.ParseAccountType(accountType)
		if err != nil {
			return err
		}
		c, err := r.FindCustomerByUsername(username)
		if err != nil {
			return err
		}
		a, err := r.OpenAccount(c, typ)
		if err != nil {
			return err
		}
		out = models.FromAccount(a)
		return nil
	})
	if recordOutcome("open_account", err) != nil {
		return models.Account{}, err
	}
	zap.L().Info("account opened", zap.String("username", username), zap.Int("account_id", out.ID), zap.String("type", out.Type))
	return out, nil
}

// CustomerProfile returns the customer with accounts and loans.
func (s *UserService) CustomerProfile(ctx context.Context, username string) (models.Customer, error) {
	var out models.Customer
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		c, err := r.FindCustomerByUsername(username)
		if err != nil {
			return err
		}
		out = models.FromCustomer(c)
		return nil
	})
	return out, err
}

// FindCustomerByName returns the first customer whose name matches, ignoring case.
func (s *UserService) FindCustomerByName(ctx context.Context, name string) (models.Customer, error) {
	var out models.Customer
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		c, err := r.FindCustomerByName(name)
		if err != nil {
			return err
		}
		out = models.FromCustomer(c)
		return nil
	})
	return out, err
}

func (s *UserService) FindEmployeeByName(ctx context.Context, name string) (models.Employee, error) {
	var out models.Employee
	err := s.store.Read(ctx, func(r *ledger.Registry) error {
		e, err := r.FindEmployeeByName(name)
		if err != nil {
			return err
		}
		out = models.FromEmployee(e)
		return nil
	})
	return out, err
}
