package api

import (
	"net/http"

	"github.com/ayo6706/retail-ledger/internal/api/handler"
	"github.com/ayo6706/retail-ledger/internal/api/middleware"
	"github.com/ayo6706/retail-ledger/internal/api/spec"
	"github.com/ayo6706/retail-ledger/internal/config"
	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/idempotency"
	"github.com/ayo6706/retail-ledger/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Services groups the use cases the HTTP layer exposes.
type Services struct {
	Users          *service.UserService
	Auth           *service.AuthService
	Accounts       *service.AccountService
	Transfers      *service.TransferService
	Loans          *service.LoanService
	Audit          *service.AuditService
	Reconciliation *service.ReconciliationService
}

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	idemStore *idempotency.Store
	redis     redis.Cmdable
	svc       Services
}

func NewRouter(cfg *config.Config, logger *zap.Logger, idemStore *idempotency.Store, redis redis.Cmdable, svc Services) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{cfg: cfg, logger: logger, idemStore: idemStore, redis: redis, svc: svc}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	// Handlers
	healthHandler := handler.NewHealthHandler(api.redis)
	authHandler := handler.NewAuthHandler(api.svc.Auth, api.cfg.JWTTTL)
	userHandler := handler.NewUserHandler(api.svc.Users)
	accountHandler := handler.NewAccountHandler(api.svc.Accounts)
	transferHandler := handler.NewTransferHandler(api.svc.Transfers)
	loanHandler := handler.NewLoanHandler(api.svc.Loans)
	auditHandler := handler.NewAuditHandler(api.svc.Audit, api.svc.Reconciliation)
	idempotent := func(operation string) func(http.Handler) http.Handler {
		return middleware.Idempotent(api.idemStore, api.logger, operation)
	}

	// Ops
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	// Public Routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Post("/v1/auth/customer/login", authHandler.Login(domain.RoleCustomer))
		r.Post("/v1/auth/employee/login", authHandler.Login(domain.RoleEmployee))
		r.Post("/v1/auth/admin/login", authHandler.Login(domain.RoleAdmin))
		r.Post("/v1/customers", userHandler.CreateCustomer)
	})

	// Protected Routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		// Customer
		r.Route("/v1/me", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleCustomer))
			r.Get("/", userHandler.Profile)
			r.Get("/account", accountHandler.Me)
			r.Get("/transactions", accountHandler.MyTransactions)
			r.Post("/accounts", userHandler.OpenAccount)
			r.Post("/deposit", accountHandler.Deposit)
			r.Post("/withdraw", accountHandler.Withdraw)
			r.With(idempotent("transfer")).Post("/transfer", transferHandler.Transfer)
			r.Get("/loans", loanHandler.MyLoans)
			r.Post("/loans", loanHandler.Apply)
			r.With(idempotent("loan_payoff")).Post("/loans/{id}/payoff", loanHandler.PayOff)
			r.Post("/password", authHandler.ChangePassword)
		})

		// Staff
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleEmployee, domain.RoleAdmin))
			r.Post("/v1/staff/customers", userHandler.CreateCustomer)
			r.Get("/v1/customers", userHandler.FindCustomer)
			r.Get("/v1/accounts/{id}", accountHandler.GetAccount)
			r.Get("/v1/accounts/{id}/transactions", accountHandler.GetStatement)
			r.Post("/v1/accounts/{id}/interest", accountHandler.ApplyInterest)
		})

		// Employee
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleEmployee))
			r.Get("/v1/loans", loanHandler.List)
			r.With(idempotent("loan_approve")).Post("/v1/loans/{id}/approve", loanHandler.Approve)
			r.Post("/v1/employees/me/password", authHandler.ChangePassword)
		})

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Post("/v1/employees", userHandler.CreateEmployee)
			r.Get("/v1/employees", userHandler.FindEmployee)
			r.Get("/v1/audit", auditHandler.List)
			r.Post("/v1/reconciliation", auditHandler.Reconcile)
		})
	})

	return r
}
