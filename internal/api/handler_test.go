package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ayo6706/retail-ledger/internal/api"
	"github.com/ayo6706/retail-ledger/internal/api/middleware"
	"github.com/ayo6706/retail-ledger/internal/config"
	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/ayo6706/retail-ledger/internal/idempotency"
	"github.com/ayo6706/retail-ledger/internal/models"
	"github.com/ayo6706/retail-ledger/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret   = "test-secret-0123456789-test-secret"
	testJWTIssuer   = "retail-ledger-test"
	testJWTAudience = "ledger-api-test"
)

func TestMain(m *testing.M) {
	middleware.SetJWTSecret(testJWTSecret)
	middleware.SetJWTValidation(testJWTIssuer, testJWTAudience)
	os.Exit(m.Run())
}

func setupAPI() http.Handler {
	store := service.NewStore(nil)
	audit := service.NewAuditService(100)
	cfg := &config.Config{
		HTTPPort:           "0",
		JWTSecret:          testJWTSecret,
		JWTIssuer:          testJWTIssuer,
		JWTAudience:        testJWTAudience,
		JWTTTL:             time.Hour,
		PublicRateLimitRPS: 1000,
		AuthRateLimitRPS:   1000,
		IdempotencyTTL:     time.Hour,
	}
	idemStore := idempotency.NewStore(idempotency.NewMemoryBackend(), cfg.IdempotencyTTL)
	return api.NewRouter(cfg, zap.NewNop(), idemStore, nil, api.Services{
		Users:          service.NewUserService(store, audit),
		Auth:           service.NewAuthService(store, audit),
		Accounts:       service.NewAccountService(store),
		Transfers:      service.NewTransferService(store),
		Loans:          service.NewLoanService(store, audit),
		Audit:          audit,
		Reconciliation: service.NewReconciliationService(store),
	}).Routes()
}

type request struct {
	method string
	path   string
	body   any
	token  string
	key    string
}

func do(t *testing.T, h http.Handler, rq request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if rq.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(rq.body))
	}
	req := httptest.NewRequest(rq.method, rq.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if rq.token != "" {
		req.Header.Set("Authorization", "Bearer "+rq.token)
	}
	if rq.key != "" {
		req.Header.Set("Idempotency-Key", rq.key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func login(t *testing.T, h http.Handler, role, username, password string) string {
	t.Helper()
	w := do(t, h, request{
		method: http.MethodPost,
		path:   "/v1/auth/" + role + "/login",
		body:   map[string]string{"username": username, "password": password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}](t, w)
	require.Equal(t, role, resp.Role)
	return resp.Token
}

// registerCustomer signs a customer up and returns a token and their first account ID.
func registerCustomer(t *testing.T, h http.Handler, username, accountType string) (string, int) {
	t.Helper()
	w := do(t, h, request{
		method: http.MethodPost,
		path:   "/v1/customers",
		body: map[string]string{
			"name":         "Customer " + username,
			"address":      "1 Test Road",
			"phone":        "5550001111",
			"username":     username,
			"password":     username + "-pw",
			"account_type": accountType,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	c := decode[models.Customer](t, w)
	require.Len(t, c.Accounts, 1)
	return login(t, h, domain.RoleCustomer, username, username+"-pw"), c.Accounts[0].ID
}

// employeeToken creates an employee through the admin surface and logs in.
func employeeToken(t *testing.T, h http.Handler) string {
	t.Helper()
	admin := login(t, h, domain.RoleAdmin, domain.DefaultAdminUsername, domain.DefaultAdminPassword)
	w := do(t, h, request{
		method: http.MethodPost,
		path:   "/v1/employees",
		token:  admin,
		body:   map[string]string{"name": "Teller", "phone": "5550002222", "username": "teller", "password": "teller-pw"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	e := decode[models.Employee](t, w)
	assert.Equal(t, domain.FirstEmployeeID, e.ID)
	return login(t, h, domain.RoleEmployee, "teller", "teller-pw")
}

func TestRFC7807ProblemDetails(t *testing.T) {
	h := setupAPI()

	w := do(t, h, request{method: http.MethodGet, path: "/v1/me/account"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")

	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["type"])
	assert.Equal(t, float64(http.StatusUnauthorized), body["status"])
	assert.NotEmpty(t, body["title"])
	assert.NotEmpty(t, body["detail"])
	assert.Equal(t, "/v1/me/account", body["instance"])
	assert.NotEmpty(t, body["request_id"])
}

func TestRegisterCustomer(t *testing.T) {
	h := setupAPI()

	_, accountID := registerCustomer(t, h, "ayo", "savings")
	assert.Equal(t, domain.FirstAccountID, accountID)

	t.Run("duplicate username", func(t *testing.T) {
		w := do(t, h, request{
			method: http.MethodPost,
			path:   "/v1/customers",
			body: map[string]string{
				"name": "Other", "phone": "1", "username": "ayo", "password": "x", "account_type": "current",
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid account type", func(t *testing.T) {
		w := do(t, h, request{
			method: http.MethodPost,
			path:   "/v1/customers",
			body: map[string]string{
				"name": "Other", "phone": "1", "username": "other", "password": "x", "account_type": "checking",
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/customers", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := setupAPI()
	registerCustomer(t, h, "ayo", "current")

	cases := []struct {
		name     string
		role     string
		username string
		password string
	}{
		{name: "wrong password", role: domain.RoleCustomer, username: "ayo", password: "nope"},
		{name: "unknown user", role: domain.RoleCustomer, username: "ghost", password: "x"},
		{name: "customer as employee", role: domain.RoleEmployee, username: "ayo", password: "ayo-pw"},
		{name: "wrong admin password", role: domain.RoleAdmin, username: "admin", password: "admin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, request{
				method: http.MethodPost,
				path:   "/v1/auth/" + tc.role + "/login",
				body:   map[string]string{"username": tc.username, "password": tc.password},
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestDepositWithdrawAndStatement(t *testing.T) {
	h := setupAPI()
	token, accountID := registerCustomer(t, h, "ayo", "current")

	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": "100.50"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "100.50", decode[models.Account](t, w).Balance)

	// Current accounts may overdraw down to -500.
	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/withdraw", token: token, body: map[string]any{"account_id": accountID, "amount": "600.50"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "-500.00", decode[models.Account](t, w).Balance)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/withdraw", token: token, body: map[string]any{"amount": "0.01"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": "-5"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decode[map[string]any](t, w)["kind"])

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/transactions?page=1&page_size=1", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[models.Statement](t, w)
	assert.Equal(t, accountID, st.AccountID)
	assert.Equal(t, 2, st.Total)
	require.Len(t, st.Entries, 1)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/account?account_id=999", token: token})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAmountLimits(t *testing.T) {
	h := setupAPI()
	token, _ := registerCustomer(t, h, "ayo", "savings")

	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": 25.5}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "25.50", decode[models.Account](t, w).Balance)

	rejected := []any{"1e30000000", "0.0000001", "12.345", "1000000000000.01", json.RawMessage("1e30000000")}
	for _, amount := range rejected {
		t.Run(fmt.Sprint(amount), func(t *testing.T) {
			w := do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": amount}})
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "validation", decode[map[string]any](t, w)["kind"])
		})
	}

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/loans", token: token, body: map[string]any{"amount": "0.001"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/account", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "25.50", decode[models.Account](t, w).Balance)
}

func TestSavingsInterest(t *testing.T) {
	h := setupAPI()
	token, accountID := registerCustomer(t, h, "ayo", "savings")
	staff := employeeToken(t, h)

	w := do(t, h, request{method: http.MethodPost, path: fmt.Sprintf("/v1/accounts/%d/interest", accountID), token: staff})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": "500"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: fmt.Sprintf("/v1/accounts/%d/interest", accountID), token: staff})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.Interest](t, w)
	assert.True(t, res.Applied)
	assert.Equal(t, "15.00", res.Interest)
	assert.Equal(t, "515.00", res.Balance)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/accounts/999/interest", token: staff})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransferIdempotency(t *testing.T) {
	h := setupAPI()
	token, fromID := registerCustomer(t, h, "ayo", "current")
	_, toID := registerCustomer(t, h, "david", "current")

	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": "100"}})
	require.Equal(t, http.StatusOK, w.Code)

	payload := map[string]any{"from_account_id": fromID, "to_account_id": toID, "amount": "50"}
	key := uuid.NewString()

	w1 := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, key: key, body: payload})
	require.Equal(t, http.StatusCreated, w1.Code, w1.Body.String())
	assert.Empty(t, w1.Header().Get("X-Idempotent-Replay"))

	w2 := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, key: key, body: payload})
	require.Equal(t, http.StatusCreated, w2.Code)
	assert.NotEmpty(t, w2.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())

	// Same key with a different body is a conflict.
	payload["amount"] = "10"
	w3 := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, key: key, body: payload})
	assert.Equal(t, http.StatusConflict, w3.Code)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/account", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "50.00", decode[models.Account](t, w).Balance)

	t.Run("missing key", func(t *testing.T) {
		w := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, body: payload})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown destination", func(t *testing.T) {
		w := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, key: uuid.NewString(),
			body: map[string]any{"to_account_id": 999, "amount": "1"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("source not owned", func(t *testing.T) {
		w := do(t, h, request{method: http.MethodPost, path: "/v1/me/transfer", token: token, key: uuid.NewString(),
			body: map[string]any{"from_account_id": toID, "to_account_id": fromID, "amount": "1"}})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoanLifecycle(t *testing.T) {
	h := setupAPI()
	token, _ := registerCustomer(t, h, "ayo", "savings")
	staff := employeeToken(t, h)

	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/loans", token: token, body: map[string]any{"amount": "1000"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[models.Loan](t, w)
	assert.Equal(t, domain.FirstLoanID, loan.ID)
	assert.Equal(t, domain.LoanStatusPending, loan.Status)

	payoffPath := fmt.Sprintf("/v1/me/loans/%d/payoff", loan.ID)
	w = do(t, h, request{method: http.MethodPost, path: payoffPath, token: token, key: uuid.NewString(), body: map[string]any{"amount": "100"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/loans?status=unapproved", token: staff})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Loan](t, w), 1)

	approvePath := fmt.Sprintf("/v1/loans/%d/approve", loan.ID)
	w = do(t, h, request{method: http.MethodPost, path: approvePath, token: staff, key: uuid.NewString()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.LoanStatusApproved, decode[models.Loan](t, w).Status)

	// A second approval under a fresh key must not disburse again.
	w = do(t, h, request{method: http.MethodPost, path: approvePath, token: staff, key: uuid.NewString()})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "state", decode[map[string]any](t, w)["kind"])

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/account", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1000.00", decode[models.Account](t, w).Balance)

	w = do(t, h, request{method: http.MethodPost, path: payoffPath, token: token, key: uuid.NewString(), body: map[string]any{"amount": "1500"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: payoffPath, token: token, key: uuid.NewString(), body: map[string]any{"amount": "400"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.Payoff](t, w)
	assert.Equal(t, "600.00", res.Remaining)
	assert.False(t, res.Closed)
	assert.True(t, res.Withdrawn)

	w = do(t, h, request{method: http.MethodPost, path: payoffPath, token: token, key: uuid.NewString(), body: map[string]any{"amount": "600"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[models.Payoff](t, w).Closed)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/loans?view=older", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	older := decode[[]models.Loan](t, w)
	require.Len(t, older, 1)
	assert.Equal(t, domain.LoanStatusClosed, older[0].Status)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/me/loans", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Loan](t, w))
}

func TestRoleEnforcement(t *testing.T) {
	h := setupAPI()
	customer, accountID := registerCustomer(t, h, "ayo", "current")
	staff := employeeToken(t, h)
	admin := login(t, h, domain.RoleAdmin, domain.DefaultAdminUsername, domain.DefaultAdminPassword)

	cases := []struct {
		name   string
		token  string
		method string
		path   string
		want   int
	}{
		{name: "customer views any account", token: customer, method: http.MethodGet, path: fmt.Sprintf("/v1/accounts/%d", accountID), want: http.StatusForbidden},
		{name: "customer lists loan queue", token: customer, method: http.MethodGet, path: "/v1/loans", want: http.StatusForbidden},
		{name: "employee uses customer surface", token: staff, method: http.MethodGet, path: "/v1/me/account", want: http.StatusForbidden},
		{name: "employee reads audit trail", token: staff, method: http.MethodGet, path: "/v1/audit", want: http.StatusForbidden},
		{name: "admin approves loans", token: admin, method: http.MethodPost, path: "/v1/loans/1656/approve", want: http.StatusForbidden},
		{name: "employee views account", token: staff, method: http.MethodGet, path: fmt.Sprintf("/v1/accounts/%d", accountID), want: http.StatusOK},
		{name: "admin views account", token: admin, method: http.MethodGet, path: fmt.Sprintf("/v1/accounts/%d", accountID), want: http.StatusOK},
		{name: "admin reads audit trail", token: admin, method: http.MethodGet, path: "/v1/audit", want: http.StatusOK},
		{name: "invalid token", token: "not-a-jwt", method: http.MethodGet, path: "/v1/me", want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, request{method: tc.method, path: tc.path, token: tc.token})
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestStaffLookups(t *testing.T) {
	h := setupAPI()
	registerCustomer(t, h, "ayo", "current")
	staff := employeeToken(t, h)
	admin := login(t, h, domain.RoleAdmin, domain.DefaultAdminUsername, domain.DefaultAdminPassword)

	w := do(t, h, request{method: http.MethodGet, path: "/v1/customers?name=customer%20AYO", token: staff})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ayo", decode[models.Customer](t, w).Username)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/customers?name=nobody", token: staff})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/customers", token: staff})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodGet, path: "/v1/employees?name=teller", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teller", decode[models.Employee](t, w).Username)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/staff/customers", token: staff, body: map[string]string{
		"name": "Walk In", "phone": "5550003333", "username": "walkin", "password": "walkin-pw", "account_type": "2",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "current", decode[models.Customer](t, w).Accounts[0].Type)
}

func TestChangePassword(t *testing.T) {
	h := setupAPI()
	token, _ := registerCustomer(t, h, "ayo", "current")

	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/password", token: token,
		body: map[string]string{"current_password": "wrong", "new_password": "fresh"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/password", token: token,
		body: map[string]string{"current_password": "ayo-pw", "new_password": " "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, request{method: http.MethodPost, path: "/v1/me/password", token: token,
		body: map[string]string{"current_password": "ayo-pw", "new_password": "fresh"}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	login(t, h, domain.RoleCustomer, "ayo", "fresh")
}

func TestReconciliationEndpoint(t *testing.T) {
	h := setupAPI()
	token, _ := registerCustomer(t, h, "ayo", "savings")
	w := do(t, h, request{method: http.MethodPost, path: "/v1/me/deposit", token: token, body: map[string]any{"amount": "250"}})
	require.Equal(t, http.StatusOK, w.Code)

	admin := login(t, h, domain.RoleAdmin, domain.DefaultAdminUsername, domain.DefaultAdminPassword)
	w = do(t, h, request{method: http.MethodPost, path: "/v1/reconciliation", token: admin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	report := decode[struct {
		Accounts int  `json:"accounts"`
		Balanced bool `json:"balanced"`
	}](t, w)
	assert.Equal(t, 1, report.Accounts)
	assert.True(t, report.Balanced)
}

func TestHealthAndMetrics(t *testing.T) {
	h := setupAPI()

	cases := []struct {
		name string
		path string
	}{
		{name: "live", path: "/health/live"},
		{name: "ready", path: "/health/ready"},
		{name: "metrics", path: "/metrics"},
		{name: "openapi", path: "/openapi.yaml"},
		{name: "docs", path: "/docs/index.html"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, h, request{method: http.MethodGet, path: tc.path})
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
