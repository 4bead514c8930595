package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayo6706/retail-ledger/internal/idempotency"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	SetJWTSecret("middleware-test-secret-0123456789-abc")
	SetJWTValidation("retail-ledger-test", "ledger-api-test")
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(PrincipalKey(r.Context())))
	})
}

func TestIssueTokenRoundTrip(t *testing.T) {
	token, expires, err := IssueToken("jay", "customer", time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expires, 5*time.Second)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	AuthMiddleware(echoPrincipal()).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "customer:jay", rr.Body.String())
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired, _, err := IssueToken("jay", "customer", -time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"format":  "Token abc",
		"garbage": "Bearer abc.def.ghi",
		"expired": "Bearer " + expired,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			AuthMiddleware(echoPrincipal()).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
		})
	}
}

func TestRequireRole(t *testing.T) {
	token, _, err := IssueToken("ann", "employee", time.Minute)
	require.NoError(t, err)
	h := AuthMiddleware(RequireRole("employee", "admin")(echoPrincipal()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	token, _, err = IssueToken("jay", "customer", time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestTraceMiddleware(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(TraceIDFromContext(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Body.String())
	assert.Equal(t, "abc", rr.Header().Get("X-Trace-ID"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Body.String())
}

func TestTraceMiddleware_Sanitizes(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(TraceIDFromContext(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "req-42", rr.Body.String())

	for _, bad := range []string{"has space", "new\nline", strings.Repeat("a", maxTraceIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", bad)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.NotEqual(t, bad, rr.Body.String())
		assert.Len(t, rr.Body.String(), 36)
	}
}

func TestLoggingMiddleware_RecordsPrincipalAndRoute(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	token, _, err := IssueToken("jay", "customer", time.Minute)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(TraceMiddleware)
	r.Use(LoggingMiddleware(zap.New(core)))
	r.With(AuthMiddleware).Get("/v1/accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/accounts/7", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "customer:jay", fields["principal"])
	assert.Equal(t, "/v1/accounts/{id}", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

func TestRequestLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, requestLogLevel("/v1/me", http.StatusInternalServerError))
	assert.Equal(t, zapcore.WarnLevel, requestLogLevel("/v1/me", http.StatusConflict))
	assert.Equal(t, zapcore.DebugLevel, requestLogLevel("/health/live", http.StatusOK))
	assert.Equal(t, zapcore.DebugLevel, requestLogLevel("/metrics", http.StatusOK))
	assert.Equal(t, zapcore.InfoLevel, requestLogLevel("/v1/me", http.StatusOK))
}

func TestRoutePattern_Unmatched(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routePattern(httptest.NewRequest(http.MethodGet, "/v1/accounts/9", nil)))
}

func TestRecoverMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := TraceMiddleware(RecoverMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/me/deposit", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestIdempotent_ReleasesKeyOnServerError(t *testing.T) {
	store := idempotency.NewStore(idempotency.NewMemoryBackend(), time.Hour)
	calls := 0
	h := Idempotent(store, zap.NewNop(), "loan_approve")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"APPROVED"}`))
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/loans/1656/approve", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "approve-1656")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusServiceUnavailable, send().Code)

	w := send()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Idempotent-Replay"))

	w = send()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory", w.Header().Get("X-Idempotent-Replay"))
	assert.JSONEq(t, `{"status":"APPROVED"}`, w.Body.String())
	assert.Equal(t, 2, calls)
}

func TestIdempotent_KeysAreScopedToPrincipal(t *testing.T) {
	store := idempotency.NewStore(idempotency.NewMemoryBackend(), time.Hour)
	calls := 0
	h := Idempotent(store, zap.NewNop(), "transfer")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for _, user := range []string{"ayo", "david"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/me/transfer", strings.NewReader("{}"))
		req.Header.Set("Idempotency-Key", "same-key")
		ctx := context.WithValue(req.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, roleContextKey, "customer")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("X-Idempotent-Replay"))
	}
	assert.Equal(t, 2, calls)
}

func TestOutcomeKind(t *testing.T) {
	cases := map[int]string{
		http.StatusCreated:             "ok",
		http.StatusBadRequest:          "validation",
		http.StatusUnauthorized:        "auth",
		http.StatusNotFound:            "not_found",
		http.StatusConflict:            "state",
		http.StatusUnprocessableEntity: "rejected",
	}
	for status, want := range cases {
		assert.Equal(t, want, outcomeKind(status), status)
	}
}

func TestAuthRateLimiter_PerPrincipal(t *testing.T) {
	h := AuthRateLimiter(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	send := func(role, user string) int {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		ctx := context.WithValue(req.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, roleContextKey, role)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req.WithContext(ctx))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("customer", "ayo"))
	assert.Equal(t, http.StatusTooManyRequests, send("customer", "ayo"))
	assert.Equal(t, http.StatusOK, send("employee", "ayo"))
}
