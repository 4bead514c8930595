package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayo6706/retail-ledger/internal/api/problem"
	"github.com/go-chi/httprate"
)

// PublicRateLimiter limits login and sign-up traffic per client IP.
func PublicRateLimiter(rps int) func(http.Handler) http.Handler {
	return limiter(rps, "this IP", httprate.KeyByIP)
}

// AuthRateLimiter limits each signed-in principal ("role:username"), so a
// customer and an employee sharing a username get separate budgets.
// Requests without a principal fall back to the client IP.
func AuthRateLimiter(rps int) func(http.Handler) http.Handler {
	return limiter(rps, "this user", func(r *http.Request) (string, error) {
		if key := PrincipalKey(r.Context()); key != "" {
			return key, nil
		}
		return httprate.KeyByIP(r)
	})
}

func limiter(rps int, subject string, key httprate.KeyFunc) func(http.Handler) http.Handler {
	detail := fmt.Sprintf("Rate limit of %d req/s exceeded for %s", rps, subject)
	return httprate.Limit(rps, time.Second,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			problem.Write(w, r, http.StatusTooManyRequests, problem.Type("rate-limit-exceeded"), http.StatusText(http.StatusTooManyRequests), detail)
		}),
	)
}
