package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/api/middleware"
	"github.com/ayo6706/retail-ledger/internal/api/problem"
	"github.com/ayo6706/retail-ledger/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError writes an error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

// respondDomainError maps ledger error kinds onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	kind := domain.KindOf(err)
	switch {
	case errors.Is(err, domain.ErrValidation):
		problem.WriteKind(w, r, http.StatusBadRequest, problem.Type("ledger/validation"), "", err.Error(), kind)
	case errors.Is(err, domain.ErrNotFound):
		problem.WriteKind(w, r, http.StatusNotFound, problem.Type("ledger/not-found"), "", err.Error(), kind)
	case errors.Is(err, domain.ErrAuth):
		problem.WriteKind(w, r, http.StatusUnauthorized, problem.Type("auth/invalid-credentials"), "", err.Error(), kind)
	case errors.Is(err, domain.ErrState):
		problem.WriteKind(w, r, http.StatusConflict, problem.Type("ledger/state"), "", err.Error(), kind)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		RespondError(w, r, http.StatusServiceUnavailable, "request/cancelled", "request cancelled")
	default:
		zap.L().Error(operation+" failed", zap.Error(err), zap.String("trace_id", middleware.TraceIDFromContext(r.Context())))
		RespondError(w, r, http.StatusInternalServerError, "internal-server-error", "unexpected server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			respondDomainError(w, r, err, "decode request")
			return false
		}
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return false
	}
	return true
}

// amountField accepts "12.50" or 12.50 and applies the ledger's amount limits
// while decoding, so oversized values never reach an account.
type amountField struct {
	decimal.Decimal
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	d, err := domain.ParseAmount(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// requestUser returns the authenticated username from the request context.
func requestUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := middleware.UsernameFromContext(r.Context())
	if username == "" {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return "", false
	}
	return username, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-"+name, "Invalid "+name)
		return 0, false
	}
	return v, true
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
