package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/api/problem"
	"github.com/ayo6706/retail-ledger/internal/idempotency"
	"github.com/ayo6706/retail-ledger/internal/observability"
	"go.uber.org/zap"
)

// Idempotent guards one money-moving operation with the Idempotency-Key
// contract. Keys are private to the caller. A repeated request gets the
// recorded response with X-Idempotent-Replay set; a server failure releases
// the key so the client can retry.
func Idempotent(store *idempotency.Store, logger *zap.Logger, operation string) func(http.Handler) http.Handler {
	g := &idempotencyGuard{
		store:     store,
		logger:    logger.With(zap.String("operation", operation)),
		operation: operation,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}
			g.serve(next, w, r)
		})
	}
}

type idempotencyGuard struct {
	store     *idempotency.Store
	logger    *zap.Logger
	operation string
}

func (g *idempotencyGuard) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	clientKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if clientKey == "" {
		g.event("missing_key")
		problem.Write(w, r, http.StatusBadRequest, problem.Type("idempotency/missing-key"), http.StatusText(http.StatusBadRequest), "Idempotency-Key header is required")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.Type("request/invalid-body"), http.StatusText(http.StatusBadRequest), "Failed to read request body")
		return
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	key := scopedKey(r.Context(), clientKey)
	hash := hashRequest(r.Method, r.URL.Path, body)

	rec, err := g.store.Lookup(r.Context(), key, hash)
	switch {
	case err == nil:
		g.replay(w, rec, "replay")
		return
	case errors.Is(err, idempotency.ErrHashMismatch):
		g.event("hash_mismatch")
		problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/key-conflict"), http.StatusText(http.StatusConflict), "conflicting idempotency key")
		return
	case errors.Is(err, idempotency.ErrInProgress):
		g.awaitAndReplay(w, r, key, hash, "replay_after_wait")
		return
	case !errors.Is(err, idempotency.ErrNotFound):
		g.event("lookup_error")
		g.logger.Warn("idempotency lookup failed", zap.Error(err))
	}

	reserved, err := g.store.Reserve(r.Context(), key, hash, r.Method, r.URL.Path)
	if err != nil {
		g.event("reserve_error")
		g.logger.Error("idempotency reserve failed", zap.Error(err))
		problem.Write(w, r, http.StatusInternalServerError, problem.Type("idempotency/unavailable"), http.StatusText(http.StatusInternalServerError), "idempotency unavailable")
		return
	}
	if !reserved {
		g.awaitAndReplay(w, r, key, hash, "replay_after_reserve")
		return
	}
	g.event("reserved")

	recorder := &bodyRecorder{ResponseWriter: w}
	next.ServeHTTP(recorder, r)
	g.settle(context.WithoutCancel(r.Context()), key, hash, recorder)
}

// settle records the handler's response for replay. 5xx responses are not
// recorded.
func (g *idempotencyGuard) settle(ctx context.Context, key, hash string, rec *bodyRecorder) {
	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	if status >= http.StatusInternalServerError {
		if err := g.store.Release(ctx, key); err != nil {
			g.event("release_error")
			g.logger.Warn("idempotency release failed", zap.Error(err), zap.String("key", key))
			return
		}
		g.event("released")
		return
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	if _, err := g.store.Finalize(ctx, key, hash, status, rec.body.Bytes(), contentType); err != nil {
		g.event("finalize_error")
		g.logger.Warn("idempotency finalize failed", zap.Error(err), zap.String("key", key))
		return
	}
	g.event("finalized_" + outcomeKind(status))
}

func (g *idempotencyGuard) awaitAndReplay(w http.ResponseWriter, r *http.Request, key, hash, outcome string) {
	rec, err := g.store.WaitForCompletion(r.Context(), key, hash)
	if err != nil {
		g.event("in_progress_conflict")
		g.logger.Warn("idempotency wait failed", zap.Error(err))
		problem.Write(w, r, http.StatusConflict, problem.Type("idempotency/in-progress"), http.StatusText(http.StatusConflict), "idempotency processing")
		return
	}
	g.replay(w, rec, outcome)
}

func (g *idempotencyGuard) replay(w http.ResponseWriter, rec *idempotency.Record, outcome string) {
	g.event(outcome)
	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("X-Idempotent-Replay", rec.ServedBy)
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}

func (g *idempotencyGuard) event(outcome string) {
	observability.IncrementIdempotencyEvent(g.operation, outcome)
}

// outcomeKind names a recorded response by the ledger error kind its status
// carries.
func outcomeKind(status int) string {
	switch {
	case status < http.StatusBadRequest:
		return "ok"
	case status == http.StatusBadRequest:
		return "validation"
	case status == http.StatusUnauthorized:
		return "auth"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusConflict:
		return "state"
	default:
		return "rejected"
	}
}

func scopedKey(ctx context.Context, key string) string {
	if principal := PrincipalKey(ctx); principal != "" {
		return principal + "|" + key
	}
	return key
}

func hashRequest(method, path string, body []byte) string {
	sum := sha256.Sum256(append([]byte(method+"|"+path+"|"), body...))
	return hex.EncodeToString(sum[:])
}

type bodyRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	if br.status == 0 {
		br.status = http.StatusOK
	}
	br.body.Write(b)
	return br.ResponseWriter.Write(b)
}
