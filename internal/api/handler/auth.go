package handler

import (
	"net/http"
	"time"

	"github.com/ayo6706/retail-ledger/internal/api/middleware"
	"github.com/ayo6706/retail-ledger/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc *service.AuthService
	ttl time.Duration
}

func NewAuthHandler(svc *service.AuthService, ttl time.Duration) *AuthHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthHandler{svc: svc, ttl: ttl}
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login returns a handler that authenticates the given role and issues a token.
func (h *AuthHandler) Login(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := h.svc.Authenticate(r.Context(), role, req.Username, req.Password); err != nil {
			respondDomainError(w, r, err, "login")
			return
		}

		token, expires, err := middleware.IssueToken(req.Username, role, h.ttl)
		if err != nil {
			zap.L().Error("issue token failed", zap.Error(err))
			RespondError(w, r, http.StatusInternalServerError, "auth/token-issue-failed", "Failed to sign token")
			return
		}
		RespondJSON(w, http.StatusOK, loginResponse{Token: token, Role: role, ExpiresAt: expires})
	}
}

// ChangePassword re-authenticates the caller with the current password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	role := middleware.UserRoleFromContext(r.Context())
	if err := h.svc.ResetPassword(r.Context(), role, username, req.CurrentPassword, req.NewPassword); err != nil {
		respondDomainError(w, r, err, "change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
