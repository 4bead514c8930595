package handler

import (
	"net/http"
	"strconv"

	"github.com/ayo6706/retail-ledger/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
	recon *service.ReconciliationService
}

func NewAuditHandler(audit *service.AuditService, recon *service.ReconciliationService) *AuditHandler {
	return &AuditHandler{audit: audit, recon: recon}
}

// List returns recent audit records, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	RespondJSON(w, http.StatusOK, h.audit.Recent(r.Context(), limit))
}

// Reconcile runs the ledger invariant check on demand.
func (h *AuditHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.recon.Run(r.Context())
	if err != nil {
		respondDomainError(w, r, err, "reconcile")
		return
	}
	violations := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		violations = append(violations, v.String())
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"accounts":      report.Accounts,
		"loans":         report.Loans,
		"pending_loans": report.PendingLoans,
		"balanced":      len(violations) == 0,
		"violations":    violations,
	})
}
