package handler

import (
	"net/http"

	"github.com/ayo6706/retail-ledger/internal/service"
)

type LoanHandler struct {
	svc *service.LoanService
}

func NewLoanHandler(svc *service.LoanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

type loanAmountRequest struct {
	Amount amountField `json:"amount"`
}

func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req loanAmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	loan, err := h.svc.Apply(r.Context(), username, req.Amount.Decimal)
	if err != nil {
		respondDomainError(w, r, err, "apply for loan")
		return
	}
	RespondJSON(w, http.StatusCreated, loan)
}

// MyLoans lists the caller's loans; ?view=older shows closed ones.
func (h *LoanHandler) MyLoans(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	loans, err := h.svc.ListForCustomer(r.Context(), username, r.URL.Query().Get("view"))
	if err != nil {
		respondDomainError(w, r, err, "list loans")
		return
	}
	RespondJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) PayOff(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	loanID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req loanAmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PayOff(r.Context(), username, loanID, req.Amount.Decimal)
	if err != nil {
		respondDomainError(w, r, err, "pay off loan")
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// List returns a staff queue selected by ?status=unapproved|approved|closed.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		respondDomainError(w, r, err, "list loans")
		return
	}
	RespondJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestUser(w, r)
	if !ok {
		return
	}
	loanID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	loan, err := h.svc.Approve(r.Context(), actor, loanID)
	if err != nil {
		respondDomainError(w, r, err, "approve loan")
		return
	}
	RespondJSON(w, http.StatusOK, loan)
}
