package handler

import (
	"net/http"
	"strconv"

	"github.com/ayo6706/retail-ledger/internal/service"
)

type AccountHandler struct {
	svc *service.AccountService
}

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type movementRequest struct {
	// AccountID selects one of the caller's accounts; omitted means the first.
	AccountID int         `json:"account_id"`
	Amount    amountField `json:"amount"`
}

// Me returns the caller's account, the first one unless account_id is given.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	accountID, ok := optionalAccountID(w, r)
	if !ok {
		return
	}
	account, err := h.svc.GetCustomerAccount(r.Context(), username, accountID)
	if err != nil {
		respondDomainError(w, r, err, "get account")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	accountID, ok := optionalAccountID(w, r)
	if !ok {
		return
	}
	page, pageSize := pageParams(r)
	st, err := h.svc.GetCustomerStatement(r.Context(), username, accountID, page, pageSize)
	if err != nil {
		respondDomainError(w, r, err, "get statement")
		return
	}
	RespondJSON(w, http.StatusOK, st)
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.Deposit(r.Context(), username, req.AccountID, req.Amount.Decimal)
	if err != nil {
		respondDomainError(w, r, err, "deposit")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req movementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.Withdraw(r.Context(), username, req.AccountID, req.Amount.Decimal)
	if err != nil {
		respondDomainError(w, r, err, "withdraw")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

// GetAccount lets staff view any account.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(r.Context(), accountID)
	if err != nil {
		respondDomainError(w, r, err, "get account")
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	page, pageSize := pageParams(r)
	st, err := h.svc.GetStatement(r.Context(), accountID, page, pageSize)
	if err != nil {
		respondDomainError(w, r, err, "get statement")
		return
	}
	RespondJSON(w, http.StatusOK, st)
}

func (h *AccountHandler) ApplyInterest(w http.ResponseWriter, r *http.Request) {
	accountID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.ApplyInterest(r.Context(), accountID)
	if err != nil {
		respondDomainError(w, r, err, "apply interest")
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

func optionalAccountID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("account_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid account ID")
		return 0, false
	}
	return id, true
}
