package handler

import (
	"net/http"

	"github.com/ayo6706/retail-ledger/internal/service"
)

type TransferHandler struct {
	svc *service.TransferService
}

func NewTransferHandler(svc *service.TransferService) *TransferHandler {
	return &TransferHandler{svc: svc}
}

// Transfer moves funds from one of the caller's accounts to any account.
// Requests must carry an Idempotency-Key; the middleware enforces it.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req struct {
		FromAccountID int         `json:"from_account_id"`
		ToAccountID   int         `json:"to_account_id"`
		Amount        amountField `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ToAccountID <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-to-account-id", "Invalid to_account_id")
		return
	}

	tx, err := h.svc.Transfer(r.Context(), username, req.FromAccountID, req.ToAccountID, req.Amount.Decimal)
	if err != nil {
		respondDomainError(w, r, err, "transfer")
		return
	}
	RespondJSON(w, http.StatusCreated, tx)
}
