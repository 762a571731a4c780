package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/api/validate"
	"github.com/ganamos/backend/internal/middleware"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

type WalletHandler struct {
	Wallet *services.WalletService
}

func NewWalletHandler(ws *services.WalletService) *WalletHandler {
	return &WalletHandler{Wallet: ws}
}

func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	info, err := h.Wallet.Balance(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, info)
}

func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	var req struct {
		AmountSats int64  `json:"amount_sats"`
		Memo       string `json:"memo"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(validate.MinInt("amount_sats", req.AmountSats, 1)); err != nil {
		writeErr(w, err)
		return
	}
	txn, err := h.Wallet.Deposit(r.Context(), uid, req.AmountSats, req.Memo)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, txn)
}

// SettleDeposit is the webhook/poll target hit when an invoice is paid.
// Settling the same payment hash again is a no-op.
func (h *WalletHandler) SettleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentHash string `json:"payment_hash"`
	}
	if err := httpx.Decode(r, &req); err != nil || req.PaymentHash == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	txn, err := h.Wallet.SettleDeposit(r.Context(), req.PaymentHash)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txn)
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	var req struct {
		Invoice string `json:"invoice"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(validate.Required("invoice", req.Invoice)); err != nil {
		writeErr(w, err)
		return
	}
	txn, err := h.Wallet.Withdraw(r.Context(), uid, req.Invoice)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, txn)
}

func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	limit, offset := pageParams(r)
	txns, err := h.Wallet.ListTransactions(r.Context(), uid, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	role, _ := middleware.Role(r.Context())
	txn, err := h.Wallet.GetTransaction(r.Context(), uid, role, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txn)
}
