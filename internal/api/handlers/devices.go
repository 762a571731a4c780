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

type DeviceHandler struct {
	Devices *services.DeviceService
	Spends  *services.SpendService
}

func NewDeviceHandler(ds *services.DeviceService, ss *services.SpendService) *DeviceHandler {
	return &DeviceHandler{Devices: ds, Spends: ss}
}

func (h *DeviceHandler) Pair(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	d, err := h.Devices.Pair(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"device_id":      d.ID,
		"pairing_code":   d.PairingCode,
		"pairing_expiry": d.PairingExpiry,
	})
}

// Claim is called by the game with the code the user typed in. The
// device key in the response is its credential from then on.
func (h *DeviceHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PairingCode string `json:"pairing_code"`
		Name        string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(validate.Required("pairing_code", req.PairingCode)); err != nil {
		writeErr(w, err)
		return
	}
	d, err := h.Devices.Claim(r.Context(), req.PairingCode, req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"device_id":  d.ID,
		"device_key": d.DeviceKey,
	})
}

func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	devices, err := h.Devices.List(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}
	httpx.WriteJSON(w, http.StatusOK, devices)
}

func (h *DeviceHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	role, _ := middleware.Role(r.Context())
	if err := h.Devices.Revoke(r.Context(), uid, role, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// device resolves the X-Device-Key header and checks it matches the
// device id in the path.
func (h *DeviceHandler) device(w http.ResponseWriter, r *http.Request) (models.Device, bool) {
	key := r.Header.Get("X-Device-Key")
	if key == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "missing device key")
		return models.Device{}, false
	}
	d, err := h.Spends.Authenticate(r.Context(), key)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid device key")
		return models.Device{}, false
	}
	if d.ID != chi.URLParam(r, "id") {
		httpx.WriteError(w, http.StatusForbidden, "device mismatch")
		return models.Device{}, false
	}
	return d, true
}

func (h *DeviceHandler) Spend(w http.ResponseWriter, r *http.Request) {
	d, ok := h.device(w, r)
	if !ok {
		return
	}
	var req struct {
		SpendID    string `json:"spend_id"`
		AmountSats int64  `json:"amount_sats"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(
		validate.Required("spend_id", req.SpendID),
		validate.MinInt("amount_sats", req.AmountSats, 1),
	); err != nil {
		writeErr(w, err)
		return
	}
	res, err := h.Spends.Spend(r.Context(), d, req.SpendID, req.AmountSats)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *DeviceHandler) Earn(w http.ResponseWriter, r *http.Request) {
	d, ok := h.device(w, r)
	if !ok {
		return
	}
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
	balance, err := h.Spends.Earn(r.Context(), d, req.AmountSats, req.Memo)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"balance_sats": balance})
}
