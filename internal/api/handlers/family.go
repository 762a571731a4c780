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

type FamilyHandler struct {
	Family *services.FamilyService
}

func NewFamilyHandler(fs *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{Family: fs}
}

func (h *FamilyHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(validate.Required("name", req.Name)); err != nil {
		writeErr(w, err)
		return
	}
	child, err := h.Family.CreateChild(r.Context(), uid, req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, child)
}

func (h *FamilyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	children, err := h.Family.ListChildren(r.Context(), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	if children == nil {
		children = []models.Profile{}
	}
	httpx.WriteJSON(w, http.StatusOK, children)
}

func (h *FamilyHandler) Allowance(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	var req struct {
		AmountSats int64 `json:"amount_sats"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(validate.MinInt("amount_sats", req.AmountSats, 1)); err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Family.Allowance(r.Context(), uid, chi.URLParam(r, "id"), req.AmountSats); err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"transferred_sats": req.AmountSats})
}

func (h *FamilyHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	if err := h.Family.DeleteChild(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
