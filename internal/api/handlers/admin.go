package handlers

import (
	"net/http"
	"time"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/middleware"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

type AdminHandler struct {
	Audit    *services.AuditService
	Accounts *services.AccountService
}

func NewAdminHandler(as *services.AuditService, acc *services.AccountService) *AdminHandler {
	return &AdminHandler{Audit: as, Accounts: acc}
}

// RunAudit audits one profile (?profile_id=) or every active profile.
func (h *AdminHandler) RunAudit(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Audit.Run(r.Context(), r.URL.Query().Get("profile_id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if reports == nil {
		reports = []models.AuditReport{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"mismatches": len(reports),
		"reports":    reports,
	})
}

func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	reports, err := h.Audit.ListReports(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	if reports == nil {
		reports = []models.AuditReport{}
	}
	httpx.WriteJSON(w, http.StatusOK, reports)
}

// Summary returns the daily totals, defaulting to today (UTC).
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	sum, err := h.Audit.Summary(r.Context(), day)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sum)
}

// Activity is the caller's activity feed (not admin-only; mounted under
// the authenticated tree).
func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	limit, offset := pageParams(r)
	acts, err := h.Accounts.Activities(r.Context(), uid, limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	if acts == nil {
		acts = []models.Activity{}
	}
	httpx.WriteJSON(w, http.StatusOK, acts)
}
