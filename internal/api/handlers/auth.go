package handlers

import (
	"net/http"
	"time"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/api/validate"
	"github.com/ganamos/backend/internal/auth"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

type AuthHandler struct {
	Accounts *services.AccountService
	TM       *auth.TokenManager
}

func NewAuthHandler(acc *services.AccountService, tm *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Accounts: acc, TM: tm}
}

type tokenResp struct {
	Profile      models.Profile `json:"profile"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"` // seconds
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, p models.Profile) {
	access, refresh, exp, err := h.TM.GeneratePair(p.ID, p.Role)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, status, tokenResp{
		Profile:      p,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(
		validate.Required("name", req.Name),
		validate.Email("email", req.Email),
		validate.Required("password", req.Password),
	); err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Accounts.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.issue(w, http.StatusCreated, p)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	p, err := h.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.issue(w, http.StatusOK, p)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := httpx.Decode(r, &req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	claims, isRefresh, err := h.TM.ParseAny(req.RefreshToken)
	if err != nil || !isRefresh {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	p, err := h.Accounts.Get(r.Context(), claims.ProfileID)
	if err != nil || p.Deleted() {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	h.issue(w, http.StatusOK, p)
}
