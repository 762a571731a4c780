package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/api/validate"
	"github.com/ganamos/backend/internal/middleware"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

type PostHandler struct {
	Posts *services.PostService
}

func NewPostHandler(ps *services.PostService) *PostHandler {
	return &PostHandler{Posts: ps}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	var req struct {
		Title      string     `json:"title"`
		Body       string     `json:"body"`
		RewardSats int64      `json:"reward_sats"`
		ExpiresAt  *time.Time `json:"expires_at"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := validate.Collect(
		validate.Required("title", req.Title),
		validate.MinInt("reward_sats", req.RewardSats, 0),
	); err != nil {
		writeErr(w, err)
		return
	}
	p := models.Post{Title: req.Title, Body: req.Body, RewardSats: req.RewardSats}
	if req.ExpiresAt != nil {
		p.ExpiresAt = *req.ExpiresAt
	}
	created, err := h.Posts.Create(r.Context(), uid, p)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, created)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	posts, err := h.Posts.ListOpen(r.Context(), limit, offset)
	if err != nil {
		writeErr(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Claim(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	p, err := h.Posts.Claim(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	p, err := h.Posts.Complete(r.Context(), chi.URLParam(r, "id"), uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := middleware.ProfileID(r.Context())
	role, _ := middleware.Role(r.Context())
	if err := h.Posts.Delete(r.Context(), chi.URLParam(r, "id"), uid, role); err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
