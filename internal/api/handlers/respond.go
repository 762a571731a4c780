package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/api/validate"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

// writeErr maps domain errors onto the API's status codes.
func writeErr(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	if errors.As(err, &verrs) {
		httpx.WriteError(w, http.StatusBadRequest, verrs.Error())
		return
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, models.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, models.ErrRateLimited):
		httpx.WriteError(w, http.StatusTooManyRequests, "rate limited")
	case errors.Is(err, models.ErrInsufficientFunds):
		httpx.WriteError(w, http.StatusConflict, "insufficient funds")
	case errors.Is(err, models.ErrEmptyBalance):
		httpx.WriteError(w, http.StatusConflict, "balance is empty")
	case errors.Is(err, models.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict")
	case errors.Is(err, models.ErrPairingCode):
		httpx.WriteError(w, http.StatusBadRequest, "invalid pairing code")
	case errors.Is(err, services.ErrEarnCap):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("handler", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func pageParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
