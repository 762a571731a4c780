package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ganamos/backend/internal/api/httpx"
	"github.com/ganamos/backend/internal/metrics"
	"github.com/ganamos/backend/internal/services"
)

// CronHandler exposes the scheduled jobs as HTTP targets as well, so an
// external scheduler (or an operator) can trigger them on demand.
type CronHandler struct {
	Prices *services.PriceService
	Posts  *services.PostService
	Audit  *services.AuditService
}

func NewCronHandler(pr *services.PriceService, po *services.PostService, au *services.AuditService) *CronHandler {
	return &CronHandler{Prices: pr, Posts: po, Audit: au}
}

// LatestPrice is the public read side of the price cron.
func (h *CronHandler) LatestPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.Prices.Latest(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *CronHandler) RefreshPrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.Prices.Refresh(r.Context())
	if err != nil {
		metrics.CronRunsTotal.WithLabelValues("price", "error").Inc()
		writeErr(w, err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("price", "ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *CronHandler) ExpirePosts(w http.ResponseWriter, r *http.Request) {
	n, err := h.Posts.ExpireOpen(r.Context(), time.Now())
	if err != nil {
		metrics.CronRunsTotal.WithLabelValues("expire_posts", "error").Inc()
		writeErr(w, err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("expire_posts", "ok").Inc()
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"expired": n})
}

// DailySummary computes yesterday's summary (or ?date=YYYY-MM-DD) and
// logs it for the ops channel.
func (h *CronHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC().AddDate(0, 0, -1)
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
		metrics.CronRunsTotal.WithLabelValues("summary", "error").Inc()
		writeErr(w, err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("summary", "ok").Inc()
	slog.Info("daily summary",
		"date", sum.Date,
		"deposit_sats", sum.DepositSats,
		"withdraw_sats", sum.WithdrawSats,
		"spend_sats", sum.SpendSats,
		"earn_sats", sum.EarnSats,
		"txn_count", sum.TxnCount,
		"new_profiles", sum.NewProfiles,
		"new_posts", sum.NewPosts,
	)
	httpx.WriteJSON(w, http.StatusOK, sum)
}
