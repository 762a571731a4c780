package cron

import (
	"context"
	"log/slog"
	"time"

	robfig "github.com/robfig/cron/v3"

	"github.com/ganamos/backend/internal/metrics"
	"github.com/ganamos/backend/internal/services"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the recurring jobs in-process. The same jobs are also
// reachable over HTTP for external schedulers; this is the default mode.
type Scheduler struct {
	c      *robfig.Cron
	prices *services.PriceService
	posts  *services.PostService
	audit  *services.AuditService
	log    *slog.Logger
}

func New(pr *services.PriceService, po *services.PostService, au *services.AuditService, log *slog.Logger) *Scheduler {
	return &Scheduler{
		c:      robfig.New(),
		prices: pr,
		posts:  po,
		audit:  au,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.c.AddFunc("*/10 * * * *", s.refreshPrice); err != nil {
		return err
	}
	if _, err := s.c.AddFunc("*/15 * * * *", s.expirePosts); err != nil {
		return err
	}
	if _, err := s.c.AddFunc("5 0 * * *", s.dailySummary); err != nil {
		return err
	}
	s.c.Start()
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

func (s *Scheduler) refreshPrice() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	p, err := s.prices.Refresh(ctx)
	if err != nil {
		metrics.CronRunsTotal.WithLabelValues("price", "error").Inc()
		s.log.Error("price refresh failed", "err", err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("price", "ok").Inc()
	s.log.Debug("price refreshed", "currency", p.Currency, "price", p.Price)
}

func (s *Scheduler) expirePosts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.posts.ExpireOpen(ctx, time.Now())
	if err != nil {
		metrics.CronRunsTotal.WithLabelValues("expire_posts", "error").Inc()
		s.log.Error("post expiry failed", "err", err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("expire_posts", "ok").Inc()
	if n > 0 {
		s.log.Info("posts expired", "count", n)
	}
}

func (s *Scheduler) dailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	day := time.Now().UTC().AddDate(0, 0, -1)
	sum, err := s.audit.Summary(ctx, day)
	if err != nil {
		metrics.CronRunsTotal.WithLabelValues("summary", "error").Inc()
		s.log.Error("daily summary failed", "err", err)
		return
	}
	metrics.CronRunsTotal.WithLabelValues("summary", "ok").Inc()
	s.log.Info("daily summary",
		"date", sum.Date,
		"deposit_sats", sum.DepositSats,
		"withdraw_sats", sum.WithdrawSats,
		"spend_sats", sum.SpendSats,
		"earn_sats", sum.EarnSats,
		"txn_count", sum.TxnCount,
		"new_profiles", sum.NewProfiles,
		"new_posts", sum.NewPosts,
	)
}
