package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ganamos/backend/internal/api/handlers"
	"github.com/ganamos/backend/internal/auth"
	"github.com/ganamos/backend/internal/config"
	"github.com/ganamos/backend/internal/middleware"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Accounts *services.AccountService
	Wallet   *services.WalletService
	Family   *services.FamilyService
	Devices  *services.DeviceService
	Spends   *services.SpendService
	Posts    *services.PostService
	Prices   *services.PriceService
	Audit    *services.AuditService
}

func NewRouter(d RouterDeps) http.Handler {
	authH := handlers.NewAuthHandler(d.Accounts, d.TM)
	walletH := handlers.NewWalletHandler(d.Wallet)
	familyH := handlers.NewFamilyHandler(d.Family)
	deviceH := handlers.NewDeviceHandler(d.Devices, d.Spends)
	postH := handlers.NewPostHandler(d.Posts)
	adminH := handlers.NewAdminHandler(d.Audit, d.Accounts)
	cronH := handlers.NewCronHandler(d.Prices, d.Posts, d.Audit)

	m := middleware.NewAuthMiddleware(d.TM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/price", cronH.LatestPrice)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- device-key endpoints (the companion game) ----------
		r.Post("/devices/claim", deviceH.Claim)
		r.Post("/devices/{id}/spend", deviceH.Spend)
		r.Post("/devices/{id}/earn", deviceH.Earn)

		// ---------- settlement callback ----------
		r.Post("/wallet/deposit/settle", walletH.SettleDeposit)

		// ---------- cron ----------
		r.Group(func(r chi.Router) {
			r.Use(middleware.CronSecret(d.Cfg.CronSecret))
			r.Post("/cron/price", cronH.RefreshPrice)
			r.Post("/cron/expire-posts", cronH.ExpirePosts)
			r.Post("/cron/summary", cronH.DailySummary)
		})

		// ---------- authenticated ----------
		r.Group(func(r chi.Router) {
			r.Use(m.Auth)

			r.Get("/wallet/balance", walletH.Balance)
			r.Post("/wallet/deposit", walletH.Deposit)
			r.Post("/wallet/withdraw", walletH.Withdraw)
			r.Get("/wallet/transactions", walletH.List)
			r.Get("/wallet/transactions/{id}", walletH.Get)

			r.Post("/family/children", familyH.CreateChild)
			r.Get("/family/children", familyH.ListChildren)
			r.Post("/family/children/{id}/allowance", familyH.Allowance)
			r.Delete("/family/children/{id}", familyH.DeleteChild)

			r.Post("/devices/pair", deviceH.Pair)
			r.Get("/devices", deviceH.List)
			r.Delete("/devices/{id}", deviceH.Revoke)

			r.Post("/posts", postH.Create)
			r.Get("/posts", postH.List)
			r.Get("/posts/{id}", postH.Get)
			r.Post("/posts/{id}/claim", postH.Claim)
			r.Post("/posts/{id}/complete", postH.Complete)
			r.Delete("/posts/{id}", postH.Delete)

			r.Get("/activity", adminH.Activity)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/admin/audit", adminH.RunAudit)
				r.Get("/admin/audit", adminH.ListReports)
				r.Get("/admin/summary", adminH.Summary)
			})
		})
	})

	return r
}
