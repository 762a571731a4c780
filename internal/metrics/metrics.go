package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Wallet
	DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_deposits_total",
			Help: "Deposit invoices by outcome",
		},
		[]string{"status"}, // created|settled|replayed
	)
	WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_withdrawals_total",
			Help: "Withdrawal payments by outcome",
		},
		[]string{"status"}, // complete|failed
	)

	// Game spends
	SpendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_spends_total",
			Help: "Device coin spends by outcome",
		},
		[]string{"status"}, // applied|clamped|duplicate|rejected|rate_limited
	)

	// Cron
	CronRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_runs_total",
			Help: "Scheduled job runs by job and outcome",
		},
		[]string{"job", "outcome"},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(DepositsTotal)
	prometheus.MustRegister(WithdrawalsTotal)
	prometheus.MustRegister(SpendsTotal)
	prometheus.MustRegister(CronRunsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
