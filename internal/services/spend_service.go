package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ganamos/backend/internal/cache"
	"github.com/ganamos/backend/internal/metrics"
	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

// ErrEarnCap rejects a single earn larger than the configured cap.
var ErrEarnCap = errors.New("amount exceeds per-request earn cap")

// SpendService handles coin movement initiated by paired game devices.
// Spends are idempotent per (device, spend id), floor the balance at
// zero, and are rate limited per device.
type SpendService struct {
	devices  repo.Devices
	spends   repo.PendingSpends
	profiles repo.Profiles
	txns     repo.Transactions
	acts     repo.Activities
	limiter  cache.DeviceLimiter
	earnMax  int64
}

func NewSpendService(d repo.Devices, s repo.PendingSpends, p repo.Profiles, t repo.Transactions, a repo.Activities, l cache.DeviceLimiter, earnMax int64) *SpendService {
	return &SpendService{devices: d, spends: s, profiles: p, txns: t, acts: a, limiter: l, earnMax: earnMax}
}

// Authenticate resolves a device key to an active device.
func (s *SpendService) Authenticate(ctx context.Context, deviceKey string) (models.Device, error) {
	d, err := s.devices.GetByKey(ctx, deviceKey)
	if err != nil {
		return models.Device{}, err
	}
	if d.Status != models.DeviceActive {
		return models.Device{}, models.ErrForbidden
	}
	return d, nil
}

type SpendResult struct {
	SpendID       string `json:"spend_id"`
	RequestedSats int64  `json:"requested_sats"`
	AppliedSats   int64  `json:"applied_sats"`
	RemainingSats int64  `json:"remaining_sats"`
	Duplicate     bool   `json:"duplicate"`
}

func (s *SpendService) Spend(ctx context.Context, d models.Device, spendID string, amount int64) (SpendResult, error) {
	if amount <= 0 {
		return SpendResult{}, errors.New("amount must be > 0")
	}
	if !s.limiter.Allow(ctx, d.ID) {
		metrics.SpendsTotal.WithLabelValues("rate_limited").Inc()
		return SpendResult{}, models.ErrRateLimited
	}

	// the dedup row and the deduction commit together
	row, inserted, remaining, err := s.spends.Apply(ctx, models.PendingSpend{
		DeviceID:   d.ID,
		SpendID:    spendID,
		ProfileID:  d.ProfileID,
		AmountSats: amount,
	})
	if errors.Is(err, models.ErrEmptyBalance) {
		metrics.SpendsTotal.WithLabelValues("rejected").Inc()
		return SpendResult{}, err
	}
	if err != nil {
		return SpendResult{}, err
	}
	if !inserted {
		// replayed spend id: report what the first attempt did, deduct nothing
		metrics.SpendsTotal.WithLabelValues("duplicate").Inc()
		return SpendResult{
			SpendID:       spendID,
			RequestedSats: row.AmountSats,
			AppliedSats:   row.AppliedSats,
			RemainingSats: remaining,
			Duplicate:     true,
		}, nil
	}
	applied := row.AppliedSats

	if _, err := s.txns.Create(ctx, models.Transaction{
		ProfileID:  d.ProfileID,
		Type:       models.TxnSpend,
		Status:     models.TxnComplete,
		AmountSats: applied,
		Memo:       "game spend " + spendID,
	}); err != nil {
		slog.Error("spend txn", "device", d.ID, "spend", spendID, "err", err)
	}
	s.activityFor(d.ProfileID, models.ActSpend, spendID, applied)
	if err := s.devices.Touch(ctx, d.ID); err != nil {
		slog.Error("device touch", "device", d.ID, "err", err)
	}

	if applied < amount {
		metrics.SpendsTotal.WithLabelValues("clamped").Inc()
	} else {
		metrics.SpendsTotal.WithLabelValues("applied").Inc()
	}
	return SpendResult{
		SpendID:       spendID,
		RequestedSats: amount,
		AppliedSats:   applied,
		RemainingSats: remaining,
	}, nil
}

// Earn credits sats awarded by the game, capped per request.
func (s *SpendService) Earn(ctx context.Context, d models.Device, amount int64, memo string) (int64, error) {
	if amount <= 0 {
		return 0, errors.New("amount must be > 0")
	}
	if s.earnMax > 0 && amount > s.earnMax {
		return 0, ErrEarnCap
	}
	balance, err := s.profiles.Credit(ctx, d.ProfileID, amount)
	if err != nil {
		return 0, err
	}
	if _, err := s.txns.Create(ctx, models.Transaction{
		ProfileID:  d.ProfileID,
		Type:       models.TxnEarn,
		Status:     models.TxnComplete,
		AmountSats: amount,
		Memo:       memo,
	}); err != nil {
		slog.Error("earn txn", "device", d.ID, "err", err)
	}
	s.activityFor(d.ProfileID, models.ActEarn, d.ID, amount)
	if err := s.devices.Touch(ctx, d.ID); err != nil {
		slog.Error("device touch", "device", d.ID, "err", err)
	}
	return balance, nil
}

func (s *SpendService) activityFor(profileID, kind, refID string, amount int64) {
	err := s.acts.Create(context.Background(), models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		RefID:     &refID,
		Detail:    map[string]any{"amount_sats": amount},
	})
	if err != nil {
		slog.Error("activity write", "kind", kind, "err", err)
	}
}
