package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ganamos/backend/internal/lightning"
	"github.com/ganamos/backend/internal/metrics"
	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
	"github.com/ganamos/backend/internal/worker"
)

// WalletService owns deposits and withdrawals. Deposits settle
// idempotently on the invoice payment hash; withdrawals reserve the fee
// buffer up front and refund the unused part after the payment resolves.
type WalletService struct {
	profiles  repo.Profiles
	txns      repo.Transactions
	acts      repo.Activities
	ln        lightning.Client
	wp        *worker.Pool
	prices    *PriceService
	feeBuffer int64
}

func NewWalletService(p repo.Profiles, t repo.Transactions, a repo.Activities, ln lightning.Client, wp *worker.Pool, prices *PriceService, feeBuffer int64) *WalletService {
	return &WalletService{profiles: p, txns: t, acts: a, ln: ln, wp: wp, prices: prices, feeBuffer: feeBuffer}
}

func (s *WalletService) activity(profileID, kind, refID string, detail map[string]any) {
	err := s.acts.Create(context.Background(), models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		RefID:     &refID,
		Detail:    detail,
	})
	if err != nil {
		slog.Error("activity write", "kind", kind, "err", err)
	}
}

type BalanceInfo struct {
	BalanceSats int64   `json:"balance_sats"`
	Currency    string  `json:"currency,omitempty"`
	FiatValue   float64 `json:"fiat_value,omitempty"`
	BTCPrice    float64 `json:"btc_price,omitempty"`
}

func (s *WalletService) Balance(ctx context.Context, profileID string) (BalanceInfo, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return BalanceInfo{}, err
	}
	info := BalanceInfo{BalanceSats: p.BalanceSats}
	if price, err := s.prices.Latest(ctx); err == nil {
		info.Currency = price.Currency
		info.BTCPrice = price.Price
		info.FiatValue = price.FiatValue(p.BalanceSats)
	}
	return info, nil
}

// Deposit creates an invoice on the node and records the pending
// transaction keyed by its payment hash.
func (s *WalletService) Deposit(ctx context.Context, profileID string, amount int64, memo string) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, errors.New("amount must be > 0")
	}
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return models.Transaction{}, err
	}
	if p.Deleted() {
		return models.Transaction{}, models.ErrForbidden
	}

	inv, err := s.ln.CreateInvoice(ctx, amount, memo)
	if err != nil {
		return models.Transaction{}, err
	}
	txn, err := s.txns.Create(ctx, models.Transaction{
		ProfileID:      profileID,
		Type:           models.TxnDeposit,
		Status:         models.TxnPending,
		AmountSats:     amount,
		PaymentHash:    &inv.PaymentHash,
		PaymentRequest: inv.PaymentRequest,
		Memo:           memo,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.DepositsTotal.WithLabelValues("created").Inc()
	return txn, nil
}

// SettleDeposit verifies the invoice with the node and credits the
// profile exactly once per payment hash.
func (s *WalletService) SettleDeposit(ctx context.Context, paymentHash string) (models.Transaction, error) {
	inv, err := s.ln.LookupInvoice(ctx, paymentHash)
	if err != nil {
		return models.Transaction{}, err
	}
	if !inv.Settled {
		return models.Transaction{}, models.ErrConflict
	}

	txn, already, err := s.txns.SettleDeposit(ctx, paymentHash)
	if err != nil {
		return models.Transaction{}, err
	}
	if already {
		metrics.DepositsTotal.WithLabelValues("replayed").Inc()
		return txn, nil
	}
	metrics.DepositsTotal.WithLabelValues("settled").Inc()
	s.activity(txn.ProfileID, models.ActDeposit, txn.ID, map[string]any{"amount_sats": txn.AmountSats})
	return txn, nil
}

// Withdraw debits amount plus the fee buffer, then pays the invoice in
// the background. The unused fee buffer is refunded on success; the
// whole reservation on failure.
func (s *WalletService) Withdraw(ctx context.Context, profileID, bolt11 string) (models.Transaction, error) {
	inv, err := s.ln.DecodeInvoice(ctx, bolt11)
	if err != nil {
		return models.Transaction{}, err
	}
	if inv.AmountSats <= 0 {
		return models.Transaction{}, errors.New("invoice has no amount")
	}
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return models.Transaction{}, err
	}
	if p.Deleted() {
		return models.Transaction{}, models.ErrForbidden
	}
	// an invoice we already track was submitted before; never pay it twice
	if _, err := s.txns.GetByPaymentHash(ctx, inv.PaymentHash); err == nil {
		return models.Transaction{}, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.Transaction{}, err
	}

	reserved := inv.AmountSats + s.feeBuffer
	if _, err := s.profiles.Debit(ctx, profileID, reserved); err != nil {
		return models.Transaction{}, err
	}

	txn, err := s.txns.Create(ctx, models.Transaction{
		ProfileID:      profileID,
		Type:           models.TxnWithdraw,
		Status:         models.TxnPending,
		AmountSats:     inv.AmountSats,
		PaymentHash:    &inv.PaymentHash,
		PaymentRequest: bolt11,
		Memo:           inv.Memo,
	})
	if err != nil {
		// covers the insert race two concurrent submissions can hit:
		// release the reservation, the payment never started
		if _, cerr := s.profiles.Credit(context.Background(), profileID, reserved); cerr != nil {
			slog.Error("withdraw reservation refund", "profile", profileID, "err", cerr)
		}
		return models.Transaction{}, err
	}

	s.wp.Submit(func() { s.processWithdraw(txn, bolt11, reserved) })
	return txn, nil
}

func (s *WalletService) processWithdraw(txn models.Transaction, bolt11 string, reserved int64) {
	ctx := context.Background()

	pay, err := s.ln.PayInvoice(ctx, bolt11, s.feeBuffer)
	if err != nil {
		if _, cerr := s.profiles.Credit(ctx, txn.ProfileID, reserved); cerr != nil {
			slog.Error("withdraw refund", "txn", txn.ID, "err", cerr)
		}
		if uerr := s.txns.UpdateStatus(ctx, txn.ID, models.TxnFailed); uerr != nil {
			slog.Error("withdraw status", "txn", txn.ID, "err", uerr)
		}
		metrics.WithdrawalsTotal.WithLabelValues("failed").Inc()
		return
	}

	if refund := reserved - txn.AmountSats - pay.FeeSats; refund > 0 {
		if _, cerr := s.profiles.Credit(ctx, txn.ProfileID, refund); cerr != nil {
			slog.Error("withdraw fee refund", "txn", txn.ID, "err", cerr)
		}
	}
	if err := s.txns.MarkSettled(ctx, txn.ID, models.TxnComplete, pay.FeeSats); err != nil {
		slog.Error("withdraw settle", "txn", txn.ID, "err", err)
		return
	}
	metrics.WithdrawalsTotal.WithLabelValues("complete").Inc()
	s.activity(txn.ProfileID, models.ActWithdraw, txn.ID, map[string]any{
		"amount_sats": txn.AmountSats,
		"fee_sats":    pay.FeeSats,
	})
}

func (s *WalletService) GetTransaction(ctx context.Context, callerID string, callerRole models.Role, id string) (models.Transaction, error) {
	txn, err := s.txns.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if txn.ProfileID != callerID && callerRole != models.RoleAdmin {
		return models.Transaction{}, models.ErrForbidden
	}
	return txn, nil
}

func (s *WalletService) ListTransactions(ctx context.Context, profileID string, limit, offset int) ([]models.Transaction, error) {
	return s.txns.ListByProfile(ctx, profileID, limit, offset)
}
