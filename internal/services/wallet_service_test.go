package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganamos/backend/internal/lightning"
	"github.com/ganamos/backend/internal/models"
	"github.com/ganamos/backend/internal/worker"
)

type walletFixture struct {
	profiles *fakeProfiles
	txns     *fakeTxns
	acts     *fakeActs
	ln       *lightning.Mock
	wp       *worker.Pool
	svc      *WalletService
}

func newWalletFixture(t *testing.T) *walletFixture {
	t.Helper()
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	acts := &fakeActs{}
	ln := lightning.NewMock()
	wp := worker.NewPool(1)
	prices := NewPriceService(&fakePrices{}, nil, "USD", "http://unused/%s")
	svc := NewWalletService(profiles, txns, acts, ln, wp, prices, 10)
	return &walletFixture{profiles: profiles, txns: txns, acts: acts, ln: ln, wp: wp, svc: svc}
}

func TestDepositCreatesPendingTransaction(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", Role: models.RoleUser})

	txn, err := f.svc.Deposit(context.Background(), p.ID, 500, "top up")
	require.NoError(t, err)

	assert.Equal(t, models.TxnDeposit, txn.Type)
	assert.Equal(t, models.TxnPending, txn.Status)
	assert.Equal(t, int64(500), txn.AmountSats)
	require.NotNil(t, txn.PaymentHash)
	assert.NotEmpty(t, txn.PaymentRequest)

	// nothing credited until the invoice settles
	assert.Equal(t, int64(0), f.profiles.balance(p.ID))
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com"})

	_, err := f.svc.Deposit(context.Background(), p.ID, 0, "")
	assert.Error(t, err)
}

func TestSettleDepositCreditsOnce(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com"})

	txn, err := f.svc.Deposit(context.Background(), p.ID, 500, "")
	require.NoError(t, err)
	f.ln.MarkSettled(*txn.PaymentHash)

	settled, err := f.svc.SettleDeposit(context.Background(), *txn.PaymentHash)
	require.NoError(t, err)
	assert.Equal(t, models.TxnComplete, settled.Status)
	assert.Equal(t, int64(500), f.profiles.balance(p.ID))

	// replaying the settlement must not credit again
	again, err := f.svc.SettleDeposit(context.Background(), *txn.PaymentHash)
	require.NoError(t, err)
	assert.Equal(t, settled.ID, again.ID)
	assert.Equal(t, int64(500), f.profiles.balance(p.ID))
}

func TestSettleDepositRequiresSettledInvoice(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com"})

	txn, err := f.svc.Deposit(context.Background(), p.ID, 500, "")
	require.NoError(t, err)

	_, err = f.svc.SettleDeposit(context.Background(), *txn.PaymentHash)
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, int64(0), f.profiles.balance(p.ID))
}

func TestWithdrawRefundsUnusedFeeBuffer(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 1000})
	f.ln.FeeSats = 2
	f.ln.Register(lightning.Invoice{
		PaymentHash:    "hash-w1",
		PaymentRequest: "lnmock1hash-w1",
		AmountSats:     300,
	})

	txn, err := f.svc.Withdraw(context.Background(), p.ID, "lnmock1hash-w1")
	require.NoError(t, err)
	assert.Equal(t, models.TxnPending, txn.Status)

	f.wp.Stop()

	// 1000 - 300 - 2: the unused 8 sats of the buffer came back
	assert.Equal(t, int64(698), f.profiles.balance(p.ID))
	done, err := f.txns.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnComplete, done.Status)
	assert.Equal(t, int64(2), done.FeeSats)
}

func TestWithdrawFailureRefundsReservation(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 1000})
	f.ln.FailPayments = true
	f.ln.Register(lightning.Invoice{
		PaymentHash:    "hash-w2",
		PaymentRequest: "lnmock1hash-w2",
		AmountSats:     300,
	})

	txn, err := f.svc.Withdraw(context.Background(), p.ID, "lnmock1hash-w2")
	require.NoError(t, err)

	f.wp.Stop()

	assert.Equal(t, int64(1000), f.profiles.balance(p.ID))
	done, err := f.txns.GetByID(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnFailed, done.Status)
}

func TestWithdrawRequiresAmountPlusBuffer(t *testing.T) {
	f := newWalletFixture(t)
	// 305 covers the invoice but not the 10 sat fee buffer
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 305})
	f.ln.Register(lightning.Invoice{
		PaymentHash:    "hash-w3",
		PaymentRequest: "lnmock1hash-w3",
		AmountSats:     300,
	})

	_, err := f.svc.Withdraw(context.Background(), p.ID, "lnmock1hash-w3")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Equal(t, int64(305), f.profiles.balance(p.ID))
}

func TestWithdrawReplaySameInvoiceRejected(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 1000})
	f.ln.FeeSats = 2
	f.ln.Register(lightning.Invoice{
		PaymentHash:    "hash-w4",
		PaymentRequest: "lnmock1hash-w4",
		AmountSats:     300,
	})

	first, err := f.svc.Withdraw(context.Background(), p.ID, "lnmock1hash-w4")
	require.NoError(t, err)

	// resubmitting the same bolt11 must not debit or pay again
	_, err = f.svc.Withdraw(context.Background(), p.ID, "lnmock1hash-w4")
	assert.ErrorIs(t, err, models.ErrConflict)

	f.wp.Stop()

	assert.Equal(t, int64(698), f.profiles.balance(p.ID))
	done, err := f.txns.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxnComplete, done.Status)
	assert.Len(t, f.txns.byType(p.ID, models.TxnWithdraw), 1)
}

func TestSettleDepositIgnoresWithdrawHash(t *testing.T) {
	f := newWalletFixture(t)
	p := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 1000})

	// a pending withdrawal whose invoice already reads as settled must
	// never be credited back as a deposit
	hash := "hash-w5"
	f.ln.Register(lightning.Invoice{
		PaymentHash:    hash,
		PaymentRequest: "lnmock1" + hash,
		AmountSats:     300,
		Settled:        true,
	})
	_, err := f.txns.Create(context.Background(), models.Transaction{
		ProfileID:      p.ID,
		Type:           models.TxnWithdraw,
		Status:         models.TxnPending,
		AmountSats:     300,
		PaymentHash:    &hash,
		PaymentRequest: "lnmock1" + hash,
	})
	require.NoError(t, err)

	_, err = f.svc.SettleDeposit(context.Background(), hash)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, int64(1000), f.profiles.balance(p.ID))
}

func TestGetTransactionOwnership(t *testing.T) {
	f := newWalletFixture(t)
	owner := f.profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com"})
	other := f.profiles.add(models.Profile{Name: "Bob", Email: "bob@example.com"})

	txn, err := f.txns.Create(context.Background(), models.Transaction{
		ProfileID: owner.ID, Type: models.TxnEarn, Status: models.TxnComplete, AmountSats: 10,
	})
	require.NoError(t, err)

	_, err = f.svc.GetTransaction(context.Background(), other.ID, models.RoleUser, txn.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	got, err := f.svc.GetTransaction(context.Background(), other.ID, models.RoleAdmin, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, got.ID)
}

func TestBalanceIncludesFiatWhenPriceKnown(t *testing.T) {
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	pricesRepo := &fakePrices{}
	_, err := pricesRepo.Insert(context.Background(), models.BitcoinPrice{Currency: "USD", Price: 50000})
	require.NoError(t, err)

	wp := worker.NewPool(1)
	defer wp.Stop()
	svc := NewWalletService(profiles, txns, &fakeActs{}, lightning.NewMock(), wp, NewPriceService(pricesRepo, nil, "USD", "http://unused/%s"), 10)

	p := profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 200_000_000})

	info, err := svc.Balance(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200_000_000), info.BalanceSats)
	assert.Equal(t, "USD", info.Currency)
	assert.InDelta(t, 100000, info.FiatValue, 0.01)
}
