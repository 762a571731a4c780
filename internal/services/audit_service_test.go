package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganamos/backend/internal/models"
)

func TestAuditFlagsMismatchedBalances(t *testing.T) {
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	reports := &fakeReports{}
	svc := NewAuditService(profiles, txns, newFakePosts(), reports)

	// clean: balance equals the signed ledger sum
	clean := profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 80})
	mustTxn(t, txns, models.Transaction{ProfileID: clean.ID, Type: models.TxnDeposit, Status: models.TxnComplete, AmountSats: 100})
	mustTxn(t, txns, models.Transaction{ProfileID: clean.ID, Type: models.TxnSpend, Status: models.TxnComplete, AmountSats: 20})

	// drifted: 50 sats more than the ledger explains
	drifted := profiles.add(models.Profile{Name: "Bob", Email: "bob@example.com", BalanceSats: 150})
	mustTxn(t, txns, models.Transaction{ProfileID: drifted.ID, Type: models.TxnDeposit, Status: models.TxnComplete, AmountSats: 100})

	out, err := svc.Run(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, drifted.ID, out[0].ProfileID)
	assert.Equal(t, int64(100), out[0].ExpectedSats)
	assert.Equal(t, int64(150), out[0].ActualSats)
	assert.Equal(t, int64(50), out[0].DeltaSats)

	stored, err := svc.ListReports(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAuditCountsFeesAgainstPayer(t *testing.T) {
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	reports := &fakeReports{}
	svc := NewAuditService(profiles, txns, newFakePosts(), reports)

	// deposit 1000, withdraw 300 with a 2 sat fee
	p := profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 698})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnDeposit, Status: models.TxnComplete, AmountSats: 1000})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnWithdraw, Status: models.TxnComplete, AmountSats: 300, FeeSats: 2})

	out, err := svc.Run(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAuditIgnoresPendingTransactions(t *testing.T) {
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	svc := NewAuditService(profiles, txns, newFakePosts(), &fakeReports{})

	p := profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com", BalanceSats: 0})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnDeposit, Status: models.TxnPending, AmountSats: 500})

	out, err := svc.Run(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummaryAggregatesOneDay(t *testing.T) {
	profiles := newFakeProfiles()
	txns := newFakeTxns(profiles)
	posts := newFakePosts()
	svc := NewAuditService(profiles, txns, posts, &fakeReports{})

	p := profiles.add(models.Profile{Name: "Alice", Email: "alice@example.com"})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnDeposit, Status: models.TxnComplete, AmountSats: 1000})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnSpend, Status: models.TxnComplete, AmountSats: 40})
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnEarn, Status: models.TxnComplete, AmountSats: 15})
	// pending rows stay out of the totals
	mustTxn(t, txns, models.Transaction{ProfileID: p.ID, Type: models.TxnWithdraw, Status: models.TxnPending, AmountSats: 99})

	_, err := posts.Create(context.Background(), models.Post{AuthorID: p.ID, Title: "rake leaves"})
	require.NoError(t, err)

	sum, err := svc.Summary(context.Background(), time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), sum.Date)
	assert.Equal(t, int64(1000), sum.DepositSats)
	assert.Equal(t, int64(40), sum.SpendSats)
	assert.Equal(t, int64(15), sum.EarnSats)
	assert.Equal(t, int64(0), sum.WithdrawSats)
	assert.Equal(t, int64(3), sum.TxnCount)
	assert.Equal(t, int64(1), sum.NewProfiles)
	assert.Equal(t, int64(1), sum.NewPosts)
}

func mustTxn(t *testing.T, txns *fakeTxns, txn models.Transaction) models.Transaction {
	t.Helper()
	out, err := txns.Create(context.Background(), txn)
	require.NoError(t, err)
	return out
}
