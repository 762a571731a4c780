package repository

import (
	"context"
	"time"

	"github.com/ganamos/backend/internal/models"
)

type Profiles interface {
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	GetByID(ctx context.Context, id string) (models.Profile, error)
	GetByEmail(ctx context.Context, email string) (models.Profile, error)
	ListChildren(ctx context.Context, parentID string) ([]models.Profile, error)
	ListActive(ctx context.Context) ([]models.Profile, error)
	UpdateStatus(ctx context.Context, id string, status models.ProfileStatus) error

	// Credit adds amount and returns the new balance.
	Credit(ctx context.Context, id string, amount int64) (int64, error)
	// Debit subtracts amount only if the full amount is covered;
	// returns models.ErrInsufficientFunds otherwise.
	Debit(ctx context.Context, id string, amount int64) (int64, error)

	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Transactions interface {
	Create(ctx context.Context, t models.Transaction) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	GetByPaymentHash(ctx context.Context, hash string) (models.Transaction, error)
	ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error
	// MarkSettled finalizes a pending transaction with its fee and
	// settlement time.
	MarkSettled(ctx context.Context, id string, status models.TransactionStatus, feeSats int64) error

	// SettleDeposit atomically completes the pending deposit for a
	// payment hash and credits the profile. Replays return the settled
	// row with already=true and change nothing.
	SettleDeposit(ctx context.Context, paymentHash string) (txn models.Transaction, already bool, err error)

	// SumSettled is the signed sum of completed transactions for the
	// balance audit.
	SumSettled(ctx context.Context, profileID string) (int64, error)
	Summary(ctx context.Context, from, to time.Time) (models.DailySummary, error)
}

type Devices interface {
	Create(ctx context.Context, d models.Device) (models.Device, error)
	GetByID(ctx context.Context, id string) (models.Device, error)
	GetByKey(ctx context.Context, deviceKey string) (models.Device, error)
	// Claim activates the device matching an unexpired pairing code,
	// clearing the code. Returns models.ErrPairingCode when no row
	// matches.
	Claim(ctx context.Context, code, name string, now time.Time) (models.Device, error)
	ListByProfile(ctx context.Context, profileID string) ([]models.Device, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForProfile(ctx context.Context, profileID string) error
	Touch(ctx context.Context, id string) error
}

type PendingSpends interface {
	// Apply records the (device, spend) dedup row and clamps the profile
	// balance atomically. inserted=false means the pair already existed;
	// the returned row is the original and nothing was deducted. A spend
	// against a zero balance keeps no row and returns
	// models.ErrEmptyBalance.
	Apply(ctx context.Context, s models.PendingSpend) (row models.PendingSpend, inserted bool, remaining int64, err error)
}

type ConnectedAccounts interface {
	Link(ctx context.Context, parentID, childID string) error
	IsLinked(ctx context.Context, parentID, childID string) (bool, error)
}

type Activities interface {
	Create(ctx context.Context, a models.Activity) error
	ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]models.Activity, error)
}

type Posts interface {
	Create(ctx context.Context, p models.Post) (models.Post, error)
	GetByID(ctx context.Context, id string) (models.Post, error)
	ListOpen(ctx context.Context, limit, offset int) ([]models.Post, error)
	// Claim moves an open post to claimed; models.ErrConflict when the
	// post is not open.
	Claim(ctx context.Context, id, claimerID string) (models.Post, error)
	// Complete moves a claimed post to done.
	Complete(ctx context.Context, id string) (models.Post, error)
	UpdateStatus(ctx context.Context, id string, status models.PostStatus) error
	SoftDeleteByAuthor(ctx context.Context, authorID string) error
	ExpireOpen(ctx context.Context, now time.Time) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Prices interface {
	Insert(ctx context.Context, p models.BitcoinPrice) (models.BitcoinPrice, error)
	Latest(ctx context.Context, currency string) (models.BitcoinPrice, error)
}

type AuditReports interface {
	Create(ctx context.Context, r models.AuditReport) (models.AuditReport, error)
	List(ctx context.Context, limit, offset int) ([]models.AuditReport, error)
}
