package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnCols = `id, profile_id, counterparty_id, type, status, amount_sats, fee_sats, payment_hash, payment_request, memo, created_at, settled_at`

func scanTxn(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.ProfileID, &t.CounterpartyID, &t.Type, &t.Status, &t.AmountSats, &t.FeeSats, &t.PaymentHash, &t.PaymentRequest, &t.Memo, &t.CreatedAt, &t.SettledAt)
	if noRows(err) {
		return models.Transaction{}, models.ErrNotFound
	}
	return t, err
}

func (r *transactionsRepo) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	// a payment hash can only ever belong to one transaction
	const q = `
INSERT INTO transactions (
  id, profile_id, counterparty_id, type, status, amount_sats, fee_sats, payment_hash, payment_request, memo
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (payment_hash) DO NOTHING
RETURNING ` + txnCols
	out, err := scanTxn(r.pool.QueryRow(ctx, q,
		t.ID, t.ProfileID, t.CounterpartyID, t.Type, t.Status, t.AmountSats, t.FeeSats, t.PaymentHash, t.PaymentRequest, t.Memo,
	))
	if errors.Is(err, models.ErrNotFound) {
		return models.Transaction{}, models.ErrConflict
	}
	return out, err
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE id=$1`, id))
}

func (r *transactionsRepo) GetByPaymentHash(ctx context.Context, hash string) (models.Transaction, error) {
	return scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE payment_hash=$1`, hash))
}

func (r *transactionsRepo) ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnCols+` FROM transactions
		  WHERE profile_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		profileID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status=$2 WHERE id=$1`, id, status)
	return err
}

func (r *transactionsRepo) MarkSettled(ctx context.Context, id string, status models.TransactionStatus, feeSats int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status=$2, fee_sats=$3, settled_at=now() WHERE id=$1`,
		id, status, feeSats)
	return err
}

// SettleDeposit runs the pending->complete transition and the balance
// credit in one serializable transaction so a replay can never credit
// twice.
func (r *transactionsRepo) SettleDeposit(ctx context.Context, paymentHash string) (models.Transaction, bool, error) {
	var out models.Transaction
	already := false

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		t, err := scanTxn(tx.QueryRow(ctx,
			`SELECT `+txnCols+` FROM transactions
			  WHERE payment_hash=$1 AND type='deposit' FOR UPDATE`, paymentHash))
		if err != nil {
			return err
		}
		switch t.Status {
		case models.TxnComplete:
			out, already = t, true
			return nil
		case models.TxnPending:
			// fall through to settle
		default:
			return models.ErrConflict
		}

		t, err = scanTxn(tx.QueryRow(ctx,
			`UPDATE transactions SET status='complete', settled_at=now()
			  WHERE id=$1 RETURNING `+txnCols, t.ID))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE profiles SET balance_sats = balance_sats + $2, updated_at = now() WHERE id=$1`,
			t.ProfileID, t.AmountSats); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, already, err
}

func (r *transactionsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *transactionsRepo) SumSettled(ctx context.Context, profileID string) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(
		          CASE WHEN type IN ('deposit','earn','receive') THEN amount_sats
		               ELSE -(amount_sats + fee_sats) END), 0)
		   FROM transactions
		  WHERE profile_id=$1 AND status='complete'`,
		profileID,
	).Scan(&sum)
	return sum, err
}

func (r *transactionsRepo) Summary(ctx context.Context, from, to time.Time) (models.DailySummary, error) {
	var s models.DailySummary
	err := r.pool.QueryRow(ctx,
		`SELECT
		    COALESCE(SUM(amount_sats) FILTER (WHERE type='deposit'),  0),
		    COALESCE(SUM(amount_sats) FILTER (WHERE type='withdraw'), 0),
		    COALESCE(SUM(amount_sats) FILTER (WHERE type='spend'),    0),
		    COALESCE(SUM(amount_sats) FILTER (WHERE type='earn'),     0),
		    COALESCE(SUM(amount_sats) FILTER (WHERE type='send'),     0),
		    COUNT(*)
		   FROM transactions
		  WHERE status='complete' AND created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&s.DepositSats, &s.WithdrawSats, &s.SpendSats, &s.EarnSats, &s.TransferSats, &s.TxnCount)
	return s, err
}
