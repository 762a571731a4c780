package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type pendingSpendsRepo struct{ pool *pgxpool.Pool }

const spendCols = `device_id, spend_id, profile_id, amount_sats, applied_sats, created_at`

func scanSpend(row interface{ Scan(...any) error }, s *models.PendingSpend) error {
	return row.Scan(&s.DeviceID, &s.SpendID, &s.ProfileID, &s.AmountSats, &s.AppliedSats, &s.CreatedAt)
}

// Apply runs the dedup insert and the balance clamp in one serializable
// transaction. A crash mid-spend rolls the whole thing back, so a dedup
// row only ever exists together with its deduction.
func (r *pendingSpendsRepo) Apply(ctx context.Context, s models.PendingSpend) (models.PendingSpend, bool, int64, error) {
	var (
		row       models.PendingSpend
		inserted  bool
		remaining int64
	)
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO pending_spends(device_id, spend_id, profile_id, amount_sats, applied_sats)
			 VALUES($1,$2,$3,$4,0)
			 ON CONFLICT (device_id, spend_id) DO NOTHING`,
			s.DeviceID, s.SpendID, s.ProfileID, s.AmountSats,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// replay: report the original row and the current balance
			if err := scanSpend(tx.QueryRow(ctx,
				`SELECT `+spendCols+` FROM pending_spends WHERE device_id=$1 AND spend_id=$2`,
				s.DeviceID, s.SpendID,
			), &row); err != nil {
				return err
			}
			return tx.QueryRow(ctx,
				`SELECT balance_sats FROM profiles WHERE id=$1`, row.ProfileID,
			).Scan(&remaining)
		}
		inserted = true

		var before, after int64
		err = tx.QueryRow(ctx,
			`UPDATE profiles AS p
			    SET balance_sats = GREATEST(p.balance_sats - $2, 0),
			        updated_at = now()
			   FROM profiles AS prev
			  WHERE p.id = $1 AND prev.id = p.id
			RETURNING prev.balance_sats, p.balance_sats`,
			s.ProfileID, s.AmountSats,
		).Scan(&before, &after)
		if noRows(err) {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}
		if before == after {
			// nothing to deduct; the rollback drops the dedup row so a
			// later retry with the same id can succeed
			return models.ErrEmptyBalance
		}
		remaining = after
		return scanSpend(tx.QueryRow(ctx,
			`UPDATE pending_spends SET applied_sats=$3
			  WHERE device_id=$1 AND spend_id=$2
			RETURNING `+spendCols,
			s.DeviceID, s.SpendID, before-after,
		), &row)
	})
	if err != nil {
		return models.PendingSpend{}, false, 0, err
	}
	return row, inserted, remaining, nil
}

func (r *pendingSpendsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
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
