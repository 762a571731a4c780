package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type profilesRepo struct{ pool *pgxpool.Pool }

const profileCols = `id, name, email, password_hash, role, balance_sats, parent_id, status, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.PasswordHash, &p.Role, &p.BalanceSats, &p.ParentID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if noRows(err) {
		return models.Profile{}, models.ErrNotFound
	}
	return p, err
}

func (r *profilesRepo) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.ProfileActive
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles(id, name, email, password_hash, role, balance_sats, parent_id, status)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Email, p.PasswordHash, p.Role, p.BalanceSats, p.ParentID, p.Status,
	)
	if err != nil {
		return models.Profile{}, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *profilesRepo) GetByID(ctx context.Context, id string) (models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE id=$1`, id))
}

func (r *profilesRepo) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE email=$1`, email))
}

func (r *profilesRepo) list(ctx context.Context, q string, args ...any) ([]models.Profile, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profilesRepo) ListChildren(ctx context.Context, parentID string) ([]models.Profile, error) {
	return r.list(ctx,
		`SELECT `+profileCols+` FROM profiles
		  WHERE parent_id=$1 AND status='active'
		  ORDER BY created_at`, parentID)
}

func (r *profilesRepo) ListActive(ctx context.Context) ([]models.Profile, error) {
	return r.list(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE status='active' ORDER BY created_at`)
}

func (r *profilesRepo) UpdateStatus(ctx context.Context, id string, status models.ProfileStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE profiles SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *profilesRepo) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx,
		`UPDATE profiles
		    SET balance_sats = balance_sats + $2,
		        updated_at = now()
		  WHERE id = $1
		RETURNING balance_sats`,
		id, amount,
	).Scan(&balance)
	if noRows(err) {
		return 0, models.ErrNotFound
	}
	return balance, err
}

func (r *profilesRepo) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx,
		`UPDATE profiles
		    SET balance_sats = balance_sats - $2,
		        updated_at = now()
		  WHERE id = $1 AND balance_sats >= $2
		RETURNING balance_sats`,
		id, amount,
	).Scan(&balance)
	if noRows(err) {
		return 0, models.ErrInsufficientFunds
	}
	return balance, err
}

func (r *profilesRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM profiles WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&n)
	return n, err
}
