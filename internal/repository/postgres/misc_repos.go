package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type connectedAccountsRepo struct{ pool *pgxpool.Pool }

func (r *connectedAccountsRepo) Link(ctx context.Context, parentID, childID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO connected_accounts(parent_id, child_id) VALUES($1,$2)
		 ON CONFLICT (parent_id, child_id) DO NOTHING`,
		parentID, childID)
	return err
}

func (r *connectedAccountsRepo) IsLinked(ctx context.Context, parentID, childID string) (bool, error) {
	var linked bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM connected_accounts WHERE parent_id=$1 AND child_id=$2)`,
		parentID, childID,
	).Scan(&linked)
	return linked, err
}

type activitiesRepo struct{ pool *pgxpool.Pool }

func (r *activitiesRepo) Create(ctx context.Context, a models.Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activities(id, profile_id, kind, ref_id, detail) VALUES($1,$2,$3,$4,$5)`,
		a.ID, a.ProfileID, a.Kind, a.RefID, a.Detail)
	return err
}

func (r *activitiesRepo) ListByProfile(ctx context.Context, profileID string, limit, offset int) ([]models.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, profile_id, kind, ref_id, detail, created_at
		   FROM activities
		  WHERE profile_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		profileID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.Kind, &a.RefID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type pricesRepo struct{ pool *pgxpool.Pool }

func (r *pricesRepo) Insert(ctx context.Context, p models.BitcoinPrice) (models.BitcoinPrice, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO bitcoin_prices(currency, price, fetched_at)
		 VALUES($1,$2,COALESCE($3, now()))
		 RETURNING id, currency, price, fetched_at`,
		p.Currency, p.Price, nullTime(p.FetchedAt),
	).Scan(&p.ID, &p.Currency, &p.Price, &p.FetchedAt)
	return p, err
}

func (r *pricesRepo) Latest(ctx context.Context, currency string) (models.BitcoinPrice, error) {
	var p models.BitcoinPrice
	err := r.pool.QueryRow(ctx,
		`SELECT id, currency, price, fetched_at
		   FROM bitcoin_prices
		  WHERE currency=$1
		  ORDER BY fetched_at DESC
		  LIMIT 1`, currency,
	).Scan(&p.ID, &p.Currency, &p.Price, &p.FetchedAt)
	if noRows(err) {
		return models.BitcoinPrice{}, models.ErrNotFound
	}
	return p, err
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type auditReportsRepo struct{ pool *pgxpool.Pool }

func (r *auditReportsRepo) Create(ctx context.Context, rep models.AuditReport) (models.AuditReport, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO audit_reports(id, profile_id, expected_sats, actual_sats, delta_sats)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING created_at`,
		rep.ID, rep.ProfileID, rep.ExpectedSats, rep.ActualSats, rep.DeltaSats,
	).Scan(&rep.CreatedAt)
	return rep, err
}

func (r *auditReportsRepo) List(ctx context.Context, limit, offset int) ([]models.AuditReport, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, profile_id, expected_sats, actual_sats, delta_sats, created_at
		   FROM audit_reports
		  ORDER BY created_at DESC
		  LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AuditReport
	for rows.Next() {
		var rep models.AuditReport
		if err := rows.Scan(&rep.ID, &rep.ProfileID, &rep.ExpectedSats, &rep.ActualSats, &rep.DeltaSats, &rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
