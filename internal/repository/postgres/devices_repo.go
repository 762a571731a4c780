package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type devicesRepo struct{ pool *pgxpool.Pool }

const deviceCols = `id, profile_id, name, device_key, pairing_code, pairing_expiry, status, last_seen_at, created_at`

func scanDevice(row interface{ Scan(...any) error }) (models.Device, error) {
	var d models.Device
	err := row.Scan(&d.ID, &d.ProfileID, &d.Name, &d.DeviceKey, &d.PairingCode, &d.PairingExpiry, &d.Status, &d.LastSeenAt, &d.CreatedAt)
	if noRows(err) {
		return models.Device{}, models.ErrNotFound
	}
	return d, err
}

func (r *devicesRepo) Create(ctx context.Context, d models.Device) (models.Device, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DeviceKey == "" {
		d.DeviceKey = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = models.DeviceUnclaimed
	}
	return scanDevice(r.pool.QueryRow(ctx,
		`INSERT INTO devices(id, profile_id, name, device_key, pairing_code, pairing_expiry, status)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+deviceCols,
		d.ID, d.ProfileID, d.Name, d.DeviceKey, d.PairingCode, d.PairingExpiry, d.Status,
	))
}

func (r *devicesRepo) GetByID(ctx context.Context, id string) (models.Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceCols+` FROM devices WHERE id=$1`, id))
}

func (r *devicesRepo) GetByKey(ctx context.Context, deviceKey string) (models.Device, error) {
	return scanDevice(r.pool.QueryRow(ctx,
		`SELECT `+deviceCols+` FROM devices WHERE device_key=$1`, deviceKey))
}

func (r *devicesRepo) Claim(ctx context.Context, code, name string, now time.Time) (models.Device, error) {
	d, err := scanDevice(r.pool.QueryRow(ctx,
		`UPDATE devices
		    SET status='active', name=$2, pairing_code=NULL, pairing_expiry=NULL, last_seen_at=$3
		  WHERE pairing_code=$1 AND status='unclaimed' AND pairing_expiry > $3
		RETURNING `+deviceCols,
		code, name, now,
	))
	if errors.Is(err, models.ErrNotFound) {
		return models.Device{}, models.ErrPairingCode
	}
	return d, err
}

func (r *devicesRepo) ListByProfile(ctx context.Context, profileID string) ([]models.Device, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+deviceCols+` FROM devices
		  WHERE profile_id=$1 AND status != 'revoked'
		  ORDER BY created_at`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *devicesRepo) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE devices SET status='revoked', pairing_code=NULL WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *devicesRepo) RevokeAllForProfile(ctx context.Context, profileID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE devices SET status='revoked', pairing_code=NULL WHERE profile_id=$1`, profileID)
	return err
}

func (r *devicesRepo) Touch(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE devices SET last_seen_at=now() WHERE id=$1`, id)
	return err
}
