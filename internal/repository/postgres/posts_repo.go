package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ganamos/backend/internal/models"
)

type postsRepo struct{ pool *pgxpool.Pool }

const postCols = `id, author_id, title, body, reward_sats, status, claimed_by, expires_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.RewardSats, &p.Status, &p.ClaimedBy, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if noRows(err) {
		return models.Post{}, models.ErrNotFound
	}
	return p, err
}

func (r *postsRepo) Create(ctx context.Context, p models.Post) (models.Post, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = models.PostOpen
	}
	return scanPost(r.pool.QueryRow(ctx,
		`INSERT INTO posts(id, author_id, title, body, reward_sats, status, expires_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+postCols,
		p.ID, p.AuthorID, p.Title, p.Body, p.RewardSats, p.Status, p.ExpiresAt,
	))
}

func (r *postsRepo) GetByID(ctx context.Context, id string) (models.Post, error) {
	return scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postCols+` FROM posts WHERE id=$1`, id))
}

func (r *postsRepo) ListOpen(ctx context.Context, limit, offset int) ([]models.Post, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postCols+` FROM posts
		  WHERE status='open'
		  ORDER BY created_at DESC
		  LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postsRepo) Claim(ctx context.Context, id, claimerID string) (models.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`UPDATE posts SET status='claimed', claimed_by=$2, updated_at=now()
		  WHERE id=$1 AND status='open'
		RETURNING `+postCols,
		id, claimerID,
	))
	if errors.Is(err, models.ErrNotFound) {
		// distinguish missing from not-open
		if _, gerr := r.GetByID(ctx, id); gerr == nil {
			return models.Post{}, models.ErrConflict
		}
		return models.Post{}, models.ErrNotFound
	}
	return p, err
}

func (r *postsRepo) Complete(ctx context.Context, id string) (models.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`UPDATE posts SET status='done', updated_at=now()
		  WHERE id=$1 AND status='claimed'
		RETURNING `+postCols, id,
	))
	if errors.Is(err, models.ErrNotFound) {
		if _, gerr := r.GetByID(ctx, id); gerr == nil {
			return models.Post{}, models.ErrConflict
		}
		return models.Post{}, models.ErrNotFound
	}
	return p, err
}

func (r *postsRepo) UpdateStatus(ctx context.Context, id string, status models.PostStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *postsRepo) SoftDeleteByAuthor(ctx context.Context, authorID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE posts SET status='deleted', updated_at=now()
		  WHERE author_id=$1 AND status IN ('open','claimed')`, authorID)
	return err
}

func (r *postsRepo) ExpireOpen(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET status='expired', updated_at=now()
		  WHERE status='open' AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *postsRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM posts WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&n)
	return n, err
}
