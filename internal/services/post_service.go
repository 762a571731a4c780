package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

const defaultPostTTL = 7 * 24 * time.Hour

// PostService is the community jobs board. Completing a post pays the
// reward from the author to the claimant.
type PostService struct {
	posts    repo.Posts
	profiles repo.Profiles
	txns     repo.Transactions
	acts     repo.Activities
}

func NewPostService(po repo.Posts, p repo.Profiles, t repo.Transactions, a repo.Activities) *PostService {
	return &PostService{posts: po, profiles: p, txns: t, acts: a}
}

func (s *PostService) Create(ctx context.Context, authorID string, p models.Post) (models.Post, error) {
	p.AuthorID = authorID
	if err := p.Validate(); err != nil {
		return models.Post{}, err
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = time.Now().Add(defaultPostTTL)
	}
	return s.posts.Create(ctx, p)
}

func (s *PostService) Get(ctx context.Context, id string) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p.Status == models.PostDeleted {
		return models.Post{}, models.ErrNotFound
	}
	return p, nil
}

func (s *PostService) ListOpen(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.ListOpen(ctx, limit, offset)
}

func (s *PostService) Claim(ctx context.Context, id, claimerID string) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p.AuthorID == claimerID {
		return models.Post{}, models.ErrConflict
	}
	return s.posts.Claim(ctx, id, claimerID)
}

// Complete is author-only: pays the reward, then flips claimed -> done.
// Payment failures leave the post claimed.
func (s *PostService) Complete(ctx context.Context, id, callerID string) (models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if p.AuthorID != callerID {
		return models.Post{}, models.ErrForbidden
	}
	if p.Status != models.PostClaimed || p.ClaimedBy == nil {
		return models.Post{}, models.ErrConflict
	}

	if p.RewardSats > 0 {
		if _, err := s.profiles.Debit(ctx, p.AuthorID, p.RewardSats); err != nil {
			return models.Post{}, err
		}
		if _, err := s.profiles.Credit(ctx, *p.ClaimedBy, p.RewardSats); err != nil {
			if _, rerr := s.profiles.Credit(ctx, p.AuthorID, p.RewardSats); rerr != nil {
				slog.Error("post reward rollback", "post", id, "err", rerr)
			}
			return models.Post{}, err
		}
		s.rewardTxns(ctx, p)
	}

	done, err := s.posts.Complete(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	s.activity(*p.ClaimedBy, models.ActPostReward, p.ID)
	return done, nil
}

func (s *PostService) Delete(ctx context.Context, id, callerID string, callerRole models.Role) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != callerID && callerRole != models.RoleAdmin {
		return models.ErrForbidden
	}
	if p.Status == models.PostDeleted {
		return nil
	}
	return s.posts.UpdateStatus(ctx, id, models.PostDeleted)
}

// ExpireOpen is the cron sweep for posts past their expiry.
func (s *PostService) ExpireOpen(ctx context.Context, now time.Time) (int64, error) {
	return s.posts.ExpireOpen(ctx, now)
}

func (s *PostService) rewardTxns(ctx context.Context, p models.Post) {
	pairs := []models.Transaction{
		{ProfileID: p.AuthorID, CounterpartyID: p.ClaimedBy, Type: models.TxnSend, Status: models.TxnComplete, AmountSats: p.RewardSats, Memo: "post reward: " + p.Title},
		{ProfileID: *p.ClaimedBy, CounterpartyID: &p.AuthorID, Type: models.TxnReceive, Status: models.TxnComplete, AmountSats: p.RewardSats, Memo: "post reward: " + p.Title},
	}
	for _, t := range pairs {
		if _, err := s.txns.Create(ctx, t); err != nil {
			slog.Error("reward txn", "post", p.ID, "err", err)
		}
	}
}

func (s *PostService) activity(profileID, kind, refID string) {
	err := s.acts.Create(context.Background(), models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		RefID:     &refID,
	})
	if err != nil {
		slog.Error("activity write", "kind", kind, "err", err)
	}
}
