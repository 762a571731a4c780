package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ganamos/backend/internal/auth"
	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

// FamilyService manages child sub-accounts: creation with the marker
// email, allowance transfers, and soft-delete with cascades.
type FamilyService struct {
	profiles repo.Profiles
	conns    repo.ConnectedAccounts
	devices  repo.Devices
	posts    repo.Posts
	txns     repo.Transactions
	acts     repo.Activities
}

func NewFamilyService(p repo.Profiles, c repo.ConnectedAccounts, d repo.Devices, po repo.Posts, t repo.Transactions, a repo.Activities) *FamilyService {
	return &FamilyService{profiles: p, conns: c, devices: d, posts: po, txns: t, acts: a}
}

func (s *FamilyService) CreateChild(ctx context.Context, parentID, name string) (models.Profile, error) {
	parent, err := s.profiles.GetByID(ctx, parentID)
	if err != nil {
		return models.Profile{}, err
	}
	if parent.Deleted() || parent.IsChild() {
		return models.Profile{}, models.ErrForbidden
	}
	if len(strings.TrimSpace(name)) < 2 {
		return models.Profile{}, errors.New("name too short")
	}

	shortID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	// children never log in with a password; the hash is a random throwaway
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return models.Profile{}, err
	}

	child, err := s.profiles.Create(ctx, models.Profile{
		Name:         strings.TrimSpace(name),
		Email:        models.ChildEmail(parent.Email, shortID),
		PasswordHash: hash,
		Role:         models.RoleChild,
		ParentID:     &parentID,
	})
	if err != nil {
		return models.Profile{}, err
	}
	if err := s.conns.Link(ctx, parentID, child.ID); err != nil {
		return models.Profile{}, err
	}
	s.activity(parentID, models.ActChildCreated, child.ID)
	return child, nil
}

func (s *FamilyService) ListChildren(ctx context.Context, parentID string) ([]models.Profile, error) {
	return s.profiles.ListChildren(ctx, parentID)
}

// Allowance moves sats parent -> child, recorded as a send/receive pair.
func (s *FamilyService) Allowance(ctx context.Context, parentID, childID string, amount int64) error {
	if amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if err := s.requireLink(ctx, parentID, childID); err != nil {
		return err
	}
	child, err := s.profiles.GetByID(ctx, childID)
	if err != nil {
		return err
	}
	if child.Deleted() {
		return models.ErrNotFound
	}

	if _, err := s.profiles.Debit(ctx, parentID, amount); err != nil {
		return err
	}
	if _, err := s.profiles.Credit(ctx, childID, amount); err != nil {
		// put the debit back; the transfer never happened
		if _, rerr := s.profiles.Credit(ctx, parentID, amount); rerr != nil {
			slog.Error("allowance rollback", "parent", parentID, "err", rerr)
		}
		return err
	}

	s.transferTxns(ctx, parentID, childID, amount, "allowance")
	s.activity(parentID, models.ActAllowance, childID)
	s.activity(childID, models.ActAllowance, parentID)
	return nil
}

// DeleteChild soft-deletes the child and cascades: devices revoked,
// posts marked deleted. Rows are never removed.
func (s *FamilyService) DeleteChild(ctx context.Context, parentID, childID string) error {
	if err := s.requireLink(ctx, parentID, childID); err != nil {
		return err
	}
	child, err := s.profiles.GetByID(ctx, childID)
	if err != nil {
		return err
	}
	if child.Deleted() {
		return nil // already soft-deleted
	}

	if err := s.profiles.UpdateStatus(ctx, childID, models.ProfileDeleted); err != nil {
		return err
	}
	if err := s.devices.RevokeAllForProfile(ctx, childID); err != nil {
		slog.Error("cascade devices", "child", childID, "err", err)
	}
	if err := s.posts.SoftDeleteByAuthor(ctx, childID); err != nil {
		slog.Error("cascade posts", "child", childID, "err", err)
	}
	s.activity(parentID, models.ActChildDeleted, childID)
	return nil
}

func (s *FamilyService) requireLink(ctx context.Context, parentID, childID string) error {
	linked, err := s.conns.IsLinked(ctx, parentID, childID)
	if err != nil {
		return err
	}
	if !linked {
		return models.ErrForbidden
	}
	return nil
}

func (s *FamilyService) transferTxns(ctx context.Context, fromID, toID string, amount int64, memo string) {
	pairs := []models.Transaction{
		{ProfileID: fromID, CounterpartyID: &toID, Type: models.TxnSend, Status: models.TxnComplete, AmountSats: amount, Memo: memo},
		{ProfileID: toID, CounterpartyID: &fromID, Type: models.TxnReceive, Status: models.TxnComplete, AmountSats: amount, Memo: memo},
	}
	for _, t := range pairs {
		if _, err := s.txns.Create(ctx, t); err != nil {
			slog.Error("transfer txn", "from", fromID, "to", toID, "err", err)
		}
	}
}

func (s *FamilyService) activity(profileID, kind, refID string) {
	err := s.acts.Create(context.Background(), models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		RefID:     &refID,
	})
	if err != nil {
		slog.Error("activity write", "kind", kind, "err", err)
	}
}
