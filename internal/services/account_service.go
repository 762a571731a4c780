package services

import (
	"context"
	"strings"

	"github.com/ganamos/backend/internal/auth"
	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

// AccountService covers registration, login checks, and the activity
// feed.
type AccountService struct {
	profiles repo.Profiles
	acts     repo.Activities
}

func NewAccountService(p repo.Profiles, a repo.Activities) *AccountService {
	return &AccountService{profiles: p, acts: a}
}

func (s *AccountService) Register(ctx context.Context, name, email, password string) (models.Profile, error) {
	p := models.Profile{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  models.RoleUser,
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, err
	}
	if len(password) < 8 {
		return models.Profile{}, models.ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Profile{}, err
	}
	p.PasswordHash = hash
	return s.profiles.Create(ctx, p)
}

// Login verifies credentials. Child accounts carry random throwaway
// passwords and deleted profiles keep their rows, so both fail here.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.Profile, error) {
	p, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.Profile{}, models.ErrInvalidCredentials
	}
	if p.Deleted() {
		return models.Profile{}, models.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, p.PasswordHash); err != nil {
		return models.Profile{}, models.ErrInvalidCredentials
	}
	return p, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *AccountService) Activities(ctx context.Context, profileID string, limit, offset int) ([]models.Activity, error) {
	return s.acts.ListByProfile(ctx, profileID, limit, offset)
}
