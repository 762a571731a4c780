package services

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"log/slog"
	"time"

	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

const pairingTTL = 10 * time.Minute

// DeviceService pairs companion-game devices with profiles. Pairing is a
// short-lived single-use code shown in the app and typed into the game.
type DeviceService struct {
	devices repo.Devices
	acts    repo.Activities
}

func NewDeviceService(d repo.Devices, a repo.Activities) *DeviceService {
	return &DeviceService{devices: d, acts: a}
}

func newPairingCode() string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return base32.StdEncoding.EncodeToString(b)[:6]
}

// Pair creates an unclaimed device with a fresh code for the caller.
func (s *DeviceService) Pair(ctx context.Context, profileID string) (models.Device, error) {
	code := newPairingCode()
	expiry := time.Now().Add(pairingTTL)
	return s.devices.Create(ctx, models.Device{
		ProfileID:     profileID,
		PairingCode:   &code,
		PairingExpiry: &expiry,
		Status:        models.DeviceUnclaimed,
	})
}

// Claim activates the device holding a valid code. The returned device
// key is what the game stores and authenticates with from then on.
func (s *DeviceService) Claim(ctx context.Context, code, name string) (models.Device, error) {
	d, err := s.devices.Claim(ctx, code, name, time.Now())
	if err != nil {
		return models.Device{}, err
	}
	s.activity(d.ProfileID, models.ActDevicePaired, d.ID)
	return d, nil
}

func (s *DeviceService) List(ctx context.Context, profileID string) ([]models.Device, error) {
	return s.devices.ListByProfile(ctx, profileID)
}

func (s *DeviceService) Revoke(ctx context.Context, callerID string, callerRole models.Role, deviceID string) error {
	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	if d.ProfileID != callerID && callerRole != models.RoleAdmin {
		return models.ErrForbidden
	}
	if err := s.devices.Revoke(ctx, deviceID); err != nil {
		return err
	}
	s.activity(d.ProfileID, models.ActDeviceRevoked, d.ID)
	return nil
}

func (s *DeviceService) activity(profileID, kind, refID string) {
	err := s.acts.Create(context.Background(), models.Activity{
		ProfileID: profileID,
		Kind:      kind,
		RefID:     &refID,
	})
	if err != nil {
		slog.Error("activity write", "kind", kind, "err", err)
	}
}
