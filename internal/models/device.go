package models

import "time"

type DeviceStatus string

const (
	DeviceUnclaimed DeviceStatus = "unclaimed"
	DeviceActive    DeviceStatus = "active"
	DeviceRevoked   DeviceStatus = "revoked"
)

// Device is a paired companion-game client. It authenticates with its
// DeviceKey, never with a user token.
type Device struct {
	ID            string       `json:"id"`
	ProfileID     string       `json:"profile_id"`
	Name          string       `json:"name"`
	DeviceKey     string       `json:"-"`
	PairingCode   *string      `json:"pairing_code,omitempty"`
	PairingExpiry *time.Time   `json:"pairing_expiry,omitempty"`
	Status        DeviceStatus `json:"status"`
	LastSeenAt    *time.Time   `json:"last_seen_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PendingSpend is the dedup ledger for game coin spends. AppliedSats is
// what was actually deducted after the balance floor clamp.
type PendingSpend struct {
	DeviceID    string    `json:"device_id"`
	SpendID     string    `json:"spend_id"`
	ProfileID   string    `json:"profile_id"`
	AmountSats  int64     `json:"amount_sats"`
	AppliedSats int64     `json:"applied_sats"`
	CreatedAt   time.Time `json:"created_at"`
}
