package models

import "time"

// Activity kinds written by the services. Kept as plain strings in the
// table; the feed renders them client-side.
const (
	ActDeposit       = "deposit"
	ActWithdraw      = "withdraw"
	ActSpend         = "spend"
	ActEarn          = "earn"
	ActAllowance     = "allowance"
	ActChildCreated  = "child_created"
	ActChildDeleted  = "child_deleted"
	ActDevicePaired  = "device_paired"
	ActDeviceRevoked = "device_revoked"
	ActPostReward    = "post_reward"
)

type Activity struct {
	ID        string         `json:"id"`
	ProfileID string         `json:"profile_id"`
	Kind      string         `json:"kind"`
	RefID     *string        `json:"ref_id,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
