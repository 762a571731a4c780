package models

import "time"

// AuditReport records a mismatch between a profile's stored balance and
// the sum of its completed transactions.
type AuditReport struct {
	ID           string    `json:"id"`
	ProfileID    string    `json:"profile_id"`
	ExpectedSats int64     `json:"expected_sats"`
	ActualSats   int64     `json:"actual_sats"`
	DeltaSats    int64     `json:"delta_sats"`
	CreatedAt    time.Time `json:"created_at"`
}

// DailySummary aggregates one UTC day of platform activity.
type DailySummary struct {
	Date            string `json:"date"`
	DepositSats     int64  `json:"deposit_sats"`
	WithdrawSats    int64  `json:"withdraw_sats"`
	SpendSats       int64  `json:"spend_sats"`
	EarnSats        int64  `json:"earn_sats"`
	TransferSats    int64  `json:"transfer_sats"`
	TxnCount        int64  `json:"txn_count"`
	NewProfiles     int64  `json:"new_profiles"`
	NewPosts        int64  `json:"new_posts"`
}

type ConnectedAccount struct {
	ParentID  string    `json:"parent_id"`
	ChildID   string    `json:"child_id"`
	CreatedAt time.Time `json:"created_at"`
}
