package models

import "time"

type TransactionType string

const (
	TxnDeposit  TransactionType = "deposit"
	TxnWithdraw TransactionType = "withdraw"
	TxnSpend    TransactionType = "spend"
	TxnEarn     TransactionType = "earn"
	TxnSend     TransactionType = "send"
	TxnReceive  TransactionType = "receive"
)

type TransactionStatus string

const (
	TxnPending  TransactionStatus = "pending"
	TxnComplete TransactionStatus = "complete"
	TxnFailed   TransactionStatus = "failed"
	TxnExpired  TransactionStatus = "expired"
)

type Transaction struct {
	ID             string            `json:"id"`
	ProfileID      string            `json:"profile_id"`
	CounterpartyID *string           `json:"counterparty_id,omitempty"`
	Type           TransactionType   `json:"type"`
	Status         TransactionStatus `json:"status"`
	AmountSats     int64             `json:"amount_sats"`
	FeeSats        int64             `json:"fee_sats"`
	PaymentHash    *string           `json:"payment_hash,omitempty"`
	PaymentRequest string            `json:"payment_request,omitempty"`
	Memo           string            `json:"memo,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	SettledAt      *time.Time        `json:"settled_at,omitempty"`
}

// Signed is the balance effect of a completed transaction: credits
// positive, debits negative (fees count against the payer).
func (t Transaction) Signed() int64 {
	switch t.Type {
	case TxnDeposit, TxnEarn, TxnReceive:
		return t.AmountSats
	case TxnWithdraw, TxnSpend, TxnSend:
		return -(t.AmountSats + t.FeeSats)
	}
	return 0
}
