// Package lightning is the thin client the wallet uses to talk to a
// Lightning node. Node internals stay on the node side; this package only
// creates, decodes, looks up, and pays invoices.
package lightning

import (
	"context"
	"errors"
	"time"
)

var (
	ErrPaymentFailed  = errors.New("payment failed")
	ErrInvoiceUnknown = errors.New("invoice unknown")
)

type Invoice struct {
	PaymentHash    string
	PaymentRequest string
	AmountSats     int64
	Memo           string
	Settled        bool
	SettledAt      time.Time
}

type Payment struct {
	PaymentHash string
	Preimage    string
	FeeSats     int64
}

type Client interface {
	CreateInvoice(ctx context.Context, amountSats int64, memo string) (Invoice, error)
	DecodeInvoice(ctx context.Context, bolt11 string) (Invoice, error)
	LookupInvoice(ctx context.Context, paymentHash string) (Invoice, error)
	PayInvoice(ctx context.Context, bolt11 string, maxFeeSats int64) (Payment, error)
}
