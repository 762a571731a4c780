package lightning

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Mock is an in-process node used by tests and local dev. Invoices it
// creates can be settled with MarkSettled; payments succeed unless
// FailPayments is set.
type Mock struct {
	mu           sync.Mutex
	invoices     map[string]Invoice // payment hash -> invoice
	FailPayments bool
	FeeSats      int64
}

var _ Client = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{invoices: map[string]Invoice{}}
}

func newHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (m *Mock) CreateInvoice(_ context.Context, amountSats int64, memo string) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv := Invoice{
		PaymentHash: newHash(),
		AmountSats:  amountSats,
		Memo:        memo,
	}
	inv.PaymentRequest = "lnmock1" + inv.PaymentHash
	m.invoices[inv.PaymentHash] = inv
	return inv, nil
}

func (m *Mock) DecodeInvoice(_ context.Context, bolt11 string) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.invoices {
		if inv.PaymentRequest == bolt11 {
			return inv, nil
		}
	}
	return Invoice{}, ErrInvoiceUnknown
}

func (m *Mock) LookupInvoice(_ context.Context, paymentHash string) (Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[paymentHash]
	if !ok {
		return Invoice{}, ErrInvoiceUnknown
	}
	return inv, nil
}

func (m *Mock) PayInvoice(_ context.Context, bolt11 string, _ int64) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPayments {
		return Payment{}, ErrPaymentFailed
	}
	hash := newHash()
	for _, inv := range m.invoices {
		if inv.PaymentRequest == bolt11 {
			hash = inv.PaymentHash
			inv.Settled = true
			inv.SettledAt = time.Now()
			m.invoices[inv.PaymentHash] = inv
		}
	}
	return Payment{PaymentHash: hash, Preimage: newHash(), FeeSats: m.FeeSats}, nil
}

// Register adds an externally known invoice so Decode/Lookup can find it.
func (m *Mock) Register(inv Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[inv.PaymentHash] = inv
}

// MarkSettled flips an invoice to settled, simulating an inbound payment.
func (m *Mock) MarkSettled(paymentHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.invoices[paymentHash]; ok {
		inv.Settled = true
		inv.SettledAt = time.Now()
		m.invoices[paymentHash] = inv
	}
}
