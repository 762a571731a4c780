package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ganamos/backend/internal/models"
)

// In-memory repository fakes. They mirror the postgres behavior the
// services rely on (idempotent inserts, clamped spends, conflict
// errors) without a database.

type fakeProfiles struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Profile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]models.Profile{}}
}

func (f *fakeProfiles) add(p models.Profile) models.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(p)
}

func (f *fakeProfiles) insert(p models.Profile) models.Profile {
	f.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("profile-%d", f.seq)
	}
	if p.Status == "" {
		p.Status = models.ProfileActive
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	f.rows[p.ID] = p
	return p
}

func (f *fakeProfiles) Create(_ context.Context, p models.Profile) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Email == p.Email {
			return models.Profile{}, models.ErrConflict
		}
	}
	return f.insert(p), nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Profile{}, models.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Profile{}, models.ErrNotFound
}

func (f *fakeProfiles) ListChildren(_ context.Context, parentID string) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Profile
	for _, p := range f.rows {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) ListActive(_ context.Context) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Profile
	for _, p := range f.rows {
		if p.Status == models.ProfileActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) UpdateStatus(_ context.Context, id string, status models.ProfileStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	f.rows[id] = p
	return nil
}

func (f *fakeProfiles) Credit(_ context.Context, id string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	p.BalanceSats += amount
	f.rows[id] = p
	return p.BalanceSats, nil
}

func (f *fakeProfiles) Debit(_ context.Context, id string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return 0, models.ErrNotFound
	}
	if p.BalanceSats < amount {
		return 0, models.ErrInsufficientFunds
	}
	p.BalanceSats -= amount
	f.rows[id] = p
	return p.BalanceSats, nil
}

// spendClamped mirrors the floor-at-zero deduction the pending spend
// ledger performs inside its transaction.
func (f *fakeProfiles) spendClamped(id string, amount int64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return 0, 0, models.ErrNotFound
	}
	applied := amount
	if p.BalanceSats < amount {
		applied = p.BalanceSats
	}
	p.BalanceSats -= applied
	f.rows[id] = p
	return applied, p.BalanceSats, nil
}

func (f *fakeProfiles) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *fakeProfiles) balance(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id].BalanceSats
}

type fakeTxns struct {
	mu       sync.Mutex
	seq      int
	rows     []models.Transaction
	profiles *fakeProfiles
}

func newFakeTxns(p *fakeProfiles) *fakeTxns {
	return &fakeTxns{profiles: p}
}

func (f *fakeTxns) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.PaymentHash != nil {
		for _, row := range f.rows {
			if row.PaymentHash != nil && *row.PaymentHash == *t.PaymentHash {
				return models.Transaction{}, models.ErrConflict
			}
		}
	}
	f.seq++
	t.ID = fmt.Sprintf("txn-%d", f.seq)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, t)
	return t, nil
}

func (f *fakeTxns) GetByID(_ context.Context, id string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Transaction{}, models.ErrNotFound
}

func (f *fakeTxns) GetByPaymentHash(_ context.Context, hash string) (models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.rows {
		if t.PaymentHash != nil && *t.PaymentHash == hash {
			return t, nil
		}
	}
	return models.Transaction{}, models.ErrNotFound
}

func (f *fakeTxns) ListByProfile(_ context.Context, profileID string, limit, offset int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.rows {
		if t.ProfileID == profileID {
			out = append(out, t)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeTxns) UpdateStatus(_ context.Context, id string, status models.TransactionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.rows {
		if t.ID == id {
			f.rows[i].Status = status
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeTxns) MarkSettled(_ context.Context, id string, status models.TransactionStatus, feeSats int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.rows {
		if t.ID == id {
			now := time.Now()
			f.rows[i].Status = status
			f.rows[i].FeeSats = feeSats
			f.rows[i].SettledAt = &now
			return nil
		}
	}
	return models.ErrNotFound
}

func (f *fakeTxns) SettleDeposit(ctx context.Context, paymentHash string) (models.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.rows {
		if t.Type != models.TxnDeposit || t.PaymentHash == nil || *t.PaymentHash != paymentHash {
			continue
		}
		switch t.Status {
		case models.TxnComplete:
			return t, true, nil
		case models.TxnPending:
			now := time.Now()
			f.rows[i].Status = models.TxnComplete
			f.rows[i].SettledAt = &now
			if _, err := f.profiles.Credit(ctx, t.ProfileID, t.AmountSats); err != nil {
				return models.Transaction{}, false, err
			}
			return f.rows[i], false, nil
		default:
			return models.Transaction{}, false, models.ErrConflict
		}
	}
	return models.Transaction{}, false, models.ErrNotFound
}

func (f *fakeTxns) SumSettled(_ context.Context, profileID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, t := range f.rows {
		if t.ProfileID == profileID && t.Status == models.TxnComplete {
			sum += t.Signed()
		}
	}
	return sum, nil
}

func (f *fakeTxns) Summary(_ context.Context, from, to time.Time) (models.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum models.DailySummary
	for _, t := range f.rows {
		if t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) || t.Status != models.TxnComplete {
			continue
		}
		sum.TxnCount++
		switch t.Type {
		case models.TxnDeposit:
			sum.DepositSats += t.AmountSats
		case models.TxnWithdraw:
			sum.WithdrawSats += t.AmountSats
		case models.TxnSpend:
			sum.SpendSats += t.AmountSats
		case models.TxnEarn:
			sum.EarnSats += t.AmountSats
		case models.TxnSend:
			sum.TransferSats += t.AmountSats
		}
	}
	return sum, nil
}

func (f *fakeTxns) byType(profileID string, typ models.TransactionType) []models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.rows {
		if t.ProfileID == profileID && t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

type fakeDevices struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Device
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{rows: map[string]models.Device{}}
}

func (f *fakeDevices) Create(_ context.Context, d models.Device) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	d.ID = fmt.Sprintf("device-%d", f.seq)
	d.DeviceKey = fmt.Sprintf("key-%d", f.seq)
	d.CreatedAt = time.Now()
	f.rows[d.ID] = d
	return d, nil
}

func (f *fakeDevices) GetByID(_ context.Context, id string) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return models.Device{}, models.ErrNotFound
	}
	return d, nil
}

func (f *fakeDevices) GetByKey(_ context.Context, key string) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.rows {
		if d.DeviceKey == key {
			return d, nil
		}
	}
	return models.Device{}, models.ErrNotFound
}

func (f *fakeDevices) Claim(_ context.Context, code, name string, now time.Time) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.rows {
		if d.Status != models.DeviceUnclaimed || d.PairingCode == nil || *d.PairingCode != code {
			continue
		}
		if d.PairingExpiry != nil && now.After(*d.PairingExpiry) {
			continue
		}
		d.Status = models.DeviceActive
		d.Name = name
		d.PairingCode = nil
		d.PairingExpiry = nil
		f.rows[id] = d
		return d, nil
	}
	return models.Device{}, models.ErrPairingCode
}

func (f *fakeDevices) ListByProfile(_ context.Context, profileID string) ([]models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Device
	for _, d := range f.rows {
		if d.ProfileID == profileID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDevices) Revoke(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	d.Status = models.DeviceRevoked
	f.rows[id] = d
	return nil
}

func (f *fakeDevices) RevokeAllForProfile(_ context.Context, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, d := range f.rows {
		if d.ProfileID == profileID {
			d.Status = models.DeviceRevoked
			f.rows[id] = d
		}
	}
	return nil
}

func (f *fakeDevices) Touch(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now()
	d.LastSeenAt = &now
	f.rows[id] = d
	return nil
}

type fakeSpends struct {
	mu       sync.Mutex
	rows     map[string]models.PendingSpend
	profiles *fakeProfiles
}

func newFakeSpends(p *fakeProfiles) *fakeSpends {
	return &fakeSpends{rows: map[string]models.PendingSpend{}, profiles: p}
}

func spendKey(deviceID, spendID string) string { return deviceID + "/" + spendID }

func (f *fakeSpends) Apply(ctx context.Context, s models.PendingSpend) (models.PendingSpend, bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := spendKey(s.DeviceID, s.SpendID)
	if existing, ok := f.rows[key]; ok {
		p, err := f.profiles.GetByID(ctx, existing.ProfileID)
		if err != nil {
			return models.PendingSpend{}, false, 0, err
		}
		return existing, false, p.BalanceSats, nil
	}
	applied, remaining, err := f.profiles.spendClamped(s.ProfileID, s.AmountSats)
	if err != nil {
		return models.PendingSpend{}, false, 0, err
	}
	if applied == 0 {
		// nothing kept, mirroring the rolled-back transaction
		return models.PendingSpend{}, false, 0, models.ErrEmptyBalance
	}
	s.AppliedSats = applied
	s.CreatedAt = time.Now()
	f.rows[key] = s
	return s, true, remaining, nil
}

type fakeConns struct {
	mu    sync.Mutex
	links map[string]bool
}

func newFakeConns() *fakeConns {
	return &fakeConns{links: map[string]bool{}}
}

func (f *fakeConns) Link(_ context.Context, parentID, childID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[parentID+"/"+childID] = true
	return nil
}

func (f *fakeConns) IsLinked(_ context.Context, parentID, childID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[parentID+"/"+childID], nil
}

type fakeActs struct {
	mu   sync.Mutex
	rows []models.Activity
}

func (f *fakeActs) Create(_ context.Context, a models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.CreatedAt = time.Now()
	f.rows = append(f.rows, a)
	return nil
}

func (f *fakeActs) ListByProfile(_ context.Context, profileID string, limit, offset int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Activity
	for _, a := range f.rows {
		if a.ProfileID == profileID {
			out = append(out, a)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeActs) kinds(profileID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, a := range f.rows {
		if a.ProfileID == profileID {
			out = append(out, a.Kind)
		}
	}
	return out
}

type fakePosts struct {
	mu   sync.Mutex
	seq  int
	rows map[string]models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{rows: map[string]models.Post{}}
}

func (f *fakePosts) Create(_ context.Context, p models.Post) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = fmt.Sprintf("post-%d", f.seq)
	if p.Status == "" {
		p.Status = models.PostOpen
	}
	p.CreatedAt = time.Now()
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakePosts) GetByID(_ context.Context, id string) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) ListOpen(_ context.Context, limit, offset int) ([]models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.rows {
		if p.Status == models.PostOpen {
			out = append(out, p)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakePosts) Claim(_ context.Context, id, claimerID string) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	if p.Status != models.PostOpen {
		return models.Post{}, models.ErrConflict
	}
	p.Status = models.PostClaimed
	p.ClaimedBy = &claimerID
	f.rows[id] = p
	return p, nil
}

func (f *fakePosts) Complete(_ context.Context, id string) (models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Post{}, models.ErrNotFound
	}
	if p.Status != models.PostClaimed {
		return models.Post{}, models.ErrConflict
	}
	p.Status = models.PostDone
	f.rows[id] = p
	return p, nil
}

func (f *fakePosts) UpdateStatus(_ context.Context, id string, status models.PostStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	f.rows[id] = p
	return nil
}

func (f *fakePosts) SoftDeleteByAuthor(_ context.Context, authorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.rows {
		if p.AuthorID == authorID && p.Status != models.PostDeleted {
			p.Status = models.PostDeleted
			f.rows[id] = p
		}
	}
	return nil
}

func (f *fakePosts) ExpireOpen(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, p := range f.rows {
		if p.Status == models.PostOpen && now.After(p.ExpiresAt) {
			p.Status = models.PostExpired
			f.rows[id] = p
			n++
		}
	}
	return n, nil
}

func (f *fakePosts) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type fakePrices struct {
	mu   sync.Mutex
	seq  int64
	rows []models.BitcoinPrice
}

func (f *fakePrices) Insert(_ context.Context, p models.BitcoinPrice) (models.BitcoinPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	p.FetchedAt = time.Now()
	f.rows = append(f.rows, p)
	return p, nil
}

func (f *fakePrices) Latest(_ context.Context, currency string) (models.BitcoinPrice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].Currency == currency {
			return f.rows[i], nil
		}
	}
	return models.BitcoinPrice{}, models.ErrNotFound
}

type fakeReports struct {
	mu   sync.Mutex
	seq  int
	rows []models.AuditReport
}

func (f *fakeReports) Create(_ context.Context, r models.AuditReport) (models.AuditReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = fmt.Sprintf("report-%d", f.seq)
	r.CreatedAt = time.Now()
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeReports) List(_ context.Context, limit, offset int) ([]models.AuditReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.rows
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeLimiter lets a test toggle the per-device rate limit verdict.
type fakeLimiter struct {
	deny bool
}

func (f *fakeLimiter) Allow(context.Context, string) bool { return !f.deny }
