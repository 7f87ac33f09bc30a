package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"geniustrading/models"
)

// Memory is an in-process Storage for local runs (DB_DRIVER=memory) and tests.
// WithTx serialises transactions and journals every key the callback writes;
// on error only those keys are restored, so concurrent writes made outside
// the transaction survive a rollback.
type Memory struct {
	mu    *sync.Mutex
	txMu  *sync.Mutex
	state *memState
	undo  *[]func() // set on the handle passed to a WithTx callback
}

var _ Storage = (*Memory)(nil)

type memState struct {
	seq          uint
	users        map[uint]models.User
	transactions map[uint]models.Transaction
	investments  map[uint]models.Investment
	kyc          map[uint]models.Kyc
	addresses    map[uint]models.DepositAddress
	testimonials map[uint]models.Testimonial
	sessions     map[string]models.Session
}

func newMemState() *memState {
	return &memState{
		users:        make(map[uint]models.User),
		transactions: make(map[uint]models.Transaction),
		investments:  make(map[uint]models.Investment),
		kyc:          make(map[uint]models.Kyc),
		addresses:    make(map[uint]models.DepositAddress),
		testimonials: make(map[uint]models.Testimonial),
		sessions:     make(map[string]models.Session),
	}
}

func NewMemory() *Memory {
	return &Memory{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, state: newMemState()}
}

// keep journals the current value of m[k] so a failed transaction can put it
// back. Call with s.mu held, before the write.
func keep[K comparable, V any](s *Memory, m map[K]V, k K) {
	if s.undo == nil {
		return
	}
	prev, ok := m[k]
	*s.undo = append(*s.undo, func() {
		if ok {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
}

func (s *Memory) WithTx(ctx context.Context, fn func(Storage) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// nested calls join the outer transaction
	if s.undo != nil {
		return fn(s)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	var journal []func()
	tx := &Memory{mu: s.mu, txMu: s.txMu, state: s.state, undo: &journal}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Memory) nextID() uint {
	s.state.seq++
	return s.state.seq
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// Users

func (s *Memory) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	u.ID = s.nextID()
	stamp(&u.CreatedAt, &u.UpdatedAt)
	keep(s, s.state.users, u.ID)
	s.state.users[u.ID] = *u
	return nil
}

func (s *Memory) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *Memory) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Memory) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Memory) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Memory) CountAdmins(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.state.users {
		if u.Role == models.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (s *Memory) mutateUser(id uint, fn func(u *models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(&u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now()
	keep(s, s.state.users, id)
	s.state.users[id] = u
	return &u, nil
}

func (s *Memory) UpdateUserRole(_ context.Context, id uint, role string) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error { u.Role = role; return nil })
}

func (s *Memory) UpdateUserKycStatus(_ context.Context, id uint, status string) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error { u.KycStatus = status; return nil })
}

func (s *Memory) SetUserBalance(_ context.Context, id uint, balance int64) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) error { u.Balance = balance; return nil })
}

func (s *Memory) CreditBalance(_ context.Context, id uint, amount int64) error {
	_, err := s.mutateUser(id, func(u *models.User) error { u.Balance += amount; return nil })
	return err
}

func (s *Memory) DebitBalance(_ context.Context, id uint, amount int64) error {
	_, err := s.mutateUser(id, func(u *models.User) error {
		if u.Balance < amount {
			return ErrInsufficientFunds
		}
		u.Balance -= amount
		return nil
	})
	return err
}

func (s *Memory) DebitBalanceFloored(_ context.Context, id uint, amount int64) error {
	_, err := s.mutateUser(id, func(u *models.User) error {
		u.Balance -= amount
		if u.Balance < 0 {
			u.Balance = 0
		}
		return nil
	})
	return err
}

// Transactions

func (s *Memory) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.transactions {
		if existing.Reference == tx.Reference {
			return ErrDuplicate
		}
	}
	tx.ID = s.nextID()
	stamp(&tx.CreatedAt, &tx.UpdatedAt)
	keep(s, s.state.transactions, tx.ID)
	s.state.transactions[tx.ID] = *tx
	return nil
}

func (s *Memory) GetTransaction(_ context.Context, id uint) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.state.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tx, nil
}

// GetTransactionForUpdate relies on WithTx serialisation for the lock.
func (s *Memory) GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.GetTransaction(ctx, id)
}

func (s *Memory) listTransactions(match func(models.Transaction) bool) []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0)
	for _, tx := range s.state.transactions {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Memory) ListTransactionsByUser(_ context.Context, userID uint) ([]models.Transaction, error) {
	return s.listTransactions(func(tx models.Transaction) bool { return tx.UserID == userID }), nil
}

func (s *Memory) ListTransactions(_ context.Context, status string) ([]models.Transaction, error) {
	return s.listTransactions(func(tx models.Transaction) bool { return status == "" || tx.Status == status }), nil
}

func (s *Memory) UpdateTransactionStatus(_ context.Context, id uint, status, adminNotes string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.state.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	tx.Status = status
	if adminNotes != "" {
		notes := adminNotes
		tx.AdminNotes = &notes
	}
	tx.UpdatedAt = time.Now()
	keep(s, s.state.transactions, id)
	s.state.transactions[id] = tx
	return &tx, nil
}

// Investments

func (s *Memory) CreateInvestment(_ context.Context, inv *models.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextID()
	stamp(&inv.CreatedAt, nil)
	keep(s, s.state.investments, inv.ID)
	s.state.investments[inv.ID] = *inv
	return nil
}

func (s *Memory) listInvestments(match func(models.Investment) bool) []models.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Investment, 0)
	for _, inv := range s.state.investments {
		if match(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Memory) ListInvestmentsByUser(_ context.Context, userID uint) ([]models.Investment, error) {
	return s.listInvestments(func(inv models.Investment) bool { return inv.UserID == userID }), nil
}

func (s *Memory) ListInvestments(_ context.Context) ([]models.Investment, error) {
	return s.listInvestments(func(models.Investment) bool { return true }), nil
}

// KYC

func (s *Memory) CreateKyc(_ context.Context, k *models.Kyc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k.ID = s.nextID()
	stamp(&k.CreatedAt, &k.UpdatedAt)
	keep(s, s.state.kyc, k.ID)
	s.state.kyc[k.ID] = *k
	return nil
}

func (s *Memory) GetKyc(_ context.Context, id uint) (*models.Kyc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.state.kyc[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &k, nil
}

func (s *Memory) GetLatestKycByUser(_ context.Context, userID uint) (*models.Kyc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Kyc
	for _, k := range s.state.kyc {
		if k.UserID != userID {
			continue
		}
		if latest == nil || k.ID > latest.ID {
			k := k
			latest = &k
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (s *Memory) ListKyc(_ context.Context, status string) ([]models.Kyc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Kyc, 0)
	for _, k := range s.state.kyc {
		if status == "" || k.Status == status {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Memory) UpdateKycStatus(_ context.Context, id uint, status, rejectionReason string) (*models.Kyc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.state.kyc[id]
	if !ok {
		return nil, ErrNotFound
	}
	k.Status = status
	if rejectionReason != "" {
		reason := rejectionReason
		k.RejectionReason = &reason
	}
	k.UpdatedAt = time.Now()
	keep(s, s.state.kyc, id)
	s.state.kyc[id] = k
	return &k, nil
}

// Deposit addresses and testimonials

func (s *Memory) ListDepositAddresses(_ context.Context) ([]models.DepositAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DepositAddress, 0, len(s.state.addresses))
	for _, a := range s.state.addresses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Memory) GetDepositAddressByMethod(ctx context.Context, method string) (*models.DepositAddress, error) {
	all, _ := s.ListDepositAddresses(ctx)
	for _, a := range all {
		if a.Method == method {
			a := a
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateDepositAddress(_ context.Context, a *models.DepositAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID()
	stamp(&a.CreatedAt, &a.UpdatedAt)
	keep(s, s.state.addresses, a.ID)
	s.state.addresses[a.ID] = *a
	return nil
}

func (s *Memory) UpdateDepositAddress(_ context.Context, id uint, address string) (*models.DepositAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Address = address
	a.UpdatedAt = time.Now()
	keep(s, s.state.addresses, id)
	s.state.addresses[id] = a
	return &a, nil
}

func (s *Memory) ListTestimonials(_ context.Context) ([]models.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Testimonial, 0, len(s.state.testimonials))
	for _, t := range s.state.testimonials {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Memory) CreateTestimonial(_ context.Context, t *models.Testimonial) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID()
	stamp(&t.CreatedAt, nil)
	keep(s, s.state.testimonials, t.ID)
	s.state.testimonials[t.ID] = *t
	return nil
}

// Sessions

func (s *Memory) CreateSession(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.sessions[sess.ID]; ok {
		return ErrDuplicate
	}
	stamp(&sess.CreatedAt, nil)
	keep(s, s.state.sessions, sess.ID)
	s.state.sessions[sess.ID] = *sess
	return nil
}

func (s *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.state.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *Memory) TouchSession(_ context.Context, id string, lastSeen, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.state.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.LastSeenAt = lastSeen
	sess.ExpiresAt = expiresAt
	keep(s, s.state.sessions, id)
	s.state.sessions[id] = sess
	return nil
}

func (s *Memory) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep(s, s.state.sessions, id)
	delete(s.state.sessions, id)
	return nil
}

func (s *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.state.sessions {
		if sess.Expired(now) {
			keep(s, s.state.sessions, id)
			delete(s.state.sessions, id)
			n++
		}
	}
	return n, nil
}
