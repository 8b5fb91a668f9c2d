package service

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/gtd_dragonpay/internal/cache"
	"github.com/GTDGit/gtd_dragonpay/internal/models"
	"github.com/GTDGit/gtd_dragonpay/internal/utils"
	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

type fakeTrxStore struct {
	mu    sync.Mutex
	items map[string]*models.Transaction
}

func newFakeTrxStore() *fakeTrxStore {
	return &fakeTrxStore{items: map[string]*models.Transaction{}}
}

func (f *fakeTrxStore) Create(trx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[trx.TransactionID]; ok {
		return utils.ErrDuplicateTransactionID
	}
	trx.ID = len(f.items) + 1
	trx.CreatedAt = time.Now()
	cp := *trx
	f.items[trx.TransactionID] = &cp
	return nil
}

func (f *fakeTrxStore) GetByTxnID(txnID string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trx, ok := f.items[txnID]
	if !ok {
		return nil, utils.ErrTransactionNotFound
	}
	cp := *trx
	return &cp, nil
}

func (f *fakeTrxStore) UpdateStatus(txnID, statusCode, status string, refNo, message *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	trx, ok := f.items[txnID]
	if !ok {
		return utils.ErrTransactionNotFound
	}
	if !dragonpay.CanTransition(trx.Status, status) {
		return utils.ErrTransactionFinal
	}
	trx.StatusCode = statusCode
	trx.Status = status
	if refNo != nil {
		trx.RefNo = refNo
	}
	if message != nil {
		trx.Message = message
	}
	return nil
}

func (f *fakeTrxStore) ExpirePending(txnID, message string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trx, ok := f.items[txnID]
	if !ok || !dragonpay.IsPendingStatus(trx.Status) {
		return false, nil
	}
	trx.StatusCode = dragonpay.StatusCodeFailure
	trx.Status = dragonpay.StatusFailure
	trx.Message = &message
	return true, nil
}

func (f *fakeTrxStore) MarkChecked(txnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if trx, ok := f.items[txnID]; ok {
		trx.CheckCount++
		now := time.Now()
		trx.LastCheckedAt = &now
	}
	return nil
}

func (f *fakeTrxStore) GetStalePending(_ time.Duration, limit int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, trx := range f.items {
		if trx.Status == "pending" && len(out) < limit {
			out = append(out, *trx)
		}
	}
	return out, nil
}

func (f *fakeTrxStore) List(models.TransactionFilter) ([]models.Transaction, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Transaction
	for _, trx := range f.items {
		out = append(out, *trx)
	}
	return out, len(out), nil
}

type fakePostbackStore struct {
	mu    sync.Mutex
	items []models.Postback
}

func (f *fakePostbackStore) Create(p *models.Postback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = len(f.items) + 1
	f.items = append(f.items, *p)
	return nil
}

func (f *fakePostbackStore) ListByTxnID(txnID string) ([]models.Postback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Postback
	for _, p := range f.items {
		if p.TransactionID == txnID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]cache.StatusEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]cache.StatusEntry{}}
}

func (f *fakeCache) Get(_ context.Context, txnID string) (*cache.StatusEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[txnID]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &e, nil
}

func (f *fakeCache) Set(_ context.Context, e *cache.StatusEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[e.TransactionID] = *e
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, txnID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, txnID)
	return nil
}

type fakeAdminStore struct {
	users   map[string]*models.AdminUser
	touched []int
}

func (f *fakeAdminStore) GetByEmail(email string) (*models.AdminUser, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, utils.ErrAdminNotFound
	}
	return u, nil
}

func (f *fakeAdminStore) Create(user *models.AdminUser) error {
	user.ID = len(f.users) + 1
	f.users[user.Email] = user
	return nil
}

func (f *fakeAdminStore) TouchLastLogin(id int) error {
	f.touched = append(f.touched, id)
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (r *recordingNotifier) NotifyTransactionCreated(trx *models.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, trx.TransactionID)
}

func (r *recordingNotifier) NotifyStatusChanged(txnID, _, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, txnID+":"+status)
}
