//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-credit-sync/internal/domain"
	"subscription-credit-sync/internal/domain/model"
	"subscription-credit-sync/internal/domain/ports/repository"
	"subscription-credit-sync/internal/usecase"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// -----------------------------
// Transaction manager
// -----------------------------

// MockTxManager serializes every transaction behind a single mutex, which is
// the in-memory stand-in for the store's serializable per-key semantics.
type MockTxManager struct {
	mu sync.Mutex

	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// -----------------------------
// Balance repository
// -----------------------------

type MockBalanceRepo struct {
	mu    sync.RWMutex
	store map[string]*model.CreditBalance

	SaveFunc      func(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error
	FindByUIDFunc func(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error)
}

var _ repository.CreditBalanceRepository = (*MockBalanceRepo)(nil)

func NewMockBalanceRepo() *MockBalanceRepo {
	return &MockBalanceRepo{store: make(map[string]*model.CreditBalance)}
}

func (m *MockBalanceRepo) Save(ctx context.Context, tx repository.Tx, b *model.CreditBalance) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, b)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.store[b.UID] = &cp
	return nil
}

func (m *MockBalanceRepo) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.CreditBalance, error) {
	if m.FindByUIDFunc != nil {
		return m.FindByUIDFunc(ctx, tx, uid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *MockBalanceRepo) CountBalances(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockBalanceRepo) SumOutstanding(ctx context.Context, tx repository.Tx) (int64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var gift, paid int64
	for _, b := range m.store {
		gift += int64(b.GiftCredit)
		paid += int64(b.PaidCredit)
	}
	return gift, paid, nil
}

// seed installs a balance directly, bypassing hooks.
func (m *MockBalanceRepo) seed(b *model.CreditBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.store[b.UID] = &cp
}

// get reads a balance directly, bypassing hooks.
func (m *MockBalanceRepo) get(uid string) *model.CreditBalance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.store[uid]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

// -----------------------------
// Journal repository
// -----------------------------

type MockEntryRepo struct {
	mu      sync.Mutex
	Entries []*model.CreditEntry

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.CreditEntry) error
}

var _ repository.CreditEntryRepository = (*MockEntryRepo)(nil)

func NewMockEntryRepo() *MockEntryRepo { return &MockEntryRepo{} }

func (m *MockEntryRepo) Append(ctx context.Context, tx repository.Tx, e *model.CreditEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *MockEntryRepo) kinds() []model.CreditEntryKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CreditEntryKind, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e.Kind)
	}
	return out
}

// -----------------------------
// Ledger (for lifecycle tests)
// -----------------------------

// MockLedger records the ordered ledger calls the coordinator makes.
type MockLedger struct {
	mu    sync.Mutex
	Calls []string // e.g. "reset_gift", "clear_gift", "add_paid:prodA:p1"

	GetOrCreateFunc func(ctx context.Context, uid string) (*model.CreditBalance, error)
	ConsumeFunc     func(ctx context.Context, uid string, amount int, usageType, usageID string) (*usecase.ConsumeResult, error)
	AddPaidFunc     func(ctx context.Context, uid string, amount int, productID, purchaseID string) error
	ResetGiftFunc   func(ctx context.Context, uid string) error
	ClearGiftFunc   func(ctx context.Context, uid string) error
	RefundFunc      func(ctx context.Context, uid string, amount int) error
}

var _ usecase.CreditLedgerUseCase = (*MockLedger)(nil)

func (m *MockLedger) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockLedger) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

func (m *MockLedger) GetOrCreate(ctx context.Context, uid string) (*model.CreditBalance, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, uid)
	}
	m.record("get_or_create")
	return model.NewCreditBalance(uid), nil
}

func (m *MockLedger) Consume(ctx context.Context, uid string, amount int, usageType, usageID string) (*usecase.ConsumeResult, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, uid, amount, usageType, usageID)
	}
	m.record("consume")
	return &usecase.ConsumeResult{UsedGift: amount}, nil
}

func (m *MockLedger) AddPaid(ctx context.Context, uid string, amount int, productID, purchaseID string) error {
	if m.AddPaidFunc != nil {
		return m.AddPaidFunc(ctx, uid, amount, productID, purchaseID)
	}
	m.record("add_paid:" + productID + ":" + purchaseID)
	return nil
}

func (m *MockLedger) ResetGift(ctx context.Context, uid string) error {
	if m.ResetGiftFunc != nil {
		return m.ResetGiftFunc(ctx, uid)
	}
	m.record("reset_gift")
	return nil
}

func (m *MockLedger) ClearGift(ctx context.Context, uid string) error {
	if m.ClearGiftFunc != nil {
		return m.ClearGiftFunc(ctx, uid)
	}
	m.record("clear_gift")
	return nil
}

func (m *MockLedger) Refund(ctx context.Context, uid string, amount int) error {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, uid, amount)
	}
	m.record("refund")
	return nil
}
