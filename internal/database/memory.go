package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"investing101/internal/models"
)

// MemStore is the in-memory Store used when Postgres is unavailable. It has
// no durability: state resets on restart and is pre-seeded with a single
// demonstration user so the app stays usable without configuration.
type MemStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User
	positions    []models.Position
	transactions []models.Transaction

	now func() time.Time
}

// DemoUserID is the pre-seeded demonstration account.
const DemoUserID = "user123"

func NewMemStore() *MemStore {
	seedDay := func(day, hhmm string) time.Time {
		t, _ := time.Parse(time.RFC3339, day+"T"+hhmm+":00Z")
		return t
	}
	d := func(s string) decimal.Decimal {
		v, _ := decimal.NewFromString(s)
		return v
	}

	m := &MemStore{
		users: map[string]*models.User{
			DemoUserID: {ID: DemoUserID, Email: "user@example.com", CashBalance: d("93273.40")},
		},
		now: time.Now,
	}

	seed := []struct {
		id, symbol, price, total string
		qty                      int64
		at                       time.Time
	}{
		{"1", "AAPL", "150.25", "1502.50", 10, seedDay("2025-04-15", "14:30")},
		{"2", "MSFT", "380.50", "1902.50", 5, seedDay("2025-04-16", "10:15")},
		{"3", "GOOGL", "160.30", "1282.40", 8, seedDay("2025-04-17", "09:45")},
	}
	for _, s := range seed {
		m.positions = append(m.positions, models.Position{
			ID: s.id, UserID: DemoUserID, Symbol: s.symbol,
			Quantity: s.qty, AvgPrice: d(s.price),
			CreatedAt: s.at, UpdatedAt: s.at,
		})
		m.transactions = append(m.transactions, models.Transaction{
			ID: s.id, UserID: DemoUserID, Symbol: s.symbol,
			Quantity: s.qty, Price: d(s.price), Type: models.TradeBuy,
			Total: d(s.total), Status: models.TxCompleted, CreatedAt: s.at,
		})
	}
	return m
}

func (m *MemStore) GetBalance(_ context.Context, userID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return decimal.Zero, models.ErrUserNotFound
	}
	return u.CashBalance, nil
}

func (m *MemStore) GetPortfolio(_ context.Context, userID string) ([]models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []models.Position{}
	for _, p := range m.positions {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (m *MemStore) GetTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []models.Transaction{}
	for _, t := range m.transactions {
		if t.UserID == userID {
			res = append(res, t)
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemStore) GetPosition(_ context.Context, userID, symbol string) (*models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range m.positions {
		if m.positions[i].UserID == userID && m.positions[i].Symbol == symbol {
			p := m.positions[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MemStore) InsertTransaction(_ context.Context, tx models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Status == "" {
		tx.Status = models.TxCompleted
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = m.now().UTC()
	}
	m.transactions = append(m.transactions, tx)
	return tx, nil
}

func (m *MemStore) UpsertPosition(_ context.Context, pos models.Position) (models.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now().UTC()
	for i := range m.positions {
		if m.positions[i].UserID == pos.UserID && m.positions[i].Symbol == pos.Symbol {
			pos.ID = m.positions[i].ID
			pos.CreatedAt = m.positions[i].CreatedAt
			pos.UpdatedAt = now
			m.positions[i] = pos
			return pos, nil
		}
	}
	pos.ID = uuid.NewString()
	pos.CreatedAt = now
	pos.UpdatedAt = now
	m.positions = append(m.positions, pos)
	return pos, nil
}

func (m *MemStore) DeletePosition(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.positions {
		if m.positions[i].ID == id {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemStore) UpdateBalance(_ context.Context, userID string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.CashBalance = balance
	return nil
}

// AddUser registers a user, mainly for tests.
func (m *MemStore) AddUser(id, email string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = &models.User{ID: id, Email: email, CashBalance: balance}
}
