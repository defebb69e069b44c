package database

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investing101/internal/models"
)

// brokenStore fails every call with a store error, standing in for an
// unreachable database.
type brokenStore struct{}

func (brokenStore) err(op string) error {
	return &models.StoreError{Op: op, Err: errors.New("connection refused")}
}

func (b brokenStore) GetBalance(context.Context, string) (decimal.Decimal, error) {
	return decimal.Zero, b.err("get balance")
}
func (b brokenStore) GetPortfolio(context.Context, string) ([]models.Position, error) {
	return nil, b.err("get portfolio")
}
func (b brokenStore) GetTransactions(context.Context, string) ([]models.Transaction, error) {
	return nil, b.err("get transactions")
}
func (b brokenStore) GetPosition(context.Context, string, string) (*models.Position, error) {
	return nil, b.err("get position")
}
func (b brokenStore) InsertTransaction(context.Context, models.Transaction) (models.Transaction, error) {
	return models.Transaction{}, b.err("insert transaction")
}
func (b brokenStore) UpsertPosition(context.Context, models.Position) (models.Position, error) {
	return models.Position{}, b.err("upsert position")
}
func (b brokenStore) DeletePosition(context.Context, string) error {
	return b.err("delete position")
}
func (b brokenStore) UpdateBalance(context.Context, string, decimal.Decimal) error {
	return b.err("update balance")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestFallback_NilPrimaryServesMock(t *testing.T) {
	f := NewFallback(nil, NewMemStore(), quietLogger())
	ctx := context.Background()

	bal, err := f.GetBalance(ctx, DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "93273.4", bal.String())

	_, err = f.InsertTransaction(ctx, models.Transaction{
		UserID: DemoUserID, Symbol: "TSLA", Quantity: 1,
		Price: decimal.NewFromInt(1), Type: models.TradeBuy, Total: decimal.NewFromInt(1),
	})
	assert.NoError(t, err, "writes go to the mock when no primary exists")
}

func TestFallback_ReadsRedirectOnStoreError(t *testing.T) {
	f := NewFallback(brokenStore{}, NewMemStore(), quietLogger())
	ctx := context.Background()

	bal, err := f.GetBalance(ctx, DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "93273.4", bal.String())

	positions, err := f.GetPortfolio(ctx, DemoUserID)
	require.NoError(t, err)
	assert.Len(t, positions, 3)

	txs, err := f.GetTransactions(ctx, DemoUserID)
	require.NoError(t, err)
	assert.Len(t, txs, 3)

	pos, err := f.GetPosition(ctx, DemoUserID, "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, pos)
}

func TestFallback_BusinessErrorsPassThrough(t *testing.T) {
	f := NewFallback(NewMemStore(), NewMemStore(), quietLogger())

	// Unknown user is not an infrastructure failure; it must not be retried
	// against the mock (which would give the same answer anyway).
	_, err := f.GetBalance(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestFallback_WritesNotRedirected(t *testing.T) {
	f := NewFallback(brokenStore{}, NewMemStore(), quietLogger())
	ctx := context.Background()

	_, err := f.InsertTransaction(ctx, models.Transaction{UserID: DemoUserID})
	var se *models.StoreError
	assert.ErrorAs(t, err, &se, "a failed durable write must surface, not silently land in the mock")

	err = f.UpdateBalance(ctx, DemoUserID, decimal.NewFromInt(5))
	assert.ErrorAs(t, err, &se)
}
