package database

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investing101/internal/models"
)

func setupDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("POSTGRES_URL")
	if url == "" {
		t.Skip("POSTGRES_URL is not set; skipping integration tests")
	}
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	b, err := os.ReadFile("../../migrations/0001_init.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		t.Logf("exec migration: %v", err)
	}
	return db
}

func cleanupUser(t *testing.T, db *sqlx.DB, userID string) {
	t.Helper()
	_, _ = db.Exec(`DELETE FROM transactions WHERE user_id = $1`, userID)
	_, _ = db.Exec(`DELETE FROM portfolios WHERE user_id = $1`, userID)
	_, _ = db.Exec(`DELETE FROM users WHERE id = $1`, userID)
}

func TestRepo_BalanceRoundTrip(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())
	ctx := context.Background()

	userID := "pg-balance-user"
	cleanupUser(t, db, userID)
	require.NoError(t, r.EnsureUserExists(ctx, userID, "pg@example.com", decimal.RequireFromString("1000")))

	bal, err := r.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("1000")))

	require.NoError(t, r.UpdateBalance(ctx, userID, decimal.RequireFromString("512.25")))
	bal, err = r.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(decimal.RequireFromString("512.25")))

	_, err = r.GetBalance(ctx, "pg-no-such-user")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.ErrorIs(t, r.UpdateBalance(ctx, "pg-no-such-user", decimal.NewFromInt(1)), models.ErrUserNotFound)
}

func TestRepo_PositionsAndTransactions(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	r := New(db, logrus.New())
	ctx := context.Background()

	userID := "pg-position-user"
	cleanupUser(t, db, userID)
	require.NoError(t, r.EnsureUserExists(ctx, userID, "", decimal.NewFromInt(10000)))

	pos, err := r.UpsertPosition(ctx, models.Position{
		UserID: userID, Symbol: "AAPL", Quantity: 10,
		AvgPrice: decimal.RequireFromString("150.25"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, pos.ID)

	// Same (user, symbol) hits the conflict branch and keeps the row id.
	updated, err := r.UpsertPosition(ctx, models.Position{
		UserID: userID, Symbol: "AAPL", Quantity: 20,
		AvgPrice: decimal.RequireFromString("162.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, pos.ID, updated.ID)

	got, err := r.GetPosition(ctx, userID, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(20), got.Quantity)
	assert.True(t, got.AvgPrice.Equal(decimal.RequireFromString("162.50")))

	missing, err := r.GetPosition(ctx, userID, "MSFT")
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, sym := range []string{"AAPL", "MSFT"} {
		_, err := r.InsertTransaction(ctx, models.Transaction{
			UserID: userID, Symbol: sym, Quantity: 1,
			Price: decimal.NewFromInt(100), Type: models.TradeBuy,
			Total: decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}
	txs, err := r.GetTransactions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "MSFT", txs[0].Symbol, "newest first")
	assert.Equal(t, models.TxCompleted, txs[0].Status)

	require.NoError(t, r.DeletePosition(ctx, pos.ID))
	got, err = r.GetPosition(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, got)
}
