package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investing101/internal/database"
	"investing101/internal/models"
)

func newTradeFixture(t *testing.T, balance string) (*TradeService, *database.MemStore, string) {
	t.Helper()
	store := database.NewMemStore()
	userID := "trade-test-user"
	store.AddUser(userID, "trader@example.com", decimal.RequireFromString(balance))
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewTradeService(store, logger), store, userID
}

func order(symbol string, qty int64, price string, typ models.TradeType) models.Order {
	return models.Order{Symbol: symbol, Quantity: qty, Price: decimal.RequireFromString(price), Type: typ}
}

func TestExecute_BuyThenSellScenario(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "1000")
	ctx := context.Background()

	res, err := svc.Execute(ctx, userID, order("X", 5, "100", models.TradeBuy))
	require.NoError(t, err)
	assert.Equal(t, "500", res.NewBalance.String())
	assert.Equal(t, models.TxCompleted, res.Transaction.Status)
	assert.Equal(t, "500", res.Transaction.Total.String())
	require.NotEmpty(t, res.Transaction.ID)

	pos, err := store.GetPosition(ctx, userID, "X")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(5), pos.Quantity)
	assert.Equal(t, "100", pos.AvgPrice.String())

	res, err = svc.Execute(ctx, userID, order("X", 5, "120", models.TradeSell))
	require.NoError(t, err)
	assert.Equal(t, "1100", res.NewBalance.String())

	pos, err = store.GetPosition(ctx, userID, "X")
	require.NoError(t, err)
	assert.Nil(t, pos, "position must be deleted when quantity reaches zero")
}

func TestExecute_WeightedAverageCostBasis(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "10000")
	ctx := context.Background()

	_, err := svc.Execute(ctx, userID, order("ACME", 10, "100", models.TradeBuy))
	require.NoError(t, err)
	_, err = svc.Execute(ctx, userID, order("ACME", 10, "200", models.TradeBuy))
	require.NoError(t, err)

	pos, err := store.GetPosition(ctx, userID, "ACME")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(20), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(decimal.RequireFromString("150")),
		"expected avg price 150, got %s", pos.AvgPrice)
}

func TestExecute_SellLeavesAvgPriceUnchanged(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "5000")
	ctx := context.Background()

	_, err := svc.Execute(ctx, userID, order("ACME", 10, "100", models.TradeBuy))
	require.NoError(t, err)
	_, err = svc.Execute(ctx, userID, order("ACME", 4, "250", models.TradeSell))
	require.NoError(t, err)

	pos, err := store.GetPosition(ctx, userID, "ACME")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(6), pos.Quantity)
	assert.True(t, pos.AvgPrice.Equal(decimal.RequireFromString("100")))
}

func TestExecute_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "100")
	ctx := context.Background()

	_, err := svc.Execute(ctx, userID, order("NVDA", 5, "925", models.TradeBuy))
	require.ErrorIs(t, err, models.ErrInsufficientFunds)

	bal, err := store.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.String())

	txs, err := store.GetTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, txs, "no ledger entry may be written for a rejected order")

	pos, err := store.GetPosition(ctx, userID, "NVDA")
	require.NoError(t, err)
	assert.Nil(t, pos)
}

func TestExecute_InsufficientSharesLeavesStateUntouched(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "1000")
	ctx := context.Background()

	_, err := svc.Execute(ctx, userID, order("X", 3, "100", models.TradeBuy))
	require.NoError(t, err)

	_, err = svc.Execute(ctx, userID, order("X", 5, "100", models.TradeSell))
	require.ErrorIs(t, err, models.ErrInsufficientShares)

	bal, err := store.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "700", bal.String())

	pos, err := store.GetPosition(ctx, userID, "X")
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, int64(3), pos.Quantity)

	txs, err := store.GetTransactions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestExecute_SellWithNoPosition(t *testing.T) {
	svc, _, userID := newTradeFixture(t, "1000")

	_, err := svc.Execute(context.Background(), userID, order("GHOST", 1, "10", models.TradeSell))
	assert.ErrorIs(t, err, models.ErrInsufficientShares)
}

func TestExecute_UnknownUser(t *testing.T) {
	svc, _, _ := newTradeFixture(t, "1000")

	_, err := svc.Execute(context.Background(), "nobody", order("X", 1, "10", models.TradeBuy))
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestExecute_Validation(t *testing.T) {
	svc, _, userID := newTradeFixture(t, "1000")
	ctx := context.Background()

	cases := []struct {
		name  string
		ord   models.Order
		field string
	}{
		{"missing symbol", order("", 1, "10", models.TradeBuy), "symbol"},
		{"zero quantity", order("X", 0, "10", models.TradeBuy), "quantity"},
		{"negative quantity", order("X", -3, "10", models.TradeBuy), "quantity"},
		{"zero price", order("X", 1, "0", models.TradeBuy), "price"},
		{"negative price", order("X", 1, "-5", models.TradeBuy), "price"},
		{"bad type", order("X", 1, "10", "hold"), "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Execute(ctx, userID, tc.ord)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestExecute_SymbolNormalized(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "1000")
	ctx := context.Background()

	res, err := svc.Execute(ctx, userID, order(" aapl ", 1, "100", models.TradeBuy))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Transaction.Symbol)

	pos, err := store.GetPosition(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, pos)
}

func TestExecute_CashDeltaMatchesPositionMovement(t *testing.T) {
	svc, store, userID := newTradeFixture(t, "93273.40")
	ctx := context.Background()

	before, _ := store.GetBalance(ctx, userID)
	res, err := svc.Execute(ctx, userID, order("MSFT", 3, "380.50", models.TradeBuy))
	require.NoError(t, err)

	delta := before.Sub(res.NewBalance)
	assert.True(t, delta.Equal(res.Transaction.Total),
		"cash delta %s must equal transaction total %s", delta, res.Transaction.Total)
}
