package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The frontend consumes monetary fields as bare JSON numbers, not the
// quoted strings the decimal package emits by default.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// TradeType is the direction of an order.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// TxCompleted is the only transaction status the ledger models.
const TxCompleted = "COMPLETED"

type User struct {
	ID          string          `db:"id" json:"id"`
	Email       string          `db:"email" json:"email"`
	CashBalance decimal.Decimal `db:"cash_balance" json:"cash_balance"`
}

// Position is a user's holding of one symbol. Unique per (user_id, symbol)
// while quantity > 0; removed entirely once quantity reaches zero.
type Position struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	AvgPrice  decimal.Decimal `db:"avg_price" json:"avg_price"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Transaction is one row of the append-only trade ledger.
type Transaction struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Symbol    string          `db:"symbol" json:"symbol"`
	Quantity  int64           `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Type      TradeType       `db:"type" json:"type"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Order is a buy/sell request before execution.
type Order struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Type     TradeType       `json:"type"`
}

// TradeResult is what a completed order returns to the caller.
type TradeResult struct {
	Transaction Transaction     `json:"transaction"`
	NewBalance  decimal.Decimal `json:"new_balance"`
}

// Quote is an ephemeral market snapshot. Never persisted; values are
// display-only, so plain floats rather than decimals.
type Quote struct {
	Symbol           string
	Open             float64
	High             float64
	Low              float64
	Price            float64
	Volume           int64
	LatestTradingDay string
	PrevClose        float64
	Change           float64
	ChangePercent    float64
}

// Match is one row of a symbol search result.
type Match struct {
	Symbol      string
	Name        string
	Type        string
	Region      string
	MarketOpen  string
	MarketClose string
	Timezone    string
	Currency    string
	MatchScore  string
}

// Bar is one day of a daily price series.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

type SeriesMeta struct {
	Information   string
	Symbol        string
	LastRefreshed string
	OutputSize    string
	TimeZone      string
}

// DailySeries is a dated OHLCV history. Dates keeps the chronological order
// that the map alone would lose (oldest first).
type DailySeries struct {
	Meta   SeriesMeta
	Dates  []string
	Series map[string]Bar
}
