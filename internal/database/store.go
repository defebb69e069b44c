package database

import (
	"context"

	"github.com/shopspring/decimal"

	"investing101/internal/models"
)

// Store is the ledger contract shared by the durable Postgres variant and
// the in-memory mock. Implementations return models.ErrUserNotFound for
// unknown users and wrap infrastructure failures in *models.StoreError so
// the fallback layer can tell the two apart.
type Store interface {
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	GetPortfolio(ctx context.Context, userID string) ([]models.Position, error)
	// GetTransactions returns the user's ledger newest first.
	GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	// GetPosition returns nil (no error) when the user holds no shares of symbol.
	GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error)
	// InsertTransaction assigns id, status and created_at when absent.
	InsertTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error)
	UpsertPosition(ctx context.Context, pos models.Position) (models.Position, error)
	DeletePosition(ctx context.Context, id string) error
	UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error
}
