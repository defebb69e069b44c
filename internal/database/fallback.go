package database

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investing101/internal/models"
)

// Fallback prefers the primary store and serves a call from the mock
// whenever the primary fails with a store error. Business-rule errors
// (unknown user) pass through untouched. A nil primary means initialization
// already failed and every call goes straight to the mock.
type Fallback struct {
	primary Store
	mock    Store
	log     *logrus.Logger
}

func NewFallback(primary Store, mock Store, log *logrus.Logger) *Fallback {
	if primary == nil {
		log.Warn("durable store unavailable, serving all reads and writes from the in-memory mock")
	}
	return &Fallback{primary: primary, mock: mock, log: log}
}

// retryable reports whether err is an infrastructure failure worth
// redirecting to the mock.
func retryable(err error) bool {
	var se *models.StoreError
	return errors.As(err, &se)
}

func (f *Fallback) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if f.primary == nil {
		return f.mock.GetBalance(ctx, userID)
	}
	bal, err := f.primary.GetBalance(ctx, userID)
	if err != nil && retryable(err) {
		f.log.Warnf("get balance from primary store failed, using mock: %v", err)
		return f.mock.GetBalance(ctx, userID)
	}
	return bal, err
}

func (f *Fallback) GetPortfolio(ctx context.Context, userID string) ([]models.Position, error) {
	if f.primary == nil {
		return f.mock.GetPortfolio(ctx, userID)
	}
	res, err := f.primary.GetPortfolio(ctx, userID)
	if err != nil && retryable(err) {
		f.log.Warnf("get portfolio from primary store failed, using mock: %v", err)
		return f.mock.GetPortfolio(ctx, userID)
	}
	return res, err
}

func (f *Fallback) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	if f.primary == nil {
		return f.mock.GetTransactions(ctx, userID)
	}
	res, err := f.primary.GetTransactions(ctx, userID)
	if err != nil && retryable(err) {
		f.log.Warnf("get transactions from primary store failed, using mock: %v", err)
		return f.mock.GetTransactions(ctx, userID)
	}
	return res, err
}

func (f *Fallback) GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error) {
	if f.primary == nil {
		return f.mock.GetPosition(ctx, userID, symbol)
	}
	pos, err := f.primary.GetPosition(ctx, userID, symbol)
	if err != nil && retryable(err) {
		f.log.Warnf("get position from primary store failed, using mock: %v", err)
		return f.mock.GetPosition(ctx, userID, symbol)
	}
	return pos, err
}

func (f *Fallback) InsertTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	if f.primary == nil {
		return f.mock.InsertTransaction(ctx, tx)
	}
	// Writes are not redirected: recording a trade only in the mock would
	// silently drop it from the durable ledger.
	return f.primary.InsertTransaction(ctx, tx)
}

func (f *Fallback) UpsertPosition(ctx context.Context, pos models.Position) (models.Position, error) {
	if f.primary == nil {
		return f.mock.UpsertPosition(ctx, pos)
	}
	return f.primary.UpsertPosition(ctx, pos)
}

func (f *Fallback) DeletePosition(ctx context.Context, id string) error {
	if f.primary == nil {
		return f.mock.DeletePosition(ctx, id)
	}
	return f.primary.DeletePosition(ctx, id)
}

func (f *Fallback) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	if f.primary == nil {
		return f.mock.UpdateBalance(ctx, userID, balance)
	}
	return f.primary.UpdateBalance(ctx, userID, balance)
}
