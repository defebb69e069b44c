package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investing101/internal/models"
)

// Repo is the durable Store backed by Postgres.
type Repo struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func New(db *sqlx.DB, log *logrus.Logger) *Repo {
	return &Repo{db: db, log: log}
}

func storeErr(op string, err error) error {
	return &models.StoreError{Op: op, Err: err}
}

func (r *Repo) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balStr string
	err := r.db.GetContext(ctx, &balStr, `SELECT cash_balance::text FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, models.ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, storeErr("get balance", err)
	}
	bal, err := decimal.NewFromString(balStr)
	if err != nil {
		return decimal.Zero, storeErr("get balance", err)
	}
	return bal, nil
}

func (r *Repo) GetPortfolio(ctx context.Context, userID string) ([]models.Position, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, user_id, symbol, quantity, avg_price, created_at, updated_at
		FROM portfolios WHERE user_id = $1 ORDER BY symbol ASC`, userID)
	if err != nil {
		return nil, storeErr("get portfolio", err)
	}
	defer rows.Close()
	res := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.StructScan(&p); err != nil {
			r.log.Warnf("scan position failed: %v", err)
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

func (r *Repo) GetTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT id, user_id, symbol, quantity, price, type, total, status, created_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, storeErr("get transactions", err)
	}
	defer rows.Close()
	res := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.StructScan(&t); err != nil {
			r.log.Warnf("scan transaction failed: %v", err)
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

func (r *Repo) GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error) {
	var p models.Position
	err := r.db.GetContext(ctx, &p, `
		SELECT id, user_id, symbol, quantity, avg_price, created_at, updated_at
		FROM portfolios WHERE user_id = $1 AND symbol = $2`, userID, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get position", err)
	}
	return &p, nil
}

func (r *Repo) InsertTransaction(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	q := `INSERT INTO transactions (id, user_id, symbol, quantity, price, type, total, status, created_at)
	      VALUES (gen_random_uuid(), $1, $2, $3, $4::numeric, $5, $6::numeric, $7, now())
	      RETURNING id, created_at`
	if tx.Status == "" {
		tx.Status = models.TxCompleted
	}
	err := r.db.QueryRowxContext(ctx, q,
		tx.UserID, tx.Symbol, tx.Quantity, tx.Price.String(), tx.Type, tx.Total.String(), tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return models.Transaction{}, storeErr("insert transaction", err)
	}
	return tx, nil
}

func (r *Repo) UpsertPosition(ctx context.Context, pos models.Position) (models.Position, error) {
	q := `INSERT INTO portfolios (id, user_id, symbol, quantity, avg_price, created_at, updated_at)
	      VALUES (gen_random_uuid(), $1, $2, $3, $4::numeric, now(), now())
	      ON CONFLICT (user_id, symbol)
	      DO UPDATE SET quantity = EXCLUDED.quantity, avg_price = EXCLUDED.avg_price, updated_at = now()
	      RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q,
		pos.UserID, pos.Symbol, pos.Quantity, pos.AvgPrice.String(),
	).Scan(&pos.ID, &pos.CreatedAt, &pos.UpdatedAt)
	if err != nil {
		return models.Position{}, storeErr("upsert position", err)
	}
	return pos, nil
}

func (r *Repo) DeletePosition(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE id = $1`, id); err != nil {
		return storeErr("delete position", err)
	}
	return nil
}

func (r *Repo) UpdateBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET cash_balance = $2::numeric WHERE id = $1`, userID, balance.String())
	if err != nil {
		return storeErr("update balance", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *Repo) EnsureUserExists(ctx context.Context, userID, email string, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, cash_balance) VALUES ($1, $2, $3::numeric) ON CONFLICT (id) DO NOTHING`,
		userID, email, balance.String())
	if err != nil {
		return storeErr("ensure user", err)
	}
	return nil
}
