package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds the Postgres ledger with the same demonstration fixture the
// in-memory store ships with, so both variants serve identical data.
func main() {
	godotenv.Load()
	dbURL := os.Getenv("POSTGRES_URL")
	if dbURL == "" {
		log.Fatal("POSTGRES_URL is required")
	}

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	userID := "user123"

	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, cash_balance)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (id) DO NOTHING`,
		userID, "user@example.com", "93273.40")
	if err != nil {
		log.Fatalf("seed user failed: %v", err)
	}

	seed := []struct {
		symbol, price, total, at string
		qty                      int64
	}{
		{"AAPL", "150.25", "1502.50", "2025-04-15T14:30:00Z", 10},
		{"MSFT", "380.50", "1902.50", "2025-04-16T10:15:00Z", 5},
		{"GOOGL", "160.30", "1282.40", "2025-04-17T09:45:00Z", 8},
	}

	for _, s := range seed {
		_, err := db.ExecContext(ctx, `
			INSERT INTO portfolios (user_id, symbol, quantity, avg_price, created_at, updated_at)
			VALUES ($1, $2, $3, $4::numeric, $5, $5)
			ON CONFLICT (user_id, symbol) DO NOTHING`,
			userID, s.symbol, s.qty, s.price, s.at)
		if err != nil {
			fmt.Printf("warning: could not insert position %s: %v\n", s.symbol, err)
		}

		_, err = db.ExecContext(ctx, `
			INSERT INTO transactions (user_id, symbol, quantity, price, type, total, status, created_at)
			VALUES ($1, $2, $3, $4::numeric, 'buy', $5::numeric, 'COMPLETED', $6)`,
			userID, s.symbol, s.qty, s.price, s.total, s.at)
		if err != nil {
			fmt.Printf("warning: could not insert transaction %s: %v\n", s.symbol, err)
		}
	}

	fmt.Println("Seeded demonstration user and portfolio.")
}
