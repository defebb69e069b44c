package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"investing101/internal/database"
	"investing101/internal/handlers"
	"investing101/internal/ratelimit"
	"investing101/internal/service"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	// Load .env file if it exists, but don't fail if it's missing (e.g. in production)
	_ = godotenv.Load()

	store := selectStore(logger)

	limiter := ratelimit.New(envInt("RATE_LIMIT_MAX", ratelimit.DefaultMaxCalls),
		time.Duration(envInt("RATE_LIMIT_PERIOD", 60))*time.Second)
	fetch := service.NewYahooFetcher(os.Getenv("QUOTE_BASE_URL"))
	quoteSvc := service.NewQuoteService(fetch, limiter, logger)
	tradeSvc := service.NewTradeService(store, logger)

	h := handlers.NewHandler(store, quoteSvc, tradeSvc, logger)

	r := gin.Default()
	r.Use(cors.Default())
	h.Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Infof("server starting on :%s", port)
	if err := r.Run(fmt.Sprintf(":%s", port)); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// selectStore prefers Postgres and degrades to the seeded in-memory mock
// when POSTGRES_URL is unset or the database is unreachable.
func selectStore(logger *logrus.Logger) database.Store {
	mock := database.NewMemStore()

	dsn := os.Getenv("POSTGRES_URL")
	if dsn == "" {
		logger.Warn("POSTGRES_URL is not set")
		return database.NewFallback(nil, mock, logger)
	}

	db, err := initDB(dsn)
	if err != nil {
		logger.Warnf("db connect failed: %v", err)
		return database.NewFallback(nil, mock, logger)
	}
	return database.NewFallback(database.New(db, logger), mock, logger)
}

func initDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return db, nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if iv, err := strconv.Atoi(v); err == nil && iv > 0 {
			return iv
		}
	}
	return def
}
