package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investing101/internal/database"
	"investing101/internal/models"
	"investing101/internal/service"
)

type Handler struct {
	store  database.Store
	quotes *service.QuoteService
	trades *service.TradeService
	log    *logrus.Logger
}

func NewHandler(store database.Store, quotes *service.QuoteService, trades *service.TradeService, log *logrus.Logger) *Handler {
	return &Handler{store: store, quotes: quotes, trades: trades, log: log}
}

// Register mounts all routes under /api.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/health", h.Health)

	market := api.Group("/market")
	market.GET("/search", h.Search)
	market.GET("/quote/:symbol", h.Quote)
	market.GET("/daily/:symbol", h.Daily)

	user := api.Group("/user", RequireAuth())
	user.GET("/portfolio", h.GetPortfolio)
	user.GET("/transactions", h.GetTransactions)
	user.POST("/transactions", h.CreateTransaction)
	user.GET("/balance", h.GetBalance)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
}

const userIDKey = "userID"

// RequireAuth trusts the caller-supplied user-id header as the identity.
// This is a stub, not authentication.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("user-id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Investing101 API is running"})
}

func (h *Handler) Search(c *gin.Context) {
	keywords := c.Query("keywords")
	if keywords == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keywords parameter is required"})
		return
	}
	matches := h.quotes.Search(c.Request.Context(), keywords)
	c.JSON(http.StatusOK, encodeMatches(matches))
}

func (h *Handler) Quote(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock symbol is required"})
		return
	}
	q := h.quotes.Quote(c.Request.Context(), symbol)
	c.JSON(http.StatusOK, encodeQuote(q))
}

func (h *Handler) Daily(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock symbol is required"})
		return
	}
	d := h.quotes.DailySeries(c.Request.Context(), symbol)
	c.JSON(http.StatusOK, encodeDailySeries(d))
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	userID := c.GetString(userIDKey)
	positions, err := h.store.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("get portfolio for user %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve portfolio data"})
		return
	}
	h.log.Infof("retrieved portfolio for user %s", userID)
	c.JSON(http.StatusOK, positions)
}

func (h *Handler) GetTransactions(c *gin.Context) {
	userID := c.GetString(userIDKey)
	txs, err := h.store.GetTransactions(c.Request.Context(), userID)
	if err != nil {
		h.log.Errorf("get transactions for user %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction data"})
		return
	}
	h.log.Infof("retrieved transactions for user %s", userID)
	c.JSON(http.StatusOK, txs)
}

type TransactionRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Type     string          `json:"type"`
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid transaction body from user %s: %v", userID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data types provided"})
		return
	}

	res, err := h.trades.Execute(c.Request.Context(), userID, models.Order{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    req.Price,
		Type:     models.TradeType(req.Type),
	})
	if err != nil {
		h.handleTradeError(c, userID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": res.Transaction,
		"new_balance": res.NewBalance,
	})
}

func (h *Handler) handleTradeError(c *gin.Context, userID string, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, models.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds for this purchase"})
	case errors.Is(err, models.ErrInsufficientShares):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough shares to sell"})
	default:
		h.log.Errorf("transaction for user %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transaction"})
	}
}

func (h *Handler) GetBalance(c *gin.Context) {
	userID := c.GetString(userIDKey)
	balance, err := h.store.GetBalance(c.Request.Context(), userID)
	if errors.Is(err, models.ErrUserNotFound) {
		h.log.Warnf("user %s not found when retrieving balance", userID)
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.log.Errorf("get balance for user %s failed: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cash_balance": balance})
}
