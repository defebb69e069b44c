package service

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"investing101/internal/database"
	"investing101/internal/models"
)

// TradeService validates a buy/sell order and applies the three-way ledger
// update: transaction record, portfolio position, cash balance. Orders for
// the same user are serialized through a per-user lock so two in-flight
// sells cannot both pass the shares check against stale data.
type TradeService struct {
	store database.Store
	log   *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTradeService(store database.Store, log *logrus.Logger) *TradeService {
	return &TradeService{store: store, log: log, locks: make(map[string]*sync.Mutex)}
}

func (s *TradeService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func validateOrder(ord models.Order) error {
	switch {
	case strings.TrimSpace(ord.Symbol) == "":
		return models.NewValidationError("symbol", "symbol is required")
	case ord.Quantity <= 0:
		return models.NewValidationError("quantity", "quantity must be greater than zero")
	case !ord.Price.IsPositive():
		return models.NewValidationError("price", "price must be greater than zero")
	case ord.Type != models.TradeBuy && ord.Type != models.TradeSell:
		return models.NewValidationError("type", "type must be 'buy' or 'sell'")
	}
	return nil
}

func (s *TradeService) Execute(ctx context.Context, userID string, ord models.Order) (models.TradeResult, error) {
	if err := validateOrder(ord); err != nil {
		return models.TradeResult{}, err
	}
	ord.Symbol = strings.ToUpper(strings.TrimSpace(ord.Symbol))

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.log.Infof("processing %s for user %s: %d shares of %s at %s",
		ord.Type, userID, ord.Quantity, ord.Symbol, ord.Price.String())

	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return models.TradeResult{}, err
	}

	pos, err := s.store.GetPosition(ctx, userID, ord.Symbol)
	if err != nil {
		return models.TradeResult{}, err
	}

	qty := decimal.NewFromInt(ord.Quantity)
	total := ord.Price.Mul(qty)

	if ord.Type == models.TradeBuy && total.GreaterThan(balance) {
		s.log.Warnf("insufficient funds for user %s: has %s, needs %s", userID, balance, total)
		return models.TradeResult{}, models.ErrInsufficientFunds
	}
	if ord.Type == models.TradeSell && (pos == nil || pos.Quantity < ord.Quantity) {
		s.log.Warnf("insufficient shares for user %s to sell %d of %s", userID, ord.Quantity, ord.Symbol)
		return models.TradeResult{}, models.ErrInsufficientShares
	}

	inserted, err := s.store.InsertTransaction(ctx, models.Transaction{
		UserID:   userID,
		Symbol:   ord.Symbol,
		Quantity: ord.Quantity,
		Price:    ord.Price,
		Type:     ord.Type,
		Total:    total,
		Status:   models.TxCompleted,
	})
	if err != nil {
		return models.TradeResult{}, err
	}

	if err := s.applyPosition(ctx, userID, ord, pos); err != nil {
		return models.TradeResult{}, err
	}

	newBalance := balance.Add(total)
	if ord.Type == models.TradeBuy {
		newBalance = balance.Sub(total)
	}
	if err := s.store.UpdateBalance(ctx, userID, newBalance); err != nil {
		return models.TradeResult{}, err
	}

	s.log.Infof("updated balance for user %s from %s to %s", userID, balance, newBalance)
	return models.TradeResult{Transaction: inserted, NewBalance: newBalance}, nil
}

func (s *TradeService) applyPosition(ctx context.Context, userID string, ord models.Order, pos *models.Position) error {
	if ord.Type == models.TradeBuy {
		if pos == nil {
			_, err := s.store.UpsertPosition(ctx, models.Position{
				UserID:   userID,
				Symbol:   ord.Symbol,
				Quantity: ord.Quantity,
				AvgPrice: ord.Price,
			})
			return err
		}

		// Weighted-average cost basis, recomputed on buys only.
		newQty := pos.Quantity + ord.Quantity
		held := pos.AvgPrice.Mul(decimal.NewFromInt(pos.Quantity))
		bought := ord.Price.Mul(decimal.NewFromInt(ord.Quantity))
		newAvg := held.Add(bought).Div(decimal.NewFromInt(newQty))

		_, err := s.store.UpsertPosition(ctx, models.Position{
			ID:       pos.ID,
			UserID:   userID,
			Symbol:   ord.Symbol,
			Quantity: newQty,
			AvgPrice: newAvg,
		})
		return err
	}

	newQty := pos.Quantity - ord.Quantity
	if newQty == 0 {
		s.log.Infof("removing %s from user %s's portfolio (all shares sold)", ord.Symbol, userID)
		return s.store.DeletePosition(ctx, pos.ID)
	}
	_, err := s.store.UpsertPosition(ctx, models.Position{
		ID:       pos.ID,
		UserID:   userID,
		Symbol:   ord.Symbol,
		Quantity: newQty,
		AvgPrice: pos.AvgPrice,
	})
	return err
}
