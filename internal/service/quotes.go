package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"investing101/internal/models"
)

// fetcher is the live market-data source. The production implementation
// talks to the Yahoo chart API; tests stub it.
type fetcher interface {
	Quote(ctx context.Context, symbol, period string) (models.Quote, error)
	Daily(ctx context.Context, symbol, period string) (models.DailySeries, error)
	Search(ctx context.Context, keywords string) ([]models.Match, error)
}

type admitter interface {
	Allow(key string) bool
}

// Retry ladders: each live operation walks the list until a period yields
// data, then gives up and falls back.
var (
	quotePeriods = []string{"1d", "5d", "1mo"}
	dailyPeriods = []string{"1mo", "3mo", "6mo"}
)

// QuoteService serves market data with availability over accuracy: when the
// upstream is down, empty, or rate limited it answers with synthetic data
// instead of an error. The read methods never fail.
type QuoteService struct {
	fetch   fetcher
	limiter admitter
	log     *logrus.Logger
}

func NewQuoteService(fetch fetcher, limiter admitter, log *logrus.Logger) *QuoteService {
	return &QuoteService{fetch: fetch, limiter: limiter, log: log}
}

func (s *QuoteService) Quote(ctx context.Context, symbol string) models.Quote {
	if !s.limiter.Allow(symbol) {
		s.log.Debugf("quote fetch for %s rate limited, using synthetic data", symbol)
		return s.syntheticQuote(symbol)
	}
	for _, period := range quotePeriods {
		q, err := s.fetch.Quote(ctx, symbol, period)
		if err != nil {
			s.log.Warnf("live quote for %s (period %s) failed: %v", symbol, period, err)
			continue
		}
		return finishQuote(q)
	}
	return s.syntheticQuote(symbol)
}

func (s *QuoteService) DailySeries(ctx context.Context, symbol string) models.DailySeries {
	if !s.limiter.Allow(symbol + "_daily") {
		s.log.Debugf("daily fetch for %s rate limited, using synthetic data", symbol)
		return s.syntheticSeries(symbol)
	}
	for _, period := range dailyPeriods {
		d, err := s.fetch.Daily(ctx, symbol, period)
		if err != nil {
			s.log.Warnf("live daily series for %s (period %s) failed: %v", symbol, period, err)
			continue
		}
		if len(d.Dates) == 0 {
			continue
		}
		return d
	}
	return s.syntheticSeries(symbol)
}

func (s *QuoteService) Search(ctx context.Context, keywords string) []models.Match {
	if !s.limiter.Allow("search_" + keywords) {
		s.log.Debugf("search for %q rate limited, using synthetic data", keywords)
		return s.syntheticMatches(keywords)
	}
	res, err := s.fetch.Search(ctx, keywords)
	if err != nil || len(res) == 0 {
		if err != nil {
			s.log.Warnf("live search for %q failed: %v", keywords, err)
		}
		return s.syntheticMatches(keywords)
	}
	return res
}

// finishQuote computes the derived change fields from the raw snapshot.
func finishQuote(q models.Quote) models.Quote {
	q.Change = q.Price - q.PrevClose
	if q.PrevClose > 0 {
		q.ChangePercent = q.Change / q.PrevClose * 100
	} else {
		q.ChangePercent = 0
	}
	return q
}
