package service

import (
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"investing101/internal/models"
)

// Base prices for the synthetic walk; unrecognized tickers get the default.
var basePrices = map[string]float64{
	"AAPL":  175.0,
	"MSFT":  410.0,
	"GOOGL": 175.0,
	"AMZN":  180.0,
	"TSLA":  215.0,
	"META":  485.0,
	"NVDA":  925.0,
	"JPM":   195.0,
}

const defaultBasePrice = 100.0

var knownStocks = []models.Match{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corporation"},
	{Symbol: "GOOGL", Name: "Alphabet Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co."},
}

func basePriceFor(symbol string) float64 {
	if p, ok := basePrices[strings.ToUpper(symbol)]; ok {
		return p
	}
	return defaultBasePrice
}

// symbolSeed makes the walk reproducible: the same symbol always hashes to
// the same generator seed.
func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(symbol)))
	return int64(h.Sum64())
}

// syntheticSeries generates 30 backward-dated days ending yesterday. Each
// day opens at the prior close perturbed within ±2%, ranges ±1.5% intraday
// and closes uniformly inside [low, high].
func (s *QuoteService) syntheticSeries(symbol string) models.DailySeries {
	symbol = strings.ToUpper(symbol)
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))
	now := time.Now()

	series := make(map[string]models.Bar, 30)
	dates := make([]string, 0, 30)
	price := basePriceFor(symbol)
	for i := 30; i > 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")

		drift := -0.02 + rng.Float64()*0.04
		open := price * (1 + drift)
		high := open * (1 + rng.Float64()*0.015)
		low := open * (1 - rng.Float64()*0.015)
		closing := low + rng.Float64()*(high-low)
		volume := int64(1000000 + rng.Float64()*9000000)

		price = closing
		series[date] = models.Bar{Open: open, High: high, Low: low, Close: closing, Volume: volume}
		dates = append(dates, date)
	}

	return models.DailySeries{
		Meta: models.SeriesMeta{
			Information:   "Daily Prices (open, high, low, close) and Volumes",
			Symbol:        symbol,
			LastRefreshed: now.Format("2006-01-02"),
			OutputSize:    "Compact",
			TimeZone:      "US/Eastern",
		},
		Dates:  dates,
		Series: series,
	}
}

// syntheticQuote derives a snapshot from the tail of the synthetic series so
// quote and chart fallbacks agree with each other.
func (s *QuoteService) syntheticQuote(symbol string) models.Quote {
	d := s.syntheticSeries(symbol)
	last := d.Series[d.Dates[len(d.Dates)-1]]
	prev := d.Series[d.Dates[len(d.Dates)-2]]

	return finishQuote(models.Quote{
		Symbol:           strings.ToUpper(symbol),
		Open:             last.Open,
		High:             last.High,
		Low:              last.Low,
		Price:            last.Close,
		Volume:           last.Volume,
		LatestTradingDay: d.Dates[len(d.Dates)-1],
		PrevClose:        prev.Close,
	})
}

func (s *QuoteService) syntheticMatches(keywords string) []models.Match {
	keywords = strings.ToUpper(keywords)
	res := []models.Match{}
	for _, m := range knownStocks {
		if keywords != "" &&
			!strings.Contains(m.Symbol, keywords) &&
			!strings.Contains(strings.ToUpper(m.Name), keywords) {
			continue
		}
		m.Type = "Equity"
		m.Region = "United States"
		m.MarketOpen = "09:30"
		m.MarketClose = "16:00"
		m.Timezone = "UTC-04"
		m.Currency = "USD"
		m.MatchScore = "1.0000"
		res = append(res, m)
	}
	return res
}
