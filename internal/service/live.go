package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"investing101/internal/models"
)

const defaultQuoteBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher pulls live data from the Yahoo Finance chart and search
// endpoints. Every call carries a fixed timeout since the upstream imposes
// none of its own.
type YahooFetcher struct {
	baseURL string
	client  *http.Client
}

func NewYahooFetcher(baseURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = defaultQuoteBaseURL
	}
	return &YahooFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

func (f *YahooFetcher) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "investing101/1.0")
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (f *YahooFetcher) chart(ctx context.Context, symbol, period string) (*chartResponse, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		f.baseURL, url.PathEscape(symbol), url.QueryEscape(period))
	var cr chartResponse
	if err := f.getJSON(ctx, u, &cr); err != nil {
		return nil, err
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("upstream error %s: %s", cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	return &cr, nil
}

// at tolerates ragged or null-padded upstream arrays.
func at(a []*float64, i int) float64 {
	if i < len(a) && a[i] != nil {
		return *a[i]
	}
	return 0
}

func (f *YahooFetcher) Quote(ctx context.Context, symbol, period string) (models.Quote, error) {
	cr, err := f.chart(ctx, symbol, period)
	if err != nil {
		return models.Quote{}, err
	}
	res := cr.Chart.Result[0]
	bars := res.Indicators.Quote[0]

	// Last index with a usable close.
	last := -1
	for i := len(bars.Close) - 1; i >= 0; i-- {
		if bars.Close[i] != nil {
			last = i
			break
		}
	}
	if last < 0 || last >= len(res.Timestamp) {
		return models.Quote{}, fmt.Errorf("empty series for %s", symbol)
	}

	prevClose := res.Meta.ChartPreviousClose
	for i := last - 1; i >= 0; i-- {
		if bars.Close[i] != nil {
			prevClose = *bars.Close[i]
			break
		}
	}

	var volume int64
	if last < len(bars.Volume) && bars.Volume[last] != nil {
		volume = *bars.Volume[last]
	}

	return models.Quote{
		Symbol:           strings.ToUpper(symbol),
		Open:             at(bars.Open, last),
		High:             at(bars.High, last),
		Low:              at(bars.Low, last),
		Price:            *bars.Close[last],
		Volume:           volume,
		LatestTradingDay: time.Unix(res.Timestamp[last], 0).UTC().Format("2006-01-02"),
		PrevClose:        prevClose,
	}, nil
}

func (f *YahooFetcher) Daily(ctx context.Context, symbol, period string) (models.DailySeries, error) {
	cr, err := f.chart(ctx, symbol, period)
	if err != nil {
		return models.DailySeries{}, err
	}
	res := cr.Chart.Result[0]
	bars := res.Indicators.Quote[0]

	series := make(map[string]models.Bar, len(res.Timestamp))
	dates := make([]string, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(bars.Close) || bars.Close[i] == nil {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format("2006-01-02")
		var volume int64
		if i < len(bars.Volume) && bars.Volume[i] != nil {
			volume = *bars.Volume[i]
		}
		series[date] = models.Bar{
			Open:   at(bars.Open, i),
			High:   at(bars.High, i),
			Low:    at(bars.Low, i),
			Close:  *bars.Close[i],
			Volume: volume,
		}
		dates = append(dates, date)
	}
	if len(dates) == 0 {
		return models.DailySeries{}, fmt.Errorf("empty series for %s", symbol)
	}

	return models.DailySeries{
		Meta: models.SeriesMeta{
			Information:   "Daily Prices (open, high, low, close) and Volumes",
			Symbol:        strings.ToUpper(symbol),
			LastRefreshed: dates[len(dates)-1],
			OutputSize:    "Compact",
			TimeZone:      "US/Eastern",
		},
		Dates:  dates,
		Series: series,
	}, nil
}

func (f *YahooFetcher) Search(ctx context.Context, keywords string) ([]models.Match, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=10", f.baseURL, url.QueryEscape(keywords))
	var sr searchResponse
	if err := f.getJSON(ctx, u, &sr); err != nil {
		return nil, err
	}

	res := []models.Match{}
	for _, q := range sr.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		res = append(res, models.Match{
			Symbol:      strings.ToUpper(q.Symbol),
			Name:        name,
			Type:        "Equity",
			Region:      "United States",
			MarketOpen:  "09:30",
			MarketClose: "16:00",
			Timezone:    "UTC-04",
			Currency:    "USD",
			MatchScore:  "1.0000",
		})
	}
	return res, nil
}
