package handlers

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"investing101/internal/models"
)

// Wire formats below reproduce the numbered-key JSON the frontend consumes
// ("Global Quote", "05. price", "Time Series (Daily)", ...) byte for byte.
// Internal code uses the clean structs; only this file speaks the legacy
// shape.

func price2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// round4 trims a derived value to four decimals without padding zeros.
func round4(v float64) string {
	return strconv.FormatFloat(math.Round(v*10000)/10000, 'f', -1, 64)
}

func encodeQuote(q models.Quote) gin.H {
	return gin.H{
		"Global Quote": gin.H{
			"01. symbol":             q.Symbol,
			"02. open":               price2(q.Open),
			"03. high":               price2(q.High),
			"04. low":                price2(q.Low),
			"05. price":              price2(q.Price),
			"06. volume":             strconv.FormatInt(q.Volume, 10),
			"07. latest trading day": q.LatestTradingDay,
			"08. previous close":     price2(q.PrevClose),
			"09. change":             round4(q.Change),
			"10. change percent":     round4(q.ChangePercent) + "%",
		},
	}
}

func encodeMatches(matches []models.Match) gin.H {
	best := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		best = append(best, gin.H{
			"1. symbol":      m.Symbol,
			"2. name":        m.Name,
			"3. type":        m.Type,
			"4. region":      m.Region,
			"5. marketOpen":  m.MarketOpen,
			"6. marketClose": m.MarketClose,
			"7. timezone":    m.Timezone,
			"8. currency":    m.Currency,
			"9. matchScore":  m.MatchScore,
		})
	}
	return gin.H{"bestMatches": best}
}

func encodeDailySeries(d models.DailySeries) gin.H {
	series := make(map[string]gin.H, len(d.Series))
	for date, bar := range d.Series {
		series[date] = gin.H{
			"1. open":   price2(bar.Open),
			"2. high":   price2(bar.High),
			"3. low":    price2(bar.Low),
			"4. close":  price2(bar.Close),
			"5. volume": fmt.Sprintf("%d", bar.Volume),
		}
	}
	return gin.H{
		"Meta Data": gin.H{
			"1. Information":    d.Meta.Information,
			"2. Symbol":         d.Meta.Symbol,
			"3. Last Refreshed": d.Meta.LastRefreshed,
			"4. Output Size":    d.Meta.OutputSize,
			"5. Time Zone":      d.Meta.TimeZone,
		},
		"Time Series (Daily)": series,
	}
}
