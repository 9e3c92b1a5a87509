package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CoinGecko-based implementation (no API key required for basic endpoints)
type CoinGeckoFeed struct {
	baseURL    string
	httpClient *http.Client
}

// NewCoinGeckoFeed creates a daily price feed backed by the public
// CoinGecko API.
func NewCoinGeckoFeed(baseURL string) PriceFeed {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	return &CoinGeckoFeed{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchDaily returns one close per day in [from, to]. CoinGecko returns
// finer-grained points for short ranges; the last point of each UTC day
// is kept as that day's close.
func (f *CoinGeckoFeed) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]DailyPrice, error) {
	id := mapSymbolToCoinGeckoID(symbol)
	if id == "" {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		f.baseURL, id, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko status %d", resp.StatusCode)
	}

	var payload struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	// Keep the last point per UTC day
	byDay := make(map[string]DailyPrice)
	order := make([]string, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		if len(pair) != 2 {
			continue
		}
		ts := time.UnixMilli(int64(pair[0])).UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		key := day.Format("2006-01-02")
		if _, seen := byDay[key]; !seen {
			order = append(order, key)
		}
		byDay[key] = DailyPrice{
			Timestamp: day,
			Close:     decimal.NewFromFloat(pair[1]),
		}
	}

	daily := make([]DailyPrice, 0, len(order))
	for _, key := range order {
		daily = append(daily, byDay[key])
	}
	return daily, nil
}

func mapSymbolToCoinGeckoID(symbol string) string {
	switch strings.ToUpper(symbol) {
	case "BTC":
		return "bitcoin"
	case "ETH":
		return "ethereum"
	case "SOL":
		return "solana"
	case "BNB":
		return "binancecoin"
	case "XRP":
		return "ripple"
	case "ADA":
		return "cardano"
	case "DOGE":
		return "dogecoin"
	case "TON":
		return "the-open-network"
	case "AVAX":
		return "avalanche-2"
	case "LINK":
		return "chainlink"
	case "DOT":
		return "polkadot"
	case "MATIC":
		return "matic-network"
	case "LTC":
		return "litecoin"
	case "UNI":
		return "uniswap"
	case "ATOM":
		return "cosmos"
	default:
		return ""
	}
}
