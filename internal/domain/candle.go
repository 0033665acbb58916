package domain

import "time"

// Candle represents a single OHLCV bar for a symbol at a given interval.
type Candle struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"`
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// SupportedIntervals defines the candle intervals we store.
var SupportedIntervals = []string{"1h", "1d", "1wk"}

// IsSupportedInterval reports whether bars at this interval are stored.
func IsSupportedInterval(interval string) bool {
	for _, s := range SupportedIntervals {
		if s == interval {
			return true
		}
	}
	return false
}

// DefaultWatchlist lists the symbols analyzed when no watchlist is configured.
// Yahoo Finance tickers: equities plus -USD crypto pairs.
var DefaultWatchlist = []string{
	"AAPL", "MSFT", "NVDA", "TSLA", "AMZN",
	"GOOGL", "META", "BTC-USD", "ETH-USD",
}
