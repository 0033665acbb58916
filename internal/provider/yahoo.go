package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"paper-tiger/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches OHLCV candles from the Yahoo Finance chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewYahooProvider creates a provider rate limited to 30 requests per
// minute (one token every 2 seconds).
func NewYahooProvider(tracer trace.Tracer) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(30, 2*time.Second),
	}
}

// yahooChart is the chart API response shape. Price fields are nullable
// on holidays and halts.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchCandles fetches up to limit bars for the interval, oldest first.
func (p *YahooProvider) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	_, span := p.tracer.Start(ctx, "yahoo.fetch-candles")
	defer span.End()

	rng, err := rangeForInterval(interval, limit)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		p.baseURL, url.PathEscape(symbol), interval, rng)

	body, err := p.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]domain.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			// Null bars on holidays and halts.
			continue
		}
		candles = append(candles, domain.Candle{
			Symbol:   symbol,
			Interval: interval,
			OpenTime: time.Unix(ts, 0).UTC(),
			Open:     deref(quote.Open, i),
			High:     deref(quote.High, i),
			Low:      deref(quote.Low, i),
			Close:    *quote.Close[i],
			Volume:   deref(quote.Volume, i),
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("yahoo: no usable bars for %s", symbol)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

// FetchCurrentPrice returns the latest daily close for the symbol.
func (p *YahooProvider) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	candles, err := p.FetchCandles(ctx, symbol, "1d", 1)
	if err != nil {
		return 0, err
	}
	return candles[len(candles)-1].Close, nil
}

func (p *YahooProvider) doRequest(ctx context.Context, u string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("yahoo API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

// rangeForInterval picks the smallest Yahoo range string that covers the
// requested number of bars.
func rangeForInterval(interval string, bars int) (string, error) {
	switch interval {
	case "1h":
		// Hourly data is limited to the last 730 days.
		switch {
		case bars <= 24*5:
			return "5d", nil
		case bars <= 24*30:
			return "1mo", nil
		default:
			return "3mo", nil
		}
	case "1d":
		switch {
		case bars <= 22:
			return "1mo", nil
		case bars <= 66:
			return "3mo", nil
		case bars <= 130:
			return "6mo", nil
		case bars <= 260:
			return "1y", nil
		default:
			return "2y", nil
		}
	case "1wk":
		switch {
		case bars <= 26:
			return "6mo", nil
		case bars <= 52:
			return "1y", nil
		default:
			return "2y", nil
		}
	default:
		return "", fmt.Errorf("unsupported interval: %s", interval)
	}
}
