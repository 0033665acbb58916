package domain

import "time"

// Snapshot is a read-only technical view of a candle series, computed from
// the bars at or before its timestamp. Indicators that lacked history carry
// their documented fallback value and are named in Insufficient.
type Snapshot struct {
	Symbol         string         `json:"symbol"`
	Timestamp      time.Time      `json:"timestamp"`
	Price          PriceBlock     `json:"price"`
	RSI            RSIBlock       `json:"rsi"`
	MACD           MACDBlock      `json:"macd"`
	MovingAverages MABlock        `json:"moving_averages"`
	Volume         VolumeBlock    `json:"volume"`
	Bollinger      BollingerBlock `json:"bollinger_bands"`
	Patterns       PatternBlock   `json:"patterns"`
	Insufficient   []string       `json:"insufficient,omitempty"`
}

type PriceBlock struct {
	Current     float64 `json:"current"`
	Change1DPct float64 `json:"change_1d"`
	Change5DPct float64 `json:"change_5d"`
}

type RSIBlock struct {
	Value float64 `json:"value"`
	// Signal is "oversold" (<30), "overbought" (>70) or "neutral".
	Signal string `json:"signal"`
}

type MACDBlock struct {
	Line      float64 `json:"macd_line"`
	Signal    float64 `json:"signal_line"`
	Histogram float64 `json:"histogram"`
	// Trend is "bullish" when the histogram is positive, else "bearish".
	Trend string `json:"signal"`
}

type MABlock struct {
	SMA20  float64 `json:"sma_20"`
	SMA50  float64 `json:"sma_50"`
	SMA200 float64 `json:"sma_200"`
	// Trend is "bullish", "bearish" or "neutral" from close vs SMA50 vs SMA200.
	Trend string `json:"trend"`
}

type VolumeBlock struct {
	Current float64 `json:"current_volume"`
	Average float64 `json:"avg_volume"`
	Ratio   float64 `json:"volume_ratio"`
	// Trend is "increasing", "decreasing" or "stable".
	Trend string `json:"volume_trend"`
	Spike bool   `json:"volume_spike"`
}

type BollingerBlock struct {
	Upper       float64 `json:"upper_band"`
	Middle      float64 `json:"middle_band"`
	Lower       float64 `json:"lower_band"`
	PositionPct float64 `json:"bb_position"`
	Oversold    bool    `json:"oversold"`
	Overbought  bool    `json:"overbought"`
}

type PatternBlock struct {
	Found bool     `json:"found"`
	Names []string `json:"patterns,omitempty"`
}
