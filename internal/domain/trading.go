package domain

import "time"

// TradeAction is the side of an executed paper trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TradeRecord is one immutable entry of the paper-trading log.
// RealizedPnL is set on SELL records only and excludes commission.
type TradeRecord struct {
	Timestamp   time.Time   `json:"timestamp"`
	Symbol      string      `json:"symbol"`
	Action      TradeAction `json:"action"`
	Quantity    float64     `json:"quantity"`
	Price       float64     `json:"price"`
	TotalAmount float64     `json:"total_amount"`
	Commission  float64     `json:"commission"`
	RealizedPnL *float64    `json:"realized_pnl,omitempty"`
}

// Position is a held quantity with its volume-weighted average cost.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
}

// EquityPoint is one sample of the portfolio value over a simulation.
type EquityPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	TotalValue float64   `json:"total_value"`
}

// BacktestResult is the immutable outcome of one backtest run.
type BacktestResult struct {
	Symbol         string        `json:"symbol"`
	InitialCapital float64       `json:"initial_capital"`
	FinalValue     float64       `json:"final_value"`
	ROIPct         float64       `json:"roi_pct"`
	Trades         []TradeRecord `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}
