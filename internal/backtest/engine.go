package backtest

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"paper-tiger/internal/domain"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/paper"
	"paper-tiger/internal/technical"
)

// State tracks the lifecycle of one engine run.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// defaultSliceBars caps the trailing window handed to the analyzer per
// bar. 300 bars comfortably covers the longest indicator (SMA 200).
const defaultSliceBars = 300

var ErrNotEnoughData = errors.New("backtest: series shorter than the warm-up window")

// Engine replays a candle series bar by bar against the technical
// strategy and a paper ledger. One engine runs one backtest; construct a
// fresh one per run.
type Engine struct {
	analyzer *technical.Analyzer
	fuser    *fusion.Engine
	sliceCap int

	mu    sync.Mutex
	state State
}

// NewEngine builds an engine. sliceCap bounds the trailing candle slice
// per simulated bar; zero or negative means the 300-bar default.
func NewEngine(analyzer *technical.Analyzer, fuser *fusion.Engine, sliceCap int) *Engine {
	if sliceCap <= 0 {
		sliceCap = defaultSliceBars
	}
	return &Engine{analyzer: analyzer, fuser: fuser, sliceCap: sliceCap, state: StateNotStarted}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run replays the series with windowSize warm-up bars and the given
// starting cash. Each bar past the warm-up gets a snapshot of the
// trailing slice, a technical-only decision executed at that bar's
// close, and an equity sample. The confidence handed to the ledger is
// the technical score itself and the ledger's buy confidence gate is
// disabled, so the decision alone drives trades. Runs are deterministic
// for identical inputs.
func (e *Engine) Run(symbol string, candles []domain.Candle, windowSize int, initialCapital float64) (*domain.BacktestResult, error) {
	if windowSize <= 0 {
		windowSize = 100
	}
	if len(candles) < windowSize {
		e.setState(StateFailed)
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrNotEnoughData, len(candles), windowSize)
	}
	e.setState(StateRunning)

	trader := paper.NewTrader(initialCapital, paper.Config{MinBuyConfidence: 0})
	curve := make([]domain.EquityPoint, 0, len(candles)-windowSize)

	for i := windowSize; i < len(candles); i++ {
		start := i - e.sliceCap
		if start < 0 {
			start = 0
		}
		slice := candles[start : i+1]
		bar := candles[i]

		snap, err := e.analyzer.Analyze(symbol, slice)
		if err != nil {
			e.setState(StateFailed)
			return nil, fmt.Errorf("analyze bar %d: %w", i, err)
		}

		res := e.fuser.Evaluate(snap, nil)
		equity := trader.Equity(map[string]float64{symbol: bar.Close})
		if rec := trader.ApplyDecision(symbol, res.Decision, bar.Close, res.TechScore, equity, bar.OpenTime); rec != nil {
			log.Printf("backtest %s: %s %.4f @ %.2f on %s", symbol, rec.Action, rec.Quantity, rec.Price, rec.Timestamp.Format("2006-01-02"))
		}

		curve = append(curve, domain.EquityPoint{
			Timestamp:  bar.OpenTime,
			TotalValue: trader.Equity(map[string]float64{symbol: bar.Close}),
		})
	}

	final := initialCapital
	if len(curve) > 0 {
		final = curve[len(curve)-1].TotalValue
	}
	result := &domain.BacktestResult{
		Symbol:         symbol,
		InitialCapital: initialCapital,
		FinalValue:     final,
		ROIPct:         (final/initialCapital - 1) * 100,
		Trades:         trader.Trades(),
		EquityCurve:    curve,
	}
	e.setState(StateComplete)
	return result, nil
}
