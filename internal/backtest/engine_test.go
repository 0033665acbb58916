package backtest

import (
	"errors"
	"testing"
	"time"

	"paper-tiger/internal/domain"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/technical"
)

func newEngine() *Engine {
	return NewEngine(
		technical.NewAnalyzer(technical.Config{}),
		fusion.NewEngine(fusion.DefaultWeights(), fusion.DefaultGates(), fusion.PolicyUngated),
		0,
	)
}

func candleSeries(closes []float64) []domain.Candle {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			Symbol:   "TEST",
			Interval: "1d",
			OpenTime: start.AddDate(0, 0, i),
			Open:     c,
			High:     c * 1.005,
			Low:      c * 0.995,
			Close:    c,
			Volume:   1e6,
		}
	}
	return out
}

func flatThenRamp(total, flat int) []float64 {
	closes := make([]float64, total)
	for i := range closes {
		if i < flat {
			closes[i] = 100
		} else {
			closes[i] = 100 + float64(i-flat+1)
		}
	}
	return closes
}

func TestRunRejectsShortSeries(t *testing.T) {
	t.Parallel()

	e := newEngine()
	if e.State() != StateNotStarted {
		t.Fatalf("fresh engine state = %s", e.State())
	}
	_, err := e.Run("TEST", candleSeries(flatThenRamp(50, 40)), 100, 10000)
	if !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected ErrNotEnoughData, got %v", err)
	}
	if e.State() != StateFailed {
		t.Fatalf("state after short run = %s, want failed", e.State())
	}
}

func TestRunFlatSeriesHoldsThroughout(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 100
	}

	e := newEngine()
	res, err := e.Run("TEST", candleSeries(closes), 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.State() != StateComplete {
		t.Fatalf("state = %s, want complete", e.State())
	}
	if len(res.Trades) != 0 {
		t.Fatalf("flat market should not trade, got %d trades", len(res.Trades))
	}
	if res.ROIPct != 0 || res.FinalValue != 10000 {
		t.Fatalf("flat market ROI = %v final = %v", res.ROIPct, res.FinalValue)
	}
	if len(res.EquityCurve) != 120 {
		t.Fatalf("equity curve has %d points, want one per simulated bar", len(res.EquityCurve))
	}
}

func TestRunUptrendBuysAndProfits(t *testing.T) {
	t.Parallel()

	candles := candleSeries(flatThenRamp(220, 190))

	e := newEngine()
	res, err := e.Run("TEST", candles, 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buys int
	for _, tr := range res.Trades {
		if tr.Action == domain.ActionBuy {
			buys++
		}
	}
	if buys == 0 {
		t.Fatal("expected at least one buy during the ramp")
	}
	if res.ROIPct <= 0 {
		t.Fatalf("ROI = %v, want positive in a rising market", res.ROIPct)
	}
	if res.FinalValue <= res.InitialCapital {
		t.Fatalf("final value = %v, want above %v", res.FinalValue, res.InitialCapital)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	candles := candleSeries(flatThenRamp(220, 190))

	first, err := newEngine().Run("TEST", candles, 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newEngine().Run("TEST", candles, 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.FinalValue != second.FinalValue || first.ROIPct != second.ROIPct {
		t.Fatalf("runs diverged: %v vs %v", first.FinalValue, second.FinalValue)
	}
	if len(first.Trades) != len(second.Trades) {
		t.Fatalf("trade counts diverged: %d vs %d", len(first.Trades), len(second.Trades))
	}
	for i := range first.Trades {
		if first.Trades[i] != second.Trades[i] {
			// RealizedPnL pointers differ; compare the values they carry.
			a, b := first.Trades[i], second.Trades[i]
			if a.Symbol != b.Symbol || a.Action != b.Action || a.Quantity != b.Quantity || a.Price != b.Price {
				t.Fatalf("trade %d diverged: %+v vs %+v", i, a, b)
			}
		}
	}
}

func TestRunSliceCap(t *testing.T) {
	t.Parallel()

	if e := newEngine(); e.sliceCap != 300 {
		t.Fatalf("default slice cap = %d, want 300", e.sliceCap)
	}

	e := NewEngine(
		technical.NewAnalyzer(technical.Config{}),
		fusion.NewEngine(fusion.DefaultWeights(), fusion.DefaultGates(), fusion.PolicyUngated),
		50,
	)
	res, err := e.Run("TEST", candleSeries(flatThenRamp(220, 190)), 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.State() != StateComplete {
		t.Fatalf("state = %s, want complete", e.State())
	}
	if len(res.EquityCurve) != 120 {
		t.Fatalf("equity curve has %d points, want one per simulated bar", len(res.EquityCurve))
	}
}

func TestRunExactWindowLengthSimulatesNothing(t *testing.T) {
	t.Parallel()

	e := newEngine()
	res, err := e.Run("TEST", candleSeries(flatThenRamp(100, 50)), 100, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.EquityCurve) != 0 || len(res.Trades) != 0 {
		t.Fatal("window-length series leaves nothing to simulate")
	}
	if res.FinalValue != 10000 {
		t.Fatalf("final value = %v, want untouched capital", res.FinalValue)
	}
}
