package service

import (
	"context"
	"fmt"
	"log"

	"paper-tiger/internal/backtest"
	"paper-tiger/internal/domain"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/technical"

	"go.opentelemetry.io/otel/trace"
)

// backtestBars is how much daily history a run loads: the warm-up
// window plus roughly a year of tradeable bars.
const backtestBars = 500

// BacktestService loads history and replays it through a fresh engine
// per run.
type BacktestService struct {
	tracer   trace.Tracer
	provider CandleProvider
	candles  CandleStore
	cfg      technical.Config
	sliceCap int
}

// NewBacktestService builds the service. sliceCap bounds the per-bar
// trailing slice; zero means the engine default.
func NewBacktestService(tracer trace.Tracer, provider CandleProvider, candles CandleStore, cfg technical.Config, sliceCap int) *BacktestService {
	return &BacktestService{tracer: tracer, provider: provider, candles: candles, cfg: cfg, sliceCap: sliceCap}
}

// Run backtests the symbol over the available daily history.
func (s *BacktestService) Run(ctx context.Context, symbol string, windowSize int, initialCapital float64) (*domain.BacktestResult, error) {
	ctx, span := s.tracer.Start(ctx, "backtest-service.run")
	defer span.End()

	if initialCapital <= 0 {
		initialCapital = 10000
	}

	candles, err := s.loadHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}

	engine := backtest.NewEngine(
		technical.NewAnalyzer(s.cfg),
		fusion.NewEngine(fusion.DefaultWeights(), fusion.DefaultGates(), fusion.PolicyUngated),
		s.sliceCap,
	)
	result, err := engine.Run(symbol, candles, windowSize, initialCapital)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", symbol, err)
	}

	log.Printf("backtest %s complete: %d trades, ROI %.2f%%", symbol, len(result.Trades), result.ROIPct)
	return result, nil
}

func (s *BacktestService) loadHistory(ctx context.Context, symbol string) ([]domain.Candle, error) {
	candles, err := s.provider.FetchCandles(ctx, symbol, "1d", backtestBars)
	if err != nil {
		log.Printf("provider fetch for %s: %v", symbol, err)
		if s.candles != nil {
			stored, storeErr := s.candles.GetRecentCandles(ctx, symbol, "1d", backtestBars)
			if storeErr == nil && len(stored) > 0 {
				return stored, nil
			}
		}
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	if s.candles != nil {
		if err := s.candles.UpsertCandles(ctx, candles); err != nil {
			log.Printf("upsert history for %s: %v", symbol, err)
		}
	}
	return candles, nil
}
