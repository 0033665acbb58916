package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"paper-tiger/internal/cache"
	"paper-tiger/internal/domain"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/sentiment"
	"paper-tiger/internal/technical"

	"go.opentelemetry.io/otel/trace"
)

const (
	signalCacheTTL = 5 * time.Minute
	// Enough daily bars for the 200-period moving average plus headroom.
	analysisBars = 250
	maxNewsItems = 20
)

// CandleProvider is the market data boundary.
type CandleProvider interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
}

// NewsFetcher pulls headlines for the sentiment leg.
type NewsFetcher interface {
	FetchNews(ctx context.Context, symbol string, maxItems int) ([]sentiment.NewsItem, error)
}

type CandleStore interface {
	UpsertCandles(ctx context.Context, candles []domain.Candle) error
	GetRecentCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error)
	GetCandlesInRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]domain.Candle, error)
}

type SignalStore interface {
	InsertSignal(ctx context.Context, s *domain.Signal) error
	LatestSignals(ctx context.Context, limit int) ([]domain.Signal, error)
	SignalHistory(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error)
}

// SignalService runs the full pipeline for one symbol: candles in,
// snapshot, sentiment, fused signal out, cached and persisted.
type SignalService struct {
	tracer   trace.Tracer
	provider CandleProvider
	news     NewsFetcher
	scorer   *sentiment.Scorer
	analyzer *technical.Analyzer
	fuser    *fusion.Engine
	candles  CandleStore
	signals  SignalStore
	redis    cache.Cmdable
}

func NewSignalService(
	tracer trace.Tracer,
	provider CandleProvider,
	news NewsFetcher,
	scorer *sentiment.Scorer,
	analyzer *technical.Analyzer,
	fuser *fusion.Engine,
	candles CandleStore,
	signals SignalStore,
	redisClient cache.Cmdable,
) *SignalService {
	return &SignalService{
		tracer:   tracer,
		provider: provider,
		news:     news,
		scorer:   scorer,
		analyzer: analyzer,
		fuser:    fuser,
		candles:  candles,
		signals:  signals,
		redis:    redisClient,
	}
}

// Analyze fetches fresh candles for the symbol and returns the
// technical snapshot of the latest bar.
func (s *SignalService) Analyze(ctx context.Context, symbol string) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.analyze")
	defer span.End()

	candles, err := s.loadCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(symbol, candles)
}

// GenerateSignal produces the fused signal for the symbol. A fresh
// result is cached for signalCacheTTL, so repeated calls within the
// window are served from Redis.
func (s *SignalService) GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.generate-signal")
	defer span.End()

	var cached domain.Signal
	if found, err := cache.GetJSON(ctx, s.redis, "signal:"+symbol, &cached); err != nil {
		log.Printf("redis cache read error for %s: %v", symbol, err)
	} else if found {
		return &cached, nil
	}

	candles, err := s.loadCandles(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snap, err := s.analyzer.Analyze(symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	sent := s.sentimentFor(ctx, symbol)
	res := s.fuser.Evaluate(snap, sent)

	signal := &domain.Signal{
		Symbol:     symbol,
		Decision:   res.Decision,
		Score:      res.Score,
		TechScore:  res.TechScore,
		Confidence: res.Confidence,
		Reasons:    res.Reasons,
		Sentiment:  sent,
		Price:      snap.Price.Current,
		Timestamp:  snap.Timestamp,
	}

	if s.signals != nil {
		if err := s.signals.InsertSignal(ctx, signal); err != nil {
			log.Printf("persist signal for %s: %v", symbol, err)
		}
	}
	if err := cache.SetJSON(ctx, s.redis, "signal:"+symbol, signal, signalCacheTTL); err != nil {
		log.Printf("redis cache write error for %s: %v", symbol, err)
	}

	return signal, nil
}

// GenerateSignals runs GenerateSignal over the symbols, skipping the
// ones that fail.
func (s *SignalService) GenerateSignals(ctx context.Context, symbols []string) []domain.Signal {
	ctx, span := s.tracer.Start(ctx, "signal-service.generate-signals")
	defer span.End()

	out := make([]domain.Signal, 0, len(symbols))
	for _, symbol := range symbols {
		signal, err := s.GenerateSignal(ctx, symbol)
		if err != nil {
			log.Printf("generate signal for %s: %v", symbol, err)
			continue
		}
		out = append(out, *signal)
	}
	return out
}

// LatestSignals returns the newest stored signal per symbol.
func (s *SignalService) LatestSignals(ctx context.Context, limit int) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.latest-signals")
	defer span.End()

	if s.signals == nil {
		return nil, fmt.Errorf("signal store not configured")
	}
	return s.signals.LatestSignals(ctx, limit)
}

// SignalHistory returns the stored signals for one symbol since a
// timestamp, oldest first.
func (s *SignalService) SignalHistory(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.signal-history")
	defer span.End()

	if s.signals == nil {
		return nil, fmt.Errorf("signal store not configured")
	}
	return s.signals.SignalHistory(ctx, symbol, since)
}

// CandleHistory returns the stored bars for the symbol between from and
// to, oldest first.
func (s *SignalService) CandleHistory(ctx context.Context, symbol, interval string, from, to time.Time) ([]domain.Candle, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.candle-history")
	defer span.End()

	if !domain.IsSupportedInterval(interval) {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if s.candles == nil {
		return nil, fmt.Errorf("candle store not configured")
	}
	return s.candles.GetCandlesInRange(ctx, symbol, interval, from, to)
}

// loadCandles prefers fresh provider data and falls back to stored
// bars when the provider is unavailable.
func (s *SignalService) loadCandles(ctx context.Context, symbol string) ([]domain.Candle, error) {
	candles, err := s.provider.FetchCandles(ctx, symbol, "1d", analysisBars)
	if err != nil {
		log.Printf("provider fetch for %s: %v", symbol, err)
		if s.candles != nil {
			stored, storeErr := s.candles.GetRecentCandles(ctx, symbol, "1d", analysisBars)
			if storeErr == nil && len(stored) > 0 {
				return stored, nil
			}
		}
		return nil, fmt.Errorf("fetch candles for %s: %w", symbol, err)
	}

	if s.candles != nil {
		if err := s.candles.UpsertCandles(ctx, candles); err != nil {
			log.Printf("upsert candles for %s: %v", symbol, err)
		}
	}
	return candles, nil
}

// sentimentFor returns nil when news or scoring is unavailable, which
// drops the signal back to technical-only fusion.
func (s *SignalService) sentimentFor(ctx context.Context, symbol string) *domain.SentimentInput {
	if s.news == nil || s.scorer == nil {
		return nil
	}
	items, err := s.news.FetchNews(ctx, symbol, maxNewsItems)
	if err != nil {
		log.Printf("fetch news for %s: %v", symbol, err)
		return nil
	}
	return s.scorer.ScoreSymbol(ctx, items)
}
