package handler

import (
	"context"
	"time"

	"paper-tiger/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SignalGenerator is the signal pipeline surface the HTTP layer needs.
type SignalGenerator interface {
	Analyze(ctx context.Context, symbol string) (*domain.Snapshot, error)
	GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error)
	LatestSignals(ctx context.Context, limit int) ([]domain.Signal, error)
	SignalHistory(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error)
	CandleHistory(ctx context.Context, symbol, interval string, from, to time.Time) ([]domain.Candle, error)
}

// BacktestRunner runs one backtest per call.
type BacktestRunner interface {
	Run(ctx context.Context, symbol string, windowSize int, initialCapital float64) (*domain.BacktestResult, error)
}

type Handler struct {
	tracer     trace.Tracer
	signals    SignalGenerator
	backtester BacktestRunner
	apiKey     string
}

func New(tracer trace.Tracer, signals SignalGenerator, backtester BacktestRunner, apiKey string) *Handler {
	return &Handler{
		tracer:     tracer,
		signals:    signals,
		backtester: backtester,
		apiKey:     apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/analysis/:symbol", h.GetAnalysis)
	r.GET("/api/signals", h.GetSignals)
	r.GET("/api/signals/:symbol", h.GetSignal)
	r.GET("/api/signals/:symbol/history", h.GetSignalHistory)
	r.GET("/api/candles/:symbol", h.GetCandles)
	r.POST("/api/backtest", APIKeyAuth(h.apiKey), h.RunBacktest)
}
