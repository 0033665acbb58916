package job

import (
	"context"
	"log"
	"time"

	"paper-tiger/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SignalPoller periodically regenerates signals for every watchlist symbol
// so the cache and signal history stay warm between API requests.
type SignalPoller struct {
	tracer       trace.Tracer
	signals      SignalRefresher
	watchlist    []string
	pollInterval time.Duration
}

type SignalRefresher interface {
	GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error)
}

func NewSignalPoller(tracer trace.Tracer, signals SignalRefresher, watchlist []string, pollIntervalSecs int) *SignalPoller {
	return &SignalPoller{
		tracer:       tracer,
		signals:      signals,
		watchlist:    watchlist,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start launches the polling goroutine. Blocks until ctx is cancelled.
func (p *SignalPoller) Start(ctx context.Context) {
	log.Println("Signal poller starting...")

	go p.pollLoop(ctx)

	<-ctx.Done()
	log.Println("Signal poller stopped")
}

func (p *SignalPoller) pollLoop(ctx context.Context) {
	// Run immediately on start
	p.sweep(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *SignalPoller) sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "job.signal-sweep")
	defer span.End()

	for _, symbol := range p.watchlist {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.signals.GenerateSignal(ctx, symbol); err != nil {
			log.Printf("signal refresh error for %s: %v", symbol, err)
		}
	}
}
