package repository

import (
	"context"
	"strings"
	"time"

	"paper-tiger/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const createSignalsTable = `
CREATE TABLE IF NOT EXISTS signals (
    id          BIGSERIAL   PRIMARY KEY,
    symbol      TEXT        NOT NULL,
    decision    TEXT        NOT NULL,
    score       NUMERIC     NOT NULL,
    tech_score  NUMERIC     NOT NULL,
    confidence  NUMERIC     NOT NULL,
    reasons     TEXT        NOT NULL,
    price       NUMERIC     NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_signals_symbol_time
    ON signals (symbol, created_at DESC);
`

// SignalRepository persists fused trade signals.
type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "signal-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSignalsTable)
	return err
}

func (r *SignalRepository) InsertSignal(ctx context.Context, s *domain.Signal) error {
	_, span := r.tracer.Start(ctx, "signal-repo.insert-signal")
	defer span.End()

	return r.pool.QueryRow(ctx,
		`INSERT INTO signals (symbol, decision, score, tech_score, confidence, reasons, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		s.Symbol, string(s.Decision), s.Score, s.TechScore, s.Confidence,
		strings.Join(s.Reasons, "|"), s.Price, s.Timestamp,
	).Scan(&s.ID)
}

// LatestSignals returns the newest signal per symbol, newest first.
func (r *SignalRepository) LatestSignals(ctx context.Context, limit int) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.latest-signals")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (symbol)
		     id, symbol, decision, score, tech_score, confidence, reasons, price, created_at
		 FROM signals
		 ORDER BY symbol, created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var (
			s        domain.Signal
			decision string
			reasons  string
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &decision, &s.Score, &s.TechScore, &s.Confidence, &reasons, &s.Price, &s.Timestamp); err != nil {
			return nil, err
		}
		s.Decision = domain.Decision(decision)
		if reasons != "" {
			s.Reasons = strings.Split(reasons, "|")
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

// SignalHistory returns the signals for one symbol since a timestamp,
// oldest first.
func (r *SignalRepository) SignalHistory(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.signal-history")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, decision, score, tech_score, confidence, reasons, price, created_at
		 FROM signals
		 WHERE symbol = $1 AND created_at >= $2
		 ORDER BY created_at ASC`,
		symbol, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var (
			s        domain.Signal
			decision string
			reasons  string
		)
		if err := rows.Scan(&s.ID, &s.Symbol, &decision, &s.Score, &s.TechScore, &s.Confidence, &reasons, &s.Price, &s.Timestamp); err != nil {
			return nil, err
		}
		s.Decision = domain.Decision(decision)
		if reasons != "" {
			s.Reasons = strings.Split(reasons, "|")
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}
