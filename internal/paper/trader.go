package paper

import (
	"sync"
	"time"

	"paper-tiger/internal/domain"
)

// Defaults for the ledger knobs. Zero Config values fall back to these,
// except MinBuyConfidence where zero disables the gate.
const (
	defaultCommissionRate     = 0.001
	defaultAllocationFraction = 0.10
	defaultMinTradeSize       = 100.0
	DefaultMinBuyConfidence   = 70.0
)

// Config tunes one trader.
type Config struct {
	CommissionRate     float64
	AllocationFraction float64
	MinTradeSize       float64
	// MinBuyConfidence gates buys; 0 disables the gate. Use
	// DefaultMinBuyConfidence for the standard live behavior.
	MinBuyConfidence float64
}

func (c Config) withDefaults() Config {
	if c.CommissionRate <= 0 {
		c.CommissionRate = defaultCommissionRate
	}
	if c.AllocationFraction <= 0 {
		c.AllocationFraction = defaultAllocationFraction
	}
	if c.MinTradeSize <= 0 {
		c.MinTradeSize = defaultMinTradeSize
	}
	return c
}

// Trader is an in-memory paper-trading ledger. Positions are long only
// and sells always liquidate the whole position. Safe for concurrent use.
type Trader struct {
	mu        sync.Mutex
	cfg       Config
	cash      float64
	positions map[string]*domain.Position
	trades    []domain.TradeRecord
}

func NewTrader(initialCash float64, cfg Config) *Trader {
	return &Trader{
		cfg:       cfg.withDefaults(),
		cash:      initialCash,
		positions: make(map[string]*domain.Position),
	}
}

// Cash returns the free cash balance.
func (t *Trader) Cash() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cash
}

// Position returns a copy of the open position for symbol, if any.
func (t *Trader) Position(symbol string) (domain.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// Trades returns a copy of the trade log in execution order.
func (t *Trader) Trades() []domain.TradeRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.TradeRecord, len(t.trades))
	copy(out, t.trades)
	return out
}

// Equity values the ledger at the given prices. Positions without a
// quote are valued at their average entry price.
func (t *Trader) Equity(prices map[string]float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.cash
	for sym, p := range t.positions {
		price, ok := prices[sym]
		if !ok {
			price = p.AveragePrice
		}
		total += p.Quantity * price
	}
	return total
}

// ApplyDecision executes at most one trade for the decision at the given
// price. equityBefore sizes buys (allocation fraction of it). Decisions
// that do not lead to a trade, including HOLD, non-positive prices,
// sells with no position, gated or undersized buys, return nil. The
// ledger either mutates completely or not at all.
func (t *Trader) ApplyDecision(symbol string, decision domain.Decision, price, confidence, equityBefore float64, ts time.Time) *domain.TradeRecord {
	if price <= 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case decision.IsSell():
		return t.sell(symbol, price, ts)
	case decision.IsBuy():
		if t.cfg.MinBuyConfidence > 0 && confidence <= t.cfg.MinBuyConfidence {
			return nil
		}
		return t.buy(symbol, price, equityBefore, ts)
	default:
		return nil
	}
}

func (t *Trader) sell(symbol string, price float64, ts time.Time) *domain.TradeRecord {
	pos, ok := t.positions[symbol]
	if !ok || pos.Quantity <= 0 {
		return nil
	}

	proceeds := pos.Quantity * price
	commission := proceeds * t.cfg.CommissionRate
	pnl := proceeds - pos.Quantity*pos.AveragePrice

	t.cash += proceeds - commission
	delete(t.positions, symbol)

	rec := domain.TradeRecord{
		Symbol:      symbol,
		Action:      domain.ActionSell,
		Quantity:    pos.Quantity,
		Price:       price,
		TotalAmount: proceeds,
		Commission:  commission,
		RealizedPnL: &pnl,
		Timestamp:   ts,
	}
	t.trades = append(t.trades, rec)
	return &rec
}

func (t *Trader) buy(symbol string, price, equityBefore float64, ts time.Time) *domain.TradeRecord {
	spend := equityBefore * t.cfg.AllocationFraction
	// Commission comes on top of the spend, so the affordable spend is
	// cash/(1+rate); this keeps cash from going negative.
	if affordable := t.cash / (1 + t.cfg.CommissionRate); spend > affordable {
		spend = affordable
	}
	if spend < t.cfg.MinTradeSize {
		return nil
	}

	qty := spend / price
	commission := spend * t.cfg.CommissionRate
	t.cash -= spend + commission

	if pos, ok := t.positions[symbol]; ok {
		totalCost := pos.Quantity*pos.AveragePrice + spend
		pos.Quantity += qty
		pos.AveragePrice = totalCost / pos.Quantity
	} else {
		t.positions[symbol] = &domain.Position{
			Symbol:       symbol,
			Quantity:     qty,
			AveragePrice: price,
		}
	}

	rec := domain.TradeRecord{
		Symbol:      symbol,
		Action:      domain.ActionBuy,
		Quantity:    qty,
		Price:       price,
		TotalAmount: spend,
		Commission:  commission,
		Timestamp:   ts,
	}
	t.trades = append(t.trades, rec)
	return &rec
}
