package paper

import (
	"math"
	"testing"
	"time"

	"paper-tiger/internal/domain"
)

var ts = time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

func liveConfig() Config {
	return Config{MinBuyConfidence: DefaultMinBuyConfidence}
}

func TestBuyThenSellRoundTrip(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())

	buy := tr.ApplyDecision("AAPL", domain.DecisionBuy, 100, 80, 10000, ts)
	if buy == nil {
		t.Fatal("expected a buy execution")
	}
	if buy.Action != domain.ActionBuy || buy.Quantity != 10 || buy.TotalAmount != 1000 {
		t.Fatalf("unexpected buy record %+v", buy)
	}
	if buy.Commission != 1 {
		t.Fatalf("buy commission = %v, want 1", buy.Commission)
	}
	if buy.RealizedPnL != nil {
		t.Fatal("buy records carry no realized P&L")
	}
	if got := tr.Cash(); math.Abs(got-8999) > 1e-9 {
		t.Fatalf("cash after buy = %v, want 8999", got)
	}
	pos, ok := tr.Position("AAPL")
	if !ok || pos.AveragePrice != 100 {
		t.Fatalf("position after buy = %+v ok=%v", pos, ok)
	}

	sell := tr.ApplyDecision("AAPL", domain.DecisionSell, 110, 0, 0, ts)
	if sell == nil {
		t.Fatal("expected a sell execution")
	}
	if sell.Quantity != 10 || sell.TotalAmount != 1100 {
		t.Fatalf("unexpected sell record %+v", sell)
	}
	if sell.RealizedPnL == nil || math.Abs(*sell.RealizedPnL-100) > 1e-9 {
		t.Fatalf("realized P&L = %v, want 100 before commission", sell.RealizedPnL)
	}
	if got := tr.Cash(); math.Abs(got-10097.9) > 1e-9 {
		t.Fatalf("cash after round trip = %v, want 10097.9", got)
	}
	if _, ok := tr.Position("AAPL"); ok {
		t.Fatal("sell must liquidate the whole position")
	}
	if got := len(tr.Trades()); got != 2 {
		t.Fatalf("trade log length = %d, want 2", got)
	}
}

func TestBuyAveragesCostBasis(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())
	tr.ApplyDecision("MSFT", domain.DecisionBuy, 100, 90, 10000, ts)
	tr.ApplyDecision("MSFT", domain.DecisionStrongBuy, 200, 90, 10000, ts)

	pos, ok := tr.Position("MSFT")
	if !ok {
		t.Fatal("expected an open position")
	}
	// 10 shares @100 plus 5 shares @200, 2000 cost over 15 shares.
	if math.Abs(pos.Quantity-15) > 1e-9 {
		t.Fatalf("quantity = %v, want 15", pos.Quantity)
	}
	want := 2000.0 / 15
	if math.Abs(pos.AveragePrice-want) > 1e-9 {
		t.Fatalf("average price = %v, want %v", pos.AveragePrice, want)
	}
}

func TestBuyConfidenceGate(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())
	if rec := tr.ApplyDecision("AAPL", domain.DecisionBuy, 100, 70, 10000, ts); rec != nil {
		t.Fatal("confidence at the gate must not trade")
	}
	if rec := tr.ApplyDecision("AAPL", domain.DecisionBuy, 100, 70.1, 10000, ts); rec == nil {
		t.Fatal("confidence above the gate must trade")
	}

	ungated := NewTrader(10000, Config{})
	if rec := ungated.ApplyDecision("AAPL", domain.DecisionBuy, 100, 0, 10000, ts); rec == nil {
		t.Fatal("zero gate disables the confidence check")
	}
}

func TestBuyBelowMinTradeSize(t *testing.T) {
	t.Parallel()

	tr := NewTrader(500, liveConfig())
	if rec := tr.ApplyDecision("AAPL", domain.DecisionBuy, 10, 99, 500, ts); rec != nil {
		t.Fatalf("50 dollar allocation is below the floor, got %+v", rec)
	}
	if tr.Cash() != 500 {
		t.Fatalf("cash mutated on rejected trade: %v", tr.Cash())
	}
}

func TestBuyNeverOverdrawsCash(t *testing.T) {
	t.Parallel()

	tr := NewTrader(150, liveConfig())
	rec := tr.ApplyDecision("AAPL", domain.DecisionStrongBuy, 10, 99, 100000, ts)
	if rec == nil {
		t.Fatal("expected capped buy to execute")
	}
	if math.Abs(rec.TotalAmount+rec.Commission-150) > 1e-9 {
		t.Fatalf("spend+commission = %v, want full 150 cash", rec.TotalAmount+rec.Commission)
	}
	if cash := tr.Cash(); cash < -1e-9 {
		t.Fatalf("cash went negative: %v", cash)
	}
}

func TestSellWithoutPositionIsNoOp(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())
	if rec := tr.ApplyDecision("AAPL", domain.DecisionStrongSell, 100, 0, 0, ts); rec != nil {
		t.Fatalf("expected no-op, got %+v", rec)
	}
	if tr.Cash() != 10000 || len(tr.Trades()) != 0 {
		t.Fatal("no-op sell must not mutate the ledger")
	}
}

func TestHoldAndBadPriceAreNoOps(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())
	if rec := tr.ApplyDecision("AAPL", domain.DecisionHold, 100, 99, 10000, ts); rec != nil {
		t.Fatal("HOLD must not trade")
	}
	if rec := tr.ApplyDecision("AAPL", domain.DecisionBuy, 0, 99, 10000, ts); rec != nil {
		t.Fatal("zero price must not trade")
	}
	if rec := tr.ApplyDecision("AAPL", domain.DecisionBuy, -4, 99, 10000, ts); rec != nil {
		t.Fatal("negative price must not trade")
	}
}

func TestEquityValuation(t *testing.T) {
	t.Parallel()

	tr := NewTrader(10000, liveConfig())
	tr.ApplyDecision("AAPL", domain.DecisionBuy, 100, 90, 10000, ts)

	// 8999 cash + 10 shares at 120.
	if got := tr.Equity(map[string]float64{"AAPL": 120}); math.Abs(got-10199) > 1e-9 {
		t.Fatalf("equity = %v, want 10199", got)
	}
	// Without a quote the entry price stands in.
	if got := tr.Equity(nil); math.Abs(got-9999) > 1e-9 {
		t.Fatalf("equity without quote = %v, want 9999", got)
	}
}
