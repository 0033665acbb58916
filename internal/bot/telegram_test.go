package bot

import (
	"strings"
	"testing"
	"time"

	"paper-tiger/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil, nil, nil, nil)
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice("AAPL", 231.4); got != "AAPL: $231.40" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestFormatSignal(t *testing.T) {
	s := &domain.Signal{
		Symbol:     "AAPL",
		Decision:   domain.DecisionBuy,
		Score:      62.5,
		Confidence: 58,
		Price:      231.4,
		Reasons:    []string{"MACD bullish", "Uptrend"},
		Sentiment:  &domain.SentimentInput{Label: "positive", NewsCount: 4},
	}

	msg := FormatSignal(s)
	for _, want := range []string{"AAPL: BUY", "Score: 62.5", "$231.40", "positive (4 articles)", "MACD bullish; Uptrend"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatSignalTechnicalOnly(t *testing.T) {
	s := &domain.Signal{Symbol: "MSFT", Decision: domain.DecisionHold, Score: 50, Confidence: 50, Price: 100}
	msg := FormatSignal(s)
	if strings.Contains(msg, "News:") || strings.Contains(msg, "Reasons:") {
		t.Fatalf("unexpected optional sections:\n%s", msg)
	}
}

func TestFormatBacktest(t *testing.T) {
	pnl := 50.0
	r := &domain.BacktestResult{
		Symbol:         "BTC-USD",
		InitialCapital: 10000,
		FinalValue:     10500,
		ROIPct:         5,
		Trades: []domain.TradeRecord{
			{Timestamp: time.Now(), Symbol: "BTC-USD", Action: domain.ActionBuy},
			{Timestamp: time.Now(), Symbol: "BTC-USD", Action: domain.ActionSell, RealizedPnL: &pnl},
		},
	}

	msg := FormatBacktest(r)
	for _, want := range []string{"BTC-USD backtest", "Initial: $10000.00", "ROI: 5.00%", "Trades: 2"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
