package config

import (
	"testing"

	"paper-tiger/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "REDIS_URL", "API_KEY",
		"OPENAI_API_KEY", "WATCHLIST", "SIGNAL_POLL_SECS",
		"NEWS_WEIGHT", "TECH_WEIGHT", "MIN_BUY_CONFIDENCE", "BACKTEST_WINDOW",
		"RSI_PERIOD", "MACD_FAST", "MACD_SLOW", "MACD_SIGNAL",
		"SMA_SHORT", "SMA_MID", "SMA_LONG", "VOLUME_PERIOD",
		"BOLLINGER_PERIOD", "BOLLINGER_STDDEVS", "BACKTEST_SLICE_CAP",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.RedisURL != "localhost:6379" {
		t.Fatalf("expected default redis url, got %s", cfg.RedisURL)
	}
	if cfg.ServerPort != 8080 || cfg.SSHPort != 2222 {
		t.Fatalf("unexpected default ports: %d %d", cfg.ServerPort, cfg.SSHPort)
	}
	if cfg.SignalPollSecs != 300 {
		t.Fatalf("expected default poll secs 300, got %d", cfg.SignalPollSecs)
	}
	if cfg.NewsWeight != 0.4 || cfg.TechWeight != 0.6 {
		t.Fatalf("unexpected default weights: %v %v", cfg.NewsWeight, cfg.TechWeight)
	}
	if cfg.StrongBuyGate != 65 || cfg.BuyGate != 55 {
		t.Fatalf("unexpected default gates: %v %v", cfg.StrongBuyGate, cfg.BuyGate)
	}
	if cfg.CommissionRate != 0.001 || cfg.MinBuyConfidence != 70 {
		t.Fatalf("unexpected trading defaults: %v %v", cfg.CommissionRate, cfg.MinBuyConfidence)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %s", cfg.OpenAIModel)
	}
	if len(cfg.Watchlist) != len(domain.DefaultWatchlist) {
		t.Fatalf("expected the default watchlist, got %v", cfg.Watchlist)
	}
	if cfg.RSIPeriod != 14 || cfg.MACDFast != 12 || cfg.MACDSlow != 26 || cfg.MACDSignal != 9 {
		t.Fatalf("unexpected momentum defaults: %+v", cfg)
	}
	if cfg.SMAShort != 20 || cfg.SMAMid != 50 || cfg.SMALong != 200 {
		t.Fatalf("unexpected SMA defaults: %d %d %d", cfg.SMAShort, cfg.SMAMid, cfg.SMALong)
	}
	if cfg.BollingerPeriod != 20 || cfg.BollingerStdDevs != 2 {
		t.Fatalf("unexpected Bollinger defaults: %d %v", cfg.BollingerPeriod, cfg.BollingerStdDevs)
	}
	if cfg.BacktestSliceCap != 300 {
		t.Fatalf("expected default slice cap 300, got %d", cfg.BacktestSliceCap)
	}
}

func TestLoadStrategyKnobs(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSI_PERIOD", "21")
	t.Setenv("MACD_FAST", "8")
	t.Setenv("MACD_SLOW", "21")
	t.Setenv("MACD_SIGNAL", "5")
	t.Setenv("SMA_SHORT", "10")
	t.Setenv("SMA_MID", "30")
	t.Setenv("SMA_LONG", "120")
	t.Setenv("BOLLINGER_PERIOD", "14")
	t.Setenv("BOLLINGER_STDDEVS", "2.5")
	t.Setenv("BACKTEST_SLICE_CAP", "150")

	cfg := Load()
	tc := cfg.Technical()
	if tc.RSIPeriod != 21 || tc.MACDFast != 8 || tc.MACDSlow != 21 || tc.MACDSignal != 5 {
		t.Fatalf("momentum knobs not threaded: %+v", tc)
	}
	if tc.SMAShort != 10 || tc.SMAMid != 30 || tc.SMALong != 120 {
		t.Fatalf("SMA knobs not threaded: %+v", tc)
	}
	if tc.BollingerPeriod != 14 || tc.BollingerStdDevs != 2.5 {
		t.Fatalf("Bollinger knobs not threaded: %+v", tc)
	}
	if cfg.BacktestSliceCap != 150 {
		t.Fatalf("slice cap = %d, want 150", cfg.BacktestSliceCap)
	}

	t.Setenv("RSI_PERIOD", "-3")
	t.Setenv("BOLLINGER_STDDEVS", "junk")
	cfg = Load()
	if cfg.RSIPeriod != 14 || cfg.BollingerStdDevs != 2 {
		t.Fatalf("invalid knobs should fall back to defaults: %d %v", cfg.RSIPeriod, cfg.BollingerStdDevs)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("WATCHLIST", "aapl, msft ,,btc-usd")
	t.Setenv("SIGNAL_POLL_SECS", "120")
	t.Setenv("MIN_BUY_CONFIDENCE", "0")

	cfg := Load()
	if cfg.TelegramBotToken != "token" || cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Watchlist) != 3 || cfg.Watchlist[0] != "AAPL" || cfg.Watchlist[2] != "BTC-USD" {
		t.Fatalf("unexpected watchlist: %v", cfg.Watchlist)
	}
	if cfg.SignalPollSecs != 120 {
		t.Fatalf("expected poll secs 120, got %d", cfg.SignalPollSecs)
	}
	if cfg.MinBuyConfidence != 0 {
		t.Fatalf("MIN_BUY_CONFIDENCE=0 should disable the gate, got %v", cfg.MinBuyConfidence)
	}

	t.Setenv("SIGNAL_POLL_SECS", "bad")
	t.Setenv("NEWS_WEIGHT", "1.5")
	cfg = Load()
	if cfg.SignalPollSecs != 300 {
		t.Fatalf("invalid poll secs should fall back to default, got %d", cfg.SignalPollSecs)
	}
	if cfg.NewsWeight != 0.4 {
		t.Fatalf("out-of-range news weight should fall back, got %v", cfg.NewsWeight)
	}
}
