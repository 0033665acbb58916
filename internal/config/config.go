package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"paper-tiger/internal/domain"
	"paper-tiger/internal/technical"
)

type Config struct {
	TelegramBotToken string
	DatabaseURL      string
	RedisURL         string
	ServerPort       int
	SSHPort          int
	SSHHostKeyPath   string
	APIKey           string

	OpenAIAPIKey       string
	OpenAIModel        string
	SentimentBatchSize int

	Watchlist      []string
	SignalPollSecs int

	RSIPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	SMAShort         int
	SMAMid           int
	SMALong          int
	VolumePeriod     int
	BollingerPeriod  int
	BollingerStdDevs float64

	NewsWeight    float64
	TechWeight    float64
	StrongBuyGate float64
	BuyGate       float64

	CommissionRate     float64
	AllocationFraction float64
	MinTradeSize       float64
	MinBuyConfidence   float64
	InitialCapital     float64

	BacktestWindow   int
	BacktestSliceCap int
}

// Technical maps the indicator knobs onto an analyzer config.
func (c *Config) Technical() technical.Config {
	return technical.Config{
		RSIPeriod:        c.RSIPeriod,
		MACDFast:         c.MACDFast,
		MACDSlow:         c.MACDSlow,
		MACDSignal:       c.MACDSignal,
		SMAShort:         c.SMAShort,
		SMAMid:           c.SMAMid,
		SMALong:          c.SMALong,
		VolumePeriod:     c.VolumePeriod,
		BollingerPeriod:  c.BollingerPeriod,
		BollingerStdDevs: c.BollingerStdDevs,
	}
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           os.Getenv("API_KEY"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.APIKey == "" {
		log.Println("Warning: API_KEY not set, mutating routes are open")
	}

	cfg.ServerPort = 8080
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ServerPort = n
		}
	}

	cfg.SSHPort = 2222
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/paper_tiger_ed25519"
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, sentiment stays heuristic")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.SentimentBatchSize = 24
	if v := strings.TrimSpace(os.Getenv("SENTIMENT_BATCH_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SentimentBatchSize = n
		}
	}

	cfg.Watchlist = append([]string(nil), domain.DefaultWatchlist...)
	if v := strings.TrimSpace(os.Getenv("WATCHLIST")); v != "" {
		var symbols []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) > 0 {
			cfg.Watchlist = symbols
		}
	}

	cfg.SignalPollSecs = 300
	if v := strings.TrimSpace(os.Getenv("SIGNAL_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalPollSecs = n
		}
	}

	// Indicator periods. Defaults match the analyzer's.
	cfg.RSIPeriod = envInt("RSI_PERIOD", 14)
	cfg.MACDFast = envInt("MACD_FAST", 12)
	cfg.MACDSlow = envInt("MACD_SLOW", 26)
	cfg.MACDSignal = envInt("MACD_SIGNAL", 9)
	cfg.SMAShort = envInt("SMA_SHORT", 20)
	cfg.SMAMid = envInt("SMA_MID", 50)
	cfg.SMALong = envInt("SMA_LONG", 200)
	cfg.VolumePeriod = envInt("VOLUME_PERIOD", 20)
	cfg.BollingerPeriod = envInt("BOLLINGER_PERIOD", 20)
	cfg.BollingerStdDevs = envFloat("BOLLINGER_STDDEVS", 2)

	cfg.NewsWeight = 0.4
	if v := strings.TrimSpace(os.Getenv("NEWS_WEIGHT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 1 {
			cfg.NewsWeight = n
		}
	}

	cfg.TechWeight = 0.6
	if v := strings.TrimSpace(os.Getenv("TECH_WEIGHT")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 1 {
			cfg.TechWeight = n
		}
	}

	cfg.StrongBuyGate = 65
	if v := strings.TrimSpace(os.Getenv("STRONG_BUY_GATE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 100 {
			cfg.StrongBuyGate = n
		}
	}

	cfg.BuyGate = 55
	if v := strings.TrimSpace(os.Getenv("BUY_GATE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 100 {
			cfg.BuyGate = n
		}
	}

	cfg.CommissionRate = 0.001
	if v := strings.TrimSpace(os.Getenv("COMMISSION_RATE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n < 1 {
			cfg.CommissionRate = n
		}
	}

	cfg.AllocationFraction = 0.10
	if v := strings.TrimSpace(os.Getenv("ALLOCATION_FRACTION")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n <= 1 {
			cfg.AllocationFraction = n
		}
	}

	cfg.MinTradeSize = 100
	if v := strings.TrimSpace(os.Getenv("MIN_TRADE_SIZE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.MinTradeSize = n
		}
	}

	cfg.MinBuyConfidence = 70
	if v := strings.TrimSpace(os.Getenv("MIN_BUY_CONFIDENCE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n <= 100 {
			cfg.MinBuyConfidence = n
		}
	}

	cfg.InitialCapital = 10000
	if v := strings.TrimSpace(os.Getenv("INITIAL_CAPITAL")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.InitialCapital = n
		}
	}

	cfg.BacktestWindow = 100
	if v := strings.TrimSpace(os.Getenv("BACKTEST_WINDOW")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BacktestWindow = n
		}
	}

	cfg.BacktestSliceCap = envInt("BACKTEST_SLICE_CAP", 300)

	return cfg
}

func envInt(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", name, v, def)
	}
	return def
}

func envFloat(name string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %g", name, v, def)
	}
	return def
}
