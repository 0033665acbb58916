package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"paper-tiger/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// SignalProvider is the slice of the signal service the bot needs.
type SignalProvider interface {
	GenerateSignal(ctx context.Context, symbol string) (*domain.Signal, error)
}

// BacktestRunner runs one backtest per call.
type BacktestRunner interface {
	Run(ctx context.Context, symbol string, windowSize int, initialCapital float64) (*domain.BacktestResult, error)
}

// PriceFetcher answers spot price lookups for the /price command.
type PriceFetcher interface {
	FetchCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// StartTelegramBot wires the chat commands and starts long polling in the
// background. It is a no-op when TELEGRAM_BOT_TOKEN is unset.
func StartTelegramBot(signals SignalProvider, backtester BacktestRunner, prices PriceFetcher, watchlist []string) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/signal", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /signal AAPL\nWatchlist: %s", strings.Join(watchlist, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		signal, err := signals.GenerateSignal(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error generating signal for %s: %v", symbol, err))
		}
		return c.Send(FormatSignal(signal))
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /price AAPL\nWatchlist: %s", strings.Join(watchlist, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		price, err := prices.FetchCurrentPrice(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", symbol, err))
		}
		return c.Send(FormatPrice(symbol, price))
	})

	b.Handle("/backtest", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /backtest AAPL\nWatchlist: %s", strings.Join(watchlist, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		result, err := backtester.Run(context.Background(), symbol, 0, 0)
		if err != nil {
			return c.Send(fmt.Sprintf("Error backtesting %s: %v", symbol, err))
		}
		return c.Send(FormatBacktest(result))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

// FormatSignal renders a signal as a plain-text chat message.
func FormatSignal(s *domain.Signal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\nScore: %.1f  Confidence: %.1f\nPrice: $%.2f", s.Symbol, s.Decision, s.Score, s.Confidence, s.Price)
	if s.Sentiment != nil {
		fmt.Fprintf(&sb, "\nNews: %s (%d articles)", s.Sentiment.Label, s.Sentiment.NewsCount)
	}
	if len(s.Reasons) > 0 {
		fmt.Fprintf(&sb, "\nReasons: %s", strings.Join(s.Reasons, "; "))
	}
	return sb.String()
}

// FormatPrice renders a spot price reply.
func FormatPrice(symbol string, price float64) string {
	return fmt.Sprintf("%s: $%.2f", symbol, price)
}

// FormatBacktest renders a backtest summary as a plain-text chat message.
func FormatBacktest(r *domain.BacktestResult) string {
	return fmt.Sprintf(
		"%s backtest\nInitial: $%.2f\nFinal: $%.2f\nROI: %.2f%%\nTrades: %d",
		r.Symbol, r.InitialCapital, r.FinalValue, r.ROIPct, len(r.Trades),
	)
}
