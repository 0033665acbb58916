package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"paper-tiger/internal/cache"
	"paper-tiger/internal/config"
	"paper-tiger/internal/db"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/provider"
	"paper-tiger/internal/repository"
	"paper-tiger/internal/sentiment"
	"paper-tiger/internal/service"
	"paper-tiger/internal/technical"
	"paper-tiger/internal/tui"
	"paper-tiger/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Signal pipeline shared by every SSH session
	var candleStore service.CandleStore
	var signalStore service.SignalStore
	if db.Pool != nil {
		candleStore = repository.NewCandleRepository(db.Pool, tracer)
		signalStore = repository.NewSignalRepository(db.Pool, tracer)
	}

	var redisClient cache.Cmdable
	if cache.Client != nil {
		redisClient = cache.Client
	}

	var llm sentiment.BatchLLMScorer
	if oa := sentiment.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel); oa != nil {
		llm = oa
	}
	scorer := sentiment.NewScorer(llm, cfg.SentimentBatchSize)

	analyzer := technical.NewAnalyzer(cfg.Technical())
	fuser := fusion.NewEngine(
		fusion.Weights{News: cfg.NewsWeight, Tech: cfg.TechWeight},
		fusion.Gates{StrongBuy: cfg.StrongBuyGate, Buy: cfg.BuyGate},
		fusion.PolicyGated,
	)

	yahoo := provider.NewYahooProvider(tracer)
	news := provider.NewNewsProvider(tracer)
	signalService := service.NewSignalService(tracer, yahoo, news, scorer, analyzer, fuser, candleStore, signalStore, redisClient)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			// Read-only dashboard, any key may connect. Log who did.
			log.Printf("SSH session: user=%s fingerprint=%s", ctx.User(), gossh.FingerprintSHA256(key))
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				username := s.User()
				if username == "" {
					username = "guest"
				}

				model := tui.NewAppModel(tui.Services{
					Signals:   signalService,
					Watchlist: cfg.Watchlist,
					Username:  username,
				})
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}
