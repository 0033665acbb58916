package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paper-tiger/internal/bot"
	"paper-tiger/internal/cache"
	"paper-tiger/internal/config"
	"paper-tiger/internal/db"
	"paper-tiger/internal/fusion"
	"paper-tiger/internal/handler"
	"paper-tiger/internal/job"
	"paper-tiger/internal/provider"
	"paper-tiger/internal/repository"
	"paper-tiger/internal/sentiment"
	"paper-tiger/internal/service"
	"paper-tiger/internal/technical"
	"paper-tiger/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	initPostgresFunc      = db.InitPostgres
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newCandleRepoFunc     = repository.NewCandleRepository
	newSignalRepoFunc     = repository.NewSignalRepository
	newYahooProviderFunc  = func(tracer trace.Tracer) *provider.YahooProvider { return provider.NewYahooProvider(tracer) }
	newNewsProviderFunc   = func(tracer trace.Tracer) *provider.NewsProvider { return provider.NewNewsProvider(tracer) }
	newSignalServiceFunc  = service.NewSignalService
	newBacktestSvcFunc    = service.NewBacktestService
	newSignalPollerFunc   = job.NewSignalPoller
	startPollerFunc       = func(p *job.SignalPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc  = bot.StartTelegramBot
	newHandlerFunc        = handler.New
	newRouterFunc         = gin.Default
	setupSignalNotify     = signal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc   = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFun = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
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

	// Create repositories and run migrations. Without a database the
	// pipeline still works, it just stops persisting.
	var candleStore service.CandleStore
	var signalStore service.SignalStore
	if db.Pool != nil {
		candleRepo := newCandleRepoFunc(db.Pool, tracer)
		signalRepo := newSignalRepoFunc(db.Pool, tracer)
		if err := candleRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run candle migrations: %v", err)
		}
		if err := signalRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run signal migrations: %v", err)
		}
		candleStore = candleRepo
		signalStore = signalRepo
	}

	var redisClient cache.Cmdable
	if cache.Client != nil {
		redisClient = cache.Client
	}

	// Sentiment scorer, LLM-backed when an OpenAI key is configured
	var llm sentiment.BatchLLMScorer
	if oa := sentiment.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel); oa != nil {
		llm = oa
		log.Println("OpenAI sentiment scoring enabled")
	}
	scorer := sentiment.NewScorer(llm, cfg.SentimentBatchSize)

	// Analysis pipeline
	analyzer := technical.NewAnalyzer(cfg.Technical())
	fuser := fusion.NewEngine(
		fusion.Weights{News: cfg.NewsWeight, Tech: cfg.TechWeight},
		fusion.Gates{StrongBuy: cfg.StrongBuyGate, Buy: cfg.BuyGate},
		fusion.PolicyGated,
	)

	yahoo := newYahooProviderFunc(tracer)
	news := newNewsProviderFunc(tracer)

	signalService := newSignalServiceFunc(tracer, yahoo, news, scorer, analyzer, fuser, candleStore, signalStore, redisClient)
	backtestService := newBacktestSvcFunc(tracer, yahoo, candleStore, cfg.Technical(), cfg.BacktestSliceCap)

	// Start signal poller (background goroutine, stopped by ctx cancel)
	poller := newSignalPollerFunc(tracer, signalService, cfg.Watchlist, cfg.SignalPollSecs)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(signalService, backtestService, yahoo, cfg.Watchlist)

	// Create handlers and routes
	h := newHandlerFunc(tracer, signalService, backtestService, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("paper-tiger"))

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFun(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
