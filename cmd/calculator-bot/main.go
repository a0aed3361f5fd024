package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aescanero/dago-node-calculator/internal/bot"
	"github.com/aescanero/dago-node-calculator/internal/calc"
	"github.com/aescanero/dago-node-calculator/internal/config"
	"github.com/aescanero/dago-node-calculator/internal/eval/template"
	"github.com/aescanero/dago-node-calculator/internal/handler"
	"github.com/aescanero/dago-node-calculator/internal/router"
	"github.com/aescanero/dago-node-calculator/internal/store"
	"github.com/aescanero/dago-node-calculator/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting calculator bot",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize message handler
	routerInstance, err := router.NewRouter(router.DefaultRules(), router.ActionCalculate, logger.Named("router"))
	if err != nil {
		logger.Fatal("failed to initialize router", zap.Error(err))
	}

	evaluator := calc.NewEvaluator(logger.Named("calc"), calc.WithMaxDepth(cfg.MaxNestingDepth))
	h := handler.New(
		evaluator,
		routerInstance,
		template.NewEngine(),
		handler.DefaultTemplates(),
		cfg.MaxMessageLength,
		logger.Named("handler"),
	)
	if err := h.ValidateTemplates(); err != nil {
		logger.Fatal("invalid reply templates", zap.Error(err))
	}
	logger.Info("message handler initialized", zap.Int("max_nesting_depth", evaluator.MaxDepth()))

	healthServer := worker.NewHealthServer(cfg.HealthPort, logger)
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize Redis Streams front end
	var redisClient *redis.Client
	var w *worker.Worker
	if cfg.StreamEnabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		healthServer.AddCheck("redis", worker.RedisCheck(redisClient))

		replies := store.NewRedisStore(redisClient, logger.Named("store"))
		w = worker.NewWorker(cfg, redisClient, h, replies, logger.Named("worker"))
		if err := w.Start(); err != nil {
			logger.Fatal("failed to start worker", zap.Error(err))
		}
	}

	// Initialize Telegram front end
	var botWG sync.WaitGroup
	if cfg.TelegramEnabled() {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("failed to initialize telegram bot", zap.Error(err))
		}
		api.Debug = cfg.TelegramDebug
		logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
		healthServer.AddCheck("telegram", func(ctx context.Context) error {
			_, err := api.GetMe()
			return err
		})

		b := bot.New(api, h, bot.Options{
			Timeout:     cfg.TelegramTimeout,
			Concurrency: cfg.TelegramConcurrency,
		}, logger.Named("bot"))

		botWG.Add(1)
		go func() {
			defer botWG.Done()
			if err := b.Run(ctx); err != nil {
				logger.Error("telegram bot stopped with error", zap.Error(err))
			}
		}()
	}

	// Start health server
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("calculator bot running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping front ends")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		stop()
		botWG.Wait()

		if err := healthServer.Stop(); err != nil {
			logger.Error("failed to stop health server", zap.Error(err))
		}

		if w != nil {
			if err := w.Stop(); err != nil {
				logger.Error("failed to stop worker", zap.Error(err))
			}
		}

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Error("failed to close redis connection", zap.Error(err))
			}
		}
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	case <-stopped:
		logger.Info("calculator bot stopped gracefully")
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
