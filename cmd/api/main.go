package main

import (
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"membership-checkout-bridge/internal/client"
	"membership-checkout-bridge/internal/config"
	"membership-checkout-bridge/internal/repository"
	"membership-checkout-bridge/internal/server"
	"membership-checkout-bridge/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// load .env into os.Environ; absence is fine in prod
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		startupLog := zerolog.New(os.Stderr)
		startupLog.Fatal().Err(err).Msg("failed to parse config")
	}

	logger := newLogger(os.Stdout, cfg.Log, cfg.Environment)

	db, err := client.InitSqliteClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	shopifyClient := client.NewShopifyClient(&cfg.Shopify)
	syncClient := client.NewSyncClient(&cfg.Sync)

	eventLog := repository.NewEventLogRepository(db)

	verifier := service.NewSignatureVerifier(cfg.Stripe.WebhookSecret)
	classifier := service.NewEventClassifier()
	mapper := service.NewLineItemMapper()
	writer := service.NewOrderWriter(shopifyClient, logger)
	syncAdapter := service.NewSubscriptionSyncAdapter(cfg.Sync, syncClient, logger)

	processor := service.NewWebhookProcessor(
		verifier,
		classifier,
		mapper,
		writer,
		syncAdapter,
		stripeClient,
		eventLog,
		cfg.Shopify,
		cfg.Sync,
		logger,
	)
	checkoutService := service.NewCheckoutService(stripeClient, cfg.Stripe, cfg.BaseURL)

	srv := server.NewServer(processor, checkoutService, logger)
	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	logger.Info().Str("addr", serverAddr).Msg("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info().Msg("signal received, shutting down")

	if err := srv.Shutdown(); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server shutdown error")
	}
}

func newLogger(out io.Writer, logCfg config.Log, envCfg config.Environment) zerolog.Logger {
	level, err := zerolog.ParseLevel(logCfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "checkout-bridge").
		Str("environment", envCfg.Name).
		Logger()
	if logCfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}
