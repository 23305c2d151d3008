package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/teleport-xyz/teleport-indexer/internal/adapter"
	"github.com/teleport-xyz/teleport-indexer/internal/config"
	"github.com/teleport-xyz/teleport-indexer/internal/coordinator"
	"github.com/teleport-xyz/teleport-indexer/internal/logger"
	"github.com/teleport-xyz/teleport-indexer/internal/messaging"
	"github.com/teleport-xyz/teleport-indexer/internal/metrics"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/ethereum"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/jetstream"
	"github.com/teleport-xyz/teleport-indexer/internal/providers/x"
	"github.com/teleport-xyz/teleport-indexer/internal/reconciler"
	"github.com/teleport-xyz/teleport-indexer/internal/safety"
	"github.com/teleport-xyz/teleport-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Service:         "reconciler",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting reconciler",
		zap.String("chain", string(cfg.Ethereum.ChainID)),
		zap.String("contract", cfg.Ethereum.ContractAddress),
		zap.String("source", cfg.Reconciler.Source))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()

	subscriber, err := newSubscriber(ctx, cfg)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create log subscriber", zap.Error(err))
	}

	var gate safety.Gate
	switch cfg.Safety.Provider {
	case config.SafetyProviderAllowAll:
		logger.WarnCtx(ctx, "Safety gate disabled, all redeemed content is considered safe")
		gate = safety.NewAllowAllGate()
	default:
		gate = safety.NewOpenAIGate(safety.OpenAIConfig{
			APIKey:  cfg.Safety.OpenAIAPIKey,
			Model:   cfg.Safety.OpenAIModel,
			BaseURL: cfg.Safety.OpenAIBaseURL,
		})
	}

	xClient := x.NewClient(x.Config{
		APIURL:         cfg.X.APIURL,
		ConsumerKey:    cfg.X.ConsumerKey,
		ConsumerSecret: cfg.X.ConsumerSecret,
		HTTPTimeout:    cfg.X.HTTPTimeout,
	})

	engine := reconciler.NewEngine(
		reconciler.Config{
			ChainID:         cfg.Ethereum.ChainID,
			StartBlock:      cfg.Ethereum.StartBlock,
			CursorSaveFreq:  cfg.Reconciler.CursorSaveFreq,
			CursorSaveDelay: cfg.Reconciler.CursorSaveDelay,
		},
		subscriber,
		ethereum.NewDecoder(cfg.Ethereum.ContractAddress),
		dataStore,
		gate,
		coordinator.New(dataStore, xClient),
		clockAdapter,
	)
	defer engine.Close()

	var metricsServer *http.Server
	if cfg.Reconciler.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.Reconciler.MetricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(err, zap.String("component", "metrics"))
			}
		}()
		logger.InfoCtx(ctx, "Serving metrics", zap.String("address", cfg.Reconciler.MetricsAddr))
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Run(ctx)
	}()

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
		// The in-flight event completes and the cursor is saved before Run returns
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(err, zap.String("component", "reconciler"))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("component", "reconciler"))
			exitCode = 1
		}
		cancel()
	}

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		shutdownCancel()
	}

	logger.Info("Reconciler stopped")
	if exitCode != 0 {
		engine.Close()
		logger.Flush(2 * time.Second)
		os.Exit(exitCode)
	}
}

// newSubscriber follows the chain directly or the durable stream fed by the log emitter
func newSubscriber(ctx context.Context, cfg *config.ReconcilerConfig) (messaging.Subscriber, error) {
	switch cfg.Reconciler.Source {
	case config.SourceJetStream:
		return jetstream.NewSubscriber(jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			ConsumerName:    cfg.NATS.ConsumerName,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			AckWait:         cfg.NATS.AckWait,
			MaxDeliver:      cfg.NATS.MaxDeliver,
			ChainID:         cfg.Ethereum.ChainID,
			ContractAddress: cfg.Ethereum.ContractAddress,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
	default:
		return ethereum.NewSubscriber(ctx, ethereum.Config{
			WebSocketURL:     cfg.Ethereum.WebSocketURL,
			ChainID:          cfg.Ethereum.ChainID,
			ContractAddress:  cfg.Ethereum.ContractAddress,
			ReconnectWait:    cfg.Ethereum.ReconnectWait,
			MaxReconnectWait: cfg.Ethereum.MaxReconnectWait,
		}, adapter.NewEthClientDialer())
	}
}
