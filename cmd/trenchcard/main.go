package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"trenchcard/internal/app/service"
	"trenchcard/internal/config"
	"trenchcard/internal/infrastructure/card"
	"trenchcard/internal/infrastructure/httpclient"
	chainclient "trenchcard/internal/infrastructure/network/client"
	networkdefinition "trenchcard/internal/infrastructure/network/definition"
	"trenchcard/internal/infrastructure/render"
	"trenchcard/internal/infrastructure/restapi"
	"trenchcard/internal/infrastructure/tokenloader"
	"trenchcard/internal/pkg/logger"
	"trenchcard/internal/pkg/metrics"
	"trenchcard/internal/pkg/utils"
)

func main() {
	config.LoadDotEnv(".env")

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration after environment overrides: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.SetSlogDefault(zapLogger)
	appLogger := logger.NewSlogAdapter(zapLogger)
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	if level, ok := logger.ParseLevel(cfg.Logging.Level); !ok || level > zap.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.MustRegisterMetrics()

	location, err := time.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		zapLogger.Warn("Unknown timezone, using UTC", zap.String("timezone", cfg.Snapshot.Timezone), zap.Error(err))
		location = time.UTC
	}

	network := networkdefinition.NewProvider(cfg.Network.RPCEndpoints, appLogger).Definition()

	endpoints, err := chainclient.NewSolanaEndpoints(network.RPCURLs(), chainclient.EndpointOptions{
		Timeout:             time.Duration(cfg.RpcClient.DefaultTimeoutMs) * time.Millisecond,
		RateLimit:           cfg.RpcClient.RateLimit,
		BurstLimit:          cfg.RpcClient.BurstLimit,
		MaxIdleConnsPerHost: cfg.RpcClient.MaxIdleConnsPerHost,
		TokenProgramID:      network.TokenProgramID,
	}, appLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create chain endpoints", zap.Error(err))
	}
	chainClient := chainclient.NewFallbackChainClient(
		endpoints,
		time.Duration(cfg.Network.FallbackDelayMs)*time.Millisecond,
		cfg.Network.SignatureLimit,
		appLogger,
	)
	zapLogger.Info("Chain data client initialized", zap.Int("endpoints", len(endpoints)))

	registry, err := tokenloader.NewRegistry(cfg.TokenRegistry.File, appLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load token registry", zap.Error(err))
	}

	coinGeckoClient := httpclient.NewCoinGeckoClient(
		cfg.PriceOracle.BaseURL,
		cfg.PriceOracle.ApiKey,
		time.Duration(cfg.PriceOracle.RequestTimeoutMillis)*time.Millisecond,
		appLogger,
	)
	priceService := service.NewTokenPriceService(coinGeckoClient, service.TokenPriceServiceOptions{
		MaxAttempts:    cfg.PriceOracle.MaxAttempts,
		RetryBaseDelay: time.Duration(cfg.PriceOracle.RetryBaseDelayMs) * time.Millisecond,
		CacheTTL:       time.Duration(cfg.PriceOracle.CacheTTLSeconds) * time.Second,
	}, appLogger)

	snapshotService := service.NewSnapshotService(
		chainClient,
		priceService,
		registry,
		network,
		service.ValuationLimits{
			TopAssets:          cfg.Snapshot.TopAssetsLimit,
			RecentTransactions: cfg.Snapshot.RecentTransactionsLimit,
		},
		cfg.PriceOracle.AssetIDs,
		appLogger,
	)

	cardBuilder, err := card.NewBuilder()
	if err != nil {
		zapLogger.Fatal("Failed to initialize card builder", zap.Error(err))
	}
	renderer := render.NewChromeRenderer(render.ChromeOptions{
		ExecutablePath: cfg.Render.BrowserExecutablePath,
		ViewportWidth:  cfg.Render.ViewportWidth,
		ViewportHeight: cfg.Render.ViewportHeight,
		Timeout:        time.Duration(cfg.Render.TimeoutSeconds) * time.Second,
		Quality:        cfg.Render.Quality,
	}, appLogger)

	walletHandler := restapi.NewWalletHandler(snapshotService, cardBuilder, renderer, location, zapLogger)
	router := restapi.SetupRouter(walletHandler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
