package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	linkapi "github.com/clarity-cash/claritycash/api/echo"
	plaidagg "github.com/clarity-cash/claritycash/aggregator/plaid"
	"github.com/clarity-cash/claritycash/config"
	"github.com/clarity-cash/claritycash/identity"
	"github.com/clarity-cash/claritycash/identity/firebase"
	identitymem "github.com/clarity-cash/claritycash/identity/memory"
	"github.com/clarity-cash/claritycash/link"
	linkredis "github.com/clarity-cash/claritycash/link/redis"
	"github.com/clarity-cash/claritycash/log"
	"github.com/clarity-cash/claritycash/mongodb"
	"github.com/clarity-cash/claritycash/scoring"
	"github.com/clarity-cash/claritycash/services"
	"github.com/clarity-cash/claritycash/tracing"
)

var (
	appLogger      log.Logger
	httpServer     *http.Server
	tracerProvider *sdktrace.TracerProvider
)

func main() {
	// Environment first: the original deployment keeps Plaid and Firebase
	// secrets in a .env file next to the binary.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "starting claritycash server", map[string]interface{}{
		"http_port":  cfg.HTTPPort,
		"mongo_db":   cfg.MongoDBName,
		"plaid_env":  cfg.PlaidEnv,
		"link_store": cfg.LinkStore,
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracer provider", err)
	}
	tracerProvider = tp

	if initErr := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); initErr != nil {
		appLogger.Fatal(ctx, "failed to initialize MongoDB", initErr)
	}
	db := mongodb.GetDB()

	credentialRepo, err := mongodb.NewCredentialRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize credential repository", err)
	}

	aggregatorClient := plaidagg.NewClient(plaidagg.Config{
		ClientID:   cfg.PlaidClientID,
		Secret:     cfg.PlaidSandboxSecret,
		Env:        cfg.PlaidEnv,
		ClientName: cfg.PlaidClientName,
	})

	provider := buildIdentityProvider(ctx, cfg)
	tokenStore := buildTokenStore(ctx, cfg)

	paycheckFloor, err := decimal.NewFromString(cfg.PaycheckFloor)
	if err != nil {
		appLogger.Warn(ctx, "invalid PAYCHECK_FLOOR, using 500", map[string]interface{}{
			"configured": cfg.PaycheckFloor,
		})
		paycheckFloor = decimal.NewFromInt(500)
	}

	linkTokenService := services.NewLinkTokenService(aggregatorClient, tokenStore)
	exchangeService := services.NewExchangeService(aggregatorClient, credentialRepo)
	spendingService := services.NewSpendingService(
		aggregatorClient,
		credentialRepo,
		scoring.FixedProvider{Value: 50},
		paycheckFloor,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	api := linkapi.NewLinkAPI(linkTokenService, exchangeService, spendingService, provider)
	api.RegisterRoutes(e)

	httpServer = &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(ctx, "HTTP server failed", err)
		}
	}()

	waitForShutdown(ctx)
}

// buildIdentityProvider prefers Firebase and falls back to the in-memory
// provider for sandbox development without credentials.
func buildIdentityProvider(ctx context.Context, cfg *config.ServerConfig) identity.Provider {
	if cfg.FirebaseProjectID != "" {
		provider, err := firebase.NewProvider(ctx, firebase.Config{
			ProjectID:       cfg.FirebaseProjectID,
			APIKey:          cfg.FirebaseAPIKey,
			CredentialsFile: cfg.FirebaseCredentialsFile,
		})
		if err != nil {
			appLogger.Fatal(ctx, "failed to initialize firebase identity provider", err)
		}
		return provider
	}

	appLogger.Warn(ctx, "FIREBASE_PROJECT_ID not set, using in-memory identity provider (sandbox only)")
	return identitymem.NewProvider()
}

func buildTokenStore(ctx context.Context, cfg *config.ServerConfig) link.TokenStore {
	if cfg.LinkStore == "redis" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			appLogger.Fatal(ctx, "failed to connect to redis", err)
		}
		return linkredis.NewTokenStore(client, "claritycash")
	}
	return link.NewMemoryTokenStore()
}

func waitForShutdown(ctx context.Context) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info(ctx, "shutting down", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown failed", err)
	}
	if err := mongodb.Disconnect(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "MongoDB disconnect failed", err)
	}
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "tracer provider shutdown failed", err)
		}
	}
	appLogger.Info(shutdownCtx, "shutdown complete")
}
