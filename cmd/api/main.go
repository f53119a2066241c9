package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/venuequote/api/internal/catalog"
	"github.com/venuequote/api/internal/handlers"
	"github.com/venuequote/api/internal/platform/config"
	pfirestore "github.com/venuequote/api/internal/platform/firestore"
	"github.com/venuequote/api/internal/platform/i18n"
	"github.com/venuequote/api/internal/platform/idempotency"
	"github.com/venuequote/api/internal/platform/jobs"
	"github.com/venuequote/api/internal/platform/observability"
	"github.com/venuequote/api/internal/quotation"
	"github.com/venuequote/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load(ctx)
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	serviceLogger := observability.EventLogger(logger.Named("services"))

	var firestoreProvider *pfirestore.Provider
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	if cfg.Catalog.Source == config.CatalogSourceFirestore || cfg.Idempotency.Store == config.IdempotencyStoreFirestore {
		firestoreProvider = pfirestore.NewProvider(cfg.Firestore)
	}

	var source services.CatalogProvider
	switch cfg.Catalog.Source {
	case config.CatalogSourceFirestore:
		source, err = catalog.NewFirestoreProvider(firestoreProvider, cfg.Firestore.CatalogCollection)
	default:
		source, err = catalog.NewFileProvider(cfg.Catalog.File)
	}
	if err != nil {
		logger.Fatal("failed to initialise catalog source", zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}

	catalogCache, err := services.NewCachedCatalog(services.CachedCatalogDeps{
		Source: source,
		TTL:    cfg.Catalog.CacheTTL,
		Logger: serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog cache", zap.Error(err))
	}
	if _, err := catalogCache.Snapshot(ctx); err != nil {
		// Readiness stays red until the catalog loads; the server still starts.
		logger.Warn("initial catalog load failed", zap.Error(err))
	}

	bundle, err := i18n.Load(cfg.Locale.Dir, cfg.Locale.Default, cfg.Locale.Supported)
	if err != nil {
		logger.Fatal("failed to load translations", zap.String("dir", cfg.Locale.Dir), zap.Error(err))
	}

	quoteService, err := services.NewQuoteService(services.QuoteServiceDeps{
		Catalog: catalogCache,
		Logger:  serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise quote service", zap.Error(err))
	}
	catalogService, err := services.NewCatalogService(catalogCache)
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	builder, err := quotation.NewBuilder(quotation.BuilderDeps{
		Translator: bundle,
		IssuerName: cfg.Quotation.IssuerName,
		Validity:   cfg.Quotation.Validity,
	})
	if err != nil {
		logger.Fatal("failed to initialise quotation builder", zap.Error(err))
	}

	healthOpts := []handlers.HealthOption{
		handlers.WithHealthBuildInfo(handlers.BuildInfo{
			Version:   cfg.Build.Version,
			CommitSHA: cfg.Build.CommitSHA,
			StartedAt: startedAt,
		}),
		handlers.WithReadinessCheck("catalog", catalogCache, 3*time.Second),
	}

	var publisher services.QuotationPublisher
	if project := strings.TrimSpace(cfg.PubSub.ProjectID); project != "" {
		// The client honours PUBSUB_EMULATOR_HOST on its own.
		pubsubClient, err := pubsub.NewClient(ctx, project)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		topic := pubsubClient.Topic(cfg.PubSub.QuotationTopic)
		defer topic.Stop()

		quotationPublisher, err := jobs.NewPubSubQuotationPublisher(topic)
		if err != nil {
			logger.Fatal("failed to initialise quotation publisher", zap.Error(err))
		}
		publisher = quotationPublisher
		healthOpts = append(healthOpts, handlers.WithReadinessCheck("pubsub", quotationPublisher, 2*time.Second))
	} else {
		logger.Info("quotation event publishing disabled")
	}

	quotationService, err := services.NewQuotationService(services.QuotationServiceDeps{
		Quotes:    quoteService,
		Builder:   builder,
		Publisher: publisher,
		Logger:    serviceLogger,
	})
	if err != nil {
		logger.Fatal("failed to initialise quotation service", zap.Error(err))
	}

	replayLogger := observability.EventLogger(logger.Named("idempotency"))
	var replayStore idempotency.Store
	switch cfg.Idempotency.Store {
	case config.IdempotencyStoreFirestore:
		replayStore, err = idempotency.NewFirestoreStore(firestoreProvider, idempotency.WithCollection(cfg.Idempotency.Collection))
		if err != nil {
			logger.Fatal("failed to initialise idempotency store", zap.Error(err))
		}
	case config.IdempotencyStoreMemory:
		replayStore = idempotency.NewMemoryStore()
	default:
		logger.Info("idempotent quotation replay disabled")
	}
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	if replayStore != nil {
		go idempotency.RunCleanup(cleanupCtx, replayStore, cfg.Idempotency.CleanupInterval, replayLogger)
	}

	quoteHandlers := handlers.NewQuoteHandlers(
		handlers.WithQuotePricer(quoteService),
		handlers.WithQuotationIssuer(quotationService),
		handlers.WithQuoteTranslator(bundle),
		handlers.WithQuoteLocaleResolver(bundle),
		handlers.WithQuoteMiddlewares(handlers.RateLimitMiddleware(cfg.RateLimits.QuotesPerMinute)),
		handlers.WithDocumentMiddlewares(idempotency.Middleware(replayStore,
			idempotency.WithTTL(cfg.Idempotency.TTL),
			idempotency.WithLogger(replayLogger),
		)),
	)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		handlers.LocaleMiddleware(bundle),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(healthOpts...)),
		handlers.WithQuoteRoutes(quoteHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("venue quote api listening",
			zap.String("catalogSource", cfg.Catalog.Source),
			zap.String("idempotencyStore", cfg.Idempotency.Store),
			zap.Strings("locales", bundle.Supported()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func traceProjectID(cfg config.Config) string {
	for _, candidate := range []string{cfg.Firestore.ProjectID, cfg.PubSub.ProjectID, os.Getenv("GOOGLE_CLOUD_PROJECT")} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
