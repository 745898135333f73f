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

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/maplecart/api/internal/di"
	"github.com/maplecart/api/internal/handlers"
	"github.com/maplecart/api/internal/platform/auth"
	"github.com/maplecart/api/internal/platform/config"
	pfirestore "github.com/maplecart/api/internal/platform/firestore"
	"github.com/maplecart/api/internal/platform/jobs"
	"github.com/maplecart/api/internal/platform/observability"
	platformstorage "github.com/maplecart/api/internal/platform/storage"
	firestoreRepo "github.com/maplecart/api/internal/repositories/firestore"
	"github.com/maplecart/api/internal/services"
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
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	var emailPublisher services.EmailJobPublisher
	var pubsubClient *pubsub.Client
	if cfg.Features.EnableOrderEmails && cfg.Jobs.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.Jobs.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		publisher, err := jobs.NewPubSubEmailPublisher(pubsubClient.Topic(cfg.Jobs.EmailTopic))
		if err != nil {
			logger.Fatal("failed to initialise email publisher", zap.Error(err))
		}
		emailPublisher = publisher
	}
	defer func() {
		if pubsubClient != nil {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}
	}()

	// Media uploads need both a signing key and a bucket; without them the
	// admin media endpoints stay unmounted.
	var uploadSigner services.UploadURLSigner
	var objectCopier services.ObjectCopier
	if cfg.Storage.MediaBucket != "" && cfg.Storage.SignerKeyFile != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()

		copier, err := platformstorage.NewCopier(storageClient)
		if err != nil {
			logger.Fatal("failed to initialise storage copier", zap.Error(err))
		}
		signer, err := platformstorage.NewServiceAccountSignerFromFile(cfg.Storage.SignerKeyFile)
		if err != nil {
			logger.Fatal("failed to parse storage signer key", zap.Error(err))
		}
		signedURLClient, err := platformstorage.NewClient(signer)
		if err != nil {
			logger.Fatal("failed to initialise signed url client", zap.Error(err))
		}
		uploadSigner = signedURLClient
		objectCopier = copier
	}

	container, err := di.NewContainer(ctx, cfg, di.Deps{
		Registry:       registry,
		EmailPublisher: emailPublisher,
		UploadSigner:   uploadSigner,
		ObjectCopier:   objectCopier,
		Logger:         logger.Named("services"),
	})
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier, auth.WithUserGetter(firebaseVerifier))

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(cfg.Firebase.ProjectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(cfg.Firebase.ProjectID),
		handlers.RateLimitMiddleware(cfg.RateLimits.DefaultPerMinute),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthStartedAt(startedAt),
		handlers.WithReadinessProbe("firestore", func(ctx context.Context) error {
			_, err := firestoreProvider.Client(ctx)
			return err
		}),
	)

	svc := container.Services
	publicCatalog := handlers.NewPublicCatalogHandlers(svc.Catalog, svc.Categories)
	checkout := handlers.NewCheckoutHandlers(svc.Orders, svc.Customers)
	adminCatalog := handlers.NewAdminCatalogHandlers(svc.Catalog)
	adminCategories := handlers.NewAdminCategoryHandlers(svc.Categories)
	adminOrders := handlers.NewAdminOrderHandlers(svc.Orders, svc.Customers)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(publicCatalog.Register),
		handlers.WithCheckoutRoutes(checkout.Register),
		handlers.WithAdminMiddlewares(
			authenticator.RequireFirebaseAuth(auth.RoleStaff, auth.RoleAdmin),
			handlers.RateLimitMiddleware(cfg.RateLimits.AdminPerMinute),
		),
		handlers.WithAdminRoutes(func(r chi.Router) {
			adminCatalog.Register(r)
			adminCategories.Register(r)
			adminOrders.Register(r)
			if svc.Media != nil {
				handlers.NewAdminMediaHandlers(svc.Media).Register(r)
			}
		}),
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
		serverLogger.Info("maplecart api listening")
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

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := container.Close(closeCtx); err != nil {
		logger.Warn("container close error", zap.Error(err))
	}
}
