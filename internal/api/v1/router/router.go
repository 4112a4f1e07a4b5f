package router

import (
	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/converter"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the storage backend, services and handlers into an HTTP
// handler. It also returns the quota service so the caller can run the
// reset sweep, and a cleanup function for the storage backend.
func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, service.QuotaService, func(), error) {
	logger.Info().Msg("Router initialized")
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Select the storage backend. An empty DATABASE_URL selects the
	// in-memory store, used for development and tests.
	var (
		userRepo       repository.UserRepository
		conversionRepo repository.ConversionRepository
		qrRepo         repository.QRCodeRepository
		apiKeyRepo     repository.APIKeyRepository
		cleanup        func()
	)
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory storage")
		store := repository.NewMemoryStore()
		userRepo = store
		conversionRepo = store
		qrRepo = store
		apiKeyRepo = store
		cleanup = func() {}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to connect to Postgres")
			return nil, nil, nil, err
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			logger.Error().Err(err).Msg("Failed to ensure database schema")
			return nil, nil, nil, err
		}
		logger.Info().Msg("Database connection successful")
		userRepo = repository.NewUserRepo(pool)
		conversionRepo = repository.NewConversionRepo(pool)
		qrRepo = repository.NewQRCodeRepo(pool)
		apiKeyRepo = repository.NewAPIKeyRepo(pool)
		cleanup = pool.Close
	}

	// 2. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 3. Initialize services
	quotaSvc := service.NewQuotaService(userRepo, cfg.FreeDailyConversions,
		24*time.Hour, time.Duration(cfg.QuotaResetSweepMin)*time.Minute, logger)
	userSvc := service.NewUserService(userRepo, cfg.FreeDailyConversions, logger)
	conversionSvc := service.NewConversionService(conversionRepo, quotaSvc, converter.NewEngine(),
		cfg.TempDir, cfg.QuotaRefundOnFailure, logger)
	qrSvc := service.NewQRCodeService(qrRepo, logger)
	apiKeySvc := service.NewAPIKeyService(apiKeyRepo, userRepo, logger)
	stripeSvc := service.NewStripeService(cfg, userRepo, logger)

	var google *service.GoogleProvider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google = service.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	} else {
		logger.Warn().Msg("Google OAuth credentials not set, /auth/google disabled")
	}

	// 4. Initialize handlers
	maxUploadBytes := int64(cfg.MaxUploadMB) << 20
	authHandler := handler.NewAuthHandler(userSvc, google, validate, cfg.JWTSecret, cfg.OAuthSuccessURL, logger)
	userHandler := handler.NewUserHandler(userSvc, conversionSvc, qrSvc)
	convertHandler := handler.NewConvertHandler(conversionSvc, userSvc, cfg.TempDir, maxUploadBytes, logger)
	qrHandler := handler.NewQRCodeHandler(qrSvc, validate, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeySvc, userSvc, validate, logger)
	subscriptionHandler := handler.NewSubscriptionHandler(stripeSvc, validate, logger)

	// 5. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	apiKeyMiddleware := middleware.APIKeyMiddleware(apiKeySvc)

	// 6. Create ServeMux router with the API routes under /api
	mux := http.NewServeMux()
	apiMux := http.NewServeMux()
	authHandler.RegisterRoutes(apiMux, authMiddleware)
	userHandler.RegisterRoutes(apiMux, authMiddleware)
	convertHandler.RegisterRoutes(apiMux, authMiddleware, apiKeyMiddleware)
	qrHandler.RegisterRoutes(apiMux, authMiddleware)
	apiKeyHandler.RegisterRoutes(apiMux, authMiddleware)
	subscriptionHandler.RegisterRoutes(apiMux, authMiddleware)
	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	// Browser-facing OAuth flow lives outside the API prefix
	authHandler.RegisterOAuthRoutes(mux)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 7. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	})

	return middleware.LoggerMiddleware(c.Handler(mux)), quotaSvc, cleanup, nil
}
