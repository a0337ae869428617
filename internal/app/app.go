package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/skyhigh-allstar/tryouts-api/internal/config"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/repository/postgres"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/storage"
	"github.com/skyhigh-allstar/tryouts-api/internal/interfaces/httpapi"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/cache"
	idgen "github.com/skyhigh-allstar/tryouts-api/internal/platform/id"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/logging"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/resilience"
	"github.com/skyhigh-allstar/tryouts-api/internal/usecase"
)

// App owns the HTTP server and the resources it is wired to.
type App struct {
	Server *http.Server
	db     *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger, httpLogger *slog.Logger) (*App, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	regRepo := postgres.NewRegistrationRepository(db)
	guardianRepo := postgres.NewGuardianRepository(db)
	athleteRepo := postgres.NewAthleteRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	files, err := storage.NewClient(storage.ClientConfig{
		Endpoint:      cfg.StorageEndpoint,
		Bucket:        cfg.StorageBucket,
		AccessKey:     cfg.StorageAccessKey,
		SecretKey:     cfg.StorageSecretKey,
		PublicBaseURL: cfg.StoragePublicBaseURL,
		Timeout:       cfg.StorageTimeout,
		MaxRetries:    cfg.StorageMaxRetries,
		Logger:        logger,
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          cfg.StorageCircuitEnabled,
			FailureThreshold: cfg.StorageCircuitFailureCount,
			OpenTimeout:      cfg.StorageCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StorageCircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("build storage client: %w", err)
	}

	statsCacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		statsCacheTTL = -1
	}
	statsCache := cache.NewStore(statsCacheTTL)

	idGen := idgen.NewRandomGenerator()
	registrationSvc := usecase.NewRegistrationService(regRepo, idGen)
	approvalSvc := usecase.NewApprovalService(regRepo, athleteRepo, guardianRepo)
	athleteSvc := usecase.NewAthleteService(regRepo, athleteRepo, guardianRepo, idGen)
	adminSvc := usecase.NewAdminService(regRepo, athleteRepo, guardianRepo, statsRepo, files, statsCache)

	handler := httpapi.NewHandler(registrationSvc, approvalSvc, athleteSvc, adminSvc, httpLogger)
	router := httpapi.NewRouter(handler, cfg.AdminToken, httpLogger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		closeQuietly(db, logger)
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{Server: server, db: db}, nil
}

// Close releases resources the server depends on. Call it after the server
// has stopped serving.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

func closeQuietly(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("close database", "error", err)
	}
}
