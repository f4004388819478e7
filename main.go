package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"oneclick-go/config"
	"oneclick-go/database"
	"oneclick-go/handlers"
	"oneclick-go/kyc"
	"oneclick-go/metrics"
	"oneclick-go/middleware"
	"oneclick-go/storage"
	"oneclick-go/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug("no .env file found")
	}

	if err := config.ValidateConfig(cfg, log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	cipher, err := utils.NewFieldCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("failed to initialize encryption", zap.Error(err))
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		log.Fatal("failed to initialize JWT", zap.Error(err))
	}

	gormLevel := logger.Info
	if cfg.IsProduction() {
		gormLevel = logger.Warn
	}
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, gormLevel)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := mux.NewRouter()

	var objects kyc.ObjectStore
	switch cfg.ObjectStore {
	case config.ObjectStoreS3:
		s3Store, err := storage.NewS3StoreFromEnv(ctx, cfg.AWSRegion, cfg.AWSEndpointURL, cfg.S3Bucket)
		if err != nil {
			log.Fatal("failed to initialize object store", zap.Error(err))
		}
		objects = s3Store
	default:
		mem := storage.NewMemoryStore(strings.TrimSuffix(cfg.MemoryStoreURL, "/"))
		r.PathPrefix("/files/").Handler(http.StripPrefix("/files/", mem)).Methods("GET", "HEAD")
		objects = mem
		log.Warn("using in-memory object store; documents are lost on restart")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	profiles := database.NewProfileRepository(db)
	svc := kyc.NewService(
		database.NewSubmissionRepository(db),
		profiles,
		objects,
		cipher,
		log.Named("kyc"),
		kyc.WithSignedURLTTL(cfg.SignedURLTTL),
		kyc.WithMaxUploadBytes(cfg.MaxUploadBytes),
		kyc.WithMetrics(m),
	)

	h := handlers.NewHandlers(svc, profiles, database.NewAuditRepository(db), cfg, log.Named("http"))
	auth := middleware.NewAuthenticator(tokens, utils.NewRolePolicy(cfg.SuperAdminEmails), log.Named("auth"))
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	r.Use(middleware.RequestLogger(log.Named("access")))
	r.Use(limiter.RateLimit)

	// Public routes
	r.HandleFunc("/api/health", h.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods("GET")

	// Protected routes
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(auth.JWTAuth, h.EnsureAgentProfile)

	if !cfg.IsProduction() {
		protected.HandleFunc("/debug/token", h.DebugToken).Methods("GET")
	}

	protected.HandleFunc("/agent/profile", h.GetProfile).Methods("GET")
	protected.HandleFunc("/agent/kyc/submit", h.SubmitKYC).Methods("POST")
	protected.HandleFunc("/agent/kyc/status", h.GetKYCStatus).Methods("GET")

	// Admin routes
	adminRoutes := protected.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(auth.AdminAuth)
	adminRoutes.HandleFunc("/kyc/list", h.ListKYC).Methods("GET")
	adminRoutes.HandleFunc("/kyc/action", h.ReviewKYC).Methods("POST")
	adminRoutes.HandleFunc("/audit-logs", h.GetAuditLogs).Methods("GET")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.CORSAllowedOrigins)(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	log.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.String("object_store", cfg.ObjectStore))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
