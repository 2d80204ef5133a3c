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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/handler/account"
	"github.com/jwalitptl/hms-api/internal/handler/appointment"
	"github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/doctor"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/internal/handler/patient"
	"github.com/jwalitptl/hms-api/internal/handler/role"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/router"
	accountService "github.com/jwalitptl/hms-api/internal/service/account"
	appointmentService "github.com/jwalitptl/hms-api/internal/service/appointment"
	authService "github.com/jwalitptl/hms-api/internal/service/auth"
	doctorService "github.com/jwalitptl/hms-api/internal/service/doctor"
	patientService "github.com/jwalitptl/hms-api/internal/service/patient"
	rbacService "github.com/jwalitptl/hms-api/internal/service/rbac"
	"github.com/jwalitptl/hms-api/internal/session"
	jwtauth "github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
	"github.com/jwalitptl/hms-api/pkg/validator"
)

const metricsNamespace = "hms"

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	baseLogger := logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	gin.SetMode(gin.ReleaseMode)

	if err := validator.RegisterWithGin(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	checks := map[string]health.Check{"database": db.PingContext}

	// Token revocations are shared through Redis when configured
	var revoked session.RevocationStore = session.NewMemoryRevocationStore()
	if cfg.Redis.URL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer client.Close()
		revoked = session.NewRedisRevocationStore(client)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("Redis not configured, token revocations are kept in process")
	}

	// Initialize repositories
	tx := postgres.NewTransactor(db)
	accountRepo := postgres.NewAccountRepository(db)
	rbacRepo := postgres.NewRBACRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	// Initialize services
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	tokens := jwtauth.NewJWTManager(jwtauth.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiry(),
	})

	rbacSvc := rbacService.NewService(rbacRepo)
	accountSvc := accountService.NewService(tx, accountRepo, rbacSvc, hasher)
	authSvc, err := authService.NewService(accountRepo, rbacSvc, hasher, tokens, revoked)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth service")
	}
	doctorSvc := doctorService.NewService(tx, doctorRepo, appointmentRepo, accountSvc)
	patientSvc := patientService.NewService(tx, patientRepo, appointmentRepo, accountSvc)
	appointmentSvc := appointmentService.NewService(tx, appointmentRepo, patientRepo, doctorRepo)

	if cfg.Bootstrap.AdminUsername != "" {
		created, err := accountSvc.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin account")
		}
		if created {
			log.Info().Str("username", cfg.Bootstrap.AdminUsername).Msg("Bootstrap admin account created")
		}
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.NewMetrics(registry, metricsNamespace)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:        auth.NewHandler(authSvc, appMetrics),
		Account:     account.NewHandler(accountSvc),
		Appointment: appointment.NewHandler(appointmentSvc, appMetrics),
		Doctor:      doctor.NewHandler(doctorSvc, appMetrics),
		Patient:     patient.NewHandler(patientSvc, appMetrics),
		Role:        role.NewHandler(rbacSvc),
		Health:      health.NewHandler(checks),
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	}
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTS = cfg.Security.HSTS

	// Setup router
	r := router.NewRouter(baseLogger, middleware.NewAuthMiddleware(authSvc), handlers, registry, router.RouterConfig{
		LoginRate:      rate.Limit(cfg.RateLimit.LoginRPS),
		LoginBurst:     cfg.RateLimit.LoginBurst,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		CORSConfig:     corsConfig,
		SecurityConfig: securityConfig,
		MetricsPrefix:  metricsNamespace,
	})
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited properly")
}
