package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/config"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/domain/booking"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/domain/reference"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/domain/schedule"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/auth"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/middleware"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/session"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "activities-server",
		Short: "Video-link booking API server",
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the booking API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Journey store. Redis in normal operation; in development without a
	// reachable Redis the in-memory store keeps the wizard usable.
	var journeyBackend session.Store
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		if !cfg.IsDev() {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		logger.Warn().Err(err).Msg("redis unreachable, journeys held in memory")
		journeyBackend = session.NewMemoryStore(cfg.JourneyTTL())
	} else {
		journeyBackend = session.NewRedisStore(redisClient, cfg.JourneyTTL())
		logger.Info().Msg("connected to redis")
	}

	// Upstream clients, forwarding the caller's own bearer token.
	token := rest.TokenProvider(auth.BearerFromContext)
	bookingAPI := rest.NewClient("booking-api", cfg.BookingAPIURL, cfg.UpstreamTimeout(), token)
	prisonAPI := rest.NewClient("prison-api", cfg.PrisonAPIURL, cfg.UpstreamTimeout(), token)
	activitiesAPI := rest.NewClient("activities-api", cfg.ActivitiesAPIURL, cfg.UpstreamTimeout(), token)
	locationsAPI := rest.NewClient("locations-api", cfg.LocationsAPIURL, cfg.UpstreamTimeout(), token)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("256K"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	// Audit middleware
	e.Use(middleware.Audit(logger))

	// API group
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RequestTimeout(cfg.UpstreamTimeout() + 5*time.Second))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health check with upstream reachability
	e.GET("/health", rest.HealthHandler(version, bookingAPI, prisonAPI, activitiesAPI, locationsAPI))

	// Reference-data response cache
	cacheCtx, cacheCancel := context.WithCancel(context.Background())
	defer cacheCancel()
	cacheStore := middleware.NewInMemoryCacheStore()
	cacheStore.StartCleanup(cacheCtx, time.Minute)

	// -- Register domain handlers --

	// Schedule domain
	locationClient := schedule.NewHTTPLocationClient(locationsAPI)
	eventsClient := schedule.NewHTTPEventsClient(prisonAPI, activitiesAPI)
	scheduleSvc := schedule.NewService(locationClient, eventsClient)
	schedule.NewHandler(scheduleSvc).RegisterRoutes(apiV1)

	// Booking domain
	bookingClient := booking.NewHTTPBookingClient(bookingAPI)
	searcher := booking.NewHTTPAppointmentSearcher(activitiesAPI)
	bookingSvc := booking.NewService(bookingClient, searcher, booking.ServiceOptions{
		Slots:           booking.SlotPolicy{PrePostLength: time.Duration(cfg.PrePostSlotMinutes) * time.Minute},
		ConfirmAttempts: cfg.ConfirmAttempts,
		ConfirmBackoff:  cfg.ConfirmBackoff(),
	})
	journeys := booking.NewJourneyStore(journeyBackend)
	booking.NewHandler(bookingSvc, journeys, scheduleSvc).RegisterRoutes(apiV1)

	// Reference data
	referenceSvc := reference.NewService(reference.NewHTTPClient(bookingAPI))
	reference.NewHandler(referenceSvc).RegisterRoutes(apiV1, cacheStore)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
	return nil
}
