// Command server runs the alumni engagement API.
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alumnet/engagement/internal/api/dashboard"
	"github.com/alumnet/engagement/internal/cache"
	"github.com/alumnet/engagement/internal/config"
	"github.com/alumnet/engagement/internal/notify"
	"github.com/alumnet/engagement/internal/repository"
	"github.com/alumnet/engagement/internal/service/badges"
	"github.com/alumnet/engagement/internal/service/career"
	"github.com/alumnet/engagement/internal/service/engagement"
	"github.com/alumnet/engagement/internal/service/matching"
	"github.com/alumnet/engagement/internal/service/recommend"
	"github.com/alumnet/engagement/internal/service/scheduler"
	"github.com/alumnet/engagement/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisCache.Close()

	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	careerRepo := repository.NewCareerRepository(db)

	engagementService := engagement.NewService(engagementRepo, activityRepo, userRepo, badgeRepo, redisCache, cfg, log)
	badgeService := badges.NewService(badgeRepo, activityRepo, engagementRepo, userRepo, log)
	matchingService := matching.NewService(userRepo, activityRepo, log)
	recommendService := recommend.NewService(userRepo, activityRepo, matchingService, log)
	careerService := career.NewService(careerRepo, userRepo, redisCache, cfg, log)

	if err := badgeService.SeedFromConfig(cfg.Badges); err != nil {
		return fmt.Errorf("badge seeding: %w", err)
	}

	notifier := notify.NewClient(&cfg.Notifications, log)

	sched, err := scheduler.New(cfg.Scheduler, engagementService, badgeService, careerService, notifier, log)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}
	defer sched.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handler := dashboard.NewHandler(
		engagementService,
		badgeService,
		matchingService,
		recommendService,
		careerService,
		cfg.Leaderboard.DefaultLimit,
		log,
	)
	handler.RegisterRoutes(router.Group("/api/v1"))

	if cfg.Metrics.Prometheus.Enabled {
		router.GET(cfg.Metrics.Prometheus.Path, gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "database"})
			return
		}
		if err := redisCache.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "component": "cache"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
