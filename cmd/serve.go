package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"saree-api/cache"
	"saree-api/handlers"
	"saree-api/jobs"
	"saree-api/logger"
	"saree-api/metrics"
	"saree-api/middleware"
	"saree-api/realtime"
	"saree-api/routes"
	"saree-api/seed"
	"saree-api/services"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate, seed, start the scheduler and serve HTTP + websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openMigrated()
	if err != nil {
		return err
	}
	defer closeDB(db)
	if err := seed.Run(ctx, db, seedOptions()); err != nil {
		return wrap("seed", err)
	}

	kv, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logrus.WithError(err).Warn("cache disabled")
	}
	defer kv.Close()

	hub := realtime.NewHub()
	notifier := services.NewNotifier(db, hub)
	stats := services.NewStatsService(db, cfg.Location)
	sessions := middleware.NewSessions(db, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)

	h := &handlers.Handler{
		DB:       db,
		Orders:   services.NewOrderService(db, notifier, cfg.Location),
		Notifier: notifier,
		Accounts: services.NewAccountService(db),
		Reviews:  services.NewReviewService(db),
		Stats:    stats,
		Settings: services.NewSettingService(db),
		Sessions: sessions,
		Cache:    kv,
		Location: cfg.Location,
	}

	scheduler, err := jobs.New(jobs.Options{
		RecomputeSchedule: cfg.RecomputeSchedule,
		Location:          cfg.Location,
	}, stats, sessions, limiter)
	if err != nil {
		return err
	}
	scheduler.Start()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.Recovery(), logger.Middleware(), metrics.Middleware(), cors())
	routes.Setup(r, h, hub, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	logger.Go("http", func() {
		logrus.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case err = <-errCh:
		logrus.WithError(err).Error("server failed")
	case <-ctx.Done():
		logrus.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logrus.WithError(serr).Warn("http shutdown")
	}
	scheduler.Stop(shutdownCtx)
	return err
}

// cors lets the browser clients call the API from another origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", c.GetHeader("Origin"))
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
