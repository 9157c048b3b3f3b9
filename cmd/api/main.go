package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/config"
	appHTTP "github.com/cmlabs-hris/hris-presence-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-presence-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-presence-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-presence-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-presence-go/internal/service/notification"
	"github.com/go-chi/httplog/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(slog.String("app", cfg.App.Name)))

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	hub := sse.NewHub()
	metrics.RegisterSubscriberGauge(registry, hub.TotalSubscribers)
	healthChecks := []appHTTP.HealthCheck{{Name: "postgres", Ping: db.Ping}}

	// Without Redis every push goes straight to this instance's subscribers.
	var publisher bus.Publisher = bus.NewHubPublisher(hub)
	var relay *bus.RedisRelay
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		publisher = bus.NewRedisPublisher(rdb, cfg.Redis.ChannelPrefix)
		relay = bus.NewRedisRelay(rdb, hub, cfg.Redis.ChannelPrefix)
		healthChecks = append(healthChecks, appHTTP.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	transactor := postgresql.NewTransactor(db)
	badgeEventRepo := postgresql.NewBadgeEventRepository(db)
	presenceRepo := postgresql.NewPresenceRepository(db)
	credentialRepo := postgresql.NewBadgeCredentialRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	leaveAuditRepo := postgresql.NewLeaveAuditRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	notificationSvc := notificationService.NewNotificationService(notificationRepo, publisher, hub, m, notificationService.Config{
		WorkerCount: cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		PushTimeout: cfg.Notification.PushTimeout,
	})
	defer notificationSvc.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		badgeEventRepo,
		presenceRepo,
		credentialRepo,
		employeeRepo,
		m,
		cfg.Scan.Location,
	)
	leaveSvc := leaveService.NewLeaveService(
		transactor,
		leaveRequestRepo,
		leaveAuditRepo,
		notificationSvc,
		m,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.LeaveSyncInterval).RegisterJobs(scheduler)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			Gatherer:       registry,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewNotificationHandler(notificationSvc, JWTService),
		appHTTP.NewHealthHandler(healthChecks...),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env, "timezone", cfg.Scan.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.App.ShutdownGrace)
		defer cancel()
		slog.Info("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if relay != nil {
		g.Go(func() error {
			// resubscribe when the Redis subscription drops
			for {
				err := relay.Run(gctx)
				if gctx.Err() != nil {
					return nil
				}
				slog.Warn("Redis relay stopped, retrying", "error", err)
				select {
				case <-gctx.Done():
					return nil
				case <-time.After(5 * time.Second):
				}
			}
		})
	}

	return g.Wait()
}
