package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/workshop17/ticketing-engine/config"
	"github.com/workshop17/ticketing-engine/internal/businesstime"
	"github.com/workshop17/ticketing-engine/internal/domain"
	"github.com/workshop17/ticketing-engine/internal/health"
	"github.com/workshop17/ticketing-engine/internal/housekeeping"
	"github.com/workshop17/ticketing-engine/internal/infrastructure/postgres"
	ctxlog "github.com/workshop17/ticketing-engine/internal/log"
	"github.com/workshop17/ticketing-engine/internal/materialize"
	"github.com/workshop17/ticketing-engine/internal/metrics"
	"github.com/workshop17/ticketing-engine/internal/notify"
	"github.com/workshop17/ticketing-engine/internal/sla"
	httptransport "github.com/workshop17/ticketing-engine/internal/transport/http"
	"github.com/workshop17/ticketing-engine/internal/transport/http/handler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	ticketRepo := postgres.NewTicketRepository(pool)
	taskRepo := postgres.NewScheduledTaskRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	slaRepo := postgres.NewSLASettingsRepository(pool)

	calendar := businesstime.NewCalendar(cfg.BusinessOpenHour, cfg.BusinessCloseHour)
	clock := sla.NewClock(calendar)
	policy := loadPolicy(ctx, slaRepo, logger)
	engine := sla.NewEngine(policy, clock)

	materializer := materialize.NewTicketMaterializer(ticketRepo, taskRepo, logger)
	notifier := newNotifier(cfg, logger)

	runner := housekeeping.NewRunner(
		ticketRepo, taskRepo, userRepo,
		clock, engine, materializer, notifier, logger,
	)

	trigger, err := newTrigger(cfg, runner, logger)
	if err != nil {
		stop()
		log.Fatalf("trigger: %v", err)
	}
	go trigger.Start(ctx)

	ops := handler.NewOpsHandler(runner, checker, logger)
	srv := http.Server{
		Addr:    ":" + cfg.OpsPort,
		Handler: httptransport.NewRouter(logger, ops, cfg.OpsToken),
	}

	metricsSrv := metrics.NewServer(":" + cfg.MetricsPort)

	go func() {
		logger.Info("ops server started", "port", cfg.OpsPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ops server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ops server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("housekeeper shut down")
}

// loadPolicy overlays deployment-tuned thresholds from the database onto the
// shipped defaults. A failed load is logged and the defaults stand.
func loadPolicy(ctx context.Context, repo *postgres.SLASettingsRepository, logger *slog.Logger) *sla.Policy {
	hours, err := repo.LoadThresholds(ctx)
	if err != nil {
		logger.Warn("load sla settings, using defaults", "error", err)
		return sla.DefaultPolicy()
	}
	if len(hours) == 0 {
		return sla.DefaultPolicy()
	}

	table := make(map[domain.TicketPriority]sla.Thresholds, len(hours))
	for priority, h := range hours {
		table[priority] = sla.Thresholds{Target: int64(h * 3600)}
	}
	return sla.NewPolicy(table)
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	var channels []notify.Notifier
	if cfg.ZulipSite != "" {
		channels = append(channels, notify.NewZulipNotifier(
			cfg.ZulipSite, cfg.ZulipBotEmail, cfg.ZulipAPIKey, cfg.AppBaseURL))
	}
	if cfg.ResendAPIKey != "" && cfg.Env != "local" {
		channels = append(channels, notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.ResendFrom))
	}
	if len(channels) == 0 {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewFanout(channels...)
}

func newTrigger(cfg *config.Config, runner *housekeeping.Runner, logger *slog.Logger) (*housekeeping.Trigger, error) {
	if cfg.TriggerCron != "" {
		return housekeeping.NewCronTrigger(runner, logger, cfg.TriggerCron)
	}
	interval := time.Duration(cfg.PassIntervalSec) * time.Second
	return housekeeping.NewIntervalTrigger(runner, logger, interval), nil
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
