// cmd/apply-server/main.go
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

	"go.uber.org/zap"

	"vortexzz-apply/internal/common/config"
	"vortexzz-apply/internal/common/database"
	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/common/observability"
	"vortexzz-apply/internal/flow"
	"vortexzz-apply/internal/session"
	"vortexzz-apply/internal/ui"
	"vortexzz-apply/pkg/registry"

	fa "vortexzz-apply/internal/stages/application/format-application"
	rr "vortexzz-apply/internal/stages/application/render-result"
	va "vortexzz-apply/internal/stages/application/validate-application"

	httptransport "vortexzz-apply/internal/transport/http"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting apply server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Content ---
	content, err := registry.LoadRegistry(cfg.Content.RegistryPath)
	if err != nil {
		zapLog.Fatal("content registry invalid", zap.Error(err))
	}
	content = content.WithInviteURL(cfg.Content.InviteURL)
	zapLog.Info("Content registry loaded", zap.String("version", content.Version))

	// --- Session store ---
	var (
		store session.Store
		ready func(context.Context) error
	)
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		store = session.NewRedisStore(rdb.GetClient(), cfg.Session.KeyPrefix, cfg.SessionTTL(), time.Now, log)
		ready = rdb.Ping
	default:
		mem := session.NewMemoryStore(cfg.SessionTTL(), time.Now, log)
		go mem.Run(ctx, time.Minute)
		store = mem
	}

	// --- Stages ---
	loc := cfg.Location()
	timeouts := map[string]time.Duration{}
	for _, taskType := range []string{va.TaskType, fa.TaskType, rr.TaskType} {
		timeouts[taskType] = config.GetDuration(config.GetStageConfig(cfg, taskType).Timeout)
	}

	formatCfg := fa.LoadConfig()
	formatCfg.Location = loc

	f := flow.New(flow.Config{
		SubmissionDelay: cfg.SubmissionDelay(),
		CopyFeedback:    cfg.CopyFeedback(),
		StageTimeouts:   timeouts,
	}, flow.Dependencies{
		Store:     store,
		Validator: va.NewHandler(va.LoadConfig(), log),
		Formatter: fa.NewHandler(formatCfg, log),
		Renderer:  rr.NewHandler(&rr.Config{Content: content}, log),
		Obs:       obs,
		Logger:    log,
	})

	server := httptransport.NewServer(httptransport.Config{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		CookieName:     cfg.Session.CookieName,
		SessionTTL:     cfg.SessionTTL(),
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		Location:       loc,
		InviteURL:      content.InviteURL,
		SecureCookies:  cfg.App.Environment == "production",
	}, httptransport.Dependencies{
		Controller: ui.NewController(f, log),
		Logger:     log,
		Ready:      ready,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: config.GetDuration(cfg.Server.ReadHeaderTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	stop()

	zapLog.Info("Apply server stopped")
}
