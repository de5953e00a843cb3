package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/riskdash-client/internal/core/port"
	"github.com/arklim/riskdash-client/internal/infra/alert"
	"github.com/arklim/riskdash-client/internal/infra/cache"
	"github.com/arklim/riskdash-client/internal/infra/config"
	"github.com/arklim/riskdash-client/internal/infra/device"
	"github.com/arklim/riskdash-client/internal/infra/httpapi"
	"github.com/arklim/riskdash-client/internal/infra/logger"
	"github.com/arklim/riskdash-client/internal/infra/telemetry"
	"github.com/arklim/riskdash-client/internal/state"
	"github.com/arklim/riskdash-client/internal/usecase"
)

// Application wires the session and notification core to its collaborators:
// the HTTP backend client, the cached-data collaborator, metrics, and the
// alert sink supplied by the caller.
type Application struct {
	Config        *config.AppConfig
	Logger        *zap.Logger
	Client        *httpapi.Client
	Sessions      *state.SessionStore
	Notifications *state.NotificationStore
	Coordinator   *usecase.SessionCoordinator
	Sync          *usecase.NotificationSyncEngine
	Guards        *usecase.GuardEvaluator
	Cache         port.DataCache

	metricsServer *http.Server
	redisCache    *cache.Redis
}

// New assembles the core from configuration. A nil alerter falls back to the
// logging alert sink.
func New(cfg *config.AppConfig, alerter port.Alerter) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if alerter == nil {
		alerter = alert.NewLoggingAlerter(log)
	}

	metrics, err := telemetry.NewMetrics(telemetry.MetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	app := &Application{Config: cfg, Logger: log}

	if cfg.Cache.RedisEnabled {
		redisCache, err := cache.NewRedis(cfg.Cache, log)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		app.redisCache = redisCache
		app.Cache = redisCache
	} else {
		app.Cache = cache.NewMemory()
	}

	client, err := httpapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	app.Client = client

	if deviceID, err := device.LoadOrCreate(cfg.Device.IDPath); err != nil {
		log.Warn("device id unavailable", zap.Error(err))
	} else {
		client.SetDeviceID(deviceID)
		log.Debug("device id loaded", zap.String("device_id", logger.MaskString(deviceID)))
	}

	app.Sessions = state.NewSessionStore()
	app.Notifications = state.NewNotificationStore(log)

	app.Coordinator = usecase.NewSessionCoordinator(app.Sessions, app.Notifications, client, app.Cache, log).
		WithTelemetry(metrics)
	client.SetUnauthorizedHandler(app.Coordinator.HandleUnauthorized)

	app.Sync = usecase.NewNotificationSyncEngine(app.Notifications, app.Sessions, client, alerter, log).
		WithInterval(cfg.Poll.Interval).
		WithTelemetry(metrics)

	app.Guards = usecase.NewGuardEvaluator(app.Sessions, func(triggerCtx context.Context) {
		go app.Coordinator.CheckSession(triggerCtx)
	})

	if cfg.Telemetry.MetricsAddr != "" {
		app.serveMetrics(cfg.Telemetry.MetricsAddr)
	}

	return app, nil
}

func (a *Application) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())

	a.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
}

// Close releases background resources.
func (a *Application) Close(ctx context.Context) error {
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.Logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			return fmt.Errorf("close redis cache: %w", err)
		}
	}
	return nil
}
