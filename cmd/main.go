package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/metalk/feelings/internal/adapters/assets"
	"github.com/metalk/feelings/internal/adapters/compose"
	"github.com/metalk/feelings/internal/adapters/http/api"
	"github.com/metalk/feelings/internal/adapters/moderation"
	"github.com/metalk/feelings/internal/adapters/prefs"
	app "github.com/metalk/feelings/internal/app"
	"github.com/metalk/feelings/internal/config"
	"github.com/metalk/feelings/internal/domain/validate"
	"github.com/metalk/feelings/internal/speech"
	"github.com/metalk/feelings/pkg/logger"
	"github.com/metalk/feelings/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 60 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own custom system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts := []app.Option{
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithCooldown(time.Duration(cfg.CooldownMS) * time.Millisecond),
		app.WithSessionTTL(time.Duration(cfg.SessionTTLMinutes) * time.Minute),
		app.WithAssets(assets.NewDir(cfg.AssetsDir)),
		app.WithValidator(buildValidator(cfg)),
	}

	if composer := buildComposer(ctx, cfg, loggerInstance); composer != nil {
		opts = append(opts, app.WithComposer(composer))
	}
	if driver := buildSpeech(ctx, cfg, loggerInstance); driver != nil {
		opts = append(opts, app.WithSpeech(driver))
	}
	if store := buildPrefs(ctx, cfg, loggerInstance); store != nil {
		opts = append(opts, app.WithPrefsStore(store))
	}

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildValidator assembles the upload validator from config.
func buildValidator(cfg *config.Config) *validate.Validator {
	opts := []validate.Option{
		validate.WithMaxBytes(int(cfg.MaxUploadBytes)),
		validate.WithUnsafeThreshold(cfg.UnsafeThreshold),
		validate.WithFailOpen(cfg.ClassifierOpenOnUnavailable),
		validate.WithCheckTimeout(time.Duration(cfg.CheckTimeoutMS) * time.Millisecond),
		validate.WithSanitizer(validate.NewSanitizer(validate.WithMaxDimension(uint(cfg.MaxImageDimension)))),
	}
	if cfg.ClassifierURL != "" {
		opts = append(opts, validate.WithClassifier(moderation.NewHTTPClassifier(cfg.ClassifierURL)))
	}
	return validate.New(opts...)
}

// buildComposer selects the Gemini composer when an API key is
// configured; the service falls back to the simulated composer.
func buildComposer(ctx context.Context, cfg *config.Config, log logger.Logger) compose.Composer {
	if cfg.GeminiAPIKey == "" {
		return nil
	}
	composer, err := compose.NewGemini(cfg.GeminiAPIKey, compose.WithModel(cfg.GeminiModel))
	if err != nil {
		log.Warn(ctx, "gemini composer unavailable, using simulated", logger.Error(err))
		return nil
	}
	log.Info(ctx, "using gemini composer", logger.String("model", cfg.GeminiModel))
	return composer
}

// buildSpeech wires the exec speech engine when commands are configured.
func buildSpeech(ctx context.Context, cfg *config.Config, log logger.Logger) *speech.Driver {
	if cfg.SpeechVoicesCommand == "" || cfg.SpeechSpeakCommand == "" {
		return nil
	}
	engine, err := speech.NewExecEngine(cfg.SpeechVoicesCommand, cfg.SpeechSpeakCommand)
	if err != nil {
		log.Warn(ctx, "speech engine unavailable", logger.Error(err))
		return nil
	}
	return speech.NewDriver(engine,
		speech.WithReadyTimeout(time.Duration(cfg.SpeechReadyTimeoutMS)*time.Millisecond),
	)
}

// buildPrefs opens the sqlite preference store when a path is set.
func buildPrefs(ctx context.Context, cfg *config.Config, log logger.Logger) prefs.Store {
	if cfg.PrefsDBPath == "" {
		return nil
	}
	store, err := prefs.Open(ctx, cfg.PrefsDBPath)
	if err != nil {
		log.Warn(ctx, "preference store unavailable, using memory", logger.Error(err))
		return nil
	}
	return store
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	// GetStats already refreshes the queue gauge; nothing further yet.
	_ = stats
}
