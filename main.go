package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doc-eater/internal/converter"
	"doc-eater/internal/database"
	"doc-eater/internal/handlers"
	"doc-eater/internal/imagestore"
	"doc-eater/internal/logging"
	"doc-eater/internal/metrics"
	"doc-eater/internal/pipeline"
	"doc-eater/internal/startup"
	"doc-eater/internal/watcher"
	"doc-eater/internal/workers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Initialize image storage
	images, err := imagestore.New(imagestore.Config{
		Root:           config.ImagesDir,
		OrganizeByDate: config.ImagesByDate,
		MaxImageBytes:  config.MaxImageBytes,
	})
	if err != nil {
		startup.LogFatal("Failed to initialize image storage: %v", err)
	}

	// Initialize converter
	startup.LogConverterInit(config.DoclingCommand)
	conv := converter.NewDocling(config.DoclingCommand, config.ConversionTimeout)

	// Wire the ingestion pipeline
	pipe := pipeline.New(db, conv, images, pipeline.Config{
		MaxFileBytes:           config.MaxFileBytes,
		ExcludePatterns:        config.ExcludePatterns,
		ImagesEnabled:          config.ImagesEnabled,
		CleanupImagesOnFailure: config.CleanupImagesOnFailure,
	})

	workerCount := workers.ForMixed(config.MaxConcurrent)
	pool := watcher.NewPool(workerCount, func(path string) {
		if outcome := pipe.Ingest(context.Background(), path); !outcome.Success() {
			logging.Warn("Ingestion failed for %s", path)
		}
	})

	debouncer := watcher.NewDebouncer(config.DebounceInterval, func(path string) {
		pool.Submit(path)
	})

	startup.LogWatcherInit(config.WatchDir, workerCount, config.DebounceInterval)
	monitor, err := watcher.NewMonitor(config.WatchDir, config.Recursive, debouncer)
	if err != nil {
		startup.LogFatal("Failed to create filesystem monitor: %v", err)
	}

	pool.Start()
	if err := monitor.Start(); err != nil {
		startup.LogFatal("Failed to start filesystem monitor: %v", err)
	}
	startup.LogWatcherStarted()

	db.AppendLog(context.Background(), database.LogInfo, "Watcher started", "", map[string]any{
		"watch_dir": config.WatchDir,
		"workers":   workerCount,
	})

	// Ingest files already present before startup
	if config.ProcessExisting {
		go func() {
			if err := monitor.ScanExisting(); err != nil {
				logging.Error("Startup scan failed: %v", err)
			}
		}()
	}

	// Initialize handlers and router
	h := handlers.New(db, images)
	router := h.Router(config.LogHealthChecks)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics server on its own port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:    ":" + config.MetricsPort,
			Handler: metricsMux,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	h.SetReady(true)

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, monitor, debouncer, pool)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		WatchDir:        config.WatchDir,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

// handleShutdown drains the ingestion path before stopping the HTTP
// servers: monitor first so no new events arrive, then the debouncer so
// no stale trigger fires, then the pool which finishes in-flight work.
func handleShutdown(srv, metricsSrv *http.Server, monitor *watcher.Monitor, debouncer *watcher.Debouncer, pool *watcher.Pool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping filesystem monitor")
	if err := monitor.Stop(); err != nil {
		logging.Warn("Monitor stop error: %v", err)
	}
	startup.LogShutdownStepComplete("Filesystem monitor stopped")

	startup.LogShutdownStep("Cancelling pending debounce timers")
	debouncer.Stop()
	startup.LogShutdownStepComplete("Debouncer stopped")

	startup.LogShutdownStep("Draining worker pool")
	pool.Stop()
	startup.LogShutdownStepComplete("Worker pool drained")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
