package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"doc-eater/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	WatchDir    string
	DatabaseDir string
	ImagesDir   string
	Port        string
	MetricsPort string

	MaxConcurrent     int
	DebounceInterval  time.Duration
	ConversionTimeout time.Duration
	DoclingCommand    string

	MaxFileBytes    int64
	MaxImageBytes   int64
	ExcludePatterns []string

	Recursive              bool
	ImagesByDate           bool
	CleanupImagesOnFailure bool
	ProcessExisting        bool
	MetricsEnabled         bool
	LogHealthChecks        bool

	// Derived paths
	DatabasePath string

	// Feature flags based on directory availability
	ImagesEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	watchDir := getEnv("WATCH_DIR", "/watch")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	imagesDir := getEnv("IMAGES_DIR", "/images")
	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	maxConcurrent := getEnvInt("MAX_CONCURRENT_FILES", 3)
	debounceStr := getEnv("DEBOUNCE_INTERVAL", "2s")
	conversionTimeoutStr := getEnv("CONVERSION_TIMEOUT", "10m")
	doclingCommand := getEnv("DOCLING_COMMAND", "docling")
	maxFileMB := getEnvInt("MAX_FILE_SIZE_MB", 50)
	maxImageMB := getEnvInt("MAX_IMAGE_SIZE_MB", 10)
	excludeStr := getEnv("EXCLUDE_PATTERNS", "~*,.*,*.tmp,*.part")
	recursive := getEnvBool("RECURSIVE", true)
	extractImages := getEnvBool("EXTRACT_IMAGES", true)
	imagesByDate := getEnvBool("IMAGES_BY_DATE", true)
	cleanupOnFailure := getEnvBool("CLEANUP_IMAGES_ON_FAILURE", true)
	processExisting := getEnvBool("PROCESS_EXISTING_FILES", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	logging.Info("  WATCH_DIR:                 %s", watchDir)
	logging.Info("  DATABASE_DIR:              %s", databaseDir)
	logging.Info("  IMAGES_DIR:                %s", imagesDir)
	logging.Info("  PORT:                      %s", port)
	logging.Info("  METRICS_PORT:              %s", metricsPort)
	logging.Info("  METRICS_ENABLED:           %v", metricsEnabled)
	logging.Info("  MAX_CONCURRENT_FILES:      %d", maxConcurrent)
	logging.Info("  DEBOUNCE_INTERVAL:         %s", debounceStr)
	logging.Info("  CONVERSION_TIMEOUT:        %s", conversionTimeoutStr)
	logging.Info("  DOCLING_COMMAND:           %s", doclingCommand)
	logging.Info("  MAX_FILE_SIZE_MB:          %d", maxFileMB)
	logging.Info("  MAX_IMAGE_SIZE_MB:         %d", maxImageMB)
	logging.Info("  EXCLUDE_PATTERNS:          %s", excludeStr)
	logging.Info("  RECURSIVE:                 %v", recursive)
	logging.Info("  EXTRACT_IMAGES:            %v", extractImages)
	logging.Info("  IMAGES_BY_DATE:            %v", imagesByDate)
	logging.Info("  CLEANUP_IMAGES_ON_FAILURE: %v", cleanupOnFailure)
	logging.Info("  PROCESS_EXISTING_FILES:    %v", processExisting)
	logging.Info("  LOG_HEALTH_CHECKS:         %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:                 %s", logging.GetLevel())

	debounceInterval, err := time.ParseDuration(debounceStr)
	if err != nil {
		logging.Warn("  Invalid DEBOUNCE_INTERVAL, using default: 2s")
		debounceInterval = 2 * time.Second
	}

	conversionTimeout, err := time.ParseDuration(conversionTimeoutStr)
	if err != nil {
		logging.Warn("  Invalid CONVERSION_TIMEOUT, using default: 10m")
		conversionTimeout = 10 * time.Minute
	}

	if maxConcurrent < 1 {
		logging.Warn("  Invalid MAX_CONCURRENT_FILES, using default: 3")
		maxConcurrent = 3
	}

	// Resolve paths
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	watchDir, err = filepath.Abs(watchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch directory path: %w", err)
	}
	logging.Info("  Watch directory (absolute): %s", watchDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	imagesDir, err = filepath.Abs(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve images directory path: %w", err)
	}
	logging.Info("  Images directory (absolute): %s", imagesDir)

	// The watch directory must exist; it is mounted, not created.
	info, err := os.Stat(watchDir)
	if err != nil {
		return nil, fmt.Errorf("watch directory is not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", watchDir)
	}
	logging.Info("  [OK] Watch directory exists")

	config := &Config{
		WatchDir:               watchDir,
		DatabaseDir:            databaseDir,
		ImagesDir:              imagesDir,
		Port:                   port,
		MetricsPort:            metricsPort,
		MaxConcurrent:          maxConcurrent,
		DebounceInterval:       debounceInterval,
		ConversionTimeout:      conversionTimeout,
		DoclingCommand:         doclingCommand,
		MaxFileBytes:           int64(maxFileMB) * 1024 * 1024,
		MaxImageBytes:          int64(maxImageMB) * 1024 * 1024,
		ExcludePatterns:        parseExcludePatterns(excludeStr),
		Recursive:              recursive,
		ImagesByDate:           imagesByDate,
		CleanupImagesOnFailure: cleanupOnFailure,
		ProcessExisting:        processExisting,
		MetricsEnabled:         metricsEnabled,
		LogHealthChecks:        logHealthChecks,
		DatabasePath:           filepath.Join(databaseDir, "doceater.db"),
	}

	// Ensure base database directory exists (required for database)
	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	// Test write access for database (required)
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for database): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	// Setup images directory (optional)
	config.ImagesEnabled = extractImages && setupOptionalDir(imagesDir, "images")

	// Summary
	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Database:          ENABLED (required)")
	logging.Info("    Image extraction:  %s", enabledString(config.ImagesEnabled))
	logging.Info("    Metrics:           %s", enabledString(config.MetricsEnabled))

	return config, nil
}

// parseExcludePatterns splits the comma-separated glob list, dropping
// empty entries.
func parseExcludePatterns(value string) []string {
	var patterns []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			patterns = append(patterns, part)
		}
	}
	return patterns
}

func setupOptionalDir(path, name string) bool {
	logging.Debug("  Setting up %s directory: %s", name, path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("    Failed to create %s directory: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}

	testFile := filepath.Join(path, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		logging.Warn("    %s directory is not writable: %v", name, err)
		logging.Warn("    %s will be disabled", name)
		return false
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("    failed to remove test file %s: %v", testFile, err)
		// Still return true since write succeeded
	}

	logging.Debug("    [OK] %s directory ready", name)
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogConverterInit logs converter initialization and checks the
// conversion binary
func LogConverterInit(command string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CONVERTER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if err := checkDocling(command); err != nil {
		logging.Warn("  Conversion tool check failed: %v", err)
		logging.Warn("  Document conversion will fail until %s is available", command)
	} else {
		logging.Info("  [OK] Conversion tool is available")
	}
}

// LogWatcherInit logs filesystem watcher initialization
func LogWatcherInit(watchDir string, workers int, debounce time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("WATCHER INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Watch directory:   %s", watchDir)
	logging.Info("  Worker count:      %d", workers)
	logging.Info("  Debounce interval: %v", debounce)
	logging.Info("  Starting watcher...")
}

// LogWatcherStarted logs successful watcher start
func LogWatcherStarted() {
	logging.Info("  [OK] Watcher started")
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		// Group routes by prefix for cleaner output
		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			groupRoutes := groups[group]
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groupRoutes {
				methodPadded := fmt.Sprintf("%-6s", route.Method)
				logging.Debug("    %s %s", methodPadded, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	WatchDir        string
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Watching:        %s", config.WatchDir)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    API:           http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____               ______      __
   / __ \____  _____  / ____/___ _/ /____  _____
  / / / / __ \/ ___/ / __/ / __ '/ __/ _ \/ ___/
 / /_/ / /_/ / /__  / /___/ /_/ / /_/  __/ /
/_____/\____/\___/ /_____/\__,_/\__/\___/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func checkDocling(command string) error {
	path, err := exec.LookPath(command)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", command)
	}
	logging.Debug("  Conversion tool path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, "--version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", command, err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  Conversion tool version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
