// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - WATCH_DIR: Directory monitored for incoming documents (default: /watch)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - IMAGES_DIR: Root for durable extracted-image storage (default: /images)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - MAX_CONCURRENT_FILES: Concurrency ceiling for ingestion (default: 3)
//   - INGEST_WORKERS: Direct override for the worker count calculation
//   - DEBOUNCE_INTERVAL: Quiet period per path as Go duration (default: 2s)
//   - CONVERSION_TIMEOUT: Per-document conversion deadline (default: 10m)
//   - DOCLING_COMMAND: Conversion binary name or path (default: docling)
//   - MAX_FILE_SIZE_MB: Source file size ceiling in MiB (default: 50)
//   - MAX_IMAGE_SIZE_MB: Per-image size ceiling in MiB (default: 10)
//   - EXCLUDE_PATTERNS: Comma-separated filename globs to skip
//     (default: ~*,.*,*.tmp,*.part)
//   - RECURSIVE: Watch subdirectories too (default: true)
//   - EXTRACT_IMAGES: Persist extracted images (default: true)
//   - IMAGES_BY_DATE: Partition image storage by ingestion date (default: true)
//   - CLEANUP_IMAGES_ON_FAILURE: Remove a failed document's images (default: true)
//   - PROCESS_EXISTING_FILES: Ingest files already present at startup (default: true)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The package validates and creates required directories:
//   - Database directory: Required, must be writable
//   - Images directory: Optional, image persistence is disabled if not writable
//   - Watch directory: Checked but not created (should be mounted)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
package startup
