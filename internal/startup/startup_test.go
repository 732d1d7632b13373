package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true value", "true", false, true},
		{"false value", "false", true, false},
		{"numeric true", "1", false, true},
		{"invalid falls back to default", "maybe", true, true},
		{"empty falls back to default", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.envValue)

			if got := getEnvBool("TEST_BOOL_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.envValue, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	if got := getEnvInt("TEST_INT_VAR", 7); got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}

	t.Setenv("TEST_INT_VAR", "not-a-number")
	if got := getEnvInt("TEST_INT_VAR", 7); got != 7 {
		t.Errorf("Expected default 7 for invalid value, got %d", got)
	}
}

func TestParseExcludePatterns(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"~*,.*,*.tmp", 3},
		{"~*, .*, *.tmp ", 3},
		{"", 0},
		{",,", 0},
		{"single", 1},
	}

	for _, tt := range tests {
		if got := parseExcludePatterns(tt.input); len(got) != tt.want {
			t.Errorf("parseExcludePatterns(%q) = %v, want %d patterns", tt.input, got, tt.want)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	watchDir := t.TempDir()
	databaseDir := filepath.Join(t.TempDir(), "db")
	imagesDir := filepath.Join(t.TempDir(), "img")

	t.Setenv("WATCH_DIR", watchDir)
	t.Setenv("DATABASE_DIR", databaseDir)
	t.Setenv("IMAGES_DIR", imagesDir)
	t.Setenv("MAX_CONCURRENT_FILES", "5")
	t.Setenv("DEBOUNCE_INTERVAL", "500ms")
	t.Setenv("MAX_FILE_SIZE_MB", "10")
	t.Setenv("EXCLUDE_PATTERNS", "~*,*.tmp")
	t.Setenv("RECURSIVE", "false")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.WatchDir != watchDir {
		t.Errorf("Expected watch dir %s, got %s", watchDir, config.WatchDir)
	}
	if config.MaxConcurrent != 5 {
		t.Errorf("Expected 5 concurrent, got %d", config.MaxConcurrent)
	}
	if config.DebounceInterval != 500*time.Millisecond {
		t.Errorf("Expected 500ms debounce, got %v", config.DebounceInterval)
	}
	if config.MaxFileBytes != 10*1024*1024 {
		t.Errorf("Expected 10 MiB ceiling, got %d", config.MaxFileBytes)
	}
	if len(config.ExcludePatterns) != 2 {
		t.Errorf("Expected 2 exclude patterns, got %v", config.ExcludePatterns)
	}
	if config.Recursive {
		t.Error("Expected recursive disabled")
	}
	if !config.ImagesEnabled {
		t.Error("Expected images enabled with a writable directory")
	}
	if config.DatabasePath != filepath.Join(databaseDir, "doceater.db") {
		t.Errorf("Unexpected database path: %s", config.DatabasePath)
	}

	// The database directory must have been created.
	if _, err := os.Stat(databaseDir); err != nil {
		t.Errorf("Expected database directory to exist: %v", err)
	}
}

func TestLoadConfigMissingWatchDir(t *testing.T) {
	t.Setenv("WATCH_DIR", filepath.Join(t.TempDir(), "does-not-exist"))
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("IMAGES_DIR", t.TempDir())

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for missing watch directory")
	}
}

func TestLoadConfigInvalidDurationsFallBack(t *testing.T) {
	t.Setenv("WATCH_DIR", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("IMAGES_DIR", t.TempDir())
	t.Setenv("DEBOUNCE_INTERVAL", "bogus")
	t.Setenv("CONVERSION_TIMEOUT", "also-bogus")
	t.Setenv("MAX_CONCURRENT_FILES", "-1")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.DebounceInterval != 2*time.Second {
		t.Errorf("Expected default debounce, got %v", config.DebounceInterval)
	}
	if config.ConversionTimeout != 10*time.Minute {
		t.Errorf("Expected default conversion timeout, got %v", config.ConversionTimeout)
	}
	if config.MaxConcurrent != 3 {
		t.Errorf("Expected default concurrency, got %d", config.MaxConcurrent)
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/documents", "api/documents"},
		{"/api/documents/{id}", "api/documents"},
		{"/healthz", "healthz"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
