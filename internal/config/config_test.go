package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/directive/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "directive"
user = "directive"
password = "directive"
ssl_mode = "disable"
max_open_conns = 25
max_idle_conns = 5
conn_max_lifetime = "15m"
conn_timeout = "5s"

[cache]
addr = "localhost:6379"
key_prefix = "directive"

[api]
base_path = "/api"

[api.cors]
enabled = false

[api.pagination]
default_page_size = 25
max_page_size = 50

[api.rate_limit]
enabled = true
requests_per_second = 5
burst = 10

[instructions]
max_text_length = 400
max_enabled = 30
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"
`

// minimalConfig provides the minimum fields required for validation to pass.
const minimalConfig = `
[database]
name = "directive"
user = "directive"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func load(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("cache addr: got %s, want localhost:6379", cfg.Cache.Addr)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination max_page_size: got %d, want 50", cfg.API.Pagination.MaxPageSize)
	}
	if !cfg.API.RateLimit.Enabled || cfg.API.RateLimit.RequestsPerSecond != 5 || cfg.API.RateLimit.Burst != 10 {
		t.Errorf("rate limit: got %+v", cfg.API.RateLimit)
	}
	if cfg.Instructions.MaxTextLength != 400 {
		t.Errorf("max_text_length: got %d, want 400", cfg.Instructions.MaxTextLength)
	}
	if cfg.Instructions.MaxEnabled != 30 {
		t.Errorf("max_enabled: got %d, want 30", cfg.Instructions.MaxEnabled)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("DIRECTIVE_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Instructions.MaxEnabled != 30 {
		t.Errorf("max_enabled: got %d, want 30 (from base)", cfg.Instructions.MaxEnabled)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("DIRECTIVE_VERSION", "2.0.0")
	t.Setenv("DIRECTIVE_SERVER_PORT", "3000")
	t.Setenv("DIRECTIVE_CACHE_ADDR", "redis:6379")
	t.Setenv("DIRECTIVE_INSTRUCTIONS_MAX_ENABLED", "10")

	cfg := load(t, baseConfig)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Cache.Addr != "redis:6379" {
		t.Errorf("cache addr: got %s, want redis:6379", cfg.Cache.Addr)
	}
	if cfg.Instructions.MaxEnabled != 10 {
		t.Errorf("max_enabled: got %d, want 10", cfg.Instructions.MaxEnabled)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("DIRECTIVE_DB_NAME", "testdb")
	t.Setenv("DIRECTIVE_DB_USER", "testuser")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `[server`)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
}

func TestEnvFromEnvVar(t *testing.T) {
	t.Setenv("DIRECTIVE_ENV", "production")

	cfg := load(t, baseConfig)

	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestShutdownTimeoutDuration(t *testing.T) {
	cfg := load(t, baseConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestServerAddr(t *testing.T) {
	cfg := load(t, baseConfig)

	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestDefaults(t *testing.T) {
	cfg := load(t, minimalConfig)

	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max_page_size: got %d, want 100", cfg.API.Pagination.MaxPageSize)
	}
	if cfg.API.RateLimit.Enabled {
		t.Error("rate limit should be disabled by default")
	}
	if cfg.Auth.Enabled {
		t.Error("auth should be disabled by default")
	}
	if cfg.Auth.UserHeader != "X-User-ID" {
		t.Errorf("auth user_header: got %s, want X-User-ID", cfg.Auth.UserHeader)
	}
	if cfg.Instructions.MaxTextLength != 500 {
		t.Errorf("max_text_length: got %d, want 500", cfg.Instructions.MaxTextLength)
	}
	if cfg.Instructions.MaxEnabled != 50 {
		t.Errorf("max_enabled: got %d, want 50", cfg.Instructions.MaxEnabled)
	}
	if d := cfg.Instructions.UsageTimeoutDuration(); d != 5*time.Second {
		t.Errorf("usage timeout: got %v, want 5s", d)
	}
	if cfg.Instructions.UsageConcurrency != 16 {
		t.Errorf("usage_concurrency: got %d, want 16", cfg.Instructions.UsageConcurrency)
	}
	if cfg.Cache.KeyPrefix != "directive" {
		t.Errorf("cache key_prefix: got %s, want directive", cfg.Cache.KeyPrefix)
	}
}

func TestPaginationEnvOverrides(t *testing.T) {
	t.Setenv("DIRECTIVE_PAGINATION_DEFAULT_PAGE_SIZE", "10")
	t.Setenv("DIRECTIVE_PAGINATION_MAX_PAGE_SIZE", "200")

	cfg := load(t, baseConfig)

	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("pagination default_page_size: got %d, want 10", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.Pagination.MaxPageSize != 200 {
		t.Errorf("pagination max_page_size: got %d, want 200", cfg.API.Pagination.MaxPageSize)
	}
}

func TestMaxBodySizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 1MB", "1MB", 1024 * 1024},
		{"valid 256KB", "256KB", 256 * 1024},
		{"invalid falls back to 1MB", "bad", 1024 * 1024},
		{"empty falls back to 1MB", "", 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxBodySize: tt.size}
			got := cfg.MaxBodySizeBytes()
			if got != tt.want {
				t.Errorf("MaxBodySizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxBodySizeEnvOverride(t *testing.T) {
	t.Setenv("DIRECTIVE_API_MAX_BODY_SIZE", "64KB")

	cfg := load(t, baseConfig)

	want := int64(64 * 1024)
	if got := cfg.API.MaxBodySizeBytes(); got != want {
		t.Errorf("MaxBodySizeBytes() = %d, want %d", got, want)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name: "invalid port",
			config: `
[server]
port = 99999
[database]
name = "directive"
user = "directive"
`,
			wantErr: "invalid port",
		},
		{
			name: "invalid read_timeout",
			config: `
[server]
read_timeout = "bad"
[database]
name = "directive"
user = "directive"
`,
			wantErr: "invalid read_timeout",
		},
		{
			name: "missing database name",
			config: `
[database]
user = "directive"
`,
			wantErr: "name required",
		},
		{
			name: "auth enabled without issuer",
			config: `
[database]
name = "directive"
user = "directive"
[auth]
enabled = true
`,
			wantErr: "issuer_url required",
		},
		{
			name: "lexicon watch without path",
			config: `
[database]
name = "directive"
user = "directive"
[instructions]
lexicon_watch = true
`,
			wantErr: "lexicon_watch requires lexicon_path",
		},
		{
			name: "invalid usage timeout",
			config: `
[database]
name = "directive"
user = "directive"
[instructions]
usage_timeout = "soon"
`,
			wantErr: "invalid usage_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
