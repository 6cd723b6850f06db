package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var configEnvKeys = []string{
	"APP_ENV", "APP_HOST", "APP_PORT", "BODY_LIMIT_MB", "LOG_LEVEL", "LOG_DIR",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "ARCHIVE_DRIVER", "ARCHIVE_DIR", "ARCHIVE_PREFIX",
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_BUCKET_NAME", "AWS_ENDPOINT",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
}

// clearEnv blanks every key Load reads. Empty values are ignored by Load.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Address() != "0.0.0.0:8000" {
		t.Errorf("address = %q", cfg.App.Address())
	}
	if cfg.App.BodyLimitMB != 50 || cfg.RateLimit.RPS != 50 || cfg.RateLimit.Burst != 100 {
		t.Errorf("limits = %+v %+v", cfg.App, cfg.RateLimit)
	}
	if cfg.Archive.Driver != "none" {
		t.Errorf("archive driver = %q", cfg.Archive.Driver)
	}
	if cfg.Redis.Enabled() || cfg.Database.Enabled() {
		t.Errorf("optional stores enabled by default")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, `
app:
  port: 9000
  env: staging
rate_limit:
  rps: 5
  burst: 10
archive:
  driver: local
  dir: /var/lib/faces
redis:
  address: redis:6379
database:
  host: db.internal
  name: faces
`)

	t.Setenv("APP_PORT", "9100")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != 9100 {
		t.Errorf("env should override file port, got %d", cfg.App.Port)
	}
	if cfg.App.Env != "staging" || cfg.App.Host != "0.0.0.0" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.RateLimit.RPS != 2.5 || cfg.RateLimit.Burst != 10 {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Archive.Driver != "local" || cfg.Archive.Dir != "/var/lib/faces" {
		t.Errorf("archive = %+v", cfg.Archive)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.Address != "redis:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if !cfg.Database.Enabled() || cfg.Database.Port != 6543 || cfg.Database.SSLMode != "disable" {
		t.Errorf("database = %+v", cfg.Database)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad yaml", file: "app: [", wantErr: "failed to parse config file"},
		{name: "bad port env", env: map[string]string{"APP_PORT": "eighty"}, wantErr: "invalid APP_PORT"},
		{name: "bad rps env", env: map[string]string{"RATE_LIMIT_RPS": "fast"}, wantErr: "invalid RATE_LIMIT_RPS"},
		{name: "port out of range", env: map[string]string{"APP_PORT": "70000"}, wantErr: "invalid port"},
		{name: "unknown archive", env: map[string]string{"ARCHIVE_DRIVER": "ftp"}, wantErr: "unknown archive driver"},
		{name: "s3 without bucket", env: map[string]string{"ARCHIVE_DRIVER": "s3"}, wantErr: "requires AWS_BUCKET_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
