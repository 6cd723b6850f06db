package config

import (
	"FaceDetection/pkg/archive"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
}

type AppConfig struct {
	Env         string `yaml:"env"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	BodyLimitMB int    `yaml:"body_limit_mb"`
}

func (a AppConfig) Address() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ArchiveConfig struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	Prefix string   `yaml:"prefix"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:         "development",
			Host:        "0.0.0.0",
			Port:        8000,
			BodyLimitMB: 50,
		},
		Log: LogConfig{
			Level: "debug",
			Dir:   "./storage/logs",
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
		Archive: ArchiveConfig{
			Driver: archive.DriverNone,
			Dir:    "./storage/received",
		},
		Database: DatabaseConfig{
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	envString("APP_ENV", &c.App.Env)
	envString("APP_HOST", &c.App.Host)
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_DIR", &c.Log.Dir)
	envString("ARCHIVE_DRIVER", &c.Archive.Driver)
	envString("ARCHIVE_DIR", &c.Archive.Dir)
	envString("ARCHIVE_PREFIX", &c.Archive.Prefix)
	envString("AWS_REGION", &c.Archive.S3.Region)
	envString("AWS_ACCESS_KEY_ID", &c.Archive.S3.AccessKeyID)
	envString("AWS_SECRET_ACCESS_KEY", &c.Archive.S3.SecretAccessKey)
	envString("AWS_BUCKET_NAME", &c.Archive.S3.Bucket)
	envString("AWS_ENDPOINT", &c.Archive.S3.Endpoint)
	envString("REDIS_ADDRESS", &c.Redis.Address)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envString("DB_HOST", &c.Database.Host)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Name)
	envString("DB_SSLMODE", &c.Database.SSLMode)

	ints := map[string]*int{
		"APP_PORT":         &c.App.Port,
		"BODY_LIMIT_MB":    &c.App.BodyLimitMB,
		"RATE_LIMIT_BURST": &c.RateLimit.Burst,
		"REDIS_DB":         &c.Redis.DB,
		"DB_PORT":          &c.Database.Port,
	}
	for key, dst := range ints {
		if err := envInt(key, dst); err != nil {
			return err
		}
	}

	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok && v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS %q: %w", v, err)
		}
		c.RateLimit.RPS = rps
	}

	return nil
}

func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	if c.App.BodyLimitMB <= 0 {
		return fmt.Errorf("body limit must be positive, got %d MB", c.App.BodyLimitMB)
	}

	switch c.Archive.Driver {
	case "", archive.DriverNone, archive.DriverLocal:
	case archive.DriverS3:
		if c.Archive.S3.Bucket == "" {
			return fmt.Errorf("archive driver s3 requires AWS_BUCKET_NAME")
		}
	default:
		return fmt.Errorf("unknown archive driver %q", c.Archive.Driver)
	}

	return nil
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
