package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig locates the Postgres instance and the roles involved.
// The user is the administrative role the provisioner connects as; the
// service role is the account the memory services use at runtime and is
// what receives table and sequence grants.
type DatabaseConfig struct {
	Host        string `yaml:"host" env:"DB_HOST"`
	Port        int    `yaml:"port" env:"DB_PORT"`
	User        string `yaml:"user" env:"DB_USERNAME"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	Name        string `yaml:"name" env:"DB_NAME"`
	SSLMode     string `yaml:"ssl_mode" env:"DB_SSLMODE"`
	URL         string `yaml:"url" env:"DATABASE_URL"`
	ServiceRole string `yaml:"service_role" env:"DB_SERVICE_ROLE"`
}

// DSN returns the connection string. An explicit URL wins over the
// discrete host/port/user fields.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// GrantRole returns the role that receives grants, defaulting to the
// connect user when no dedicated service role is configured.
func (c DatabaseConfig) GrantRole() string {
	if c.ServiceRole != "" {
		return c.ServiceRole
	}
	return c.User
}

// VectorConfig tunes the approximate nearest neighbor indexes built on
// documents.embedding.
type VectorConfig struct {
	Index              string `yaml:"index" env:"VECTOR_INDEX"`
	IVFFlatLists       int    `yaml:"ivfflat_lists" env:"VECTOR_IVFFLAT_LISTS"`
	HNSWM              int    `yaml:"hnsw_m" env:"VECTOR_HNSW_M"`
	HNSWEfConstruction int    `yaml:"hnsw_ef_construction" env:"VECTOR_HNSW_EF_CONSTRUCTION"`
}

// ServicesConfig holds the base URLs of the memory services sharing this
// store. Only their /health endpoints are ever called, by doctor.
type ServicesConfig struct {
	Mem0URL              string `yaml:"mem0_url" env:"MEM0_URL"`
	GraphitiURL          string `yaml:"graphiti_url" env:"GRAPHITI_URL"`
	CogneeURL            string `yaml:"cognee_url" env:"COGNEE_URL"`
	HealthTimeoutSeconds int    `yaml:"health_timeout_seconds" env:"SERVICES_HEALTH_TIMEOUT_SECONDS"`
}

// HealthTimeout returns the per-probe timeout as a duration.
func (c ServicesConfig) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutSeconds) * time.Second
}

// CleanupConfig controls the default retention window for the cleanup
// command.
type CleanupConfig struct {
	RetentionDays int `yaml:"retention_days" env:"CLEANUP_RETENTION_DAYS"`
}

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Vector   VectorConfig   `yaml:"vector"`
	Services ServicesConfig `yaml:"services"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

// Default returns the built-in configuration. Database defaults match
// the conventions of the memory service containers.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "cognee",
			Name:    "cognee_db",
			SSLMode: "disable",
		},
		Vector: VectorConfig{
			Index:              "both",
			IVFFlatLists:       100,
			HNSWM:              16,
			HNSWEfConstruction: 64,
		},
		Services: ServicesConfig{
			Mem0URL:              "http://localhost:8000",
			GraphitiURL:          "http://localhost:8001",
			CogneeURL:            "http://localhost:8002",
			HealthTimeoutSeconds: 5,
		},
		Cleanup: CleanupConfig{
			RetentionDays: 90,
		},
	}
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not an error; defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot possibly work.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database port %d out of range", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database user is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("config: database name is required")
		}
	}
	if c.Cleanup.RetentionDays < 0 {
		return fmt.Errorf("config: cleanup retention days must not be negative")
	}
	if c.Services.HealthTimeoutSeconds <= 0 {
		return fmt.Errorf("config: services health timeout must be positive")
	}
	return nil
}
