package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Sync modes for content edits.
const (
	SyncAtomic = "atomic"
	SyncSplit  = "split"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	SiteURL       string `env:"SITE_URL" env-default:"https://experimental-learning.com"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"secret_key_change_me"`
	TemplatesDir  string `env:"TEMPLATES_DIR" env-default:"./web/templates"`
	StaticDir     string `env:"STATIC_DIR" env-default:"./web/static"`

	LogMode string `env:"LOG_MODE" env-default:"development"`
	LogFile string `env:"LOG_FILE"`

	Neo4j Neo4j

	// DatabaseURL backs the reconciliation ledger. "sqlite://path" selects
	// sqlite, anything else is a postgres DSN.
	DatabaseURL string `env:"DATABASE_URL" env-default:"sqlite://ledger.db"`

	SyncMode        string `env:"SYNC_MODE" env-default:"atomic"`
	ConceptMaxDepth int    `env:"CONCEPT_MAX_DEPTH" env-default:"2"`

	AdminUsername     string `env:"ADMIN_USERNAME"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	Enrichment Enrichment

	LinkPreviewEnabled bool `env:"LINK_PREVIEW_ENABLED" env-default:"false"`
}

type Neo4j struct {
	URI         string        `env:"NEO4J_URI" env-default:"neo4j://localhost:7687"`
	User        string        `env:"NEO4J_USERNAME" env-default:"neo4j"`
	Password    string        `env:"NEO4J_PASSWORD"`
	Database    string        `env:"NEO4J_DATABASE"`
	Timeout     time.Duration `env:"NEO4J_TIMEOUT" env-default:"10s"`
	MaxPoolSize int           `env:"NEO4J_MAX_POOL_SIZE" env-default:"50"`
}

// Enrichment configures the ConceptNet related-concept lookup.
type Enrichment struct {
	Enabled    bool          `env:"ENRICHMENT_ENABLED" env-default:"false"`
	BaseURL    string        `env:"ENRICHMENT_BASE_URL" env-default:"https://api.conceptnet.io"`
	Limit      int           `env:"ENRICHMENT_LIMIT" env-default:"5"`
	Timeout    time.Duration `env:"ENRICHMENT_TIMEOUT" env-default:"5s"`
	MaxRetries uint64        `env:"ENRICHMENT_MAX_RETRIES" env-default:"3"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// A missing .env is fine, the system environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.SyncMode {
	case SyncAtomic, SyncSplit:
	default:
		return fmt.Errorf("SYNC_MODE must be %q or %q, got %q", SyncAtomic, SyncSplit, c.SyncMode)
	}
	if c.ConceptMaxDepth < 0 {
		return fmt.Errorf("CONCEPT_MAX_DEPTH must not be negative")
	}
	if c.AdminUsername != "" && c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when ADMIN_USERNAME is set")
	}
	return nil
}

// AuthEnabled reports whether mutating routes are protected.
func (c Config) AuthEnabled() bool {
	return c.AdminUsername != ""
}

// SiteBase returns SITE_URL without a trailing slash.
func (c Config) SiteBase() string {
	return strings.TrimSuffix(c.SiteURL, "/")
}
