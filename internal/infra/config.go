package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment
// variables. Both services share one config type; each reads the knobs it
// cares about.
type Config struct {
	// Server ports
	DetectorPort int `env:"DETECTOR_PORT" envDefault:"8000"`
	ReporterPort int `env:"REPORTER_PORT" envDefault:"8100"`

	// Scoring
	SimilarityThreshold float64  `env:"SIMILARITY_THRESHOLD" envDefault:"0.6"`
	RuleThreshold       float64  `env:"RULE_THRESHOLD" envDefault:"0.5"`
	SeverityThreshold   float64  `env:"SEVERITY_THRESHOLD" envDefault:"0.8"`
	AllowedLocations    []string `env:"ALLOWED_LOCATIONS" envDefault:"IN,US,UK"`

	// Similarity feature weights (must sum to 1.0 so a clean event scores
	// exactly 1.0)
	WeightTyping    float64 `env:"WEIGHT_TYPING" envDefault:"0.35"`
	WeightDevice    float64 `env:"WEIGHT_DEVICE" envDefault:"0.25"`
	WeightLocation  float64 `env:"WEIGHT_LOCATION" envDefault:"0.15"`
	WeightTime      float64 `env:"WEIGHT_TIME" envDefault:"0.10"`
	WeightUserAgent float64 `env:"WEIGHT_UA" envDefault:"0.10"`
	WeightIP        float64 `env:"WEIGHT_IP" envDefault:"0.05"`

	// Geo-IP (best-effort, disabled by default)
	GeoIPEnabled  bool          `env:"GEOIP_ENABLED" envDefault:"false"`
	GeoIPProvider string        `env:"GEOIP_PROVIDER" envDefault:"ipapi"` // ipapi | maxmind
	GeoIPMMDBPath string        `env:"GEOIP_MMDB_PATH" envDefault:"data/GeoLite2-City.mmdb"`
	GeoIPTimeout  time.Duration `env:"GEOIP_TIMEOUT" envDefault:"3s"`

	// Forwarding (reporter -> detector intake)
	IntakeURL        string        `env:"INTAKE_URL" envDefault:"http://localhost:8000/api/login_event"`
	ForwardTimeout   time.Duration `env:"FORWARD_TIMEOUT" envDefault:"10s"`
	ForwardQueueSize int           `env:"FORWARD_QUEUE_SIZE" envDefault:"64"`

	// Profile storage: file (default), postgres, or memory
	ProfileStore string `env:"PROFILE_STORE" envDefault:"file"`
	ProfilesPath string `env:"PROFILES_PATH" envDefault:"profiles.json"`

	// Database (postgres profile store)
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"loginwatch"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"loginwatch"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"loginwatch"`

	// Session storage: memory (default) or redis
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// Kafka alert mirror
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaAlertsTopic string `env:"KAFKA_ALERTS_TOPIC" envDefault:"loginwatch.alerts"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoadConfig parses environment variables into a Config struct. A local
// .env file is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.ProfileStore {
	case "file", "postgres", "memory":
	default:
		return fmt.Errorf("PROFILE_STORE must be file, postgres, or memory (got %q)", c.ProfileStore)
	}
	switch c.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be memory or redis (got %q)", c.SessionStore)
	}
	switch c.GeoIPProvider {
	case "ipapi", "maxmind":
	default:
		return fmt.Errorf("GEOIP_PROVIDER must be ipapi or maxmind (got %q)", c.GeoIPProvider)
	}

	sum := c.WeightTyping + c.WeightDevice + c.WeightLocation + c.WeightTime + c.WeightUserAgent + c.WeightIP
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("similarity weights must sum to 1.0 (got %.3f)", sum)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
