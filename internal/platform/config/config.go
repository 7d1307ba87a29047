package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Deposit policies accepted by LedgerConfig.DepositPolicy.
const (
	DepositPolicyOpen  = "open"
	DepositPolicyOwner = "owner"
)

// Server captures process level configuration.
type Server struct {
	Addr          string `env:"BURSAR_ADDR" envDefault:":8080"`
	MetricsAddr   string `env:"BURSAR_METRICS_ADDR" envDefault:":9090"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"bursar"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"bursar-api"`

	Log      LogConfig      `envPrefix:"LOG_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Tracing  TracingConfig  `envPrefix:"OTEL_"`
	Ledger   LedgerConfig   `envPrefix:"LEDGER_"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// DatabaseConfig selects PostgreSQL; an empty URL keeps all stores in memory.
type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	TxTimeout       time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig selects the shared institution cache; an empty URL uses an
// in-process cache instead.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

// KafkaConfig enables the ledger event stream when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"bursar.ledger-events"`
}

type TracingConfig struct {
	Endpoint    string `env:"EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"bursar"`
}

// LedgerConfig holds the business policy switches.
type LedgerConfig struct {
	// DepositPolicy is "open" (any identity may fund an institution) or
	// "owner" (deposits require the institution capability).
	DepositPolicy          string `env:"DEPOSIT_POLICY" envDefault:"open"`
	OneInstitutionPerOwner bool   `env:"ONE_INSTITUTION_PER_OWNER" envDefault:"true"`
	CapabilityHashCost     int    `env:"CAPABILITY_HASH_COST" envDefault:"10"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate rejects combinations env parsing cannot catch.
func (c Server) Validate() error {
	switch strings.ToLower(c.Ledger.DepositPolicy) {
	case DepositPolicyOpen, DepositPolicyOwner:
	default:
		return fmt.Errorf("invalid LEDGER_DEPOSIT_POLICY %q: want %q or %q", c.Ledger.DepositPolicy, DepositPolicyOpen, DepositPolicyOwner)
	}
	if c.Ledger.CapabilityHashCost < 4 || c.Ledger.CapabilityHashCost > 31 {
		return fmt.Errorf("invalid LEDGER_CAPABILITY_HASH_COST %d: want 4..31", c.Ledger.CapabilityHashCost)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}
