package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
	Resolver ResolverConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"dev"`
	HTTPPort        string        `envconfig:"HTTP_PORT" default:":8083"`
	GRPCPort        string        `envconfig:"GRPC_PORT" default:":8084"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ImportRateLimit int           `envconfig:"IMPORT_RATE_LIMIT_PER_MINUTE" default:"600"`
}

type LoggerConfig struct {
	Level             string `envconfig:"LOGGER_LEVEL" default:"debug"`
	Encoding          string `envconfig:"LOGGER_ENCODING" default:"console"`
	DisableCaller     bool   `envconfig:"LOGGER_DISABLE_CALLER" default:"false"`
	DisableStacktrace bool   `envconfig:"LOGGER_DISABLE_STACKTRACE" default:"true"`
}

type PostgresConfig struct {
	Host            string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port            string `envconfig:"POSTGRES_PORT" default:"5433"`
	User            string `envconfig:"POSTGRES_USER" default:"omnipos"`
	Password        string `envconfig:"POSTGRES_PASSWORD" default:"omnipos"`
	DBName          string `envconfig:"POSTGRES_DB" default:"omnipos_shelf"`
	SSLMode         string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxOpenConns    int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int    `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime int    `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"300"`
	ConnMaxIdleTime int    `envconfig:"POSTGRES_CONN_MAX_IDLE_TIME" default:"60"`
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC_SCANS" default:"shelf.scans"`
	GroupID string   `envconfig:"KAFKA_GROUP_SHELF" default:"shelf-assign"`
}

type ResolverConfig struct {
	// first | strict
	TieBreak string `envconfig:"RESOLVER_TIE_BREAK" default:"first"`
}

type TracingConfig struct {
	Enabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4318"`
	Insecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	SampleRatio float64 `envconfig:"OTEL_SAMPLER_RATIO" default:"0.1"`
	ServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"omnipos-shelf-service"`
}

func LoadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Resolver.TieBreak != "first" && cfg.Resolver.TieBreak != "strict" {
		return nil, fmt.Errorf("config: RESOLVER_TIE_BREAK must be first or strict, got %q", cfg.Resolver.TieBreak)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs with developer-friendly logging.
func (c *Config) IsDevelopment() bool {
	return c != nil && (c.Server.AppEnv == "dev" || c.Server.AppEnv == "development")
}

func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + p.Port,
		Path:   p.DBName,
	}
	q := u.Query()
	q.Set("sslmode", p.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
