package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendDynamo   = "dynamodb"
	BackendPostgres = "postgres"
)

// Order number strategies.
const (
	SequenceCount   = "count"
	SequenceCounter = "counter"
	SequenceRedis   = "redis"
)

// Event and metrics backends.
const (
	EventsNone   = "none"
	EventsSQS    = "sqs"
	EventsKafka  = "kafka"
	MetricsNone  = "none"
	MetricsProm  = "prometheus"
	MetricsCloud = "cloudwatch"
)

// Config holds all settings for the API, worker and CLI.
type Config struct {
	Service  string         `yaml:"service"`
	LogLevel string         `yaml:"log_level"`
	RunLocal bool           `yaml:"run_local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	AWS      AWSConfig      `yaml:"aws"`
	Postgres PostgresConfig `yaml:"postgres"`
	Ordering OrderingConfig `yaml:"ordering"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type HTTPConfig struct {
	Port            int      `yaml:"port"`
	CORSAllowOrigin []string `yaml:"cors_allow_origin"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Seed    bool   `yaml:"seed"`
}

// AWSConfig names the DynamoDB tables and the SQS queue.
type AWSConfig struct {
	Region           string        `yaml:"region"`
	Endpoint         string        `yaml:"endpoint"`
	OrdersTable      string        `yaml:"orders_table"`
	PizzasTable      string        `yaml:"pizzas_table"`
	CountersTable    string        `yaml:"counters_table"`
	IdempotencyTable string        `yaml:"idempotency_table"`
	IdempotencyTTL   time.Duration `yaml:"idempotency_ttl"`
	QueueURL         string        `yaml:"queue_url"`
}

type PostgresConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// OrderingConfig tunes order creation.
type OrderingConfig struct {
	PickupLeadTime   time.Duration `yaml:"pickup_lead_time"`
	SequenceStrategy string        `yaml:"sequence_strategy"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EventsConfig struct {
	Backend      string   `yaml:"backend"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
}

type MetricsConfig struct {
	Backend   string `yaml:"backend"`
	Namespace string `yaml:"namespace"`
}

type TracingConfig struct {
	JaegerEndpoint string `yaml:"jaeger_endpoint"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Service:  "royal-pizza",
		LogLevel: "info",
		HTTP: HTTPConfig{
			Port:            8080,
			CORSAllowOrigin: []string{"*"},
		},
		Storage: StorageConfig{Backend: BackendDynamo},
		AWS: AWSConfig{
			Region:           "us-east-1",
			OrdersTable:      "orders",
			PizzasTable:      "pizzas",
			CountersTable:    "order_counters",
			IdempotencyTable: "idempotency",
			IdempotencyTTL:   48 * time.Hour,
		},
		Postgres: PostgresConfig{MaxConns: 25, MinConns: 5},
		Ordering: OrderingConfig{
			PickupLeadTime:   30 * time.Minute,
			SequenceStrategy: SequenceCount,
		},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Events:  EventsConfig{Backend: EventsNone, KafkaTopic: "orders.placed"},
		Metrics: MetricsConfig{Backend: MetricsProm, Namespace: "royal_pizza"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = splitList(v)
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("SERVICE_NAME", &c.Service)
	str("LOG_LEVEL", &c.LogLevel)
	if err := boolean("RUN_LOCAL", &c.RunLocal); err != nil {
		return err
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.HTTP.Port = port
	}
	list("CORS_ALLOW_ORIGIN", &c.HTTP.CORSAllowOrigin)

	str("STORAGE_BACKEND", &c.Storage.Backend)
	if err := boolean("DATABASE_SEED", &c.Storage.Seed); err != nil {
		return err
	}

	str("AWS_REGION", &c.AWS.Region)
	str("AWS_ENDPOINT_OVERRIDE", &c.AWS.Endpoint)
	str("ORDERS_TABLE", &c.AWS.OrdersTable)
	str("PIZZAS_TABLE", &c.AWS.PizzasTable)
	str("COUNTERS_TABLE", &c.AWS.CountersTable)
	str("IDEMPOTENCY_TABLE", &c.AWS.IdempotencyTable)
	str("ORDERS_QUEUE_URL", &c.AWS.QueueURL)

	str("DATABASE_URL", &c.Postgres.URL)

	if v, ok := lookup("PICKUP_LEAD_TIME"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PICKUP_LEAD_TIME: %w", err)
		}
		c.Ordering.PickupLeadTime = d
	}
	str("SEQUENCE_STRATEGY", &c.Ordering.SequenceStrategy)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)

	str("EVENTS_BACKEND", &c.Events.Backend)
	list("KAFKA_BROKERS", &c.Events.KafkaBrokers)
	str("KAFKA_TOPIC", &c.Events.KafkaTopic)

	str("METRICS_BACKEND", &c.Metrics.Backend)
	str("JAEGER_ENDPOINT", &c.Tracing.JaegerEndpoint)
	return nil
}

// Validate rejects unknown backends and settings that cannot work together.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendDynamo:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			errs = append(errs, errors.New("postgres backend requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	switch c.Ordering.SequenceStrategy {
	case SequenceCount, SequenceRedis:
	case SequenceCounter:
		if c.Storage.Backend != BackendDynamo {
			errs = append(errs, errors.New("counter sequence strategy requires the dynamodb backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sequence strategy %q", c.Ordering.SequenceStrategy))
	}

	switch c.Events.Backend {
	case EventsNone, EventsSQS:
	case EventsKafka:
		if len(c.Events.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("kafka events backend requires KAFKA_BROKERS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events backend %q", c.Events.Backend))
	}

	switch c.Metrics.Backend {
	case MetricsNone, MetricsProm, MetricsCloud:
	default:
		errs = append(errs, fmt.Errorf("unknown metrics backend %q", c.Metrics.Backend))
	}

	if c.Ordering.PickupLeadTime < 0 {
		errs = append(errs, errors.New("pickup lead time must not be negative"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
