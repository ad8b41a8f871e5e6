package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported message bus drivers.
const (
	BusDriverKafka = "kafka"
	BusDriverNATS  = "nats"
)

// Config holds the runtime configuration for the variant publisher.
type Config struct {
	BusDriver string `env:"BUS_DRIVER" envDefault:"kafka"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"product_variants"`
	KafkaGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"variant-publisher"`

	NATSURL     string `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"product_variants"`
	NATSQueue   string `env:"NATS_QUEUE" envDefault:"variant-publisher"`

	DatabaseURL   string `env:"DATABASE_URL,notEmpty"`
	VariantsTable string `env:"VARIANTS_TABLE" envDefault:"catalog_product_variants"`

	ElasticURLs  []string `env:"ELASTIC_URLS,notEmpty" envSeparator:","`
	ElasticIndex string   `env:"ELASTIC_INDEX" envDefault:"storefront_variants"`

	WorkerCount int    `env:"WORKER_COUNT" envDefault:"5"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

// Load parses environment variables into Config. A .env file in the working
// directory, if present, fills variables that are not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	switch cfg.BusDriver {
	case BusDriverKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required for the kafka bus driver")
		}
	case BusDriverNATS:
	default:
		return nil, fmt.Errorf("unsupported BUS_DRIVER %q", cfg.BusDriver)
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}
