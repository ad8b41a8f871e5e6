package config

import (
	"os"
	"testing"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BUS_DRIVER", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "catalog.variants")
	t.Setenv("KAFKA_GROUP_ID", "variants-consumer")
	t.Setenv("DATABASE_URL", "postgres://catalog@db:5432/catalog")
	t.Setenv("VARIANTS_TABLE", "catalog.variants")
	t.Setenv("ELASTIC_URLS", "http://es1:9200,http://es2:9200")
	t.Setenv("ELASTIC_INDEX", "variants-index")
	t.Setenv("WORKER_COUNT", "10")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got, want := len(cfg.KafkaBrokers), 2; got != want {
		t.Fatalf("expected %d kafka brokers, got %d", want, got)
	}
	if cfg.KafkaBrokers[0] != "broker1:9092" || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Fatalf("unexpected kafka brokers: %#v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "catalog.variants" {
		t.Fatalf("expected KafkaTopic=catalog.variants, got %s", cfg.KafkaTopic)
	}
	if cfg.KafkaGroupID != "variants-consumer" {
		t.Fatalf("expected KafkaGroupID=variants-consumer, got %s", cfg.KafkaGroupID)
	}
	if cfg.DatabaseURL != "postgres://catalog@db:5432/catalog" {
		t.Fatalf("unexpected DatabaseURL: %s", cfg.DatabaseURL)
	}
	if cfg.VariantsTable != "catalog.variants" {
		t.Fatalf("expected VariantsTable=catalog.variants, got %s", cfg.VariantsTable)
	}
	if got, want := len(cfg.ElasticURLs), 2; got != want {
		t.Fatalf("expected %d elastic urls, got %d", want, got)
	}
	if cfg.ElasticURLs[0] != "http://es1:9200" || cfg.ElasticURLs[1] != "http://es2:9200" {
		t.Fatalf("unexpected elastic urls: %#v", cfg.ElasticURLs)
	}
	if cfg.ElasticIndex != "variants-index" {
		t.Fatalf("expected ElasticIndex=variants-index, got %s", cfg.ElasticIndex)
	}
	if cfg.WorkerCount != 10 {
		t.Fatalf("expected WorkerCount=10, got %d", cfg.WorkerCount)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("expected LogLevel=DEBUG, got %s", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9999" {
		t.Fatalf("expected MetricsAddr=:9999, got %s", cfg.MetricsAddr)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// Ensure env is clear for these keys.
	for _, key := range []string{
		"BUS_DRIVER", "KAFKA_TOPIC", "KAFKA_GROUP_ID", "NATS_URL", "NATS_SUBJECT", "NATS_QUEUE",
		"VARIANTS_TABLE", "ELASTIC_INDEX", "WORKER_COUNT", "LOG_LEVEL", "METRICS_ADDR",
	} {
		_ = os.Unsetenv(key)
	}

	t.Setenv("KAFKA_BROKERS", "broker1:9092")
	t.Setenv("DATABASE_URL", "postgres://catalog@db:5432/catalog")
	t.Setenv("ELASTIC_URLS", "http://es1:9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BusDriver != BusDriverKafka {
		t.Fatalf("expected default BusDriver=kafka, got %s", cfg.BusDriver)
	}
	if cfg.KafkaTopic != "product_variants" {
		t.Fatalf("expected default KafkaTopic=product_variants, got %s", cfg.KafkaTopic)
	}
	if cfg.KafkaGroupID != "variant-publisher" {
		t.Fatalf("expected default KafkaGroupID=variant-publisher, got %s", cfg.KafkaGroupID)
	}
	if cfg.NATSSubject != "product_variants" || cfg.NATSQueue != "variant-publisher" {
		t.Fatalf("unexpected NATS defaults: %s %s", cfg.NATSSubject, cfg.NATSQueue)
	}
	if cfg.VariantsTable != "catalog_product_variants" {
		t.Fatalf("expected default VariantsTable=catalog_product_variants, got %s", cfg.VariantsTable)
	}
	if cfg.ElasticIndex != "storefront_variants" {
		t.Fatalf("expected default ElasticIndex=storefront_variants, got %s", cfg.ElasticIndex)
	}
	if cfg.WorkerCount != 5 {
		t.Fatalf("expected default WorkerCount=5, got %d", cfg.WorkerCount)
	}
	if cfg.LogLevel != "INFO" {
		t.Fatalf("expected default LogLevel=INFO, got %s", cfg.LogLevel)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("expected default MetricsAddr=:9090, got %s", cfg.MetricsAddr)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "kafka without brokers",
			env:  map[string]string{"BUS_DRIVER": "kafka", "KAFKA_BROKERS": ""},
		},
		{
			name: "unknown driver",
			env:  map[string]string{"BUS_DRIVER": "amqp"},
		},
		{
			name: "missing database",
			env:  map[string]string{"BUS_DRIVER": "nats", "DATABASE_URL": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://catalog@db:5432/catalog")
			t.Setenv("ELASTIC_URLS", "http://es1:9200")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestLoadConfigNATSWithoutBrokers(t *testing.T) {
	t.Setenv("BUS_DRIVER", "nats")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DATABASE_URL", "postgres://catalog@db:5432/catalog")
	t.Setenv("ELASTIC_URLS", "http://es1:9200")
	t.Setenv("WORKER_COUNT", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.WorkerCount != 1 {
		t.Fatalf("expected WorkerCount coerced to 1, got %d", cfg.WorkerCount)
	}
}
