package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	elasticclient "github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/nimafallahian/variant-publisher/internal/adapters/connector"
	esadapter "github.com/nimafallahian/variant-publisher/internal/adapters/es"
	kafkaadapter "github.com/nimafallahian/variant-publisher/internal/adapters/kafka"
	natsadapter "github.com/nimafallahian/variant-publisher/internal/adapters/nats"
	"github.com/nimafallahian/variant-publisher/internal/adapters/postgres"
	"github.com/nimafallahian/variant-publisher/internal/config"
	"github.com/nimafallahian/variant-publisher/internal/domain"
	"github.com/nimafallahian/variant-publisher/internal/logging"
	"github.com/nimafallahian/variant-publisher/internal/ports"
	"github.com/nimafallahian/variant-publisher/internal/service"
)

type busConsumer interface {
	ports.MessageConsumer
	Close() error
}

func main() {
	logger := logging.New(os.Stdout, "INFO")
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("service terminated with error", "error", err)
		os.Exit(1)
	}
}

// run wires the publisher and blocks until a shutdown signal arrives or a
// component stops with an error.
func run(logger *slog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to catalog database: %w", err)
	}
	defer pool.Close()

	fetcher, err := postgres.NewVariantFetcher(pool, cfg.VariantsTable)
	if err != nil {
		return fmt.Errorf("create variant fetcher: %w", err)
	}

	esClient, err := elasticclient.NewClient(elasticclient.Config{
		Addresses: cfg.ElasticURLs,
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	registry := connector.NewRegistry()
	registry.Register(service.ServiceNameVariants, func(context.Context) (ports.VariantsConnection, error) {
		conn, err := esadapter.NewVariantsConnection(esClient, cfg.ElasticIndex)
		if err != nil {
			return nil, err
		}
		return conn, nil
	})

	bus, err := newBusConsumer(logger, cfg)
	if err != nil {
		return fmt.Errorf("create %s message bus consumer: %w", cfg.BusDriver, err)
	}
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			logger.Error("failed to close message bus consumer", "error", cerr)
		}
	}()

	dispatcher := service.NewDispatcher(logger, bus, cfg.WorkerCount)
	dispatcher.Register(domain.EventTypeVariantsUpdated, service.NewPublishVariantsConsumer(logger, fetcher, registry))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Start(ctx)
	})

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("variant publisher started", "bus", cfg.BusDriver, "workers", cfg.WorkerCount)

	return g.Wait()
}

func newBusConsumer(logger *slog.Logger, cfg *config.Config) (busConsumer, error) {
	if cfg.BusDriver == config.BusDriverNATS {
		c, err := natsadapter.NewConsumer(logger, cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueue)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := kafkaadapter.NewConsumer(logger, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	if err != nil {
		return nil, err
	}
	return c, nil
}
