package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimafallahian/variant-publisher/internal/domain"
	"github.com/nimafallahian/variant-publisher/internal/logging"
	"github.com/nimafallahian/variant-publisher/internal/ports"
)

// ServiceNameVariants is the logical name under which the connector exposes
// the storefront variants service.
const ServiceNameVariants = "variants"

// PublishVariantsConsumer publishes product variants of changed entities to
// the storefront variants service. It never reports failure to its caller:
// every problem ends up in the log.
type PublishVariantsConsumer struct {
	logger    *slog.Logger
	fetcher   ports.VariantFetcher
	connector ports.Connector
}

// NewPublishVariantsConsumer constructs a new PublishVariantsConsumer.
func NewPublishVariantsConsumer(logger *slog.Logger, fetcher ports.VariantFetcher, connector ports.Connector) *PublishVariantsConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishVariantsConsumer{
		logger:    logger,
		fetcher:   fetcher,
		connector: connector,
	}
}

// Execute fetches the variants of entityIDs and submits them in a single
// import request. Scope is accepted for the bus contract only; variant data
// is not scoped.
func (c *PublishVariantsConsumer) Execute(ctx context.Context, entityIDs []string, scope string) {
	if len(entityIDs) == 0 {
		return
	}

	records, err := c.fetcher.FetchVariants(ctx, entityIDs)
	if err != nil {
		variantBatchesTotal.WithLabelValues(outcomeLabelFailed).Inc()
		c.logger.Log(ctx, logging.LevelCritical, "Exception while fetching product variants",
			"error", err.Error(), "entities", len(entityIDs), "scope", scope)
		return
	}

	builder := domain.NewVariantImportBuilder()
	variants := make([]domain.VariantImport, 0, len(records))
	for _, record := range records {
		variants = append(variants, builder.SetData(record).Build())
	}

	if len(variants) == 0 {
		variantBatchesTotal.WithLabelValues(outcomeLabelEmpty).Inc()
		return
	}

	out := c.importVariants(ctx, variants)
	switch out.kind {
	case outcomeImported:
		variantBatchesTotal.WithLabelValues(outcomeLabelImported).Inc()
		variantsPublishedTotal.Add(float64(len(variants)))
	case outcomeRejected:
		variantBatchesTotal.WithLabelValues(outcomeLabelRejected).Inc()
		c.logger.ErrorContext(ctx, fmt.Sprintf("Product variants import failed: %q", out.message),
			"variants", len(variants))
	case outcomeFailed:
		variantBatchesTotal.WithLabelValues(outcomeLabelFailed).Inc()
		c.logger.Log(ctx, logging.LevelCritical, fmt.Sprintf("Exception while publishing product variants: %q", out.err.Error()),
			"variants", len(variants))
	}
}

type outcomeKind int

const (
	outcomeImported outcomeKind = iota
	outcomeRejected
	outcomeFailed
)

// importOutcome is the result of one downstream submission.
type importOutcome struct {
	kind    outcomeKind
	message string
	err     error
}

// importVariants submits variants and folds every possible failure,
// panics included, into an importOutcome.
func (c *PublishVariantsConsumer) importVariants(ctx context.Context, variants []domain.VariantImport) (out importOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = importOutcome{kind: outcomeFailed, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	req := domain.NewImportVariantsRequest()
	req.SetVariants(variants)

	conn, err := c.connector.GetConnection(ctx, ServiceNameVariants)
	if err != nil {
		return importOutcome{kind: outcomeFailed, err: fmt.Errorf("get connection %q: %w", ServiceNameVariants, err)}
	}

	start := time.Now()
	res, err := conn.ImportProductVariants(ctx, req)
	variantImportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return importOutcome{kind: outcomeFailed, err: fmt.Errorf("import product variants: %w", err)}
	}
	if !res.Status {
		return importOutcome{kind: outcomeRejected, message: res.Message}
	}
	return importOutcome{kind: outcomeImported}
}
