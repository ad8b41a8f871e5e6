package ports

import (
	"context"

	"github.com/nimafallahian/variant-publisher/internal/domain"
)

// VariantFetcher resolves entity ids into variant records. Ids without
// variant data are omitted from the result rather than reported as errors.
type VariantFetcher interface {
	FetchVariants(ctx context.Context, entityIDs []string) ([]domain.VariantRecord, error)
}

// VariantsConnection is a live connection to the storefront variants service.
type VariantsConnection interface {
	// ImportProductVariants submits the request. A returned error is an
	// infrastructure failure; a result with Status false is a rejection by
	// the service.
	ImportProductVariants(ctx context.Context, req *domain.ImportVariantsRequest) (domain.ImportResult, error)
}

// Connector resolves a logical service name to a connection.
type Connector interface {
	GetConnection(ctx context.Context, serviceName string) (VariantsConnection, error)
}
