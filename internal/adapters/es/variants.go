package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/nimafallahian/variant-publisher/internal/domain"
)

// Error values returned by the connection for callers to react to.
var (
	ErrTooManyRequests = fmt.Errorf("elasticsearch: too many requests (429)")
	ErrServerError     = fmt.Errorf("elasticsearch: server error (5xx)")
)

// VariantsConnection implements ports.VariantsConnection on top of the
// Elasticsearch Bulk API. Each variant becomes one document keyed by its id.
type VariantsConnection struct {
	client *elasticsearch.Client
	index  string
}

// NewVariantsConnection constructs a new VariantsConnection.
func NewVariantsConnection(client *elasticsearch.Client, index string) (*VariantsConnection, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	if index == "" {
		return nil, fmt.Errorf("index must not be empty")
	}
	return &VariantsConnection{
		client: client,
		index:  index,
	}, nil
}

type variantDocument struct {
	ID           string   `json:"id"`
	OptionValues []string `json:"option_values"`
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// ImportProductVariants implements ports.VariantsConnection. Transport
// failures, throttling and server errors are returned as errors; any other
// rejection is reported through a result with Status false.
func (c *VariantsConnection) ImportProductVariants(ctx context.Context, req *domain.ImportVariantsRequest) (domain.ImportResult, error) {
	if req == nil || len(req.Variants()) == 0 {
		return domain.ImportResult{Status: true}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, v := range req.Variants() {
		// Action line
		meta := map[string]any{
			"index": map[string]any{
				"_index": c.index,
				"_id":    v.ID(),
			},
		}
		if err := enc.Encode(meta); err != nil {
			return domain.ImportResult{}, fmt.Errorf("encode bulk meta: %w", err)
		}

		// Document line
		doc := variantDocument{ID: v.ID(), OptionValues: v.OptionValues()}
		if doc.OptionValues == nil {
			doc.OptionValues = []string{}
		}
		if err := enc.Encode(doc); err != nil {
			return domain.ImportResult{}, fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := c.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		c.client.Bulk.WithContext(ctx),
		c.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("bulk request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusTooManyRequests {
		return domain.ImportResult{}, ErrTooManyRequests
	}

	if res.StatusCode >= 500 && res.StatusCode <= 599 {
		return domain.ImportResult{}, ErrServerError
	}

	if res.IsError() {
		return domain.ImportResult{Status: false, Message: fmt.Sprintf("bulk error: %s", res.String())}, nil
	}

	var body struct {
		Errors bool                  `json:"errors"`
		Items  []map[string]bulkItem `json:"items"`
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return domain.ImportResult{}, fmt.Errorf("decode bulk response: %w", err)
	}

	if !body.Errors {
		return domain.ImportResult{Status: true}, nil
	}

	var rejected []string
	for _, item := range body.Items {
		for _, v := range item {
			switch {
			case v.Status == http.StatusConflict:
				// 409 Conflict: ignore.
				continue
			case v.Status == http.StatusTooManyRequests:
				return domain.ImportResult{}, ErrTooManyRequests
			case v.Status >= 500 && v.Status <= 599:
				return domain.ImportResult{}, ErrServerError
			case v.Status >= 400:
				reason := http.StatusText(v.Status)
				if v.Error != nil {
					reason = v.Error.Type + ": " + v.Error.Reason
				}
				rejected = append(rejected, fmt.Sprintf("%s (%s)", v.ID, reason))
			}
		}
	}

	if len(rejected) == 0 {
		return domain.ImportResult{Status: true}, nil
	}
	return domain.ImportResult{
		Status: false,
		Message: fmt.Sprintf("%d of %d variants rejected: %s",
			len(rejected), len(req.Variants()), strings.Join(rejected, "; ")),
	}, nil
}
