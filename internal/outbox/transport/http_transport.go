// Package transport delivers outbox items to the remote authority over HTTP or AMQP.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/allisson/storesync/internal/outbox/domain"
)

// maxResponseBody bounds how much of a remote response is kept for diagnostics.
const maxResponseBody = 64 * 1024

// HTTPTransport POSTs the item payload to {baseURL}/{api_endpoint}.
//
// Every request carries the item id as Idempotency-Key so a retry after a lost response is
// deduplicated remotely.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport creates an HTTPTransport with the given request timeout.
func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return NewHTTPTransportWithClient(baseURL, &http.Client{Timeout: timeout})
}

// NewHTTPTransportWithClient creates an HTTPTransport using client.
func NewHTTPTransportWithClient(baseURL string, client *http.Client) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Send delivers one item. Any 2xx is a success; a 422 means the remote rejected the payload
// schema and is reported as domain.ErrPayloadRejected.
func (t *HTTPTransport) Send(ctx context.Context, item *domain.OutboxItem) (*domain.SendResult, error) {
	url := t.baseURL + "/" + strings.TrimLeft(item.APIEndpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(item.Payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", item.ID.String())
	req.Header.Set("X-Store-Id", item.StoreID.String())
	req.Header.Set("X-Entity-Type", string(item.EntityType))
	req.Header.Set("X-Entity-Id", item.EntityID.String())
	req.Header.Set("X-Operation", string(item.Operation))
	req.Header.Set("X-Sync-Attempt", strconv.Itoa(item.SyncAttempts+1))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read sync response: %w", err)
	}

	result := &domain.SendResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		HTTPStatus: resp.StatusCode,
		Body:       string(body),
	}

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return result, fmt.Errorf("remote responded with status %d: %w", resp.StatusCode, domain.ErrPayloadRejected)
	}
	return result, nil
}
