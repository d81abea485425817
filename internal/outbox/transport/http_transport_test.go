package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storesync/internal/outbox/domain"
)

func newItem() *domain.OutboxItem {
	return &domain.OutboxItem{
		ID:           uuid.Must(uuid.NewV7()),
		StoreID:      uuid.New(),
		EntityType:   domain.EntityTypePack,
		EntityID:     uuid.New(),
		Operation:    domain.OperationActivate,
		Payload:      json.RawMessage(`{"pack_number":"0042"}`),
		APIEndpoint:  "packs/activate",
		SyncAttempts: 2,
	}
}

func TestHTTPTransport_Send(t *testing.T) {
	item := newItem()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/packs/activate", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, item.ID.String(), r.Header.Get("Idempotency-Key"))
			assert.Equal(t, item.StoreID.String(), r.Header.Get("X-Store-Id"))
			assert.Equal(t, "pack", r.Header.Get("X-Entity-Type"))
			assert.Equal(t, "ACTIVATE", r.Header.Get("X-Operation"))
			assert.Equal(t, "3", r.Header.Get("X-Sync-Attempt"))

			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			assert.JSONEq(t, `{"pack_number":"0042"}`, string(body))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"remote-1"}`))
		}))
		defer server.Close()

		transport := NewHTTPTransport(server.URL+"/api/", time.Second)
		result, err := transport.Send(context.Background(), item)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, http.StatusCreated, result.HTTPStatus)
		assert.Equal(t, `{"id":"remote-1"}`, result.Body)
	})

	t.Run("error status is a result, not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		result, err := NewHTTPTransport(server.URL, time.Second).Send(context.Background(), item)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, http.StatusServiceUnavailable, result.HTTPStatus)
	})

	t.Run("unprocessable payload is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"unknown field"}`))
		}))
		defer server.Close()

		result, err := NewHTTPTransport(server.URL, time.Second).Send(context.Background(), item)
		assert.ErrorIs(t, err, domain.ErrPayloadRejected)
		require.NotNil(t, result)
		assert.Equal(t, http.StatusUnprocessableEntity, result.HTTPStatus)

		outcome, ok := domain.Classify(result, err, time.Now())
		assert.False(t, ok)
		assert.Equal(t, domain.ErrorCategoryStructural, outcome.Category)
	})

	t.Run("unreachable remote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		result, err := NewHTTPTransport(url, time.Second).Send(context.Background(), item)
		assert.Error(t, err)
		assert.Nil(t, result)

		outcome, ok := domain.Classify(result, err, time.Now())
		assert.False(t, ok)
		assert.Equal(t, domain.ErrorCategoryTransient, outcome.Category)
	})

	t.Run("response body is truncated", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write(make([]byte, maxResponseBody+100))
		}))
		defer server.Close()

		result, err := NewHTTPTransport(server.URL, time.Second).Send(context.Background(), item)
		require.NoError(t, err)
		assert.Len(t, result.Body, maxResponseBody)
	})
}
