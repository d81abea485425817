package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	outboxMocks "github.com/allisson/storesync/internal/outbox/usecase/mocks"
)

func TestRunPurgeSynced(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		mockStore := &outboxMocks.MockOutboxStore{}
		mockStore.On("PurgeSynced", ctx, 7*24*time.Hour).Return(int64(12), nil)

		var out bytes.Buffer
		err := RunPurgeSynced(ctx, mockStore, logger, &out, 7, "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Successfully purged 12 synced item(s) older than 7 day(s)")
		mockStore.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockStore := &outboxMocks.MockOutboxStore{}
		mockStore.On("PurgeSynced", ctx, 24*time.Hour).Return(int64(3), nil)

		var out bytes.Buffer
		err := RunPurgeSynced(ctx, mockStore, logger, &out, 1, "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"count": 3`)
		require.Contains(t, out.String(), `"days": 1`)
		mockStore.AssertExpectations(t)
	})

	t.Run("invalid-days", func(t *testing.T) {
		mockStore := &outboxMocks.MockOutboxStore{}
		err := RunPurgeSynced(ctx, mockStore, logger, &bytes.Buffer{}, 0, "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "days must be a positive number")
	})
}
