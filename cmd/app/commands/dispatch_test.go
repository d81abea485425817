package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
	outboxMocks "github.com/allisson/storesync/internal/outbox/usecase/mocks"
)

func TestRunDispatch(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	storeID := uuid.New()

	report := &outboxUseCase.DispatchReport{
		StoreID:      storeID,
		Fetched:      4,
		Synced:       2,
		Retrying:     1,
		DeadLettered: 1,
	}

	t.Run("text-output", func(t *testing.T) {
		mockDispatcher := &outboxMocks.MockDispatcherUseCase{}
		mockDispatcher.On("DispatchStore", ctx, storeID).Return(report, nil)

		var out bytes.Buffer
		err := RunDispatch(ctx, mockDispatcher, logger, &out, storeID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Synced:         2")
		require.Contains(t, out.String(), "Dead-lettered:  1")
		require.NotContains(t, out.String(), "aborted")
		mockDispatcher.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		mockDispatcher := &outboxMocks.MockDispatcherUseCase{}
		mockDispatcher.On("DispatchStore", ctx, storeID).Return(report, nil)

		var out bytes.Buffer
		err := RunDispatch(ctx, mockDispatcher, logger, &out, storeID.String(), "json")

		require.NoError(t, err)
		require.Contains(t, out.String(), `"fetched": 4`)
		require.Contains(t, out.String(), `"store_id": "`+storeID.String()+`"`)
		mockDispatcher.AssertExpectations(t)
	})

	t.Run("aborted-drain", func(t *testing.T) {
		aborted := &outboxUseCase.DispatchReport{StoreID: storeID, Fetched: 3, Synced: 1, Aborted: true}
		mockDispatcher := &outboxMocks.MockDispatcherUseCase{}
		mockDispatcher.On("DispatchStore", ctx, storeID).Return(aborted, nil)

		var out bytes.Buffer
		err := RunDispatch(ctx, mockDispatcher, logger, &out, storeID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), "Drain aborted")
	})

	t.Run("invalid-store-id", func(t *testing.T) {
		mockDispatcher := &outboxMocks.MockDispatcherUseCase{}
		err := RunDispatch(ctx, mockDispatcher, logger, &bytes.Buffer{}, "not-a-uuid", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid store id")
		mockDispatcher.AssertNotCalled(t, "DispatchStore")
	})

	t.Run("dispatch-error", func(t *testing.T) {
		mockDispatcher := &outboxMocks.MockDispatcherUseCase{}
		mockDispatcher.On("DispatchStore", ctx, storeID).Return(nil, errors.New("database down"))

		err := RunDispatch(ctx, mockDispatcher, logger, &bytes.Buffer{}, storeID.String(), "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to dispatch store queue")
		mockDispatcher.AssertExpectations(t)
	})
}
