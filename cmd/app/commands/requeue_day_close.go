package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	businessDayUseCase "github.com/allisson/storesync/internal/businessday/usecase"
	"github.com/allisson/storesync/internal/session"
)

// RunRequeueDayClose enqueues the day_close sync item of a CLOSED business day. It is a
// no-op when a live item already exists. The operator is recorded as an admin session.
func RunRequeueDayClose(
	ctx context.Context,
	dayCloseUseCase businessDayUseCase.DayCloseUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeID string,
	dayID string,
	userID string,
	format string,
) error {
	store, err := parseUUIDArg("store id", storeID)
	if err != nil {
		return err
	}

	day, err := parseUUIDArg("day id", dayID)
	if err != nil {
		return err
	}

	operator := uuid.Nil
	if userID != "" {
		if operator, err = parseUUIDArg("user id", userID); err != nil {
			return err
		}
	}

	sess := session.Session{StoreID: store, UserID: operator, Role: session.RoleAdmin}

	logger.Info("requeueing day close",
		slog.String("store_id", store.String()),
		slog.String("day_id", day.String()),
	)

	item, err := dayCloseUseCase.RequeueForSync(ctx, sess, day)
	if err != nil {
		return fmt.Errorf("failed to requeue day close: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"item_id":  item.ID,
			"day_id":   day,
			"status":   item.Status(),
			"attempts": item.SyncAttempts,
		}
		if err := writeJSON(writer, result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Day close %s queued as item %s (%s)\n", day, item.ID, item.Status())
	}

	logger.Info("day close requeued", slog.String("item_id", item.ID.String()))
	return nil
}
