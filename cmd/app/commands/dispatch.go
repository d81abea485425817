package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
)

// RunDispatch drains the sync queue of one store once and prints the report.
// Items are sent in chronological order and the drain stops at the first transient failure.
func RunDispatch(
	ctx context.Context,
	dispatcher outboxUseCase.DispatcherUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeID string,
	format string,
) error {
	id, err := parseUUIDArg("store id", storeID)
	if err != nil {
		return err
	}

	logger.Info("dispatching store queue", slog.String("store_id", id.String()))

	report, err := dispatcher.DispatchStore(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to dispatch store queue: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputDispatchText(writer, report)
	}

	logger.Info("dispatch completed",
		slog.String("store_id", id.String()),
		slog.Int("fetched", report.Fetched),
		slog.Int("synced", report.Synced),
		slog.Int("retrying", report.Retrying),
		slog.Int("dead_lettered", report.DeadLettered),
	)

	return nil
}

func outputDispatchText(writer io.Writer, report *outboxUseCase.DispatchReport) {
	_, _ = fmt.Fprintf(writer, "Store:          %s\n", report.StoreID)
	_, _ = fmt.Fprintf(writer, "Fetched:        %d\n", report.Fetched)
	_, _ = fmt.Fprintf(writer, "Synced:         %d\n", report.Synced)
	_, _ = fmt.Fprintf(writer, "Retrying:       %d\n", report.Retrying)
	_, _ = fmt.Fprintf(writer, "Dead-lettered:  %d\n", report.DeadLettered)
	if report.Aborted {
		_, _ = fmt.Fprintf(writer, "\nDrain aborted before the queue was exhausted\n")
	}
}
