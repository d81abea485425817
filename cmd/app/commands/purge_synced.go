package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
)

// RunPurgeSynced deletes delivered sync items older than the given number of days across
// every store. Failed and dead-lettered items are never purged.
func RunPurgeSynced(
	ctx context.Context,
	store outboxUseCase.OutboxStore,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 1 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	retention := time.Duration(days) * 24 * time.Hour
	logger.Info("purging synced items", slog.Int("days", days))

	count, err := store.PurgeSynced(ctx, retention)
	if err != nil {
		return fmt.Errorf("failed to purge synced items: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"count": count,
			"days":  days,
		}
		if err := writeJSON(writer, result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully purged %d synced item(s) older than %d day(s)\n", count, days)
	}

	logger.Info("purge completed", slog.Int64("count", count), slog.Int("days", days))
	return nil
}
