package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
)

// RunDeadLetterStats prints the dead-letter queue summary of a store.
func RunDeadLetterStats(
	ctx context.Context,
	deadLetterUseCase outboxUseCase.DeadLetterUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeID string,
	format string,
) error {
	id, err := parseUUIDArg("store id", storeID)
	if err != nil {
		return err
	}

	stats, err := deadLetterUseCase.Stats(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load dead-letter stats: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, stats); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputStatsText(writer, stats)
	}

	logger.Info("dead-letter stats loaded",
		slog.String("store_id", id.String()),
		slog.Int64("total", stats.Total),
	)
	return nil
}

// RunDeadLetterRestore moves dead-lettered items back to the retry queue. Each restored
// item has its attempt counter reset and its error fields cleared.
func RunDeadLetterRestore(
	ctx context.Context,
	deadLetterUseCase outboxUseCase.DeadLetterUseCase,
	logger *slog.Logger,
	writer io.Writer,
	storeID string,
	ids string,
	format string,
) error {
	store, err := parseUUIDArg("store id", storeID)
	if err != nil {
		return err
	}

	itemIDs, err := parseUUIDList("item ids", ids)
	if err != nil {
		return err
	}

	logger.Info("restoring dead letters",
		slog.String("store_id", store.String()),
		slog.Int("requested", len(itemIDs)),
	)

	restored, err := deadLetterUseCase.RestoreMany(ctx, store, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to restore dead letters: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"requested": len(itemIDs),
			"restored":  restored,
		}
		if err := writeJSON(writer, result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Restored %d of %d item(s)\n", restored, len(itemIDs))
	}

	logger.Info("dead letters restored", slog.Int("restored", restored))
	return nil
}

func outputStatsText(writer io.Writer, stats *outboxDomain.DeadLetterStats) {
	_, _ = fmt.Fprintf(writer, "Dead-letter Queue\n")
	_, _ = fmt.Fprintf(writer, "=================\n\n")
	_, _ = fmt.Fprintf(writer, "Total: %d\n", stats.Total)

	if stats.Total == 0 {
		return
	}

	if stats.OldestAt != nil {
		_, _ = fmt.Fprintf(writer, "Oldest: %s\n", stats.OldestAt.Format(time.RFC3339))
	}
	if stats.NewestAt != nil {
		_, _ = fmt.Fprintf(writer, "Newest: %s\n", stats.NewestAt.Format(time.RFC3339))
	}

	writeCounts(writer, "By reason", stats.ByReason)
	writeCounts(writer, "By entity type", stats.ByEntityType)
	writeCounts(writer, "By error category", stats.ByErrorCategory)
}

func writeCounts[K ~string](writer io.Writer, title string, counts map[K]int64) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	_, _ = fmt.Fprintf(writer, "\n%s:\n", title)
	for _, k := range keys {
		_, _ = fmt.Fprintf(writer, "  %-20s %d\n", k, counts[K(k)])
	}
}
