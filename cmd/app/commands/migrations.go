package commands

import (
	"fmt"
	"log/slog"

	"github.com/allisson/storesync/internal/database"
)

// RunMigrations applies every pending embedded migration for the configured driver.
// Returns nil when the schema is already up to date.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	if !database.DialectFromDriver(driver).Valid() {
		return fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := database.Connect(database.Config{
		Driver:           driver,
		ConnectionString: connectionString,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database", slog.Any("error", closeErr))
		}
	}()

	if err := database.Migrate(db, driver); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}
