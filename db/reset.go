package db

import (
	"context"
	"database/sql"
	"fmt"

	"melodex/logger"
)

// truncateOrder lists every catalog table, children before parents, so the
// bulk delete never trips a foreign key even with checks re-enabled.
var truncateOrder = []string{
	"Rating",
	"SongGenre",
	"Song",
	"Album",
	"UserAccount",
	"Genre",
	"Artist",
}

// ResetCatalog deletes every row from every catalog table. FOREIGN_KEY_CHECKS
// is session-scoped, so the whole sequence runs on one pinned connection, and
// re-enabling it is a deferred cleanup that runs on every exit path — a
// failed reset must never leave the session with checks off. Unlike the
// batch loaders, reset propagates its error: a partial reset leaves the
// store inconsistent and the caller has to know.
func ResetCatalog(ctx context.Context, dbh *sql.DB) (err error) {
	conn, err := dbh.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for reset: %w", err)
	}
	defer conn.Close()

	if _, err = conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		return fmt.Errorf("failed to disable foreign key checks: %w", err)
	}
	defer func() {
		if _, restoreErr := conn.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1"); restoreErr != nil {
			logger.Error("failed to restore foreign key checks after reset",
				logger.ErrorField(restoreErr))
			if err == nil {
				err = fmt.Errorf("failed to restore foreign key checks: %w", restoreErr)
			}
		}
	}()

	for _, table := range truncateOrder {
		if _, err = conn.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	logger.Info("Catalog reset completed.", logger.Int("tables", len(truncateOrder)))
	return nil
}
