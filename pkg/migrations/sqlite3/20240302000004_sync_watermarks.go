package sqlite3

import (
	"context"

	"github.com/c9s/rockhopper"
)

func init() {
	rockhopper.AddMigration(upAddSyncWatermarksTable, downAddSyncWatermarksTable)
}

func upAddSyncWatermarksTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is applied.

	_, err = tx.ExecContext(ctx, "CREATE TABLE `sync_watermarks`\n(\n    `gid`          INTEGER PRIMARY KEY AUTOINCREMENT,\n    `user_id`      VARCHAR(64) NOT NULL,\n    `exchange`     VARCHAR(24) NOT NULL,\n    -- ledger is complete up to this time\n    `synced_until` DATETIME    NOT NULL,\n    `updated_at`   DATETIME    NOT NULL\n);")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "CREATE UNIQUE INDEX `sync_watermarks_user_exchange` ON `sync_watermarks` (`user_id`, `exchange`);")
	if err != nil {
		return err
	}

	return err
}

func downAddSyncWatermarksTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is rolled back.

	_, err = tx.ExecContext(ctx, "DROP INDEX IF EXISTS `sync_watermarks_user_exchange`;")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS `sync_watermarks`;")
	if err != nil {
		return err
	}

	return err
}
