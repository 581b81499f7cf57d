package mysql

import (
	"context"

	"github.com/c9s/rockhopper"
)

func init() {
	rockhopper.AddMigration(upAddSyncWatermarksTable, downAddSyncWatermarksTable)
}

func upAddSyncWatermarksTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is applied.

	_, err = tx.ExecContext(ctx, "CREATE TABLE `sync_watermarks`\n(\n    `gid`          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,\n    `user_id`      VARCHAR(64)     NOT NULL,\n    `exchange`     VARCHAR(24)     NOT NULL,\n    -- ledger is complete up to this time\n    `synced_until` DATETIME        NOT NULL,\n    `updated_at`   DATETIME        NOT NULL,\n    PRIMARY KEY (`gid`),\n    UNIQUE KEY `user_exchange` (`user_id`, `exchange`)\n);")
	if err != nil {
		return err
	}

	return err
}

func downAddSyncWatermarksTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is rolled back.

	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS `sync_watermarks`;")
	if err != nil {
		return err
	}

	return err
}
