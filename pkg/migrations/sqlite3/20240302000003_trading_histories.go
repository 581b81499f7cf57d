package sqlite3

import (
	"context"

	"github.com/c9s/rockhopper"
)

func init() {
	rockhopper.AddMigration(upAddTradingHistoriesTable, downAddTradingHistoriesTable)
}

func upAddTradingHistoriesTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is applied.

	_, err = tx.ExecContext(ctx, "CREATE TABLE `trading_histories`\n(\n    `gid`         INTEGER PRIMARY KEY AUTOINCREMENT,\n    `user_id`     VARCHAR(64)    NOT NULL,\n    `coin_id`     INTEGER        NOT NULL,\n    `exchange`    VARCHAR(24)    NOT NULL,\n    -- exchange-native fill id\n    `trade_uuid`  VARCHAR(64)    NOT NULL,\n    -- 0 buy, 1 sell\n    `trade_type`  INTEGER        NOT NULL,\n    `price`       DECIMAL(20, 8) NOT NULL,\n    `quantity`    DECIMAL(20, 8) NOT NULL,\n    `total_price` DECIMAL(20, 8) NOT NULL,\n    `fee`         DECIMAL(20, 8) NOT NULL DEFAULT 0,\n    `trade_time`  DATETIME       NOT NULL,\n    `created_at`  DATETIME       NOT NULL DEFAULT CURRENT_TIMESTAMP\n);")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "CREATE UNIQUE INDEX `trading_histories_trade_uuid` ON `trading_histories` (`user_id`, `exchange`, `trade_uuid`);")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "CREATE INDEX `trading_histories_user_trade_time` ON `trading_histories` (`user_id`, `trade_time`);")
	if err != nil {
		return err
	}

	return err
}

func downAddTradingHistoriesTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is rolled back.

	_, err = tx.ExecContext(ctx, "DROP INDEX IF EXISTS `trading_histories_user_trade_time`;")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DROP INDEX IF EXISTS `trading_histories_trade_uuid`;")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS `trading_histories`;")
	if err != nil {
		return err
	}

	return err
}
