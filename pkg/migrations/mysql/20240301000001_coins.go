package mysql

import (
	"context"

	"github.com/c9s/rockhopper"
)

func init() {
	rockhopper.AddMigration(upAddCoinsTable, downAddCoinsTable)
}

func upAddCoinsTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is applied.

	_, err = tx.ExecContext(ctx, "CREATE TABLE `coins`\n(\n    `id`             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,\n    -- base currency symbol, BTC, ETH ... etc\n    `symbol`         VARCHAR(24)     NOT NULL,\n    `quote_currency` VARCHAR(12)     NOT NULL,\n    -- exchange-native market code, KRW-BTC ... etc\n    `market_code`    VARCHAR(36)     NOT NULL,\n    `korean_name`    VARCHAR(64)     NOT NULL DEFAULT '',\n    `english_name`   VARCHAR(64)     NOT NULL DEFAULT '',\n    `exchange`       VARCHAR(24)     NOT NULL,\n    PRIMARY KEY (`id`),\n    UNIQUE KEY `market_code` (`exchange`, `market_code`)\n);")
	if err != nil {
		return err
	}

	return err
}

func downAddCoinsTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is rolled back.

	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS `coins`;")
	if err != nil {
		return err
	}

	return err
}
