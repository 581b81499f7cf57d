package sqlite3

import (
	"context"

	"github.com/c9s/rockhopper"
)

func init() {
	rockhopper.AddMigration(upAddExchangeCredentialsTable, downAddExchangeCredentialsTable)
}

func upAddExchangeCredentialsTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is applied.

	_, err = tx.ExecContext(ctx, "CREATE TABLE `exchange_credentials`\n(\n    `gid`        INTEGER PRIMARY KEY AUTOINCREMENT,\n    `user_id`    VARCHAR(64)  NOT NULL,\n    `exchange`   VARCHAR(24)  NOT NULL,\n    -- secretbox sealed, base64 encoded\n    `access_key` VARCHAR(512) NOT NULL,\n    `secret_key` VARCHAR(512) NOT NULL,\n    `updated_at` DATETIME     NOT NULL\n);")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "CREATE UNIQUE INDEX `exchange_credentials_user_exchange` ON `exchange_credentials` (`user_id`, `exchange`);")
	if err != nil {
		return err
	}

	return err
}

func downAddExchangeCredentialsTable(ctx context.Context, tx rockhopper.SQLExecutor) (err error) {
	// This code is executed when the migration is rolled back.

	_, err = tx.ExecContext(ctx, "DROP INDEX IF EXISTS `exchange_credentials_user_exchange`;")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS `exchange_credentials`;")
	if err != nil {
		return err
	}

	return err
}
