package service

import (
	"context"
	"testing"

	"github.com/c9s/rockhopper"
	"github.com/stretchr/testify/assert"

	_ "github.com/mattn/go-sqlite3"
)

func TestGoMigrationsRegisteredPerDialect(t *testing.T) {
	loader := &rockhopper.GoMigrationLoader{}

	for _, driver := range []string{"mysql", "sqlite3"} {
		migrations, err := loader.LoadByPackageSuffix(driver)
		assert.NoError(t, err)
		assert.Len(t, migrations, 4, "driver %s must carry the full schema", driver)
	}
}

func TestDatabaseService_UpgradeSqlite3(t *testing.T) {
	s := NewDatabaseService("sqlite3", ":memory:")
	if err := s.Connect(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	assert.NoError(t, s.Upgrade(ctx))

	for _, table := range []string{"coins", "exchange_credentials", "trading_histories", "sync_watermarks"} {
		var name string
		err := s.DB.GetContext(ctx, &name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		assert.NoError(t, err, "table %s must exist after upgrade", table)
	}

	// the fill dedup key must survive the dialect translation
	_, err := s.DB.ExecContext(ctx, "INSERT INTO trading_histories (user_id, coin_id, exchange, trade_uuid, trade_type, price, quantity, total_price, trade_time) VALUES ('user-1', 1, 'upbit', 'fill-1', 0, 100, 0.5, 50, '2024-03-01 00:00:00')")
	assert.NoError(t, err)

	_, err = s.DB.ExecContext(ctx, "INSERT INTO trading_histories (user_id, coin_id, exchange, trade_uuid, trade_type, price, quantity, total_price, trade_time) VALUES ('user-1', 1, 'upbit', 'fill-1', 0, 100, 0.5, 50, '2024-03-01 00:00:00')")
	assert.Error(t, err)

	// a second upgrade on an up-to-date schema is a no-op
	assert.NoError(t, s.Upgrade(ctx))
}
