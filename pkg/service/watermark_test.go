package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/cointrail/cointrail/pkg/types"
)

func newMockWatermarkService(t *testing.T) (*WatermarkService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mockDB.Close() })

	return NewWatermarkService(sqlx.NewDb(mockDB, "sqlite3")), mock
}

func TestWatermarkService_GetMissing(t *testing.T) {
	service, mock := newMockWatermarkService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT synced_until FROM sync_watermarks")).
		WithArgs("user-1", types.ExchangeUpbit).
		WillReturnRows(sqlmock.NewRows([]string{"synced_until"}))

	_, found, err := service.Get(context.Background(), "user-1", types.ExchangeUpbit)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatermarkService_AdvanceIsMonotonic(t *testing.T) {
	service, mock := newMockWatermarkService(t)

	current := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	// moving backwards is a no-op, no write expected
	mock.ExpectQuery(regexp.QuoteMeta("SELECT synced_until FROM sync_watermarks")).
		WillReturnRows(sqlmock.NewRows([]string{"synced_until"}).AddRow(current))

	err := service.Advance(context.Background(), "user-1", types.ExchangeUpbit, current.Add(-time.Hour))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// moving forward upserts the new value
	mock.ExpectQuery(regexp.QuoteMeta("SELECT synced_until FROM sync_watermarks")).
		WillReturnRows(sqlmock.NewRows([]string{"synced_until"}).AddRow(current))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_watermarks")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = service.Advance(context.Background(), "user-1", types.ExchangeUpbit, current.Add(time.Hour))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
