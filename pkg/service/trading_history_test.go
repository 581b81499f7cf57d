package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/cointrail/cointrail/pkg/fixedpoint"
	"github.com/cointrail/cointrail/pkg/types"
)

func newMockTradingHistoryService(t *testing.T) (*TradingHistoryService, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlite3")
	return NewTradingHistoryService(db), mock
}

func TestTradingHistoryService_Insert(t *testing.T) {
	service, mock := newMockTradingHistoryService(t)

	entry := types.TradingHistory{
		UserID:     "user-1",
		CoinID:     3,
		Exchange:   types.ExchangeUpbit,
		TradeUUID:  "9ca023a5-851b-4fec-9f0a-48cd83c2eaae",
		TradeType:  types.TradeTypeBuy,
		Price:      fixedpoint.NewFromFloat(100.0),
		Quantity:   fixedpoint.NewFromFloat(0.5),
		TotalPrice: fixedpoint.NewFromFloat(50.0),
		Fee:        fixedpoint.NewFromFloat(0.025),
		TradeTime:  types.NewTime(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT OR IGNORE INTO trading_histories")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	inserted, err := service.Insert(context.Background(), entry)
	assert.NoError(t, err)
	assert.True(t, inserted)

	// a duplicate key reports zero affected rows instead of an error
	mock.ExpectExec(regexp.QuoteMeta("INSERT OR IGNORE INTO trading_histories")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err = service.Insert(context.Background(), entry)
	assert.NoError(t, err)
	assert.False(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradingHistoryService_CountByUser(t *testing.T) {
	service, mock := newMockTradingHistoryService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM trading_histories WHERE user_id = ?")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := service.CountByUser(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradingHistoryService_Query(t *testing.T) {
	service, mock := newMockTradingHistoryService(t)

	since := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	columns := []string{"gid", "user_id", "coin_id", "exchange", "trade_uuid", "trade_type", "price", "quantity", "total_price", "fee", "trade_time", "created_at"}

	mock.ExpectQuery("SELECT \\* FROM trading_histories WHERE").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "user-1", 3, "upbit", "uuid-1", 0, "100.0", "0.5", "50.0", "0.025", since.Add(time.Hour), since).
			AddRow(2, "user-1", 3, "upbit", "uuid-2", 1, "110.0", "0.5", "55.0", "0.0275", since.Add(2*time.Hour), since))

	entries, err := service.Query(context.Background(), "user-1", QueryTradingHistoriesOptions{
		Exchange: types.ExchangeUpbit,
		Since:    &since,
		Limit:    100,
	})
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "uuid-1", entries[0].TradeUUID)
	assert.Equal(t, types.TradeTypeSell, entries[1].TradeType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradingHistoryService_QueryInvalidOrdering(t *testing.T) {
	service, _ := newMockTradingHistoryService(t)

	_, err := service.Query(context.Background(), "user-1", QueryTradingHistoriesOptions{Ordering: "SIDEWAYS"})
	assert.Error(t, err)
}
