package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cointrail/cointrail/pkg/types"
)

type QueryTradingHistoriesOptions struct {
	Exchange types.ExchangeName
	CoinID   int64
	LastGID  int64

	// inclusive
	Since *time.Time

	// exclusive
	Until *time.Time

	// ASC or DESC
	Ordering string
	Limit    uint64
}

// TradingHistoryService persists the per-user trade ledger. Dedup relies
// on the table's UNIQUE(user_id, exchange, trade_uuid) constraint, not on
// application state, so concurrent or retried syncs stay safe.
type TradingHistoryService struct {
	DB      *sqlx.DB
	dialect DatabaseDialect
}

func NewTradingHistoryService(db *sqlx.DB) *TradingHistoryService {
	return &TradingHistoryService{
		DB:      db,
		dialect: GetDialect(db.DriverName()),
	}
}

const tradingHistoryInsertColumns = "user_id, coin_id, exchange, trade_uuid, trade_type, price, quantity, total_price, fee, trade_time, created_at"

const tradingHistoryInsertValues = ":user_id, :coin_id, :exchange, :trade_uuid, :trade_type, :price, :quantity, :total_price, :fee, :trade_time, :created_at"

const tradingHistoryConflictColumns = "user_id, exchange, trade_uuid"

// Insert writes one ledger entry, skipping silently when the same
// (user, exchange, trade uuid) is already present. It reports whether the
// row was actually inserted.
func (s *TradingHistoryService) Insert(ctx context.Context, entry types.TradingHistory) (inserted bool, err error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = types.NewTime(time.Now())
	}

	sql := s.dialect.InsertIgnoreSQL("trading_histories", tradingHistoryInsertColumns, tradingHistoryInsertValues, tradingHistoryConflictColumns)

	result, err := s.DB.NamedExecContext(ctx, sql, entry)
	if err != nil {
		return false, errors.Wrapf(err, "insert trading history %s", entry.Key())
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// CountByUser returns the user's total ledger size.
func (s *TradingHistoryService) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM trading_histories WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

func (s *TradingHistoryService) Query(ctx context.Context, userID string, options QueryTradingHistoriesOptions) ([]types.TradingHistory, error) {
	sel := sq.Select("*").
		From("trading_histories").
		Where(sq.Eq{"user_id": userID})

	if options.LastGID != 0 {
		sel = sel.Where(sq.Gt{"gid": options.LastGID})
	}
	if options.Since != nil {
		sel = sel.Where(sq.GtOrEq{"trade_time": options.Since})
	}
	if options.Until != nil {
		sel = sel.Where(sq.Lt{"trade_time": options.Until})
	}
	if options.Exchange != "" {
		sel = sel.Where(sq.Eq{"exchange": options.Exchange})
	}
	if options.CoinID != 0 {
		sel = sel.Where(sq.Eq{"coin_id": options.CoinID})
	}

	ordering := "ASC"
	switch strings.ToUpper(options.Ordering) {
	case "":
	case "ASC", "DESC":
		ordering = strings.ToUpper(options.Ordering)
	default:
		return nil, fmt.Errorf("invalid ordering: %s", options.Ordering)
	}

	sel = sel.OrderBy("trade_time " + ordering)

	if options.Limit > 0 {
		sel = sel.Limit(options.Limit)
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	log.Debug(sql)

	rows, err := s.DB.QueryxContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return s.scanRows(rows)
}

func (s *TradingHistoryService) scanRows(rows *sqlx.Rows) (entries []types.TradingHistory, err error) {
	for rows.Next() {
		var entry types.TradingHistory
		if err := rows.StructScan(&entry); err != nil {
			return entries, err
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
