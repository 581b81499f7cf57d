package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/cointrail/cointrail/pkg/types"
)

// WatermarkService records, per (user, exchange), the time up to which the
// ledger is known complete. Incremental syncs start from the watermark
// instead of rescanning the whole account history.
type WatermarkService struct {
	DB      *sqlx.DB
	dialect DatabaseDialect
}

func NewWatermarkService(db *sqlx.DB) *WatermarkService {
	return &WatermarkService{
		DB:      db,
		dialect: GetDialect(db.DriverName()),
	}
}

// Get returns the sync watermark, reporting found=false when the user has
// never completed a sync on the exchange.
func (s *WatermarkService) Get(ctx context.Context, userID string, exchange types.ExchangeName) (watermark time.Time, found bool, err error) {
	err = s.DB.QueryRowContext(ctx,
		"SELECT synced_until FROM sync_watermarks WHERE user_id = ? AND exchange = ?",
		userID, exchange).Scan(&watermark)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	return watermark, true, nil
}

// Advance moves the watermark forward. A stored watermark never moves
// backwards, so a sync over an old window cannot shrink the completed span.
func (s *WatermarkService) Advance(ctx context.Context, userID string, exchange types.ExchangeName, syncedUntil time.Time) error {
	current, found, err := s.Get(ctx, userID, exchange)
	if err != nil {
		return err
	}
	if found && !syncedUntil.After(current) {
		return nil
	}

	query := s.dialect.UpsertSQL("sync_watermarks",
		"user_id, exchange, synced_until, updated_at",
		":user_id, :exchange, :synced_until, :updated_at",
		"user_id, exchange",
		"synced_until = :synced_until, updated_at = :updated_at")

	_, err = s.DB.NamedExecContext(ctx, query, map[string]interface{}{
		"user_id":      userID,
		"exchange":     string(exchange),
		"synced_until": syncedUntil,
		"updated_at":   time.Now(),
	})
	return errors.Wrapf(err, "advance watermark for user %s on %s", userID, exchange)
}
