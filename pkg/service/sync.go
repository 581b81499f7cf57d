package service

import (
	"context"
	"sync/atomic"
	"time"

	backoff2 "github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/cointrail/cointrail/pkg/exchange/batch"
	"github.com/cointrail/cointrail/pkg/metrics"
	"github.com/cointrail/cointrail/pkg/types"
	"github.com/cointrail/cointrail/pkg/util/backoff"
)

const (
	// WatermarkOverlap is re-scanned below the stored watermark on every
	// incremental sync, covering fills the exchange reported late.
	WatermarkOverlap = 24 * time.Hour

	DefaultDetailConcurrency = 4
)

type CredentialStore interface {
	Get(ctx context.Context, userID string, exchange types.ExchangeName) (types.Credential, error)
}

type CoinResolver interface {
	FindByMarketCode(ctx context.Context, exchange types.ExchangeName, marketCode string) (types.Coin, error)
}

type LedgerStore interface {
	Insert(ctx context.Context, entry types.TradingHistory) (inserted bool, err error)
}

type WatermarkStore interface {
	Get(ctx context.Context, userID string, exchange types.ExchangeName) (watermark time.Time, found bool, err error)
	Advance(ctx context.Context, userID string, exchange types.ExchangeName, syncedUntil time.Time) error
}

// ExchangeFactory builds an authenticated exchange session from a stored
// credential.
type ExchangeFactory func(name types.ExchangeName, credential types.Credential) (types.Exchange, error)

type SyncResult struct {
	// Orders is the number of executed orders seen in the scanned window.
	Orders int `json:"orders"`

	// Inserted is the number of new ledger entries written.
	Inserted int `json:"inserted"`

	// Skipped is the number of fills already present in the ledger.
	Skipped int `json:"skipped"`

	// Unresolved is the number of orders dropped because their market code
	// has no coin row yet.
	Unresolved int `json:"unresolved"`

	// Failed is the number of orders whose detail fetch failed. Those
	// orders are picked up again by a later run because the watermark
	// does not advance past a run with failures.
	Failed int `json:"failed"`
}

// SyncService pulls a user's full or incremental trade history from an
// exchange and merges it into the ledger. Syncs are idempotent: re-running
// over an already-merged window inserts nothing.
type SyncService struct {
	Credentials CredentialStore
	Coins       CoinResolver
	Ledger      LedgerStore
	Watermarks  WatermarkStore
	NewExchange ExchangeFactory

	// DetailConcurrency bounds parallel per-order detail queries.
	DetailConcurrency int

	// Limiter optionally paces the closed-order scan on top of the
	// adapter's own request pacing.
	Limiter *rate.Limiter

	sf singleflight.Group
}

// Sync runs one sync for (user, exchange). Concurrent calls for the same
// pair are collapsed into a single run.
func (s *SyncService) Sync(ctx context.Context, userID string, exchange types.ExchangeName) (SyncResult, error) {
	v, err, _ := s.sf.Do(userID+"/"+exchange.String(), func() (interface{}, error) {
		return s.syncOnce(ctx, userID, exchange)
	})
	if v == nil {
		return SyncResult{}, err
	}
	return v.(SyncResult), err
}

func (s *SyncService) syncOnce(ctx context.Context, userID string, exchange types.ExchangeName) (result SyncResult, err error) {
	startedAt := time.Now()
	defer func() {
		metrics.SyncDurationSeconds.WithLabelValues(exchange.String()).Observe(time.Since(startedAt).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		metrics.SyncRunsTotal.WithLabelValues(exchange.String(), outcome).Inc()
	}()

	credential, err := s.Credentials.Get(ctx, userID, exchange)
	if err != nil {
		return result, err
	}

	session, err := s.NewExchange(exchange, credential)
	if err != nil {
		return result, err
	}

	since, until, err := s.syncRange(ctx, userID, session)
	if err != nil {
		return result, err
	}

	log.WithFields(log.Fields{
		"user":     userID,
		"exchange": exchange,
		"since":    since,
		"until":    until,
	}).Info("starting trade history sync")

	// the scan gets its own context so a fatal consumer error stops the
	// remaining upstream requests instead of letting the window run out
	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()

	q := &batch.ClosedOrderBatchQuery{ExchangeTradeHistoryService: session, Limiter: s.Limiter}
	orderC, errC := q.Query(scanCtx, since, until)

	var orders, inserted, skipped, unresolved, failed int64

	concurrency := s.DetailConcurrency
	if concurrency <= 0 {
		concurrency = DefaultDetailConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		<-gctx.Done()
		cancelScan()
	}()

	for order := range orderC {
		order := order
		atomic.AddInt64(&orders, 1)

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			entries, err := s.ledgerEntries(gctx, userID, session, order)
			if err != nil {
				switch {
				case errors.Is(err, types.ErrUnknownMarket):
					log.WithField("market", order.Market).Warn("skipping order on unregistered market")
					atomic.AddInt64(&unresolved, 1)
					return nil

				case errors.Is(err, types.ErrAuthentication):
					// retrying with a rejected credential only burns quota
					return err

				case gctx.Err() != nil:
					return err
				}

				// a single order's detail failure does not abort the run,
				// the held-back watermark re-surfaces it next time
				log.WithError(err).WithField("order", order.UUID).Warn("order detail fetch failed")
				atomic.AddInt64(&failed, 1)
				return nil
			}

			for _, entry := range entries {
				ok, err := s.Ledger.Insert(gctx, entry)
				if err != nil {
					// storage failures are fatal to the run
					return err
				}
				if ok {
					atomic.AddInt64(&inserted, 1)
				} else {
					atomic.AddInt64(&skipped, 1)
				}
			}
			return nil
		})
	}

	werr := g.Wait()
	berr := <-errC

	result = SyncResult{
		Orders:     int(atomic.LoadInt64(&orders)),
		Inserted:   int(atomic.LoadInt64(&inserted)),
		Skipped:    int(atomic.LoadInt64(&skipped)),
		Unresolved: int(atomic.LoadInt64(&unresolved)),
		Failed:     int(atomic.LoadInt64(&failed)),
	}

	metrics.SyncEntriesInsertedTotal.WithLabelValues(exchange.String()).Add(float64(result.Inserted))
	metrics.SyncEntriesSkippedTotal.WithLabelValues(exchange.String()).Add(float64(result.Skipped))

	// a worker failure cancels the scan, so it must win over the
	// cancellation error the producer reports afterwards
	if werr != nil {
		return result, werr
	}
	if berr != nil {
		return result, errors.Wrap(berr, "closed order scan failed")
	}

	// the watermark only moves once the whole window merged cleanly; a run
	// with failed detail fetches keeps the old lower bound so the next run
	// re-scans them
	if result.Failed == 0 {
		if err := s.Watermarks.Advance(ctx, userID, session.Name(), until); err != nil {
			return result, err
		}
	}

	log.WithFields(log.Fields{
		"user":       userID,
		"exchange":   exchange,
		"orders":     result.Orders,
		"inserted":   result.Inserted,
		"skipped":    result.Skipped,
		"unresolved": result.Unresolved,
		"failed":     result.Failed,
	}).Info("trade history sync finished")

	return result, nil
}

// syncRange picks the scan window: from the stored watermark with a safety
// overlap, or from the exchange's earliest trading time on the first run.
func (s *SyncService) syncRange(ctx context.Context, userID string, session types.Exchange) (since, until time.Time, err error) {
	earliest := session.EarliestTradingTime()
	until = time.Now()

	watermark, found, err := s.Watermarks.Get(ctx, userID, session.Name())
	if err != nil {
		return since, until, err
	}

	since = earliest
	if found {
		since = watermark.Add(-WatermarkOverlap)
		if since.Before(earliest) {
			since = earliest
		}
	}

	return since, until, nil
}

// ledgerEntries expands one executed order into ledger rows, one per fill.
// The order-level fee lands on the first fill; fills carry no per-fill fee
// on the wire.
func (s *SyncService) ledgerEntries(ctx context.Context, userID string, session types.Exchange, order types.Order) ([]types.TradingHistory, error) {
	coin, err := s.Coins.FindByMarketCode(ctx, session.Name(), order.Market)
	if err != nil {
		return nil, err
	}

	// only throttling is worth waiting out; a rejected credential or a
	// broken response stays broken on retry
	var detail *types.Order
	err = backoff.RetryLite(ctx, func() (qerr error) {
		detail, qerr = session.QueryOrderTrades(ctx, order.UUID)
		if qerr != nil && !types.IsRateLimitError(qerr) {
			return backoff2.Permanent(qerr)
		}
		return qerr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "query order detail %s", order.UUID)
	}

	tradeType := types.TradeTypeBuy
	if order.Side == types.SideTypeSell {
		tradeType = types.TradeTypeSell
	}

	if len(detail.Trades) == 0 {
		// executed order with no fill detail, fall back to the aggregate
		return []types.TradingHistory{
			{
				UserID:     userID,
				CoinID:     coin.ID,
				Exchange:   session.Name(),
				TradeUUID:  order.UUID,
				TradeType:  tradeType,
				Price:      order.Price,
				Quantity:   order.ExecutedVolume,
				TotalPrice: order.Price.Mul(order.ExecutedVolume),
				Fee:        detail.PaidFee,
				TradeTime:  order.CreationTime,
			},
		}, nil
	}

	entries := make([]types.TradingHistory, 0, len(detail.Trades))
	for i, fill := range detail.Trades {
		entry := types.TradingHistory{
			UserID:     userID,
			CoinID:     coin.ID,
			Exchange:   session.Name(),
			TradeUUID:  fill.UUID,
			TradeType:  tradeType,
			Price:      fill.Price,
			Quantity:   fill.Volume,
			TotalPrice: fill.Funds,
			TradeTime:  fill.CreationTime,
		}
		if i == 0 {
			entry.Fee = detail.PaidFee
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
