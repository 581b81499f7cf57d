package batch

import (
	"context"
	"time"

	backoff2 "github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cointrail/cointrail/pkg/types"
	"github.com/cointrail/cointrail/pkg/util/backoff"
)

var log = logrus.WithField("component", "batch")

const (
	// DefaultRangeWidth keeps each closed-orders query well under the
	// endpoint's page cap on any realistically active account.
	DefaultRangeWidth = 7 * 24 * time.Hour

	// DefaultMinRangeWidth stops the halving recursion; a range this
	// narrow returning a full page is beyond repair (more fills per
	// minute than the page cap) and is drained as-is.
	DefaultMinRangeWidth = time.Minute

	// DefaultPageLimit mirrors the exchange's closed-orders page cap.
	DefaultPageLimit = 1000
)

// ClosedOrderBatchQuery streams a user's closed orders over an arbitrary
// time span. The span is partitioned into chronological ranges; a range
// answering with a full page is halved and re-queried rather than trusted,
// and orders surfacing twice at range boundaries are emitted only once.
// Orders with zero executed volume are pure cancellations and are dropped.
type ClosedOrderBatchQuery struct {
	types.ExchangeTradeHistoryService

	// Limiter optionally paces requests on top of whatever pacing the
	// exchange adapter applies itself.
	Limiter *rate.Limiter

	RangeWidth    time.Duration
	MinRangeWidth time.Duration
	PageLimit     int
}

func (q *ClosedOrderBatchQuery) Query(ctx context.Context, since, until time.Time) (c chan types.Order, errC chan error) {
	width := q.RangeWidth
	if width <= 0 {
		width = DefaultRangeWidth
	}

	minWidth := q.MinRangeWidth
	if minWidth <= 0 {
		minWidth = DefaultMinRangeWidth
	}

	pageLimit := q.PageLimit
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}

	c = make(chan types.Order, 100)
	errC = make(chan error, 1)

	go func() {
		defer close(c)
		defer close(errC)

		pending := SplitRanges(since, until, width)
		seenOrders := make(map[string]struct{})

		for len(pending) > 0 {
			select {
			case <-ctx.Done():
				errC <- ctx.Err()
				return
			default:
			}

			r := pending[0]
			pending = pending[1:]

			if q.Limiter != nil {
				if err := q.Limiter.Wait(ctx); err != nil {
					errC <- err
					return
				}
			}

			log.Debugf("batch querying closed orders %s <=> %s", r.Start, r.End)

			orders, err := q.queryRange(ctx, r)
			if err != nil {
				errC <- err
				return
			}

			if len(orders) >= pageLimit && r.Width() > minWidth {
				// a full page may be truncated, never assume completeness
				first, second := r.Halve()
				pending = append([]TimeRange{first, second}, pending...)
				continue
			}

			for _, order := range orders {
				if order.ExecutedVolume.IsZero() {
					// cancellation without any fill
					continue
				}

				if _, exists := seenOrders[order.UUID]; exists {
					continue
				}
				seenOrders[order.UUID] = struct{}{}

				c <- order
			}
		}
	}()

	return c, errC
}

// queryRange retries throttling responses with bounded exponential backoff;
// any other failure aborts immediately.
func (q *ClosedOrderBatchQuery) queryRange(ctx context.Context, r TimeRange) (orders []types.Order, err error) {
	op := func() (err2 error) {
		orders, err2 = q.QueryClosedOrders(ctx, r.Start, r.End)
		if err2 != nil && !types.IsRateLimitError(err2) {
			return backoff2.Permanent(err2)
		}
		return err2
	}

	err = backoff.RetryLite(ctx, op)
	if types.IsRateLimitError(err) {
		return nil, errors.Wrapf(types.ErrRateLimitExceeded, "closed orders range %s - %s: %s", r.Start, r.End, err.Error())
	}

	return orders, err
}
