package batch

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/cointrail/cointrail/pkg/fixedpoint"
	"github.com/cointrail/cointrail/pkg/types"
	"github.com/cointrail/cointrail/pkg/util/backoff"
)

type fakeHistoryService struct {
	closedOrders func(ctx context.Context, since, until time.Time) ([]types.Order, error)
}

func (s *fakeHistoryService) QueryClosedOrders(ctx context.Context, since, until time.Time) ([]types.Order, error) {
	return s.closedOrders(ctx, since, until)
}

func (s *fakeHistoryService) QueryOrderTrades(ctx context.Context, orderUUID string) (*types.Order, error) {
	return nil, errors.New("not implemented")
}

func makeOrder(uuid string, executed float64, at time.Time) types.Order {
	return types.Order{
		UUID:           uuid,
		Market:         "KRW-BTC",
		Side:           types.SideTypeBuy,
		State:          types.OrderStateDone,
		ExecutedVolume: fixedpoint.NewFromFloat(executed),
		CreationTime:   types.NewTime(at),
	}
}

func collect(t *testing.T, c chan types.Order, errC chan error) ([]types.Order, error) {
	t.Helper()

	var orders []types.Order
	for order := range c {
		orders = append(orders, order)
	}
	return orders, <-errC
}

func TestClosedOrderBatchQuery_FiltersAndDedups(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	dataset := []types.Order{
		makeOrder("a", 1.0, base.Add(10*time.Minute)),
		makeOrder("b", 0, base.Add(20*time.Minute)), // pure cancellation
		makeOrder("c", 0.5, base.Add(30*time.Minute)),
	}

	var calls int
	svc := &fakeHistoryService{
		closedOrders: func(ctx context.Context, since, until time.Time) ([]types.Order, error) {
			calls++
			var page []types.Order
			for _, o := range dataset {
				at := o.CreationTime.Time()
				// inclusive on both ends so boundary orders surface twice
				if !at.Before(since.Add(-time.Hour)) && !at.After(until) {
					page = append(page, o)
				}
			}
			return page, nil
		},
	}

	q := &ClosedOrderBatchQuery{ExchangeTradeHistoryService: svc, RangeWidth: time.Hour}
	c, errC := q.Query(context.Background(), base, base.Add(3*time.Hour))

	orders, err := collect(t, c, errC)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	var uuids []string
	for _, o := range orders {
		uuids = append(uuids, o.UUID)
	}
	// zero executed volume dropped, overlapping pages deduplicated
	assert.Equal(t, []string{"a", "c"}, uuids)
}

func TestClosedOrderBatchQuery_HalvesFullPages(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	// four orders spread over one hour, queried with a page limit of 2:
	// the full range must get halved until each page is partial
	dataset := []types.Order{
		makeOrder("a", 1, base.Add(5*time.Minute)),
		makeOrder("b", 1, base.Add(20*time.Minute)),
		makeOrder("c", 1, base.Add(35*time.Minute)),
		makeOrder("d", 1, base.Add(50*time.Minute)),
	}

	svc := &fakeHistoryService{
		closedOrders: func(ctx context.Context, since, until time.Time) ([]types.Order, error) {
			var page []types.Order
			for _, o := range dataset {
				at := o.CreationTime.Time()
				if !at.Before(since) && at.Before(until) {
					page = append(page, o)
				}
				if len(page) == 2 {
					break
				}
			}
			return page, nil
		},
	}

	q := &ClosedOrderBatchQuery{
		ExchangeTradeHistoryService: svc,
		RangeWidth:                  time.Hour,
		PageLimit:                   2,
	}
	c, errC := q.Query(context.Background(), base, base.Add(time.Hour))

	orders, err := collect(t, c, errC)
	assert.NoError(t, err)
	assert.Len(t, orders, 4)

	// chronological order is preserved across the halving
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].CreationTime.Before(orders[i-1].CreationTime.Time()))
	}
}

func TestClosedOrderBatchQuery_RateLimitExhausted(t *testing.T) {
	restore := backoff.LiteMaxRetries
	backoff.LiteMaxRetries = 0
	defer func() { backoff.LiteMaxRetries = restore }()

	svc := &fakeHistoryService{
		closedOrders: func(ctx context.Context, since, until time.Time) ([]types.Order, error) {
			return nil, errors.Wrap(types.ErrRateLimit, "429 too many requests")
		},
	}

	q := &ClosedOrderBatchQuery{ExchangeTradeHistoryService: svc, RangeWidth: time.Hour}
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	c, errC := q.Query(context.Background(), base, base.Add(time.Hour))

	_, err := collect(t, c, errC)
	assert.ErrorIs(t, err, types.ErrRateLimitExceeded)
}

func TestClosedOrderBatchQuery_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	svc := &fakeHistoryService{
		closedOrders: func(ctx context.Context, since, until time.Time) ([]types.Order, error) {
			calls++
			return nil, nil
		},
	}

	q := &ClosedOrderBatchQuery{ExchangeTradeHistoryService: svc, RangeWidth: time.Hour}
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	c, errC := q.Query(ctx, base, base.Add(10*time.Hour))

	_, err := collect(t, c, errC)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
