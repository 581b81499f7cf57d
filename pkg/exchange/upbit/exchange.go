package upbit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cointrail/cointrail/pkg/exchange/upbit/upbitapi"
	"github.com/cointrail/cointrail/pkg/types"
)

var log = logrus.WithField("exchange", "upbit")

// The exchange allows 30 private requests per second, but the sync
// pipeline deliberately paces itself far below that: bursts of 5 with a
// ~1s refill, matching the quota the closed-orders scan was tuned for.
var sharedTradeLimiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 5)

// kst is the exchange's home market timezone; loaded statically so the
// binary does not depend on the host tzdata.
var kst = time.FixedZone("KST", 9*60*60)

// earliestTradingTime is the exchange's opening date; no fill can predate it.
var earliestTradingTime = time.Date(2017, time.November, 1, 0, 0, 0, 0, kst)

type Exchange struct {
	client *upbitapi.RestClient
}

func New(accessKey, secretKey string) *Exchange {
	client := upbitapi.NewRestClient(upbitapi.ProductionAPIURL)
	client.Auth(accessKey, secretKey)
	return &Exchange{client: client}
}

func NewWithClient(client *upbitapi.RestClient) *Exchange {
	return &Exchange{client: client}
}

func (e *Exchange) Name() types.ExchangeName {
	return types.ExchangeUpbit
}

func (e *Exchange) EarliestTradingTime() time.Time {
	return earliestTradingTime
}

func (e *Exchange) QueryClosedOrders(ctx context.Context, since, until time.Time) ([]types.Order, error) {
	if err := sharedTradeLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	log.Debugf("querying closed orders %s <=> %s", since, until)

	orders, err := e.client.OrderService.ClosedOrders(ctx, upbitapi.ClosedOrdersOptions{
		States:    []string{"done", "cancel"},
		StartTime: since,
		EndTime:   until,
		Limit:     upbitapi.ClosedOrdersLimitMax,
	})
	if err != nil {
		return nil, err
	}

	return convertOrders(orders), nil
}

func (e *Exchange) QueryOrderTrades(ctx context.Context, orderUUID string) (*types.Order, error) {
	if err := sharedTradeLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	order, err := e.client.OrderService.Get(ctx, orderUUID)
	if err != nil {
		return nil, err
	}

	converted := convertOrder(*order)
	return &converted, nil
}

func (e *Exchange) QueryMarkets(ctx context.Context) ([]types.Coin, error) {
	markets, err := e.client.MarketService.All(ctx)
	if err != nil {
		return nil, err
	}

	var coins []types.Coin
	for _, market := range markets {
		coin, err := convertMarket(market)
		if err != nil {
			log.WithError(err).Warnf("skipping malformed market %+v", market)
			continue
		}

		coins = append(coins, coin)
	}

	return coins, nil
}
