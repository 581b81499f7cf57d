package types

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type ExchangeName string

const ExchangeUpbit ExchangeName = "upbit"

var SupportedExchanges = []ExchangeName{ExchangeUpbit}

func (n ExchangeName) String() string {
	return string(n)
}

// ValidExchangeName resolves a provider name given by the routing layer.
func ValidExchangeName(a string) (ExchangeName, error) {
	switch name := ExchangeName(a); name {
	case ExchangeUpbit:
		return name, nil
	}

	return "", errors.Wrapf(ErrInvalidExchangeProvider, "unsupported exchange provider %q", a)
}

// ExchangeMinimal is the smallest surface every exchange adapter provides.
type ExchangeMinimal interface {
	Name() ExchangeName

	// EarliestTradingTime is the lower bound used for a user's very first
	// sync, before any watermark exists.
	EarliestTradingTime() time.Time
}

// ExchangeTradeHistoryService queries the exchange's private order history.
type ExchangeTradeHistoryService interface {
	// QueryClosedOrders returns finished orders created in [since, until),
	// without per-fill detail. The result set is bounded by the exchange's
	// page limit; a full page means the range may be truncated.
	QueryClosedOrders(ctx context.Context, since, until time.Time) ([]Order, error)

	// QueryOrderTrades returns one order with its individual fills.
	QueryOrderTrades(ctx context.Context, orderUUID string) (*Order, error)
}

// ExchangeMarketService lists the exchange's tradable markets, used to
// build the coin reference table.
type ExchangeMarketService interface {
	QueryMarkets(ctx context.Context) ([]Coin, error)
}

type Exchange interface {
	ExchangeMinimal
	ExchangeTradeHistoryService
}
