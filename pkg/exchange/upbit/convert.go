package upbit

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/cointrail/cointrail/pkg/exchange/upbit/upbitapi"
	"github.com/cointrail/cointrail/pkg/types"
)

func convertSide(side string) types.SideType {
	if side == "ask" {
		return types.SideTypeSell
	}
	return types.SideTypeBuy
}

func convertOrder(o upbitapi.Order) types.Order {
	order := types.Order{
		UUID:            o.UUID,
		Market:          o.Market,
		Side:            convertSide(o.Side),
		OrderType:       o.OrdType,
		State:           types.OrderState(o.State),
		Price:           o.Price,
		Volume:          o.Volume,
		ExecutedVolume:  o.ExecutedVolume,
		RemainingVolume: o.RemainingVolume,
		PaidFee:         o.PaidFee,
		TradesCount:     o.TradesCount,
		CreationTime:    o.CreatedAt,
	}

	for _, t := range o.Trades {
		order.Trades = append(order.Trades, types.OrderTrade{
			UUID:         t.UUID,
			Market:       t.Market,
			Side:         convertSide(t.Side),
			Price:        t.Price,
			Volume:       t.Volume,
			Funds:        t.Funds,
			CreationTime: t.CreatedAt,
		})
	}

	return order
}

func convertOrders(orders []upbitapi.Order) (result []types.Order) {
	for _, o := range orders {
		result = append(result, convertOrder(o))
	}
	return result
}

// convertMarket maps a market code like "KRW-BTC" into a coin reference:
// the quote currency comes first, the base symbol second.
func convertMarket(m upbitapi.Market) (types.Coin, error) {
	parts := strings.SplitN(m.Market, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return types.Coin{}, errors.Errorf("malformed market code %q", m.Market)
	}

	return types.Coin{
		Symbol:        parts[1],
		QuoteCurrency: parts[0],
		MarketCode:    m.Market,
		KoreanName:    m.KoreanName,
		EnglishName:   m.EnglishName,
		Exchange:      types.ExchangeUpbit,
	}, nil
}
