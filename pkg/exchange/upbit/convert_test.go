package upbit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cointrail/cointrail/pkg/exchange/upbit/upbitapi"
	"github.com/cointrail/cointrail/pkg/fixedpoint"
	"github.com/cointrail/cointrail/pkg/types"
)

func TestConvertOrder(t *testing.T) {
	o := upbitapi.Order{
		UUID:           "cdd92199",
		Side:           "ask",
		OrdType:        "limit",
		Market:         "KRW-ETH",
		State:          "done",
		Price:          fixedpoint.NewFromInt(2500000),
		Volume:         fixedpoint.NewFromFloat(1.5),
		ExecutedVolume: fixedpoint.NewFromFloat(1.5),
		PaidFee:        fixedpoint.NewFromFloat(1875),
		Trades: []upbitapi.Trade{
			{UUID: "fill-1", Market: "KRW-ETH", Side: "ask", Price: fixedpoint.NewFromInt(2500000), Volume: fixedpoint.NewFromFloat(1.5)},
		},
	}

	converted := convertOrder(o)
	assert.Equal(t, types.SideTypeSell, converted.Side)
	assert.Equal(t, types.OrderStateDone, converted.State)
	assert.Len(t, converted.Trades, 1)
	assert.Equal(t, "fill-1", converted.Trades[0].UUID)
	assert.Equal(t, types.SideTypeSell, converted.Trades[0].Side)
}

func TestConvertMarket(t *testing.T) {
	coin, err := convertMarket(upbitapi.Market{Market: "KRW-BTC", KoreanName: "비트코인", EnglishName: "Bitcoin"})
	assert.NoError(t, err)
	assert.Equal(t, "BTC", coin.Symbol)
	assert.Equal(t, "KRW", coin.QuoteCurrency)
	assert.Equal(t, "KRW-BTC", coin.MarketCode)
	assert.Equal(t, types.ExchangeUpbit, coin.Exchange)

	_, err = convertMarket(upbitapi.Market{Market: "KRWBTC"})
	assert.Error(t, err)
}

func TestEarliestTradingTime(t *testing.T) {
	e := &Exchange{}
	earliest := e.EarliestTradingTime()
	assert.Equal(t, 2017, earliest.Year())
	assert.Equal(t, "KST", earliest.Location().String())
}
