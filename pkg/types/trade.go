package types

import (
	"fmt"

	"github.com/cointrail/cointrail/pkg/fixedpoint"
)

// TradeType is the persisted side of a ledger entry: 0 buy, 1 sell.
type TradeType int

const (
	TradeTypeBuy  TradeType = 0
	TradeTypeSell TradeType = 1
)

func (t TradeType) String() string {
	if t == TradeTypeSell {
		return "sell"
	}
	return "buy"
}

// TradingHistory is the canonical ledger row, one per executed fill.
// Fills are immutable historical facts: a row is created once by the first
// sync that observes it and never mutated afterward.
type TradingHistory struct {
	// GID is the global ID
	GID int64 `json:"gid" db:"gid"`

	UserID    string       `json:"userID" db:"user_id"`
	CoinID    int64        `json:"coinID" db:"coin_id"`
	Exchange  ExchangeName `json:"exchange" db:"exchange"`
	TradeUUID string       `json:"tradeUUID" db:"trade_uuid"`

	TradeType TradeType `json:"tradeType" db:"trade_type"`

	Price      fixedpoint.Value `json:"price" db:"price"`
	Quantity   fixedpoint.Value `json:"quantity" db:"quantity"`
	TotalPrice fixedpoint.Value `json:"totalPrice" db:"total_price"`
	Fee        fixedpoint.Value `json:"fee" db:"fee"`

	TradeTime Time `json:"tradeTime" db:"trade_time"`
	CreatedAt Time `json:"createdAt" db:"created_at"`
}

func (h TradingHistory) String() string {
	return fmt.Sprintf("HISTORY %s %s %4s %s @ %s | FEE %s | %s",
		h.Exchange,
		h.TradeUUID,
		h.TradeType,
		h.Quantity.String(),
		h.Price.String(),
		h.Fee.String(),
		h.TradeTime.Time().Format("2006-01-02 15:04:05"),
	)
}

func (h TradingHistory) Key() TradingHistoryKey {
	return TradingHistoryKey{
		UserID:    h.UserID,
		Exchange:  h.Exchange,
		TradeUUID: h.TradeUUID,
	}
}

// TradingHistoryKey is the dedup key; the storage layer enforces the same
// triple with a unique constraint.
type TradingHistoryKey struct {
	UserID    string
	Exchange  ExchangeName
	TradeUUID string
}

func (k TradingHistoryKey) String() string {
	return k.UserID + "-" + k.Exchange.String() + "-" + k.TradeUUID
}
