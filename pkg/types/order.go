package types

import (
	"fmt"

	"github.com/cointrail/cointrail/pkg/fixedpoint"
)

type SideType string

const (
	SideTypeBuy  SideType = "bid"
	SideTypeSell SideType = "ask"
)

func (s SideType) String() string {
	return string(s)
}

type OrderState string

const (
	OrderStateDone   OrderState = "done"
	OrderStateCancel OrderState = "cancel"
)

// Order is the exchange-native record of one order. It may aggregate
// multiple fills; Trades is only populated by the per-order detail query.
// Orders are transient, the persisted unit is TradingHistory.
type Order struct {
	UUID            string           `json:"uuid"`
	Market          string           `json:"market"`
	Side            SideType         `json:"side"`
	OrderType       string           `json:"ord_type"`
	State           OrderState       `json:"state"`
	Price           fixedpoint.Value `json:"price"`
	Volume          fixedpoint.Value `json:"volume"`
	ExecutedVolume  fixedpoint.Value `json:"executed_volume"`
	RemainingVolume fixedpoint.Value `json:"remaining_volume"`
	PaidFee         fixedpoint.Value `json:"paid_fee"`
	TradesCount     int              `json:"trades_count"`
	CreationTime    Time             `json:"created_at"`

	Trades []OrderTrade `json:"trades,omitempty"`
}

func (o Order) String() string {
	return fmt.Sprintf("ORDER %s %s %s %s @ %s executed %s/%s %s",
		o.UUID,
		o.Market,
		o.Side,
		o.OrderType,
		o.Price.String(),
		o.ExecutedVolume.String(),
		o.Volume.String(),
		o.State,
	)
}

// OrderTrade is a single executed fill of an order, with its own price,
// volume and execution time.
type OrderTrade struct {
	UUID         string           `json:"uuid"`
	Market       string           `json:"market"`
	Side         SideType         `json:"side"`
	Price        fixedpoint.Value `json:"price"`
	Volume       fixedpoint.Value `json:"volume"`
	Funds        fixedpoint.Value `json:"funds"`
	CreationTime Time             `json:"created_at"`
}
