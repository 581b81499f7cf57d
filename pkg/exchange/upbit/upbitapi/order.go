package upbitapi

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/cointrail/cointrail/pkg/fixedpoint"
	"github.com/cointrail/cointrail/pkg/types"
)

// ClosedOrdersLimitMax is the hard page cap of the closed orders endpoint.
const ClosedOrdersLimitMax = 1000

type OrderService struct {
	client *RestClient
}

// Order is the exchange-native order payload, shared by the closed orders
// listing and the single order detail endpoint. Trades is only present in
// the detail response.
type Order struct {
	UUID            string           `json:"uuid"`
	Side            string           `json:"side"`
	OrdType         string           `json:"ord_type"`
	Price           fixedpoint.Value `json:"price"`
	State           string           `json:"state"`
	Market          string           `json:"market"`
	CreatedAt       types.Time       `json:"created_at"`
	Volume          fixedpoint.Value `json:"volume"`
	RemainingVolume fixedpoint.Value `json:"remaining_volume"`
	ReservedFee     fixedpoint.Value `json:"reserved_fee"`
	PaidFee         fixedpoint.Value `json:"paid_fee"`
	ExecutedVolume  fixedpoint.Value `json:"executed_volume"`
	TradesCount     int              `json:"trades_count"`
	Trades          []Trade          `json:"trades"`
}

// Trade is one executed fill inside an order detail response.
type Trade struct {
	UUID      string           `json:"uuid"`
	Market    string           `json:"market"`
	Side      string           `json:"side"`
	Price     fixedpoint.Value `json:"price"`
	Volume    fixedpoint.Value `json:"volume"`
	Funds     fixedpoint.Value `json:"funds"`
	CreatedAt types.Time       `json:"created_at"`
}

type ClosedOrdersOptions struct {
	// States filters order states; the sync pipeline asks for done and
	// cancel and filters out zero-executed cancellations afterwards.
	States []string

	StartTime time.Time
	EndTime   time.Time

	// Limit caps the page size, up to ClosedOrdersLimitMax.
	Limit int
}

// ClosedOrders calls GET /orders/closed with a signed request.
func (s *OrderService) ClosedOrders(ctx context.Context, options ClosedOrdersOptions) ([]Order, error) {
	params := url.Values{}

	states := options.States
	if len(states) == 0 {
		states = []string{"done", "cancel"}
	}
	for _, state := range states {
		params.Add("states[]", state)
	}

	if !options.StartTime.IsZero() {
		params.Set("start_time", options.StartTime.Format(time.RFC3339))
	}
	if !options.EndTime.IsZero() {
		params.Set("end_time", options.EndTime.Format(time.RFC3339))
	}

	limit := options.Limit
	if limit <= 0 || limit > ClosedOrdersLimitMax {
		limit = ClosedOrdersLimitMax
	}
	params.Set("limit", strconv.Itoa(limit))

	response, err := s.client.sendAuthenticatedRequest(ctx, "GET", "orders/closed", params)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := response.DecodeJSON(&orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// Get calls GET /order for a single order, including its fills.
func (s *OrderService) Get(ctx context.Context, orderUUID string) (*Order, error) {
	params := url.Values{}
	params.Set("uuid", orderUUID)

	response, err := s.client.sendAuthenticatedRequest(ctx, "GET", "order", params)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := response.DecodeJSON(&order); err != nil {
		return nil, err
	}

	return &order, nil
}
