package exchange

import (
	"github.com/pkg/errors"

	"github.com/cointrail/cointrail/pkg/exchange/upbit"
	"github.com/cointrail/cointrail/pkg/types"
)

// New constructs an exchange adapter for the given provider, bound to one
// user's credential.
func New(name types.ExchangeName, cred types.Credential) (types.Exchange, error) {
	switch name {
	case types.ExchangeUpbit:
		return upbit.New(cred.AccessKey, cred.SecretKey), nil
	}

	return nil, errors.Wrapf(types.ErrInvalidExchangeProvider, "exchange %q is not supported", name)
}

// NewMarketService constructs an unauthenticated adapter for public market
// listings, used to build the coin reference table.
func NewMarketService(name types.ExchangeName) (types.ExchangeMarketService, error) {
	switch name {
	case types.ExchangeUpbit:
		return upbit.New("", ""), nil
	}

	return nil, errors.Wrapf(types.ErrInvalidExchangeProvider, "exchange %q is not supported", name)
}
