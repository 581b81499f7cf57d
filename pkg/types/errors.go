package types

import "github.com/pkg/errors"

// Error taxonomy shared between the exchange clients, the sync pipeline and
// the HTTP layer. The exchange clients wrap these sentinels so callers can
// classify failures with errors.Is without importing exchange packages.
var (
	// ErrAuthentication marks bad or missing exchange credentials. Retrying
	// with the same credential only wastes quota, so a sync aborts on it.
	ErrAuthentication = errors.New("exchange authentication failed")

	// ErrRateLimit marks an upstream throttling response (HTTP 429 or the
	// exchange-specific equivalent) before backoff retries are exhausted.
	ErrRateLimit = errors.New("exchange rate limit")

	// ErrRateLimitExceeded is returned once bounded backoff retries for a
	// range are exhausted; the caller decides to skip or abort.
	ErrRateLimitExceeded = errors.New("exchange rate limit exceeded")

	ErrInvalidExchangeProvider = errors.New("invalid exchange provider")

	ErrCredentialsMissing = errors.New("exchange credentials missing")

	// ErrUnknownMarket means the ledger can not resolve an exchange market
	// code to a coin reference; the affected entries are skipped.
	ErrUnknownMarket = errors.New("unknown market code")
)

func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimit)
}
