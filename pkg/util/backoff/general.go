package backoff

import (
	"context"

	"github.com/cenkalti/backoff/v4"
)

var MaxRetries uint64 = 101

// LiteMaxRetries bounds retries on paths where giving up is cheap, like a
// single time range of a sync run.
var LiteMaxRetries uint64 = 5

func RetryGeneral(ctx context.Context, op backoff.Operation) (err error) {
	err = backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(),
			MaxRetries),
		ctx))
	return err
}

func RetryLite(ctx context.Context, op backoff.Operation) (err error) {
	err = backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(),
			LiteMaxRetries),
		ctx))
	return err
}
