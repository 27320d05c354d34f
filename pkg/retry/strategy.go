package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/nft-airdrop/pkg/retry/backoff"
)

// Strategy decides whether a failed action should run again. Strategies may
// block, for example to back off.
type Strategy func(attempts uint, err error) bool

// Limit allows at most maxAttempts runs of the action in total.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors retries only errors matching one of retriableErrors.
func RetriableErrors(retriableErrors ...error) Strategy {
	return RetriableFunc(func(err error) bool {
		return isAny(err, retriableErrors)
	})
}

// NonRetriableErrors retries every error except those matching one of
// nonRetriableErrors.
func NonRetriableErrors(nonRetriableErrors ...error) Strategy {
	return RetriableFunc(func(err error) bool {
		return !isAny(err, nonRetriableErrors)
	})
}

// RetriableFunc retries errors for which isRetriable returns true.
func RetriableFunc(isRetriable func(err error) bool) Strategy {
	return func(_ uint, err error) bool {
		return isRetriable(err)
	}
}

// Context stops retrying once ctx is done.
func Context(ctx context.Context) Strategy {
	return func(uint, error) bool {
		return ctx.Err() == nil
	}
}

// Backoff sleeps for the strategy's delay, capped at maxBackoff, before every
// retry.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay randomly moved by up to
// jitter of itself in either direction. A 100ms delay with a jitter of 0.1
// sleeps between 90ms and 110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 + jitter*(2*rand.Float64()-1)))
		}

		sleeperImpl.Sleep(delay)
		return true
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
