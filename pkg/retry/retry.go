// Package retry runs actions repeatedly until they succeed or a Strategy gives
// up.
package retry

// Action is a unit of work that may be retried.
type Action func() error

// Retrier runs actions with a fixed set of strategies.
type Retrier interface {
	// Retry runs action until it succeeds or a strategy stops it, returning
	// the number of attempts made and the last error.
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier using strategies. Without any strategies the
// action is retried in a tight loop until it succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry runs action until it succeeds, or until one of strategies declines to
// retry after a failure. Strategies are consulted in order and the first to
// decline short circuits the rest, so delaying strategies belong last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil || !shouldRetry(strategies, attempts, err) {
			return attempts, err
		}
	}
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
