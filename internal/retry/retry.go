// Package retry implements a bounded, fixed-delay retry loop.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-nclink/internal/pool"
)

// ErrExhausted is matched by the error returned from Do when every attempt failed.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy describes how many times an operation is attempted and how long to
// wait between consecutive attempts.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Delay is the fixed wait between a failed attempt and the next one.
	Delay time.Duration
	// OnFailure, if set, is called after every failed attempt.
	OnFailure func(attempt int, err error)
}

// ExhaustedError reports that all attempts of a Policy failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Attempts, e.Last)
}

// Unwrap exposes both ErrExhausted and the last attempt's error to errors.Is.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Last}
}

// Do calls fn until it succeeds or the policy's attempt budget is spent.
//
// fn receives the 1-based attempt number. There is no wait before the first
// attempt and none after the last one. If ctx ends while waiting, Do returns
// the context error joined with the last failure.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	attempts := max(p.MaxAttempts, 1)

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := pool.Sleep(ctx, p.Delay); err != nil {
				return errors.Join(err, last)
			}
		}

		last = fn(attempt)
		if last == nil {
			return nil
		}

		if p.OnFailure != nil {
			p.OnFailure(attempt, last)
		}
	}

	return &ExhaustedError{Attempts: attempts, Last: last}
}
