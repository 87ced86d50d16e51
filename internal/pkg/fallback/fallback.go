// Package fallback tries an ordered list of sources one after another and
// stops at the first one that succeeds.
package fallback

import (
	"context"
	"fmt"
	"time"
)

// Source produces a value or fails. Index is the position in the list.
type Source[T any] func(ctx context.Context, index int) (T, error)

// Result is the tagged success value: the produced value and the index of
// the source that produced it.
type Result[T any] struct {
	Value  T
	Source int
}

// ExhaustedError is returned when every source failed. Errors are in the
// order the sources were tried.
type ExhaustedError struct {
	Errors []error
}

func (e *ExhaustedError) Error() string {
	if len(e.Errors) == 0 {
		return "fallback: no sources"
	}
	return fmt.Sprintf("fallback: all %d source(s) failed, last error: %v", len(e.Errors), e.Errors[len(e.Errors)-1])
}

// Unwrap allows errors.Is / errors.As to see every attempt error.
func (e *ExhaustedError) Unwrap() []error {
	return e.Errors
}

// Last returns the error of the final source, or nil.
func (e *ExhaustedError) Last() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[len(e.Errors)-1]
}

// Options tunes FirstSuccess.
type Options struct {
	// Backoff is waited after a failed source before the next one is tried.
	Backoff time.Duration
	// OnFailure is called for each failed source.
	OnFailure func(index int, err error)
}

// FirstSuccess calls the sources strictly in order. A source is only started
// after the previous one returned an error. Context cancellation during the
// backoff stops the walk and is recorded as the failure of the next source.
func FirstSuccess[T any](ctx context.Context, sources []Source[T], opts Options) (Result[T], error) {
	errs := make([]error, 0, len(sources))
	for i, src := range sources {
		value, err := src(ctx, i)
		if err == nil {
			return Result[T]{Value: value, Source: i}, nil
		}
		errs = append(errs, err)
		if opts.OnFailure != nil {
			opts.OnFailure(i, err)
		}
		if i == len(sources)-1 {
			break
		}
		if waitErr := sleep(ctx, opts.Backoff); waitErr != nil {
			errs = append(errs, fmt.Errorf("source %d not attempted: %w", i+1, waitErr))
			break
		}
	}
	return Result[T]{Source: -1}, &ExhaustedError{Errors: errs}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
