/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"context"
	"errors"
)

var ErrExhausted = errors.New("retry budget exhausted")

// Policy retries an attempt until it produces a valid result or MaxAttempts
// attempts have been made.
type Policy[T any] struct {
	MaxAttempts int
	Valid       func(T) bool
}

// Do calls attempt with 0, 1, 2, ... and returns the first valid result.
// An attempt error stops the loop immediately. ctx is checked before every
// attempt.
func (p Policy[T]) Do(ctx context.Context, attempt func(ctx context.Context, n int) (T, error)) (T, error) {
	var zero T

	for n := 0; n < p.MaxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := attempt(ctx, n)
		if err != nil {
			return zero, err
		}
		if p.Valid == nil || p.Valid(v) {
			return v, nil
		}
	}

	return zero, ErrExhausted
}
