/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"context"
	"errors"
	"slices"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/rank"
)

const (
	DefaultDailySize     = 5
	DefaultDailyAttempts = 50
)

var errPoolDrained = errors.New("working pool drained")

// Daily describes one seeded draw.
type Daily struct {
	Seed        int
	Size        int
	MaxAttempts int
	PRNG        PRNG
	Resolver    rank.Resolver
	Images      ImageSource
}

// Draw picks up to d.Size ranked cards from pool. Attempt k takes the card
// at floor(PRNG(seed+k) * len(working)) out of a shrinking working copy of
// pool, whether or not it ends up qualifying. A card qualifies when its rank
// is positive and no card of the same name was already chosen.
//
// The result is shorter than Size when the attempt ceiling is reached or the
// pool runs out first. For a fixed seed, pool and set of rank answers the
// result is always the same.
func (d Daily) Draw(ctx context.Context, pool []cards.Card) ([]Candidate, error) {
	size := d.Size
	if size <= 0 {
		size = DefaultDailySize
	}
	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultDailyAttempts
	}
	prng := d.PRNG
	if prng == nil {
		prng = SineHash
	}

	if err := cards.Require(pool, size); err != nil {
		return nil, err
	}

	working := slices.Clone(pool)
	chosen := make([]Candidate, 0, size)
	names := make(map[string]bool, size)

	policy := Policy[int]{
		MaxAttempts: attempts,
		Valid:       func(n int) bool { return n >= size },
	}

	_, err := policy.Do(ctx, func(ctx context.Context, k int) (int, error) {
		if len(working) == 0 {
			return len(chosen), errPoolDrained
		}

		i := index(prng(float64(d.Seed+k)), len(working))
		card := working[i]
		working = slices.Delete(working, i, i+1)

		if names[card.Name] {
			return len(chosen), nil
		}

		r, ok := d.Resolver.ResolveRank(ctx, card.Name)
		if !ok || r <= 0 {
			return len(chosen), nil
		}

		names[card.Name] = true
		chosen = append(chosen, newCandidate(card, r))
		return len(chosen), nil
	})

	switch {
	case err == nil, errors.Is(err, ErrExhausted), errors.Is(err, errPoolDrained):
	default:
		return nil, err
	}

	for i := range chosen {
		chosen[i] = withImages(ctx, d.Images, chosen[i])
	}

	return chosen, nil
}
