/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package draw

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/rank"
)

const DefaultPairAttempts = 10

var ErrNoValidCandidate = errors.New("failed to fetch valid candidate")

// Pair is the two cards of a pairwise round.
type Pair struct {
	Left  Candidate `json:"left"`
	Right Candidate `json:"right"`
}

func (p Pair) valid() bool {
	return p.Left.Card.Name != p.Right.Card.Name && p.Left.Ranked() && p.Right.Ranked()
}

// DistinctPair draws two different indices in [0, n) uniformly over all
// ordered pairs. intn must return a uniform value in [0, k). n must be at
// least 2.
func DistinctPair(n int, intn func(int) int) (a, b int) {
	a = intn(n)
	b = intn(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// Pairer draws pairwise rounds.
type Pairer struct {
	Resolver    rank.Resolver
	Images      ImageSource
	MaxAttempts int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPairer returns a Pairer using a randomly seeded generator.
func NewPairer(resolver rank.Resolver, images ImageSource) *Pairer {
	return &Pairer{
		Resolver:    resolver,
		Images:      images,
		MaxAttempts: DefaultPairAttempts,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// WithRand replaces the generator, for reproducible draws.
func (p *Pairer) WithRand(r *rand.Rand) *Pairer {
	p.mu.Lock()
	p.rng = r
	p.mu.Unlock()
	return p
}

func (p *Pairer) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		return rand.IntN(n)
	}
	return p.rng.IntN(n)
}

// DrawPair picks two distinct cards from pool and resolves both ranks
// concurrently. Draws with equal names or an unknown rank are retried up to
// MaxAttempts times before ErrNoValidCandidate is returned.
func (p *Pairer) DrawPair(ctx context.Context, pool []cards.Card) (Pair, error) {
	if err := cards.Require(pool, 2); err != nil {
		return Pair{}, err
	}

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultPairAttempts
	}

	policy := Policy[Pair]{
		MaxAttempts: attempts,
		Valid:       Pair.valid,
	}

	pair, err := policy.Do(ctx, func(ctx context.Context, _ int) (Pair, error) {
		a, b := DistinctPair(len(pool), p.intn)
		if pool[a].Name == pool[b].Name {
			// reprints share a name; no point asking for ranks
			return Pair{Left: newCandidate(pool[a], 0), Right: newCandidate(pool[b], 0)}, nil
		}
		return p.resolve(ctx, pool[a], pool[b])
	})
	if errors.Is(err, ErrExhausted) {
		return Pair{}, fmt.Errorf("%w after %d attempts", ErrNoValidCandidate, attempts)
	}
	if err != nil {
		return Pair{}, err
	}

	pair.Left = withImages(ctx, p.Images, pair.Left)
	pair.Right = withImages(ctx, p.Images, pair.Right)

	return pair, nil
}

func (p *Pairer) resolve(ctx context.Context, left, right cards.Card) (Pair, error) {
	var leftRank, rightRank int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leftRank, _ = p.Resolver.ResolveRank(gctx, left.Name)
		return nil
	})
	g.Go(func() error {
		rightRank, _ = p.Resolver.ResolveRank(gctx, right.Name)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Pair{}, err
	}

	return Pair{
		Left:  newCandidate(left, leftRank),
		Right: newCandidate(right, rightRank),
	}, nil
}
