/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package guess

import (
	"errors"
	"slices"
)

var (
	ErrRepeatedGuess = errors.New("order unchanged since last guess")
	ErrInvalidOrder  = errors.New("order must name every card exactly once")
	ErrSolved        = errors.New("puzzle already solved")
)

// CheckOrder compares ranks, in the player's order, position by position
// with the same ranks sorted ascending.
func CheckOrder(ranks []int) []bool {
	sorted := slices.Clone(ranks)
	slices.Sort(sorted)

	out := make([]bool, len(ranks))
	for i := range ranks {
		out[i] = ranks[i] == sorted[i]
	}
	return out
}

// Puzzle is one player's attempt at a daily ordering puzzle.
type Puzzle struct {
	ranks   map[string]int
	history [][]bool
	last    []string
	solved  bool
}

// NewPuzzle creates a puzzle over the given card ranks.
func NewPuzzle(ranks map[string]int) *Puzzle {
	return &Puzzle{ranks: ranks}
}

// Solved reports whether a guess has placed every card correctly.
func (p *Puzzle) Solved() bool {
	return p.solved
}

// History returns the correctness vectors of all accepted guesses, oldest
// first.
func (p *Puzzle) History() [][]bool {
	out := make([][]bool, len(p.history))
	for i, h := range p.history {
		out[i] = slices.Clone(h)
	}
	return out
}

// Last returns the most recently accepted order, or nil before the first
// guess.
func (p *Puzzle) Last() []string {
	return slices.Clone(p.last)
}

// CanSubmit reports whether order would be accepted: the puzzle is still
// open, order is a permutation of the cards, and it differs from the
// previous guess.
func (p *Puzzle) CanSubmit(order []string) bool {
	return p.check(order) == nil
}

func (p *Puzzle) check(order []string) error {
	if p.solved {
		return ErrSolved
	}
	if len(order) != len(p.ranks) {
		return ErrInvalidOrder
	}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if _, ok := p.ranks[name]; !ok || seen[name] {
			return ErrInvalidOrder
		}
		seen[name] = true
	}
	if p.last != nil && slices.Equal(order, p.last) {
		return ErrRepeatedGuess
	}
	return nil
}

// Submit scores order and records it in the history.
func (p *Puzzle) Submit(order []string) ([]bool, error) {
	if err := p.check(order); err != nil {
		return nil, err
	}

	ranks := make([]int, len(order))
	for i, name := range order {
		ranks[i] = p.ranks[name]
	}

	result := CheckOrder(ranks)
	p.history = append(p.history, result)
	p.last = slices.Clone(order)
	p.solved = !slices.Contains(result, false)

	return slices.Clone(result), nil
}
