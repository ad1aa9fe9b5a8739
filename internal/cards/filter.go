/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cards

import (
	"errors"
	"fmt"
	"time"
)

var ErrNotEnoughCandidates = errors.New("not enough candidates matching filters")

// FilterConfig holds the three player-facing toggles.
type FilterConfig struct {
	IncludePartner    bool `json:"include_partner"`
	IncludeUnreleased bool `json:"include_unreleased"`
	IncludeIllegal    bool `json:"include_illegal"`
}

// Key returns a short stable string identifying the combination of toggles.
func (f FilterConfig) Key() string {
	return fmt.Sprintf("p%d-u%d-i%d", b2i(f.IncludePartner), b2i(f.IncludeUnreleased), b2i(f.IncludeIllegal))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Excludes reports whether cfg removes c from the candidate pool at now.
func (f FilterConfig) Excludes(c Card, now time.Time) bool {
	if !f.IncludePartner && c.HasKeyword("Partner") {
		return true
	}
	if !f.IncludeUnreleased {
		if released, ok := c.ReleaseDate(); ok && released.After(now) {
			return true
		}
	}
	if !f.IncludeIllegal && c.Legality("commander") != "legal" {
		return true
	}
	return false
}

// Filter returns the cards of pool that cfg keeps, in their original order.
// pool is not modified.
func Filter(pool []Card, cfg FilterConfig, now time.Time) []Card {
	out := make([]Card, 0, len(pool))
	for _, c := range pool {
		if cfg.Excludes(c, now) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Require returns ErrNotEnoughCandidates when pool holds fewer than n cards.
func Require(pool []Card, n int) error {
	if len(pool) < n {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughCandidates, len(pool), n)
	}
	return nil
}
