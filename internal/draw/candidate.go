/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package draw picks the cards for each round: random distinct pairs for
// pairwise play and a date-seeded set for the daily puzzle.
package draw

import (
	"context"

	"github.com/Seednode/commandle/internal/cards"
)

// Candidate is a card drawn into a round together with its resolved rank.
// Rank is 0 while unknown.
type Candidate struct {
	Card         cards.Card `json:"card"`
	Rank         int        `json:"rank,omitempty"`
	ArtURL       string     `json:"art_url,omitempty"`
	CardImageURL string     `json:"card_image_url,omitempty"`
}

// Ranked reports whether the candidate has a usable rank.
func (c Candidate) Ranked() bool {
	return c.Rank > 0
}

// ImageSource looks up images for cards the dataset has none for.
type ImageSource interface {
	Images(ctx context.Context, name string) (cards.ImageURIs, error)
}

func newCandidate(c cards.Card, rank int) Candidate {
	return Candidate{
		Card:         c,
		Rank:         rank,
		ArtURL:       c.ImageURIs.Art(),
		CardImageURL: c.ImageURIs.Full(),
	}
}

// withImages fills in missing image URLs from src. Lookup failures leave the
// candidate as it was.
func withImages(ctx context.Context, src ImageSource, c Candidate) Candidate {
	if src == nil || !c.Card.ImageURIs.Empty() {
		return c
	}
	images, err := src.Images(ctx, c.Card.Name)
	if err != nil || images.Empty() {
		return c
	}
	c.Card.ImageURIs = images
	c.ArtURL = images.Art()
	c.CardImageURL = images.Full()
	return c
}
