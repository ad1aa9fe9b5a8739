/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package cards holds the commander dataset and the filters applied to it.
package cards

import (
	"slices"
	"time"
)

const releaseLayout = "2006-01-02"

// Colorless is the color identity assigned to cards that carry none.
const Colorless = "C"

// ImageURIs mirrors the subset of Scryfall's image_uris object we display.
type ImageURIs struct {
	ArtCrop string `json:"art_crop,omitempty"`
	Large   string `json:"large,omitempty"`
	PNG     string `json:"png,omitempty"`
}

// Empty reports whether no image is known.
func (i ImageURIs) Empty() bool {
	return i.ArtCrop == "" && i.Large == "" && i.PNG == ""
}

// Art returns the best image for a cropped art tile: art_crop, large, png.
func (i ImageURIs) Art() string {
	switch {
	case i.ArtCrop != "":
		return i.ArtCrop
	case i.Large != "":
		return i.Large
	}
	return i.PNG
}

// Full returns the best image of the whole card: large, png, art_crop.
func (i ImageURIs) Full() string {
	switch {
	case i.Large != "":
		return i.Large
	case i.PNG != "":
		return i.PNG
	}
	return i.ArtCrop
}

// Card is one record of the static dataset. Field names follow the Scryfall
// card object so bulk data can be loaded without translation.
type Card struct {
	Name          string            `json:"name"`
	SetName       string            `json:"set_name,omitempty"`
	TypeLine      string            `json:"type_line,omitempty"`
	ImageURIs     ImageURIs         `json:"image_uris"`
	ManaValue     *float64          `json:"cmc,omitempty"`
	ManaCost      string            `json:"mana_cost,omitempty"`
	OracleText    string            `json:"oracle_text,omitempty"`
	ColorIdentity []string          `json:"color_identity,omitempty"`
	Keywords      []string          `json:"keywords,omitempty"`
	ReleasedAt    string            `json:"released_at,omitempty"`
	Legalities    map[string]string `json:"legalities,omitempty"`
}

// Colors returns the color identity, or colorless when the record has none.
func (c Card) Colors() []string {
	if len(c.ColorIdentity) == 0 {
		return []string{Colorless}
	}
	return c.ColorIdentity
}

// HasKeyword reports whether the card lists keyword exactly.
func (c Card) HasKeyword(keyword string) bool {
	return slices.Contains(c.Keywords, keyword)
}

// ReleaseDate parses ReleasedAt. ok is false when the date is missing or
// malformed.
func (c Card) ReleaseDate() (time.Time, bool) {
	if c.ReleasedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(releaseLayout, c.ReleasedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Legality returns the card's legality string in format, or "" when unknown.
func (c Card) Legality(format string) string {
	return c.Legalities[format]
}
