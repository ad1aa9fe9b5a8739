/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scryfall

import (
	"fmt"

	"github.com/Seednode/commandle/internal/cards"
)

// Card is the part of a Scryfall card object the art lookups need.
type Card struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SetName       string            `json:"set_name"`
	TypeLine      string            `json:"type_line"`
	ReleasedAt    string            `json:"released_at"`
	ManaCost      string            `json:"mana_cost,omitempty"`
	CMC           *float64          `json:"cmc,omitempty"`
	OracleText    string            `json:"oracle_text,omitempty"`
	ColorIdentity []string          `json:"color_identity"`
	Keywords      []string          `json:"keywords,omitempty"`
	Legalities    map[string]string `json:"legalities"`
	ImageURIs     *cards.ImageURIs  `json:"image_uris,omitempty"`
	CardFaces     []CardFace        `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name      string           `json:"name"`
	ManaCost  string           `json:"mana_cost,omitempty"`
	ImageURIs *cards.ImageURIs `json:"image_uris,omitempty"`
}

// Images returns the card's image URIs, falling back to the first face that
// has any.
func (c *Card) Images() cards.ImageURIs {
	if c.ImageURIs != nil && !c.ImageURIs.Empty() {
		return *c.ImageURIs
	}
	for _, f := range c.CardFaces {
		if f.ImageURIs != nil && !f.ImageURIs.Empty() {
			return *f.ImageURIs
		}
	}
	return cards.ImageURIs{}
}

// Record converts the card into a dataset record.
func (c *Card) Record() cards.Card {
	return cards.Card{
		Name:          c.Name,
		SetName:       c.SetName,
		TypeLine:      c.TypeLine,
		ImageURIs:     c.Images(),
		ManaValue:     c.CMC,
		ManaCost:      c.ManaCost,
		OracleText:    c.OracleText,
		ColorIdentity: c.ColorIdentity,
		Keywords:      c.Keywords,
		ReleasedAt:    c.ReleasedAt,
		Legalities:    c.Legalities,
	}
}

// APIError is Scryfall's error object.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scryfall API error %d (%s): %s", e.Status, e.Code, e.Details)
}

// NotFoundError is returned when Scryfall answers 404.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}
