/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cards

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

//go:embed data/commanders.json
var sampleJSON []byte

var ErrUnknownFormat = errors.New("unknown dataset format")

// Dataset is the immutable card collection loaded at startup.
type Dataset struct {
	cards []Card
}

// NewDataset wraps cards. Records without a name are dropped.
func NewDataset(cards []Card) *Dataset {
	kept := make([]Card, 0, len(cards))
	for _, c := range cards {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		kept = append(kept, c)
	}
	return &Dataset{cards: kept}
}

// Sample returns the dataset compiled into the binary.
func Sample() (*Dataset, error) {
	cards, err := DecodeJSON(sampleJSON)
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return NewDataset(cards), nil
}

// Load reads a dataset from path. JSON files hold an array of card objects;
// .db and .sqlite files are read with LoadSQLite. An empty path loads the
// embedded sample.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Sample()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		cards, err := DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return NewDataset(cards), nil
	case ".db", ".sqlite", ".sqlite3":
		cards, err := LoadSQLite(path)
		if err != nil {
			return nil, err
		}
		return NewDataset(cards), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// DecodeJSON parses a JSON array of card objects.
func DecodeJSON(data []byte) ([]Card, error) {
	var cards []Card
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cards); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return cards, nil
}

// Cards returns the collection. Callers must not modify it.
func (d *Dataset) Cards() []Card {
	return d.cards
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.cards)
}

type nameSource []Card

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }

// Search fuzzy-matches query against card names in pool, best match first.
// At most limit cards are returned; limit <= 0 means no limit.
func Search(pool []Card, query string, limit int) []Card {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, nameSource(pool))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Card, 0, len(matches))
	for _, m := range matches {
		out = append(out, pool[m.Index])
	}
	return out
}

// IsCommanderEligible reports whether a card may lead a commander deck:
// legendary creatures, or anything whose text says it can be your commander.
func IsCommanderEligible(c Card) bool {
	tl := strings.ToLower(c.TypeLine)
	if strings.Contains(tl, "legendary") && strings.Contains(tl, "creature") {
		return true
	}
	return strings.Contains(strings.ToLower(c.OracleText), "can be your commander")
}
