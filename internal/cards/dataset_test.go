package cards

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	ds, err := Sample()
	require.NoError(t, err)
	require.Greater(t, ds.Len(), 10)

	seen := make(map[string]bool)
	for _, c := range ds.Cards() {
		assert.NotEmpty(t, c.Name)
		assert.False(t, seen[c.Name], "duplicate %q", c.Name)
		seen[c.Name] = true
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	data := `[
		{"name": "Krenko, Mob Boss", "cmc": 4, "color_identity": ["R"], "legalities": {"commander": "legal"}},
		{"name": ""},
		{"name": "Sliver Overlord", "released_at": "2003-05-26"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	krenko := ds.Cards()[0]
	assert.Equal(t, "Krenko, Mob Boss", krenko.Name)
	require.NotNil(t, krenko.ManaValue)
	assert.Equal(t, 4.0, *krenko.ManaValue)
	assert.Nil(t, ds.Cards()[1].ManaValue)
}

func TestLoad_EmptyPathUsesSample(t *testing.T) {
	ds, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, ds.Len(), 0)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("cards.csv")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.db")
	mv := 6.0
	in := []Card{
		{
			Name:          "Edgar Markov",
			SetName:       "Commander 2017",
			TypeLine:      "Legendary Creature — Vampire Knight",
			ImageURIs:     ImageURIs{ArtCrop: "https://example.test/art.jpg"},
			ManaValue:     &mv,
			ManaCost:      "{3}{R}{W}{B}",
			ColorIdentity: []string{"B", "R", "W"},
			Keywords:      []string{"Eminence", "First strike", "Haste"},
			ReleasedAt:    "2017-08-25",
			Legalities:    map[string]string{"commander": "legal"},
		},
		{Name: "Éowyn, Lady of Rohan"},
	}

	require.NoError(t, WriteSQLite(context.Background(), path, in))
	// Writing twice replaces the rows rather than appending.
	require.NoError(t, WriteSQLite(context.Background(), path, in))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	edgar := ds.Cards()[0]
	assert.Equal(t, in[0].Name, edgar.Name)
	assert.Equal(t, in[0].TypeLine, edgar.TypeLine)
	assert.Equal(t, in[0].ImageURIs, edgar.ImageURIs)
	require.NotNil(t, edgar.ManaValue)
	assert.Equal(t, mv, *edgar.ManaValue)
	assert.Equal(t, in[0].Keywords, edgar.Keywords)
	assert.Equal(t, "legal", edgar.Legality("commander"))

	eowyn := ds.Cards()[1]
	assert.Equal(t, "Éowyn, Lady of Rohan", eowyn.Name)
	assert.Nil(t, eowyn.ManaValue)
	assert.Equal(t, []string{Colorless}, eowyn.Colors())
}

func TestSearch(t *testing.T) {
	ds, err := Sample()
	require.NoError(t, err)

	got := Search(ds.Cards(), "atraxa", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "Atraxa, Praetors' Voice", got[0].Name)
	assert.LessOrEqual(t, len(got), 3)

	assert.Nil(t, Search(ds.Cards(), "   ", 5))
}

func TestIsCommanderEligible(t *testing.T) {
	assert.True(t, IsCommanderEligible(Card{TypeLine: "Legendary Creature — Goblin Warrior"}))
	assert.True(t, IsCommanderEligible(Card{
		TypeLine:   "Legendary Planeswalker — Teferi",
		OracleText: "Teferi, Temporal Archmage can be your commander.",
	}))
	assert.False(t, IsCommanderEligible(Card{TypeLine: "Creature — Goblin"}))
	assert.False(t, IsCommanderEligible(Card{TypeLine: "Legendary Artifact"}))
}
