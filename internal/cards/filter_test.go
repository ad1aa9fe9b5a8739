package cards

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(pool []Card) []string {
	out := make([]string, 0, len(pool))
	for _, c := range pool {
		out = append(out, c.Name)
	}
	return out
}

func filterPool() []Card {
	legal := map[string]string{"commander": "legal"}
	return []Card{
		{Name: "Plain", ReleasedAt: "2020-01-01", Legalities: legal},
		{Name: "Partnered", Keywords: []string{"Flying", "Partner"}, ReleasedAt: "2016-11-11", Legalities: legal},
		{Name: "Future", ReleasedAt: "2031-05-01", Legalities: legal},
		{Name: "Banned", ReleasedAt: "2019-07-12", Legalities: map[string]string{"commander": "banned"}},
		{Name: "NoLegality", ReleasedAt: "2019-07-12"},
		{Name: "Partner with", Keywords: []string{"Partner with"}, ReleasedAt: "2018-01-01", Legalities: legal},
		{Name: "Undated", Legalities: legal},
	}
}

func TestFilter(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  FilterConfig
		want []string
	}{
		{
			name: "all excluded toggles off",
			cfg:  FilterConfig{},
			want: []string{"Plain", "Partner with", "Undated"},
		},
		{
			name: "partner allowed",
			cfg:  FilterConfig{IncludePartner: true},
			want: []string{"Plain", "Partnered", "Partner with", "Undated"},
		},
		{
			name: "unreleased allowed",
			cfg:  FilterConfig{IncludeUnreleased: true},
			want: []string{"Plain", "Future", "Partner with", "Undated"},
		},
		{
			name: "illegal allowed",
			cfg:  FilterConfig{IncludeIllegal: true},
			want: []string{"Plain", "Banned", "NoLegality", "Partner with", "Undated"},
		},
		{
			name: "everything allowed keeps order",
			cfg:  FilterConfig{IncludePartner: true, IncludeUnreleased: true, IncludeIllegal: true},
			want: names(filterPool()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(filterPool(), tt.cfg, now)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilter_ReleasedToday(t *testing.T) {
	now := time.Date(2031, 5, 1, 0, 0, 0, 0, time.UTC)
	got := Filter(filterPool(), FilterConfig{}, now)
	assert.Contains(t, names(got), "Future")
}

func TestFilter_DoesNotModifyPool(t *testing.T) {
	pool := filterPool()
	before := names(pool)
	_ = Filter(pool, FilterConfig{}, time.Now())
	assert.Equal(t, before, names(pool))
}

func TestRequire(t *testing.T) {
	pool := filterPool()[:1]

	err := Require(pool, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotEnoughCandidates))

	assert.NoError(t, Require(pool, 1))
}

func TestFilterConfigKey(t *testing.T) {
	a := FilterConfig{IncludePartner: true}
	b := FilterConfig{IncludeIllegal: true}

	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), FilterConfig{IncludePartner: true}.Key())
}

func TestCardColors(t *testing.T) {
	assert.Equal(t, []string{Colorless}, Card{}.Colors())
	assert.Equal(t, []string{"G", "U"}, Card{ColorIdentity: []string{"G", "U"}}.Colors())
}

func TestImageURIsFallback(t *testing.T) {
	assert.Equal(t, "png", ImageURIs{PNG: "png"}.Art())
	assert.Equal(t, "large", ImageURIs{Large: "large", PNG: "png"}.Art())
	assert.Equal(t, "art", ImageURIs{ArtCrop: "art", Large: "large"}.Art())

	assert.Equal(t, "art", ImageURIs{ArtCrop: "art"}.Full())
	assert.Equal(t, "png", ImageURIs{ArtCrop: "art", PNG: "png"}.Full())
	assert.Equal(t, "large", ImageURIs{ArtCrop: "art", Large: "large", PNG: "png"}.Full())

	assert.True(t, ImageURIs{}.Empty())
}
