package rank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pages serves fixed bodies by path and records the order of requests.
type pages struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   []string
}

func (p *pages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.hits = append(p.hits, r.URL.Path)
	body, ok := p.bodies[r.URL.Path]
	status := p.status[r.URL.Path]
	p.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (p *pages) requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.hits...)
}

func newTestClient(t *testing.T, p *pages) *Client {
	t.Helper()
	server := httptest.NewServer(p)
	t.Cleanup(server.Close)
	return NewClient(server.URL, WithTimeout(5*time.Second))
}

func TestClient_ResolveRank_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"container", `{"container":{"json_dict":{"card":{"rank":42}}},"rank":7}`, 42},
		{"top level", `{"rank":7}`, 7},
		{"stats", `{"stats":{"rank":"19"}}`, 19},
		{"meta", `{"meta":{"rank":3}}`, 3},
		{"items", `{"items":[{"name":"x"},{"rank":88},{"rank":1}]}`, 88},
		{"null rank falls through", `{"rank":null,"meta":{"rank":5}}`, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pages{bodies: map[string]string{
				"/pages/commanders/krenko-mob-boss.json": tt.body,
			}}
			c := newTestClient(t, p)

			got, ok := c.ResolveRank(context.Background(), "Krenko, Mob Boss")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"/pages/commanders/krenko-mob-boss.json"}, p.requests())
		})
	}
}

func TestClient_ResolveRank_FallsBackToDisambiguatedSlug(t *testing.T) {
	p := &pages{bodies: map[string]string{
		"/pages/commanders/the-ur-dragon-1.json": `{"container":{"json_dict":{"card":{"rank":12}}}}`,
	}}
	c := newTestClient(t, p)

	got, ok := c.ResolveRank(context.Background(), "The Ur-Dragon")
	require.True(t, ok)
	assert.Equal(t, 12, got)
	assert.Equal(t, []string{
		"/pages/commanders/the-ur-dragon.json",
		"/pages/commanders/the-ur-dragon-1.json",
	}, p.requests())
}

func TestClient_ResolveRank_UnrecognizedShapeTriesNext(t *testing.T) {
	p := &pages{bodies: map[string]string{
		"/pages/commanders/ghave-guru-of-spores.json":   `{"header":"Ghave"}`,
		"/pages/commanders/ghave-guru-of-spores-1.json": `{"rank":301}`,
	}}
	c := newTestClient(t, p)

	got, ok := c.ResolveRank(context.Background(), "Ghave, Guru of Spores")
	require.True(t, ok)
	assert.Equal(t, 301, got)
}

func TestClient_ResolveRank_Unknown(t *testing.T) {
	tests := []struct {
		name   string
		bodies map[string]string
		status map[string]int
	}{
		{"both missing", map[string]string{}, nil},
		{
			"malformed and unknown shape",
			map[string]string{
				"/pages/commanders/kaalia-of-the-vast.json":   `{"rank":`,
				"/pages/commanders/kaalia-of-the-vast-1.json": `["not","an","object"]`,
			},
			nil,
		},
		{
			"server errors",
			map[string]string{
				"/pages/commanders/kaalia-of-the-vast.json":   `{"rank":1}`,
				"/pages/commanders/kaalia-of-the-vast-1.json": `{"rank":1}`,
			},
			map[string]int{
				"/pages/commanders/kaalia-of-the-vast.json":   http.StatusInternalServerError,
				"/pages/commanders/kaalia-of-the-vast-1.json": http.StatusForbidden,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pages{bodies: tt.bodies, status: tt.status}
			c := newTestClient(t, p)

			got, ok := c.ResolveRank(context.Background(), "Kaalia of the Vast")
			assert.False(t, ok)
			assert.Zero(t, got)
			assert.Len(t, p.requests(), 2)
		})
	}
}

func TestClient_ResolveRank_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(url)
	got, ok := c.ResolveRank(context.Background(), "Krenko, Mob Boss")
	assert.False(t, ok)
	assert.Zero(t, got)
}

func TestClient_ResolveRank_EmptySlugMakesNoRequest(t *testing.T) {
	p := &pages{bodies: map[string]string{}}
	c := newTestClient(t, p)

	_, ok := c.ResolveRank(context.Background(), "!!!")
	assert.False(t, ok)
	assert.Empty(t, p.requests())
}

func TestClient_ResolveRank_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, ok := c.ResolveRank(context.Background(), "Krenko, Mob Boss")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

type firstKeyStrategy struct{}

func (firstKeyStrategy) Name() string { return "popularity" }

func (firstKeyStrategy) Extract(doc any) (int, bool) {
	return Path{"popularity"}.Extract(doc)
}

func TestClient_WithStrategies(t *testing.T) {
	p := &pages{bodies: map[string]string{
		"/pages/commanders/teysa-karlov.json": `{"popularity":9}`,
	}}
	server := httptest.NewServer(p)
	defer server.Close()

	c := NewClient(server.URL, WithStrategies(firstKeyStrategy{}))
	got, ok := c.ResolveRank(context.Background(), "Teysa Karlov")
	require.True(t, ok)
	assert.Equal(t, 9, got)
}

func TestClient_URLs(t *testing.T) {
	c := NewClient("https://ranks.example.test/")
	assert.Equal(t, []string{
		"https://ranks.example.test/pages/commanders/edgar-markov.json",
		"https://ranks.example.test/pages/commanders/edgar-markov-1.json",
	}, c.URLs("Edgar Markov"))
	assert.Nil(t, c.URLs(""))
}

func TestExtract_Numbers(t *testing.T) {
	decode := func(s string) any {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var v any
		require.NoError(t, dec.Decode(&v))
		return v
	}

	_, ok := Extract(decode(`{"rank":"abc"}`), DefaultStrategies())
	assert.False(t, ok)

	_, ok = Extract(decode(`{"rank":true}`), DefaultStrategies())
	assert.False(t, ok)

	n, ok := Extract(decode(`{"rank":12.0}`), DefaultStrategies())
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	n, ok = Extract(map[string]any{"rank": float64(4)}, DefaultStrategies())
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	for _, doc := range []string{`{"rank":0}`, `{"rank":-3}`, `{"rank":1e30}`, `{"rank":"-1"}`, `{"rank":0.5}`} {
		_, ok = Extract(decode(doc), DefaultStrategies())
		assert.False(t, ok, doc)
	}

	n, ok = Extract(decode(`{"rank":0,"stats":{"rank":9}}`), DefaultStrategies())
	assert.True(t, ok, "an unusable rank falls through to the next shape")
	assert.Equal(t, 9, n)
}

func TestClient_ResolveRank_UnusableRankTriesNext(t *testing.T) {
	p := &pages{bodies: map[string]string{
		"/pages/commanders/sisay-weatherlight-captain.json":   `{"rank":0}`,
		"/pages/commanders/sisay-weatherlight-captain-1.json": `{"rank":88}`,
	}}
	c := newTestClient(t, p)

	got, ok := c.ResolveRank(context.Background(), "Sisay, Weatherlight Captain")
	require.True(t, ok)
	assert.Equal(t, 88, got)
	assert.Len(t, p.requests(), 2)
}
