/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/singleflight"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/draw"
	"github.com/Seednode/commandle/internal/guess"
)

var (
	errDailyUnavailable = errors.New("today's puzzle could not be drawn")
	errDailyPending     = errors.New("today's puzzle is still being drawn, try again shortly")
)

const (
	maxGuessBody = 64 << 10

	// drawWait bounds how long a request waits on a draw in progress, so
	// the response is written before the server's write deadline.
	drawWait = timeout - 2*time.Second
)

// dailySet is the puzzle for one UTC day and filter combination.
type dailySet struct {
	date       string
	seed       int
	key        string
	candidates []draw.Candidate
	ranks      map[string]int
}

func newDailySet(seed int, key string, candidates []draw.Candidate) *dailySet {
	ranks := make(map[string]int, len(candidates))
	for _, c := range candidates {
		ranks[c.Card.Name] = c.Rank
	}

	return &dailySet{
		date:       fmt.Sprintf("%04d-%02d-%02d", seed/10000, seed/100%100, seed%100),
		seed:       seed,
		key:        key,
		candidates: candidates,
		ranks:      ranks,
	}
}

// Daily draws each day's puzzle once and tracks every player's progress on
// it.
type Daily struct {
	game  *Game
	group singleflight.Group

	// wait is how long a request waits on a draw before giving up on it.
	// The draw itself carries on and is cached for later requests.
	wait time.Duration

	mu       sync.Mutex
	sets     map[string]*dailySet
	progress *idleMap[*guess.Puzzle]
}

func newDaily(g *Game) *Daily {
	return &Daily{
		game:     g,
		wait:     drawWait,
		sets:     make(map[string]*dailySet),
		progress: newIdleMap[*guess.Puzzle](),
	}
}

// set returns the puzzle for now's UTC day under filters, drawing it on
// first use. Concurrent first requests share one draw. If the draw takes
// longer than d.wait, set returns errDailyPending while the draw continues.
func (d *Daily) set(ctx context.Context, now time.Time, filters cards.FilterConfig) (*dailySet, error) {
	seed := draw.DailySeed(now)
	key := fmt.Sprintf("%d/%s", seed, filters.Key())

	d.mu.Lock()
	s, ok := d.sets[key]
	d.mu.Unlock()
	if ok {
		return s, nil
	}

	ch := d.group.DoChan(key, func() (any, error) {
		startTime := time.Now()

		drawer := draw.Daily{
			Seed:        seed,
			Size:        d.game.cfg.dailySize,
			MaxAttempts: d.game.cfg.dailyAttempts,
			Resolver:    d.game.ranks,
			Images:      d.game.art,
		}

		// The draw is shared, so one caller going away must not cut it short.
		chosen, err := drawer.Draw(context.WithoutCancel(ctx), cards.Filter(d.game.dataset.Cards(), filters, now))
		if err != nil {
			return nil, err
		}
		if len(chosen) < 2 {
			return nil, fmt.Errorf("%w: only %d ranked cards found", errDailyUnavailable, len(chosen))
		}

		s := newDailySet(seed, key, chosen)

		d.mu.Lock()
		for k, old := range d.sets {
			if old.seed != seed {
				delete(d.sets, k)
			}
		}
		d.sets[key] = s
		d.mu.Unlock()

		logf(d.game.cfg, "DAILY: Drew %d cards for %s (%s) in %s",
			len(chosen),
			s.date,
			filters.Key(),
			time.Since(startTime).Round(time.Millisecond),
		)

		return s, nil
	})

	var expired <-chan time.Time
	if d.wait > 0 {
		timer := time.NewTimer(d.wait)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dailySet), nil
	case <-expired:
		return nil, errDailyPending
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Daily) puzzle(playerID string, s *dailySet) *guess.Puzzle {
	return d.progress.getOrCreate(playerID+"/"+s.key, d.game.now(), func() *guess.Puzzle {
		return guess.NewPuzzle(s.ranks)
	})
}

// PuzzleResponse is today's puzzle as one player sees it. Ranks are only
// included once the player has solved it.
type PuzzleResponse struct {
	Date    string             `json:"date"`
	Filters cards.FilterConfig `json:"filters"`
	Cards   []cardView         `json:"cards"`
	History [][]bool           `json:"history"`
	Last    []string           `json:"last,omitempty"`
	Solved  bool               `json:"solved"`
	Ranks   map[string]int     `json:"ranks,omitempty"`
}

// GuessRequest is a full ordering of today's cards, most popular first.
type GuessRequest struct {
	Order []string `json:"order"`
}

// GuessResponse scores one ordering.
type GuessResponse struct {
	Correct []bool         `json:"correct"`
	Solved  bool           `json:"solved"`
	History [][]bool       `json:"history"`
	Ranks   map[string]int `json:"ranks,omitempty"`
}

// viewLocked builds a PuzzleResponse. d.mu must be held.
func (d *Daily) viewLocked(s *dailySet, filters cards.FilterConfig, p *guess.Puzzle) PuzzleResponse {
	views := make([]cardView, len(s.candidates))
	for i, c := range s.candidates {
		views[i] = viewOf(c)
	}

	resp := PuzzleResponse{
		Date:    s.date,
		Filters: filters,
		Cards:   views,
		History: p.History(),
		Last:    p.Last(),
		Solved:  p.Solved(),
	}
	if resp.Solved {
		resp.Ranks = s.ranks
	}

	return resp
}

// submit scores order for playerID.
func (d *Daily) submit(playerID string, s *dailySet, order []string) (GuessResponse, error) {
	p := d.puzzle(playerID, s)

	d.mu.Lock()
	defer d.mu.Unlock()

	correct, err := p.Submit(order)
	if err != nil {
		return GuessResponse{}, err
	}

	resp := GuessResponse{
		Correct: correct,
		Solved:  p.Solved(),
		History: p.History(),
	}
	if resp.Solved {
		resp.Ranks = s.ranks
	}

	return resp, nil
}

// filtersFromQuery applies the partner, unreleased and illegal query
// parameters over defaults. Values that do not parse as booleans are ignored.
func filtersFromQuery(r *http.Request, defaults cards.FilterConfig) cards.FilterConfig {
	f := defaults
	q := r.URL.Query()

	for name, dst := range map[string]*bool{
		"partner":    &f.IncludePartner,
		"unreleased": &f.IncludeUnreleased,
		"illegal":    &f.IncludeIllegal,
	} {
		if v := q.Get(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	return f
}

func writeJSON(w http.ResponseWriter, status int, v any, errs chan<- error) int {
	data, err := json.Marshal(v)
	if err != nil {
		errs <- err
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return 0
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)

	written, err := w.Write(data)
	if err != nil {
		errs <- err
	}

	return written
}

func writeJSONError(w http.ResponseWriter, status int, msg string, errs chan<- error) {
	writeJSON(w, status, map[string]string{"error": msg}, errs)
}

func (d *Daily) currentSet(w http.ResponseWriter, r *http.Request, errs chan<- error) (*dailySet, cards.FilterConfig, bool) {
	filters := filtersFromQuery(r, d.game.cfg.filters())

	s, err := d.set(r.Context(), d.game.now(), filters)
	switch {
	case errors.Is(err, cards.ErrNotEnoughCandidates):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error(), errs)
		return nil, filters, false
	case errors.Is(err, errDailyPending):
		logf(d.game.cfg, "DAILY: Draw for %s still running, asked %s to retry", filters.Key(), realIP(r))
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, http.StatusServiceUnavailable, err.Error(), errs)
		return nil, filters, false
	case err != nil:
		logf(d.game.cfg, "DAILY: Failed to draw puzzle: %v", err)
		writeJSONError(w, http.StatusServiceUnavailable, err.Error(), errs)
		return nil, filters, false
	}

	return s, filters, true
}

func serveDailyPuzzle(d *Daily, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		securityHeaders(d.game.cfg, w)
		w.Header().Set("Cache-Control", "no-store")

		playerID := getOrSetPlayerID(w, r)

		s, filters, ok := d.currentSet(w, r, errs)
		if !ok {
			return
		}

		p := d.puzzle(playerID, s)

		d.mu.Lock()
		resp := d.viewLocked(s, filters, p)
		d.mu.Unlock()

		written := writeJSON(w, http.StatusOK, resp, errs)

		logf(d.game.cfg, "SERVE: Daily puzzle %s (%s) to %s in %s",
			s.date,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveDailyGuess(d *Daily, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(d.game.cfg, w)
		w.Header().Set("Cache-Control", "no-store")

		playerID := getOrSetPlayerID(w, r)

		var req GuessRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGuessBody)).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "malformed guess", errs)
			return
		}

		s, _, ok := d.currentSet(w, r, errs)
		if !ok {
			return
		}

		resp, err := d.submit(playerID, s, req.Order)
		switch {
		case errors.Is(err, guess.ErrRepeatedGuess), errors.Is(err, guess.ErrSolved):
			writeJSONError(w, http.StatusConflict, err.Error(), errs)
			return
		case errors.Is(err, guess.ErrInvalidOrder):
			writeJSONError(w, http.StatusBadRequest, err.Error(), errs)
			return
		case err != nil:
			writeJSONError(w, http.StatusInternalServerError, err.Error(), errs)
			return
		}

		logf(d.game.cfg, "DAILY: Guess %d on %s from %s, solved: %t",
			len(resp.History),
			s.date,
			realIP(r),
			resp.Solved,
		)

		writeJSON(w, http.StatusOK, resp, errs)
	}
}

// serveDailyQR renders a PNG QR code pointing at the daily page, keeping
// any filter parameters.
func serveDailyQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")
		if r.URL.RawQuery != "" {
			url += "?" + r.URL.RawQuery
		}

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(png)))
		securityHeaders(cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

//go:embed pages/daily.html
var dailyHTML []byte

func registerDaily(g *Game, path string, mux *httprouter.Router, errs chan<- error) {
	prefix := g.cfg.prefix

	mux.GET(prefix+path, servePage(g.cfg, dailyHTML))
	mux.GET(prefix+path+"/api/puzzle", serveDailyPuzzle(g.daily, errs))
	mux.POST(prefix+path+"/api/guess", serveDailyGuess(g.daily, errs))
	mux.GET(prefix+path+"/qr", serveDailyQR(g.cfg, errs))
}
