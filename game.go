/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/draw"
	"github.com/Seednode/commandle/internal/rank"
	"github.com/Seednode/commandle/internal/scryfall"
)

// artSource is the part of the card art service the game relies on.
type artSource interface {
	Images(ctx context.Context, name string) (cards.ImageURIs, error)
	RandomCommander(ctx context.Context) (*scryfall.Card, error)
}

// Game holds everything shared between pairwise sessions and the daily
// puzzle.
type Game struct {
	cfg     *Config
	dataset *cards.Dataset
	ranks   rank.Resolver
	art     artSource
	pairer  *draw.Pairer
	daily   *Daily
	players *idleMap[playerState]
	now     func() time.Time
}

func newGame(cfg *Config, dataset *cards.Dataset, ranks rank.Resolver, art artSource) *Game {
	pairer := draw.NewPairer(ranks, art)
	pairer.MaxAttempts = cfg.pairAttempts

	g := &Game{
		cfg:     cfg,
		dataset: dataset,
		ranks:   ranks,
		art:     art,
		pairer:  pairer,
		players: newIdleMap[playerState](),
		now:     time.Now,
	}
	g.daily = newDaily(g)

	return g
}

// loadGame reads the dataset and builds the outbound clients from cfg.
func loadGame(cfg *Config) (*Game, error) {
	dataset, err := cards.Load(cfg.dataset)
	if err != nil {
		return nil, err
	}

	source := cfg.dataset
	if source == "" {
		source = "built-in sample"
	}
	logf(cfg, "START: Loaded %d cards from %s", dataset.Len(), source)

	hc := newHTTPClient(cfg)

	ranks := rank.NewClient(cfg.rankURL,
		rank.WithHTTPClient(hc),
		rank.WithRateLimit(cfg.rateLimit),
		rank.WithTimeout(cfg.fetchTimeout),
	)

	art := scryfall.NewClient(cfg.artURL,
		scryfall.WithHTTPClient(hc),
		scryfall.WithRateLimit(cfg.rateLimit),
		scryfall.WithTimeout(cfg.fetchTimeout),
		scryfall.WithCacheSize(cfg.artCacheSize),
	)

	return newGame(cfg, dataset, ranks, art), nil
}

// pool returns the cards f keeps right now.
func (g *Game) pool(f cards.FilterConfig) []cards.Card {
	return cards.Filter(g.dataset.Cards(), f, g.now())
}

// run starts the reapers for idle player state. It returns immediately.
func (g *Game) run(ctx context.Context) {
	if g.cfg.sessionTimeout <= 0 {
		return
	}

	go g.players.reaperLoop(ctx, g.cfg.sessionTimeout, g.now, func(n int) {
		logf(g.cfg, "GAMES: Dropped %d idle players", n)
	})
	go g.daily.progress.reaperLoop(ctx, g.cfg.sessionTimeout, g.now, func(n int) {
		logf(g.cfg, "DAILY: Dropped %d idle puzzles", n)
	})
}

// cardView is what clients see of a card. It never carries a rank.
type cardView struct {
	Name          string   `json:"name"`
	SetName       string   `json:"set_name,omitempty"`
	TypeLine      string   `json:"type_line,omitempty"`
	ManaCost      string   `json:"mana_cost,omitempty"`
	ColorIdentity []string `json:"color_identity"`
	ReleasedAt    string   `json:"released_at,omitempty"`
	ArtURL        string   `json:"art_url,omitempty"`
	CardImageURL  string   `json:"card_image_url,omitempty"`
}

func viewOfCard(c cards.Card) cardView {
	return cardView{
		Name:          c.Name,
		SetName:       c.SetName,
		TypeLine:      c.TypeLine,
		ManaCost:      c.ManaCost,
		ColorIdentity: c.Colors(),
		ReleasedAt:    c.ReleasedAt,
		ArtURL:        c.ImageURIs.Art(),
		CardImageURL:  c.ImageURIs.Full(),
	}
}

func viewOf(c draw.Candidate) cardView {
	v := viewOfCard(c.Card)
	v.ArtURL = c.ArtURL
	v.CardImageURL = c.CardImageURL
	return v
}

const playerCookieName = "commandle_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
