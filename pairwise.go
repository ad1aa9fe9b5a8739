/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Pairwise mode
//
// Each browser tab holds one websocket. The player asks for a round, sees
// two commanders, and picks the one they think is more popular. A streak
// counts consecutive correct picks and survives reconnects through the
// player cookie.
//
// Rounds resolve in the background. Asking for a new round while one is
// still resolving cancels the old one, and any result that still arrives
// for it is dropped.

package main

import (
	"context"
	_ "embed"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/draw"
	"github.com/Seednode/commandle/internal/guess"
)

const (
	codeNotEnoughCandidates = "not_enough_candidates"
	codeNoValidCandidate    = "no_valid_candidate"
	codeNoRound             = "no_round"
)

// Messages coming from clients
type ClientMessage struct {
	Type string     `json:"type"`           // "new_round", "guess", "filters"
	Side guess.Side `json:"side,omitempty"` // guess

	cards.FilterConfig // filters
}

// SessionInfoMessage is sent on connect and whenever the filters change.
type SessionInfoMessage struct {
	Type    string             `json:"type"` // "session_info"
	Filters cards.FilterConfig `json:"filters"`

	guess.Streak
}

// LoadingMessage announces that a round is being resolved.
type LoadingMessage struct {
	Type  string `json:"type"` // "loading"
	Round uint64 `json:"round"`
}

// RoundMessage presents a resolved pair. Ranks stay on the server until the
// player has guessed.
type RoundMessage struct {
	Type  string   `json:"type"` // "round"
	Round uint64   `json:"round"`
	Left  cardView `json:"left"`
	Right cardView `json:"right"`
}

// GuessResultMessage reveals both ranks and the updated streak.
type GuessResultMessage struct {
	Type        string        `json:"type"` // "guess_result"
	Round       uint64        `json:"round"`
	CorrectSide guess.Side    `json:"correct_side"`
	Outcome     guess.Outcome `json:"outcome"`
	LeftRank    int           `json:"left_rank"`
	RightRank   int           `json:"right_rank"`

	guess.Streak
}

// ErrorMessage reports a round that could not be played.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Round   uint64 `json:"round"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorMessage(round uint64, err error) ErrorMessage {
	code := codeNoValidCandidate
	if errors.Is(err, cards.ErrNotEnoughCandidates) {
		code = codeNotEnoughCandidates
	}

	return ErrorMessage{
		Type:    "error",
		Round:   round,
		Code:    code,
		Message: err.Error(),
	}
}

// Session is one pairwise websocket connection.
type Session struct {
	game     *Game
	conn     *websocket.Conn
	send     chan any
	playerID string

	// ctx is cancelled when the connection goes away.
	ctx context.Context

	mu       sync.Mutex
	round    uint64
	cancel   context.CancelFunc
	pair     *draw.Pair
	answered bool
	streak   guess.Streak
	filters  cards.FilterConfig
	closed   bool
}

func newSession(ctx context.Context, g *Game, playerID string) *Session {
	s := &Session{
		game:     g,
		send:     make(chan any, 16),
		playerID: playerID,
		ctx:      ctx,
		filters:  g.cfg.filters(),
	}

	if state, ok := g.players.get(playerID, g.now()); ok {
		s.streak = state.streak
		s.filters = state.filters
	}

	return s
}

// deliverLocked queues msg without blocking. s.mu must be held.
func (s *Session) deliverLocked(msg any) {
	if s.closed {
		return
	}

	select {
	case s.send <- msg:
	default:
		logf(s.game.cfg, "GAMES: Dropped message for slow player %s", s.playerID)
	}
}

// saveLocked remembers the player's streak and filters. s.mu must be held.
func (s *Session) saveLocked() {
	if s.playerID == "" {
		return
	}

	s.game.players.put(s.playerID, playerState{
		streak:  s.streak,
		filters: s.filters,
	}, s.game.now())
}

func (s *Session) hello() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliverLocked(SessionInfoMessage{
		Type:    "session_info",
		Filters: s.filters,
		Streak:  s.streak,
	})
}

// newRound starts resolving a new pair and supersedes any round still in
// flight.
func (s *Session) newRound() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.round++
	id := s.round

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.pair = nil
	s.answered = false
	filters := s.filters

	s.deliverLocked(LoadingMessage{Type: "loading", Round: id})

	s.mu.Unlock()

	go s.resolve(ctx, id, filters)
}

func (s *Session) resolve(ctx context.Context, id uint64, filters cards.FilterConfig) {
	startTime := time.Now()

	pair, err := s.game.pairer.DrawPair(ctx, s.game.pool(filters))

	if s.commit(id, pair, err) && err == nil {
		logf(s.game.cfg, "GAMES: Round %d for %s resolved in %s",
			id,
			s.playerID,
			time.Since(startTime).Round(time.Millisecond),
		)
	}
}

// commit publishes the outcome of round id. It reports false, and publishes
// nothing, when a newer round has started since or the session is closed.
func (s *Session) commit(id uint64, pair draw.Pair, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || id != s.round {
		logf(s.game.cfg, "GAMES: Discarded stale round %d for %s", id, s.playerID)
		return false
	}

	if err != nil {
		logf(s.game.cfg, "GAMES: Round %d for %s failed: %v", id, s.playerID, err)
		s.deliverLocked(errorMessage(id, err))
		return true
	}

	s.pair = &pair
	s.deliverLocked(RoundMessage{
		Type:  "round",
		Round: id,
		Left:  viewOf(pair.Left),
		Right: viewOf(pair.Right),
	})

	return true
}

// pick scores the player's pick for the current round. Each round takes
// one guess.
func (s *Session) pick(side guess.Side) {
	if !side.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pair == nil || s.answered {
		s.deliverLocked(ErrorMessage{
			Type:    "error",
			Round:   s.round,
			Code:    codeNoRound,
			Message: "no round is waiting for a guess",
		})
		return
	}

	left, right := s.pair.Left.Rank, s.pair.Right.Rank
	result := guess.Evaluate(left, right, side)

	s.streak.Record(result.Outcome)
	s.answered = true
	s.saveLocked()

	s.deliverLocked(GuessResultMessage{
		Type:        "guess_result",
		Round:       s.round,
		CorrectSide: result.CorrectSide,
		Outcome:     result.Outcome,
		LeftRank:    left,
		RightRank:   right,
		Streak:      s.streak,
	})
}

// setFilters changes the filters used from the next round on.
func (s *Session) setFilters(f cards.FilterConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = f
	s.saveLocked()

	s.deliverLocked(SessionInfoMessage{
		Type:    "session_info",
		Filters: s.filters,
		Streak:  s.streak,
	})
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}
	close(s.send)
}

func (s *Session) readPump() {
	defer func() {
		s.close()
		_ = s.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "new_round":
			s.newRound()
		case "guess":
			s.pick(msg.Side)
		case "filters":
			s.setFilters(msg.FilterConfig)
		default:
			// ignore unknown types
		}
	}
}

func (s *Session) writePump() {
	defer s.conn.Close()

	for msg := range s.send {
		if err := s.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func servePairwiseWS(g *Game) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		s := newSession(ctx, g, playerID)
		s.conn = conn

		logf(g.cfg, "GAMES: Player %s connected from %s", playerID, realIP(r))

		s.hello()

		go s.writePump()
		s.readPump()

		logf(g.cfg, "GAMES: Player %s disconnected", playerID)
	}
}

//go:embed pages/pairwise.html
var pairwiseHTML []byte

func registerPairwise(g *Game, path string, mux *httprouter.Router) {
	prefix := g.cfg.prefix

	mux.GET(prefix+path, servePage(g.cfg, pairwiseHTML))
	mux.GET(prefix+path+"/ws", servePairwiseWS(g))
}
