/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/scryfall"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// serveCardSearch fuzzy-matches ?q= against the names of cards the current
// filters allow.
func serveCardSearch(g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		securityHeaders(g.cfg, w)

		limit := defaultSearchLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSONError(w, http.StatusBadRequest, "invalid limit", errs)
				return
			}
			limit = min(n, maxSearchLimit)
		}

		query := r.URL.Query().Get("q")
		pool := g.pool(filtersFromQuery(r, g.cfg.filters()))

		found := cards.Search(pool, query, limit)

		views := make([]cardView, len(found))
		for i, c := range found {
			views[i] = viewOfCard(c)
		}

		written := writeJSON(w, http.StatusOK, views, errs)

		logf(g.cfg, "SERVE: Search %q matched %d cards (%s) for %s in %s",
			query,
			len(views),
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveRandomArt returns a random commander straight from the art service,
// for page backgrounds.
func serveRandomArt(g *Game, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		securityHeaders(g.cfg, w)
		w.Header().Set("Cache-Control", "no-store")

		if g.art == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "art service not configured", errs)
			return
		}

		card, err := g.art.RandomCommander(r.Context())

		var notFound *scryfall.NotFoundError
		switch {
		case errors.As(err, &notFound):
			writeJSONError(w, http.StatusNotFound, err.Error(), errs)
			return
		case err != nil:
			logf(g.cfg, "FETCH: Random commander failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "art service unavailable", errs)
			return
		}

		writeJSON(w, http.StatusOK, viewOfCard(card.Record()), errs)
	}
}

func registerAPI(g *Game, path string, mux *httprouter.Router, errs chan<- error) {
	prefix := g.cfg.prefix

	mux.GET(prefix+path+"/cards", serveCardSearch(g, errs))
	mux.GET(prefix+path+"/random", serveRandomArt(g, errs))
}
