/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cards (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	name           TEXT NOT NULL,
	set_name       TEXT NOT NULL DEFAULT '',
	type_line      TEXT NOT NULL DEFAULT '',
	art_crop       TEXT NOT NULL DEFAULT '',
	large          TEXT NOT NULL DEFAULT '',
	png            TEXT NOT NULL DEFAULT '',
	mana_value     REAL,
	mana_cost      TEXT NOT NULL DEFAULT '',
	oracle_text    TEXT NOT NULL DEFAULT '',
	color_identity TEXT NOT NULL DEFAULT '[]',
	keywords       TEXT NOT NULL DEFAULT '[]',
	released_at    TEXT NOT NULL DEFAULT '',
	legalities     TEXT NOT NULL DEFAULT '{}'
);
`

// LoadSQLite reads every card from the dataset database at path, in
// insertion order.
func LoadSQLite(path string) ([]Card, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	return readCards(context.Background(), db)
}

func readCards(ctx context.Context, db *sql.DB) ([]Card, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, set_name, type_line, art_crop, large, png, mana_value,
		       mana_cost, oracle_text, color_identity, keywords, released_at, legalities
		FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Card
	for rows.Next() {
		var (
			c                          Card
			mv                         sql.NullFloat64
			colors, keywords, legality string
		)
		if err := rows.Scan(&c.Name, &c.SetName, &c.TypeLine,
			&c.ImageURIs.ArtCrop, &c.ImageURIs.Large, &c.ImageURIs.PNG,
			&mv, &c.ManaCost, &c.OracleText, &colors, &keywords, &c.ReleasedAt, &legality); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if mv.Valid {
			v := mv.Float64
			c.ManaValue = &v
		}
		if err := json.Unmarshal([]byte(colors), &c.ColorIdentity); err != nil {
			return nil, fmt.Errorf("card %q: bad color_identity: %w", c.Name, err)
		}
		if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
			return nil, fmt.Errorf("card %q: bad keywords: %w", c.Name, err)
		}
		if err := json.Unmarshal([]byte(legality), &c.Legalities); err != nil {
			return nil, fmt.Errorf("card %q: bad legalities: %w", c.Name, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// WriteSQLite stores cards in a fresh cards table at path, replacing any
// rows already present.
func WriteSQLite(ctx context.Context, path string, cards []Card) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (name, set_name, type_line, art_crop, large, png, mana_value,
		                   mana_cost, oracle_text, color_identity, keywords, released_at, legalities)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range cards {
		var mv sql.NullFloat64
		if c.ManaValue != nil {
			mv = sql.NullFloat64{Float64: *c.ManaValue, Valid: true}
		}
		colors, err := json.Marshal(nonNil(c.ColorIdentity))
		if err != nil {
			return err
		}
		keywords, err := json.Marshal(nonNil(c.Keywords))
		if err != nil {
			return err
		}
		legalities := c.Legalities
		if legalities == nil {
			legalities = map[string]string{}
		}
		legality, err := json.Marshal(legalities)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx, c.Name, c.SetName, c.TypeLine,
			c.ImageURIs.ArtCrop, c.ImageURIs.Large, c.ImageURIs.PNG, mv,
			c.ManaCost, c.OracleText, string(colors), string(keywords), c.ReleasedAt, string(legality)); err != nil {
			return fmt.Errorf("failed to insert %q: %w", c.Name, err)
		}
	}

	return tx.Commit()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
