/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seednode/commandle/internal/cards"
)

type importConfig struct {
	all bool
}

// newImportCmd builds "commandle import <in.json> <out.db>", which turns a
// JSON card dump (Scryfall bulk data works as-is) into a SQLite dataset.
func newImportCmd(v *viper.Viper) *cobra.Command {
	icfg := &importConfig{}

	cmd := &cobra.Command{
		Use:   "import <in.json> <out.db>",
		Short: "Convert a JSON card dump into a SQLite dataset.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importDataset(cmd, icfg, args[0], args[1])
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&icfg.all, "all", false, "keep every card, not only those that can be a commander (env: COMMANDLE_ALL)")

	bindEnv(v, fs)

	return cmd
}

func importDataset(cmd *cobra.Command, icfg *importConfig, in, out string) error {
	if !strings.HasSuffix(strings.ToLower(in), ".json") {
		return fmt.Errorf("%w: input must be a .json file: %s", cards.ErrUnknownFormat, in)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	all, err := cards.DecodeJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	kept := make([]cards.Card, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, c := range all {
		if c.Name == "" || seen[c.Name] {
			continue
		}
		if !icfg.all && !cards.IsCommanderEligible(c) {
			continue
		}
		seen[c.Name] = true
		kept = append(kept, c)
	}

	if err := cards.WriteSQLite(cmd.Context(), out, kept); err != nil {
		return err
	}

	log.Printf("IMPORT: Wrote %d of %d cards to %s", len(kept), len(all), out)

	return nil
}
