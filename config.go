/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Seednode/commandle/internal/cards"
	"github.com/Seednode/commandle/internal/draw"
	"github.com/Seednode/commandle/internal/rank"
	"github.com/Seednode/commandle/internal/scryfall"
)

type Config struct {
	artCacheSize      int
	artURL            string
	bind              string
	dailyAttempts     int
	dailySize         int
	dataset           string
	fetchTimeout      time.Duration
	includeIllegal    bool
	includePartner    bool
	includeUnreleased bool
	pairAttempts      int
	port              int
	prefix            string
	profile           bool
	rankURL           string
	rateLimit         float64
	sessionTimeout    time.Duration
	tlsCert           string
	tlsKey            string
	verbose           bool
	version           bool
}

const minSessionTimeout = time.Second

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.dailySize < 2 {
		return fmt.Errorf("invalid daily size (must be at least 2): %d", c.dailySize)
	}
	if c.pairAttempts < 1 {
		return fmt.Errorf("invalid pair attempts (must be at least 1): %d", c.pairAttempts)
	}
	if c.dailyAttempts < c.dailySize {
		return fmt.Errorf("invalid daily attempts (must be at least the daily size of %d): %d", c.dailySize, c.dailyAttempts)
	}
	if c.artCacheSize < 0 {
		return fmt.Errorf("invalid art cache size (must not be negative): %d", c.artCacheSize)
	}
	if c.rateLimit < 0 {
		return fmt.Errorf("invalid rate limit (must not be negative): %v", c.rateLimit)
	}
	if c.fetchTimeout < 0 {
		return fmt.Errorf("invalid fetch timeout (must not be negative): %s", c.fetchTimeout)
	}
	if c.sessionTimeout != 0 && c.sessionTimeout < minSessionTimeout {
		return fmt.Errorf("invalid session timeout (must be 0 or at least %s): %s", minSessionTimeout, c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// filters returns the filter toggles new players start with.
func (c *Config) filters() cards.FilterConfig {
	return cards.FilterConfig{
		IncludePartner:    c.includePartner,
		IncludeUnreleased: c.includeUnreleased,
		IncludeIllegal:    c.includeIllegal,
	}
}

// bindEnv lets every flag in fs be set through COMMANDLE_<FLAG_NAME>.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COMMANDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func newCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "commandle",
		Short:         "A commander popularity guessing game, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.IntVar(&cfg.artCacheSize, "art-cache-size", 512, "number of card image lookups to keep in memory (env: COMMANDLE_ART_CACHE_SIZE)")
	fs.StringVar(&cfg.artURL, "art-url", scryfall.DefaultBaseURL, "base URL of the card art service (env: COMMANDLE_ART_URL)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: COMMANDLE_BIND)")
	fs.IntVar(&cfg.dailyAttempts, "daily-attempts", draw.DefaultDailyAttempts, "cards to try before settling for a short daily puzzle (env: COMMANDLE_DAILY_ATTEMPTS)")
	fs.IntVar(&cfg.dailySize, "daily-size", draw.DefaultDailySize, "number of cards in the daily puzzle (env: COMMANDLE_DAILY_SIZE)")
	fs.StringVarP(&cfg.dataset, "dataset", "d", "", "card dataset (.json or .db); uses the built-in sample if unset (env: COMMANDLE_DATASET)")
	fs.DurationVar(&cfg.fetchTimeout, "fetch-timeout", 10*time.Second, "timeout for each outbound request, 0 to disable (env: COMMANDLE_FETCH_TIMEOUT)")
	fs.BoolVar(&cfg.includeIllegal, "include-illegal", false, "offer cards not legal in commander by default (env: COMMANDLE_INCLUDE_ILLEGAL)")
	fs.BoolVar(&cfg.includePartner, "include-partner", true, "offer partner commanders by default (env: COMMANDLE_INCLUDE_PARTNER)")
	fs.BoolVar(&cfg.includeUnreleased, "include-unreleased", false, "offer unreleased cards by default (env: COMMANDLE_INCLUDE_UNRELEASED)")
	fs.IntVar(&cfg.pairAttempts, "pair-attempts", draw.DefaultPairAttempts, "draws to try before giving up on a pairwise round (env: COMMANDLE_PAIR_ATTEMPTS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: COMMANDLE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: COMMANDLE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: COMMANDLE_PROFILE)")
	fs.StringVar(&cfg.rankURL, "rank-url", rank.DefaultBaseURL, "base URL of the ranking service (env: COMMANDLE_RANK_URL)")
	fs.Float64Var(&cfg.rateLimit, "rate-limit", 10, "outbound requests per second to each service, 0 to disable (env: COMMANDLE_RATE_LIMIT)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle player state is dropped, 0 to keep it forever (env: COMMANDLE_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: COMMANDLE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: COMMANDLE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: COMMANDLE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: COMMANDLE_VERSION)")

	bindEnv(v, fs)

	cmd.AddCommand(newImportCmd(v))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("commandle v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
