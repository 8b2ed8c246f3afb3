// Package opt holds the flag bundles and player-spec parsing shared by
// the fourline subcommands.
package opt

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/logs"
)

type Minimax struct {
	Seed          int64
	Debug         int
	Depth         int
	RandomizeTies bool
	Weights       string
}

func (o *Minimax) AddFlags(flags *flag.FlagSet) {
	flags.IntVar(&o.Debug, "debug", 1, "debug level")
	flags.Int64Var(&o.Seed, "seed", 0, "specify a seed")
	flags.IntVar(&o.Depth, "depth", 4, "minimax depth")
	flags.BoolVar(&o.RandomizeTies, "randomize-ties", false, "pick among equal-valued columns at random")
	flags.StringVar(&o.Weights, "weights", "", "JSON-encoded evaluation weights")
}

func (o *Minimax) BuildWeights() *ai.Weights {
	if o.Weights == "" {
		return &ai.DefaultWeights
	}
	var w ai.Weights
	if e := json.Unmarshal([]byte(o.Weights), &w); e != nil {
		log.Fatalf("parse weights: %v", e)
	}
	return &w
}

func (o *Minimax) BuildConfig() ai.MinimaxConfig {
	return ai.MinimaxConfig{
		Depth:         o.Depth,
		Seed:          o.Seed,
		Debug:         o.Debug,
		RandomizeTies: o.RandomizeTies,
		Evaluate:      ai.MakeEvaluator(o.BuildWeights()),
	}
}

// ParsePlayer builds a selector from a -p1/-p2 style spec: "rand[:seed]",
// "minimax[:depth]", or "mcts[:simulations]". Unspecified seeds and depth
// come from the bundle. "human" returns a nil selector; the caller
// decides how a human supplies moves.
func ParsePlayer(spec string, mm *Minimax) (ai.Selector, error) {
	switch {
	case spec == "human":
		return nil, nil
	case strings.HasPrefix(spec, "rand"):
		seed := mm.Seed
		if len(spec) > len("rand") {
			i, err := strconv.ParseInt(spec[len("rand:"):], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("player %q: %v", spec, err)
			}
			seed = i
		}
		return ai.NewRandom(seed), nil
	case strings.HasPrefix(spec, "minimax"):
		cfg := mm.BuildConfig()
		if len(spec) > len("minimax") {
			i, err := strconv.Atoi(spec[len("minimax:"):])
			if err != nil {
				return nil, fmt.Errorf("player %q: %v", spec, err)
			}
			cfg.Depth = i
		}
		return ai.NewMinimax(cfg)
	case strings.HasPrefix(spec, "mcts"):
		cfg := ai.MCTSConfig{
			Seed:  mm.Seed,
			Debug: mm.Debug,
		}
		if len(spec) > len("mcts") {
			i, err := strconv.Atoi(spec[len("mcts:"):])
			if err != nil {
				return nil, fmt.Errorf("player %q: %v", spec, err)
			}
			cfg.Limit = i
		}
		return ai.NewMonteCarlo(cfg), nil
	}
	return nil, fmt.Errorf("unknown player spec: %q", spec)
}

// OpenRepository opens the game archive named by dsn, picking the driver
// from the DSN: postgres:// and postgresql:// use lib/pq, anything else
// is treated as a sqlite3 path.
func OpenRepository(dsn string) (*logs.Repository, error) {
	driver := "sqlite3"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "postgres"
	}
	return logs.Open(driver, dsn)
}
