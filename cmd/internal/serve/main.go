package serve

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nelhage/fourline/ai"
	"github.com/nelhage/fourline/cache"
	"github.com/nelhage/fourline/cmd/internal/opt"
	"github.com/nelhage/fourline/game"
	"github.com/nelhage/fourline/logs"
	"github.com/nelhage/fourline/web"
)

type Command struct {
	addr    string
	db      string
	redis   string
	origin  string
	envFile string

	depth int
	debug int
	sweep time.Duration
	idle  time.Duration
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Serve the game API over HTTP" }
func (*Command) Usage() string {
	return `serve [flags]

Serve the JSON game API, the spectator websocket feed, and (when
configured) the SQL archive and Redis snapshot cache. Flags fall back
to $FOURLINE_ADDR, $FOURLINE_DB, $FOURLINE_REDIS and $ALLOWED_ORIGINS,
loaded from a .env file when one is present.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.addr, "addr", "", "listen address")
	flags.StringVar(&c.db, "db", "", "archive database DSN (sqlite path or postgres URL)")
	flags.StringVar(&c.redis, "redis", "", "redis address for the snapshot cache")
	flags.StringVar(&c.origin, "origin", "", "CORS Allow-Origin value")
	flags.StringVar(&c.envFile, "env", "", "load environment from this file")

	flags.IntVar(&c.depth, "depth", game.DefaultSearchDepth, "minimax depth for AI games")
	flags.IntVar(&c.debug, "debug", 1, "debug level")
	flags.DurationVar(&c.sweep, "sweep", 10*time.Minute, "janitor interval")
	flags.DurationVar(&c.idle, "idle", time.Hour, "drop sessions idle longer than this")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil {
			log.Fatalf("load %s: %v", c.envFile, err)
		}
	} else if err := godotenv.Load(); err == nil && c.debug > 0 {
		log.Printf("[serve] loaded .env")
	}
	c.addr = fallback(c.addr, "FOURLINE_ADDR", ":8080")
	c.db = fallback(c.db, "FOURLINE_DB", "")
	c.redis = fallback(c.redis, "FOURLINE_REDIS", "")
	c.origin = fallback(c.origin, "ALLOWED_ORIGINS", "*")

	store := game.NewStore()
	store.Debug = c.debug
	cfg := web.Config{
		Store:       store,
		Minimax:     ai.MinimaxConfig{Depth: c.depth, Debug: c.debug},
		AllowOrigin: c.origin,
		Debug:       c.debug,
	}

	if c.db != "" {
		repo, err := opt.OpenRepository(c.db)
		if err != nil {
			log.Fatalf("open archive %q: %v", c.db, err)
		}
		defer repo.Close()
		rec := logs.NewRecorder(repo)
		rec.Debug = c.debug
		cfg.Recorder = rec
		log.Printf("[serve] archiving games to %s", c.db)
	}
	if c.redis != "" {
		cc, err := cache.Dial(ctx, c.redis, os.Getenv("FOURLINE_REDIS_PASSWORD"), 0)
		if err != nil {
			log.Printf("[serve] no snapshot cache: %v", err)
		} else {
			defer cc.Close()
			cc.Debug = c.debug
			cfg.Cache = cc
			log.Printf("[serve] caching snapshots in redis at %s", c.redis)
		}
	}

	hs := &http.Server{
		Addr:         c.addr,
		Handler:      web.NewServer(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Printf("[serve] listening on %s", c.addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		store.Run(ctx, c.sweep, c.idle)
		return nil
	})
	grp.Go(func() error {
		<-ctx.Done()
		log.Printf("[serve] shutting down")
		shctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return hs.Shutdown(shctx)
	})
	if err := grp.Wait(); err != nil {
		log.Printf("[serve] %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func fallback(v, env, def string) string {
	if v != "" {
		return v
	}
	if e := os.Getenv(env); e != "" {
		return e
	}
	return def
}
