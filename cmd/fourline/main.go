package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"github.com/nelhage/fourline/cmd/internal/analyze"
	"github.com/nelhage/fourline/cmd/internal/corpus"
	"github.com/nelhage/fourline/cmd/internal/importgames"
	"github.com/nelhage/fourline/cmd/internal/play"
	"github.com/nelhage/fourline/cmd/internal/selfplay"
	"github.com/nelhage/fourline/cmd/internal/serve"
	"github.com/nelhage/fourline/cmd/internal/watch"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&play.Command{}, "")
	subcommands.Register(&serve.Command{}, "")
	subcommands.Register(&watch.Command{}, "")
	subcommands.Register(&analyze.Command{}, "")
	subcommands.Register(&selfplay.Command{}, "")
	subcommands.Register(&corpus.Command{}, "")
	subcommands.Register(&importgames.Command{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
