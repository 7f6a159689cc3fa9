package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagesmith/cmd/pagesmith/commands"
	ferrors "git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("pagesmith"),
		kong.Description("Static site generator for pages, layouts and single-file components."),
		kong.UsageOnError(),
		kong.Bind(global),
	)
	if err := ctx.Run(&cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
