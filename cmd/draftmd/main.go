package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/draftmd/cmd/draftmd/commands"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{In: os.Stdin, Out: os.Stdout}

	parser := kong.Parse(cli,
		kong.Name("draftmd"),
		kong.Description("Markdown rich-text document engine: import, export, paste handling and an HTTP API."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
