package main

import (
	"github.com/alecthomas/kong"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var cli struct {
	Verbose int `short:"v" type:"counter" help:"Increase log verbosity."`

	Scan    ScanCmd    `cmd:"" help:"Scan markdown files and print their citations as JSON."`
	Index   IndexCmd   `cmd:"" help:"Build or refresh the citation index for a notes directory."`
	Serve   ServeCmd   `cmd:"" help:"Run the citation query server."`
	Resolve ResolveCmd `cmd:"" help:"Resolve a citation key against the index and bibliography."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("citescan"),
		kong.Description("Pandoc-style citation indexer for markdown notes."),
		kong.UsageOnError(),
	)

	commonlog.Configure(cli.Verbose, nil)

	ctx.FatalIfErrorf(ctx.Run())
}
