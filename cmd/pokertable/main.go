package main

import (
	"github.com/alecthomas/kong"

	"github.com/lox/pokertable/internal/client/commands"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	commands.GlobalFlags

	Version kong.VersionFlag        `short:"v" help:"Show version"`
	Play    commands.PlayCommand    `cmd:"" help:"Play at a table interactively"`
	Watch   commands.WatchCommand   `cmd:"" help:"Join a table and follow the game"`
	Status  commands.StatusCommand  `cmd:"" help:"Print a table's current state"`
	Act     commands.ActCommand     `cmd:"" help:"Perform one action at a table"`
	Rank    commands.RankCommand    `cmd:"" help:"Rank poker hands offline"`
	History commands.HistoryCommand `cmd:"" help:"Summarize recorded hand histories"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokertable"),
		kong.Description("Poker table client: plays and follows a live table, ranks hands and keeps hand histories"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.GlobalFlags)
	ctx.FatalIfErrorf(err)
}
