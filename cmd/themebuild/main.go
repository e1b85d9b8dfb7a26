package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/themebuild/cmd/themebuild/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build       commands.BuildCmd       `cmd:"" default:"withargs" help:"Build scripts and stylesheets"`
		Check       commands.CheckCmd       `cmd:"" help:"Validate the descriptor and entry points"`
		PrintConfig commands.PrintConfigCmd `cmd:"" name:"print-config" help:"Print the effective descriptor"`
		Scripts     commands.ScriptsCmd     `cmd:"" help:"Print the assets of a built bundle"`
		Debug       bool                    `help:"Enable debug mode." env:"THEMEBUILD_DEBUG"`
		Version     kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("themebuild"),
		kong.Description("Bundle theme scripts and compile their stylesheets."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
