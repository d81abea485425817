package main

import (
	"github.com/urfave/cli/v3"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getSyncCommands()...)
	return cmds
}

func storeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "store",
		Aliases:  []string{"s"},
		Required: true,
		Usage:    "Store ID (UUID)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
