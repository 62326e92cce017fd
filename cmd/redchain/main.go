// Command redchain runs the RED development chain.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the YAML configuration file; defaults apply when empty",
	EnvVars: []string{"REDCHAIN_CONFIG"},
}

func main() {
	app := &cli.App{
		Name:    "redchain",
		Usage:   "RED token and crowdfund development chain",
		Version: "v1.0.0",
		Flags:   []cli.Flag{configFlag},
		Commands: []*cli.Command{
			serveCmd,
			accountsCmd,
			deployCmd,
			tokenCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "redchain:", err)
		os.Exit(1)
	}
}
