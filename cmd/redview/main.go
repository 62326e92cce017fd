// Command redview prints the state of the deployed RED contracts, reading
// their artifacts from a directory or a URL.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/chainsafe/red-crowdfund/pkg/artifact"
	"github.com/chainsafe/red-crowdfund/pkg/config"
	"github.com/chainsafe/red-crowdfund/pkg/viewer"
)

func main() {
	app := &cli.App{
		Name:      "redview",
		Usage:     "show the RED token and crowdfund status",
		ArgsUsage: "[address...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc",
				Value:   "http://127.0.0.1:8545",
				Usage:   "JSON-RPC endpoint",
				EnvVars: []string{"REDVIEW_RPC"},
			},
			&cli.StringFlag{
				Name:    "artifacts",
				Value:   "build/contracts",
				Usage:   "artifact directory or URL, e.g. http://127.0.0.1:8545/artifacts",
				EnvVars: []string{"REDVIEW_ARTIFACTS"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "redview:", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	logCfg := config.LoggingConfig{Level: cctx.String("log-level"), Format: "console", OutputPath: "stderr"}
	logger, err := config.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	addrs := make([]common.Address, 0, cctx.NArg())
	for _, a := range cctx.Args().Slice() {
		if !common.IsHexAddress(a) {
			return fmt.Errorf("invalid address %q", a)
		}
		addrs = append(addrs, common.HexToAddress(a))
	}

	reader, err := artifact.NewReader(cctx.String("artifacts"))
	if err != nil {
		return err
	}
	client, err := viewer.Dial(cctx.Context, cctx.String("rpc"), reader, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	overview, err := client.Overview(cctx.Context)
	if err != nil {
		return err
	}
	w := cctx.App.Writer
	fmt.Fprintf(w, "REDToken:               %s\n", client.TokenAddress.Hex())
	fmt.Fprintf(w, "REDCrowdfund:           %s\n", client.CrowdfundAddress.Hex())
	overview.Print(w)

	if len(addrs) > 0 {
		fmt.Fprintln(w)
	}
	for _, addr := range addrs {
		h, err := client.Holding(cctx.Context, addr)
		if err != nil {
			return err
		}
		h.Print(w, overview.Symbol)
	}
	return nil
}
