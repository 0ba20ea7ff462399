package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/batchblas/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "blasbench",
		Usage: "Batched BLAS dispatch harness CLI",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			runCmd(),
			replayCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	ctx := logger.WithContext(context.Background(),
		logger.Pretty(os.Stderr, logger.ParseLevel(os.Getenv("BLASBENCH_LOG_LEVEL"))))
	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
