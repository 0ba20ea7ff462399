package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/batchblas/internal/trace"
)

func replayCmd() *cli.Command {
	var (
		cfg       handleConfig
		logPath   string
		seed      int64
		keepGoing bool
	)

	flags := append([]cli.Flag{}, cfg.flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "log",
			Aliases:     []string{"l"},
			Usage:       "bench log file to replay",
			Required:    true,
			Destination: &logPath,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "operand RNG seed (-1 = time-based)",
			Value:       -1,
			Destination: &seed,
		},
		&cli.BoolFlag{
			Name:        "keep-going",
			Usage:       "continue past lines that fail",
			Destination: &keepGoing,
		},
	)

	return &cli.Command{
		Name:  "replay",
		Usage: "Re-execute a recorded bench log line by line",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := os.Open(logPath)
			if err != nil {
				return err
			}
			defer f.Close()

			h, err := cfg.newHandle()
			if err != nil {
				return err
			}
			defer h.Close()

			if seed < 0 {
				seed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(seed))

			var lineNo, ran, failed int
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				lineNo++
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				call, err := trace.ParseBenchLine(line)
				if err != nil {
					if keepGoing {
						fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
						failed++
						continue
					}
					return fmt.Errorf("line %d: %w", lineNo, err)
				}
				start := time.Now()
				if err := executeCall(h, call, rng); err != nil {
					if keepGoing {
						fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
						failed++
						continue
					}
					return fmt.Errorf("line %d: %w", lineNo, err)
				}
				ran++
				fmt.Printf("line %d: %s %s %v\n", lineNo, call.Function, call.Precision, time.Since(start))
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Printf("replayed %d calls, %d failed\n", ran, failed)
			return nil
		},
	}
}
