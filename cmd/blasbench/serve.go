package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/batchblas/internal/logger"
)

// profileEntry is one aggregated profile-log record as served to clients.
type profileEntry struct {
	Handle string `json:"handle"`
	Call   string `json:"call"`
	Count  int    `json:"count"`
}

func serveCmd() *cli.Command {
	var (
		addr        string
		profilePath string
		readTimeout time.Duration
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve an HTTP viewer over aggregated profile logs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "profile-log",
				Aliases:     []string{"profile_log", "l"},
				Usage:       "profile log file to serve",
				Required:    true,
				Destination: &profilePath,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())

			e.GET("/healthz", func(c *echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			e.GET("/profile", func(c *echo.Context) error {
				entries, err := loadProfileLog(profilePath)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
				}
				if routine := c.QueryParam("call"); routine != "" {
					entries = filterEntries(entries, routine)
				}
				if top := c.QueryParam("top"); top != "" {
					n, err := strconv.Atoi(top)
					if err != nil {
						return echo.NewHTTPError(http.StatusBadRequest, "bad top parameter")
					}
					entries = topEntries(entries, n)
				}
				return c.JSON(http.StatusOK, entries)
			})

			log.Info("starting profile viewer", "address", addr, "log", profilePath)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// loadProfileLog reads a JSON-lines profile log, merging duplicate
// signatures from handles flushed more than once.
func loadProfileLog(path string) ([]profileEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	merged := make(map[string]*profileEntry)
	var order []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec profileEntry
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		key := rec.Handle + "\x00" + rec.Call
		if e, ok := merged[key]; ok {
			e.Count += rec.Count
			continue
		}
		cp := rec
		merged[key] = &cp
		order = append(order, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	entries := make([]profileEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *merged[key])
	}
	return entries, nil
}

func filterEntries(entries []profileEntry, routine string) []profileEntry {
	var out []profileEntry
	for _, e := range entries {
		if strings.HasPrefix(e.Call, routine) {
			out = append(out, e)
		}
	}
	return out
}

func topEntries(entries []profileEntry, n int) []profileEntry {
	sorted := append([]profileEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
