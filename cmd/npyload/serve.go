package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/npyload/internal/api"
	"github.com/samcharles93/npyload/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxBody     int64
		storeLimit  int
		rows        int
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve an HTTP API that decodes uploaded .npy streams",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-body",
				Usage:       "maximum upload size in bytes",
				Value:       64 << 20,
				Destination: &maxBody,
			},
			&cli.IntFlag{
				Name:        "store-limit",
				Usage:       "number of decoded summaries kept in memory",
				Value:       256,
				Destination: &storeLimit,
			},
			&cli.IntFlag{
				Name:        "rows",
				Usage:       "rows of each array included in the summary preview",
				Value:       5,
				Destination: &rows,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, appConfig, &addr, &maxBody, &storeLimit)
			log := logger.FromContext(ctx)

			e := newServeEcho(api.Config{
				MaxBodyBytes: maxBody,
				PreviewRows:  rows,
				StoreLimit:   storeLimit,
			}, log)

			log.Info("starting server", "address", addr, "max_body", maxBody, "store_limit", storeLimit)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return startServer(ctx, sc, e)
		},
	}
}

// startServer is a small seam for tests.
var startServer = func(ctx context.Context, sc echo.StartConfig, e *echo.Echo) error {
	return sc.Start(ctx, e)
}

func newServeEcho(cfg api.Config, log logger.Logger) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	api.NewServer(cfg, log.With("component", "api")).Register(e)
	return e
}
