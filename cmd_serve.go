package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/logging"
	"ai_news_generator/media"
	"ai_news_generator/server"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func serveCommand(opts *globalOptions) *cli.Command {
	var addr string
	return &cli.Command{
		Name:  "serve",
		Usage: "start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server_addr in config)",
				Destination: &addr,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			backend, err := buildBackend(rt.cfg, rt.client)
			if err != nil {
				return err
			}
			agent, err := generator.NewAgent(backend)
			if err != nil {
				return err
			}

			log := logging.Default()
			uploadAuth, err := rt.cfg.UploadAuthorization()
			if err != nil {
				log.Warn("no upload credentials configured, clients must send Authorization", "error", err)
			}

			gin.SetMode(gin.ReleaseMode)
			srv, err := server.New(server.Deps{
				Agent:      agent,
				Store:      rt.store,
				Uploader:   media.NewUploader(rt.cfg.UploadURL, rt.client),
				Fetcher:    media.NewFetcher(rt.client, media.DefaultMaxImageSize),
				UploadAuth: uploadAuth,
				Logger:     log,
			})
			if err != nil {
				return err
			}

			listen := rt.cfg.ServerAddr
			if addr != "" {
				listen = addr
			}
			if listen == "" {
				listen = ":8080"
			}

			httpServer := &http.Server{
				Addr:              listen,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("starting web server", "addr", listen, "backend", rt.cfg.Backend, "history", rt.cfg.History.Backend)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "http server failed", goerr.V("addr", listen))
				}
				return nil
			case <-ctx.Done():
				log.Info("shutting down web server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
}
