package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/media"
	"ai_news_generator/render"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func readRequest(path string) (generator.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return generator.Request{}, goerr.Wrap(err, "failed to read request file", goerr.V("path", path))
	}
	var req generator.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return generator.Request{}, goerr.Wrap(err, "failed to decode request file", goerr.V("path", path))
	}
	return req, nil
}

func generateCommand(opts *globalOptions) *cli.Command {
	var (
		input  string
		outDir string
		export bool
	)
	return &cli.Command{
		Name:  "generate",
		Usage: "generate one news article from a request JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "path to request JSON ({AGENT_USER_INPUT, live, quote})",
				Required:    true,
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "directory for exported files",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.BoolFlag{
				Name:        "export",
				Usage:       "write both the .txt and .html exports to --out",
				Destination: &export,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := readRequest(input)
			if err != nil {
				return err
			}

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

			normalized, res, err := agent.Generate(ctx, req)
			if err != nil {
				return err
			}
			entry := rt.store.Append(ctx, normalized, res)

			w := c.Root().Writer
			fmt.Fprintf(w, "# %s\n\n%s\n\n", res.Title, res.Summary)
			fmt.Fprintln(w, res.Content)
			fmt.Fprintf(w, "\nhistory id: %s\n", entry.ID)

			if !export {
				return nil
			}
			return writeExports(ctx, c, outDir, res, render.BuildMediaMap(normalized), media.NewFetcher(rt.client, 0))
		},
	}
}

func writeExports(ctx context.Context, c *cli.Command, dir string, res generator.Result, mm render.MediaMap, fetcher render.Fetcher) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create output dir", goerr.V("dir", dir))
	}
	now := time.Now()

	txtPath := filepath.Join(dir, render.ExportFileName(now, "txt"))
	if err := os.WriteFile(txtPath, render.PlainText(res), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write text export", goerr.V("path", txtPath))
	}

	doc, err := render.Document(ctx, res, mm, fetcher)
	if err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, render.ExportFileName(now, "html"))
	if err := os.WriteFile(htmlPath, doc, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write document export", goerr.V("path", htmlPath))
	}

	fmt.Fprintf(c.Root().Writer, "exported: %s, %s\n", txtPath, htmlPath)
	return nil
}
