package main

import (
	"context"
	"fmt"
	"os"

	"ai_news_generator/logging"
	"ai_news_generator/render"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func renderCommand(opts *globalOptions) *cli.Command {
	var input, requestPath string
	return &cli.Command{
		Name:  "render",
		Usage: "resolve [[desc]] placeholders in a content file and print HTML",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "generated content (markdown with placeholders)",
				Required:    true,
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "request",
				Aliases:     []string{"r"},
				Usage:       "request JSON providing the media descriptions",
				Destination: &requestPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.SetDefault(logging.New(opts.logLevel, nil))
			content, err := os.ReadFile(input)
			if err != nil {
				return goerr.Wrap(err, "failed to read content file", goerr.V("path", input))
			}

			mm := render.MediaMap{}
			if requestPath != "" {
				req, err := readRequest(requestPath)
				if err != nil {
					return err
				}
				mm = render.BuildMediaMap(req.Normalize())
			}

			html, err := render.HTML(render.Resolve(string(content), mm))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, html)
			return nil
		},
	}
}
