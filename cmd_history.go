package main

import (
	"context"
	"encoding/json"
	"fmt"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func historyCommand(opts *globalOptions) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "inspect or edit the generation history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list entries, newest first",
				Action: func(ctx context.Context, c *cli.Command) error {
					rt, err := opts.setup(ctx)
					if err != nil {
						return err
					}
					defer rt.Close()

					entries := rt.store.List()
					if len(entries) == 0 {
						fmt.Fprintln(c.Root().Writer, "no history")
						return nil
					}
					for _, e := range entries {
						fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\n",
							e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.ShortTitle)
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print one entry as JSON",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return goerr.New("entry id is required", goerr.T(apperr.TagInvalid))
					}
					rt, err := opts.setup(ctx)
					if err != nil {
						return err
					}
					defer rt.Close()

					entry, ok := rt.store.Get(id)
					if !ok {
						return goerr.New("history entry not found", goerr.V("id", id), goerr.T(apperr.TagNotFound))
					}
					enc := json.NewEncoder(c.Root().Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(entry)
				},
			},
			{
				Name:      "rm",
				Usage:     "remove one entry",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id := c.Args().First()
					if id == "" {
						return goerr.New("entry id is required", goerr.T(apperr.TagInvalid))
					}
					rt, err := opts.setup(ctx)
					if err != nil {
						return err
					}
					defer rt.Close()

					remaining := rt.store.Remove(ctx, id)
					fmt.Fprintf(c.Root().Writer, "%d entries left\n", len(remaining))
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "remove all entries",
				Action: func(ctx context.Context, c *cli.Command) error {
					rt, err := opts.setup(ctx)
					if err != nil {
						return err
					}
					defer rt.Close()

					rt.store.Clear(ctx)
					fmt.Fprintln(c.Root().Writer, "history cleared")
					return nil
				},
			},
		},
	}
}
