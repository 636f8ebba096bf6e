package main

import (
	"context"
	"net/http"

	"ai_news_generator/config"
	"ai_news_generator/generator"
	"ai_news_generator/history"
	"ai_news_generator/logging"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func newApp() *cli.Command {
	var opts globalOptions
	return &cli.Command{
		Name:  "newsgen",
		Usage: "AI news article generator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config.json",
				Value:       "config.json",
				Sources:     cli.EnvVars("NEWSGEN_CONFIG"),
				Destination: &opts.configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "debug, info, warn or error (overrides log_level in config)",
				Sources:     cli.EnvVars("NEWSGEN_LOG_LEVEL"),
				Destination: &opts.logLevel,
			},
		},
		Commands: []*cli.Command{
			serveCommand(&opts),
			generateCommand(&opts),
			historyCommand(&opts),
			renderCommand(&opts),
		},
	}
}

// appEnv 是各子命令共用的已初始化依赖。
type appEnv struct {
	cfg    config.Config
	client *http.Client
	slot   history.Slot
	store  *history.Store
}

func (o *globalOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logging.SetDefault(logging.New(level, nil))
	return cfg, nil
}

func (o *globalOptions) setup(ctx context.Context) (*appEnv, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	slot, err := history.OpenSlot(ctx, cfg.History)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open history slot", goerr.V("backend", cfg.History.Backend))
	}
	store := history.NewStore(slot, history.WithCapacity(cfg.History.Capacity), history.WithLogger(logging.Default()))
	store.Load(ctx)

	return &appEnv{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		slot:   slot,
		store:  store,
	}, nil
}

func (r *appEnv) Close() {
	if err := r.slot.Close(); err != nil {
		logging.Default().Warn("failed to close history slot", "error", err)
	}
}

// buildBackend 按配置选择生成后端。工作流凭据在每次生成时校验，缺失不影响启动。
func buildBackend(cfg config.Config, client *http.Client) (generator.Backend, error) {
	if err := generator.KnownBackend(cfg.Backend); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case generator.BackendOpenAI:
		return generator.NewChatBackend(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case generator.BackendMock:
		return generator.MockBackend{}, nil
	default:
		creds, err := cfg.Credentials()
		if err != nil {
			logging.Default().Warn("workflow credentials incomplete, generation will fail until configured", "error", err)
		}
		return generator.NewWorkflowBackend(creds, client), nil
	}
}
