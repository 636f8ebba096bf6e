package generator

import (
	"context"
	"time"

	"ai_news_generator/logging"

	"github.com/m-mizutani/goerr/v2"
)

// Agent 负责校验请求、调用后端并补全结果。
type Agent struct {
	backend Backend
}

func NewAgent(backend Backend) (*Agent, error) {
	if backend == nil {
		return nil, goerr.New("generation backend is required")
	}
	return &Agent{backend: backend}, nil
}

// Generate 返回规范化后的请求（描述已补齐）以及生成结果。
func (a *Agent) Generate(ctx context.Context, req Request) (Request, Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return req, Result{}, err
	}

	start := time.Now()
	res, err := a.backend.Generate(ctx, req)
	if err != nil {
		logging.From(ctx).Warn("generation failed", "error", err, "elapsed", time.Since(start))
		return req, Result{}, err
	}
	logging.From(ctx).Info("generation done", "chars", len([]rune(res.Content)), "elapsed", time.Since(start))

	out := PostProcess(res.Content)
	if res.Title != "" {
		out.Title = res.Title
	}
	if res.Summary != "" {
		out.Summary = res.Summary
	}
	return req, out, nil
}
