package generator

import (
	"context"
	"strings"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
)

// Backend 抽象一次性（非流式）的新闻稿生成调用，便于替换/Mock。
type Backend interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// LLMSettings 提供给 openai 兼容后端的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

const (
	BackendWorkflow = "workflow"
	BackendOpenAI   = "openai"
	BackendMock     = "mock"
)

// KnownBackend 判断后端名称是否受支持。
func KnownBackend(name string) error {
	switch strings.ToLower(name) {
	case BackendWorkflow, BackendOpenAI, BackendMock:
		return nil
	}
	return goerr.New("backend not supported", goerr.V("backend", name), goerr.T(apperr.TagConfig))
}
