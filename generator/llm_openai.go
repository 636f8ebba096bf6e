package generator

import (
	"context"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatBackend 使用 openai-go 调用 OpenAI 兼容的 chat completions 接口。
type ChatBackend struct {
	Model string
	Opts  []option.RequestOption
}

func NewChatBackend(cfg *LLMSettings, extra ...option.RequestOption) (*ChatBackend, error) {
	if cfg == nil {
		return nil, goerr.New("llm config is nil", goerr.T(apperr.TagConfig))
	}
	if cfg.APIKey == "" {
		return nil, goerr.New("openai api key missing; provide llm.api_key", goerr.T(apperr.TagConfig))
	}
	if cfg.Model == "" {
		return nil, goerr.New("llm model is required", goerr.T(apperr.TagConfig))
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)
	return &ChatBackend{Model: cfg.Model, Opts: opts}, nil
}

func (o *ChatBackend) Generate(ctx context.Context, req Request) (Result, error) {
	client := openai.NewClient(o.Opts...)
	prompt := BuildNewsPrompt(req)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return Result{}, goerr.Wrap(err, "chat completion failed", goerr.V("model", o.Model), goerr.T(apperr.TagTransport))
	}
	if len(resp.Choices) == 0 {
		return Result{}, goerr.New("openai: empty choices", goerr.T(apperr.TagPayload))
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		content = EmptyOutputNotice
	}
	return Result{Content: content}, nil
}
