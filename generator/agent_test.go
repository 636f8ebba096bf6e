package generator_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai_news_generator/apperr"
	"ai_news_generator/generator"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type stubBackend struct {
	got    generator.Request
	result generator.Result
	err    error
	calls  int
}

func (s *stubBackend) Generate(_ context.Context, req generator.Request) (generator.Result, error) {
	s.calls++
	s.got = req
	return s.result, s.err
}

func TestAgentNormalizesBeforeCallingBackend(t *testing.T) {
	stub := &stubBackend{result: generator.Result{Content: "正文 [[现场图片1号]]"}}
	agent, err := generator.NewAgent(stub)
	gt.NoError(t, err)

	req, res, err := agent.Generate(context.Background(), generator.Request{
		FreeText:   "发布会",
		SceneMedia: []generator.MediaItem{{URL: "http://x/1.jpg"}},
	})
	gt.NoError(t, err)
	gt.Equal(t, stub.got.SceneMedia[0].Description, "现场图片1号")
	gt.Equal(t, req.SceneMedia[0].Description, "现场图片1号")
	gt.Equal(t, res.Content, "正文 [[现场图片1号]]")
	gt.Equal(t, res.Title, generator.DefaultTitle)
	gt.Equal(t, res.Summary, generator.DefaultSummary)
}

func TestAgentRejectsInvalidRequestWithoutCalling(t *testing.T) {
	stub := &stubBackend{}
	agent, err := generator.NewAgent(stub)
	gt.NoError(t, err)

	_, _, err = agent.Generate(context.Background(), generator.Request{FreeText: " "})
	gt.Error(t, err)
	gt.True(t, apperr.IsInvalid(err))
	gt.Equal(t, stub.calls, 0)
}

func TestAgentPropagatesBackendError(t *testing.T) {
	stub := &stubBackend{err: io.ErrUnexpectedEOF}
	agent, err := generator.NewAgent(stub)
	gt.NoError(t, err)

	_, _, err = agent.Generate(context.Background(), generator.Request{FreeText: "x"})
	gt.Error(t, err)
	gt.Equal(t, stub.calls, 1)
}

func TestNewAgentRequiresBackend(t *testing.T) {
	_, err := generator.NewAgent(nil)
	gt.Error(t, err)
	gt.NotNil(t, goerr.Unwrap(err))
}

func TestPostProcess(t *testing.T) {
	plain := generator.PostProcess("no heading here")
	gt.Equal(t, plain.Title, generator.DefaultTitle)
	gt.Equal(t, plain.Summary, generator.DefaultSummary)

	md := generator.PostProcess("# 新品发布\n\n[[现场图片1号]]\n\n今天上午，公司发布了新品。\n\n更多内容")
	gt.Equal(t, md.Title, "新品发布")
	gt.Equal(t, md.Summary, "今天上午，公司发布了新品。")
	gt.Equal(t, md.Content, "# 新品发布\n\n[[现场图片1号]]\n\n今天上午，公司发布了新品。\n\n更多内容")
}

func TestMockBackendEmitsPlaceholders(t *testing.T) {
	req := generator.Request{
		FreeText:   "发布会",
		SceneMedia: []generator.MediaItem{{URL: "u", Description: "Podium"}},
		Quotes:     []generator.QuoteItem{{SpeakerName: "张三", Text: "你好", ImageURL: "q", Description: "张三照片"}},
	}
	res, err := generator.MockBackend{}.Generate(context.Background(), req)
	gt.NoError(t, err)
	gt.S(t, res.Content).Contains("[[Podium]]")
	gt.S(t, res.Content).Contains("[[张三照片]]")
	gt.S(t, res.Content).Contains("张三：你好")
}

func TestBuildNewsPrompt(t *testing.T) {
	p := generator.BuildNewsPrompt(generator.Request{
		FreeText:   "背景",
		SceneMedia: []generator.MediaItem{{URL: "u", Description: "Podium"}},
		Quotes:     []generator.QuoteItem{{SpeakerName: "张三", Text: "你好", Summarize: true}},
	})
	gt.S(t, p.System).Contains("[[图片描述]]")
	gt.S(t, p.User).Contains("1. [[Podium]]")
	gt.S(t, p.User).Contains("张三：你好")
	gt.S(t, p.User).Contains("需要 AI 总结")
}

func TestChatBackend(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		gt.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"# 标题\n\n导语 [[Podium]]"}}]}`)
	}))
	t.Cleanup(srv.Close)

	backend, err := generator.NewChatBackend(&generator.LLMSettings{Model: "m", APIKey: "sk-test", BaseURL: srv.URL + "/v1/"})
	gt.NoError(t, err)

	res, err := backend.Generate(context.Background(), generator.Request{FreeText: "x"})
	gt.NoError(t, err)
	gt.Equal(t, res.Content, "# 标题\n\n导语 [[Podium]]")
	gt.Equal(t, auth, "Bearer sk-test")
}

func TestNewChatBackendValidation(t *testing.T) {
	_, err := generator.NewChatBackend(nil)
	gt.Error(t, err)
	_, err = generator.NewChatBackend(&generator.LLMSettings{Model: "m"})
	gt.True(t, apperr.IsConfig(err))
	_, err = generator.NewChatBackend(&generator.LLMSettings{APIKey: "k"})
	gt.Error(t, err)
}

func TestKnownBackend(t *testing.T) {
	gt.NoError(t, generator.KnownBackend("workflow"))
	gt.NoError(t, generator.KnownBackend("Mock"))
	gt.Error(t, generator.KnownBackend("gemini"))
}
