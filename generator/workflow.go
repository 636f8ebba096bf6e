package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ai_news_generator/apperr"
	"ai_news_generator/config"
	"ai_news_generator/logging"

	"github.com/m-mizutani/goerr/v2"
)

const (
	workflowBotID  = "news_generator"
	workflowCaller = "workflow"

	maxResponseBytes = 8 << 20
	snippetLimit     = 512
)

type workflowParameters struct {
	AgentUserInput string      `json:"AGENT_USER_INPUT"`
	Live           []MediaItem `json:"live"`
	Quote          []QuoteItem `json:"quote"`
}

type workflowExt struct {
	BotID  string `json:"bot_id"`
	Caller string `json:"caller"`
}

type workflowPayload struct {
	FlowID     string             `json:"flow_id"`
	UID        string             `json:"uid"`
	Parameters workflowParameters `json:"parameters"`
	Ext        workflowExt        `json:"ext"`
	Stream     bool               `json:"stream"`
}

// WorkflowBackend 调用外部工作流接口（单次 POST，非流式，不重试）。
type WorkflowBackend struct {
	creds  config.Credentials
	client *http.Client
	now    func() time.Time
}

func NewWorkflowBackend(creds config.Credentials, client *http.Client) *WorkflowBackend {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &WorkflowBackend{creds: creds, client: client, now: time.Now}
}

func (w *WorkflowBackend) payload(req Request) workflowPayload {
	live := req.SceneMedia
	if live == nil {
		live = []MediaItem{}
	}
	quote := req.Quotes
	if quote == nil {
		quote = []QuoteItem{}
	}
	return workflowPayload{
		FlowID: w.creds.FlowID,
		UID:    "web_user_" + strconv.FormatInt(w.now().UnixMilli(), 10),
		Parameters: workflowParameters{
			AgentUserInput: req.FreeText,
			Live:           live,
			Quote:          quote,
		},
		Ext:    workflowExt{BotID: workflowBotID, Caller: workflowCaller},
		Stream: false,
	}
}

func (w *WorkflowBackend) Generate(ctx context.Context, req Request) (Result, error) {
	if err := w.creds.Validate(); err != nil {
		return Result{}, err
	}

	p := w.payload(req)
	body, err := json.Marshal(p)
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to encode workflow payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.creds.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to build workflow request", goerr.T(apperr.TagConfig))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", w.creds.Bearer())

	log := logging.From(ctx)
	log.Info("calling workflow", "uid", p.UID, "live", len(p.Parameters.Live), "quote", len(p.Parameters.Quote))

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return Result{}, goerr.Wrap(err, "workflow request failed", goerr.T(apperr.TagTransport))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to read workflow response", goerr.T(apperr.TagTransport))
	}
	text := string(raw)
	log.Debug("workflow raw response", "status", resp.StatusCode, "body", text)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, goerr.New(
			fmt.Sprintf("星火 API 响应错误: %d %s - %s", resp.StatusCode, http.StatusText(resp.StatusCode), Snippet(text)),
			goerr.V("status", resp.StatusCode), goerr.T(apperr.TagTransport))
	}

	content, err := ParseEnvelope(text)
	if err != nil {
		return Result{}, err
	}
	return Result{Content: content}, nil
}

// Snippet 截断过长的响应体，用于错误信息。
func Snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLimit {
		return s
	}
	return string(r[:snippetLimit]) + "..."
}
