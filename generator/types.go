package generator

import (
	"fmt"
	"strings"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
)

// MediaItem 是一张已上传的图片；Description 在一次请求内唯一，用作占位符的键。
type MediaItem struct {
	URL         string `json:"url"`
	Description string `json:"desc"`
}

// QuoteItem 记录一段发言，可附带发言人图片。
type QuoteItem struct {
	SpeakerName string `json:"name"`
	ImageURL    string `json:"image,omitempty"`
	Text        string `json:"content"`
	// Summarize 对应工作流参数 needAiSummary（0 或 1）。
	Summarize   Flag   `json:"needAiSummary"`
	Description string `json:"desc,omitempty"`
}

// Request 字段名沿用工作流参数名，便于直接透传。
type Request struct {
	FreeText   string      `json:"AGENT_USER_INPUT"`
	SceneMedia []MediaItem `json:"live"`
	Quotes     []QuoteItem `json:"quote"`
}

// Result 是生成结果；Content 中可能带有 [[描述]] 占位符。
type Result struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// SceneDescription 返回第 n 张现场图片（从 1 开始）的默认描述。
func SceneDescription(n int) string {
	return fmt.Sprintf("现场图片%d号", n)
}

// QuoteDescription 返回发言图片的默认描述。
func QuoteDescription(speaker string) string {
	return fmt.Sprintf("发言人%s的发言图片", speaker)
}

// Normalize 补齐缺省描述，并清掉没有图片的发言描述。
func (r Request) Normalize() Request {
	out := Request{FreeText: r.FreeText}
	if len(r.SceneMedia) > 0 {
		out.SceneMedia = make([]MediaItem, len(r.SceneMedia))
	}
	for i, m := range r.SceneMedia {
		m.URL = strings.TrimSpace(m.URL)
		m.Description = strings.TrimSpace(m.Description)
		if m.Description == "" {
			m.Description = SceneDescription(i + 1)
		}
		out.SceneMedia[i] = m
	}
	if len(r.Quotes) > 0 {
		out.Quotes = make([]QuoteItem, len(r.Quotes))
	}
	for i, q := range r.Quotes {
		q.ImageURL = strings.TrimSpace(q.ImageURL)
		q.Description = strings.TrimSpace(q.Description)
		switch {
		case q.ImageURL == "":
			q.Description = ""
		case q.Description == "":
			q.Description = QuoteDescription(q.SpeakerName)
		}
		out.Quotes[i] = q
	}
	return out
}

// Validate 检查请求不变量：正文非空，每个媒体都有 URL 和请求内唯一的描述。
func (r Request) Validate() error {
	if strings.TrimSpace(r.FreeText) == "" {
		return goerr.New("请输入文本内容", goerr.T(apperr.TagInvalid))
	}

	seen := make(map[string]struct{})
	check := func(url, desc, where string) error {
		if url == "" {
			return goerr.New("media url is empty", goerr.V("item", where), goerr.T(apperr.TagInvalid))
		}
		if desc == "" {
			return goerr.New("media description is empty", goerr.V("item", where), goerr.T(apperr.TagInvalid))
		}
		if _, dup := seen[desc]; dup {
			return goerr.New("图片描述重复："+desc, goerr.V("item", where), goerr.T(apperr.TagInvalid))
		}
		seen[desc] = struct{}{}
		return nil
	}

	for i, m := range r.SceneMedia {
		if err := check(m.URL, m.Description, fmt.Sprintf("live[%d]", i)); err != nil {
			return err
		}
	}
	for i, q := range r.Quotes {
		if q.ImageURL == "" {
			continue
		}
		if err := check(q.ImageURL, q.Description, fmt.Sprintf("quote[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

// MediaCount 返回请求中带图片的条目数。
func (r Request) MediaCount() int {
	n := len(r.SceneMedia)
	for _, q := range r.Quotes {
		if q.ImageURL != "" {
			n++
		}
	}
	return n
}
