package generator

import (
	"context"
	"fmt"
	"strings"
)

// MockBackend 本地调试用，不调用外部服务；为每张图片输出一个占位符。
type MockBackend struct{}

func (MockBackend) Generate(_ context.Context, req Request) (Result, error) {
	var sb strings.Builder
	sb.WriteString("# 自动生成示例新闻稿\n\n")
	sb.WriteString(strings.TrimSpace(req.FreeText))
	sb.WriteString("\n")
	for _, m := range req.SceneMedia {
		sb.WriteString(fmt.Sprintf("\n[[%s]]\n", m.Description))
	}
	for _, q := range req.Quotes {
		sb.WriteString(fmt.Sprintf("\n> %s：%s\n", q.SpeakerName, q.Text))
		if q.ImageURL != "" && q.Description != "" {
			sb.WriteString(fmt.Sprintf("\n[[%s]]\n", q.Description))
		}
	}
	return Result{Content: sb.String()}, nil
}
