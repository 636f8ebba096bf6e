package generator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	DefaultTitle   = "AI 生成的新闻稿"
	DefaultSummary = "基于您提供的数据，AI 为您生成的专业新闻稿"

	summaryLimit = 120
)

var (
	titleRe       = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	placeholderRe = regexp.MustCompile(`\[\[[^\]]*\]\]`)
)

// PostProcess 补全标题和摘要：正文带一级标题时取标题与首段，否则使用默认文案。
func PostProcess(content string) Result {
	res := Result{Content: content, Title: DefaultTitle, Summary: DefaultSummary}
	title := extractTitle(content)
	if title == "" {
		return res
	}
	res.Title = title
	if digest := extractDigest(content); digest != "" {
		res.Summary = truncateRunes(digest, summaryLimit)
	}
	return res
}

func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// 摘要取首段（跳过标题行，去掉图片占位符）。
func extractDigest(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(placeholderRe.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		return line
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
