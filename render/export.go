package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
	"regexp"
	"strings"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/logging"

	"github.com/m-mizutani/goerr/v2"
)

// ExportPrefix 是导出文件名前缀。
const ExportPrefix = "新闻稿"

// Fetcher 在导出时按地址下载图片。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

type BlockKind string

const (
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockImage     BlockKind = "image"
)

// Block 是导出文档的扁平段落；图片块携带已下载的内容。
type Block struct {
	Kind        BlockKind
	Level       int
	Text        string
	Alt         string
	Data        []byte
	ContentType string
}

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// ExportFileName 生成带日期的导出文件名，例如 新闻稿_2026-10-18.txt。
func ExportFileName(now time.Time, ext string) string {
	return ExportPrefix + "_" + now.Format("2006-01-02") + "." + strings.TrimPrefix(ext, ".")
}

// PlainText 返回纯文本导出内容（原始正文）。
func PlainText(res generator.Result) []byte {
	return []byte(res.Content)
}

// Flatten 把节点拆成段落与图片块。图片下载失败时，占位符原文作为普通文字留在原位。
func Flatten(ctx context.Context, nodes []Node, fetcher Fetcher) []Block {
	var (
		blocks []Block
		para   strings.Builder
	)
	flush := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if m := headingRe.FindStringSubmatch(text); m != nil {
			blocks = append(blocks, Block{Kind: BlockHeading, Level: len(m[1]), Text: strings.TrimSpace(m[2])})
			return
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: text})
	}

	for _, n := range nodes {
		switch n.Kind {
		case KindText:
			lines := strings.Split(n.Text, "\n")
			for i, line := range lines {
				para.WriteString(line)
				if i < len(lines)-1 {
					flush()
				}
			}
		case KindImage:
			if fetcher == nil {
				para.WriteString(n.Raw)
				continue
			}
			data, ctype, err := fetcher.Fetch(ctx, n.URL)
			if err != nil {
				logging.From(ctx).Warn("image fetch failed, keep placeholder text", "url", n.URL, "error", err)
				para.WriteString(n.Raw)
				continue
			}
			flush()
			blocks = append(blocks, Block{Kind: BlockImage, Alt: n.Alt, Data: data, ContentType: ctype})
		}
	}
	flush()
	return blocks
}

var documentTmpl = template.Must(template.New("doc").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:-apple-system,"PingFang SC","Microsoft YaHei",sans-serif;max-width:800px;margin:2em auto;line-height:1.7;color:#222;}
figure{margin:1em 0;text-align:center;}
figure img{max-width:100%;height:auto;}
figcaption{color:#888;font-size:13px;}
.summary{color:#666;font-style:italic;}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Summary}}<p class="summary">摘要：{{.Summary}}</p>{{end}}
{{range .Blocks}}{{if eq .Kind "heading"}}{{if le .Level 2}}<h2>{{.Text}}</h2>{{else}}<h3>{{.Text}}</h3>{{end}}
{{else if eq .Kind "image"}}<figure><img src="{{.Src}}" alt="{{.Alt}}"><figcaption>{{.Alt}}</figcaption></figure>
{{else}}<p>{{.Text}}</p>
{{end}}{{end}}</body>
</html>
`))

type docBlock struct {
	Kind  string
	Level int
	Text  string
	Alt   string
	Src   template.URL
}

// Document 生成自包含的 HTML 文档，图片以 data URI 内嵌。
func Document(ctx context.Context, res generator.Result, media MediaMap, fetcher Fetcher) ([]byte, error) {
	blocks := Flatten(ctx, Resolve(res.Content, media), fetcher)

	view := struct {
		Title   string
		Summary string
		Blocks  []docBlock
	}{Title: res.Title, Summary: res.Summary}
	if view.Title == "" {
		view.Title = generator.DefaultTitle
	}

	for i, b := range blocks {
		// 正文自带的一级标题与文档标题重复时跳过。
		if i == 0 && b.Kind == BlockHeading && b.Level == 1 && b.Text == view.Title {
			continue
		}
		db := docBlock{Kind: string(b.Kind), Level: b.Level, Text: b.Text, Alt: b.Alt}
		if b.Kind == BlockImage {
			db.Src = template.URL("data:" + b.ContentType + ";base64," + base64.StdEncoding.EncodeToString(b.Data))
		}
		view.Blocks = append(view.Blocks, db)
	}

	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, view); err != nil {
		return nil, goerr.Wrap(err, "failed to render export document")
	}
	return buf.Bytes(), nil
}
