package render_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/render"

	"github.com/m-mizutani/gt"
)

type stubFetcher struct {
	data map[string][]byte
	hits []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	f.hits = append(f.hits, url)
	if b, ok := f.data[url]; ok {
		return b, "image/png", nil
	}
	return nil, "", errors.New("unreachable")
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	gt.Equal(t, render.ExportFileName(now, "txt"), "新闻稿_2026-03-09.txt")
	gt.Equal(t, render.ExportFileName(now, ".html"), "新闻稿_2026-03-09.html")
}

func TestPlainTextKeepsRawContent(t *testing.T) {
	res := generator.Result{Content: "# T\n\n正文 [[Podium]]", Title: "T"}
	gt.Equal(t, string(render.PlainText(res)), res.Content)
}

func TestFlatten(t *testing.T) {
	f := &stubFetcher{data: map[string][]byte{"http://x/ok.png": []byte("PNG")}}
	nodes := render.Resolve("## 小标题\n第一段\n[[ok]]\n第二段 [[bad]] 结束", render.MediaMap{
		"ok":  "http://x/ok.png",
		"bad": "http://x/bad.png",
	})

	blocks := render.Flatten(context.Background(), nodes, f)
	gt.Equal(t, blocks, []render.Block{
		{Kind: render.BlockHeading, Level: 2, Text: "小标题"},
		{Kind: render.BlockParagraph, Text: "第一段"},
		{Kind: render.BlockImage, Alt: "ok", Data: []byte("PNG"), ContentType: "image/png"},
		{Kind: render.BlockParagraph, Text: "第二段 [[bad]] 结束"},
	})
	gt.Equal(t, f.hits, []string{"http://x/ok.png", "http://x/bad.png"})
}

func TestFlattenLegacyFallbackKeepsOriginalToken(t *testing.T) {
	nodes := render.Resolve(`前 [[这里情插入"P"]] 后`, render.MediaMap{"P": "http://x/broken.png"})
	blocks := render.Flatten(context.Background(), nodes, &stubFetcher{})
	gt.Equal(t, blocks, []render.Block{{Kind: render.BlockParagraph, Text: `前 [[这里情插入"P"]] 后`}})
}

func TestFlattenWithoutFetcher(t *testing.T) {
	nodes := render.Resolve("a [[ok]] b", render.MediaMap{"ok": "http://x/ok.png"})
	blocks := render.Flatten(context.Background(), nodes, nil)
	gt.Equal(t, blocks, []render.Block{{Kind: render.BlockParagraph, Text: "a [[ok]] b"}})
}

func TestDocument(t *testing.T) {
	f := &stubFetcher{data: map[string][]byte{"http://x/ok.png": []byte("PNG")}}
	res := generator.Result{
		Title:   "发布会召开",
		Summary: "摘要内容",
		Content: "# 发布会召开\n\n导语 <b>\n\n[[ok]]\n\n[[bad]]",
	}
	out, err := render.Document(context.Background(), res, render.MediaMap{
		"ok":  "http://x/ok.png",
		"bad": "http://x/bad.png",
	}, f)
	gt.NoError(t, err)

	doc := string(out)
	gt.S(t, doc).Contains("<title>发布会召开</title>")
	gt.S(t, doc).Contains(`<p class="summary">摘要：摘要内容</p>`)
	gt.S(t, doc).Contains(`src="data:image/png;base64,` + base64.StdEncoding.EncodeToString([]byte("PNG")) + `"`)
	gt.S(t, doc).Contains("<p>[[bad]]</p>")
	gt.S(t, doc).Contains("<p>导语 &lt;b&gt;</p>")
	gt.S(t, doc).NotContains("<h2>发布会召开</h2>")
}

func TestDocumentDefaultsTitle(t *testing.T) {
	out, err := render.Document(context.Background(), generator.Result{Content: "正文"}, nil, nil)
	gt.NoError(t, err)
	gt.S(t, string(out)).Contains("<h1>" + generator.DefaultTitle + "</h1>")
}
