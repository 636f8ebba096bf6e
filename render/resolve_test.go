package render_test

import (
	"testing"

	"ai_news_generator/generator"
	"ai_news_generator/render"

	"github.com/m-mizutani/gt"
)

func TestResolveScenario(t *testing.T) {
	nodes := render.Resolve("Before [[Podium]] After", render.MediaMap{"Podium": "http://x/img.jpg"})
	gt.Equal(t, nodes, []render.Node{
		{Kind: render.KindText, Text: "Before "},
		{Kind: render.KindImage, URL: "http://x/img.jpg", Alt: "Podium", Raw: "[[Podium]]"},
		{Kind: render.KindText, Text: " After"},
	})
}

func TestResolveMissingKeepsToken(t *testing.T) {
	nodes := render.Resolve("[[Missing]]", render.MediaMap{})
	gt.Equal(t, nodes, []render.Node{{Kind: render.KindText, Text: "[[Missing]]"}})
}

func TestResolveEmptyContent(t *testing.T) {
	nodes := render.Resolve("", render.MediaMap{"a": "b"})
	gt.Equal(t, nodes, []render.Node{{Kind: render.KindEmpty, Text: render.NoContent}})
	gt.Equal(t, render.Text(nodes), "")
}

func TestResolveWithoutTokensIsIdentity(t *testing.T) {
	inputs := []string{
		"plain",
		"  leading and trailing  ",
		"line one\n\nline two\r\n\ttabbed",
		"single [bracket] and ]] stray [[ halves",
		"中文内容，没有占位符。",
		"[[\n]] spans a newline",
	}
	media := render.MediaMap{"plain": "http://x/p.jpg"}
	for _, in := range inputs {
		nodes := render.Resolve(in, media)
		gt.Equal(t, render.Text(nodes), in)
		gt.A(t, render.Images(nodes)).Length(0)
	}
}

func TestResolvePreservesSurroundingText(t *testing.T) {
	content := "第一段\n\n[[现场图片1号]]\n  第二段 [[Missing]] 尾巴\n[[发言人张三的发言图片]]"
	media := render.MediaMap{
		"现场图片1号":      "http://x/1.jpg",
		"发言人张三的发言图片": "http://x/q.jpg",
	}
	nodes := render.Resolve(content, media)

	gt.Equal(t, render.Text(nodes), content)
	images := render.Images(nodes)
	gt.A(t, images).Length(2)
	gt.Equal(t, images[0].URL, "http://x/1.jpg")
	gt.Equal(t, images[0].Alt, "现场图片1号")
	gt.Equal(t, images[1].URL, "http://x/q.jpg")

	gt.Equal(t, nodes[0], render.Node{Kind: render.KindText, Text: "第一段\n\n"})
	gt.Equal(t, nodes[2], render.Node{Kind: render.KindText, Text: "\n  第二段 [[Missing]] 尾巴\n"})
}

func TestResolveAdjacentTokens(t *testing.T) {
	nodes := render.Resolve("[[a]][[b]][[c]]", render.MediaMap{"a": "u1", "c": "u3"})
	gt.Equal(t, nodes, []render.Node{
		{Kind: render.KindImage, URL: "u1", Alt: "a", Raw: "[[a]]"},
		{Kind: render.KindText, Text: "[[b]]"},
		{Kind: render.KindImage, URL: "u3", Alt: "c", Raw: "[[c]]"},
	})
}

func TestResolveLegacyTokens(t *testing.T) {
	content := `开头[[这里情插入"现场图片1号"]]结尾`
	nodes := render.Resolve(content, render.MediaMap{"现场图片1号": "http://x/1.jpg"})
	gt.Equal(t, nodes, []render.Node{
		{Kind: render.KindText, Text: "开头"},
		{Kind: render.KindImage, URL: "http://x/1.jpg", Alt: "现场图片1号", Raw: `[[这里情插入"现场图片1号"]]`},
		{Kind: render.KindText, Text: "结尾"},
	})
}

func TestResolveUnresolvedLegacyTokenKeepsOriginalText(t *testing.T) {
	content := `A [[这里情插入"Missing"]] B [[也缺失]]`
	nodes := render.Resolve(content, render.MediaMap{})
	gt.Equal(t, nodes, []render.Node{{Kind: render.KindText, Text: content}})
	gt.Equal(t, render.Text(nodes), content)
}

func TestLegacyFormTakesPrecedenceOverGenericMatch(t *testing.T) {
	// 整段旧占位符不会被当作通用格式的描述。
	media := render.MediaMap{`这里情插入"x"`: "http://wrong", "x": "http://right"}
	nodes := render.Resolve(`[[这里情插入"x"]]`, media)
	gt.A(t, nodes).Length(1)
	gt.Equal(t, nodes[0].URL, "http://right")
	gt.Equal(t, nodes[0].Raw, `[[这里情插入"x"]]`)
}

func TestResolveTrimsPaddedDescription(t *testing.T) {
	nodes := render.Resolve("[[ Podium ]]", render.MediaMap{"Podium": "u"})
	gt.Equal(t, nodes, []render.Node{{Kind: render.KindImage, URL: "u", Alt: "Podium", Raw: "[[ Podium ]]"}})
}

func TestBuildMediaMapQuoteOverridesScene(t *testing.T) {
	req := generator.Request{
		SceneMedia: []generator.MediaItem{
			{URL: "http://x/scene.jpg", Description: "Podium"},
			{URL: "http://x/2.jpg", Description: "Hall"},
		},
		Quotes: []generator.QuoteItem{
			{SpeakerName: "张三", ImageURL: "http://x/quote.jpg", Description: "Podium"},
			{SpeakerName: "李四", Text: "no image", Description: "ignored"},
		},
	}
	m := render.BuildMediaMap(req)
	gt.Equal(t, m["Podium"], "http://x/quote.jpg")
	gt.Equal(t, m["Hall"], "http://x/2.jpg")
	_, ok := m["ignored"]
	gt.False(t, ok)
}
