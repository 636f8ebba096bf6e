package render

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// 页面展示的排版规则：标题、段落、列表、引用、表格、图片都显式给出样式。
var layout = map[string]string{
	"h1":         "font-size:24px;font-weight:700;margin:1em 0 0.6em;",
	"h2":         "font-size:22px;font-weight:700;margin:1em 0 0.6em;",
	"h3":         "font-size:20px;font-weight:700;margin:1em 0 0.6em;",
	"h4":         "font-size:18px;font-weight:700;margin:1em 0 0.6em;",
	"h5":         "font-size:16px;font-weight:700;margin:1em 0 0.6em;",
	"h6":         "font-size:15px;font-weight:700;margin:1em 0 0.6em;",
	"p":          "margin:0.8em 0;line-height:1.6;",
	"ul":         "margin:0.8em 0;padding-left:2em;",
	"ol":         "margin:0.8em 0;padding-left:2em;",
	"li":         "margin:0.3em 0;line-height:1.6;",
	"blockquote": "margin:1em 0;padding:0.5em 1em;border-left:4px solid #2196f3;background:#f5f5f5;color:#555;",
	"table":      "border-collapse:collapse;width:100%;margin:1em 0;",
	"th":         "border:1px solid #ddd;padding:6px 10px;background:#fafafa;font-weight:700;",
	"td":         "border:1px solid #ddd;padding:6px 10px;",
	"img":        "max-width:100%;height:auto;margin:0.5em 0;border-radius:4px;border:1px solid #eee;",
}

var (
	openTagRe  = regexp.MustCompile(`<(h[1-6]|p|ul|ol|li|blockquote|table|th|td|img)(\s[^>]*)?>`)
	styleRe    = regexp.MustCompile(`style="([^"]*)"`)
	mdEscapeRe = regexp.MustCompile(`([\\\[\]])`)
)

// Markdown 把节点拼回 Markdown，图片转为 ![描述](<地址>) 并单独成行。
func Markdown(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindImage:
			if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("![%s](<%s>)\n", mdEscapeRe.ReplaceAllString(n.Alt, `\$1`), escapeURL(n.URL)))
		}
	}
	return strings.Replace(b.String(), "\n\n\n", "\n\n", -1)
}

func escapeURL(u string) string {
	if parsed, err := url.Parse(u); err == nil {
		u = parsed.String()
	}
	r := strings.NewReplacer("<", "%3C", ">", "%3E", " ", "%20", "\n", "")
	return r.Replace(u)
}

// HTML 用 goldmark 渲染节点并套用排版规则。
func HTML(nodes []Node) (string, error) {
	if len(nodes) == 1 && nodes[0].Kind == KindEmpty {
		return fmt.Sprintf(`<p style="color:#999;">%s</p>`, html.EscapeString(nodes[0].Text)), nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(nodes)), &buf); err != nil {
		return "", goerr.Wrap(err, "failed to convert markdown")
	}
	return ApplyLayout(buf.String()), nil
}

// ApplyLayout 给已知标签加上内联样式；已有 style 时把规则放在前面。
func ApplyLayout(s string) string {
	return openTagRe.ReplaceAllStringFunc(s, func(tag string) string {
		parts := openTagRe.FindStringSubmatch(tag)
		name, attrs := parts[1], parts[2]
		css := layout[name]
		if css == "" {
			return tag
		}
		if styleRe.MatchString(attrs) {
			attrs = styleRe.ReplaceAllString(attrs, `style="`+css+`$1"`)
			return "<" + name + attrs + ">"
		}
		return "<" + name + ` style="` + css + `"` + attrs + ">"
	})
}
