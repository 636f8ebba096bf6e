// Package render 把生成正文中的 [[描述]] 占位符解析为图片，并输出页面/导出格式。
package render

import (
	"regexp"
	"strings"

	"ai_news_generator/generator"
)

// NoContent 是空正文的占位文案。
const NoContent = "暂无内容"

type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindEmpty Kind = "empty"
)

// Node 是解析后的渲染单元。图片节点的 Raw 保留原始占位符文本。
type Node struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
	Alt  string `json:"alt,omitempty"`
	Raw  string `json:"raw,omitempty"`
}

// MediaMap 是描述到图片地址的映射。
type MediaMap map[string]string

// tokenRe 同时识别旧格式 [[这里情插入"描述"]] 与通用格式 [[描述]]；
// 同一起点上旧格式优先，描述分别落在第 1、2 组。
var tokenRe = regexp.MustCompile(`\[\[这里情插入"([^"]+)"\]\]|\[\[([^\[\]\n]+)\]\]`)

// BuildMediaMap 先登记现场图片，再登记发言图片；描述相同时后者覆盖前者。
func BuildMediaMap(req generator.Request) MediaMap {
	m := make(MediaMap, req.MediaCount())
	for _, item := range req.SceneMedia {
		if item.Description == "" || item.URL == "" {
			continue
		}
		m[item.Description] = item.URL
	}
	for _, q := range req.Quotes {
		if q.ImageURL == "" || q.Description == "" {
			continue
		}
		m[q.Description] = q.ImageURL
	}
	return m
}

// Resolve 从左到右单遍解析占位符，两种格式都先取出描述再查表。
// 找不到描述时占位符按原文保留；图片节点的 Raw 也是原文。空正文返回单个 KindEmpty 节点。
func Resolve(content string, media MediaMap) []Node {
	if content == "" {
		return []Node{{Kind: KindEmpty, Text: NoContent}}
	}

	var nodes []Node
	last := 0
	for _, loc := range tokenRe.FindAllStringSubmatchIndex(content, -1) {
		raw := content[loc[0]:loc[1]]
		desc := tokenDesc(content, loc)
		url, ok := lookup(media, desc)
		if !ok {
			continue
		}
		nodes = appendText(nodes, content[last:loc[0]])
		nodes = append(nodes, Node{Kind: KindImage, URL: url, Alt: strings.TrimSpace(desc), Raw: raw})
		last = loc[1]
	}
	return appendText(nodes, content[last:])
}

func tokenDesc(content string, loc []int) string {
	if loc[2] >= 0 {
		return content[loc[2]:loc[3]]
	}
	return content[loc[4]:loc[5]]
}

func lookup(media MediaMap, desc string) (string, bool) {
	if url, ok := media[desc]; ok && url != "" {
		return url, true
	}
	if url, ok := media[strings.TrimSpace(desc)]; ok && url != "" {
		return url, true
	}
	return "", false
}

// appendText 合并相邻文本节点。
func appendText(nodes []Node, s string) []Node {
	if s == "" {
		return nodes
	}
	if n := len(nodes); n > 0 && nodes[n-1].Kind == KindText {
		nodes[n-1].Text += s
		return nodes
	}
	return append(nodes, Node{Kind: KindText, Text: s})
}

// Text 把节点还原为纯文本；图片节点还原为占位符。
func Text(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case KindText:
			b.WriteString(n.Text)
		case KindImage:
			b.WriteString(n.Raw)
		}
	}
	return b.String()
}

// Images 返回全部图片节点。
func Images(nodes []Node) []Node {
	var out []Node
	for _, n := range nodes {
		if n.Kind == KindImage {
			out = append(out, n)
		}
	}
	return out
}
