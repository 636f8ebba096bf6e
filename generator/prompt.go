package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// BuildNewsPrompt 为对话后端生成新闻稿提示词，要求模型用 [[描述]] 标出插图位置。
func BuildNewsPrompt(req Request) Prompt {
	var sb strings.Builder
	sb.WriteString("你是一名专业新闻编辑，请根据素材撰写一篇中文新闻稿，直接输出 Markdown，不要额外解释。\n")
	sb.WriteString("要求：\n")
	sb.WriteString("- 必须包含一级标题作为新闻稿标题。\n")
	sb.WriteString("- 标题之后给出一段导语概括事件要点。\n")
	sb.WriteString("- 需要配图的位置单独成行写 [[图片描述]]，描述必须与素材中给出的完全一致，不得自造。\n")
	sb.WriteString("- 引用发言时保留发言人姓名；标注需要总结的发言请先概括再引用要点。\n")

	var user strings.Builder
	user.WriteString("主要内容和背景：\n")
	user.WriteString(req.FreeText)
	user.WriteString("\n")

	if len(req.SceneMedia) > 0 {
		user.WriteString("\n现场图片：\n")
		for i, m := range req.SceneMedia {
			user.WriteString(fmt.Sprintf("%d. [[%s]]\n", i+1, m.Description))
		}
	}
	if len(req.Quotes) > 0 {
		user.WriteString("\n发言记录：\n")
		for i, q := range req.Quotes {
			user.WriteString(fmt.Sprintf("%d. %s：%s\n", i+1, q.SpeakerName, q.Text))
			if q.Summarize {
				user.WriteString("   （需要 AI 总结）\n")
			}
			if q.ImageURL != "" && q.Description != "" {
				user.WriteString(fmt.Sprintf("   配图：[[%s]]\n", q.Description))
			}
		}
	}
	user.WriteString("\n请输出符合上述要求的完整 Markdown。")

	return Prompt{
		System: sb.String(),
		User:   user.String(),
	}
}
