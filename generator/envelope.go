package generator

import (
	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"
)

// EmptyOutputNotice 在工作流返回空 output 时作为正文。
const EmptyOutputNotice = "生成的内容为空"

// ParseEnvelope 解析工作流的非流式响应：外层取 choices[0].delta.content，
// 该字段本身是一段 JSON 字符串，需要再解析一次得到 error 或 output。
func ParseEnvelope(raw string) (string, error) {
	if !gjson.Valid(raw) {
		return "", goerr.New("JSON 解析失败: "+raw, goerr.T(apperr.TagPayload))
	}

	content := gjson.Get(raw, "choices.0.delta.content")
	if content.Type != gjson.String || content.Str == "" {
		return "", goerr.New("API 响应中没有找到 choices[0].delta.content 字段，实际收到: "+raw,
			goerr.T(apperr.TagPayload))
	}

	inner := content.Str
	if !gjson.Valid(inner) {
		return "", goerr.New("JSON 解析失败: "+inner, goerr.T(apperr.TagPayload))
	}

	if msg, ok := upstreamError(gjson.Get(inner, "error")); ok {
		return "", goerr.New(msg, goerr.T(apperr.TagUpstream))
	}

	output := gjson.Get(inner, "output")
	if !output.Exists() {
		return "", goerr.New("Content JSON 中没有找到 output 字段，实际内容: "+inner,
			goerr.T(apperr.TagPayload))
	}
	if output.Type == gjson.String {
		if output.Str == "" {
			return EmptyOutputNotice, nil
		}
		return output.Str, nil
	}
	if output.Type == gjson.Null {
		return EmptyOutputNotice, nil
	}
	return output.Raw, nil
}

// upstreamError 只把“真值”的 error 字段当成错误：空串、null、false、0 都忽略。
func upstreamError(v gjson.Result) (string, bool) {
	switch v.Type {
	case gjson.String:
		return v.Str, v.Str != ""
	case gjson.True:
		return "true", true
	case gjson.Number:
		return v.Raw, v.Num != 0
	case gjson.JSON:
		return v.Raw, true
	default:
		return "", false
	}
}
