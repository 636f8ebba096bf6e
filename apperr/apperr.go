// Package apperr 定义错误分类标签及其 HTTP 状态映射。
package apperr

import (
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// TagConfig 凭据、端点等配置缺失或非法。
	TagConfig = goerr.NewTag("config")
	// TagInvalid 调用方提交的数据不合法。
	TagInvalid = goerr.NewTag("invalid")
	// TagTransport 网络失败或非 2xx 响应。
	TagTransport = goerr.NewTag("transport")
	// TagPayload 响应结构与约定不符。
	TagPayload = goerr.NewTag("payload")
	// TagUpstream 上游工作流明确返回的业务错误，原样透传。
	TagUpstream = goerr.NewTag("upstream")
	// TagNotFound 请求的资源不存在。
	TagNotFound = goerr.NewTag("not_found")
)

// has 沿错误链逐层检查。
func has(err error, match func(error) bool) bool {
	for err != nil {
		if match(err) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func IsConfig(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagConfig) })
}

func IsInvalid(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagInvalid) })
}

func IsTransport(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagTransport) })
}

func IsPayload(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagPayload) })
}

func IsUpstream(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagUpstream) })
}

func IsNotFound(err error) bool {
	return has(err, func(e error) bool { return goerr.HasTag(e, TagNotFound) })
}

// HTTPStatus 把错误分类转换为 HTTP 状态码。
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsInvalid(err), IsUpstream(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsTransport(err), IsPayload(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
