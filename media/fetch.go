package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"ai_news_generator/apperr"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxImageSize 是导出时单张图片的下载上限。
const DefaultMaxImageSize = 10 << 20

// Fetcher 下载图片供导出内嵌，只接受 image/* 内容。
type Fetcher struct {
	client  *http.Client
	maxSize int64
}

func NewFetcher(client *http.Client, maxSize int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &Fetcher{client: client, maxSize: maxSize}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", goerr.Wrap(err, "invalid image url", goerr.V("url", url), goerr.T(apperr.TagInvalid))
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", goerr.Wrap(err, "image request failed", goerr.V("url", url), goerr.T(apperr.TagTransport))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", goerr.New(fmt.Sprintf("image response %d", resp.StatusCode),
			goerr.V("url", url), goerr.T(apperr.TagTransport))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read image", goerr.V("url", url), goerr.T(apperr.TagTransport))
	}
	if int64(len(data)) > f.maxSize {
		return nil, "", goerr.New("image too large", goerr.V("url", url), goerr.V("limit", f.maxSize), goerr.T(apperr.TagPayload))
	}

	ctype := contentType(resp.Header.Get("Content-Type"), data)
	if !strings.HasPrefix(ctype, "image/") {
		return nil, "", goerr.New("not an image", goerr.V("url", url), goerr.V("content_type", ctype), goerr.T(apperr.TagPayload))
	}
	return data, ctype, nil
}

func contentType(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}
