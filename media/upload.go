// Package media 负责把图片转发到上传接口，以及导出时按地址下载图片。
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"ai_news_generator/apperr"
	"ai_news_generator/generator"
	"ai_news_generator/logging"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

const (
	formField         = "file"
	maxUploadRespSize = 1 << 20
	uploadConcurrency = 4
)

// File 是一份待上传的文件。
type File struct {
	Name string
	Data []byte
}

// UploadResult 是单个文件的上传结果；Error 非空表示该文件失败。
type UploadResult struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

type uploadResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
}

type Uploader struct {
	endpoint string
	client   *http.Client
}

func NewUploader(endpoint string, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Uploader{endpoint: endpoint, client: client}
}

// Upload 以 multipart 表单（字段 file）上传，Authorization 原样转发。
func (u *Uploader) Upload(ctx context.Context, auth string, f File) (string, error) {
	if auth == "" {
		return "", goerr.New("missing Authorization header", goerr.T(apperr.TagConfig))
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(formField, f.Name)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create form file")
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", goerr.Wrap(err, "failed to write form file")
	}
	if err := writer.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build upload request", goerr.T(apperr.TagConfig))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", auth)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "upload request failed", goerr.T(apperr.TagTransport), goerr.V("file", f.Name))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadRespSize))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read upload response", goerr.T(apperr.TagTransport))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", goerr.New(
			fmt.Sprintf("上传接口响应错误: %d %s - %s", resp.StatusCode, http.StatusText(resp.StatusCode), generator.Snippet(string(raw))),
			goerr.V("status", resp.StatusCode), goerr.V("file", f.Name), goerr.T(apperr.TagTransport))
	}

	var data uploadResp
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", goerr.Wrap(err, "JSON 解析失败: "+generator.Snippet(string(raw)), goerr.T(apperr.TagPayload))
	}
	if data.Code != 0 {
		msg := data.Message
		if msg == "" {
			msg = fmt.Sprintf("upload failed with code %d", data.Code)
		}
		return "", goerr.New(msg, goerr.V("code", data.Code), goerr.V("file", f.Name), goerr.T(apperr.TagUpstream))
	}
	if data.Data.URL == "" {
		return "", goerr.New("upload response has no url", goerr.V("file", f.Name), goerr.T(apperr.TagPayload))
	}
	return data.Data.URL, nil
}

// UploadAll 并发上传，结果与输入顺序一致；单个失败不影响其他文件。
func (u *Uploader) UploadAll(ctx context.Context, auth string, files []File) []UploadResult {
	results := make([]UploadResult, len(files))
	var g errgroup.Group
	g.SetLimit(uploadConcurrency)

	for i, f := range files {
		g.Go(func() error {
			results[i].Name = f.Name
			url, err := u.Upload(ctx, auth, f)
			if err != nil {
				logging.From(ctx).Warn("upload failed", "file", f.Name, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].URL = url
			return nil
		})
	}
	_ = g.Wait()
	return results
}
