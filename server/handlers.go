package server

import (
	"io"
	"mime"
	"net/http"

	"ai_news_generator/apperr"
	"ai_news_generator/generator"
	"ai_news_generator/history"
	"ai_news_generator/logging"
	"ai_news_generator/media"
	"ai_news_generator/render"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
)

type generateResp struct {
	Content   string            `json:"content"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Request   generator.Request `json:"request"`
	Nodes     []render.Node     `json:"nodes"`
	HTML      string            `json:"html"`
	HistoryID string            `json:"history_id"`
}

type renderReq struct {
	Content string                `json:"content"`
	Live    []generator.MediaItem `json:"live"`
	Quote   []generator.QuoteItem `json:"quote"`
}

type renderResp struct {
	Nodes []render.Node `json:"nodes"`
	HTML  string        `json:"html"`
}

type entryResp struct {
	Entry history.Entry `json:"entry"`
	Nodes []render.Node `json:"nodes"`
	HTML  string        `json:"html"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	ctx := c.Request.Context()
	var req generator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误", "details": err.Error()})
		return
	}

	normalized, res, err := s.agent.Generate(ctx, req)
	if err != nil {
		generationsTotal.WithLabelValues(outcome(err)).Inc()
		status := apperr.HTTPStatus(err)
		if apperr.IsUpstream(err) || apperr.IsInvalid(err) {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		logging.From(ctx).Error("generate news failed", "error", err)
		c.JSON(status, gin.H{"error": "生成新闻稿失败", "details": err.Error()})
		return
	}
	generationsTotal.WithLabelValues("success").Inc()

	entry := s.store.Append(ctx, normalized, res)
	historyEntries.Set(float64(s.store.Len()))

	nodes, html, err := resolveAndRender(res.Content, normalized)
	if err != nil {
		logging.From(ctx).Warn("render failed", "error", err)
	}
	c.JSON(http.StatusOK, generateResp{
		Content:   res.Content,
		Title:     res.Title,
		Summary:   res.Summary,
		Request:   normalized,
		Nodes:     nodes,
		HTML:      html,
		HistoryID: entry.ID,
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	if s.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upload is not configured"})
		return
	}
	auth := c.GetHeader("Authorization")
	if auth == "" {
		auth = s.uploadAuth
	}
	if auth == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法解析上传内容", "details": err.Error()})
		return
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少文件字段 file"})
		return
	}

	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取文件", "details": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取文件", "details": err.Error()})
			return
		}
		files = append(files, media.File{Name: fh.Filename, Data: data})
	}

	results := s.uploader.UploadAll(ctx, auth, files)
	for _, r := range results {
		if r.Error != "" {
			uploadsTotal.WithLabelValues("failure").Inc()
		} else {
			uploadsTotal.WithLabelValues("success").Inc()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) handleRender(c *gin.Context) {
	var req renderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误", "details": err.Error()})
		return
	}
	nodes, html, err := resolveAndRender(req.Content, generator.Request{SceneMedia: req.Live, Quotes: req.Quote})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, renderResp{Nodes: nodes, HTML: html})
}

func (s *Server) handleHistoryList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.store.List()})
}

func (s *Server) handleHistoryGet(c *gin.Context) {
	entry, ok := s.lookup(c)
	if !ok {
		return
	}
	nodes, html, err := resolveAndRender(entry.Result.Content, entry.Request)
	if err != nil {
		logging.From(c.Request.Context()).Warn("render failed", "error", err, "id", entry.ID)
	}
	c.JSON(http.StatusOK, entryResp{Entry: entry, Nodes: nodes, HTML: html})
}

func (s *Server) handleHistoryRemove(c *gin.Context) {
	entries := s.store.Remove(c.Request.Context(), c.Param("id"))
	historyEntries.Set(float64(len(entries)))
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) handleHistoryClear(c *gin.Context) {
	s.store.Clear(c.Request.Context())
	historyEntries.Set(float64(s.store.Len()))
	c.JSON(http.StatusOK, gin.H{"entries": s.store.List()})
}

func (s *Server) handleHistoryExport(c *gin.Context) {
	entry, ok := s.lookup(c)
	if !ok {
		return
	}

	var (
		body  []byte
		ctype string
		ext   string
	)
	switch format := c.DefaultQuery("format", "txt"); format {
	case "txt":
		body, ctype, ext = render.PlainText(entry.Result), "text/plain; charset=utf-8", "txt"
	case "html":
		doc, err := render.Document(c.Request.Context(), entry.Result, render.BuildMediaMap(entry.Request), s.fetcher)
		if err != nil {
			logging.From(c.Request.Context()).Error("export failed", "error", err, "id", entry.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败", "details": err.Error()})
			return
		}
		body, ctype, ext = doc, "text/html; charset=utf-8", "html"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported export format", "format": format})
		return
	}

	name := render.ExportFileName(s.now(), ext)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, ctype, body)
}

func (s *Server) lookup(c *gin.Context) (history.Entry, bool) {
	id := c.Param("id")
	entry, ok := s.store.Get(id)
	if !ok {
		err := goerr.New("history entry not found", goerr.V("id", id), goerr.T(apperr.TagNotFound))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": "未找到该历史记录"})
		return history.Entry{}, false
	}
	return entry, true
}

func resolveAndRender(content string, req generator.Request) ([]render.Node, string, error) {
	nodes := render.Resolve(content, render.BuildMediaMap(req))
	html, err := render.HTML(nodes)
	return nodes, html, err
}

func outcome(err error) string {
	switch {
	case apperr.IsInvalid(err):
		return "invalid"
	case apperr.IsUpstream(err):
		return "upstream_error"
	case apperr.IsConfig(err):
		return "config_error"
	case apperr.IsTransport(err):
		return "transport_error"
	case apperr.IsPayload(err):
		return "payload_error"
	default:
		return "error"
	}
}
