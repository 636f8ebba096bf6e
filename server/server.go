package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ai_news_generator/generator"
	"ai_news_generator/history"
	"ai_news_generator/logging"
	"ai_news_generator/media"
	"ai_news_generator/render"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/goerr/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed web
var embeddedStatic embed.FS

const defaultMaxUploadSize = 20 << 20

// Deps 是服务运行所需的依赖；Fetcher 为空时导出文档不内嵌图片。
type Deps struct {
	Agent    *generator.Agent
	Store    *history.Store
	Uploader *media.Uploader
	Fetcher  render.Fetcher
	// UploadAuth 是请求未带 Authorization 头时使用的凭据。
	UploadAuth    string
	MaxUploadSize int64
	Logger        *slog.Logger
}

type Server struct {
	agent         *generator.Agent
	store         *history.Store
	uploader      *media.Uploader
	fetcher       render.Fetcher
	uploadAuth    string
	maxUploadSize int64
	logger        *slog.Logger
	staticFS      http.Handler
	now           func() time.Time
}

func New(d Deps) (*Server, error) {
	if d.Agent == nil {
		return nil, goerr.New("generator agent required")
	}
	if d.Store == nil {
		return nil, goerr.New("history store required")
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	s := &Server{
		agent:         d.Agent,
		store:         d.Store,
		uploader:      d.Uploader,
		fetcher:       d.Fetcher,
		uploadAuth:    d.UploadAuth,
		maxUploadSize: d.MaxUploadSize,
		logger:        d.Logger,
		staticFS:      http.FileServer(http.FS(sub)),
		now:           time.Now,
	}
	if s.maxUploadSize <= 0 {
		s.maxUploadSize = defaultMaxUploadSize
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	historyEntries.Set(float64(s.store.Len()))
	return s, nil
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(recovery(), requestID(s.logger), corsMiddleware(), accessLog(), metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/generate-news", s.handleGenerate)
	api.POST("/upload-file", s.handleUpload)
	api.POST("/render", s.handleRender)

	h := api.Group("/history")
	h.GET("", s.handleHistoryList)
	h.DELETE("", s.handleHistoryClear)
	h.GET("/:id", s.handleHistoryGet)
	h.DELETE("/:id", s.handleHistoryRemove)
	h.GET("/:id/export", s.handleHistoryExport)

	r.NoRoute(s.handleStatic)
	return r
}

func (s *Server) handleStatic(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
		return
	}
	s.staticFS.ServeHTTP(c.Writer, c.Request)
}
