// Package debugserver 为生成会话提供只读的 HTTP 调试接口
package debugserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/decker502/wavespawn/pkg/game"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusSource 提供会话状态快照，*game.Session 满足该接口
type StatusSource interface {
	Status() game.SessionStatus
}

// Server 调试 HTTP 服务器
//
// 端点：
//   - GET /health  存活检查
//   - GET /status  会话状态（波次、生成进度、表现历史）
//   - GET /metrics Prometheus 指标
type Server struct {
	router *gin.Engine
	server *http.Server
	source StatusSource
}

// New 创建调试服务器
// gatherer 为会话指标所在的注册表
func New(addr string, source StatusSource, gatherer prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router: router,
		source: source,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}

	router.GET("/health", s.healthHandler)
	router.GET("/status", s.statusHandler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) statusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Status())
}

// Handler 返回路由，测试中直接配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 开始监听，阻塞直到服务器关闭
func (s *Server) Start() error {
	log.Printf("[DebugServer] Listening on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[DebugServer] Shutting down")
	return s.server.Shutdown(ctx)
}
