// Package status 提供机器人进程的健康检查、Prometheus 指标与运行状态接口
package status

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tokmz/guilded/pkg/logger"
)

// Server 基于 gin 的状态服务
type Server struct {
	config *Config
	engine *gin.Engine
	log    logger.Logger

	mu     sync.Mutex
	server *http.Server
}

// New 创建状态服务
func New(opts ...Option) *Server {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	// gin.SetMode 是全局操作，只在仍为默认模式时设置
	if gin.Mode() == gin.DebugMode || cfg.Mode != gin.DebugMode {
		gin.SetMode(cfg.Mode)
	}
	silenceGin()

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.Tracing {
		engine.Use(tracing())
	}
	engine.Use(requestLogger(cfg.Logger))

	s := &Server{
		config: cfg,
		engine: engine,
		log:    cfg.Logger.Named("status"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/stats", s.stats)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{})))
	s.engine.NoRoute(func(c *gin.Context) {
		respond(c, http.StatusNotFound, Fail(http.StatusNotFound, "not found"))
	})
}

func (s *Server) health(c *gin.Context) {
	if s.config.Health != nil {
		if err := s.config.Health(); err != nil {
			respond(c, http.StatusServiceUnavailable, Fail(http.StatusServiceUnavailable, err.Error()))
			return
		}
	}
	respond(c, http.StatusOK, Success(gin.H{"status": "ok"}))
}

func (s *Server) stats(c *gin.Context) {
	var data any
	if s.config.Stats != nil {
		data = s.config.Stats()
	}
	respond(c, http.StatusOK, Success(data))
}

// Handler 返回 http.Handler，便于嵌入其他服务或测试
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run 监听并服务，ctx 取消后优雅关机
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定 listener 上服务，ctx 取消后优雅关机
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	s.log.Info("status server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("status server forced to close", zap.Error(err))
		return err
	}
	s.log.Info("status server stopped")
	return nil
}

// Shutdown 手动关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// silenceGin 静默 gin 的默认输出，由 logger 统一记录
func silenceGin() {
	gin.DefaultWriter = io.Discard
	gin.DefaultErrorWriter = io.Discard
}
