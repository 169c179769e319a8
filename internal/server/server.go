// Package server assembles the gin router, owns the HTTP listener
// lifecycle, and hosts the embedded front-end.
package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/handler"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/watcher"
	"go.uber.org/zap"
)

//go:embed web/*
var webFS embed.FS

const shutdownTimeout = 5 * time.Second

// Server hosts the HTTP side of codehub. The listener is bound explicitly
// via Listen so a port conflict surfaces before any scan or export work;
// Serve then runs until the context is cancelled or Stop is called and
// releases the listener on the way out.
type Server struct {
	cfg    *config.Config
	root   string
	logger *zap.Logger
	engine *gin.Engine
	w      *watcher.Watcher

	ln       net.Listener
	ready    chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New builds the interactive server: JSON API, websocket live reload, and
// the embedded page shell populated with scan results.
func New(root string, rules *ignore.RuleSet, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		root:   root,
		logger: logger,
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}

	shell, err := webFS.ReadFile("web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load page shell: %w", err)
	}

	api := handler.NewAPI(root, rules, cfg, logger, s.Stop)
	wsHandler := handler.NewWSHandler()

	if cfg.Watch {
		w, err := watcher.New(root, cfg, logger)
		if err != nil {
			logger.Warn("failed to create file watcher", zap.Error(err))
		} else {
			w.OnChange(wsHandler.OnFileChange)
			if err := w.Start(); err != nil {
				logger.Warn("failed to start file watcher", zap.Error(err))
			} else {
				s.w = w
				logger.Info("file watcher enabled")
			}
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", api.GetPing)
		apiGroup.GET("/meta", api.GetMeta)
		apiGroup.GET("/files", api.GetFiles)
		apiGroup.GET("/raw/*path", api.GetRaw)
		apiGroup.GET("/render/*path", api.GetRender)
		apiGroup.GET("/ws", wsHandler.HandleWS)
		apiGroup.POST("/refresh", api.PostRefresh)
		apiGroup.POST("/shutdown", api.PostShutdown)
	}

	index := api.GetIndex(shell)
	r.GET("/", index)
	r.GET("/index.html", index)

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("failed to load web assets: %w", err)
	}
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(webContent))))

	s.engine = r
	return s, nil
}

// NewStatic builds the hosting server for monolithic mode: a plain file
// server over the root so the generated index.html is served as-is.
func NewStatic(root string, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		root:   root,
		logger: logger,
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(root))))

	s.engine = r
	return s
}

// Listen binds the configured address. A port already in use is reported
// as a configuration error before any other work happens.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use or cannot be bound (choose a different port with -p): %w", s.cfg.Port, err)
	}
	s.ln = ln
	return nil
}

// URL returns the address the server answers on. Valid after Listen.
func (s *Server) URL() string {
	if s.ln == nil {
		return fmt.Sprintf("http://%s:%d/", s.cfg.Host, s.cfg.Port)
	}
	return fmt.Sprintf("http://%s/", s.ln.Addr().String())
}

// Ready is closed once the server is accepting connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Stop signals a graceful shutdown. Safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Serve runs the HTTP server on the bound listener until the context is
// cancelled or Stop is called, then shuts down gracefully: in-flight
// requests get shutdownTimeout to finish and the listener is released
// before Serve returns.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	httpSrv := &http.Server{Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(s.ln)
	}()
	close(s.ready)

	if s.cfg.Open {
		go openBrowser(s.URL())
	}

	select {
	case <-ctx.Done():
	case <-s.stopCh:
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	s.logger.Info("shutting down")
	if s.w != nil {
		if err := s.w.Stop(); err != nil {
			s.logger.Warn("failed to stop watcher", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown incomplete", zap.Error(err))
		_ = httpSrv.Close()
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default: // linux, etc.
		cmd = "xdg-open"
		args = []string{url}
	}

	_ = exec.Command(cmd, args...).Start()
}
