// Package handler provides the gin handlers for the codehub JSON API and
// the populated index page.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/export"
	mfs "github.com/jacobmentalconstruct/codehub/internal/fs"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/markdown"
	"github.com/jacobmentalconstruct/codehub/internal/scan"
	"go.uber.org/zap"
)

// API serves scan results over HTTP. Every request re-scans the root; no
// state survives between calls, so a refresh is always a full re-walk.
type API struct {
	root     string
	rules    *ignore.RuleSet
	cfg      *config.Config
	logger   *zap.Logger
	renderer *markdown.Renderer
	fsys     mfs.FileSystem
	stop     func()
}

// NewAPI creates the API handler. stop triggers a graceful server shutdown
// and may be nil when the shutdown endpoint is not wired.
func NewAPI(root string, rules *ignore.RuleSet, cfg *config.Config, logger *zap.Logger, stop func()) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		root:     root,
		rules:    rules,
		cfg:      cfg,
		logger:   logger,
		renderer: markdown.NewRenderer(),
		fsys:     mfs.NewLocalFS(root),
		stop:     stop,
	}
}

func (a *API) scan() (*scan.Result, error) {
	return scan.New(a.root, a.rules, a.cfg, a.logger).Scan()
}

// GetPing reports liveness.
func (a *API) GetPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": time.Now().Format(time.RFC3339),
	})
}

// GetMeta returns fresh scan metadata.
func (a *API) GetMeta(c *gin.Context) {
	res, err := a.scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res.Meta())
}

// GetFiles returns the fresh file list.
func (a *API) GetFiles(c *gin.Context) {
	res, err := a.scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.Files == nil {
		res.Files = []scan.FileRecord{}
	}
	c.JSON(http.StatusOK, res.Files)
}

// PostRefresh re-scans the root and, when reporting is enabled, rewrites
// the AI report.
func (a *API) PostRefresh(c *gin.Context) {
	res, err := a.scan()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if a.cfg.Report {
		if dest, err := export.WriteReport(a.root, res); err != nil {
			a.logger.Warn("failed to write AI report", zap.Error(err))
		} else {
			a.logger.Info("refreshed AI report", zap.String("path", dest))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"root":       a.root,
		"file_count": len(res.Files),
	})
}

// PostShutdown acknowledges and then triggers a graceful stop, so the
// response reaches the client before the listener closes.
func (a *API) PostShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
	if a.stop != nil {
		go a.stop()
	}
}

// resolve checks a request path for traversal and returns it relative to
// the root.
func (a *API) resolve(c *gin.Context) (string, bool) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	if rel == "" || strings.Contains(rel, "..") {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid path"})
		return "", false
	}
	return rel, true
}

// GetRaw returns the raw bytes of one file under the root.
func (a *API) GetRaw(c *gin.Context) {
	rel, ok := a.resolve(c)
	if !ok {
		return
	}

	info, err := a.fsys.Stat(rel)
	if err != nil || info.IsDir {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	content, err := a.fsys.ReadFile(rel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	c.Data(http.StatusOK, scan.MimeType(rel)+"; charset=utf-8", content)
}

// GetRender returns a server-rendered preview: markdown files become HTML,
// other text files get syntax-highlighted.
func (a *API) GetRender(c *gin.Context) {
	rel, ok := a.resolve(c)
	if !ok {
		return
	}

	if !scan.IsTextFile(rel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a text file"})
		return
	}

	content, err := a.fsys.ReadFile(rel)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	if markdown.IsMarkdown(rel) {
		result, err := a.renderer.Render(content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render markdown: " + err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"path":  rel,
			"kind":  "markdown",
			"html":  result.HTML,
			"title": result.Title,
		})
		return
	}

	highlighted, err := markdown.Highlight(rel, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to highlight: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path": rel,
		"kind": "code",
		"html": highlighted,
	})
}
