package server

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/internal/apperr"
)

// mountStatic serves the compiled frontend from the configured directory.
// Unknown /api paths always answer with a JSON 404.
func (s *Server) mountStatic() {
	indexPath := s.findIndex()
	s.engine.NoRoute(func(c *gin.Context) {
		if indexPath == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			s.respondError(c, apperr.NotFound("endpoint not found"))
			return
		}
		c.File(indexPath)
	})
	if indexPath == "" {
		return
	}
	s.engine.GET("/", func(c *gin.Context) {
		c.File(indexPath)
	})

	assetsDir := filepath.Join(s.staticDir, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		s.engine.StaticFS("/assets", gin.Dir(assetsDir, false))
	}

	favicon := filepath.Join(s.staticDir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

func (s *Server) findIndex() string {
	if s.staticDir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		return ""
	}
	info, err := os.Stat(s.staticDir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing; API only mode", "path", s.staticDir, "error", err)
		return ""
	}
	indexPath := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		return ""
	}
	return indexPath
}
