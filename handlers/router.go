package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the protocol endpoint, the API and the static client bundle.
func NewRouter(staticDir string, rooms *RoomHandler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(log), gin.Recovery())

	router.GET("/ws", rooms.ServeWS)

	api := router.Group("/api")
	{
		api.GET("/health", rooms.Health)
		api.GET("/sessions/:id", rooms.GetSession)
	}

	router.NoRoute(spaFallback(staticDir))
	return router
}

// spaFallback serves files from dir. Paths without an extension get
// index.html so client-side routes like /s/:id load the app.
func spaFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := path.Clean("/" + c.Request.URL.Path)
		if reqPath == "/ws" || reqPath == "/api" || strings.HasPrefix(reqPath, "/api/") {
			standardResponse(c, http.StatusNotFound, "error", nil, "Not Found")
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(reqPath))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}

		if path.Ext(reqPath) != "" {
			c.String(http.StatusNotFound, "Not Found")
			return
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "Not Found - index.html missing")
			return
		}
		c.File(index)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
