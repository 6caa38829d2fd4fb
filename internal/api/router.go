// Package api exposes the daemon's minimal HTTP push/control surface: a
// health check, an SSE event stream, and two bearer-guarded control
// endpoints. It deliberately does not attempt to be a full REST API —
// just enough for an HTTP-side consumer of the event bus to exist and for
// the active-player/catalog state to be inspectable from outside the
// process.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/audiocontrold/internal/audiocontrol"
	"github.com/arung-agamani/audiocontrold/internal/auth"
	"github.com/arung-agamani/audiocontrold/internal/catalog"
)

// Server wires the gin engine to the audio controller and catalog it
// serves.
type Server struct {
	engine  *gin.Engine
	ctrl    *audiocontrol.Controller
	catalog *catalog.Catalog
	auth    *auth.Auth
}

// New builds a Server. auth may be nil, in which case the two control
// endpoints are unguarded — useful for local development and tests, never
// for a real deployment.
func New(ctrl *audiocontrol.Controller, cat *catalog.Catalog, a *auth.Auth) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, ctrl: ctrl, catalog: cat, auth: a}
	s.routes()
	return s
}

// Handler returns the http.Handler to pass to an http.Server.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/events", s.handleEvents)
	s.engine.POST("/auth/login", s.handleLogin)

	guarded := s.engine.Group("/")
	guarded.Use(s.requireBearer())
	guarded.POST("/control/active-player", s.handleSetActivePlayer)
	guarded.GET("/catalog/snapshot", s.handleCatalogSnapshot)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCatalogSnapshot(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	data, err := s.catalog.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "failed to render snapshot"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// requireBearer adapts internal/auth's bearer-token check to a gin
// middleware.
func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.auth == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "authentication required"})
			return
		}

		token := header[len(prefix):]
		if _, err := s.auth.ValidateToken(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid or expired token"})
			return
		}

		c.Next()
	}
}
