package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arung-agamani/audiocontrold/internal/auth"
)

// handleEvents streams PlayerEvent JSON as Server-Sent Events. Each
// connection gets its own bus subscription; disconnecting (client gone, or
// request context cancelled) unsubscribes, closing the worker's channel
// range loop the same way a plugin's BaseActionPlugin does.
func (s *Server) handleEvents(c *gin.Context) {
	id, ch := s.ctrl.Bus.SubscribeAll()
	clientIP := c.ClientIP()
	slog.Info("event stream client connected", "ip", clientIP)
	defer func() {
		s.ctrl.Bus.Unsubscribe(id)
		slog.Info("event stream client disconnected", "ip", clientIP)
	}()

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	ctx := c.Request.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Warn("event stream: failed to marshal event", "error", err)
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin exchanges a username/password for a bearer token, the only
// way a caller can obtain one to use against the guarded control endpoints.
// Unguarded by design — it's the credential check itself.
func (s *Server) handleLogin(c *gin.Context) {
	if s.auth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "auth not configured"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	if s.auth.IsRateLimited(c.Request.RemoteAddr) {
		remaining := s.auth.RemainingLockout(c.Request.RemoteAddr)
		c.Header("Retry-After", strconv.Itoa(int(remaining.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": "too many login attempts"})
		return
	}

	token, err := s.auth.Authenticate(req.Username, req.Password, c.Request.RemoteAddr)
	if err != nil {
		if errors.Is(err, auth.ErrRateLimited) {
			remaining := s.auth.RemainingLockout(c.Request.RemoteAddr)
			c.Header("Retry-After", strconv.Itoa(int(remaining.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{"status": "error", "error": "too many login attempts"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "token": token})
}

type setActivePlayerRequest struct {
	Index int `json:"index"`
}

// handleSetActivePlayer promotes the controller at the given registry index
// to active, the HTTP-side counterpart of the active-monitor plugin's
// automatic promotion.
func (s *Server) handleSetActivePlayer(c *gin.Context) {
	var req setActivePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}

	ok := s.ctrl.Registry.SetActiveController(req.Index)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "index out of range or already active"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
