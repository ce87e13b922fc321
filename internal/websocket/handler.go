package websocket

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/auth"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/models"
	"go.uber.org/zap"
)

var errMissingToken = errors.New("no authentication token provided")

// Handler upgrades HTTP requests to live connections.
// Authentication happens before the upgrade: a request with no valid token
// is rejected with 401 and never reaches the hub.
type Handler struct {
	hub    *Hub
	router *Router
	auth   *auth.Service
}

// NewHandler creates a websocket handler
func NewHandler(hub *Hub, router *Router, authService *auth.Service) *Handler {
	return &Handler{
		hub:    hub,
		router: router,
		auth:   authService,
	}
}

// HandleWebSocket authenticates and upgrades a connection, then runs its
// pumps until it drops. The token comes from the ?token= query param or the
// Authorization header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticateRequest(c)
	if err != nil {
		logger.Log.Warn("Connection auth failed",
			logger.WithIP(c.ClientIP()), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": "invalid or missing token",
		})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.Log.Warn("Connection upgrade failed",
			logger.WithUserID(user.ID), zap.Error(err))
		return
	}

	client := NewClient(h.hub, h.router, conn, user.ID)
	h.hub.Register(client)

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// authenticateRequest extracts and validates the token before the upgrade
func (h *Handler) authenticateRequest(c *gin.Context) (*models.User, error) {
	tokenString := c.Query("token")

	if header := c.GetHeader("Authorization"); header != "" {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}

	if tokenString == "" {
		return nil, errMissingToken
	}

	return h.auth.ValidateToken(tokenString)
}

// HandleOnlineUsers returns the ids of everyone currently connected
func (h *Handler) HandleOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"userIds":   h.hub.Snapshot(),
		"timestamp": time.Now().UTC(),
	})
}

// Shutdown closes all live sessions
func (h *Handler) Shutdown() {
	h.hub.Shutdown()
}
