// Package handlers implements the REST API.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/auth"
	"github.com/sanojDD/Balentine/internal/middleware"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/repository"
	"github.com/sanojDD/Balentine/internal/websocket"
)

// Handlers bundles the services the REST endpoints depend on
type Handlers struct {
	auth   *auth.Service
	hub    *websocket.Hub
	router *websocket.Router
	store  repository.MessageStore
}

// New creates the handler set
func New(authService *auth.Service, hub *websocket.Hub, router *websocket.Router, store repository.MessageStore) *Handlers {
	return &Handlers{
		auth:   authService,
		hub:    hub,
		router: router,
		store:  store,
	}
}

// currentUser returns the authenticated user placed on the context by the
// auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	return middleware.CurrentUser(c)
}

// presenceStatus maps hub membership to the wire status strings
func (h *Handlers) presenceStatus(userID uint) string {
	if h.hub.IsOnline(userID) {
		return websocket.StatusOnline
	}
	return websocket.StatusOffline
}
