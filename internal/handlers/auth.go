package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/auth"
	apierrors "github.com/sanojDD/Balentine/internal/errors"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/util"
	"go.uber.org/zap"
)

// Signup handles POST /api/auth/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid signup request: "+err.Error())
		return
	}

	resp, err := h.auth.Register(req)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			util.RespondWithAPIError(c, apierrors.Conflict("username"))
			return
		}
		logger.Log.Error("Signup failed", zap.Error(err))
		util.RespondInternalError(c, "failed to create account")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid login request: "+err.Error())
		return
	}

	resp, err := h.auth.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			util.RespondUnauthorized(c, "invalid username or password")
		case errors.Is(err, auth.ErrUserBanned):
			util.RespondForbidden(c, "account is banned")
		default:
			logger.Log.Error("Login failed", zap.Error(err))
			util.RespondInternalError(c, "failed to log in")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}
	c.JSON(http.StatusOK, user)
}
