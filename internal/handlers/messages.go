package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/repository"
	"github.com/sanojDD/Balentine/internal/util"
	"go.uber.org/zap"
)

// GetMessages handles GET /api/messages/:userId and returns the full
// conversation between the caller and the other user, oldest first.
func (h *Handlers) GetMessages(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	otherID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	messages, err := h.store.History(c.Request.Context(), caller.ID, otherID)
	if err != nil {
		logger.Log.Error("Failed to load message history",
			logger.WithUserID(caller.ID),
			zap.Uint("other_id", otherID),
			zap.Error(err),
		)
		util.RespondInternalError(c, "failed to load messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

// DeleteMessage handles DELETE /api/messages/:id. Only the sender may delete
// a message; the receiver's live session gets a messageDeleted event so open
// conversations stay in sync.
func (h *Handlers) DeleteMessage(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	messageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	msg, err := h.store.GetByID(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			util.RespondNotFound(c, "message")
			return
		}
		util.RespondInternalError(c, "failed to load message")
		return
	}

	if msg.SenderID != caller.ID {
		util.RespondForbidden(c, "only the sender can delete a message")
		return
	}

	if err := h.store.DeleteByID(c.Request.Context(), messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			util.RespondNotFound(c, "message")
			return
		}
		logger.Log.Error("Failed to delete message",
			zap.Uint("message_id", messageID), zap.Error(err))
		util.RespondInternalError(c, "failed to delete message")
		return
	}

	h.router.NotifyDeleted(msg.ReceiverID, messageID)

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
