package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListComments handles GET /api/posts/:id/comments
func (h *Handlers) ListComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var comments []models.Comment
	err := database.DB.
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		logger.Log.Error("Failed to list comments", zap.Uint("post_id", postID), zap.Error(err))
		util.RespondInternalError(c, "failed to list comments")
		return
	}

	out := make([]models.CommentWithUser, 0, len(comments))
	for _, cm := range comments {
		detail := models.CommentWithUser{Comment: cm}
		database.DB.First(&detail.User, cm.UserID)
		out = append(out, detail)
	}

	c.JSON(http.StatusOK, out)
}

// CreateComment handles POST /api/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		util.RespondBadRequest(c, "comment content is required")
		return
	}

	var post models.Post
	if err := database.DB.First(&post, postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	comment := models.Comment{
		UserID:  caller.ID,
		PostID:  postID,
		Content: req.Content,
	}
	if err := database.DB.Create(&comment).Error; err != nil {
		logger.Log.Error("Failed to create comment", zap.Uint("post_id", postID), zap.Error(err))
		util.RespondInternalError(c, "failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, models.CommentWithUser{Comment: comment, User: *caller})
}

// DeleteComment handles DELETE /api/comments/:id. Author, post owner or
// admin may delete.
func (h *Handlers) DeleteComment(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	commentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "comment")
			return
		}
		util.RespondInternalError(c, "failed to load comment")
		return
	}

	allowed := comment.UserID == caller.ID || caller.IsAdmin()
	if !allowed {
		var post models.Post
		if err := database.DB.First(&post, comment.PostID).Error; err == nil {
			allowed = post.UserID == caller.ID
		}
	}
	if !allowed {
		util.RespondForbidden(c, "cannot delete this comment")
		return
	}

	if err := database.DB.Delete(&models.Comment{}, commentID).Error; err != nil {
		util.RespondInternalError(c, "failed to delete comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
