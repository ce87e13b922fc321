package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePost handles POST /api/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	var req struct {
		Image   string `json:"image" binding:"required"`
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid post: image is required")
		return
	}

	post := models.Post{
		UserID:  caller.ID,
		Image:   req.Image,
		Caption: req.Caption,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		logger.Log.Error("Failed to create post", logger.WithUserID(caller.ID), zap.Error(err))
		util.RespondInternalError(c, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPosts handles GET /api/posts. An optional ?userId= filters to one
// author; ?feed=true restricts to followed users.
func (h *Handlers) ListPosts(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	query := database.DB.Model(&models.Post{}).Order("posts.created_at DESC")

	if rawID := c.Query("userId"); rawID != "" {
		query = query.Where("posts.user_id = ?", rawID)
	} else if c.Query("feed") == "true" {
		query = query.Where(
			"posts.user_id IN (?)",
			database.DB.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", caller.ID),
		)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		logger.Log.Error("Failed to list posts", zap.Error(err))
		util.RespondInternalError(c, "failed to list posts")
		return
	}

	out := make([]models.PostWithDetails, 0, len(posts))
	for _, p := range posts {
		detail := models.PostWithDetails{Post: p}

		database.DB.First(&detail.User, p.UserID)
		database.DB.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&detail.LikesCount)
		database.DB.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&detail.CommentsCount)

		var liked int64
		database.DB.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", p.ID, caller.ID).
			Count(&liked)
		detail.IsLiked = liked > 0

		out = append(out, detail)
	}

	c.JSON(http.StatusOK, out)
}

// DeletePost handles DELETE /api/posts/:id. Owner or admin only.
func (h *Handlers) DeletePost(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "post")
			return
		}
		util.RespondInternalError(c, "failed to load post")
		return
	}

	if post.UserID != caller.ID && !caller.IsAdmin() {
		util.RespondForbidden(c, "cannot delete another user's post")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
	if err != nil {
		logger.Log.Error("Failed to delete post", zap.Uint("post_id", postID), zap.Error(err))
		util.RespondInternalError(c, "failed to delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// LikePost handles POST /api/posts/:id/like as a toggle
func (h *Handlers) LikePost(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var existing models.Like
	err := database.DB.
		Where("user_id = ? AND post_id = ?", caller.ID, postID).
		First(&existing).Error

	if err == nil {
		if err := database.DB.
			Where("user_id = ? AND post_id = ?", caller.ID, postID).
			Delete(&models.Like{}).Error; err != nil {
			util.RespondInternalError(c, "failed to unlike post")
			return
		}
		c.JSON(http.StatusOK, gin.H{"liked": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "failed to check like state")
		return
	}

	like := models.Like{UserID: caller.ID, PostID: postID}
	if err := database.DB.Create(&like).Error; err != nil {
		util.RespondInternalError(c, "failed to like post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}
