package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/database"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/models"
	"github.com/sanojDD/Balentine/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListUsers handles GET /api/users. Every user except the caller is returned
// with their live presence status merged in.
func (h *Handlers) ListUsers(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	var users []models.User
	if err := database.DB.Where("id <> ?", caller.ID).Order("username ASC").Find(&users).Error; err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		util.RespondInternalError(c, "failed to list users")
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, models.PublicUser{
			User:   u,
			Status: h.presenceStatus(u.ID),
		})
	}

	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /api/users/:id and returns a profile with social
// counters.
func (h *Handlers) GetUser(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "user")
			return
		}
		util.RespondInternalError(c, "failed to load user")
		return
	}

	var followers, following int64
	database.DB.Model(&models.Follow{}).Where("following_id = ?", user.ID).Count(&followers)
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", user.ID).Count(&following)

	var isFollowing int64
	database.DB.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", caller.ID, user.ID).
		Count(&isFollowing)

	c.JSON(http.StatusOK, models.UserProfile{
		User:           user,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing > 0,
		Status:         h.presenceStatus(user.ID),
	})
}

// UpdateUser handles PATCH /api/users/:id. Users can only edit themselves.
func (h *Handlers) UpdateUser(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if caller.ID != userID {
		util.RespondForbidden(c, "cannot edit another user's profile")
		return
	}

	var req struct {
		Bio            *string `json:"bio"`
		ProfilePicture *string `json:"profilePicture"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid update request")
		return
	}

	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		updates["profile_picture"] = *req.ProfilePicture
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		logger.Log.Error("Failed to update user", logger.WithUserID(userID), zap.Error(err))
		util.RespondInternalError(c, "failed to update profile")
		return
	}

	var updated models.User
	database.DB.First(&updated, userID)
	c.JSON(http.StatusOK, updated)
}

// DeleteUser handles DELETE /api/users/:id. Allowed for the user themselves
// or an admin. Deleting an account cascades through its content.
func (h *Handlers) DeleteUser(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if caller.ID != userID && !caller.IsAdmin() {
		util.RespondForbidden(c, "cannot delete another user's account")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		logger.Log.Error("Failed to delete user", logger.WithUserID(userID), zap.Error(err))
		util.RespondInternalError(c, "failed to delete account")
		return
	}

	// Kick any live session the deleted user still has
	if s, online := h.hub.Lookup(userID); online {
		h.hub.Unregister(userID, s.SessionID())
		s.Close()
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// BanUser handles PATCH /api/users/:id/ban (admin only). Banning flips the
// flag; the next token validation kicks the user out.
func (h *Handlers) BanUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid ban request")
		return
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_banned", req.Banned)
	if result.Error != nil {
		logger.Log.Error("Failed to update ban flag", logger.WithUserID(userID), zap.Error(result.Error))
		util.RespondInternalError(c, "failed to update ban status")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "user")
		return
	}

	if req.Banned {
		if s, online := h.hub.Lookup(userID); online {
			h.hub.Unregister(userID, s.SessionID())
			s.Close()
		}
	}

	c.JSON(http.StatusOK, gin.H{"id": userID, "isBanned": req.Banned})
}

// FollowUser handles POST /api/users/:id/follow as a toggle. Following an
// already-followed user unfollows them.
func (h *Handlers) FollowUser(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if caller.ID == targetID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	var existing models.Follow
	err := database.DB.
		Where("follower_id = ? AND following_id = ?", caller.ID, targetID).
		First(&existing).Error

	if err == nil {
		if err := database.DB.
			Where("follower_id = ? AND following_id = ?", caller.ID, targetID).
			Delete(&models.Follow{}).Error; err != nil {
			util.RespondInternalError(c, "failed to unfollow")
			return
		}
		c.JSON(http.StatusOK, gin.H{"following": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "failed to check follow state")
		return
	}

	follow := models.Follow{FollowerID: caller.ID, FollowingID: targetID}
	if err := database.DB.Create(&follow).Error; err != nil {
		util.RespondInternalError(c, "failed to follow")
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": true})
}

// parseIDParam parses a numeric path parameter, responding 400 on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		util.RespondBadRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
