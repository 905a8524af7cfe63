package handler

import (
	"errors"
	"net/http"

	"microblog/backend/internal/database"
	"microblog/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// A duplicate follow is a conflict, not a hard failure; it maps to a 200
// warning response.
var errAlreadyFollowing = errors.New("already following")

// Follow godoc
// @Summary      Follow a user
// @Description  Creates a follow edge from the viewer to the target and redirects home. Following someone twice is reported as a warning, not a failure.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "Target username"
// @Success      302
// @Success      200  {object}  map[string]string "{"warning": "..."} when already following"
// @Failure      400  {object}  ErrorResponse "Self-follow"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{username}/follow [post]
func Follow(c *gin.Context) {
	viewerID := currentUserID(c)

	target, ok := findUserByUsername(c)
	if !ok {
		return
	}

	if target.ID == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself."})
		return
	}

	// Check and insert in one transaction; a concurrent duplicate insert is
	// caught by the composite primary key and reported the same way.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.FollowEdge{}).
			Where("follower_id = ? AND followed_id = ?", viewerID, target.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyFollowing
		}
		return tx.Create(&models.FollowEdge{FollowerID: viewerID, FollowedID: target.ID}).Error
	})

	switch {
	case errors.Is(err, errAlreadyFollowing) || errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusOK, gin.H{"warning": "You are already following " + target.Username + "."})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
	default:
		c.Redirect(http.StatusFound, "/home")
	}
}

// Unfollow godoc
// @Summary      Unfollow a user
// @Description  Removes the follow edge from the viewer to the target and redirects home. Unfollowing someone you don't follow is reported as a warning.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "Target username"
// @Success      302
// @Success      200  {object}  map[string]string "{"warning": "..."} when not following"
// @Failure      400  {object}  ErrorResponse "Self-unfollow"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{username}/unfollow [post]
func Unfollow(c *gin.Context) {
	viewerID := currentUserID(c)

	target, ok := findUserByUsername(c)
	if !ok {
		return
	}

	if target.ID == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot unfollow yourself."})
		return
	}

	result := database.DB.
		Where("follower_id = ? AND followed_id = ?", viewerID, target.ID).
		Delete(&models.FollowEdge{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{"warning": "You are not following " + target.Username + "."})
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// Followers godoc
// @Summary      List a user's followers
// @Description  Returns the accounts following this user, most recent follow first.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "Username"
// @Success      200  {array}   UserSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username}/followers [get]
func Followers(c *gin.Context) {
	user, ok := findUserByUsername(c)
	if !ok {
		return
	}

	var edges []models.FollowEdge
	if err := database.DB.Preload("Follower").
		Where("followed_id = ?", user.ID).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve followers"})
		return
	}

	summaries := make([]UserSummary, 0, len(edges))
	for _, edge := range edges {
		followedAt := edge.CreatedAt
		summaries = append(summaries, UserSummary{
			ID:         edge.Follower.ID,
			Username:   edge.Follower.Username,
			FollowedAt: &followedAt,
		})
	}

	c.JSON(http.StatusOK, summaries)
}

// Following godoc
// @Summary      List who a user follows
// @Description  Returns the accounts this user follows, most recent follow first.
// @Tags         follows
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "Username"
// @Success      200  {array}   UserSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username}/following [get]
func Following(c *gin.Context) {
	user, ok := findUserByUsername(c)
	if !ok {
		return
	}

	var edges []models.FollowEdge
	if err := database.DB.Preload("Followed").
		Where("follower_id = ?", user.ID).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve followed users"})
		return
	}

	summaries := make([]UserSummary, 0, len(edges))
	for _, edge := range edges {
		followedAt := edge.CreatedAt
		summaries = append(summaries, UserSummary{
			ID:         edge.Followed.ID,
			Username:   edge.Followed.Username,
			FollowedAt: &followedAt,
		})
	}

	c.JSON(http.StatusOK, summaries)
}
