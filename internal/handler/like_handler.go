package handler

import (
	"errors"
	"net/http"

	"microblog/backend/internal/cache"
	"microblog/backend/internal/database"
	"microblog/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LikeResponse reports the post's like state after a like or unlike, in the
// shape the asynchronous client-side updater consumes.
type LikeResponse struct {
	PostID    uint  `json:"post_id" example:"1"`
	LikeCount int64 `json:"like_count" example:"3"`
	Liked     bool  `json:"liked"`
}

// LikePost godoc
// @Summary      Like a post
// @Description  Marks the post as liked by the viewer. Liking an already-liked post is a no-op that still reports the current count.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  LikeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id}/like [post]
func LikePost(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := findPostByID(c)
	if !ok {
		return
	}

	// Check and insert in one transaction; when a concurrent request wins
	// the race the composite primary key rejects the second insert, which is
	// the same no-op as an existing like.
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&models.Like{PostID: post.ID, UserID: viewerID}).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	cache.Likes.Invalidate(c.Request.Context(), post.ID)

	c.JSON(http.StatusOK, LikeResponse{
		PostID:    post.ID,
		LikeCount: likeCount(c, post.ID),
		Liked:     true,
	})
}

// UnlikePost godoc
// @Summary      Unlike a post
// @Description  Removes the viewer's like from the post. Unliking a post that isn't liked is a no-op that still reports the current count.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      200  {object}  LikeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id}/unlike [post]
func UnlikePost(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := findPostByID(c)
	if !ok {
		return
	}

	// Deleting a like that doesn't exist affects zero rows, which is exactly
	// the idempotent no-op the client expects.
	result := database.DB.
		Where("post_id = ? AND user_id = ?", post.ID, viewerID).
		Delete(&models.Like{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}

	cache.Likes.Invalidate(c.Request.Context(), post.ID)

	c.JSON(http.StatusOK, LikeResponse{
		PostID:    post.ID,
		LikeCount: likeCount(c, post.ID),
		Liked:     false,
	})
}

// likeCount returns the post's like count, served from the Redis cache when
// it is configured and warm.
func likeCount(c *gin.Context, postID uint) int64 {
	ctx := c.Request.Context()

	if n, hit, err := cache.Likes.Get(ctx, postID); err == nil && hit {
		return n
	}

	var n int64
	database.DB.Model(&models.Like{}).Where("post_id = ?", postID).Count(&n)
	cache.Likes.Set(ctx, postID, n)
	return n
}
