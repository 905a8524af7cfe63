package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"microblog/backend/internal/database"
	"microblog/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// PostInput defines the fields of the post form.
type PostInput struct {
	Content string `form:"content" json:"content" example:"hello"`
}

// PostResponse defines the structure for a post with its engagement data.
type PostResponse struct {
	ID        uint      `json:"id" example:"1"`
	Author    string    `json:"author" example:"alice"`
	Content   string    `json:"content" example:"hello"`
	CreatedAt time.Time `json:"created_at"`
	LikeCount int64     `json:"like_count"`
	Liked     bool      `json:"liked"`
}

// endregion

// region --- Post Handlers ---

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a post for the authenticated user and redirects home. Content must be non-empty and at most 140 characters.
// @Tags         posts
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        content formData string true "Post content"
// @Success      302
// @Success      200  {object}  ValidationErrorResponse "Field errors"
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID := currentUserID(c)

	var input PostInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if fieldErrors := validatePostContent(input.Content); len(fieldErrors) > 0 {
		c.JSON(http.StatusOK, ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	post := models.Post{UserID: viewerID, Content: input.Content}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// ListPosts godoc
// @Summary      List posts
// @Description  Returns all posts newest first, each annotated with its like count and whether the viewer has liked it.
// @Tags         posts
// @Produce      json
// @Success      200  {array}   PostResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [get]
func ListPosts(c *gin.Context) {
	viewerID := currentUserID(c)

	var posts []models.Post
	if err := database.DB.Preload("User").
		Order("created_at DESC, id DESC").
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	c.JSON(http.StatusOK, buildPostResponses(c, posts, viewerID))
}

// GetPost godoc
// @Summary      Get a post
// @Description  Returns a single post with its like count and the viewer's liked flag.
// @Tags         posts
// @Produce      json
// @Param        id path int true "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func GetPost(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := findPostByID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, buildPostResponse(c, post, viewerID))
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Deletes a post owned by the authenticated user and redirects home.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Post ID"
// @Success      302
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Not the author"
// @Failure      404  {object}  ErrorResponse "Post not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /posts/{id}/delete [post]
func DeletePost(c *gin.Context) {
	viewerID := currentUserID(c)

	post, ok := findPostByID(c)
	if !ok {
		return
	}

	if post.UserID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete another user's post."})
		return
	}

	if err := database.DB.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// endregion

// region --- Helpers ---

// validatePostContent enforces the non-empty and 140-character rules. The
// too-long message names the submitted length.
func validatePostContent(content string) map[string][]string {
	fieldErrors := map[string][]string{}

	if strings.TrimSpace(content) == "" {
		fieldErrors["content"] = append(fieldErrors["content"], "This field is required.")
		return fieldErrors
	}

	if length := utf8.RuneCountInString(content); length > models.MaxPostLength {
		fieldErrors["content"] = append(fieldErrors["content"],
			fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", models.MaxPostLength, length))
	}

	return fieldErrors
}

// findPostByID resolves the :id route parameter, writing a 400 or 404
// response itself when the post cannot be loaded.
func findPostByID(c *gin.Context) (models.Post, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return models.Post{}, false
	}

	var post models.Post
	if err := database.DB.Preload("User").First(&post, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return models.Post{}, false
	}

	return post, true
}

func buildPostResponse(c *gin.Context, post models.Post, viewerID uint) PostResponse {
	liked := false
	if viewerID != 0 {
		var count int64
		database.DB.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", post.ID, viewerID).Count(&count)
		liked = count > 0
	}

	return PostResponse{
		ID:        post.ID,
		Author:    post.User.Username,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		LikeCount: likeCount(c, post.ID),
		Liked:     liked,
	}
}

func buildPostResponses(c *gin.Context, posts []models.Post, viewerID uint) []PostResponse {
	responses := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, buildPostResponse(c, post, viewerID))
	}
	return responses
}

// endregion
