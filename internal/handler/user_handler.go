package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"microblog/backend/internal/auth"
	"microblog/backend/internal/database"
	"microblog/backend/internal/models"
	"microblog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Session cookie lifetime matches the token expiry.
const sessionMaxAge = 7 * 24 * 60 * 60

const minPasswordLength = 8

// region --- DTOs ---

// SignUpInput defines the fields of the registration form.
type SignUpInput struct {
	Username             string `form:"username" json:"username" example:"alice"`
	Email                string `form:"email" json:"email" example:"alice@example.com"`
	Password             string `form:"password" json:"password" example:"password1"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation" example:"password1"`
}

// LoginInput defines the fields of the login form.
type LoginInput struct {
	Username string `form:"username" json:"username" example:"alice"`
	Password string `form:"password" json:"password" example:"password1"`
}

// ProfileResponse defines the structure for a user's profile page.
type ProfileResponse struct {
	ID             uint           `json:"id" example:"1"`
	Username       string         `json:"username" example:"alice"`
	JoinedAt       time.Time      `json:"joined_at"`
	FollowersCount int64          `json:"followers_count"`
	FollowingCount int64          `json:"following_count"`
	IsFollowing    bool           `json:"is_following"`
	Posts          []PostResponse `json:"posts"`
}

// UserSummary is the compact account representation used in follower,
// following, and search listings.
type UserSummary struct {
	ID         uint       `json:"id" example:"1"`
	Username   string     `json:"username" example:"alice"`
	FollowedAt *time.Time `json:"followed_at,omitempty"`
}

// ValidationErrorResponse carries per-field validation messages.
type ValidationErrorResponse struct {
	Errors map[string][]string `json:"errors"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// SignUp godoc
// @Summary      Register a new account
// @Description  Creates an account, starts a session, and redirects home. Validation failures return field errors.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username              formData string true  "Username"
// @Param        email                 formData string true  "Email address"
// @Param        password              formData string true  "Password"
// @Param        password_confirmation formData string true  "Password, repeated"
// @Success      302
// @Success      200  {object}  ValidationErrorResponse "Field errors"
// @Failure      500  {object}  ErrorResponse
// @Router       /signup [post]
func SignUp(c *gin.Context) {
	var input SignUpInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fieldErrors := validateSignUp(input)

	if input.Username != "" {
		var count int64
		database.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count)
		if count > 0 {
			fieldErrors["username"] = append(fieldErrors["username"], "A user with that username already exists.")
		}
	}
	if input.Email != "" {
		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count)
		if count > 0 {
			fieldErrors["email"] = append(fieldErrors["email"], "A user with that email already exists.")
		}
	}

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusOK, ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		// A concurrent signup can win the race on the unique columns; report
		// it the same way as the pre-checked duplicate.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusOK, ValidationErrorResponse{Errors: map[string][]string{
				"username": {"A user with that username or email already exists."},
			}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	setAuthCookie(c, token)
	c.Redirect(http.StatusFound, "/home")
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates credentials, starts a session, and redirects home. The failure message never reveals which field was wrong.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username formData string true "Username"
// @Param        password formData string true "Password"
// @Success      302
// @Success      200  {object}  ErrorResponse "Generic credential failure"
// @Failure      500  {object}  ErrorResponse
// @Router       /login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Username comparison is case-sensitive, and a missing user is reported
	// identically to a wrong password.
	var user models.User
	if err := database.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Incorrect username or password."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "Incorrect username or password."})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	setAuthCookie(c, token)
	c.Redirect(http.StatusFound, "/home")
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session cookie and redirects to the login page. Safe to repeat.
// @Tags         auth
// @Success      302
// @Router       /logout [post]
func Logout(c *gin.Context) {
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

// endregion

// region --- User Handlers ---

// GetProfile godoc
// @Summary      Get a user's profile
// @Description  Returns the profile page data: posts (newest first), follow counts, and whether the viewer follows this user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username path string true "Username"
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{username} [get]
func GetProfile(c *gin.Context) {
	viewerID := currentUserID(c)

	user, ok := findUserByUsername(c)
	if !ok {
		return
	}

	var posts []models.Post
	if err := database.DB.Preload("User").Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posts"})
		return
	}

	var followersCount, followingCount int64
	database.DB.Model(&models.FollowEdge{}).Where("followed_id = ?", user.ID).Count(&followersCount)
	database.DB.Model(&models.FollowEdge{}).Where("follower_id = ?", user.ID).Count(&followingCount)

	isFollowing := false
	if viewerID != 0 && viewerID != user.ID {
		var count int64
		database.DB.Model(&models.FollowEdge{}).
			Where("follower_id = ? AND followed_id = ?", viewerID, user.ID).Count(&count)
		isFollowing = count > 0
	}

	c.JSON(http.StatusOK, ProfileResponse{
		ID:             user.ID,
		Username:       user.Username,
		JoinedAt:       user.CreatedAt,
		FollowersCount: followersCount,
		FollowingCount: followingCount,
		IsFollowing:    isFollowing,
		Posts:          buildPostResponses(c, posts, viewerID),
	})
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for users by username with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for username"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[UserSummary]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func SearchUsers(c *gin.Context) {
	page, limit := parsePagination(c)

	query := database.DB.Model(&models.User{})
	if searchQuery := c.Query("q"); searchQuery != "" {
		query = query.Where("LOWER(username) LIKE LOWER(?)", "%"+searchQuery+"%")
	}

	paginated, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	summaries := make([]UserSummary, 0, len(paginated.Data))
	for _, user := range paginated.Data {
		summaries = append(summaries, UserSummary{ID: user.ID, Username: user.Username})
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(summaries, paginated.Meta.TotalItems, page, limit))
}

// endregion

// region --- Helpers ---

// validateSignUp applies the registration form rules and returns per-field
// messages, keyed by form field name.
func validateSignUp(input SignUpInput) map[string][]string {
	fieldErrors := map[string][]string{}

	if strings.TrimSpace(input.Username) == "" {
		fieldErrors["username"] = append(fieldErrors["username"], "This field is required.")
	}
	if strings.TrimSpace(input.Email) == "" {
		fieldErrors["email"] = append(fieldErrors["email"], "This field is required.")
	} else if !strings.Contains(input.Email, "@") {
		fieldErrors["email"] = append(fieldErrors["email"], "Enter a valid email address.")
	}
	if input.Password == "" {
		fieldErrors["password"] = append(fieldErrors["password"], "This field is required.")
	}
	if input.PasswordConfirmation != input.Password {
		fieldErrors["password_confirmation"] = append(fieldErrors["password_confirmation"], "The two password fields didn't match.")
	}

	if input.Password != "" {
		for _, message := range validatePassword(input.Username, input.Password) {
			fieldErrors["password"] = append(fieldErrors["password"], message)
		}
	}

	return fieldErrors
}

// validatePassword applies the password strength rules.
func validatePassword(username, password string) []string {
	var messages []string

	if len([]rune(password)) < minPasswordLength {
		messages = append(messages,
			fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}

	entirelyNumeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			entirelyNumeric = false
			break
		}
	}
	if entirelyNumeric {
		messages = append(messages, "This password is entirely numeric.")
	}

	if username != "" {
		lowerPassword := strings.ToLower(password)
		lowerUsername := strings.ToLower(username)
		if strings.Contains(lowerPassword, lowerUsername) || strings.Contains(lowerUsername, lowerPassword) {
			messages = append(messages, "The password is too similar to the username.")
		}
	}

	return messages
}

// currentUserID returns the authenticated user's ID, or 0 for anonymous
// requests behind the optional middleware.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// findUserByUsername resolves the :username route parameter, writing a 404
// response itself when the user does not exist.
func findUserByUsername(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := database.DB.Where("username = ?", c.Param("username")).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return models.User{}, false
	}
	return user, true
}

func setAuthCookie(c *gin.Context, token string) {
	c.SetCookie(auth.CookieName, token, sessionMaxAge, "/", "", false, true)
}

// endregion
