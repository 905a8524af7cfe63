package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"microblog/backend/internal/auth"
	"microblog/backend/internal/config"
	"microblog/backend/internal/database"
	"microblog/backend/internal/models"
	"microblog/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter wires a fresh in-memory database and returns the real router,
// so every test exercises the same routing and middleware as production.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{JWTSecret: "test-secret"}

	// A named shared-cache in-memory database keeps all pooled connections
	// on the same schema while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.FollowEdge{}, &models.Post{}, &models.Like{}))

	database.DB = db
	return NewRouter()
}

func createUser(t *testing.T, username, email, password string) models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{Username: username, Email: email, PasswordHash: string(hashed)}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func createPost(t *testing.T, author models.User, content string) models.Post {
	t.Helper()

	post := models.Post{UserID: author.ID, Content: content}
	require.NoError(t, database.DB.Create(&post).Error)
	return post
}

// sessionCookie builds the cookie a login would have set for the user.
func sessionCookie(t *testing.T, user models.User) *http.Cookie {
	t.Helper()

	token, err := jwt.GenerateToken(user.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func postForm(router *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	body := ""
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getJSON(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()

	var n int64
	db := database.DB.Model(model)
	if query != "" {
		db = db.Where(query, args...)
	}
	require.NoError(t, db.Count(&n).Error)
	return n
}
