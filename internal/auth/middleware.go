package auth

import (
	"fmt"
	"net/http"
	"strings"

	"microblog/backend/internal/config"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie that carries the signed token.
const CookieName = "token"

// AuthMiddleware requires a valid token (session cookie or Bearer header)
// and sets the userID for downstream handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// userIDFromRequest extracts and verifies the token, returning the user ID
// from its subject claim.
func userIDFromRequest(c *gin.Context) (uint, bool) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return 0, false
	}

	token, err := gojwt.Parse(tokenString, func(token *gojwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(gojwt.MapClaims)
	if !ok {
		return 0, false
	}

	userIDFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, false
	}

	return uint(userIDFloat), true
}

// tokenFromRequest prefers the session cookie set at login, falling back to
// an Authorization header for API clients.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	return ""
}
