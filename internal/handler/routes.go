package handler

import (
	"net/http"
	"strings"

	"microblog/backend/internal/auth"
	"microblog/backend/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the full HTTP surface. main and the handler tests share it
// so both exercise the exact same routing and middleware.
func NewRouter() *gin.Engine {
	router := gin.Default()

	router.Use(corsMiddleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Auth routes (anonymous)
	router.POST("/signup", SignUp)
	router.POST("/login", Login)
	router.POST("/logout", Logout)

	// Public timeline: liked flags are personalized when a token is present.
	publicPosts := router.Group("/posts")
	publicPosts.Use(auth.OptionalAuthMiddleware())
	{
		publicPosts.GET("", ListPosts)
		publicPosts.GET("/:id", GetPost)
	}

	// Everything below requires a session.
	authenticated := router.Group("")
	authenticated.Use(auth.AuthMiddleware())
	{
		authenticated.GET("/home", ListPosts)

		userRoutes := authenticated.Group("/users")
		{
			userRoutes.GET("", SearchUsers) // Must be before /:username
			userRoutes.GET("/:username", GetProfile)
			userRoutes.POST("/:username/follow", Follow)
			userRoutes.POST("/:username/unfollow", Unfollow)
			userRoutes.GET("/:username/followers", Followers)
			userRoutes.GET("/:username/following", Following)
		}

		postRoutes := authenticated.Group("/posts")
		{
			postRoutes.POST("", CreatePost)
			postRoutes.POST("/:id/delete", DeletePost)
			postRoutes.POST("/:id/like", LikePost)
			postRoutes.POST("/:id/unlike", UnlikePost)
		}
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	if config.AppConfig == nil || config.AppConfig.CORSOrigins == "" {
		return cors.Default()
	}

	return cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.AppConfig.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	})
}
