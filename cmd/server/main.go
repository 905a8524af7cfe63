package main

import (
	"fmt"
	"log"

	"microblog/backend/internal/cache"
	"microblog/backend/internal/config"
	"microblog/backend/internal/database"
	"microblog/backend/internal/handler"

	// Swagger imports
	_ "microblog/backend/docs" // This is important for swag to find the generated docs
)

func init() {
	config.LoadConfig()
}

// @title           Microblog API
// @version         1.0
// @description     Backend for a small social network: accounts, posts, likes, and follows.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database
	database.Connect(config.AppConfig.DatabaseURL)

	// Like counts are cached in Redis when REDIS_URL is set.
	if err := cache.Connect(config.AppConfig.RedisURL); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	router := handler.NewRouter()

	addr := ":" + config.AppConfig.Port
	fmt.Println("Server is running on " + addr)
	fmt.Println("Swagger UI is available at http://localhost" + addr + "/swagger/index.html")
	log.Fatal(router.Run(addr))
}
