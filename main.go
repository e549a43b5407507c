package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-market-api/config"
	"github.com/kendall-kelly/estate-market-api/controllers"
	"github.com/kendall-kelly/estate-market-api/logger"
	"github.com/kendall-kelly/estate-market-api/middleware"
	"github.com/kendall-kelly/estate-market-api/models"
	"github.com/kendall-kelly/estate-market-api/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Pretty:      cfg.LogPretty,
		ServiceName: "estate-market-api",
	})
	log := logger.L()
	log.Info().Str("env", cfg.GoEnv).Msg("starting Estate Market API server")

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := models.AutoMigrate(config.GetDB()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("database migration completed successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := services.InitTokenStore(ctx, cfg.RedisURL); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token store")
	}

	if cfg.UsesS3() {
		s3Service, err := services.InitS3Service(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3 service")
		}
		services.InitImageService(s3Service)
		log.Info().Str("bucket", cfg.AWSS3Bucket).Msg("storing property images in S3")
	} else {
		services.InitLocalImageService(cfg.UploadDir)
		log.Info().Str("dir", cfg.UploadDir).Msg("storing property images on local disk")
	}

	router := setupRouter(cfg)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("server is running")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// setupRouter wires middleware and every API route
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(*logger.L()))
	router.Use(cors.New(corsConfig(cfg)))

	requireAuth := middleware.EnsureValidToken(cfg, services.GetTokenStore())
	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateLimitPerMinute)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheck)
		api.GET("/database/status", databaseStatus)
		api.GET("/uploads/:filename", controllers.GetUploadedImage)

		auth := api.Group("/auth", authLimiter.Handler())
		{
			auth.POST("/signup", controllers.Signup)
			auth.POST("/login", controllers.Login)
			auth.POST("/token/refresh", controllers.RefreshToken)
			auth.POST("/logout", requireAuth, controllers.Logout)
			auth.GET("/me", requireAuth, controllers.GetCurrentUser)
		}

		properties := api.Group("/properties")
		{
			properties.GET("", controllers.ListProperties)
			properties.POST("", requireAuth, controllers.CreateProperty)
			properties.GET("/user", requireAuth, controllers.ListMyProperties)

			properties.GET("/wishlist", requireAuth, controllers.GetWishlist)
			properties.POST("/wishlist/add", requireAuth, controllers.AddToWishlist)
			properties.DELETE("/wishlist/remove/:property_id", requireAuth, controllers.RemoveFromWishlist)

			properties.GET("/:id", controllers.GetProperty)
			properties.PUT("/:id", requireAuth, controllers.UpdateProperty)
			properties.PATCH("/:id", requireAuth, controllers.UpdateProperty)
			properties.DELETE("/:id", requireAuth, controllers.DeleteProperty)
			properties.POST("/:id/images", requireAuth, controllers.UploadPropertyImage)
		}

		chats := api.Group("/chats", requireAuth)
		{
			chats.GET("/rooms", controllers.ListChatRooms)
			chats.POST("/rooms/create", controllers.CreateChatRoom)
			chats.GET("/rooms/:id", controllers.GetChatRoom)
			chats.POST("/messages/send", controllers.SendMessage)
			chats.DELETE("/messages/delete/:id", controllers.DeleteMessage)
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logger.HeaderRequestID},
		ExposeHeaders: []string{logger.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.CORSAllowedOrigins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		c.AllowAllOrigins = true
		return c
	}

	c.AllowOrigins = cfg.CORSAllowedOrigins
	c.AllowCredentials = true
	return c
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estate Market API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Database is not initialized",
			},
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	query := "SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename"
	if db.Dialector.Name() == "sqlite" {
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	}

	var tables []string
	if err := db.WithContext(c.Request.Context()).Raw(query).Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
