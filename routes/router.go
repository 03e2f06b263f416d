package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedbackhub/feedbackhub/config"
	"github.com/feedbackhub/feedbackhub/controllers"
	"github.com/feedbackhub/feedbackhub/middleware"
	"github.com/feedbackhub/feedbackhub/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	commentController := controllers.NewCommentController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	commentsGroup := api.Group("/comments")
	commentsGroup.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	commentsGroup.POST("", commentController.CreateComment)
	commentsGroup.GET("", commentController.ListComments)
	// registered before /:id so "stats" is not parsed as a comment id
	commentsGroup.GET("/stats", middleware.AdminRequired(), statsController.GetCategoryBreakdown)
	commentsGroup.GET("/:id", commentController.GetComment)
	commentsGroup.PATCH("/:id", commentController.UpdateComment)
	commentsGroup.DELETE("/:id", commentController.DeleteComment)
	commentsGroup.POST("/:id/subcomments", commentController.AddSubComment)
	commentsGroup.PATCH("/:id/subcomments/:subCommentId", commentController.UpdateSubComment)
	commentsGroup.DELETE("/:id/subcomments/:subCommentId", commentController.DeleteSubComment)

	statsGroup := api.Group("/stats")
	statsGroup.Use(middleware.AuthRequired(), middleware.AdminRequired())
	statsGroup.GET("/general", statsController.GetGeneralStats)
	statsGroup.GET("/users", statsController.GetUserStats)
	statsGroup.GET("/timeline", statsController.GetTimeline)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
