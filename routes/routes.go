// File: /routes/routes.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"

	"bragforgood-api/ai"
	"bragforgood-api/config"
	"bragforgood-api/controllers"
	"bragforgood-api/middleware"
	"bragforgood-api/ratelimit"
	"bragforgood-api/repositories"
	"bragforgood-api/services"
	"bragforgood-api/storage"
)

// Infra holds the outside collaborators built in main.
type Infra struct {
	Limiter    ratelimit.Limiter
	Moderator  ai.Moderator
	Translator ai.Translator
	Email      *services.EmailService
	Photos     *storage.PhotoStore // nil when storage is not configured
	Sessions   sessions.Store
	Location   *time.Location
}

// Policies maps each limited action to its configured window.
func Policies(cfg *config.Config) map[string]ratelimit.Policy {
	return map[string]ratelimit.Policy{
		services.ActionSignup:    {Max: cfg.SignupLimit, Window: cfg.SignupWindow},
		services.ActionDeed:      {Max: cfg.DeedLimit, Window: cfg.DeedWindow},
		services.ActionComment:   {Max: cfg.CommentLimit, Window: cfg.CommentWindow},
		services.ActionJoin:      {Max: cfg.JoinLimit, Window: cfg.JoinWindow},
		services.ActionReport:    {Max: cfg.ReportLimit, Window: cfg.ReportWindow},
		services.ActionTranslate: {Max: cfg.TranslateLimit, Window: cfg.TranslateWindow},
		services.ActionAdmin:     {Max: cfg.AdminLimit, Window: cfg.AdminWindow},
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	deedRepo := repositories.NewDeedRepository(db)
	engagementRepo := repositories.NewEngagementRepository(db)
	commentRepo := repositories.NewCommentRepository(db)
	participantRepo := repositories.NewParticipantRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	leaderboardRepo := repositories.NewLeaderboardRepository(db)

	// Services
	guard := services.NewRateGuard(infra.Limiter, Policies(cfg))
	tokens := services.NewTokenService(cfg.JWTSecret, 7*24*time.Hour)
	engagement := services.NewEngagementService(engagementRepo, deedRepo)
	streaks := services.NewStreakService(userRepo, infra.Location)
	deedService := services.NewDeedService(services.DeedServiceDeps{
		Deeds:      deedRepo,
		Reports:    reportRepo,
		Users:      userRepo,
		Engagement: engagement,
		Streaks:    streaks,
		Moderator:  infra.Moderator,
		Translator: infra.Translator,
		Guard:      guard,
	})
	var notifier services.JoinNotifier
	var welcome services.WelcomeSender
	if infra.Email != nil {
		notifier, welcome = infra.Email, infra.Email
	}
	authService := services.NewAuthService(userRepo, tokens, welcome, guard)
	userService := services.NewUserService(userRepo, deedRepo, engagement)
	commentService := services.NewCommentService(commentRepo, deedRepo, infra.Moderator, guard)
	participationService := services.NewParticipationService(participantRepo, ratingRepo, deedRepo, userRepo, notifier, guard)
	leaderboardService := services.NewLeaderboardService(leaderboardRepo, userRepo, engagement, infra.Location)

	// Controllers
	var photos controllers.PhotoPresigner
	if infra.Photos != nil {
		photos = infra.Photos
	}
	authController := controllers.NewAuthController(authService, infra.Sessions, cfg.IsProduction())
	userController := controllers.NewUserController(userService, deedService, infra.Sessions)
	deedController := controllers.NewDeedController(deedService)
	interactionController := controllers.NewInteractionController(engagement, deedService)
	commentController := controllers.NewCommentController(commentService)
	eventController := controllers.NewEventController(participationService)
	leaderboardController := controllers.NewLeaderboardController(leaderboardService)
	uploadController := controllers.NewUploadController(photos)
	adminController := controllers.NewAdminController(deedService)

	auth := middleware.NewAuthenticator(tokens, infra.Sessions, userRepo)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	api := r.Group("/api")

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authController.Register)
		authRoutes.POST("/login", authController.Login)
		authRoutes.POST("/logout", authController.Logout)
	}

	// Public reads; the caller is attached when known
	public := api.Group("/")
	public.Use(auth.Optional())
	{
		public.GET("/deeds", deedController.ListDeeds)
		public.GET("/deeds/:id", deedController.GetDeed)
		public.GET("/deeds/:id/comments", commentController.GetComments)
		public.GET("/deeds/:id/participants", eventController.GetParticipants)
		public.GET("/events/upcoming", deedController.ListUpcoming)
		public.GET("/users/:id", userController.GetUser)
		public.GET("/users/:id/deeds", userController.GetUserDeeds)
		public.GET("/leaderboard", leaderboardController.GetMonthly)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(auth.Required())
	{
		me := protected.Group("/me")
		{
			me.GET("", userController.GetMe)
			me.PUT("", userController.UpdateMe)
			me.DELETE("", userController.DeleteMe)
		}

		deeds := protected.Group("/deeds")
		{
			deeds.POST("", deedController.CreateDeed)
			deeds.PUT("/:id", deedController.UpdateDeed)
			deeds.DELETE("/:id", deedController.DeleteDeed)
			deeds.POST("/:id/reactions", interactionController.ToggleReaction)
			deeds.POST("/:id/comments", commentController.CreateComment)
			deeds.POST("/:id/participants", eventController.JoinEvent)
			deeds.DELETE("/:id/participants", eventController.LeaveEvent)
			deeds.POST("/:id/ratings", eventController.RateEvent)
			deeds.POST("/:id/report", interactionController.Report)
			deeds.POST("/:id/translate", interactionController.Translate)
		}

		protected.POST("/uploads/presign", uploadController.PresignPhoto)

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		{
			admin.DELETE("/deeds/:id", adminController.DeleteDeed)
			admin.POST("/deeds/:id/unflag", adminController.UnflagDeed)
		}
	}
}
