package app

import (
	"github.com/gravishankar/satify-backend/docs"
	"github.com/gravishankar/satify-backend/internal/config"
	"github.com/gravishankar/satify-backend/internal/middleware"
	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, repos, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerAuthorRoutes(authGroup, c)
		a.registerReviewerRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// the published index is world-readable; claims are attached
		// when a token is present so activity tracking still sees
		// signed-in readers
		public.GET("/lessons",
			middleware.TryAuthMiddleware(cfg),
			middleware.ActivityMiddleware(repos.user),
			c.lesson.ListLessons)
	}
}

// registerStudentRoutes covers everything any signed-in user may do:
// record practice and read their own analytics.
func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.GetProfile)

	sessions := group.Group("/sessions")
	{
		sessions.POST("", c.session.RecordSession)
		sessions.GET("", c.session.ListSessions)
	}

	analytics := group.Group("/analytics")
	{
		analytics.GET("/summary", c.session.Summary)
		analytics.GET("/skills", c.session.SkillBreakdown)
	}
}

// registerAuthorRoutes covers the draft workflow.
func (a *App) registerAuthorRoutes(group *gin.RouterGroup, c *controllers) {
	author := group.Group("")
	author.Use(middleware.RoleMiddleware(model.Author))
	{
		author.POST("/save-draft", c.lesson.SaveDraft)
		author.GET("/load-draft/:lessonId", c.lesson.LoadDraft)
		author.GET("/versions/:lessonId", c.lesson.ListVersions)

		author.POST("/scratch", c.lesson.SaveScratch)
		author.GET("/scratch/:lessonId", c.lesson.LoadScratch)

		author.POST("/assets/upload", c.asset.UploadSlideImage)
	}
}

// registerReviewerRoutes covers the publish gate, admin only.
func (a *App) registerReviewerRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/review/pending", c.review.PendingReviews)
		admin.GET("/review/:lessonId/changes", c.review.Changes)
		admin.POST("/publish-lesson", c.review.PublishLesson)
		admin.POST("/reject-lesson", c.review.RejectLesson)
		admin.POST("/rollback-lesson", c.review.RollbackLesson)
		admin.POST("/commit-lesson", c.lesson.CommitLesson)
	}
}
