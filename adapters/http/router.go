package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/metrics"
)

type Handlers struct {
	Auth      *AuthHandler
	Profile   *ProfileHandler
	CaseStudy *CaseStudyHandler
	Editor    *EditorHandler
	Media     *MediaHandler
	Analytics *AnalyticsHandler
	Public    *PublicHandler
}

type RouterConfig struct {
	ServiceName  string
	JWT          *auth.JWTService
	Revoker      service.TokenRevoker
	Metrics      *metrics.Metrics
	TrackLimiter *RateLimiter
	// Health reports readiness; nil answers UP unconditionally.
	Health gin.HandlerFunc
	Logger logger.Logger
}

func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", cfg.Metrics.Handler())
	}
	router.Use(RequestLogger(cfg.Logger), ErrorMiddleware(cfg.Logger))

	health := cfg.Health
	if health == nil {
		health = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) }
	}
	router.GET("/health", health)

	authMiddleware := AuthMiddleware(cfg.JWT, cfg.Revoker, cfg.Logger)

	api := router.Group("/api")
	{
		api.GET("/themes", h.Profile.ListThemes)

		track := api.Group("/track")
		if cfg.TrackLimiter != nil {
			track.Use(cfg.TrackLimiter.Middleware())
		}
		track.POST("", h.Analytics.Track)

		portfolio := api.Group("/portfolio/:username")
		{
			portfolio.GET("", h.Public.PortfolioJSON)
			portfolio.GET("/feed", h.Public.Feed)
			portfolio.GET("/case-studies/:caseStudyID", h.Public.CaseStudyJSON)
		}

		admin := api.Group("/admin")
		{
			adminAuth := admin.Group("/auth")
			adminAuth.POST("/signup", h.Auth.SignUp)
			adminAuth.POST("/signin", h.Auth.SignIn)

			private := admin.Group("/")
			private.Use(authMiddleware)
			{
				private.POST("/auth/signout", h.Auth.SignOut)
				private.GET("/auth/me", h.Auth.Me)
				private.GET("/auth/session-events", h.Auth.SessionEvents)

				private.GET("/profile", h.Profile.GetProfile)
				private.PUT("/profile", h.Profile.UpdateProfile)
				private.PUT("/profile/theme", h.Profile.UpdateTheme)
				private.POST("/profile/avatar", h.Profile.UploadAvatar)

				caseStudies := private.Group("/case-studies")
				{
					caseStudies.GET("", h.CaseStudy.ListCaseStudies)
					caseStudies.POST("", h.CaseStudy.CreateCaseStudy)
					caseStudies.PUT("/order", h.CaseStudy.Reorder)
					caseStudies.GET("/:id", h.CaseStudy.GetCaseStudy)
					caseStudies.PUT("/:id", h.CaseStudy.UpdateCaseStudy)
					caseStudies.DELETE("/:id", h.CaseStudy.DeleteCaseStudy)
					caseStudies.PUT("/:id/featured", h.CaseStudy.SetFeatured)
				}

				sessions := private.Group("/editor/sessions")
				{
					sessions.POST("", h.Editor.OpenSession)
					sessions.GET("/:sessionID", h.Editor.GetSession)
					sessions.DELETE("/:sessionID", h.Editor.DiscardSession)
					sessions.POST("/:sessionID/submit", h.Editor.SubmitSession)
					sessions.PATCH("/:sessionID/fields", h.Editor.EditField)
					sessions.PUT("/:sessionID/tab", h.Editor.SwitchTab)

					sessions.PATCH("/:sessionID/timelines/draft", h.Editor.StageTimeline)
					sessions.POST("/:sessionID/timelines", h.Editor.CommitTimeline)
					sessions.DELETE("/:sessionID/timelines/:entryID", h.Editor.RemoveTimeline)

					sessions.PATCH("/:sessionID/outcomes/draft", h.Editor.StageOutcome)
					sessions.POST("/:sessionID/outcomes", h.Editor.CommitOutcome)
					sessions.DELETE("/:sessionID/outcomes/:entryID", h.Editor.RemoveOutcome)
					sessions.POST("/:sessionID/outcomes/:entryID/metrics", h.Editor.AddMetric)
					sessions.DELETE("/:sessionID/outcomes/:entryID/metrics", h.Editor.RemoveMetric)

					sessions.POST("/:sessionID/tools", h.Editor.AddTool)
					sessions.DELETE("/:sessionID/tools", h.Editor.RemoveTool)
					sessions.POST("/:sessionID/technologies", h.Editor.AddTechnology)
					sessions.DELETE("/:sessionID/technologies", h.Editor.RemoveTechnology)
					sessions.POST("/:sessionID/media", h.Editor.AddMediaItem)
					sessions.DELETE("/:sessionID/media/:itemID", h.Editor.RemoveMediaItem)
				}

				media := private.Group("/media")
				{
					media.POST("", h.Media.UploadMedia)
					media.GET("", h.Media.ListMedia)
					media.DELETE("/:id", h.Media.DeleteMedia)
				}

				analytics := private.Group("/analytics")
				{
					analytics.GET("/report", h.Analytics.Report)
					analytics.GET("/dashboard", h.Analytics.DashboardStats)
				}
			}
		}
	}

	router.GET("/:username", h.Public.PortfolioPage)
	router.GET("/:username/:caseStudyID", h.Public.CaseStudyPage)

	return router
}
