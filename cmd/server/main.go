package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/adapters/event"
	httpAdapter "github.com/khoahotran/projectshelf/adapters/http"
	"github.com/khoahotran/projectshelf/adapters/media_storage"
	"github.com/khoahotran/projectshelf/adapters/persistence"
	"github.com/khoahotran/projectshelf/internal/application/service"
	analyticsUC "github.com/khoahotran/projectshelf/internal/application/usecase/analytics"
	authUC "github.com/khoahotran/projectshelf/internal/application/usecase/auth"
	casestudyUC "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	editorUC "github.com/khoahotran/projectshelf/internal/application/usecase/editor"
	mediaUC "github.com/khoahotran/projectshelf/internal/application/usecase/media"
	portfolioUC "github.com/khoahotran/projectshelf/internal/application/usecase/portfolio"
	profileUC "github.com/khoahotran/projectshelf/internal/application/usecase/profile"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/metrics"
	"github.com/khoahotran/projectshelf/pkg/tracing"
)

func main() {
	fmt.Println("Start ProjectShelf API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "server")
	if err != nil {
		appLogger.Fatal("Cannot initialize tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Error("Failed to shut down tracer", err)
		}
	}()

	timelineOrder, err := casestudy.ParseTimelineOrder(cfg.Content.TimelineOrder)
	if err != nil {
		appLogger.Fatal("Invalid content.timeline_order", err)
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	uploader, _, err := media_storage.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	caseStudyRepo := persistence.NewPostgresCaseStudyRepo(dbPool, appLogger)
	timelineRepo := persistence.NewPostgresTimelineRepo(dbPool)
	outcomeRepo := persistence.NewPostgresOutcomeRepo(dbPool)
	analyticsRepo := persistence.NewPostgresAnalyticsRepo(dbPool, appLogger)
	mediaRepo := persistence.NewPostgresMediaRepo(dbPool, appLogger)
	editorSessions := persistence.NewRedisEditorSessionRepo(redisClient, cfg.Editor.SessionTTL)

	// Services
	appMetrics := metrics.New("projectshelf")
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	denylist := persistence.NewRedisTokenDenylist(redisClient)
	notifier := persistence.NewRedisSessionNotifier(redisClient, appLogger)
	visitors := httpAdapter.NewCookieVisitorIdentity(cfg.IsProduction())

	ingestUseCase := analyticsUC.NewIngestEventUseCase(analyticsRepo, appMetrics)
	var (
		sink      service.AnalyticsSink = analyticsUC.NewDirectSink(ingestUseCase)
		publisher service.MediaEventPublisher
	)
	if cfg.Kafka.Enabled {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
		if cfg.Analytics.IngestMode == "kafka" {
			sink = kafkaClient
		}
	}
	appLogger.Info("Analytics ingest configured",
		zap.String("mode", cfg.Analytics.IngestMode),
		zap.Bool("media_events", publisher != nil),
	)

	// Use Cases
	signUpUseCase := authUC.NewSignUpUseCase(userRepo, profileRepo, jwtSvc, notifier, appLogger)
	signInUseCase := authUC.NewSignInUseCase(userRepo, jwtSvc, notifier, appLogger)
	signOutUseCase := authUC.NewSignOutUseCase(denylist, notifier, appLogger)
	currentUserUseCase := authUC.NewCurrentUserUseCase(userRepo, profileRepo)
	sessionEventsUseCase := authUC.NewSessionEventsUseCase(notifier)

	profileUseCase := profileUC.NewProfileUseCase(profileRepo, uploader, appLogger)

	saveCaseStudyUseCase := casestudyUC.NewSaveCaseStudyUseCase(caseStudyRepo, timelineRepo, outcomeRepo, appLogger)
	getCaseStudyUseCase := casestudyUC.NewGetCaseStudyUseCase(caseStudyRepo, timelineRepo, outcomeRepo, casestudy.OrderByIndex)
	listCaseStudiesUseCase := casestudyUC.NewListCaseStudiesUseCase(caseStudyRepo)
	deleteCaseStudyUseCase := casestudyUC.NewDeleteCaseStudyUseCase(caseStudyRepo)
	setFeaturedUseCase := casestudyUC.NewSetFeaturedUseCase(caseStudyRepo)
	reorderUseCase := casestudyUC.NewReorderCaseStudiesUseCase(caseStudyRepo)

	editorUseCase := editorUC.NewEditorUseCase(editorSessions, getCaseStudyUseCase, saveCaseStudyUseCase, appMetrics, appLogger)

	uploadMediaUseCase := mediaUC.NewUploadMediaUseCase(mediaRepo, uploader, publisher, appLogger)
	listMediaUseCase := mediaUC.NewListMediaUseCase(mediaRepo)
	deleteMediaUseCase := mediaUC.NewDeleteMediaUseCase(mediaRepo, uploader, appLogger)

	trackEventUseCase := analyticsUC.NewTrackEventUseCase(profileRepo, sink, appMetrics, appLogger)
	reportUseCase := analyticsUC.NewGetReportUseCase(analyticsRepo, cfg.Analytics.DefaultRangeDays, cfg.Analytics.MaxRangeDays)
	dashboardUseCase := analyticsUC.NewGetDashboardStatsUseCase(analyticsRepo, caseStudyRepo)

	loadPortfolioUseCase := portfolioUC.NewLoadPortfolioViewUseCase(profileRepo, caseStudyRepo, appLogger)
	loadCaseStudyUseCase := portfolioUC.NewLoadCaseStudyViewUseCase(profileRepo, caseStudyRepo, timelineRepo, outcomeRepo, timelineOrder, appLogger)
	feedUseCase := portfolioUC.NewPortfolioFeedUseCase(loadPortfolioUseCase, cfg.App.PublicBaseURL, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth: httpAdapter.NewAuthHandler(
			signUpUseCase,
			signInUseCase,
			signOutUseCase,
			currentUserUseCase,
			sessionEventsUseCase,
			appLogger,
		),
		Profile: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		CaseStudy: httpAdapter.NewCaseStudyHandler(
			saveCaseStudyUseCase,
			listCaseStudiesUseCase,
			getCaseStudyUseCase,
			deleteCaseStudyUseCase,
			setFeaturedUseCase,
			reorderUseCase,
			appLogger,
		),
		Editor: httpAdapter.NewEditorHandler(editorUseCase, uploadMediaUseCase, appLogger),
		Media:  httpAdapter.NewMediaHandler(uploadMediaUseCase, listMediaUseCase, deleteMediaUseCase, appLogger),
		Analytics: httpAdapter.NewAnalyticsHandler(
			trackEventUseCase,
			reportUseCase,
			dashboardUseCase,
			visitors,
			appLogger,
		),
		Public: httpAdapter.NewPublicHandler(
			loadPortfolioUseCase,
			loadCaseStudyUseCase,
			feedUseCase,
			trackEventUseCase,
			visitors,
			appMetrics,
			appLogger,
		),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	trackLimiter := httpAdapter.NewRateLimiter(cfg.Analytics.TrackRPS, cfg.Analytics.TrackBurst)
	go trackLimiter.Run(ctx)

	router := httpAdapter.NewRouter(handlers, httpAdapter.RouterConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		JWT:          jwtSvc,
		Revoker:      denylist,
		Metrics:      appMetrics,
		TrackLimiter: trackLimiter,
		Health:       healthHandler(dbPool, redisClient),
		Logger:       appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shut down", err)
	}
	appLogger.Info("Server exited")
}

func healthHandler(db *pgxpool.Pool, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"status": "UP", "postgres": "UP", "redis": "UP"}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status["postgres"], status["status"], code = "DOWN", "DOWN", http.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"], status["status"], code = "DOWN", "DOWN", http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	}
}
