package router

import (
	"context"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/platewise/backend/internal/handlers"
	"github.com/platewise/backend/internal/middleware"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
	"github.com/platewise/backend/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware and the error envelope.
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = httpErrorHandler(log)
}

// httpErrorHandler renders every error as {"success": false, "message": ...}.
// Non-HTTP errors are logged with full detail and reported generically.
func httpErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := "Internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		if !c.Response().Committed {
			_ = c.JSON(code, echo.Map{"success": false, "message": message})
		}
	}
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when Firebase sign-in is not configured.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mongoDB *mongo.Database, rdb *redis.Client, mailer services.Mailer, firebaseAuthClient *fbauth.Client, log *zap.Logger) error {
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		return err
	}

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	recipeRepo := repositories.NewMongoRecipeRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	ratingRepo := repositories.NewMongoRatingRepository(mongoDB)

	if err := notificationRepo.EnsureIndexes(context.Background()); err != nil {
		return err
	}

	// --- Services ---
	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer, rdb, log)
	analyticsService := services.NewAnalyticsService(userRepo, recipeRepo, commentRepo, ratingRepo, log)

	// Health and metrics - always accessible
	e.GET("/health", handlers.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	admin := e.Group("/api/v1")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnly())

	notificationHandler := handlers.NewNotificationHandler(notificationService, log)
	notificationHandler.RegisterNotificationRoutes(api, admin)
	log.Info("notification routes configured")

	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)
	analyticsHandler.RegisterAnalyticsRoutes(admin)
	log.Info("analytics routes configured")

	// firebaseAuthClient is kept for clients authenticating with Firebase ID
	// tokens; mount a parallel group when configured.
	if firebaseAuthClient != nil {
		fb := e.Group("/api/v1/fb")
		fb.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
		fbAdmin := e.Group("/api/v1/fb")
		fbAdmin.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo), middleware.AdminOnly())
		notificationHandler.RegisterNotificationRoutes(fb, fbAdmin)
		log.Info("firebase-authenticated routes configured")
	}

	return nil
}
