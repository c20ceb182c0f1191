package main

import (
	"context"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/platewise/backend/internal/router"
	"github.com/platewise/backend/internal/services"
	"github.com/platewise/backend/pkg/config"
	"github.com/platewise/backend/pkg/firebase"
	"github.com/platewise/backend/pkg/logger"
	"github.com/platewise/backend/pkg/mailer"
	"github.com/platewise/backend/validators"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer zlog.Sync()

	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	rdb := config.InitRedis(cfg, zlog)
	if rdb != nil {
		defer rdb.Close()
	}

	ctx := context.Background()

	var emailSender services.Mailer
	if cfg.Email.Enabled {
		ses, err := mailer.NewSESMailer(ctx, cfg.Email.AWSRegion, cfg.Email.From)
		if err != nil {
			zlog.Fatal("failed to initialize SES mailer", zap.Error(err))
		}
		emailSender = ses
	}

	var firebaseAuthClient *fbauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			zlog.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		firebaseAuthClient = firebaseApp.AuthClient
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, zlog)
	if err := router.SetupRoutes(e, db.Postgres, db.Mongo.Database(cfg.MongoDB), rdb, emailSender, firebaseAuthClient, zlog); err != nil {
		zlog.Fatal("failed to set up routes", zap.Error(err))
	}

	zlog.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := e.Start(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
