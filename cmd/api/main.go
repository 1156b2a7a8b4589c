package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Beatriz-ux/laudos-dpt/internal/config"
	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/handler"
	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/database"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/queue"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/storage"
	"github.com/Beatriz-ux/laudos-dpt/internal/repository/postgres"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
	"github.com/Beatriz-ux/laudos-dpt/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Env == "development" {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	// Banco de dados
	db, err := database.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	// RabbitMQ: a API continua de pé sem a fila, em modo degradado
	publisher, err := queue.NewRabbitPublisher(cfg.RabbitMQ.URL)
	if err != nil {
		log.WithError(err).Warn("could not connect to RabbitMQ, async features disabled")
	} else {
		defer publisher.Close()
	}

	consumer, err := queue.NewRabbitConsumer(cfg.RabbitMQ.URL, log)
	if err != nil {
		log.WithError(err).Warn("could not connect RabbitMQ consumer")
	} else {
		defer consumer.Close()
	}

	// MinIO
	storagePlatform, err := storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.WithError(err).Warn("could not connect to MinIO, photo uploads disabled")
	}
	storageService := service.NewStorageService(storagePlatform, log)
	if storagePlatform != nil {
		if err := storageService.Initialize(context.Background()); err != nil {
			log.WithError(err).Warn("could not initialize storage bucket")
		}
	}

	// Injeção de dependências
	userRepo := postgres.NewUserRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), log)
	reportService := service.NewReportService(reportRepo, userRepo, publisher, log)
	officerService := service.NewOfficerService(userRepo, log)
	statsService := service.NewStatsService(reportRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	reportHandler := handler.NewReportHandler(reportService, storageService)
	officerHandler := handler.NewOfficerHandler(officerService)
	statsHandler := handler.NewStatsHandler(statsService)

	// Worker de notificações
	if consumer != nil {
		notificationConsumer := worker.NewNotificationConsumer(consumer, log)
		go notificationConsumer.Start(context.Background())
	}

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Restringir em produção
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMiddleware := middleware.AuthMiddleware(authService)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimitMiddleware(10, time.Minute), authHandler.Login)
			auth.GET("/me", authMiddleware, authHandler.Me)
		}

		officers := api.Group("/officers")
		officers.Use(authMiddleware, middleware.AgentOnly())
		{
			officers.POST("", officerHandler.Create)
			officers.GET("", officerHandler.List)
		}

		reports := api.Group("/reports")
		reports.Use(authMiddleware)
		{
			reports.POST("", reportHandler.Create)
			reports.GET("", reportHandler.List)
			reports.GET("/:id", reportHandler.GetDetails)
			reports.POST("/:id/assign", reportHandler.Assign)
			reports.POST("/:id/cancel", reportHandler.Cancel)
			reports.PATCH("/:id/status", reportHandler.UpdateStatus)
			reports.PATCH("/:id", reportHandler.UpdateContent)
			reports.GET("/:id/upload-url", reportHandler.GetUploadURL)
		}

		stats := api.Group("/stats")
		stats.Use(authMiddleware)
		{
			stats.GET("/dashboard", statsHandler.Dashboard)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	log.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
