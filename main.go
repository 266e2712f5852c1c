package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"counselhub/config"
	"counselhub/cron"
	"counselhub/database"
	appointmentRepo "counselhub/database/repository/appointment"
	availabilityRepo "counselhub/database/repository/availability"
	"counselhub/handlers"
	"counselhub/middleware"
	"counselhub/routes"
	"counselhub/services/scheduling"
	"counselhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	if err := apptRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create appointment indexes: %v", err)
	}
	if err := availRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create availability indexes: %v", err)
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer taskClient.Close()

	// services.
	schedulingService := &scheduling.DefaultSchedulingService{
		AvailabilityRepo: availRepo,
		AppointmentRepo:  apptRepo,
		Cache:            utils.GetCacheClient(),
		TaskClient:       taskClient,
	}

	cron.InitExpiryWorker(schedulingService)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// handlers.
	handlerBundle := &routes.HandlerBundle{
		Appointments: handlers.NewAppointmentHandler(schedulingService, logger),
		Availability: handlers.NewAvailabilityHandler(schedulingService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
