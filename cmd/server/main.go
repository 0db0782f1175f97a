package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stays-dashboard/config"
	"stays-dashboard/internal/api"
	"stays-dashboard/internal/broker"
	"stays-dashboard/internal/cache"
	"stays-dashboard/internal/service"
	"stays-dashboard/internal/stays"
	"stays-dashboard/internal/store"
	"stays-dashboard/internal/util"
	"stays-dashboard/internal/webhook"
	"stays-dashboard/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting stays dashboard service")

	tp, err := util.InitTracer("stays-dashboard", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer schemaCancel()
	if err := db.EnsureSchema(schemaCtx); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	cacheClient, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		time.Duration(cfg.Business.CacheTTLSeconds)*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cacheClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicReservas)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	staysClient := stays.NewClient(cfg.Stays.BaseURL, cfg.Stays.Login, cfg.Stays.Password)
	dashboardService := service.NewDashboardService(db, cacheClient, staysClient,
		cfg.Business.MetaRepasse, cfg.Business.IncluirLimpezaDefault)
	reconciler := webhook.NewReconciler(db, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicReservas, cfg.Kafka.ConsumerGroup)
	invalidationWorker := worker.NewInvalidationWorker(consumer, cacheClient)
	go func() {
		if err := invalidationWorker.Start(workerCtx); err != nil {
			log.Printf("Invalidation worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(dashboardService, reconciler, cfg.Auth.APIToken, cfg.Auth.CORSOrigins)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	invalidationWorker.Stop()

	log.Println("Server exited")
}
