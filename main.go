package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"

	"meetscribe/internal/config"
	Ibuffer "meetscribe/internal/domain/interfaces/buffer"
	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/buffer"
	"meetscribe/internal/infra/handlers"
	"meetscribe/internal/infra/logger"
	"meetscribe/internal/infra/repository"
	"meetscribe/internal/infra/routes"
	"meetscribe/internal/infra/services"
	"meetscribe/internal/middleware"
	client "meetscribe/internal/pkg"
)

func main() {
	config.LoadEnv()

	ctx := context.Background()
	log := logger.NewLogger(ctx, true)

	store, err := repository.NewSQLiteStore(config.GetEnvDefault("DATABASE_PATH", "data/meetscribe.db"))
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer store.Close()

	var segmentBuffer Ibuffer.SegmentBuffer
	switch backend := config.GetEnvDefault("BUFFER_BACKEND", "mongo"); backend {
	case "memory":
		segmentBuffer = buffer.NewMemoryBuffer()
	case "mongo":
		mongoClient := client.MongoClient()
		segmentBuffer = buffer.NewMongoBuffer(mongoClient, config.GetEnvDefault("MONGODB_DATABASE", "meetscribe"))
	default:
		log.Fatal(fmt.Sprintf("Unknown BUFFER_BACKEND %q", backend))
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	var authSvc Iservices.IAuthService = services.NewAuthService(
		store, log, httpClient,
		config.GetEnv("JWT_SECRET"),
		config.GetEnv("GOOGLE_CLIENT_ID_EXTENSION"),
	)
	var meetingSvc Iservices.IMeetingService = services.NewMeetingService(store, store, log)
	var segmentSvc Iservices.ISegmentService = services.NewSegmentService(segmentBuffer, store, log)
	var chatSvc Iservices.IChatService = services.NewChatService(store, store, log)

	flushInterval := time.Duration(config.GetEnvInt("FLUSH_INTERVAL_SECONDS", 15)) * time.Second
	flushTimeout := time.Duration(config.GetEnvInt("FLUSH_TIMEOUT_SECONDS", 60)) * time.Second
	flusher := services.NewFlusher(segmentSvc, log, flushInterval, flushTimeout)

	flusherCtx, stopFlusher := context.WithCancel(ctx)
	go flusher.Run(flusherCtx)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	authHandlers := handlers.NewAuthHandlers(log, authSvc)
	meetingHandlers := handlers.NewMeetingHandlers(log, meetingSvc, segmentSvc)
	chatHandlers := handlers.NewChatHandlers(log, chatSvc)

	apiRoutes := routes.NewRoutes(
		router,
		authHandlers,
		meetingHandlers,
		chatHandlers,
		middleware.AuthMiddleware(log, authSvc, store),
		store,
		segmentBuffer,
	)
	apiRoutes.Init()

	port := config.GetEnvDefault("PORT", "8080")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}

	// Stop the flusher last so in-flight submissions get a final flush.
	stopFlusher()
	flusher.Wait()
}
