// cmd/ewm is the main event-management service.
// It wires together all layers and starts the HTTP server.
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

	"github.com/ntroshkin/explore-with-me/internal/database"
	"github.com/ntroshkin/explore-with-me/internal/handler"
	"github.com/ntroshkin/explore-with-me/internal/repository"
	"github.com/ntroshkin/explore-with-me/internal/service"
	"github.com/ntroshkin/explore-with-me/internal/statsclient"
)

func main() {
	ctx := context.Background()

	pool, err := database.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()
	log.Println("connected to postgres")

	stats := statsclient.New(
		getEnv("STATS_SERVER_URL", "http://localhost:9090"),
		getEnv("APP_NAME", "ewm-service"),
	)

	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	compilationRepo := repository.NewCompilationRepository(pool)

	userSvc := service.NewUserService(userRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	eventSvc := service.NewEventService(eventRepo, userRepo, categoryRepo, stats)
	requestSvc := service.NewRequestService(userRepo, eventRepo, requestRepo)
	commentSvc := service.NewCommentService(userRepo, eventRepo, commentRepo)
	compilationSvc := service.NewCompilationService(compilationRepo, eventRepo, userRepo, categoryRepo)

	r := handler.NewRouter(
		handler.NewEventHandler(eventSvc),
		handler.NewRequestHandler(requestSvc),
		handler.NewUserHandler(userSvc),
		handler.NewCategoryHandler(categorySvc),
		handler.NewCompilationHandler(compilationSvc),
		handler.NewCommentHandler(commentSvc),
	)

	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Printf("ewm service listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	log.Println("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
