package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"explore-api/db"
	"explore-api/routes"
	"explore-api/storage"
	"explore-api/utils"
)

func main() {
	// Load configuration
	config, err := db.LoadDBConfig()
	if err != nil {
		log.Fatalf("Error loading database config: %v", err)
	}

	envCheck()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		log.Fatalf("Error initializing Redis: %v", err)
	}
	log.Println("Redis connection initialized successfully.")

	// Migrate the database
	migrateCfg := db.MigrateConfig{
		DBURL: config.DBURL,
	}

	if err := db.Migrate(migrateCfg); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	storageCfg, err := storage.LoadStorageConfig()
	if err != nil {
		log.Fatalf("Error loading storage config: %v", err)
	}

	// Set up routes and middlewares
	handler := routes.SetupRoutes(routes.Deps{
		Posts:    db.NewPostStore(db.DB),
		Cache:    db.NewPostCache(db.RedisClient),
		Resolver: storage.NewResolver(storage.NewHTTPUploader(storageCfg)),
		DB:       db.DB,
	})

	srv := &http.Server{
		Addr:           ":8000",
		Handler:        handler,
		ReadTimeout:    100 * time.Second,
		WriteTimeout:   100 * time.Second,
		MaxHeaderBytes: 7500,
		IdleTimeout:    120 * time.Second,
	}

	// Use a wait group to manage graceful shutdown
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()
	log.Println("Server started on :8000")

	// Wait for interrupt signal to gracefully shut down the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	// Create a context with a timeout for shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %+v", err)
	}

	wg.Wait() // Wait for all goroutines to finish before exiting
	log.Println("Server exited gracefully")
}

func envCheck() {
	// Check Redis configuration
	if _, err := db.LoadRedisConfig(); err != nil {
		log.Fatalf("Error loading Redis config: %v", err)
	} else {
		log.Println("Redis configuration environment variable is set.")
	}

	// Check PASETO secret environment variable
	if _, err := utils.GetPasetoSecret(); err != nil {
		log.Fatalf("Error retrieving PASETO secret: %v", err)
	} else {
		log.Println("PASETO secret environment variable is set.")
	}

	// Check object storage configuration
	if _, err := storage.LoadStorageConfig(); err != nil {
		log.Fatalf("Error loading storage config: %v", err)
	} else {
		log.Println("Storage configuration environment variable is set.")
	}
}
