package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"task-board/backend/internal/cache"
	"task-board/backend/internal/config"
	"task-board/backend/internal/handlers"
	"task-board/backend/internal/services"
	"task-board/backend/internal/store"
	"task-board/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	db, err := store.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancelConnect()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB database %q", cfg.Mongo.Database)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	taskCache := cache.NewRedisCacheWithClient(rdb)
	if err := taskCache.Health(context.Background()); err != nil {
		log.Printf("Redis unavailable, continuing without warm caches: %v", err)
	}

	tokens := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := services.NewAuthService(db.Users(), tokens, cfg.Auth.BCryptCost)

	var reminderWorker *worker.Worker
	var scheduler services.ReminderScheduler
	if cfg.Worker.Enabled {
		scheduler = worker.NewQueue(rdb)
		reminderWorker = worker.NewWorker(rdb, worker.LogReminder)
		reminderWorker.Start(cfg.Worker.Concurrency)
	}

	taskService := services.NewCachedTaskService(
		services.NewTaskService(db.Tasks(), scheduler),
		taskCache,
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authService),
		TaskHandler:    handlers.NewTaskHandler(taskService),
		TokenService:   tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if reminderWorker != nil {
		reminderWorker.Stop()
	}

	if err := taskCache.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}

	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}

	log.Println("Shutdown complete")
}
