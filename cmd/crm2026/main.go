package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thiagovferrari/crm2026/internal/config"
	"github.com/thiagovferrari/crm2026/internal/database"
	"github.com/thiagovferrari/crm2026/internal/httpapi"
	"github.com/thiagovferrari/crm2026/internal/logger"
	"github.com/thiagovferrari/crm2026/internal/repository"
	"github.com/thiagovferrari/crm2026/internal/service"
	"github.com/thiagovferrari/crm2026/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	kv := store.NewRedisKV(redisClient)

	mode := store.Mode(cfg.Store.Mode)

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		if mode == store.ModeSynced {
			log.Fatal("Database connection failed", zap.Error(err))
		}
		// Local mode keeps everything in the KV, so missing Postgres only
		// disables auth persistence.
		log.Warn("Database unavailable, continuing in local mode", zap.Error(err))
	}

	manager := store.NewManager(mode, db, redisClient, kv, cfg.Store.RefreshDebounce, log)

	var usersRepo repository.UsersRepository
	if db != nil {
		usersRepo = repository.NewPostgresUsersRepository(db)
	} else {
		usersRepo = repository.NewMemoryUsersRepository()
	}
	authService := service.NewAuthService(usersRepo, kv, cfg.Auth.SessionTTL, log)
	// Session gone → drop every in-memory snapshot.
	authService.OnSessionChange(func(session *service.Session) {
		if session == nil {
			manager.ResetAll()
		}
	})

	contactService := service.NewContactService(manager, log)
	dashboardService := service.NewDashboardService(contactService)
	advisorService := service.NewAdvisorService(cfg.Advisor, log)
	exportService := service.NewExportService(contactService)

	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, log))
	router.RegisterCRMRoutes(
		httpapi.NewContactHandler(contactService, authService, log),
		httpapi.NewDashboardHandler(dashboardService, authService, log),
		httpapi.NewAdvisorHandler(advisorService, contactService, authService, log),
		httpapi.NewExportHandler(exportService, authService, log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	manager.CloseAll()
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
