package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/refind-app/refind-backend/internal/config"
	"github.com/refind-app/refind-backend/internal/db"
	httpHandlers "github.com/refind-app/refind-backend/internal/http/handlers"
	httpRouter "github.com/refind-app/refind-backend/internal/http/router"
	"github.com/refind-app/refind-backend/internal/logger"
	"github.com/refind-app/refind-backend/internal/models"
	"github.com/refind-app/refind-backend/internal/repository"
	"github.com/refind-app/refind-backend/internal/service"
	"github.com/refind-app/refind-backend/internal/storage"
	"github.com/refind-app/refind-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init(cfg.LogLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	imageStorage, err := storage.NewImageStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	itemRepo := repository.NewItemRepository(dbConn)
	claimRepo := repository.NewClaimRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	itemService := service.NewItemService(itemRepo)
	claimService := service.NewClaimService(claimRepo, itemRepo, userRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	adminService := service.NewAdminService(userRepo, itemRepo, claimRepo)

	if err := seedAdmin(ctx, cfg, userRepo); err != nil {
		log.Fatalf("main: не удалось создать администратора: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	claimService.SetHub(hub)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	itemHandler := httpHandlers.NewItemHandler(itemService, imageStorage)
	claimHandler := httpHandlers.NewClaimHandler(claimService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	adminHandler := httpHandlers.NewAdminHandler(adminService, itemService, imageStorage)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		itemHandler,
		claimHandler,
		notificationHandler,
		adminHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// seedAdmin создаёт учётную запись администратора из переменных окружения,
// если её ещё нет.
func seedAdmin(ctx context.Context, cfg *config.Config, users *repository.UserRepository) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: string(passHash),
		Role:         models.RoleAdmin,
	}

	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("main: создан администратор %s", cfg.AdminEmail)
	return nil
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
