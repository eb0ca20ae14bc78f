package main

import (
	"context"
	"log"

	api "taskpulse-backend/cmd/api"
	authdomain "taskpulse-backend/internal/auth/domain"
	authRepo "taskpulse-backend/internal/auth/repository"
	authUsecase "taskpulse-backend/internal/auth/usecase"
	"taskpulse-backend/internal/notification"
	"taskpulse-backend/internal/reminder"
	"taskpulse-backend/internal/reward"
	"taskpulse-backend/internal/settings"
	taskdomain "taskpulse-backend/internal/task/domain"
	taskRepo "taskpulse-backend/internal/task/repository"
	taskUsecase "taskpulse-backend/internal/task/usecase"
	"taskpulse-backend/pkg/config"
	"taskpulse-backend/pkg/database"
	"taskpulse-backend/pkg/fcm"
	"taskpulse-backend/pkg/sse"

	"github.com/redis/go-redis/v9"
)

// deferredKicker breaks the construction cycle between the task usecase
// (which kicks the scheduler) and the scheduler (which reads task state
// back through the usecase).
type deferredKicker struct {
	scheduler *reminder.Scheduler
}

func (k *deferredKicker) Kick(userID string) {
	if k.scheduler != nil {
		k.scheduler.Kick(userID)
	}
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.DeviceToken{},
		&taskdomain.Task{},
		&reward.LuckCounter{},
		&settings.Settings{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	deviceTokenRepo := authRepo.NewDeviceTokenRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	settingsRepo := settings.NewGormRepository(db)
	luckCounter := reward.NewGormCounter(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()

	// Initialize FCM client (optional, reminders degrade to planning only)
	var sender notification.Sender
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			sender = fcmClient
		}
	} else {
		log.Println("[WARN] No Firebase credentials configured, push notifications disabled")
	}

	// Initialize notification dispatcher
	notifService := notification.NewService(sender, deviceTokenRepo, cfg.DispatchInterval)
	notifService.Start()

	// Plan cache: Redis when configured, in-process otherwise
	var planCache reminder.PlanCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		planCache = reminder.NewRedisPlanCache(redisClient)
		log.Printf("[Reminder] Using Redis plan cache at %s", cfg.RedisAddr)
	} else {
		planCache = reminder.NewMemoryPlanCache()
		log.Println("[Reminder] Using in-memory plan cache")
	}

	// Initialize use cases (dependency injection)
	kicker := &deferredKicker{}
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	taskUsecaseInstance := taskUsecase.NewTaskUsecase(taskRepository, settingsRepo, luckCounter, kicker, sseManager)

	// Reminder scheduler reads state back through the task usecase
	scheduler := reminder.NewScheduler(planCache, notifService, taskUsecaseInstance)
	kicker.scheduler = scheduler
	go scheduler.Run(context.Background())

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, taskUsecaseInstance, settingsRepo, deviceTokenRepo, scheduler, sseManager, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
