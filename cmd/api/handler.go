package api

import (
	authDelivery "taskpulse-backend/internal/auth/delivery"
	authRepo "taskpulse-backend/internal/auth/repository"
	authUsecasePkg "taskpulse-backend/internal/auth/usecase"
	"taskpulse-backend/internal/reminder"
	"taskpulse-backend/internal/settings"
	taskDelivery "taskpulse-backend/internal/task/delivery"
	taskUsecasePkg "taskpulse-backend/internal/task/usecase"
	"taskpulse-backend/pkg/config"
	"taskpulse-backend/pkg/sse"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecasePkg.AuthUsecase
	authHandler     *authDelivery.AuthHandler
	taskHandler     *taskDelivery.TaskHandler
	settingsHandler *SettingsHandler
	sseManager      *sse.Manager
	config          *config.Config
}

func NewHandler(
	authUc authUsecasePkg.AuthUsecase,
	taskUc taskUsecasePkg.TaskUsecase,
	settingsRepo settings.Repository,
	deviceTokenRepo authRepo.DeviceTokenRepository,
	scheduler *reminder.Scheduler,
	sseManager *sse.Manager,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:     authUc,
		authHandler:     authDelivery.NewAuthHandler(authUc, deviceTokenRepo),
		taskHandler:     taskDelivery.NewTaskHandler(taskUc),
		settingsHandler: NewSettingsHandler(settingsRepo, scheduler),
		sseManager:      sseManager,
		config:          cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.authHandler, h.taskHandler, h.settingsHandler, h.sseManager)

	return r.Run(addr)
}
