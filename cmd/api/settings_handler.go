package api

import (
	"net/http"

	"taskpulse-backend/internal/settings"

	"github.com/gin-gonic/gin"
)

// SettingsHandler serves per-user preference toggles. Toggling
// due-soon reminders re-syncs the user's pending reminders.
type SettingsHandler struct {
	repo   settings.Repository
	kicker interface{ Kick(userID string) }
}

func NewSettingsHandler(repo settings.Repository, kicker interface{ Kick(userID string) }) *SettingsHandler {
	return &SettingsHandler{repo: repo, kicker: kicker}
}

// GetSettings returns the user's settings, defaults included
// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID := c.GetString("userID")

	s, err := h.repo.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}

type updateSettingsRequest struct {
	CompletionEffects *bool `json:"completion_effects"`
	DueSoonReminders  *bool `json:"due_soon_reminders"`
}

// UpdateSettings updates the provided toggles, leaving omitted ones alone
// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetString("userID")

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.repo.Get(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.CompletionEffects != nil {
		s.CompletionEffects = *req.CompletionEffects
	}
	if req.DueSoonReminders != nil {
		s.DueSoonReminders = *req.DueSoonReminders
	}

	if err := h.repo.Save(s); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.DueSoonReminders != nil {
		h.kicker.Kick(userID)
	}

	c.JSON(http.StatusOK, s)
}
