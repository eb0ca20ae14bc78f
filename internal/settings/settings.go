package settings

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Settings are the per-user feature toggles. Both default to on; they are
// passed explicitly into the task and reminder engines rather than read as
// ambient state.
type Settings struct {
	UserID            string    `json:"user_id" gorm:"primaryKey"`
	CompletionEffects bool      `json:"completion_effects"`
	DueSoonReminders  bool      `json:"due_soon_reminders"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Defaults returns the settings a user has before ever touching them.
func Defaults(userID string) *Settings {
	return &Settings{UserID: userID, CompletionEffects: true, DueSoonReminders: true}
}

// Repository stores per-user settings.
type Repository interface {
	Get(userID string) (*Settings, error)
	Save(s *Settings) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(userID string) (*Settings, error) {
	var s Settings
	err := r.db.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Defaults(userID), nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *gormRepository) Save(s *Settings) error {
	s.UpdatedAt = time.Now()
	return r.db.Save(s).Error
}
