package reward

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormCounter implements Counter on the application database.
type gormCounter struct {
	db *gorm.DB
}

// NewGormCounter creates a database-backed luck counter.
func NewGormCounter(db *gorm.DB) Counter {
	return &gormCounter{db: db}
}

func (c *gormCounter) Increment(userID string) (int, error) {
	row := &LuckCounter{UserID: userID, Points: 1, UpdatedAt: time.Now()}
	err := c.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("luck_counters.points + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(row).Error
	if err != nil {
		return 0, err
	}
	return c.Value(userID)
}

func (c *gormCounter) Value(userID string) (int, error) {
	var row LuckCounter
	err := c.db.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.Points, nil
}
