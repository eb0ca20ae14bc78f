package reward

import "time"

// LuckCounter accumulates a user's luck points: one point per task that
// transitions into completed. Points are never revoked, even when a
// completion is later undone.
type LuckCounter struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Counter is the reward collaborator the task module calls into.
type Counter interface {
	// Increment awards one luck point and returns the new total.
	Increment(userID string) (int, error)
	// Value returns the user's current total (zero for new users).
	Value(userID string) (int, error)
}
