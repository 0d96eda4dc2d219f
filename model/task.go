package model

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

type Task struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string `gorm:"index;not null" json:"-"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `json:"description"`
	Status      string `gorm:"size:20;default:pending" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
