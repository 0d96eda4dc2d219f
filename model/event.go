package model

import "time"

type Event struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string    `gorm:"index;not null" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Completed   bool      `gorm:"default:false" json:"is_completed"`
	// Optional link back to a task so the scheduler can show what a
	// block of time was reserved for
	LinkedTaskID *uint     `json:"linked_task,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
