package model

import "time"

// DailySummary is a per-user snapshot of task progress, recomputed
// whenever the summary endpoint is hit for the current day
type DailySummary struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string    `gorm:"index;not null" json:"-"`
	Date              time.Time `gorm:"index;not null" json:"date"`
	CompletedTasks    int       `gorm:"default:0" json:"completed_tasks"`
	PendingTasks      int       `gorm:"default:0" json:"pending_tasks"`
	ProductivityScore float64   `gorm:"default:0" json:"productivity_score"`
}
