// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	// Active flips to true exactly once, when the registration code
	// is verified. An inactive row is a pending registration and gets
	// reused if the same address registers again
	Active    bool      `gorm:"default:false" json:"active"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tasks    []Task    `gorm:"foreignKey:UserID" json:"-"`
	Events   []Event   `gorm:"foreignKey:UserID" json:"-"`
	Roadmaps []Roadmap `gorm:"foreignKey:UserID" json:"-"`
}
