package model

import "time"

type Roadmap struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"index" json:"-"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Goal      string    `gorm:"not null" json:"goal"`
	CreatedAt time.Time `json:"created_at"`

	Steps []RoadmapStep `gorm:"foreignKey:RoadmapID;constraint:OnDelete:CASCADE" json:"steps"`
}

type RoadmapStep struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RoadmapID    uint   `gorm:"index;not null" json:"-"`
	Title        string `gorm:"size:255;not null" json:"title"`
	Description  string `json:"description"`
	Order        int    `gorm:"column:step_order;default:0" json:"order"`
	ResourceLink string `json:"resource_link,omitempty"`
	Completed    bool   `gorm:"default:false" json:"is_completed"`
}
