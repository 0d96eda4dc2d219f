package model

import "time"

const (
	PasscodePurposeRegister = "register"
	PasscodePurposeReset    = "reset"
)

// OneTimePasscode is a short-lived 6-digit code mailed to an address
// to prove control over it. Stored as text so leading zeros survive.
// Rows are superseded when a new code is issued for the same address
// and purpose, so at most one usable code exists per address at a time.
type OneTimePasscode struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Email      string `gorm:"index;not null"`
	Code       string `gorm:"size:6;not null"`
	Purpose    string `gorm:"index;default:register"`
	Used       bool   `gorm:"default:false"`
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
