package model

import "time"

// ResendRequest tracks when a code was last mailed to an address so
// resend and reset requests can be throttled per email
type ResendRequest struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Email      string `gorm:"uniqueIndex;not null"`
	LastResend time.Time
}
