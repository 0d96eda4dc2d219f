package service

import (
	"errors"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// ResendCooldown returns how long an address has to wait before the
// next code can be mailed, or zero when a send is allowed right now
func ResendCooldown(db *gorm.DB, email string) (time.Duration, error) {
	var record model.ResendRequest

	err := db.Where("email = ?", email).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	cooldown := time.Duration(viper.GetInt("otp.resend_cooldown")) * time.Second

	remaining := cooldown - time.Since(record.LastResend)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}

// TouchResend records that a code was just mailed to the address
func TouchResend(db *gorm.DB, email string) error {
	var record model.ResendRequest

	err := db.Where("email = ?", email).First(&record).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return db.Create(&model.ResendRequest{
			Email:      email,
			LastResend: time.Now(),
		}).Error
	}

	return db.Model(&record).Update("last_resend", time.Now()).Error
}
