package service

import (
	"path/filepath"
	"testing"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	viper.Set("otp.ttl", 10)
	viper.Set("otp.resend_cooldown", 60)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		model.User{},
		model.OneTimePasscode{},
		model.ResendRequest{},
		model.Task{},
		model.Event{},
		model.Roadmap{},
		model.RoadmapStep{},
		model.DailySummary{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
