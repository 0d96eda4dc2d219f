package service

import (
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PasscodeCleanup periodically removes ledger rows that can't do
// anything anymore: unused codes past their TTL and consumed reset
// codes whose capability window has passed
func PasscodeCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Passcode cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			cutoff := time.Now().Add(-PasscodeTTL())

			r := db.
				Where("(used = ? AND created_at < ?) OR (used = ? AND consumed_at < ?)",
					false, cutoff, true, cutoff).
				Delete(model.OneTimePasscode{})
			if r.Error != nil {
				zap.L().Error("Failed to cleanup passcodes", zap.Error(r.Error))
				continue
			}

			if r.RowsAffected > 0 {
				zap.L().Debug("Cleaned up stale passcodes", zap.Int64("rows", r.RowsAffected))
			}
		}
	}()
}
