package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// VerifyOutcome is the result of checking a submitted code against
// the ledger
type VerifyOutcome int

const (
	// OutcomeValid means the code matched and is inside its TTL. The
	// caller still has to consume the record
	OutcomeValid VerifyOutcome = iota
	// OutcomeNotFound means no usable code exists for the address
	OutcomeNotFound
	// OutcomeMismatch means a code exists but the submitted one is wrong
	OutcomeMismatch
	// OutcomeExpired means the code matched but its TTL elapsed. The
	// record is deleted so it can't be retried
	OutcomeExpired
)

var ErrPasscodeConsumed = errors.New("passcode already consumed")

// PasscodeTTL returns the configured code lifetime
func PasscodeTTL() time.Duration {
	return time.Duration(viper.GetInt("otp.ttl")) * time.Minute
}

// GeneratePasscode returns a uniformly random 6-digit code in
// [100000, 999999], so a leading zero is impossible by construction
func GeneratePasscode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// IssuePasscode generates a fresh code for the address, deleting any
// prior codes for the same address and purpose first so at most one
// usable code exists at a time
func IssuePasscode(db *gorm.DB, email, purpose string) (*model.OneTimePasscode, error) {
	code, err := GeneratePasscode()
	if err != nil {
		return nil, err
	}

	record := model.OneTimePasscode{
		Email:   email,
		Code:    code,
		Purpose: purpose,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ? AND purpose = ?", email, purpose).
			Delete(model.OneTimePasscode{}).
			Error
		if err != nil {
			return err
		}

		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// VerifyPasscode checks a submitted code against the most recent
// unused record for the address. Codes are compared as trimmed
// strings, never numerically, so leading zeros can't cause mismatches
func VerifyPasscode(db *gorm.DB, email, submitted, purpose string) (VerifyOutcome, *model.OneTimePasscode, error) {
	var record model.OneTimePasscode

	// Issue cleans up superseded codes, but tolerate leftovers by
	// always picking the newest one
	err := db.Where("email = ? AND purpose = ? AND used = ?", email, purpose, false).
		Order("created_at DESC, id DESC").
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeNotFound, nil, nil
		}

		return OutcomeNotFound, nil, err
	}

	if strings.TrimSpace(record.Code) != strings.TrimSpace(submitted) {
		return OutcomeMismatch, nil, nil
	}

	if time.Since(record.CreatedAt) > PasscodeTTL() {
		if err := db.Delete(&record).Error; err != nil {
			return OutcomeExpired, nil, err
		}

		return OutcomeExpired, nil, nil
	}

	return OutcomeValid, &record, nil
}

// ConsumePasscode marks a record used. The conditional update makes
// consumption single-use: with two concurrent verifiers exactly one
// sees RowsAffected == 1 and the other gets ErrPasscodeConsumed
func ConsumePasscode(tx *gorm.DB, recordID uint) error {
	now := time.Now()

	r := tx.Model(model.OneTimePasscode{}).
		Where("id = ? AND used = ?", recordID, false).
		Updates(map[string]any{"used": true, "consumed_at": now})
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrPasscodeConsumed
	}

	return nil
}

// HasVerifiedReset reports whether a reset code for the address was
// consumed recently. The consumed record acts as the short-lived
// capability that authorizes the follow-up password change
func HasVerifiedReset(db *gorm.DB, email string) (bool, error) {
	var count int64

	err := db.Model(model.OneTimePasscode{}).
		Where("email = ? AND purpose = ? AND used = ? AND consumed_at > ?",
			email, model.PasscodePurposeReset, true, time.Now().Add(-PasscodeTTL())).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// RevokeVerifiedReset deletes the consumed reset records for an
// address so the capability can't be replayed after the password
// actually changes
func RevokeVerifiedReset(tx *gorm.DB, email string) error {
	return tx.Where("email = ? AND purpose = ? AND used = ?",
		email, model.PasscodePurposeReset, true).
		Delete(model.OneTimePasscode{}).
		Error
}
