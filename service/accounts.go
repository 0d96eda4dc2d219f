// Package service holds the core workflows behind the HTTP handlers:
// account state transitions, the passcode ledger, mail dispatch and
// roadmap generation
package service

import (
	"errors"
	"strings"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	ErrEmailTaken    = errors.New("email already exists")
	ErrUsernameTaken = errors.New("username already exists")
)

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive regardless of how the user typed it
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// FindByIdentifier looks a user up by email when the identifier
// contains an @, otherwise by username. Both fields are stored
// lowercase so normalizing the input gives case-insensitive matching.
// Returns gorm.ErrRecordNotFound when no user matches
func FindByIdentifier(db *gorm.DB, identifier string) (*model.User, error) {
	var user model.User

	identifier = strings.TrimSpace(identifier)

	q := db.Where("username = ?", NormalizeUsername(identifier))
	if strings.Contains(identifier, "@") {
		q = db.Where("email = ?", NormalizeEmail(identifier))
	}

	if err := q.First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// CreatePending creates the inactive user row for a registration, or
// reuses an existing inactive row for the same address by updating
// its username and password. The whole get-or-create runs in one
// transaction so two concurrent registrations for the same address
// can't both insert. Expects email and username already normalized
// and the password already hashed
func CreatePending(db *gorm.DB, email, username, passwordHash string) (*model.User, error) {
	var user *model.User

	err := db.Transaction(func(tx *gorm.DB) error {
		var existing model.User

		err := tx.Where("email = ?", email).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil {
			if existing.Active {
				return ErrEmailTaken
			}

			// The pending row is reused, but the new username must not
			// collide with anyone else
			var count int64
			if err := tx.Model(model.User{}).
				Where("username = ? AND email <> ?", username, email).
				Count(&count).Error; err != nil {
				return err
			}

			if count > 0 {
				return ErrUsernameTaken
			}

			existing.Username = username
			existing.PasswordHash = passwordHash
			existing.Active = false
			existing.Verified = false

			if err := tx.Save(&existing).Error; err != nil {
				return translateDuplicate(err)
			}

			user = &existing
			return nil
		}

		var count int64
		if err := tx.Model(model.User{}).
			Where("username = ?", username).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrUsernameTaken
		}

		id, err := gonanoid.Generate(idCharset, 16)
		if err != nil {
			return err
		}

		fresh := model.User{
			ID:           id,
			Email:        email,
			Username:     username,
			PasswordHash: passwordHash,
		}

		if err := tx.Create(&fresh).Error; err != nil {
			// Lost a race with a concurrent registration. The unique
			// index is the fallback, not the primary mechanism
			return translateDuplicate(err)
		}

		user = &fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func translateDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key") {
		if strings.Contains(msg, "email") {
			return ErrEmailTaken
		}

		return ErrUsernameTaken
	}

	return err
}

// Activate flips a pending user to active+verified. Already-active
// rows are left alone, which makes the call idempotent
func Activate(tx *gorm.DB, userID string) error {
	return tx.Model(model.User{}).
		Where("id = ? AND active = ?", userID, false).
		Updates(map[string]any{"active": true, "verified": true}).
		Error
}

// SetPassword persists a new password hash for the user
func SetPassword(db *gorm.DB, userID, passwordHash string) error {
	return db.Model(model.User{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash).
		Error
}
