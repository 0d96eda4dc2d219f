package service

import (
	"testing"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
	require.Equal(t, "alice", NormalizeUsername(" Alice "))
}

func TestCreatePending_FreshUser(t *testing.T) {
	db := newTestDB(t)

	user, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.False(t, user.Active)
	require.False(t, user.Verified)

	var count int64
	require.NoError(t, db.Model(model.User{}).Where("active = ?", true).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCreatePending_ReusesPendingRow(t *testing.T) {
	db := newTestDB(t)

	first, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)

	second, err := CreatePending(db, "a@x.com", "alice2", "hash2")
	require.NoError(t, err)

	// Same row, updated in place
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "alice2", second.Username)
	require.Equal(t, "hash2", second.PasswordHash)

	var count int64
	require.NoError(t, db.Model(model.User{}).Where("email = ?", "a@x.com").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreatePending_ActiveEmailConflict(t *testing.T) {
	db := newTestDB(t)

	user, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)
	require.NoError(t, Activate(db, user.ID))

	_, err = CreatePending(db, "a@x.com", "other", "hash2")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreatePending_UsernameConflict(t *testing.T) {
	db := newTestDB(t)

	_, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)

	// Fresh email, taken username
	_, err = CreatePending(db, "b@x.com", "alice", "hash2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// Pending re-registration can't steal another user's name either
	_, err = CreatePending(db, "b@x.com", "bob", "hash2")
	require.NoError(t, err)

	_, err = CreatePending(db, "b@x.com", "alice", "hash3")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestActivate_Idempotent(t *testing.T) {
	db := newTestDB(t)

	user, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)

	require.NoError(t, Activate(db, user.ID))
	require.NoError(t, Activate(db, user.ID))

	var got model.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&got).Error)
	require.True(t, got.Active)
	require.True(t, got.Verified)
}

func TestFindByIdentifier(t *testing.T) {
	db := newTestDB(t)

	user, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)

	byEmail, err := FindByIdentifier(db, "A@X.COM")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byName, err := FindByIdentifier(db, "Alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)

	_, err = FindByIdentifier(db, "nobody")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetPassword(t *testing.T) {
	db := newTestDB(t)

	user, err := CreatePending(db, "a@x.com", "alice", "hash1")
	require.NoError(t, err)

	require.NoError(t, SetPassword(db, user.ID, "hash2"))

	var got model.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&got).Error)
	require.Equal(t, "hash2", got.PasswordHash)
}
