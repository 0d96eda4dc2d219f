package service

import (
	"testing"
	"time"

	"github.com/planoraforstudents/PlanoraForStudents/model"

	"github.com/stretchr/testify/require"
)

func TestResendCooldown(t *testing.T) {
	db := newTestDB(t)

	// Unknown address can send right away
	remaining, err := ResendCooldown(db, "a@x.com")
	require.NoError(t, err)
	require.Zero(t, remaining)

	require.NoError(t, TouchResend(db, "a@x.com"))

	remaining, err = ResendCooldown(db, "a@x.com")
	require.NoError(t, err)
	require.Greater(t, remaining, time.Duration(0))

	// Another address is unaffected
	remaining, err = ResendCooldown(db, "b@x.com")
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestResendCooldown_Elapsed(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, TouchResend(db, "a@x.com"))

	stale := time.Now().Add(-2 * time.Minute)
	require.NoError(t, db.Model(model.ResendRequest{}).
		Where("email = ?", "a@x.com").
		Update("last_resend", stale).Error)

	remaining, err := ResendCooldown(db, "a@x.com")
	require.NoError(t, err)
	require.Zero(t, remaining)

	// Touching again restarts the window on the same row
	require.NoError(t, TouchResend(db, "a@x.com"))

	var count int64
	require.NoError(t, db.Model(model.ResendRequest{}).Where("email = ?", "a@x.com").Count(&count).Error)
	require.EqualValues(t, 1, count)
}
