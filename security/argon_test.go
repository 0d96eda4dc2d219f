package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArgonRoundTrip(t *testing.T) {
	a := NewArgon()

	hash, err := a.GenerateFromPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := a.VerifyPasswd("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = a.VerifyPasswd("wrong password", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestArgonHashesAreSalted(t *testing.T) {
	a := NewArgon()

	h1, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	h2, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	require.NotEqual(t, h1, h2)
}

func TestVerifyPasswd_MalformedHash(t *testing.T) {
	a := NewArgon()

	_, err := a.VerifyPasswd("pw", "not-a-hash")
	require.ErrorIs(t, err, ErrInvalidHashFormat)
}
