package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/errors"
)

func TestLogin(t *testing.T) {
	m := NewManager("s3cret")

	_, err := m.Login("wrong")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))

	tok, err := m.Login("s3cret")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{48}$`, tok)
	assert.True(t, m.Valid(tok))
	assert.False(t, m.Valid("nope"))
	assert.False(t, m.Valid(""))
	assert.Equal(t, 1, m.Count())
}

func TestEmptyPasswordNeverMatches(t *testing.T) {
	m := NewManager("")
	_, err := m.Login("")
	assert.True(t, errors.IsUnauthorized(err))
}

func TestLogout(t *testing.T) {
	m := NewManager("pw")
	tok, err := m.Login("pw")
	require.NoError(t, err)

	assert.True(t, m.Logout(tok))
	assert.False(t, m.Valid(tok))
	assert.False(t, m.Logout(tok))
}

func TestExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager("pw", WithTTL(time.Hour), WithClock(func() time.Time { return now }))

	tok, err := m.Login("pw")
	require.NoError(t, err)
	assert.True(t, m.Valid(tok))

	now = now.Add(time.Hour)
	assert.False(t, m.Valid(tok))
	assert.Equal(t, 0, m.Count())
}
