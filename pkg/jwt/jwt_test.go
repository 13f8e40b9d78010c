package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken("uid-1", "Rahul", "https://example.com/r.png")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UserID)
	assert.Equal(t, "uid-1", claims.Subject)
	assert.Equal(t, "Rahul", claims.DisplayName)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret", time.Hour).GenerateToken("uid-1", "", "")
	require.NoError(t, err)

	_, err = NewManager("other", time.Hour).ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	token, err := m.GenerateToken("uid-1", "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestManager_RejectsGarbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).ValidateToken("uid-1")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
