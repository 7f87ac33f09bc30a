package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s, err := NewSession(7, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, uint(7), s.UserID)
	assert.Len(t, s.ID, 43)
	assert.False(t, s.Expired(time.Now()))
	assert.True(t, s.Expired(s.ExpiresAt))

	other, err := NewSession(7, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)
}
