package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestID(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEqual(t, a, b)

	_, err := ksuid.Parse(a)
	require.NoError(t, err)
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestValidUUID(t *testing.T) {
	assert.True(t, ValidUUID("0b6f1c52-4d2e-4e4f-9a63-0f9e3c7c2b11"))
	assert.False(t, ValidUUID("0b6f1c524d2e4e4f9a630f9e3c7c2b11"))
	assert.False(t, ValidUUID("{0b6f1c52-4d2e-4e4f-9a63-0f9e3c7c2b11}"))
	assert.False(t, ValidUUID("not-a-uuid"))
	assert.False(t, ValidUUID(""))
}
