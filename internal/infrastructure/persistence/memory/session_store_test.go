package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Blacklist(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.AddToBlacklist(ctx, "tok", time.Minute))
	in, err := s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, in)

	now = now.Add(2 * time.Minute)
	in, err = s.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, in, "过期后自动移出黑名单")
}

func TestSessionStore_Session(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore()

	require.NoError(t, s.SaveSession(ctx, "u1", map[string]interface{}{"role": "USER"}, time.Hour))
	data, ok := s.GetSession(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "USER", data["role"])

	role, err := s.GetSessionField(ctx, "u1", "role")
	require.NoError(t, err)
	assert.Equal(t, "USER", role)
	missing, err := s.GetSessionField(ctx, "u1", "refresh_id")
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, s.DeleteSession(ctx, "u1"))
	_, ok = s.GetSession(ctx, "u1")
	assert.False(t, ok)
}
