package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRevocationList_Tokens(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRevocationList()

	require.NoError(t, r.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := r.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = r.IsTokenRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryRevocationList_TokenEntryExpires(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRevocationList()
	now := time.Now()
	r.now = func() time.Time { return now }

	require.NoError(t, r.RevokeToken(ctx, "jti-1", time.Minute))
	r.now = func() time.Time { return now.Add(2 * time.Minute) }

	revoked, err := r.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryRevocationList_User(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRevocationList()
	now := time.Now()
	r.now = func() time.Time { return now }

	revoked, err := r.IsUserRevoked(ctx, "uid-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.RevokeUser(ctx, "uid-1", time.Hour))

	revoked, err = r.IsUserRevoked(ctx, "uid-1", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, revoked, "sessions issued before the revocation are rejected")

	revoked, err = r.IsUserRevoked(ctx, "uid-1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked, "later sessions stay valid")

	revoked, err = r.IsUserRevoked(ctx, "uid-2", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, revoked)
}
