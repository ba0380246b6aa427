package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectError bool
	}{
		{
			name:        "invalid URL",
			url:         "invalid://url",
			expectError: true,
		},
		{
			name:        "empty URL",
			url:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", zap.NewNop())
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	key := client.KeyBuilder.KeyActiveRoute("user-1")
	require.NoError(t, client.Set(ctx, key, "route-payload", time.Minute))

	val, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "route-payload", val)

	require.NoError(t, client.Delete(ctx, key))

	_, err = client.Get(ctx, key)
	assert.True(t, IsCacheMiss(err))
}

func TestSetRespectsTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	key := client.KeyBuilder.KeyActiveRoute("user-1")
	require.NoError(t, client.Set(ctx, key, "route-payload", TTLActiveRoute))

	mr.FastForward(TTLActiveRoute + time.Second)

	_, err := client.Get(ctx, key)
	assert.True(t, IsCacheMiss(err))
}

func TestKeyBuilderPrefix(t *testing.T) {
	kb := NewKeyBuilder("test")
	assert.Equal(t, "staging", kb.GetPrefix())
	assert.Equal(t, "staging:routes:user:u-1:active", kb.KeyActiveRoute("u-1"))

	kb = NewKeyBuilder("production")
	assert.Equal(t, "prod:users:uid:u-1:profile", kb.KeyUserProfile("u-1"))
}

func TestHealth(t *testing.T) {
	_, client := setupTestRedis(t)
	assert.NoError(t, client.Health(context.Background()))
}
