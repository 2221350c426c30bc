package cache

import (
	"context"
	"testing"
	"time"

	"github.com/storeadmin/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestInMemoryReportCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryReportCache()

	var got []cachedPoint
	found, err := c.Get(ctx, "total-users", &got)
	require.NoError(t, err)
	assert.False(t, found)

	want := []cachedPoint{{Name: "1 May", Value: 3}, {Name: "2 May", Value: 0}}
	require.NoError(t, c.Set(ctx, "total-users", want, time.Minute))

	found, err = c.Get(ctx, "total-users", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx, "total-users"))
	found, err = c.Get(ctx, "total-users", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryReportCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryReportCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	c.now = func() time.Time { return now.Add(2 * time.Minute) }

	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryReportCache_DecodeError(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryReportCache()
	require.NoError(t, c.Set(ctx, "k", "text", 0))

	var v int
	_, err := c.Get(ctx, "k", &v)
	assert.Error(t, err)
}

func TestFactory_DisabledRedisFallsBack(t *testing.T) {
	f := NewFactory(config.RedisConfig{Enabled: false})
	client, err := f.Client(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.IsType(t, &InMemoryReportCache{}, f.ReportCache(client))
}

func TestFactory_UnreachableRedis(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	client, err := NewFactory(cfg).Client(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = NewFactory(cfg, WithInMemoryFallback(false)).Client(context.Background())
	assert.Error(t, err)
}
