package cache

import (
	"context"
	"strings"
	"testing"

	"product-catalog/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisInvalidator_RemovesKey(t *testing.T) {
	mr, client := newTestClient(t)
	require.NoError(t, mr.Set("all_products", `[{"name":"Kindle"}]`))
	require.NoError(t, mr.Set("other", "kept"))

	err := NewRedisInvalidator(client).Remove(context.Background(), "all_products")
	require.NoError(t, err)

	assert.False(t, mr.Exists("all_products"))
	assert.True(t, mr.Exists("other"))
}

func TestRedisInvalidator_MissingKeyIsNotAnError(t *testing.T) {
	_, client := newTestClient(t)

	assert.NoError(t, NewRedisInvalidator(client).Remove(context.Background(), "all_products"))
}

func TestRedisInvalidator_ReportsBackendFailure(t *testing.T) {
	mr, client := newTestClient(t)
	mr.SetError("server is unavailable")

	err := NewRedisInvalidator(client).Remove(context.Background(), "all_products")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "all_products"))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
