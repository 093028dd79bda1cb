package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/infrastructure/config"
)

func TestIdempotencyStoreFactory_NoRedisConfigured(t *testing.T) {
	f := NewIdempotencyStoreFactory(config.RedisConfig{}, WithLogger(zap.NewNop()))

	store, err := f.CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestIdempotencyStoreFactory_FallbackWhenUnreachable(t *testing.T) {
	cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	store, err := NewIdempotencyStoreFactory(cfg).CreateStore(context.Background())
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)

	_, err = NewIdempotencyStoreFactory(cfg, WithInMemoryFallback(false)).CreateStore(context.Background())
	assert.ErrorContains(t, err, "unavailable")
}
