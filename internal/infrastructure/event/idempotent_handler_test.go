package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	keys    map[string]bool
	readErr error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return false, s.readErr
	}
	return s.keys[key], nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := newTestHandler("TestEvent")
	h := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())
	event := newTestEvent("TestEvent", uuid.New())

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, inner.getHandled(), 1)
	stats := h.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_FailureStaysRetryable(t *testing.T) {
	inner := newTestHandler("TestEvent")
	inner.err = errors.New("transient")
	h := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop())
	event := newTestEvent("TestEvent", uuid.New())

	require.Error(t, h.Handle(context.Background(), event))
	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, inner.getHandled(), 2)
	assert.Equal(t, int64(1), h.GetMetrics().Stats().EventsFailed)
}

func TestIdempotentHandler_PrefixesSeparateHandlers(t *testing.T) {
	store := newMemoryIdempotencyStore()
	first, second := newTestHandler("TestEvent"), newTestHandler("TestEvent")

	cfg := DefaultIdempotencyConfig()
	cfg.KeyPrefix = "payments"
	a := NewIdempotentHandler(first, store, zap.NewNop(), WithIdempotencyConfig(cfg))
	cfg.KeyPrefix = "payables"
	b := NewIdempotentHandler(second, store, zap.NewNop(), WithIdempotencyConfig(cfg))

	event := newTestEvent("TestEvent", uuid.New())
	require.NoError(t, a.Handle(context.Background(), event))
	require.NoError(t, b.Handle(context.Background(), event))

	assert.Len(t, first.getHandled(), 1)
	assert.Len(t, second.getHandled(), 1)
}

func TestIdempotentHandler_StoreErrorProcessesAnyway(t *testing.T) {
	store := newMemoryIdempotencyStore()
	store.readErr = errors.New("redis down")
	inner := newTestHandler("TestEvent")
	h := NewIdempotentHandler(inner, store, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), newTestEvent("TestEvent", uuid.New())))
	assert.Len(t, inner.getHandled(), 1)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := newTestHandler("TestEvent")
	metrics := &IdempotencyMetrics{}
	h := NewIdempotentHandler(inner, newMemoryIdempotencyStore(), zap.NewNop(),
		WithIdempotencyConfig(IdempotencyConfig{Enabled: false}),
		WithIdempotencyMetrics(metrics),
	)
	event := newTestEvent("TestEvent", uuid.New())

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Len(t, inner.getHandled(), 2)
	assert.Equal(t, []string{"TestEvent"}, h.EventTypes())
}
