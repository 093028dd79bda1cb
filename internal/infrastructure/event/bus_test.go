package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/travelops/backoffice/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string, tenantID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), tenantID),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)

	event := newTestEvent("TestEvent", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	receipts := newTestHandler()
	everything := newTestHandler()
	bus.Subscribe(receipts, "ReceiptRecorded")
	bus.Subscribe(everything)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("ReceiptRecorded", uuid.New()),
		newTestEvent("PayableCreated", uuid.New()),
	))

	assert.Len(t, receipts.getHandled(), 1)
	assert.Len(t, everything.getHandled(), 2)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New())))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_HandlerErrorsAreJoined(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("TestEvent")
	failing.err = errors.New("boom")
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_RecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	panicking := newTestHandler("TestEvent")
	panicking.panicMsg = "handler exploded"
	bus.Subscribe(panicking)

	err := bus.Publish(context.Background(), newTestEvent("TestEvent", uuid.New()))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler exploded")
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.IsRunning())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}
