package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	mock_shared "github.com/travelops/backoffice/internal/domain/shared/mocks"
)

func newIdempotencyEngine(store *mock_shared.MockIdempotencyStore, tenantID uuid.UUID, status int) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, tenantID.String())
		c.Next()
	})
	engine.Use(Idempotency(IdempotencyConfig{Store: store, TTL: time.Hour}))
	handler := func(c *gin.Context) { c.Status(status) }
	engine.POST("/receipts", handler)
	engine.GET("/receipts", handler)
	return engine
}

func idempotentRequest(method, key string) *http.Request {
	req := httptest.NewRequest(method, "/receipts", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotency(t *testing.T) {
	tenantID := uuid.New()
	storeKey := "http:" + tenantID.String() + ":key-1"

	t.Run("first use records the key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)
		gomock.InOrder(
			store.EXPECT().IsProcessed(gomock.Any(), storeKey).Return(false, nil),
			store.EXPECT().MarkProcessed(gomock.Any(), storeKey, time.Hour).Return(true, nil),
		)

		w := serve(newIdempotencyEngine(store, tenantID, http.StatusCreated), idempotentRequest(http.MethodPost, "key-1"))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("replay is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)
		store.EXPECT().IsProcessed(gomock.Any(), storeKey).Return(true, nil)

		w := serve(newIdempotencyEngine(store, tenantID, http.StatusCreated), idempotentRequest(http.MethodPost, "key-1"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "DUPLICATE_REQUEST")
	})

	t.Run("failed request leaves the key unused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)
		store.EXPECT().IsProcessed(gomock.Any(), storeKey).Return(false, nil)
		store.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := serve(newIdempotencyEngine(store, tenantID, http.StatusUnprocessableEntity), idempotentRequest(http.MethodPost, "key-1"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("store outage does not block requests", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)
		store.EXPECT().IsProcessed(gomock.Any(), storeKey).Return(false, errors.New("redis: connection refused"))
		store.EXPECT().MarkProcessed(gomock.Any(), storeKey, time.Hour).Return(false, errors.New("redis: connection refused"))

		w := serve(newIdempotencyEngine(store, tenantID, http.StatusOK), idempotentRequest(http.MethodPost, "key-1"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requests without a key or not POST skip the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)

		engine := newIdempotencyEngine(store, tenantID, http.StatusOK)
		assert.Equal(t, http.StatusOK, serve(engine, idempotentRequest(http.MethodPost, "")).Code)
		assert.Equal(t, http.StatusOK, serve(engine, idempotentRequest(http.MethodGet, "key-1")).Code)
	})

	t.Run("oversized key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		store := mock_shared.NewMockIdempotencyStore(ctrl)

		w := serve(newIdempotencyEngine(store, tenantID, http.StatusOK), idempotentRequest(http.MethodPost, strings.Repeat("k", 129)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
