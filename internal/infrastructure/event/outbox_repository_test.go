package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/travelops/backoffice/internal/domain/shared"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/models"
	"github.com/travelops/backoffice/internal/infrastructure/persistence/tenant"
)

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.OutboxEntryModel{}))
	require.NoError(t, tenant.NewGuard().Register(db))
	return db
}

func newEntry(t *testing.T) *shared.OutboxEntry {
	t.Helper()
	return shared.NewOutboxEntry(newTestEvent("TestEvent", uuid.New()), []byte(`{"data":"x"}`))
}

func TestGormOutboxRepository_SaveAndFindPending(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	first, second := newEntry(t), newEntry(t)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, second, first))

	pending, err := repo.FindPending(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestGormOutboxRepository_SaveEmpty(t *testing.T) {
	repo := NewGormOutboxRepository(setupOutboxDB(t))
	assert.NoError(t, repo.Save(context.Background()))
}

func TestGormOutboxRepository_FindPendingIncludesDueRetries(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	due := newEntry(t)
	due.MarkFailed("timeout")
	past := time.Now().Add(-time.Minute)
	due.NextRetryAt = &past

	later := newEntry(t)
	later.MarkFailed("timeout")
	future := time.Now().Add(time.Hour)
	later.NextRetryAt = &future

	dead := newEntry(t)
	dead.Status = shared.OutboxStatusDead

	require.NoError(t, repo.Save(ctx, due, later, dead))

	found, err := repo.FindPending(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, due.ID, found[0].ID)
}

func TestGormOutboxRepository_MarkProcessing(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	entry := newEntry(t)
	require.NoError(t, repo.Save(ctx, entry))

	claimed, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, shared.OutboxStatusProcessing, claimed[0].Status)

	again, err := repo.MarkProcessing(ctx, []uuid.UUID{entry.ID})
	require.NoError(t, err)
	assert.Empty(t, again)

	none, err := repo.MarkProcessing(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGormOutboxRepository_UpdateAndCleanup(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	sent, fresh := newEntry(t), newEntry(t)
	require.NoError(t, repo.Save(ctx, sent, fresh))

	sent.MarkSent()
	old := time.Now().Add(-48 * time.Hour)
	sent.ProcessedAt = &old
	require.NoError(t, repo.Update(ctx, sent))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
	assert.Equal(t, int64(1), counts[shared.OutboxStatusPending])

	deleted, err := repo.DeleteSentBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestGormOutboxRepository_FindDead(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	ctx := context.Background()

	entry := newEntry(t)
	entry.MaxRetries = 1
	entry.MarkFailed("bad payload")
	require.True(t, entry.IsDead())
	require.NoError(t, repo.Save(ctx, entry, newEntry(t)))

	dead, total, err := repo.FindDead(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, dead, 1)
	assert.Equal(t, "bad payload", dead[0].LastError)
}

func TestOutboxPublisher_PublishWithTx(t *testing.T) {
	db := setupOutboxDB(t)
	serializer := NewEventSerializer()
	publisher := NewOutboxPublisher(serializer)
	ctx := context.Background()

	tenantID := uuid.New()
	event := newTestEvent("TestEvent", tenantID)

	err := db.Transaction(func(tx *gorm.DB) error {
		return publisher.PublishWithTx(ctx, tx, event)
	})
	require.NoError(t, err)

	pending, err := NewGormOutboxRepository(db).FindPending(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, event.EventID(), pending[0].EventID)
	assert.Equal(t, tenantID, pending[0].TenantID)
	assert.Contains(t, string(pending[0].Payload), `"data":"test data"`)
}

func TestOutboxPublisher_RollbackDiscardsEntries(t *testing.T) {
	db := setupOutboxDB(t)
	publisher := NewOutboxPublisher(NewEventSerializer())
	ctx := context.Background()

	_ = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, publisher.PublishWithTx(ctx, tx, newTestEvent("TestEvent", uuid.New())))
		return assert.AnError
	})

	pending, err := NewGormOutboxRepository(db).FindPending(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
