package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
)

type tracedRow struct {
	ID   int
	Name string
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDBTracingPlugin_RecordsSpans(t *testing.T) {
	sr := setupTestTracer(t)
	db := openSQLite(t)

	cfg := telemetry.DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.SlowQueryThresh = 0
	require.NoError(t, telemetry.NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	ctx, span := telemetry.StartSpan(context.Background(), "test.parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{ID: 1, Name: "a"}).Error)
	var rows []tracedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	var dbSpans int
	for _, s := range sr.Ended() {
		if s.Parent().SpanID() == span.SpanContext().SpanID() {
			dbSpans++
		}
	}
	assert.GreaterOrEqual(t, dbSpans, 2)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), zap.NewNop()).Register(db))
	assert.NoError(t, db.Create(&tracedRow{ID: 1}).Error)
}
