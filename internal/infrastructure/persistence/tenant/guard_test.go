package tenant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type scopedRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null"`
	Name     string
}

type globalRow struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&scopedRow{}, &globalRow{}))
	require.NoError(t, NewGuard().Register(db))
	return db
}

func TestGuard_RejectsUnscopedStatements(t *testing.T) {
	db := setupDB(t)

	var rows []scopedRow
	err := db.Find(&rows).Error
	assert.ErrorIs(t, err, ErrTenantScopeMissing)

	err = db.Model(&scopedRow{}).Where("name = ?", "x").Update("name", "y").Error
	assert.ErrorIs(t, err, ErrTenantScopeMissing)

	err = db.Where("name = ?", "x").Delete(&scopedRow{}).Error
	assert.ErrorIs(t, err, ErrTenantScopeMissing)

	var count int64
	err = db.Model(&scopedRow{}).Count(&count).Error
	assert.ErrorIs(t, err, ErrTenantScopeMissing)
}

func TestGuard_AllowsScopedAndExemptStatements(t *testing.T) {
	db := setupDB(t)
	tenantA, tenantB := uuid.New(), uuid.New()

	require.NoError(t, db.Create(&scopedRow{ID: uuid.New(), TenantID: tenantA, Name: "a"}).Error)
	require.NoError(t, db.Create(&scopedRow{ID: uuid.New(), TenantID: tenantB, Name: "b"}).Error)

	var rows []scopedRow
	require.NoError(t, db.Scopes(Scope(tenantA)).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0].Name)

	var all []scopedRow
	require.NoError(t, SkipGuard(db).Find(&all).Error)
	assert.Len(t, all, 2)

	var globals []globalRow
	assert.NoError(t, db.Find(&globals).Error)
}

func TestGuard_ScopedUpdateDoesNotCrossTenants(t *testing.T) {
	db := setupDB(t)
	tenantA, tenantB := uuid.New(), uuid.New()
	rowB := scopedRow{ID: uuid.New(), TenantID: tenantB, Name: "b"}
	require.NoError(t, db.Create(&rowB).Error)

	res := db.Scopes(Scope(tenantA)).Model(&scopedRow{}).Where("id = ?", rowB.ID).Update("name", "hijacked")
	require.NoError(t, res.Error)
	assert.Zero(t, res.RowsAffected)

	var reloaded scopedRow
	require.NoError(t, db.Scopes(Scope(tenantB)).First(&reloaded, "id = ?", rowB.ID).Error)
	assert.Equal(t, "b", reloaded.Name)
}

func TestScope_NilTenant(t *testing.T) {
	db := setupDB(t)

	var rows []scopedRow
	err := db.Scopes(Scope(uuid.Nil)).Find(&rows).Error
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}
