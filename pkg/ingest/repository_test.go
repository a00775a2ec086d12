package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grantboard/ingest-worker/pkg/ingest"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func intPtr(v int64) *int64 { return &v }

func TestRepositoryUpsertIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := ingest.NewRepository(db)
	require.NoError(t, repo.AutoMigrate())
	ctx := context.Background()

	first := &ingest.GrantRecord{
		GrantID:      "grant-1",
		Title:        "Great opportunity",
		AwardCeiling: intPtr(98765),
		OpenDate:     "2023-06-05",
		CloseDate:    "2024-01-02",
		Status:       ingest.StatusInbox,
	}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &ingest.GrantRecord{
		GrantID:      "grant-1",
		Title:        "Great opportunity (amended)",
		AwardCeiling: intPtr(50000),
		AwardFloor:   intPtr(1000),
		OpenDate:     "2023-06-05",
		CloseDate:    ingest.SentinelCloseDate,
		Status:       ingest.StatusInbox,
	}
	require.NoError(t, repo.Upsert(ctx, second))

	var count int64
	require.NoError(t, db.Model(&ingest.GrantRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored ingest.GrantRecord
	require.NoError(t, db.First(&stored, "grant_id = ?", "grant-1").Error)
	assert.Equal(t, "Great opportunity (amended)", stored.Title)
	require.NotNil(t, stored.AwardCeiling)
	assert.Equal(t, int64(50000), *stored.AwardCeiling)
	require.NotNil(t, stored.AwardFloor)
	assert.Equal(t, int64(1000), *stored.AwardFloor)
	assert.Equal(t, ingest.SentinelCloseDate, stored.CloseDate)
}

func TestRepositoryUpsertKeepsDistinctGrants(t *testing.T) {
	db := setupTestDB(t)
	repo := ingest.NewRepository(db)
	require.NoError(t, repo.AutoMigrate())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &ingest.GrantRecord{GrantID: "grant-1", OpenDate: "2023-06-05"}))
	require.NoError(t, repo.Upsert(ctx, &ingest.GrantRecord{GrantID: "grant-2", OpenDate: "2023-06-06"}))

	var count int64
	require.NoError(t, db.Model(&ingest.GrantRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
