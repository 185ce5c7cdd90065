package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
)

func TestSnapshotRepository_FindBySessionID(t *testing.T) {
	db := TestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	row := CreateTestSnapshot("sess-1", "awakening", 3)
	require.NoError(t, db.Create(row).Error)

	found, err := repo.FindBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, row.SessionID, found.SessionID)
	assert.Equal(t, row.QuestStage, found.QuestStage)
	assert.Equal(t, row.TurnCount, found.TurnCount)
	assert.Equal(t, row.StateData, found.StateData)

	// 不存在的会话
	_, err = repo.FindBySessionID(ctx, "no-such-session")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSnapshotNotFound, apperrors.GetCode(err))
}

func TestSnapshotRepository_CountActive(t *testing.T) {
	db := TestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(CreateTestSnapshot("sess-fresh", "awakening", 1)).Error)
	require.NoError(t, db.Create(CreateTestSnapshot("sess-stale", "awakening", 1)).Error)
	BackdateSnapshot(t, db, "sess-stale", time.Now().Add(-48*time.Hour))

	count, err := repo.CountActive(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountActive(ctx, time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSnapshotRepository_StageDistribution(t *testing.T) {
	db := TestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(CreateTestSnapshot("sess-1", "awakening", 1)).Error)
	require.NoError(t, db.Create(CreateTestSnapshot("sess-2", "awakening", 5)).Error)
	require.NoError(t, db.Create(CreateTestSnapshot("sess-3", "swamp_secret", 20)).Error)

	dist, err := repo.StageDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dist["awakening"])
	assert.Equal(t, int64(1), dist["swamp_secret"])
}

func TestSnapshotRepository_PurgeOlderThan(t *testing.T) {
	db := TestDB(t)
	repo := NewSnapshotRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(CreateTestSnapshot("sess-keep", "awakening", 1)).Error)
	require.NoError(t, db.Create(CreateTestSnapshot("sess-old", "awakening", 1)).Error)
	BackdateSnapshot(t, db, "sess-old", time.Now().Add(-30*24*time.Hour))

	purged, err := repo.PurgeOlderThan(ctx, time.Now().Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// 活跃行保留，过期行物理删除
	_, err = repo.FindBySessionID(ctx, "sess-keep")
	assert.NoError(t, err)
	_, err = repo.FindBySessionID(ctx, "sess-old")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSnapshotNotFound, apperrors.GetCode(err))
}
