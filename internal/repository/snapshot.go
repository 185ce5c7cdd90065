package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/models"
)

// SnapshotRepository 快照行只读查询仓储（写路径走game.DatabaseSnapshotPersister）
type SnapshotRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.GameSnapshot, error)
	CountActive(ctx context.Context, since time.Time) (int64, error)
	StageDistribution(ctx context.Context) (map[string]int64, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// snapshotRepo 快照查询仓储实现
type snapshotRepo struct {
	*BaseRepo
}

// NewSnapshotRepository 创建快照查询仓储
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepo{BaseRepo: NewBaseRepo(db)}
}

// FindBySessionID 按会话查询快照行
func (r *snapshotRepo) FindBySessionID(ctx context.Context, sessionID string) (*models.GameSnapshot, error) {
	var row models.GameSnapshot
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, "session: %s", sessionID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return &row, nil
}

// CountActive 统计指定时间后仍有更新的快照数
func (r *snapshotRepo) CountActive(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GameSnapshot{}).
		Where("updated_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return count, nil
}

// stageCount 阶段聚合行
type stageCount struct {
	QuestStage string
	Count      int64
}

// StageDistribution 各任务阶段的存档分布
func (r *snapshotRepo) StageDistribution(ctx context.Context) (map[string]int64, error) {
	var rows []stageCount
	err := r.db.WithContext(ctx).
		Model(&models.GameSnapshot{}).
		Select("quest_stage, count(*) as count").
		Group("quest_stage").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}

	dist := make(map[string]int64, len(rows))
	for _, row := range rows {
		dist[row.QuestStage] = row.Count
	}
	return dist, nil
}

// PurgeOlderThan 物理删除长期未更新的快照行，返回删除数
func (r *snapshotRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Unscoped().
		Where("updated_at < ?", cutoff).
		Delete(&models.GameSnapshot{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, apperrors.ErrDatabaseDelete)
	}
	return result.RowsAffected, nil
}
