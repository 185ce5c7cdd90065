package repository

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/models"
)

// TurnRecordRepository 回合审计仓储接口
type TurnRecordRepository interface {
	Create(ctx context.Context, record *models.TurnRecord) error
	FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error)
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// turnRecordRepo 回合审计仓储实现
type turnRecordRepo struct {
	*BaseRepo
}

// NewTurnRecordRepository 创建回合审计仓储
func NewTurnRecordRepository(db *gorm.DB) TurnRecordRepository {
	return &turnRecordRepo{BaseRepo: NewBaseRepo(db)}
}

// Create 写入一条回合记录
func (r *turnRecordRepo) Create(ctx context.Context, record *models.TurnRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert)
	}
	return nil
}

// FindBySessionID 按会话分页查询回合记录（新在前）
func (r *turnRecordRepo) FindBySessionID(ctx context.Context, sessionID string, p *Pagination) ([]*models.TurnRecord, error) {
	var records []*models.TurnRecord
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id DESC")

	if p != nil {
		if err := query.Model(&models.TurnRecord{}).Count(&p.Total).Error; err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
		}
		query = query.Scopes(Paginate(p))
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return records, nil
}

// CountBySessionID 会话的回合总数
func (r *turnRecordRepo) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TurnRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery)
	}
	return count, nil
}

// DeleteBySessionID 清空会话的回合记录
func (r *turnRecordRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.TurnRecord{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseDelete)
	}
	return nil
}
