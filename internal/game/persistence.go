package game

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/models"
)

// SnapshotPersister 快照持久化接口
// Load返回原始文档JSON，损坏数据留给解码层归类处理。
type SnapshotPersister interface {
	Save(ctx context.Context, sessionID string, doc *SnapshotDocument) error
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemorySnapshotPersister 内存持久化（用于测试）
type MemorySnapshotPersister struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySnapshotPersister 创建内存持久化器
func NewMemorySnapshotPersister() *MemorySnapshotPersister {
	return &MemorySnapshotPersister{docs: make(map[string][]byte)}
}

// Save 保存快照
func (p *MemorySnapshotPersister) Save(ctx context.Context, sessionID string, doc *SnapshotDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrSnapshotPersist)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[sessionID] = raw
	return nil
}

// Load 加载快照
func (p *MemorySnapshotPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	raw, exists := p.docs[sessionID]
	if !exists {
		return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, "session: %s", sessionID)
	}
	return append([]byte{}, raw...), nil
}

// Delete 删除快照
func (p *MemorySnapshotPersister) Delete(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.docs, sessionID)
	return nil
}

// DatabaseSnapshotPersister gorm快照持久化
type DatabaseSnapshotPersister struct {
	db *gorm.DB
}

// NewDatabaseSnapshotPersister 创建数据库持久化器
func NewDatabaseSnapshotPersister(db *gorm.DB) *DatabaseSnapshotPersister {
	return &DatabaseSnapshotPersister{db: db}
}

// Save 保存快照到数据库（Upsert）
func (p *DatabaseSnapshotPersister) Save(ctx context.Context, sessionID string, doc *SnapshotDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrSnapshotPersist)
	}

	row := &models.GameSnapshot{
		SessionID: sessionID,
		Version:   doc.Version,
		StateData: string(raw),
		UpdatedAt: time.Now(),
	}
	if doc.State != nil {
		row.QuestStage = doc.State.QuestStage
		row.TurnCount = doc.State.TurnCount
		row.GameOver = doc.State.GameOver
	}

	result := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Assign(models.GameSnapshot{
			Version:    row.Version,
			QuestStage: row.QuestStage,
			TurnCount:  row.TurnCount,
			GameOver:   row.GameOver,
			StateData:  row.StateData,
			UpdatedAt:  row.UpdatedAt,
		}).
		FirstOrCreate(row)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrSnapshotPersist)
	}
	return nil
}

// Load 从数据库加载快照
func (p *DatabaseSnapshotPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var row models.GameSnapshot
	result := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&row)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, "session: %s", sessionID)
		}
		return nil, apperrors.Wrap(result.Error, apperrors.ErrDatabaseQuery)
	}
	return []byte(row.StateData), nil
}

// Delete 从数据库删除快照（幂等）
func (p *DatabaseSnapshotPersister) Delete(ctx context.Context, sessionID string) error {
	result := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Unscoped().
		Delete(&models.GameSnapshot{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, apperrors.ErrDatabaseDelete)
	}
	return nil
}

// snapshotKeyPrefix Redis快照键前缀
const snapshotKeyPrefix = "byteworld:snapshot:"

// RedisSnapshotPersister Redis快照持久化，带TTL
type RedisSnapshotPersister struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotPersister 创建Redis持久化器
func NewRedisSnapshotPersister(client *redis.Client, ttl time.Duration) *RedisSnapshotPersister {
	return &RedisSnapshotPersister{client: client, ttl: ttl}
}

// Save 保存快照到Redis
func (p *RedisSnapshotPersister) Save(ctx context.Context, sessionID string, doc *SnapshotDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrSnapshotPersist)
	}
	if err := p.client.Set(ctx, snapshotKeyPrefix+sessionID, raw, p.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCacheAccess)
	}
	return nil
}

// Load 从Redis加载快照
func (p *RedisSnapshotPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := p.client.Get(ctx, snapshotKeyPrefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.Newf(apperrors.ErrSnapshotNotFound, "session: %s", sessionID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCacheAccess)
	}
	return raw, nil
}

// Delete 从Redis删除快照
func (p *RedisSnapshotPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, snapshotKeyPrefix+sessionID).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCacheAccess)
	}
	return nil
}

// CacheSnapshotPersister 缓存+存储两层持久化（装饰器）
// 缓存层读写失败不影响主流程。
type CacheSnapshotPersister struct {
	cache   SnapshotPersister
	storage SnapshotPersister
}

// NewCacheSnapshotPersister 创建带缓存的持久化器
func NewCacheSnapshotPersister(cache, storage SnapshotPersister) *CacheSnapshotPersister {
	return &CacheSnapshotPersister{cache: cache, storage: storage}
}

// Save 先写存储层，再尽力写缓存层
func (p *CacheSnapshotPersister) Save(ctx context.Context, sessionID string, doc *SnapshotDocument) error {
	if err := p.storage.Save(ctx, sessionID, doc); err != nil {
		return err
	}
	_ = p.cache.Save(ctx, sessionID, doc)
	return nil
}

// Load 优先读缓存，未命中回源并回填
func (p *CacheSnapshotPersister) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if raw, err := p.cache.Load(ctx, sessionID); err == nil {
		return raw, nil
	}

	raw, err := p.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var doc SnapshotDocument
	if json.Unmarshal(raw, &doc) == nil {
		_ = p.cache.Save(ctx, sessionID, &doc)
	}
	return raw, nil
}

// Delete 两层一起删
func (p *CacheSnapshotPersister) Delete(ctx context.Context, sessionID string) error {
	_ = p.cache.Delete(ctx, sessionID)
	return p.storage.Delete(ctx, sessionID)
}
