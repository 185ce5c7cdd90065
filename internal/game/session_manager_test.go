package game

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/engine"
	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/models"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/rng"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// recordingSink 记录回合推送的测试桩
type recordingSink struct {
	sessionIDs []string
	payloads   []*Payload
}

func (s *recordingSink) PushTurn(sessionID string, payload *Payload) {
	s.sessionIDs = append(s.sessionIDs, sessionID)
	s.payloads = append(s.payloads, payload)
}

func newTestManager(t *testing.T, persister SnapshotPersister) *SessionManager {
	t.Helper()
	if persister == nil {
		persister = NewMemorySnapshotPersister()
	}
	return NewSessionManager(&SessionConfig{
		Logger:    zap.NewNop(),
		Engine:    engine.NewEngine(zap.NewNop()),
		Persister: persister,
	})
}

// 空sessionID新建会话并落盘首个快照
func TestStartSessionNew(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()
	sm := newTestManager(t, persister)

	sessionID, payload, err := sm.StartSession(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	require.NotNil(t, payload)

	require.NotNil(t, payload.Status)
	assert.Equal(t, "Wanderer", payload.Status.Name)
	assert.False(t, payload.GameOver)
	assert.NotEmpty(t, payload.ScreenHTML)
	assert.NotEmpty(t, payload.Actions)
	require.NotNil(t, payload.Location)
	assert.Equal(t, content.StartLocationID, payload.Location.ID)

	assert.Equal(t, 1, sm.ActiveSessions())

	// 首屏即有快照可恢复
	_, err = persister.Load(ctx, sessionID)
	assert.NoError(t, err)
}

// 已在内存中的会话直接命中，不重复创建
func TestStartSessionExisting(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	returnedID, payload, err := sm.StartSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, returnedID)
	require.NotNil(t, payload)
	assert.Equal(t, 1, sm.ActiveSessions())
}

// 内存未命中但持久化有快照时从快照续玩
func TestStartSessionRestore(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()

	saved := midgameState()
	require.NoError(t, persister.Save(ctx, "sess-restore", EncodeSnapshot(saved)))

	sm := newTestManager(t, persister)
	sessionID, payload, err := sm.StartSession(ctx, "sess-restore")
	require.NoError(t, err)
	assert.Equal(t, "sess-restore", sessionID)
	require.NotNil(t, payload)

	assert.Contains(t, payload.Notes, "Saved game restored.")
	assert.Equal(t, "Tester", payload.Status.Name)
	assert.Equal(t, 3, payload.Status.Level)
	assert.Equal(t, "swamp", payload.Location.ID)

	sm.mu.RLock()
	session := sm.sessions["sess-restore"]
	sm.mu.RUnlock()
	require.NotNil(t, session)
	assert.Equal(t, 17, session.State.TurnCount)
	assert.Equal(t, content.StageSwampSecret, session.State.QuestStage)
}

// 损坏快照按不存在处理，开新局并被动告知
func TestStartSessionCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()
	persister.docs["sess-corrupt"] = []byte(`{broken json`)

	sm := newTestManager(t, persister)
	sessionID, payload, err := sm.StartSession(ctx, "sess-corrupt")
	require.NoError(t, err)
	assert.Equal(t, "sess-corrupt", sessionID)
	require.NotNil(t, payload)

	assert.Contains(t, payload.Notes, "Saved game could not be restored; starting fresh.")
	assert.Equal(t, content.StartLocationID, payload.Location.ID)
	assert.Equal(t, 1, payload.Status.Level)
}

// 会话数量上限
func TestStartSessionLimit(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(&SessionConfig{
		Logger:      zap.NewNop(),
		Engine:      engine.NewEngine(zap.NewNop()),
		MaxSessions: 1,
	})

	_, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	_, _, err = sm.StartSession(ctx, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSessionLimit, apperrors.GetCode(err))
}

// 一条命令推进一回合并落盘快照
func TestSubmitCommand(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()
	sm := newTestManager(t, persister)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	sm.mu.RLock()
	session := sm.sessions[sessionID]
	sm.mu.RUnlock()
	session.State.RNG = rng.NewSeeded(7)

	payload, err := sm.SubmitCommand(ctx, sessionID, "move east")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "forest", payload.Location.ID)
	assert.Equal(t, 1, session.State.TurnCount)
	assert.Equal(t, 1, session.TurnsPlayed)

	// 回合后快照反映最新状态
	raw, err := persister.Load(ctx, sessionID)
	require.NoError(t, err)
	var doc SnapshotDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotNil(t, doc.State)
	assert.Equal(t, 1, doc.State.TurnCount)
}

// 空白命令与会话不存在
func TestSubmitCommandEdgeCases(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)

	_, err := sm.SubmitCommand(ctx, "no-such-session", "look")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSessionNotFound, apperrors.GetCode(err))

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	// 空白命令只回显当前状态，不消耗回合
	payload, err := sm.SubmitCommand(ctx, sessionID, "   ")
	require.NoError(t, err)
	require.NotNil(t, payload)

	sm.mu.RLock()
	session := sm.sessions[sessionID]
	sm.mu.RUnlock()
	assert.Equal(t, 0, session.TurnsPlayed)
}

// 游戏结束后命令不再推进状态
func TestSubmitCommandAfterGameOver(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	sm.mu.RLock()
	session := sm.sessions[sessionID]
	sm.mu.RUnlock()
	session.State.GameOver = true

	payload, err := sm.SubmitCommand(ctx, sessionID, "move east")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.True(t, payload.GameOver)
	assert.Equal(t, 0, session.TurnsPlayed)
	assert.Equal(t, content.StartLocationID, session.State.CurrentLocationID)
}

// 回合推送到TurnSink
func TestSubmitCommandPushesTurn(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)
	sink := &recordingSink{}
	sm.SetTurnSink(sink)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	payload, err := sm.SubmitCommand(ctx, sessionID, "look")
	require.NoError(t, err)

	require.Len(t, sink.payloads, 1)
	assert.Equal(t, sessionID, sink.sessionIDs[0])
	assert.Same(t, payload, sink.payloads[0])
}

// 重置开新局并清掉持久化快照
func TestResetSession(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()
	sm := newTestManager(t, persister)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)
	_, err = sm.SubmitCommand(ctx, sessionID, "move east")
	require.NoError(t, err)

	payload, err := sm.ResetSession(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, content.StartLocationID, payload.Location.ID)
	assert.Equal(t, 1, payload.Status.Level)

	sm.mu.RLock()
	session := sm.sessions[sessionID]
	sm.mu.RUnlock()
	assert.Equal(t, 0, session.State.TurnCount)
	assert.Equal(t, 0, session.TurnsPlayed)

	// 旧快照不留孤儿行
	_, err = persister.Load(ctx, sessionID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSnapshotNotFound, apperrors.GetCode(err))

	_, err = sm.ResetSession(ctx, "no-such-session")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSessionNotFound, apperrors.GetCode(err))
}

// 导出快照反映会话当前状态
func TestExportSnapshot(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)
	_, err = sm.SubmitCommand(ctx, sessionID, "move east")
	require.NoError(t, err)

	doc, err := sm.ExportSnapshot(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, SnapshotVersion, doc.Version)
	require.NotNil(t, doc.State)
	assert.Equal(t, 1, doc.State.TurnCount)
	assert.Equal(t, "forest", doc.State.CurrentLocationID)
	assert.NotEmpty(t, doc.State.RNGToken)

	_, err = sm.ExportSnapshot(ctx, "no-such-session")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSessionNotFound, apperrors.GetCode(err))
}

// 导入合法快照替换会话状态并落盘
func TestImportSnapshot(t *testing.T) {
	ctx := context.Background()
	persister := NewMemorySnapshotPersister()
	sm := newTestManager(t, persister)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	raw, err := json.Marshal(EncodeSnapshot(midgameState()))
	require.NoError(t, err)

	payload, err := sm.ImportSnapshot(ctx, sessionID, raw)
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Contains(t, payload.Notes, "Snapshot imported.")
	assert.Equal(t, "Tester", payload.Status.Name)
	assert.Equal(t, "swamp", payload.Location.ID)

	// 导入立即覆盖持久化快照
	persisted, err := persister.Load(ctx, sessionID)
	require.NoError(t, err)
	var doc SnapshotDocument
	require.NoError(t, json.Unmarshal(persisted, &doc))
	assert.Equal(t, 17, doc.State.TurnCount)
}

// 导入失败必须保持活动会话原样
func TestImportSnapshotFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	sm := newTestManager(t, nil)

	sessionID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)
	_, err = sm.SubmitCommand(ctx, sessionID, "move east")
	require.NoError(t, err)

	sm.mu.RLock()
	session := sm.sessions[sessionID]
	sm.mu.RUnlock()
	stateBefore := session.State
	screenBefore := session.Screen

	cases := []struct {
		name string
		raw  string
		code apperrors.ErrorCode
	}{
		{"语法错误", `{oops`, apperrors.ErrSnapshotInvalidJSON},
		{"顶层是数组", `[1,2,3]`, apperrors.ErrSnapshotInvalidPayload},
		{"缺少state", `{"version":1}`, apperrors.ErrSnapshotMissingState},
		{"空文档", ``, apperrors.ErrSnapshotRestoreFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, importErr := sm.ImportSnapshot(ctx, sessionID, []byte(tc.raw))
			require.Error(t, importErr)
			assert.Nil(t, payload)
			assert.Equal(t, tc.code, apperrors.GetCode(importErr))

			// 状态根与屏幕均未被改动
			assert.Same(t, stateBefore, session.State)
			assert.Equal(t, screenBefore, session.Screen)
			assert.Equal(t, 1, session.State.TurnCount)
		})
	}
}

// 超时会话被清理，活跃会话保留
func TestCleanupInactiveSessions(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(&SessionConfig{
		Logger:         zap.NewNop(),
		Engine:         engine.NewEngine(zap.NewNop()),
		SessionTimeout: time.Minute,
	})

	staleID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)
	activeID, _, err := sm.StartSession(ctx, "")
	require.NoError(t, err)

	sm.mu.Lock()
	sm.sessions[staleID].LastActivity = time.Now().Add(-2 * time.Minute)
	sm.mu.Unlock()

	sm.CleanupInactiveSessions(ctx)
	assert.Equal(t, 1, sm.ActiveSessions())

	sm.mu.RLock()
	_, staleExists := sm.sessions[staleID]
	_, activeExists := sm.sessions[activeID]
	sm.mu.RUnlock()
	assert.False(t, staleExists)
	assert.True(t, activeExists)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameSnapshot{}, &models.TurnRecord{}))
	return db
}

// 清理任务物理清除超过保留期的存档行，保留期内的不动
func TestCleanupPurgesStaleSnapshots(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	persister := NewDatabaseSnapshotPersister(db)

	require.NoError(t, persister.Save(ctx, "sess-stale", EncodeSnapshot(state.NewGameState())))
	require.NoError(t, persister.Save(ctx, "sess-live", EncodeSnapshot(state.NewGameState())))

	// 把一行的更新时间拨回到保留期之外
	require.NoError(t, db.Model(&models.GameSnapshot{}).
		Where("session_id = ?", "sess-stale").
		UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)

	sm := NewSessionManager(&SessionConfig{
		Logger:            zap.NewNop(),
		Engine:            engine.NewEngine(zap.NewNop()),
		Persister:         persister,
		SnapshotRepo:      repository.NewSnapshotRepository(db),
		SnapshotRetention: 24 * time.Hour,
	})
	sm.CleanupInactiveSessions(ctx)

	_, err := persister.Load(ctx, "sess-stale")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrSnapshotNotFound, apperrors.GetCode(err))

	_, err = persister.Load(ctx, "sess-live")
	assert.NoError(t, err)

	// 未配置保留期时清理任务不碰存档行
	smNoPurge := NewSessionManager(&SessionConfig{
		Logger:       zap.NewNop(),
		Engine:       engine.NewEngine(zap.NewNop()),
		Persister:    persister,
		SnapshotRepo: repository.NewSnapshotRepository(db),
	})
	require.NoError(t, db.Model(&models.GameSnapshot{}).
		Where("session_id = ?", "sess-live").
		UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)
	smNoPurge.CleanupInactiveSessions(ctx)
	_, err = persister.Load(ctx, "sess-live")
	assert.NoError(t, err)
}

// 创建会话日志的restored字段跟随恢复结果
func TestStartSessionRestoreLogging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	persister := NewMemorySnapshotPersister()
	require.NoError(t, persister.Save(ctx, "sess-log", EncodeSnapshot(midgameState())))

	sm := NewSessionManager(&SessionConfig{
		Logger:    zap.New(core),
		Engine:    engine.NewEngine(zap.NewNop()),
		Persister: persister,
	})

	_, _, err := sm.StartSession(ctx, "sess-log")
	require.NoError(t, err)

	entries := logs.FilterMessage("创建游戏会话").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["restored"])

	// 全新会话不标记为恢复
	_, _, err = sm.StartSession(ctx, "")
	require.NoError(t, err)
	entries = logs.FilterMessage("创建游戏会话").All()
	require.Len(t, entries, 2)
	assert.Equal(t, false, entries[1].ContextMap()["restored"])
}
