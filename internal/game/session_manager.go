package game

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/models"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// TurnSink 回合推送接口，由WebSocket层实现
type TurnSink interface {
	PushTurn(sessionID string, payload *Payload)
}

// GameSession 一个玩家会话
// 会话自带互斥锁，保证同一会话同时只有一个回合在处理。
type GameSession struct {
	SessionID    string
	State        *state.GameState
	Screen       string
	Art          *ArtSelector
	StartTime    time.Time
	LastActivity time.Time
	TurnsPlayed  int
	mu           sync.Mutex
}

// SessionConfig 会话管理器配置
type SessionConfig struct {
	Logger            *zap.Logger
	Engine            RuleEngine
	Persister         SnapshotPersister
	TurnRepo          repository.TurnRecordRepository
	SnapshotRepo      repository.SnapshotRepository
	SessionTimeout    time.Duration
	MaxSessions       int
	MaxHints          int
	SnapshotRetention time.Duration
}

// SessionManager 游戏会话管理器
type SessionManager struct {
	mu                sync.RWMutex
	sessions          map[string]*GameSession
	logger            *zap.Logger
	engine            RuleEngine
	advisor           *Advisor
	persister         SnapshotPersister
	turnRepo          repository.TurnRecordRepository
	snapshotRepo      repository.SnapshotRepository
	turnSink          TurnSink
	sessionTimeout    time.Duration
	maxSessions       int
	snapshotRetention time.Duration
}

// NewSessionManager 创建会话管理器
func NewSessionManager(config *SessionConfig) *SessionManager {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.SessionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	maxSessions := config.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	persister := config.Persister
	if persister == nil {
		persister = NewMemorySnapshotPersister()
	}

	return &SessionManager{
		sessions:          make(map[string]*GameSession),
		logger:            logger,
		engine:            config.Engine,
		advisor:           NewAdvisor(config.Engine, config.MaxHints, logger),
		persister:         persister,
		turnRepo:          config.TurnRepo,
		snapshotRepo:      config.SnapshotRepo,
		sessionTimeout:    timeout,
		maxSessions:       maxSessions,
		snapshotRetention: config.SnapshotRetention,
	}
}

// SetTurnSink 设置回合推送接收方
func (sm *SessionManager) SetTurnSink(sink TurnSink) {
	sm.turnSink = sink
}

// buildPayload 对会话当前状态组装完整响应文档
func (sm *SessionManager) buildPayload(session *GameSession, notes []string) *Payload {
	s := session.State
	heading, actions := BuildCatalog(sm.engine.BuildActionHints(s), s, sm.logger)
	actions = sm.advisor.ScoreActions(actions, s)
	hints := sm.advisor.Recommend(actions, s)
	return BuildPayload(s, session.Screen, heading, actions, hints, session.Art.Current(), notes)
}

// newSession 在内存中登记一个全新会话
func (sm *SessionManager) newSession(sessionID string) *GameSession {
	gameState := state.NewGameState()
	session := &GameSession{
		SessionID:    sessionID,
		State:        gameState,
		Art:          NewArtSelector(gameState),
		StartTime:    time.Now(),
		LastActivity: time.Now(),
	}
	session.Screen = sm.engine.InitialScreen(gameState)
	return session
}

// persistSnapshot 尽力保存快照，失败仅记日志不影响回合
func (sm *SessionManager) persistSnapshot(ctx context.Context, session *GameSession) {
	doc := EncodeSnapshot(session.State)
	if err := sm.persister.Save(ctx, session.SessionID, doc); err != nil {
		sm.logger.Error("保存会话快照失败",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}
}

// recordTurn 写命令审计记录，失败仅记日志
func (sm *SessionManager) recordTurn(ctx context.Context, session *GameSession, command string) {
	if sm.turnRepo == nil {
		return
	}
	record := &models.TurnRecord{
		SessionID:  session.SessionID,
		TurnCount:  session.State.TurnCount,
		Command:    command,
		QuestStage: session.State.QuestStage,
		InCombat:   session.State.ActiveEncounter != nil,
		GameOver:   session.State.GameOver,
	}
	if err := sm.turnRepo.Create(ctx, record); err != nil {
		sm.logger.Warn("写回合审计记录失败",
			zap.String("session_id", session.SessionID),
			zap.Error(err))
	}
}

// StartSession 创建或恢复会话并返回首屏payload
// sessionID为空时新建会话；否则尝试内存命中或从快照恢复，
// 结构损坏的快照按"无快照"处理并附带一条被动提示。
func (sm *SessionManager) StartSession(ctx context.Context, sessionID string) (string, *Payload, error) {
	var notes []string
	restored := false

	if sessionID != "" {
		sm.mu.RLock()
		existing := sm.sessions[sessionID]
		sm.mu.RUnlock()
		if existing != nil {
			existing.mu.Lock()
			defer existing.mu.Unlock()
			existing.LastActivity = time.Now()
			return sessionID, sm.buildPayload(existing, nil), nil
		}
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := sm.newSession(sessionID)

	// 尝试从持久化快照续玩
	raw, err := sm.persister.Load(ctx, sessionID)
	switch {
	case err == nil:
		restoredState, decodeErr := DecodeSnapshotBytes(raw, sm.logger)
		if decodeErr != nil {
			// 损坏快照按不存在处理，开新局并被动告知
			sm.logger.Warn("持久化快照损坏，忽略并开始新游戏",
				zap.String("session_id", sessionID),
				zap.Error(decodeErr))
			notes = append(notes, "Saved game could not be restored; starting fresh.")
			_ = sm.persister.Delete(ctx, sessionID)
		} else {
			session.State = restoredState
			session.Art = NewArtSelector(restoredState)
			session.Screen = sm.engine.InitialScreen(restoredState)
			restored = true
			notes = append(notes, "Saved game restored.")
		}
	case apperrors.Is(err, apperrors.ErrSnapshotNotFound):
		// 全新会话
	default:
		sm.logger.Warn("读取持久化快照失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	sm.mu.Lock()
	if len(sm.sessions) >= sm.maxSessions {
		sm.mu.Unlock()
		return "", nil, apperrors.Newf(apperrors.ErrSessionLimit, "max=%d", sm.maxSessions)
	}
	sm.sessions[sessionID] = session
	sm.mu.Unlock()

	sm.persistSnapshot(ctx, session)

	sm.logger.Info("创建游戏会话",
		zap.String("session_id", sessionID),
		zap.Bool("restored", restored))

	return sessionID, sm.buildPayload(session, notes), nil
}

// getSession 获取会话并刷新活动时间
func (sm *SessionManager) getSession(sessionID string) (*GameSession, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, apperrors.Newf(apperrors.ErrSessionNotFound, "session: %s", sessionID)
	}
	return session, nil
}

// SubmitCommand 处理一条玩家命令并返回回合payload
// 只有完整管线成功后才持久化快照；持久化失败被吞掉只记日志。
func (sm *SessionManager) SubmitCommand(ctx context.Context, sessionID, command string) (*Payload, error) {
	session, err := sm.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.LastActivity = time.Now()

	command = strings.TrimSpace(command)
	if command == "" || session.State.GameOver {
		return sm.buildPayload(session, nil), nil
	}

	obs := TurnObservation{
		PrevLocationID: session.State.CurrentLocationID,
		PrevDiscovered: len(session.State.DiscoveredLocations),
		Command:        command,
	}
	if enc := session.State.ActiveEncounter; enc != nil {
		obs.PrevEnemyID = enc.EnemyID
	}

	session.Screen = sm.engine.ProcessCommand(session.State, command)
	session.Art.Observe(obs, session.State)
	session.TurnsPlayed++

	payload := sm.buildPayload(session, nil)

	sm.persistSnapshot(ctx, session)
	sm.recordTurn(ctx, session, command)

	if sm.turnSink != nil {
		sm.turnSink.PushTurn(sessionID, payload)
	}
	return payload, nil
}

// ResetSession 重置为全新一局并清除持久化快照
func (sm *SessionManager) ResetSession(ctx context.Context, sessionID string) (*Payload, error) {
	session, err := sm.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	fresh := sm.newSession(sessionID)
	session.State = fresh.State
	session.Screen = fresh.Screen
	session.Art = fresh.Art
	session.LastActivity = time.Now()
	session.TurnsPlayed = 0

	// 旧快照不留孤儿行
	if err := sm.persister.Delete(ctx, sessionID); err != nil {
		sm.logger.Warn("清除持久化快照失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	sm.logger.Info("重置游戏会话", zap.String("session_id", sessionID))
	return sm.buildPayload(session, nil), nil
}

// ExportSnapshot 导出会话当前快照文档
func (sm *SessionManager) ExportSnapshot(ctx context.Context, sessionID string) (*SnapshotDocument, error) {
	session, err := sm.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.LastActivity = time.Now()
	return EncodeSnapshot(session.State), nil
}

// ImportSnapshot 从原始快照JSON恢复会话
// 解码失败返回带错误码的错误，活动会话保持原样不被改动。
func (sm *SessionManager) ImportSnapshot(ctx context.Context, sessionID string, raw []byte) (*Payload, error) {
	session, err := sm.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	restored, decodeErr := DecodeSnapshotBytes(raw, sm.logger)
	if decodeErr != nil {
		sm.logger.Info("快照导入被拒绝",
			zap.String("session_id", sessionID),
			zap.Error(decodeErr))
		return nil, decodeErr
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.State = restored
	session.Art = NewArtSelector(restored)
	session.Screen = sm.engine.InitialScreen(restored)
	session.LastActivity = time.Now()

	sm.persistSnapshot(ctx, session)

	sm.logger.Info("导入会话快照",
		zap.String("session_id", sessionID),
		zap.String("quest_stage", restored.QuestStage),
		zap.Int("turn_count", restored.TurnCount))

	return sm.buildPayload(session, []string{"Snapshot imported."}), nil
}

// CleanupInactiveSessions 清理超时会话（快照已随每回合落盘），
// 并物理清除超过保留期未再更新的存档行。
func (sm *SessionManager) CleanupInactiveSessions(ctx context.Context) {
	now := time.Now()

	sm.mu.Lock()
	for sessionID, session := range sm.sessions {
		if now.Sub(session.LastActivity) <= sm.sessionTimeout {
			continue
		}
		delete(sm.sessions, sessionID)
		sm.logger.Info("清理超时会话",
			zap.String("session_id", sessionID),
			zap.Duration("inactive", now.Sub(session.LastActivity)),
			zap.Int("turns_played", session.TurnsPlayed))
	}
	sm.mu.Unlock()

	if sm.snapshotRepo == nil || sm.snapshotRetention <= 0 {
		return
	}
	purged, err := sm.snapshotRepo.PurgeOlderThan(ctx, now.Add(-sm.snapshotRetention))
	if err != nil {
		sm.logger.Warn("清理过期快照失败", zap.Error(err))
		return
	}
	if purged > 0 {
		sm.logger.Info("清理过期快照",
			zap.Int64("purged", purged),
			zap.Duration("retention", sm.snapshotRetention))
	}
}

// StartCleanupTask 启动定时清理任务
func (sm *SessionManager) StartCleanupTask(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				sm.logger.Info("停止会话清理任务")
				return
			case <-ticker.C:
				sm.CleanupInactiveSessions(ctx)
			}
		}
	}()
}

// ActiveSessions 当前活跃会话数
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
