package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Joey1399/byte-world-ai/internal/engine"
	"github.com/Joey1399/byte-world-ai/internal/game"
	"github.com/Joey1399/byte-world-ai/internal/models"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/utils"
)

func newTestRouter(t *testing.T) (*Router, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GameSnapshot{}, &models.TurnRecord{}))

	sessionManager := game.NewSessionManager(&game.SessionConfig{
		Logger:    zap.NewNop(),
		Engine:    engine.NewEngine(zap.NewNop()),
		Persister: game.NewDatabaseSnapshotPersister(db),
	})

	router := NewRouter(&RouterConfig{
		DB:             db,
		SessionManager: sessionManager,
		JWTManager:     utils.NewJWTManager("test-secret", time.Hour),
		TurnRepo:       repository.NewTurnRecordRepository(db),
		SnapshotRepo:   repository.NewSnapshotRepository(db),
		Logger:         zap.NewNop(),
	})
	return router, db
}

func startSession(t *testing.T, router *Router) *StartResponse {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/game/start", nil)
	router.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.Token)
	return &resp
}

// 存档统计：全局活跃数与阶段分布，带令牌时附带本会话概览
func TestStatsEndpoint(t *testing.T) {
	router, db := newTestRouter(t)

	first := startSession(t, router)
	startSession(t, router)

	// 无令牌只有全局统计
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/game/stats", nil)
	router.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.OK)
	assert.Equal(t, int64(2), stats.ActiveCount)
	assert.Equal(t, int64(2), stats.Stages["awakening"])
	assert.Nil(t, stats.Session)

	// 带令牌附带本会话的存档概览
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/game/stats", nil)
	req.Header.Set("Authorization", "Bearer "+first.Token)
	router.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.NotNil(t, stats.Session)
	assert.Equal(t, "awakening", stats.Session.QuestStage)
	assert.Equal(t, 0, stats.Session.TurnCount)
	assert.False(t, stats.Session.GameOver)

	// 活跃窗口外的存档不计入active_count
	require.NoError(t, db.Model(&models.GameSnapshot{}).
		Where("session_id = ?", first.SessionID).
		UpdateColumn("updated_at", time.Now().Add(-2*time.Hour)).Error)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/game/stats?active_hours=1", nil)
	router.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.ActiveCount)
	assert.Equal(t, int64(2), stats.Stages["awakening"])
}

// 仓储未配置（内存存档模式）时统计端点退化为空结果
func TestStatsEndpointWithoutRepo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sessionManager := game.NewSessionManager(&game.SessionConfig{
		Logger: zap.NewNop(),
		Engine: engine.NewEngine(zap.NewNop()),
	})
	router := NewRouter(&RouterConfig{
		SessionManager: sessionManager,
		JWTManager:     utils.NewJWTManager("test-secret", time.Hour),
		Logger:         zap.NewNop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/game/stats", nil)
	router.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.OK)
	assert.Equal(t, int64(0), stats.ActiveCount)
	assert.Empty(t, stats.Stages)
	assert.Nil(t, stats.Session)
}
