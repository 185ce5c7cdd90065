package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Joey1399/byte-world-ai/internal/models"
)

// TestDB 创建内存SQLite测试数据库，每个测试用例独立
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.GameSnapshot{},
		&models.TurnRecord{},
	))
	return db
}

// CreateTestSnapshot 构造测试快照行
func CreateTestSnapshot(sessionID, questStage string, turnCount int) *models.GameSnapshot {
	return &models.GameSnapshot{
		SessionID:  sessionID,
		Version:    1,
		QuestStage: questStage,
		TurnCount:  turnCount,
		StateData:  fmt.Sprintf(`{"version":1,"state":{"quest_stage":%q,"turn_count":%d}}`, questStage, turnCount),
	}
}

// CreateTestTurnRecord 构造测试回合记录
func CreateTestTurnRecord(sessionID string, turnCount int, command string) *models.TurnRecord {
	return &models.TurnRecord{
		SessionID:  sessionID,
		TurnCount:  turnCount,
		Command:    command,
		QuestStage: "awakening",
	}
}

// BackdateSnapshot 将快照行的更新时间改写到过去（绕过gorm自动时间戳）
func BackdateSnapshot(t *testing.T, db *gorm.DB, sessionID string, updatedAt time.Time) {
	err := db.Model(&models.GameSnapshot{}).
		Where("session_id = ?", sessionID).
		UpdateColumn("updated_at", updatedAt).Error
	require.NoError(t, err)
}
