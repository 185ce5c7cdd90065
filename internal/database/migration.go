package database

import (
	"fmt"

	"github.com/Joey1399/byte-world-ai/internal/logger"
	"github.com/Joey1399/byte-world-ai/internal/models"
	"go.uber.org/zap"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	migrationModels := []interface{}{
		&models.GameSnapshot{},
		&models.TurnRecord{},
	}

	logger.Info("开始数据库迁移...")

	for _, model := range migrationModels {
		if err := DB.AutoMigrate(model); err != nil {
			logger.Error("迁移失败",
				zap.String("model", fmt.Sprintf("%T", model)),
				zap.Error(err),
			)
			return err
		}
		logger.Debug("迁移成功", zap.String("model", fmt.Sprintf("%T", model)))
	}

	// 创建索引
	if err := createIndexes(); err != nil {
		return err
	}

	logger.Info("数据库迁移完成")
	return nil
}

// createIndexes 创建数据库索引
func createIndexes() error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_game_snapshots_quest_stage ON game_snapshots(quest_stage)",
		"CREATE INDEX IF NOT EXISTS idx_game_snapshots_updated_at ON game_snapshots(updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_turn_records_session_turn ON turn_records(session_id, turn_count)",
		"CREATE INDEX IF NOT EXISTS idx_turn_records_created_at ON turn_records(created_at)",
	}

	for _, idx := range indexes {
		if err := DB.Exec(idx).Error; err != nil {
			logger.Warn("创建索引失败", zap.String("index", idx), zap.Error(err))
		}
	}

	logger.Info("数据库索引创建完成")
	return nil
}

// DropAllTables 删除所有表（仅用于测试环境）
func DropAllTables() error {
	if DB == nil {
		return fmt.Errorf("数据库未初始化")
	}

	var tables []string
	if err := DB.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&tables).Error; err != nil {
		return err
	}

	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			logger.Error("删除表失败", zap.String("table", table), zap.Error(err))
			return err
		}
	}

	logger.Info("所有表已删除")
	return nil
}
