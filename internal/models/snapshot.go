package models

import (
	"time"

	"gorm.io/gorm"
)

// GameSnapshot 会话快照行，每个会话一行，state_data存完整快照文档JSON
type GameSnapshot struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	SessionID  string         `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	Version    int            `gorm:"not null;default:1" json:"version"`
	QuestStage string         `gorm:"size:32" json:"quest_stage"`
	TurnCount  int            `gorm:"default:0" json:"turn_count"`
	GameOver   bool           `gorm:"default:false" json:"game_over"`
	StateData  string         `gorm:"type:text;not null" json:"state_data"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (GameSnapshot) TableName() string {
	return "game_snapshots"
}

// TurnRecord 命令审计行，记录每个成功回合
type TurnRecord struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	SessionID  string    `gorm:"index;size:64;not null" json:"session_id"`
	TurnCount  int       `json:"turn_count"`
	Command    string    `gorm:"size:256" json:"command"`
	QuestStage string    `gorm:"size:32" json:"quest_stage"`
	InCombat   bool      `json:"in_combat"`
	GameOver   bool      `json:"game_over"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (TurnRecord) TableName() string {
	return "turn_records"
}
