package game

import (
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// RuleEngine 会话编排所依赖的规则引擎接口
// 引擎就地修改传入的状态根，但不得替换它。
type RuleEngine interface {
	InitialScreen(s *state.GameState) string
	ProcessCommand(s *state.GameState, raw string) string
	BuildActionHints(s *state.GameState) []string
	RecommendedMapStep(s *state.GameState) (locationID, direction string)
}

// 动作分类
const (
	CategoryMovement = "movement"
	CategoryCombat   = "combat"
	CategoryQuest    = "quest"
	CategoryPlayer   = "player"
)

// Action 从引擎提示行解析出的结构化动作，每回合重建，不持久化
type Action struct {
	Command     string `json:"command"`
	Verb        string `json:"verb"`
	Argument    string `json:"argument"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Color       string `json:"color,omitempty"`
	Priority    int    `json:"priority"`
}

// Hint 推荐动作与自然语言理由
type Hint struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// StatusSummary 玩家状态只读视图
type StatusSummary struct {
	Name        string            `json:"name"`
	Level       int               `json:"level"`
	HP          int               `json:"hp"`
	MaxHP       int               `json:"max_hp"`
	Attack      int               `json:"attack"`
	Defense     int               `json:"defense"`
	XP          int               `json:"xp"`
	SkillPoints int               `json:"skill_points"`
	Gold        int               `json:"gold"`
	Titles      []string          `json:"titles"`
	Equipment   map[string]string `json:"equipment"`
}

// InventoryEntry 背包条目只读视图
type InventoryEntry struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
	Type   string `json:"type"`
}

// LocationSummary 当前位置只读视图
type LocationSummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Area       string   `json:"area"`
	Exits      []string `json:"exits"`
	NPCs       []string `json:"npcs"`
	Discovered int      `json:"discovered"`
}

// KillEntry 击杀台账条目
type KillEntry struct {
	Location string `json:"location"`
	Enemy    string `json:"enemy"`
	Count    int    `json:"count"`
}

// Payload 每回合返回给展示层的完整响应文档
type Payload struct {
	ScreenHTML     string           `json:"screen_html"`
	GameOver       bool             `json:"game_over"`
	InCombat       bool             `json:"in_combat"`
	Status         *StatusSummary   `json:"status"`
	Inventory      []InventoryEntry `json:"inventory"`
	Location       *LocationSummary `json:"location"`
	Kills          []KillEntry      `json:"kills"`
	ArtTitle       string           `json:"art_title"`
	ArtASCII       string           `json:"art_ascii,omitempty"`
	ArtImage       string           `json:"art_image,omitempty"`
	ActionsHeading string           `json:"actions_heading"`
	Actions        []Action         `json:"actions"`
	Hints          []Hint           `json:"hints"`
	Notes          []string         `json:"notes,omitempty"`
}
