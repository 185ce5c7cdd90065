package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

func testEngine() *Engine {
	return NewEngine(zap.NewNop())
}

// 命令解析与别名展开
func TestParseCommand(t *testing.T) {
	cmd, args := ParseCommand("  MOVE  North  ")
	assert.Equal(t, "move", cmd)
	assert.Equal(t, []string{"north"}, args)

	// 单词别名
	cmd, args = ParseCommand("n")
	assert.Equal(t, "move", cmd)
	assert.Equal(t, []string{"north"}, args)

	cmd, _ = ParseCommand("attack")
	assert.Equal(t, "fight", cmd)

	cmd, _ = ParseCommand("inv")
	assert.Equal(t, "inventory", cmd)

	cmd, args = ParseCommand("")
	assert.Equal(t, "", cmd)
	assert.Nil(t, args)
}

// 移动更新位置、回合数与已发现地点
func TestMove(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	messages := e.Move(s, "east")
	require.NotEmpty(t, messages)
	assert.Equal(t, "You move east.", messages[0])
	assert.Equal(t, "forest", s.CurrentLocationID)
	assert.Equal(t, 1, s.TurnCount)
	assert.True(t, s.DiscoveredLocations["forest"])

	// 不存在的出口
	s.ActiveEncounter = nil
	messages = e.Move(s, "up")
	assert.Contains(t, messages[0], "cannot move up")
	assert.Equal(t, "forest", s.CurrentLocationID)
}

// 方向缩写
func TestMoveDirectionAlias(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	messages := e.Move(s, "e")
	assert.Equal(t, "You move east.", messages[0])
	assert.Equal(t, "forest", s.CurrentLocationID)
}

// 未满足条件的出口被封锁
func TestMoveLockedExit(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.CurrentLocationID = "forest"
	s.ActiveEncounter = nil

	messages := e.Move(s, "north")
	require.NotEmpty(t, messages)
	assert.Contains(t, messages[0], "settle the swamp first")
	assert.Equal(t, "forest", s.CurrentLocationID)
	assert.Equal(t, 0, s.TurnCount)

	// 击败巨蛙后放行
	s.Flags["frog_defeated"] = true
	messages = e.Move(s, "north")
	assert.Equal(t, "You move north.", messages[0])
	assert.Equal(t, "mountain_base", s.CurrentLocationID)
}

// 遭遇战期间禁止移动
func TestMoveBlockedInEncounter(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.ActiveEncounter = &state.Encounter{EnemyID: "rat", CurrentHP: 10}

	messages := e.Move(s, "east")
	assert.Contains(t, messages[0], "cannot move while an encounter is active")
	assert.Equal(t, content.StartLocationID, s.CurrentLocationID)
}

// 初见老人：授技能、立标记并推进任务阶段
func TestTalkWiseOldMan(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	messages := e.resolveTurn(s, "talk", []string{"wise", "old", "man"})
	require.NotEmpty(t, messages)

	assert.True(t, s.Flags["met_old_man"])
	assert.True(t, s.Player.Skills["focus strike"])
	assert.True(t, s.Player.Skills["guard stance"])
	assert.True(t, s.Player.Skills["second wind"])
	assert.Equal(t, content.StageSwampSecret, s.QuestStage)

	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "Quest updated:")

	// 重复对话不再推进
	messages = e.resolveTurn(s, "talk", []string{"wise", "old", "man"})
	assert.NotContains(t, strings.Join(messages, "\n"), "Quest updated:")
}

func TestTalkUnknownNPC(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	messages := e.Talk(s, "ghost")
	assert.Contains(t, messages[0], "No one named 'ghost'")
}

// 训练消耗技能点并提升基础属性
func TestTrainSkill(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.Player.SkillPoints = 5

	messages := e.TrainSkill(s, "attack", 2)
	assert.Contains(t, messages[0], "+2")
	assert.Equal(t, 10, s.Player.BaseAttack)
	assert.Equal(t, 3, s.Player.SkillPoints)

	messages = e.TrainSkill(s, "health", 1)
	assert.Equal(t, 53, s.Player.BaseMaxHP)
	assert.Equal(t, 53, s.Player.HP)
	assert.Equal(t, 2, s.Player.SkillPoints)

	// 点数不足
	messages = e.TrainSkill(s, "defense", 5)
	assert.Contains(t, messages[0], "not have enough skill points")
	assert.Equal(t, 5, s.Player.BaseDefense)

	messages = e.TrainSkill(s, "luck", 1)
	assert.Contains(t, messages[0], "Unknown skill")
}

func TestTrainAllEqually(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	s.Player.SkillPoints = 2
	messages := e.TrainAllEqually(s)
	assert.Contains(t, messages[0], "at least 3 skill points")

	s.Player.SkillPoints = 7
	messages = e.TrainAllEqually(s)
	assert.Contains(t, messages[0], "attack +2, defense +2, health +6")
	assert.Equal(t, 1, s.Player.SkillPoints)
	assert.Equal(t, 10, s.Player.BaseAttack)
	assert.Equal(t, 7, s.Player.BaseDefense)
	assert.Equal(t, 56, s.Player.BaseMaxHP)
	assert.Contains(t, messages[1], "1 skill point(s) remain")
}

// train 3,4,3格式的精确分配
func TestHandleTrainAllocation(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.Player.SkillPoints = 10

	messages := e.handleTrain(s, []string{"3,4,3"})
	assert.Contains(t, messages[0], "attack +3, defense +4, health +9")
	assert.Equal(t, 0, s.Player.SkillPoints)

	// 畸形分配
	s.Player.SkillPoints = 10
	messages = e.handleTrain(s, []string{"3,4"})
	assert.Contains(t, messages[0], "train attack,defense,health")

	messages = e.handleTrain(s, []string{"a,b,c"})
	assert.Contains(t, messages[0], "must be numbers")

	messages = e.handleTrain(s, nil)
	assert.Contains(t, messages[0], "Train what?")
}

// 手动换装与自动最优换装
func TestEquip(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	state.AddItem(s.Player, "crusty_sword", 1)

	messages := e.EquipItem(s, "crusty sword")
	assert.Contains(t, messages[0], "You equip Crusty Sword and unequip Rusted Blade.")
	assert.Equal(t, "crusty_sword", s.Player.Equipment["weapon"])

	messages = e.EquipItem(s, "no such thing")
	assert.Contains(t, messages[0], "do not have")

	messages = e.EquipItem(s, "minor potion")
	assert.Contains(t, messages[0], "not equippable")
}

func TestEquipBestAvailable(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	state.AddItem(s.Player, "crusty_sword", 1)
	state.AddItem(s.Player, "froghide_armor", 1)

	messages := e.EquipBestAvailable(s)
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "Crusty Sword")
	assert.Contains(t, joined, "Froghide Armor")
	assert.Equal(t, "crusty_sword", s.Player.Equipment["weapon"])
	assert.Equal(t, "froghide_armor", s.Player.Equipment["armor"])

	// 已是最优时无变化
	messages = e.EquipBestAvailable(s)
	assert.Contains(t, strings.Join(messages, "\n"), "already best-in-slot")
}

// 动作提示行格式：首行标题，其余为"命令: 描述"
func TestBuildActionHintsFormat(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	lines := e.BuildActionHints(s)
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "Available actions")

	for _, line := range lines[1:] {
		assert.Contains(t, line, ": ", "提示行应为命令: 描述格式: %q", line)
	}

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "move east: ")
	assert.Contains(t, joined, "talk wise old man: ")
	assert.Contains(t, joined, "use minor potion: ")

	// 战斗中换成战斗动作表
	s.ActiveEncounter = &state.Encounter{EnemyID: "wolf", CurrentHP: 20, SpecialPhase: state.PhaseCombat}
	lines = e.BuildActionHints(s)
	assert.Contains(t, lines[0], "Combat actions")
	joined = strings.Join(lines, "\n")
	assert.Contains(t, joined, "fight: ")
	assert.Contains(t, joined, "defend: ")
	assert.NotContains(t, joined, "move east")
}

// 谈判阶段只有三个动作
func TestNegotiationActionHints(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.ActiveEncounter = &state.Encounter{
		EnemyID:      "goblin_army",
		CurrentHP:    200,
		SpecialPhase: state.PhaseNegotiation,
	}

	lines := e.BuildActionHints(s)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "joke: ")
	assert.Contains(t, lines[2], "bribe: ")
	assert.Contains(t, lines[3], "fight: ")
}

// 按任务阶段推荐的下一步方向
func TestRecommendedMapStep(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	// 觉醒阶段目标就是起点
	target, direction := e.RecommendedMapStep(s)
	assert.Equal(t, "old_shack", target)
	assert.Equal(t, "", direction)

	s.QuestStage = content.StageSwampSecret
	target, direction = e.RecommendedMapStep(s)
	assert.Equal(t, "swamp", target)
	assert.Equal(t, "east", direction)

	// 封锁路线退化为最终路线的第一步
	s.CurrentLocationID = "forest"
	s.QuestStage = content.StageMountainFlame
	target, direction = e.RecommendedMapStep(s)
	assert.Equal(t, "mountain_peak", target)
	assert.Equal(t, "north", direction)
}

// 标记驱动的任务阶段推导
func TestDetermineStage(t *testing.T) {
	s := state.NewGameState()
	assert.Equal(t, content.StageAwakening, DetermineStage(s))

	s.Flags["met_old_man"] = true
	assert.Equal(t, content.StageSwampSecret, DetermineStage(s))

	s.Flags["frog_defeated"] = true
	assert.Equal(t, content.StageMountainFlame, DetermineStage(s))

	s.Flags["dragon_defeated"] = true
	assert.Equal(t, content.StageCastleRoad, DetermineStage(s))

	// 谈判通行与武力通关等价
	s.Flags["goblin_pass_granted"] = true
	assert.Equal(t, content.StageBlackHall, DetermineStage(s))

	s.Flags["makor_defeated"] = true
	assert.Equal(t, content.StageWitchBane, DetermineStage(s))

	s.Flags["onyx_witch_defeated"] = true
	assert.Equal(t, content.StageRescueElle, DetermineStage(s))

	s.Flags["elle_cleansed"] = true
	assert.Equal(t, content.StageHomecoming, DetermineStage(s))
}

// 特殊遭遇的开场状态
func TestStartEncounterSpecials(t *testing.T) {
	e := testEngine()

	s := state.NewGameState()
	e.StartEncounter(s, "goblin_army")
	require.NotNil(t, s.ActiveEncounter)
	assert.Equal(t, state.PhaseNegotiation, s.ActiveEncounter.SpecialPhase)

	s = state.NewGameState()
	e.StartEncounter(s, "onyx_witch")
	require.NotNil(t, s.ActiveEncounter)
	assert.True(t, s.ActiveEncounter.WitchBarrierActive)
	assert.Equal(t, state.PhaseCombat, s.ActiveEncounter.SpecialPhase)

	s = state.NewGameState()
	e.StartEncounter(s, "giant_frog")
	require.NotNil(t, s.ActiveEncounter)
	assert.Equal(t, content.Enemies["giant_frog"].HP, s.ActiveEncounter.CurrentHP)

	// 未知敌人不开战
	s = state.NewGameState()
	assert.Nil(t, e.StartEncounter(s, "azathoth"))
	assert.Nil(t, s.ActiveEncounter)
}

// 逃跑成功率曲线
func TestRunChance(t *testing.T) {
	assert.Equal(t, 0.65, RunChance(content.Enemies["rat"]))
	assert.Equal(t, 0.28, RunChance(content.Enemies["dragon"]))
	assert.Equal(t, 0.22, RunChance(content.Enemies["goblin_army"]))
}

// quit结束游戏
func TestQuit(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()

	messages := e.handleCommand(s, "quit", nil)
	assert.Contains(t, messages[0], "Game ended")
	assert.True(t, s.GameOver)
}

// 战斗中屏蔽非战斗命令
func TestEncounterCommandGating(t *testing.T) {
	e := testEngine()
	s := state.NewGameState()
	s.ActiveEncounter = &state.Encounter{EnemyID: "rat", CurrentHP: 10, SpecialPhase: state.PhaseCombat}

	messages := e.handleCommand(s, "map", nil)
	assert.Contains(t, messages[0], "You are in an encounter")

	messages = e.handleCommand(s, "talk", []string{"wise", "old", "man"})
	assert.Contains(t, messages[0], "You are in an encounter")
}
