package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/state"
)

// 提示行解析：首行是标题，其余按"命令: 描述"拆分
func TestBuildCatalogParsing(t *testing.T) {
	lines := []string{
		"  What do you do?  ",
		"move north: Head deeper into the forest.",
		"talk wise old man: Ask the old man for guidance.",
		"status: Review your stats.",
	}

	heading, actions := BuildCatalog(lines, state.NewGameState(), zap.NewNop())
	assert.Equal(t, "What do you do?", heading)
	require.Len(t, actions, 3)

	assert.Equal(t, "move north", actions[0].Command)
	assert.Equal(t, "move", actions[0].Verb)
	assert.Equal(t, "north", actions[0].Argument)
	assert.Equal(t, "Head deeper into the forest.", actions[0].Description)

	assert.Equal(t, "talk", actions[1].Verb)
	assert.Equal(t, "wise old man", actions[1].Argument)

	// 无参数动词
	assert.Equal(t, "status", actions[2].Verb)
	assert.Equal(t, "", actions[2].Argument)
}

// 畸形行被跳过，不产生错误
func TestBuildCatalogSkipsMalformedLines(t *testing.T) {
	lines := []string{
		"Actions",
		"no separator in this line",
		"",
		"   ",
		"look: Take in your surroundings.",
	}

	_, actions := BuildCatalog(lines, state.NewGameState(), zap.NewNop())
	require.Len(t, actions, 1)
	assert.Equal(t, "look", actions[0].Command)
}

// 空输入
func TestBuildCatalogEmpty(t *testing.T) {
	heading, actions := BuildCatalog(nil, state.NewGameState(), zap.NewNop())
	assert.Equal(t, "", heading)
	assert.Nil(t, actions)
}

// 动词分类表，未列出的动词归入player
func TestBuildCatalogCategories(t *testing.T) {
	lines := []string{
		"Actions",
		"move north: go.",
		"fight rat: attack.",
		"quest: check objective.",
		"train attack: spend a point.",
		"use minor potion: heal.",
	}

	_, actions := BuildCatalog(lines, state.NewGameState(), zap.NewNop())
	require.Len(t, actions, 5)
	assert.Equal(t, CategoryMovement, actions[0].Category)
	assert.Equal(t, CategoryCombat, actions[1].Category)
	assert.Equal(t, CategoryQuest, actions[2].Category)
	assert.Equal(t, CategoryPlayer, actions[3].Category)
	assert.Equal(t, CategoryQuest, actions[4].Category)
}

// 战斗中use/read改判为combat
func TestBuildCatalogCombatRecategorize(t *testing.T) {
	s := state.NewGameState()
	s.ActiveEncounter = &state.Encounter{EnemyID: "rat", CurrentHP: 10}

	lines := []string{
		"Combat!",
		"use minor potion: heal mid-fight.",
		"read goblin riddle: break the barrier.",
		"move north: not possible now.",
	}

	_, actions := BuildCatalog(lines, s, zap.NewNop())
	require.Len(t, actions, 3)
	assert.Equal(t, CategoryCombat, actions[0].Category)
	assert.Equal(t, CategoryCombat, actions[1].Category)
	assert.Equal(t, CategoryMovement, actions[2].Category)
}

// 参数着色按动词优先级命中名称索引
func TestBuildCatalogColors(t *testing.T) {
	lines := []string{
		"Actions",
		"talk wise old man: npc.",
		"fight forest wolf: normal enemy.",
		"fight giant frog, prince of the swamp: boss enemy.",
		"fight king makor the rot: end boss.",
		"use minor potion: consumable.",
		"use goblin riddle: quest item.",
		"skill focus strike: skill.",
		"train 1 2 0: allocation digits.",
	}

	_, actions := BuildCatalog(lines, state.NewGameState(), zap.NewNop())
	require.Len(t, actions, 8)
	assert.Equal(t, "ansi-blue", actions[0].Color)
	assert.Equal(t, "ansi-yellow", actions[1].Color)
	assert.Equal(t, "ansi-orange", actions[2].Color)
	assert.Equal(t, "ansi-red", actions[3].Color)
	assert.Equal(t, "ansi-green", actions[4].Color)
	assert.Equal(t, "ansi-purple", actions[5].Color)
	assert.Equal(t, "ansi-pink", actions[6].Color)
	assert.Equal(t, "", actions[7].Color)
}
