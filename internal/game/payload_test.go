package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joey1399/byte-world-ai/internal/state"
)

func TestBuildPayload(t *testing.T) {
	s := midgameState()
	art := ArtSelection{Title: "The Swamp", Image: "/static/art/swamp.png"}

	payload := BuildPayload(s, "screen text", "Available actions (2):",
		[]Action{{Command: "look"}}, []Hint{{Command: "quest", Reason: "check"}},
		art, []string{"Saved game restored."})

	require.NotNil(t, payload)
	assert.Equal(t, "screen text", payload.ScreenHTML)
	assert.False(t, payload.GameOver)
	assert.False(t, payload.InCombat)

	require.NotNil(t, payload.Status)
	assert.Equal(t, "Tester", payload.Status.Name)
	assert.Equal(t, 3, payload.Status.Level)
	assert.Equal(t, 120, payload.Status.Gold)
	maxHP := state.EffectiveStats(s.Player).MaxHP
	assert.Equal(t, maxHP, payload.Status.MaxHP)

	// 空槽位显示为none
	assert.Equal(t, "none", payload.Status.Equipment["shield"])
	assert.Equal(t, "Rusted Blade", payload.Status.Equipment["weapon"])

	require.NotNil(t, payload.Location)
	assert.Equal(t, "swamp", payload.Location.ID)
	assert.Equal(t, "Swamp", payload.Location.Name)
	assert.Equal(t, []string{"west"}, payload.Location.Exits)

	assert.Equal(t, "The Swamp", payload.ArtTitle)
	assert.Equal(t, "/static/art/swamp.png", payload.ArtImage)
	assert.Equal(t, []string{"Saved game restored."}, payload.Notes)
	assert.Len(t, payload.Hints, 1)
}

// 背包视图按物品ID排序并带名称
func TestBuildPayloadInventory(t *testing.T) {
	s := midgameState()
	payload := BuildPayload(s, "", "", nil, nil, ArtSelection{}, nil)

	require.NotEmpty(t, payload.Inventory)
	for i := 1; i < len(payload.Inventory); i++ {
		assert.Less(t, payload.Inventory[i-1].ItemID, payload.Inventory[i].ItemID)
	}

	byID := make(map[string]InventoryEntry)
	for _, entry := range payload.Inventory {
		byID[entry.ItemID] = entry
	}
	assert.Equal(t, "Minor Potion", byID["minor_potion"].Name)
	assert.Equal(t, 3, byID["minor_potion"].Count)
	assert.Equal(t, "consumable", byID["minor_potion"].Type)
}

// 击杀台账按地点与敌名排序
func TestBuildPayloadKills(t *testing.T) {
	s := midgameState()
	s.RecordKill("swamp", "Sewer Rat")

	payload := BuildPayload(s, "", "", nil, nil, ArtSelection{}, nil)
	require.Len(t, payload.Kills, 2)
	assert.Equal(t, KillEntry{Location: "Forest", Enemy: "Forest Wolf", Count: 2}, payload.Kills[0])
	assert.Equal(t, KillEntry{Location: "Swamp", Enemy: "Sewer Rat", Count: 1}, payload.Kills[1])
}

// 战斗状态透传
func TestBuildPayloadInCombat(t *testing.T) {
	s := midgameState()
	s.ActiveEncounter = &state.Encounter{EnemyID: "giant_frog", CurrentHP: 40}

	payload := BuildPayload(s, "", "", nil, nil, ArtSelection{}, nil)
	assert.True(t, payload.InCombat)
}

// 屏幕文本的ANSI样式转成HTML span
func TestBuildPayloadScreenHTML(t *testing.T) {
	s := midgameState()
	screen := "You spot a \x1b[91mForest Wolf\x1b[0m ahead."

	payload := BuildPayload(s, screen, "", nil, nil, ArtSelection{}, nil)
	assert.Equal(t, `You spot a <span class="ansi-red">Forest Wolf</span> ahead.`, payload.ScreenHTML)
}

// 屏幕尾部的动作提示块被剥离（提示已结构化进payload）
func TestStripTrailingHintBlock(t *testing.T) {
	screen := "story line one\nstory line two\nAvailable actions (2):\n  look: see.\n  quest: check."

	stripped := stripTrailingHintBlock(screen, "Available actions (2):")
	assert.Equal(t, "story line one\nstory line two", stripped)

	// 标题不存在时原样返回
	assert.Equal(t, screen, stripTrailingHintBlock(screen, "Combat actions (3):"))
	assert.Equal(t, screen, stripTrailingHintBlock(screen, ""))
}
