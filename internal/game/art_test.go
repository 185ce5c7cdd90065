package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Joey1399/byte-world-ai/internal/state"
)

func TestArtSelectorInitial(t *testing.T) {
	s := state.NewGameState()
	sel := NewArtSelector(s)

	art := sel.Current()
	assert.Equal(t, "The Old Shack", art.Title)
	assert.NotEmpty(t, art.Image)
	assert.Empty(t, art.ASCII)
}

// 新遭遇的第一回合切换到敌人画面，后续回合保持
func TestArtSelectorEncounterEdge(t *testing.T) {
	s := state.NewGameState()
	sel := NewArtSelector(s)

	s.ActiveEncounter = &state.Encounter{EnemyID: "dragon", CurrentHP: 100}
	sel.Observe(TurnObservation{PrevEnemyID: "", Command: "move north"}, s)
	assert.Equal(t, "The Dragon", sel.Current().Title)

	// 同一场战斗的后续回合不再切换
	before := sel.Current()
	sel.Observe(TurnObservation{PrevEnemyID: "dragon", Command: "fight"}, s)
	assert.Equal(t, before, sel.Current())
}

// 未收录的敌人按类别合成占位画
func TestArtSelectorGenericEnemy(t *testing.T) {
	s := state.NewGameState()
	sel := NewArtSelector(s)

	s.ActiveEncounter = &state.Encounter{EnemyID: "wolf", CurrentHP: 20}
	sel.Observe(TurnObservation{PrevEnemyID: ""}, s)
	art := sel.Current()
	assert.Equal(t, "Forest Wolf", art.Title)
	assert.NotEmpty(t, art.ASCII)
}

// talk命中当前地点NPC时切换到NPC画面
func TestArtSelectorTalk(t *testing.T) {
	s := state.NewGameState()
	sel := NewArtSelector(s)

	sel.Observe(TurnObservation{PrevLocationID: s.CurrentLocationID, Command: "talk wise old man"}, s)
	assert.Equal(t, "The Wise Old Man", sel.Current().Title)

	// 不在场的NPC不切换
	before := sel.Current()
	sel.Observe(TurnObservation{PrevLocationID: s.CurrentLocationID, Command: "talk elle"}, s)
	assert.Equal(t, before, sel.Current())
}

// 发现新地点时切换，旧地重游不切换
func TestArtSelectorDiscovery(t *testing.T) {
	s := state.NewGameState()
	sel := NewArtSelector(s)

	prevDiscovered := len(s.DiscoveredLocations)
	s.CurrentLocationID = "forest"
	s.DiscoveredLocations["forest"] = true
	sel.Observe(TurnObservation{
		PrevLocationID: "old_shack",
		PrevDiscovered: prevDiscovered,
		Command:        "move east",
	}, s)
	assert.Equal(t, "Forest", sel.Current().Title)

	// 折返已发现的地点
	before := sel.Current()
	s.CurrentLocationID = "old_shack"
	sel.Observe(TurnObservation{
		PrevLocationID: "forest",
		PrevDiscovered: len(s.DiscoveredLocations),
		Command:        "move west",
	}, s)
	assert.Equal(t, before, sel.Current())
}
