package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joey1399/byte-world-ai/internal/content"
)

// 新玩家的初始装备与属性
func TestNewPlayer(t *testing.T) {
	p := NewPlayer()
	assert.Equal(t, "Wanderer", p.Name)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 50, p.HP)
	assert.Equal(t, 20, p.Gold)
	assert.Equal(t, "rusted_blade", p.Equipment["weapon"])
	assert.Equal(t, "patched_coat", p.Equipment["armor"])
	assert.Equal(t, 2, p.Inventory["minor_potion"])
}

func TestNewGameState(t *testing.T) {
	s := NewGameState()
	assert.Equal(t, content.StartLocationID, s.CurrentLocationID)
	assert.Equal(t, content.StageAwakening, s.QuestStage)
	assert.True(t, s.DiscoveredLocations[content.StartLocationID])
	assert.Nil(t, s.ActiveEncounter)
	require.NotNil(t, s.RNG)
}

// 装备与临时加成叠加进有效属性
func TestEffectiveStats(t *testing.T) {
	p := NewPlayer()
	base := EffectiveStats(p)
	// 初始装备：rusted_blade +1攻，patched_coat +1防+2血
	assert.Equal(t, p.BaseAttack+1, base.Attack)
	assert.Equal(t, p.BaseDefense+1, base.Defense)
	assert.Equal(t, p.BaseMaxHP+2, base.MaxHP)

	p.TempBonus["attack"] = 3
	p.TempBonus["max_hp"] = 10
	boosted := EffectiveStats(p)
	assert.Equal(t, base.Attack+3, boosted.Attack)
	assert.Equal(t, base.MaxHP+10, boosted.MaxHP)

	// 未知装备ID不参与计算
	p.Equipment["shield"] = "no_such_item"
	assert.Equal(t, boosted, EffectiveStats(p))
}

func TestClampHP(t *testing.T) {
	p := NewPlayer()
	maxHP := EffectiveStats(p).MaxHP

	p.HP = maxHP + 100
	ClampHP(p)
	assert.Equal(t, maxHP, p.HP)

	p.HP = -5
	ClampHP(p)
	assert.Equal(t, 0, p.HP)
}

// 治疗不超过上限，返回实际恢复量
func TestHeal(t *testing.T) {
	p := NewPlayer()
	maxHP := EffectiveStats(p).MaxHP

	p.HP = maxHP - 5
	assert.Equal(t, 5, Heal(p, 18))
	assert.Equal(t, maxHP, p.HP)

	assert.Equal(t, 0, Heal(p, 18))
	assert.Equal(t, 0, Heal(p, -3))
}

func TestInventoryOps(t *testing.T) {
	p := NewPlayer()

	AddItem(p, "crusty_sword", 1)
	assert.True(t, HasItem(p, "crusty_sword"))
	AddItem(p, "crusty_sword", 0)
	assert.Equal(t, 1, p.Inventory["crusty_sword"])

	// 数量不足
	assert.False(t, RemoveItem(p, "crusty_sword", 2))
	assert.True(t, HasItem(p, "crusty_sword"))

	// 清零后从背包移除
	assert.True(t, RemoveItem(p, "crusty_sword", 1))
	assert.False(t, HasItem(p, "crusty_sword"))
	assert.NotContains(t, p.Inventory, "crusty_sword")

	// 部分移除
	assert.True(t, RemoveItem(p, "minor_potion", 1))
	assert.Equal(t, 1, p.Inventory["minor_potion"])
}

// 经验曲线与升级收益
func TestAwardXP(t *testing.T) {
	assert.Equal(t, 40, XPToNextLevel(1))
	assert.Equal(t, 70, XPToNextLevel(2))
	assert.Equal(t, 100, XPToNextLevel(3))

	p := NewPlayer()
	p.HP = 10

	messages := AwardXP(p, 30)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 30, p.XP)
	assert.Len(t, messages, 1)
	assert.Equal(t, 10, p.HP)

	// 跨过阈值升级：属性提升且满血
	messages = AwardXP(p, 15)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 5, p.XP)
	assert.Equal(t, 56, p.BaseMaxHP)
	assert.Equal(t, 9, p.BaseAttack)
	assert.Equal(t, 6, p.BaseDefense)
	assert.Equal(t, EffectiveStats(p).MaxHP, p.HP)
	assert.Len(t, messages, 2)

	// 一次发放跨多级
	p2 := NewPlayer()
	AwardXP(p2, 40+70+5)
	assert.Equal(t, 3, p2.Level)
	assert.Equal(t, 5, p2.XP)

	assert.Empty(t, AwardXP(p2, 0))
}

func TestRecordKill(t *testing.T) {
	s := NewGameState()
	s.Kills = nil

	s.RecordKill("forest", "Forest Wolf")
	s.RecordKill("forest", "Forest Wolf")
	s.RecordKill("swamp", "Sewer Rat")

	assert.Equal(t, 2, s.Kills["forest"]["Forest Wolf"])
	assert.Equal(t, 1, s.Kills["swamp"]["Sewer Rat"])
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "makors soul", NormalizeName("  Makor's Soul  "))
	assert.Equal(t, "skill cache 10", NormalizeName("Skill Cache (+10)"))
	assert.Equal(t, "", NormalizeName("!!!"))
}

// 按ID、全名、部分名查找背包物品
func TestFindItemByQuery(t *testing.T) {
	p := NewPlayer()

	assert.Equal(t, "minor_potion", FindItemByQuery(p, "minor_potion"))
	assert.Equal(t, "minor_potion", FindItemByQuery(p, "Minor Potion"))
	assert.Equal(t, "minor_potion", FindItemByQuery(p, "potion"))

	// 不持有的物品查不到
	assert.Equal(t, "", FindItemByQuery(p, "dragon armor"))
	assert.Equal(t, "", FindItemByQuery(p, ""))
}
