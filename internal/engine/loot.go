package engine

import (
	"fmt"
	"sort"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/rng"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// CoreSkills 老人传授的基础战斗技能
var CoreSkills = []string{"focus strike", "guard stance", "second wind"}

func weightedPickDrop(gen *rng.Generator, table []content.WeightedDrop) string {
	if len(table) == 0 {
		return ""
	}
	total := 0
	for _, entry := range table {
		if entry.Weight > 0 {
			total += entry.Weight
		}
	}
	if total <= 0 {
		return ""
	}
	roll := gen.IntRange(1, total)
	cursor := 0
	for _, entry := range table {
		if entry.Weight > 0 {
			cursor += entry.Weight
		}
		if roll <= cursor {
			return entry.ItemID
		}
	}
	return table[len(table)-1].ItemID
}

// ItemPower 装备强度比较元组，用于最优装备选择
// 按 3HP≈1训练点 的换算把HP折算成属性点。
type ItemPower struct {
	Normalized float64
	Attack     int
	Defense    int
	MaxHP      int
	Value      int
}

// ItemPowerOf 计算物品的强度元组，空ID返回最低值
func ItemPowerOf(itemID string) ItemPower {
	if itemID == "" {
		return ItemPower{Normalized: -9999, Attack: -9999, Defense: -9999, MaxHP: -9999, Value: -9999}
	}
	item, ok := content.Items[itemID]
	if !ok {
		return ItemPower{Normalized: -9999, Attack: -9999, Defense: -9999, MaxHP: -9999, Value: -9999}
	}
	return ItemPower{
		Normalized: float64(item.AttackBonus) + float64(item.DefenseBonus) + float64(item.MaxHPBonus)/3.0,
		Attack:     item.AttackBonus,
		Defense:    item.DefenseBonus,
		MaxHP:      item.MaxHPBonus,
		Value:      item.Value,
	}
}

// Beats 按加权元组字典序比较强度
func (p ItemPower) Beats(other ItemPower) bool {
	if p.Normalized != other.Normalized {
		return p.Normalized > other.Normalized
	}
	if p.Attack != other.Attack {
		return p.Attack > other.Attack
	}
	if p.Defense != other.Defense {
		return p.Defense > other.Defense
	}
	if p.MaxHP != other.MaxHP {
		return p.MaxHP > other.MaxHP
	}
	return p.Value > other.Value
}

// grantRewards 发放击败敌人的经验、金币、技能点与掉落
func (e *Engine) grantRewards(s *state.GameState, enemyID string) []string {
	enemy := content.Enemies[enemyID]
	location := content.Locations[s.CurrentLocationID]
	var messages []string

	messages = append(messages, state.AwardXP(s.Player, enemy.XPReward)...)

	if enemy.GoldReward > 0 {
		s.Player.Gold += enemy.GoldReward
		messages = append(messages, fmt.Sprintf("You gain %d gold.", enemy.GoldReward))
	}

	skillReward := enemy.SkillPointsReward
	if enemy.Category == content.EnemyNormal && location != nil {
		skillReward += location.SkillPointsPerKill
	}
	if skillReward > 0 {
		s.Player.SkillPoints += skillReward
		messages = append(messages, fmt.Sprintf("You gain %d skill points.", skillReward))
	}

	drops := make([]string, 0, len(enemy.GuaranteedDrops)+2)
	drops = append(drops, enemy.GuaranteedDrops...)

	dropChance := 0.7
	if enemy.Category == content.EnemyNormal {
		dropChance = 0.45
	}
	if len(enemy.LootTable) > 0 && s.RNG.Float64() < dropChance {
		if rolled := weightedPickDrop(s.RNG, enemy.LootTable); rolled != "" {
			drops = append(drops, rolled)
		}
	}

	if enemy.Category == content.EnemyNormal && s.RNG.Float64() < 0.04 {
		if rare := weightedPickDrop(s.RNG, content.RarityTables["common_field"]); rare != "" {
			drops = append(drops, rare)
		}
	}

	seen := make(map[string]bool, len(drops))
	for _, itemID := range drops {
		if seen[itemID] {
			continue
		}
		seen[itemID] = true
		item, ok := content.Items[itemID]
		if ok && item.Type == content.ItemTypeBoon {
			if item.SkillPointBonus > 0 {
				s.Player.SkillPoints += item.SkillPointBonus
				messages = append(messages, fmt.Sprintf(
					"Rare boon found: %s grants %d skill points.", item.Name, item.SkillPointBonus))
			}
			continue
		}
		state.AddItem(s.Player, itemID, 1)
		messages = append(messages, fmt.Sprintf("Loot obtained: %s.", content.ItemName(itemID)))
	}

	return messages
}

// EquipItem 把持有的物品装备到对应槽位
func (e *Engine) EquipItem(s *state.GameState, itemQuery string) []string {
	itemID := state.FindItemByQuery(s.Player, itemQuery)
	if itemID == "" {
		return []string{fmt.Sprintf("You do not have '%s'.", itemQuery)}
	}

	item, ok := content.Items[itemID]
	if !ok {
		return []string{"That item cannot be equipped."}
	}

	slot, ok := content.EquipmentSlotByType[item.Type]
	if !ok {
		return []string{fmt.Sprintf("%s is not equippable.", item.Name)}
	}

	previous := s.Player.Equipment[slot]
	s.Player.Equipment[slot] = itemID
	state.ClampHP(s.Player)
	if previous != "" && previous != itemID {
		return []string{fmt.Sprintf("You equip %s and unequip %s.", item.Name, content.ItemName(previous))}
	}
	return []string{fmt.Sprintf("You equip %s.", item.Name)}
}

// EquipBestAvailable 为每个槽位自动装备背包中最优的物品
func (e *Engine) EquipBestAvailable(s *state.GameState) []string {
	var equippableOwned []string
	for itemID := range s.Player.Inventory {
		item, ok := content.Items[itemID]
		if !ok {
			continue
		}
		if _, equippable := content.EquipmentSlotByType[item.Type]; equippable {
			equippableOwned = append(equippableOwned, itemID)
		}
	}
	if len(equippableOwned) == 0 {
		return []string{"You have no equippable items in your inventory."}
	}
	sort.Strings(equippableOwned)

	var changes []string
	for _, slot := range content.EquipmentSlots {
		currentID := s.Player.Equipment[slot]
		bestID := currentID
		bestScore := ItemPowerOf(currentID)

		for _, itemID := range equippableOwned {
			item := content.Items[itemID]
			if content.EquipmentSlotByType[item.Type] != slot {
				continue
			}
			if score := ItemPowerOf(itemID); score.Beats(bestScore) {
				bestID = itemID
				bestScore = score
			}
		}

		if bestID != "" && bestID != currentID {
			s.Player.Equipment[slot] = bestID
			if currentID != "" {
				changes = append(changes, fmt.Sprintf("%s: %s -> %s", slot, content.ItemName(currentID), content.ItemName(bestID)))
			} else {
				changes = append(changes, fmt.Sprintf("%s: none -> %s", slot, content.ItemName(bestID)))
			}
		}
	}

	state.ClampHP(s.Player)
	if len(changes) == 0 {
		return []string{"Your equipped gear is already best-in-slot for your current inventory."}
	}

	messages := []string{"Best-in-slot gear equipped:"}
	for _, line := range changes {
		messages = append(messages, "  "+line)
	}
	return messages
}

// useItem 使用物品，返回(消息, 是否消耗回合)
func (e *Engine) useItem(s *state.GameState, itemQuery string, inCombat bool, currentEnemyID string) ([]string, bool) {
	itemID := state.FindItemByQuery(s.Player, itemQuery)
	if itemID == "" {
		return []string{fmt.Sprintf("You do not have '%s'.", itemQuery)}, false
	}

	item, ok := content.Items[itemID]
	if !ok {
		return []string{"Nothing happens."}, false
	}

	if item.Type == content.ItemTypeConsumable {
		healed := state.Heal(s.Player, item.HealAmount)
		state.RemoveItem(s.Player, itemID, 1)
		return []string{fmt.Sprintf("You use %s and recover %d HP.", item.Name, healed)}, true
	}

	switch itemID {
	case "mysterious_ring":
		if s.Flags["ring_surge_active"] {
			return []string{"The ring is quiet for now."}, false
		}
		s.Flags["ring_surge_active"] = true
		s.Player.TempBonus["attack"] += 4
		s.Player.TempBonus["defense"] += 2
		return []string{"You rub the ring. Power floods your limbs."}, true

	case "goblin_riddle":
		if inCombat && currentEnemyID == "onyx_witch" {
			return []string{"You read the riddle aloud. The witch's binding magic fractures."}, true
		}
		return []string{"The riddle speaks in paradox. You sense it is meant for the witch."}, false

	case "crusty_key":
		if s.CurrentLocationID == "witch_terrace" && s.Flags["onyx_witch_defeated"] && !s.Flags["elle_freed"] {
			s.Flags["elle_freed"] = true
			return []string{"The crusty key opens Elle's chains. She is free."}, false
		}
		return []string{"The key does not fit anything here."}, false

	case "vial_of_tears":
		if s.CurrentLocationID == "witch_terrace" && s.Flags["elle_freed"] && !s.Flags["elle_cleansed"] {
			state.RemoveItem(s.Player, itemID, 1)
			s.Flags["elle_cleansed"] = true
			s.Victory = true
			return []string{
				"You pour the vial over Elle's hands. The corruption drains away.",
				"Elle is restored. The journey is complete.",
			}, false
		}
		return []string{"The vial reacts to nothing here."}, false

	case "hoard_treasure":
		if s.CurrentLocationID == content.StartLocationID && !s.Flags["hoard_delivered"] {
			state.RemoveItem(s.Player, itemID, 1)
			s.Player.Gold += 180
			s.Flags["hoard_delivered"] = true
			return []string{
				"You hand the hoard to the Wise Old Man. He returns most of it for your journey.",
				"Reward: 180 gold.",
			}, false
		}
		return []string{"You decide to hold the hoard for now."}, false
	}

	return []string{fmt.Sprintf("%s cannot be directly used right now.", item.Name)}, false
}

// clearRingSurge 移除激活中的戒指临时加成
func clearRingSurge(s *state.GameState) {
	if !s.Flags["ring_surge_active"] {
		return
	}
	delete(s.Flags, "ring_surge_active")
	s.Player.TempBonus["attack"] -= 4
	s.Player.TempBonus["defense"] -= 2
	if s.Player.TempBonus["attack"] == 0 {
		delete(s.Player.TempBonus, "attack")
	}
	if s.Player.TempBonus["defense"] == 0 {
		delete(s.Player.TempBonus, "defense")
	}
}

// TrainSkill 消耗技能点提升单项基础属性
func (e *Engine) TrainSkill(s *state.GameState, skillName string, amount int) []string {
	if amount <= 0 {
		return []string{"Training points must be positive."}
	}
	if s.Player.SkillPoints < amount {
		return []string{"You do not have enough skill points."}
	}

	switch skillName {
	case "attack", "atk":
		s.Player.SkillPoints -= amount
		s.Player.BaseAttack += amount
		return []string{fmt.Sprintf("Attack trained by +%d.", amount)}
	case "defense", "def", "guard":
		s.Player.SkillPoints -= amount
		s.Player.BaseDefense += amount
		return []string{fmt.Sprintf("Defense trained by +%d.", amount)}
	case "health", "hp", "vitality":
		s.Player.SkillPoints -= amount
		s.Player.BaseMaxHP += amount * 3
		s.Player.HP += amount * 3
		state.ClampHP(s.Player)
		return []string{fmt.Sprintf("Health trained by +%d max HP.", amount*3)}
	}
	return []string{"Unknown skill. Use attack, defense, or health."}
}

// TrainAllEqually 把技能点均分到三项属性
func (e *Engine) TrainAllEqually(s *state.GameState) []string {
	available := s.Player.SkillPoints
	if available < 3 {
		return []string{"You need at least 3 skill points to train all stats equally."}
	}

	perStat := available / 3
	remaining := available - perStat*3

	s.Player.SkillPoints = remaining
	s.Player.BaseAttack += perStat
	s.Player.BaseDefense += perStat
	hpGain := perStat * 3
	s.Player.BaseMaxHP += hpGain
	s.Player.HP += hpGain
	state.ClampHP(s.Player)

	messages := []string{fmt.Sprintf(
		"Trained equally: attack +%d, defense +%d, health +%d max HP.", perStat, perStat, hpGain)}
	if remaining > 0 {
		messages = append(messages, fmt.Sprintf("%d skill point(s) remain unspent.", remaining))
	}
	return messages
}

// TrainAllocation 按指定分配消耗技能点
func (e *Engine) TrainAllocation(s *state.GameState, attackPts, defensePts, healthPts int) []string {
	if attackPts < 0 || defensePts < 0 || healthPts < 0 {
		return []string{"Training values cannot be negative."}
	}

	total := attackPts + defensePts + healthPts
	if total <= 0 {
		return []string{"Provide at least one positive training value."}
	}
	if s.Player.SkillPoints < total {
		return []string{fmt.Sprintf(
			"You do not have enough skill points (need %d, have %d).", total, s.Player.SkillPoints)}
	}

	s.Player.SkillPoints -= total
	s.Player.BaseAttack += attackPts
	s.Player.BaseDefense += defensePts
	hpGain := healthPts * 3
	s.Player.BaseMaxHP += hpGain
	s.Player.HP += hpGain
	state.ClampHP(s.Player)

	return []string{
		fmt.Sprintf("Training applied: attack +%d, defense +%d, health +%d max HP.", attackPts, defensePts, hpGain),
		fmt.Sprintf("Skill points remaining: %d.", s.Player.SkillPoints),
	}
}

// ensureCoreSkills 老人教学时授予基础战斗技能
func ensureCoreSkills(p *state.Player) {
	for _, skill := range CoreSkills {
		p.Skills[skill] = true
	}
}
