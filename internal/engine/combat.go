package engine

import (
	"fmt"
	"strings"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// BossFlags 首领击败后设置的剧情标记
var BossFlags = map[string]string{
	"giant_frog":  "frog_defeated",
	"dragon":      "dragon_defeated",
	"ogre":        "ogre_defeated",
	"goblin_army": "goblin_army_defeated",
	"king_makor":  "makor_defeated",
	"onyx_witch":  "onyx_witch_defeated",
}

// BossTitles 首领击败后授予的称号
var BossTitles = map[string]string{
	"giant_frog":  "Swampbreaker",
	"dragon":      "Peakslayer",
	"ogre":        "Hoardbreaker",
	"goblin_army": "Road Reaper",
	"king_makor":  "Rotbane",
	"onyx_witch":  "Witchfall Champion",
}

// RunChance 逃跑成功率
func RunChance(enemy *content.Enemy) float64 {
	if enemy.ID == "goblin_army" {
		return 0.22
	}
	if enemy.Category == content.EnemyNormal {
		return 0.65
	}
	return 0.28
}

func formatIntent(enc *state.Encounter, enemy *content.Enemy) string {
	if len(enemy.Intents) == 0 {
		return fmt.Sprintf("%s sizes you up.", enemy.Name)
	}
	intent := enemy.Intents[enc.IntentIndex%len(enemy.Intents)]
	return intent.Telegraph
}

func intentPayload(enc *state.Encounter, enemy *content.Enemy) content.Intent {
	if len(enemy.Intents) == 0 {
		return content.Intent{Name: "Strike", BaseDamage: enemy.Attack, DefendMultiplier: 0.5}
	}
	return enemy.Intents[enc.IntentIndex%len(enemy.Intents)]
}

func healthSnapshotLines(s *state.GameState, enemy *content.Enemy) []string {
	enemyHP := 0
	if s.ActiveEncounter != nil {
		enemyHP = s.ActiveEncounter.CurrentHP
	}
	if enemyHP < 0 {
		enemyHP = 0
	}
	return CombatHealthLines(
		s.Player.HP, state.EffectiveStats(s.Player).MaxHP,
		enemy.Name, enemyHP, enemy.HP,
	)
}

func tickCooldowns(p *state.Player) {
	updated := make(map[string]int)
	for skill, turns := range p.Cooldowns {
		if turns > 1 {
			updated[skill] = turns - 1
		}
	}
	p.Cooldowns = updated
}

// StartEncounter 开始一场遭遇战（已在战斗中时为空操作）
func (e *Engine) StartEncounter(s *state.GameState, enemyID string) []string {
	if s.ActiveEncounter != nil {
		return nil
	}

	enemy, ok := content.Enemies[enemyID]
	if !ok {
		return nil
	}

	enc := &state.Encounter{
		EnemyID:      enemyID,
		CurrentHP:    enemy.HP,
		SpecialPhase: state.PhaseCombat,
	}
	switch enemy.Special {
	case content.SpecialGoblinNegotiation:
		enc.SpecialPhase = state.PhaseNegotiation
	case content.SpecialWitchBarrier:
		enc.WitchBarrierActive = true
	}
	s.ActiveEncounter = enc

	var messages []string
	messages = append(messages, enemy.PreDialogue...)

	if enemyID == "king_makor" && state.HasItem(s.Player, "mysterious_ring") && !s.Flags["ring_surge_active"] {
		s.Flags["ring_surge_active"] = true
		s.Player.TempBonus["attack"] += 4
		s.Player.TempBonus["defense"] += 2
		messages = append(messages, "The mysterious ring flares and empowers you.")
	}

	messages = append(messages, fmt.Sprintf("Encounter started: %s (%d HP).", enemy.Name, enc.CurrentHP))
	if enc.SpecialPhase != state.PhaseNegotiation {
		messages = append(messages, formatIntent(enc, enemy))
	}
	return messages
}

// EncounterStatus 当前遭遇战状态行
func (e *Engine) EncounterStatus(s *state.GameState) []string {
	if s.ActiveEncounter == nil {
		return nil
	}
	enemy := content.Enemies[s.ActiveEncounter.EnemyID]
	lines := []string{fmt.Sprintf("Enemy: %s HP %d/%d", enemy.Name, s.ActiveEncounter.CurrentHP, enemy.HP)}
	if s.ActiveEncounter.SpecialPhase == state.PhaseNegotiation {
		lines = append(lines, "Actions: joke, bribe, or fight.")
	} else {
		lines = append(lines, formatIntent(s.ActiveEncounter, enemy))
	}
	return lines
}

func playerAttackDamage(s *state.GameState, enemy *content.Enemy, multiplier float64) int {
	stats := state.EffectiveStats(s.Player)
	attackValue := int(float64(stats.Attack) * multiplier)
	damage := attackValue + s.RNG.IntRange(-2, 3) - enemy.Defense/2
	if damage < 1 {
		damage = 1
	}
	return damage
}

func enemyAttackDamage(s *state.GameState, enc *state.Encounter, payload content.Intent) int {
	stats := state.EffectiveStats(s.Player)
	damage := payload.BaseDamage + s.RNG.IntRange(-3, 3) - stats.Defense/3
	if damage < 1 {
		damage = 1
	}
	if enc.PlayerDefending {
		damage = int(float64(damage) * payload.DefendMultiplier)
		if damage < 1 {
			damage = 1
		}
	}
	return damage
}

func awardTitle(s *state.GameState, enemyID string) string {
	title, ok := BossTitles[enemyID]
	if !ok {
		return ""
	}
	for _, owned := range s.Player.Titles {
		if owned == title {
			return ""
		}
	}
	s.Player.Titles = append(s.Player.Titles, title)
	return title
}

func (e *Engine) resolveVictory(s *state.GameState) []string {
	enc := s.ActiveEncounter
	if enc == nil {
		return nil
	}
	enemy := content.Enemies[enc.EnemyID]
	messages := []string{fmt.Sprintf("You defeat %s.", enemy.Name)}
	messages = append(messages, enemy.PostDialogue...)

	if flag, ok := BossFlags[enc.EnemyID]; ok {
		s.Flags[flag] = true
	}
	if enc.EnemyID == "goblin_army" {
		s.Flags["goblin_pass_granted"] = true
	}
	if enc.EnemyID == "onyx_witch" && state.HasItem(s.Player, "crusty_key") {
		s.Flags["elle_freed"] = true
		messages = append(messages, "You unlock Elle's chains with the crusty key.")
	}

	if title := awardTitle(s, enc.EnemyID); title != "" {
		messages = append(messages, fmt.Sprintf("Title earned: %s.", title))
	}

	s.RecordKill(s.CurrentLocationID, enemy.Name)
	messages = append(messages, e.grantRewards(s, enc.EnemyID)...)

	s.ActiveEncounter = nil
	clearRingSurge(s)
	return messages
}

func penaltyOnGoblinLoss(s *state.GameState) string {
	if s.RNG.Float64() > 0.5 {
		return ""
	}
	switch s.RNG.Intn(3) {
	case 0:
		if s.Player.BaseAttack > 1 {
			s.Player.BaseAttack--
		}
		return "The goblins beat you down. Base attack is reduced by 1."
	case 1:
		if s.Player.BaseDefense > 0 {
			s.Player.BaseDefense--
		}
		return "The goblins bruise your guard. Base defense is reduced by 1."
	default:
		if s.Player.BaseMaxHP > 10 {
			s.Player.BaseMaxHP--
		}
		if s.Player.HP > 1 {
			s.Player.HP--
		}
		state.ClampHP(s.Player)
		return "The goblins leave deep wounds. Base health is reduced by 1."
	}
}

func (e *Engine) resolveDefeat(s *state.GameState, enemyID string) []string {
	messages := []string{"You collapse and lose consciousness."}
	if enemyID == "goblin_army" {
		if penalty := penaltyOnGoblinLoss(s); penalty != "" {
			messages = append(messages, penalty)
		}
	}
	s.ActiveEncounter = nil
	s.CurrentLocationID = content.StartLocationID
	s.Player.HP = state.EffectiveStats(s.Player).MaxHP / 2
	if s.Player.HP < 1 {
		s.Player.HP = 1
	}
	clearRingSurge(s)
	messages = append(messages, "You wake in the Old Shack, battered but alive.")
	return messages
}

func (e *Engine) enemyTurn(s *state.GameState) []string {
	enc := s.ActiveEncounter
	if enc == nil {
		return nil
	}
	enemy := content.Enemies[enc.EnemyID]
	payload := intentPayload(enc, enemy)
	damage := enemyAttackDamage(s, enc, payload)
	s.Player.HP -= damage
	state.ClampHP(s.Player)

	messages := []string{fmt.Sprintf("%s uses %s and deals %d damage.", enemy.Name, payload.Name, damage)}

	if enc.EnemyID == "onyx_witch" && enc.WitchBarrierActive {
		const curse = 4
		s.Player.HP -= curse
		if s.Player.HP < 0 {
			s.Player.HP = 0
		}
		messages = append(messages, fmt.Sprintf("The binding curse drains %d more HP.", curse))
	}

	messages = append(messages, healthSnapshotLines(s, enemy)...)

	if s.Player.HP <= 0 {
		return append(messages, e.resolveDefeat(s, enc.EnemyID)...)
	}

	enc.PlayerDefending = false
	enc.IntentIndex++
	enc.TurnCount++
	tickCooldowns(s.Player)

	if s.ActiveEncounter != nil {
		messages = append(messages, formatIntent(enc, enemy))
	}
	return messages
}

func (e *Engine) handleGoblinNegotiation(s *state.GameState, action string) []string {
	enc := s.ActiveEncounter
	if enc == nil {
		return nil
	}
	switch action {
	case "joke":
		s.ActiveEncounter = nil
		s.Flags["goblin_pass_granted"] = true
		return []string{
			"You tell a terrible joke about goblin fashion.",
			"The mob erupts in laughter and cuts your ropes.",
			"They let you pass, still giggling.",
		}
	case "bribe":
		if s.Player.Gold <= 0 {
			enc.SpecialPhase = state.PhaseCombat
			return []string{"You have no gold. The goblins snarl and charge. Fight begins."}
		}
		taken := s.Player.Gold
		s.Player.Gold = 0
		s.ActiveEncounter = nil
		s.Flags["goblin_pass_granted"] = true
		return []string{
			fmt.Sprintf("You offer your coin. They take all %d gold and shove you onward.", taken),
			"You survive the ambush, but gain no riddle.",
		}
	case "fight":
		enc.SpecialPhase = state.PhaseCombat
		return []string{
			"You pull free and draw steel. The goblins howl with laughter.",
			formatIntent(enc, content.Enemies[enc.EnemyID]),
		}
	}
	return []string{"The goblins mock you. Choose `joke`, `bribe`, or `fight`."}
}

// AttemptRun 尝试逃离当前遭遇战
func (e *Engine) AttemptRun(s *state.GameState) []string {
	enc := s.ActiveEncounter
	if enc == nil {
		return []string{"There is nothing to run from."}
	}

	enemy := content.Enemies[enc.EnemyID]
	if enc.SpecialPhase == state.PhaseNegotiation {
		return []string{"You are tied up. Running is not an option. Choose joke, bribe, or fight."}
	}

	if s.RNG.Float64() < RunChance(enemy) {
		s.ActiveEncounter = nil
		clearRingSurge(s)
		return []string{fmt.Sprintf("You escape from %s.", enemy.Name)}
	}

	messages := []string{fmt.Sprintf("You fail to escape %s.", enemy.Name)}
	return append(messages, e.enemyTurn(s)...)
}

// PlayerAction 解析一次战斗中的玩家行动
func (e *Engine) PlayerAction(s *state.GameState, action string, args []string) []string {
	enc := s.ActiveEncounter
	if enc == nil {
		return []string{"There is nothing to fight."}
	}

	enemy := content.Enemies[enc.EnemyID]
	var messages []string

	if enc.SpecialPhase == state.PhaseNegotiation {
		return e.handleGoblinNegotiation(s, action)
	}

	consumeTurn := true

	switch action {
	case "fight":
		if enc.WitchBarrierActive && enc.EnemyID == "onyx_witch" {
			messages = append(messages, "Your strike stops against black magic. You cannot attack yet.")
		} else {
			damage := playerAttackDamage(s, enemy, 1.0)
			enc.CurrentHP -= damage
			messages = append(messages, fmt.Sprintf("You strike %s for %d damage.", enemy.Name, damage))
			messages = append(messages, healthSnapshotLines(s, enemy)...)
		}

	case "defend":
		enc.PlayerDefending = true
		messages = append(messages, "You brace for impact.")

	case "skill":
		skillName := strings.ToLower(strings.TrimSpace(strings.Join(args, " ")))
		if skillName == "" {
			return []string{"Specify a skill. Try: skill focus strike"}
		}
		if !s.Player.Skills[skillName] {
			return []string{fmt.Sprintf("You have not learned '%s'.", skillName)}
		}
		if s.Player.Cooldowns[skillName] > 0 {
			return []string{fmt.Sprintf("%s is on cooldown for %d more turn(s).", skillName, s.Player.Cooldowns[skillName])}
		}

		switch skillName {
		case "focus strike":
			if enc.WitchBarrierActive && enc.EnemyID == "onyx_witch" {
				messages = append(messages, "Focus Strike breaks against the witch's binding spell.")
			} else {
				damage := playerAttackDamage(s, enemy, 1.8)
				enc.CurrentHP -= damage
				messages = append(messages, fmt.Sprintf("Focus Strike lands for %d damage.", damage))
				messages = append(messages, healthSnapshotLines(s, enemy)...)
			}
			s.Player.Cooldowns[skillName] = 2
		case "guard stance":
			enc.PlayerDefending = true
			state.Heal(s.Player, 6)
			messages = append(messages, "You enter Guard Stance, reducing incoming damage and restoring 6 HP.")
			s.Player.Cooldowns[skillName] = 3
		case "second wind":
			state.Heal(s.Player, 16)
			messages = append(messages, "Second Wind restores 16 HP.")
			s.Player.Cooldowns[skillName] = 4
		default:
			messages = append(messages, "That skill has no effect.")
			consumeTurn = false
		}

	case "use", "read":
		if len(args) == 0 {
			return []string{"Use what? Example: use minor potion"}
		}
		itemQuery := strings.Join(args, " ")
		itemMessages, consumed := e.useItem(s, itemQuery, true, enc.EnemyID)
		consumeTurn = consumed
		messages = append(messages, itemMessages...)

		if enc.EnemyID == "onyx_witch" && enc.WitchBarrierActive {
			if state.FindItemByQuery(s.Player, itemQuery) == "goblin_riddle" ||
				strings.EqualFold(itemQuery, "goblin riddle") || strings.EqualFold(itemQuery, "riddle") {
				enc.WitchBarrierActive = false
				messages = append(messages, "The riddle's final line shatters the witch's black binding.")
			}
		}

	case "joke", "bribe":
		messages = append(messages, "That only works when negotiating with the goblin army.")
		consumeTurn = false

	default:
		return []string{"Unknown combat action."}
	}

	if enc.CurrentHP <= 0 {
		return append(messages, e.resolveVictory(s)...)
	}

	if consumeTurn && s.ActiveEncounter != nil {
		messages = append(messages, e.enemyTurn(s)...)
	}
	return messages
}
