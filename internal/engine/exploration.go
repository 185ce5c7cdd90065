package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// directionAliases 方向缩写
var directionAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west", "u": "up", "d": "down",
}

func location(s *state.GameState) *content.Location {
	return content.Locations[s.CurrentLocationID]
}

func describeLocation(s *state.GameState) string {
	loc := location(s)
	if len(loc.Descriptions) == 0 {
		return "You stand in a quiet place."
	}
	return loc.Descriptions[s.TurnCount%len(loc.Descriptions)]
}

// visibleNPCNames 当前地点可见的NPC名称
// Elle在女巫被击败前不可见。
func visibleNPCNames(s *state.GameState, loc *content.Location) []string {
	var names []string
	for _, npcID := range loc.NPCs {
		if npcID == "elle" && !s.Flags["onyx_witch_defeated"] {
			continue
		}
		if npc, ok := content.NPCs[npcID]; ok {
			names = append(names, npc.Name)
		}
	}
	return names
}

// Look 完整的地点描述
func (e *Engine) Look(s *state.GameState) []string {
	loc := location(s)
	dirs := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	exits := "none"
	if len(dirs) > 0 {
		exits = strings.Join(dirs, ", ")
	}

	messages := []string{
		fmt.Sprintf("%s [%s]", loc.Name, loc.Area),
		describeLocation(s),
		fmt.Sprintf("Exits: %s", exits),
	}
	if names := visibleNPCNames(s, loc); len(names) > 0 {
		messages = append(messages, fmt.Sprintf("NPCs here: %s", strings.Join(names, ", ")))
	}
	return messages
}

// Sense 当前地区的暗示文本
func (e *Engine) Sense(s *state.GameState) []string {
	loc := location(s)
	hint := loc.SenseHint
	if hint == "" {
		hint = "Nothing unusual stands out."
	}
	messages := []string{hint}

	switch {
	case s.CurrentLocationID == "old_shack" && !s.Flags["met_old_man"]:
		messages = append(messages, "A patient voice waits inside. Maybe you should talk first.")
	case s.CurrentLocationID == "mountain_peak" && !s.Flags["dragon_defeated"]:
		messages = append(messages, "The air tastes like ash and blood.")
	case s.CurrentLocationID == "desolate_road" && !s.Flags["goblin_army_defeated"]:
		messages = append(messages, "Small eyes track you from the broken walls.")
	case s.CurrentLocationID == "witch_terrace" && !s.Flags["onyx_witch_defeated"]:
		messages = append(messages, "A curse crawls over your skin with every breath.")
	case s.CurrentLocationID == "witch_terrace" && !s.Flags["elle_freed"]:
		messages = append(messages, "A chain lock clicks faintly near Elle.")
	}
	return messages
}

// exitRequirementMet 检查出口通行条件
func exitRequirementMet(s *state.GameState, req *content.ExitRequirement) bool {
	if req == nil {
		return true
	}
	for _, flag := range req.AllFlags {
		if !s.Flags[flag] {
			return false
		}
	}
	if len(req.AnyFlags) > 0 {
		met := false
		for _, flag := range req.AnyFlags {
			if s.Flags[flag] {
				met = true
				break
			}
		}
		if !met {
			return false
		}
	}
	return true
}

func (e *Engine) maybeSpawnRandomEncounter(s *state.GameState) []string {
	loc := location(s)
	if s.ActiveEncounter != nil || loc.EncounterChance <= 0 || len(loc.Encounters) == 0 {
		return nil
	}
	if s.RNG.Float64() >= loc.EncounterChance {
		return nil
	}

	total := 0
	for _, entry := range loc.Encounters {
		total += entry.Weight
	}
	roll := s.RNG.IntRange(1, total)
	cursor := 0
	selected := loc.Encounters[0].EnemyID
	for _, entry := range loc.Encounters {
		cursor += entry.Weight
		if roll <= cursor {
			selected = entry.EnemyID
			break
		}
	}
	return e.StartEncounter(s, selected)
}

func bossRequirementsMet(s *state.GameState, loc *content.Location) bool {
	for _, flag := range loc.BossRequireFlags {
		if !s.Flags[flag] {
			return false
		}
	}
	return true
}

// handleEntryEvents 进入地点时的剧情事件与遭遇触发
func (e *Engine) handleEntryEvents(s *state.GameState) []string {
	var messages []string
	loc := location(s)

	// 黑厅过场：首次进入被掳到地牢直接开打
	if s.CurrentLocationID == "black_hall" && !s.Flags["makor_defeated"] && !s.Flags["black_hall_cutscene_seen"] {
		s.Flags["black_hall_cutscene_seen"] = true
		messages = append(messages,
			"A voice booms from the dark hall: \"I have heard of you... from Elle.\"",
			"Your vision turns black.")
		s.CurrentLocationID = "dungeon"
		s.DiscoveredLocations["dungeon"] = true
		messages = append(messages, "You wake in the dungeon beneath the hall.")
		messages = append(messages, e.StartEncounter(s, "king_makor")...)
		return messages
	}

	if loc.BossID != "" && !s.Flags[loc.BossFlag] && bossRequirementsMet(s, loc) {
		return append(messages, e.StartEncounter(s, loc.BossID)...)
	}

	return append(messages, e.maybeSpawnRandomEncounter(s)...)
}

// Move 向指定方向移动
func (e *Engine) Move(s *state.GameState, direction string) []string {
	if s.ActiveEncounter != nil {
		return []string{"You cannot move while an encounter is active."}
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	if full, ok := directionAliases[direction]; ok {
		direction = full
	}

	loc := location(s)
	destination, ok := loc.Exits[direction]
	if !ok {
		return []string{fmt.Sprintf("You cannot move %s from here.", direction)}
	}

	if req := loc.ExitRequirements[direction]; req != nil && !exitRequirementMet(s, req) {
		msg := req.Message
		if msg == "" {
			msg = "That path is blocked for now."
		}
		return []string{msg}
	}

	s.CurrentLocationID = destination
	s.TurnCount++
	s.DiscoveredLocations[destination] = true

	messages := []string{fmt.Sprintf("You move %s.", direction)}
	messages = append(messages, e.Look(s)...)
	messages = append(messages, e.handleEntryEvents(s)...)
	return messages
}

// Hunt 在有野怪的地区强制触发一场遭遇（刷怪用）
func (e *Engine) Hunt(s *state.GameState) []string {
	if s.ActiveEncounter != nil {
		return []string{"You are already fighting."}
	}
	loc := location(s)
	if len(loc.Encounters) == 0 {
		return []string{"Nothing here is worth hunting."}
	}

	total := 0
	for _, entry := range loc.Encounters {
		total += entry.Weight
	}
	roll := s.RNG.IntRange(1, total)
	cursor := 0
	selected := loc.Encounters[0].EnemyID
	for _, entry := range loc.Encounters {
		cursor += entry.Weight
		if roll <= cursor {
			selected = entry.EnemyID
			break
		}
	}
	messages := []string{"You stalk the area, hunting for a fight."}
	return append(messages, e.StartEncounter(s, selected)...)
}

func npcIDFromQuery(s *state.GameState, query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	loc := location(s)
	for _, npcID := range loc.NPCs {
		npc, ok := content.NPCs[npcID]
		if !ok {
			continue
		}
		if npcID == "elle" && !s.Flags["onyx_witch_defeated"] {
			continue
		}
		name := strings.ToLower(npc.Name)
		if query == npcID || query == name {
			return npcID
		}
		if query != "" && strings.Contains(name, query) {
			return npcID
		}
	}
	return ""
}

// Talk 处理NPC对话与剧情触发
func (e *Engine) Talk(s *state.GameState, npcQuery string) []string {
	if s.ActiveEncounter != nil {
		return []string{"You cannot talk while fighting."}
	}

	npcID := npcIDFromQuery(s, npcQuery)
	if npcID == "" {
		return []string{fmt.Sprintf("No one named '%s' is here.", npcQuery)}
	}

	npc := content.NPCs[npcID]
	var messages []string

	switch npcID {
	case "wise_old_man":
		if !s.Flags["met_old_man"] {
			s.Flags["met_old_man"] = true
			ensureCoreSkills(s.Player)
			messages = append(messages, npc.FirstDialogue...)
		} else {
			lines := npc.RepeatDialogue
			messages = append(messages, lines[s.TurnCount%len(lines)])
		}
		if state.HasItem(s.Player, "hoard_treasure") && !s.Flags["hoard_delivered"] {
			messages = append(messages, "\"If that hoard is truly from the cave, hand it here with `use hoard`.\"")
		}
		return messages

	case "elle":
		if !s.Flags["elle_freed"] {
			return []string{"Elle is still bound. You need a key."}
		}
		if !s.Flags["elle_met"] {
			s.Flags["elle_met"] = true
			messages = append(messages, npc.FirstDialogue...)
			if !s.Flags["elle_cleansed"] {
				messages = append(messages, "\"Something dark is still inside me. The vial might help.\"")
			}
			return messages
		}
		if s.Flags["elle_cleansed"] {
			return append(messages, npc.CleansedDialogue...)
		}
		lines := npc.RepeatDialogue
		return append(messages, lines[s.TurnCount%len(lines)])
	}

	return []string{"They have nothing to say."}
}
