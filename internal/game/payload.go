package game

import (
	"sort"
	"strings"

	"github.com/Joey1399/byte-world-ai/internal/ansi"
	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// stripTrailingHintBlock 去掉屏幕文本尾部的动作提示块
// 提示列表已结构化进payload，避免在屏幕里重复一遍。
func stripTrailingHintBlock(screen, heading string) string {
	if heading == "" {
		return screen
	}
	lines := strings.Split(screen, "\n")
	cut := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(ansi.Strip(lines[i])) == heading {
			cut = i
			break
		}
	}
	if cut < 0 {
		return screen
	}
	return strings.TrimRight(strings.Join(lines[:cut], "\n"), "\n")
}

// buildStatusSummary 玩家状态只读视图
func buildStatusSummary(s *state.GameState) *StatusSummary {
	p := s.Player
	stats := state.EffectiveStats(p)

	equipment := make(map[string]string, len(p.Equipment))
	for slot, itemID := range p.Equipment {
		if itemID == "" {
			equipment[slot] = "none"
			continue
		}
		equipment[slot] = content.ItemName(itemID)
	}

	return &StatusSummary{
		Name:        p.Name,
		Level:       p.Level,
		HP:          p.HP,
		MaxHP:       stats.MaxHP,
		Attack:      stats.Attack,
		Defense:     stats.Defense,
		XP:          p.XP,
		SkillPoints: p.SkillPoints,
		Gold:        p.Gold,
		Titles:      append([]string{}, p.Titles...),
		Equipment:   equipment,
	}
}

// buildInventorySummary 背包只读视图（按物品ID排序）
func buildInventorySummary(s *state.GameState) []InventoryEntry {
	ids := make([]string, 0, len(s.Player.Inventory))
	for id := range s.Player.Inventory {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]InventoryEntry, 0, len(ids))
	for _, id := range ids {
		entry := InventoryEntry{ItemID: id, Name: id, Count: s.Player.Inventory[id]}
		if item, ok := content.Items[id]; ok {
			entry.Name = item.Name
			entry.Type = string(item.Type)
		}
		entries = append(entries, entry)
	}
	return entries
}

// buildLocationSummary 当前位置只读视图
func buildLocationSummary(s *state.GameState) *LocationSummary {
	summary := &LocationSummary{
		ID:         s.CurrentLocationID,
		Name:       s.CurrentLocationID,
		Discovered: len(s.DiscoveredLocations),
	}
	loc, ok := content.Locations[s.CurrentLocationID]
	if !ok {
		return summary
	}

	summary.Name = loc.Name
	summary.Area = loc.Area
	for dir := range loc.Exits {
		summary.Exits = append(summary.Exits, dir)
	}
	sort.Strings(summary.Exits)
	for _, npcID := range loc.NPCs {
		if npcID == "elle" && !s.Flags["onyx_witch_defeated"] {
			continue
		}
		if npc, exists := content.NPCs[npcID]; exists {
			summary.NPCs = append(summary.NPCs, npc.Name)
		}
	}
	return summary
}

// buildKillSummary 击杀台账只读视图（地点、敌名双重排序）
func buildKillSummary(s *state.GameState) []KillEntry {
	var entries []KillEntry
	for locID, byEnemy := range s.Kills {
		locName := locID
		if loc, ok := content.Locations[locID]; ok {
			locName = loc.Name
		}
		for enemyName, count := range byEnemy {
			entries = append(entries, KillEntry{Location: locName, Enemy: enemyName, Count: count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Location != entries[j].Location {
			return entries[i].Location < entries[j].Location
		}
		return entries[i].Enemy < entries[j].Enemy
	})
	return entries
}

// BuildPayload 组装一个回合的完整响应文档，纯组合无副作用
func BuildPayload(s *state.GameState, screen, heading string, actions []Action, hints []Hint, art ArtSelection, notes []string) *Payload {
	return &Payload{
		ScreenHTML:     ansi.Decode(stripTrailingHintBlock(screen, heading)),
		GameOver:       s.GameOver,
		InCombat:       s.ActiveEncounter != nil,
		Status:         buildStatusSummary(s),
		Inventory:      buildInventorySummary(s),
		Location:       buildLocationSummary(s),
		Kills:          buildKillSummary(s),
		ArtTitle:       art.Title,
		ArtASCII:       art.ASCII,
		ArtImage:       art.Image,
		ActionsHeading: heading,
		Actions:        actions,
		Hints:          hints,
		Notes:          notes,
	}
}
