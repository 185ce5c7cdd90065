package game

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/engine"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// verbCategories 固定的动词分类表，未列出的动词归入player类
var verbCategories = map[string]string{
	"move":  CategoryMovement,
	"look":  CategoryMovement,
	"sense": CategoryMovement,
	"map":   CategoryMovement,
	"hunt":  CategoryMovement,

	"fight":  CategoryCombat,
	"defend": CategoryCombat,
	"skill":  CategoryCombat,
	"run":    CategoryCombat,
	"joke":   CategoryCombat,
	"bribe":  CategoryCombat,

	"quest": CategoryQuest,
	"talk":  CategoryQuest,
	"use":   CategoryQuest,
	"read":  CategoryQuest,
}

// nameIndexes 参数着色用的静态名称索引，由内容目录构建一次
type nameIndexes struct {
	npcs    map[string]string
	enemies map[string]string
	items   map[string]string
	skills  map[string]string
}

var catalogIndexes = buildNameIndexes()

func buildNameIndexes() *nameIndexes {
	idx := &nameIndexes{
		npcs:    make(map[string]string),
		enemies: make(map[string]string),
		items:   make(map[string]string),
		skills:  make(map[string]string),
	}

	for _, npc := range content.NPCs {
		idx.npcs[strings.ToLower(npc.Name)] = "ansi-blue"
	}
	for id, enemy := range content.Enemies {
		color := "ansi-yellow"
		switch {
		case content.EndBossIDs[id]:
			color = "ansi-red"
		case enemy.Category == content.EnemyBoss:
			color = "ansi-orange"
		}
		idx.enemies[strings.ToLower(enemy.Name)] = color
	}
	for _, item := range content.Items {
		color := "ansi-green"
		switch item.Type {
		case content.ItemTypeQuest, content.ItemTypeKey, content.ItemTypeBoon:
			color = "ansi-purple"
		}
		idx.items[strings.ToLower(item.Name)] = color
	}
	for _, term := range engine.SkillTerms {
		idx.skills[strings.ToLower(term)] = "ansi-pink"
	}
	return idx
}

// lookupOrder 各动词的索引查找优先级
func (idx *nameIndexes) lookupOrder(verb string) []map[string]string {
	switch verb {
	case "talk":
		return []map[string]string{idx.npcs, idx.enemies, idx.items}
	case "fight":
		return []map[string]string{idx.enemies, idx.npcs, idx.items}
	case "equip", "use", "read":
		return []map[string]string{idx.items, idx.npcs, idx.enemies}
	case "skill", "train":
		return []map[string]string{idx.skills}
	}
	return []map[string]string{idx.npcs, idx.enemies, idx.items}
}

// colorForArgument 按动词优先级匹配参数颜色，最后回退到技能词表
func (idx *nameIndexes) colorForArgument(verb, argument string) string {
	if argument == "" {
		return ""
	}
	key := strings.ToLower(strings.TrimSpace(argument))
	for _, table := range idx.lookupOrder(verb) {
		if color, ok := table[key]; ok {
			return color
		}
	}
	if color, ok := idx.skills[key]; ok {
		return color
	}
	// 训练分配数字等非名称参数不着色
	return ""
}

// categorize 动词分类，战斗中use/read改判为combat
func categorize(verb string, inCombat bool) string {
	if inCombat && (verb == "use" || verb == "read") {
		return CategoryCombat
	}
	if category, ok := verbCategories[verb]; ok {
		return category
	}
	return CategoryPlayer
}

// BuildCatalog 将引擎提示行解析为结构化动作表
// 首行为标题，其余行按"命令: 描述"拆分，畸形行跳过不报错。
func BuildCatalog(lines []string, s *state.GameState, logger *zap.Logger) (string, []Action) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(lines) == 0 {
		return "", nil
	}

	heading := strings.TrimSpace(lines[0])
	inCombat := s != nil && s.ActiveEncounter != nil
	actions := make([]Action, 0, len(lines)-1)

	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		command, description, found := strings.Cut(trimmed, ": ")
		if !found {
			logger.Debug("跳过畸形动作提示行", zap.String("line", trimmed))
			continue
		}
		command = strings.TrimSpace(command)
		description = strings.TrimSpace(description)
		if command == "" {
			logger.Debug("跳过空命令提示行", zap.String("line", trimmed))
			continue
		}

		verb := command
		argument := ""
		if idx := strings.IndexAny(command, " \t"); idx >= 0 {
			verb = command[:idx]
			argument = strings.TrimSpace(command[idx+1:])
		}
		verb = strings.ToLower(verb)

		actions = append(actions, Action{
			Command:     command,
			Verb:        verb,
			Argument:    argument,
			Description: description,
			Category:    categorize(verb, inCombat),
			Color:       catalogIndexes.colorForArgument(verb, argument),
		})
	}

	return heading, actions
}
