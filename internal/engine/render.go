package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// 终端渲染用的SGR前景色序列
const (
	AnsiReset  = "\x1b[0m"
	AnsiBlue   = "\x1b[38;5;39m"
	AnsiYellow = "\x1b[93m"
	AnsiOrange = "\x1b[38;5;208m"
	AnsiRed    = "\x1b[91m"
	AnsiGreen  = "\x1b[92m"
	AnsiPurple = "\x1b[95m"
	AnsiPink   = "\x1b[38;5;213m"
)

const (
	divider         = "----------------------------------------------------------------"
	actionSeparator = "================================================================"
)

// importantItemIDs 渲染成紫色的稀有/剧情物品
var importantItemIDs = map[string]bool{
	"crusty_key":      true,
	"mysterious_ring": true,
	"goblin_riddle":   true,
	"makor_soul":      true,
	"vial_of_tears":   true,
	"hoard_treasure":  true,
	"dragon_ring":     true,
	"moonbite_dagger": true,
	"echo_plate":      true,
	"warding_totem":   true,
	"skill_cache_10":  true,
	"skill_cache_20":  true,
	"skill_cache_30":  true,
}

// SkillTerms 技能与训练关键词（粉色渲染）
var SkillTerms = []string{
	"attack", "defense", "health",
	"focus strike", "guard stance", "second wind",
}

// itemIsPurple 判断物品是否按稀有/剧情色渲染
func itemIsPurple(item *content.Item) bool {
	if importantItemIDs[item.ID] {
		return true
	}
	switch item.Type {
	case content.ItemTypeQuest, content.ItemTypeKey, content.ItemTypeBoon:
		return true
	}
	return false
}

type colorPattern struct {
	re    *regexp.Regexp
	color string
}

// colorPatterns 名称高亮规则，按优先级排列：
// 终局首领 > 首领 > 普通敌人 > NPC > 技能 > 紫色物品 > 绿色物品
var colorPatterns = buildColorPatterns()

func compileNamePattern(names []string) *regexp.Regexp {
	filtered := names[:0:0]
	for _, name := range names {
		if name != "" {
			filtered = append(filtered, regexp.QuoteMeta(name))
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	// 长名优先，避免短名抢先截断长名
	sort.Slice(filtered, func(i, j int) bool { return len(filtered[i]) > len(filtered[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(filtered, "|") + `)\b`)
}

func buildColorPatterns() []colorPattern {
	var npcNames, creatureNames, bossNames, endBossNames []string
	var purpleItems, greenItems []string

	for _, npc := range content.NPCs {
		npcNames = append(npcNames, npc.Name)
	}
	for id, enemy := range content.Enemies {
		switch {
		case content.EndBossIDs[id]:
			endBossNames = append(endBossNames, enemy.Name)
		case enemy.Category == content.EnemyBoss:
			bossNames = append(bossNames, enemy.Name)
		default:
			creatureNames = append(creatureNames, enemy.Name)
		}
	}
	for _, item := range content.Items {
		if itemIsPurple(item) {
			purpleItems = append(purpleItems, item.Name)
		} else {
			greenItems = append(greenItems, item.Name)
		}
	}

	patterns := []colorPattern{
		{compileNamePattern(endBossNames), AnsiRed},
		{compileNamePattern(bossNames), AnsiOrange},
		{compileNamePattern(creatureNames), AnsiYellow},
		{compileNamePattern(npcNames), AnsiBlue},
		{compileNamePattern(SkillTerms), AnsiPink},
		{compileNamePattern(purpleItems), AnsiPurple},
		{compileNamePattern(greenItems), AnsiGreen},
	}
	result := patterns[:0]
	for _, p := range patterns {
		if p.re != nil {
			result = append(result, p)
		}
	}
	return result
}

func paint(text, color string) string {
	return color + text + AnsiReset
}

// ColorizeInteractables 给文本中的可交互名称着色
func ColorizeInteractables(text string) string {
	if text == "" {
		return text
	}
	rendered := text
	for _, p := range colorPatterns {
		rendered = p.re.ReplaceAllStringFunc(rendered, func(m string) string {
			return paint(m, p.color)
		})
	}
	return rendered
}

// HealthBar 渲染ASCII血条，绿色为当前HP红色为缺失HP
func HealthBar(currentHP, maxHP int) string {
	const width = 24
	if maxHP < 1 {
		maxHP = 1
	}
	if currentHP < 0 {
		currentHP = 0
	}
	if currentHP > maxHP {
		currentHP = maxHP
	}

	filled := int(float64(currentHP)/float64(maxHP)*width + 0.5)
	if currentHP > 0 && filled < 1 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	empty := width - filled

	var fill, blank string
	if filled > 0 {
		fill = paint(strings.Repeat("#", filled), AnsiGreen)
	}
	if empty > 0 {
		blank = paint(strings.Repeat("-", empty), AnsiRed)
	}
	return fmt.Sprintf("[%s%s] %d/%d", fill, blank, currentHP, maxHP)
}

// CombatHealthLines 返回玩家/敌人血条行
func CombatHealthLines(playerHP, playerMaxHP int, enemyName string, enemyHP, enemyMaxHP int) []string {
	return []string{
		"HP:",
		fmt.Sprintf("  You: %s", HealthBar(playerHP, playerMaxHP)),
		fmt.Sprintf("  %s: %s", enemyName, HealthBar(enemyHP, enemyMaxHP)),
	}
}

func clipLabel(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}

// FormatWorldMap 渲染简单的方向地图
func FormatWorldMap(currentName string, directionLabels map[string]string, routeLines []string) string {
	label := func(dir string) string {
		if text, ok := directionLabels[dir]; ok {
			return clipLabel(text, 40)
		}
		return "---"
	}

	lines := []string{
		divider,
		"Map",
		fmt.Sprintf("You are at: [YOU] %s", currentName),
		"",
		fmt.Sprintf("              %s", label("north")),
		"                ^",
		"                |",
		fmt.Sprintf("%s  <- [YOU] ->  %s", label("west"), label("east")),
		"                |",
		"                v",
		fmt.Sprintf("              %s", label("south")),
		"",
		fmt.Sprintf("Up: %s", label("up")),
		fmt.Sprintf("Down: %s", label("down")),
	}

	if len(routeLines) > 0 {
		lines = append(lines, "", "Quick direction guide:")
		for _, route := range routeLines {
			lines = append(lines, "  - "+route)
		}
	}
	return strings.Join(lines, "\n")
}

// Banner 游戏标题横幅
func Banner() string {
	return strings.Join([]string{divider, "byte-world-ai :: text adventure", divider}, "\n")
}

type helpRow struct {
	group   string
	command string
	desc    string
}

// HelpText 完整命令菜单表格
func HelpText() string {
	rows := []helpRow{
		{"system", "help", "Show this command menu."},
		{"system", "quit", "Exit the game."},
		{"info", "status", "Show HP, stats, level, gold, and equipped gear."},
		{"info", "quest", "Show current quest objective and hint."},
		{"info", "look", "Describe your current location and exits."},
		{"info", "sense", "Show subtle hints about this area."},
		{"info", "map", "Show a directional map with your location and route hints."},
		{"explore", "hunt", "Force a creature encounter in areas that have roaming enemies."},
		{"explore", "move <dir>", "Travel north/south/east/west/up/down (n/s/e/w/u/d aliases)."},
		{"social", "talk <npc>", "Talk to a visible NPC in your current location."},
		{"gear", "inventory", "List items in your inventory."},
		{"gear", "equip <item>", "Equip a weapon, armor, shield, accessory, or aura."},
		{"gear", "equip all", "Auto-equip best-in-slot gear from inventory."},
		{"gear", "use <item>", "Use consumables or context items (key, vial, etc.)."},
		{"gear", "read <item>", "Read special items such as the goblin riddle."},
		{"progression", "train <stat> [pts]", "Spend skill points on attack, defense, or health."},
		{"progression", "train all", "Train attack/defense/health equally with available points."},
		{"progression", "train a,b,c", "Train exact split (attack, defense, health). Example: train 3,4,3."},
		{"combat", "fight", "Attack the active enemy."},
		{"combat", "defend", "Reduce next incoming hit."},
		{"combat", "skill <name>", "Use a learned skill (focus strike, guard stance, second wind)."},
		{"combat", "run", "Attempt to flee an encounter."},
		{"combat*", "joke", "Goblin army only: attempt peaceful escape."},
		{"combat*", "bribe", "Goblin army only: pay gold to avoid combat."},
	}

	groupW, cmdW := len("group"), len("command")
	for _, r := range rows {
		if len(r.group) > groupW {
			groupW = len(r.group)
		}
		if len(r.command) > cmdW {
			cmdW = len(r.command)
		}
	}
	const descW = 62

	clamp := func(text string, width int) string {
		if len(text) <= width {
			return text
		}
		return text[:width-3] + "..."
	}

	top := "+" + strings.Repeat("-", groupW+2) + "+" + strings.Repeat("-", cmdW+2) + "+" + strings.Repeat("-", descW+2) + "+"
	titleInner := groupW + cmdW + descW + 6
	title := fmt.Sprintf("| %s |", centerText("byte-world-ai command menu", titleInner-2))
	header := fmt.Sprintf("| %-*s | %-*s | %-*s |", groupW, "group", cmdW, "command", descW, "description")

	lines := []string{top, title, top, header, top}
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("| %-*s | %-*s | %-*s |",
			groupW, r.group, cmdW, r.command, descW, clamp(r.desc, descW)))
	}
	lines = append(lines, top,
		"Notes:",
		"  - During encounters, movement/talk/train are blocked until you win, escape, or lose.",
		"  - `joke` and `bribe` are only valid during the goblin army negotiation phase.",
		"Color key:",
		"  - "+strings.Join([]string{
			paint("NPC", AnsiBlue) + " = talkable",
			paint("Creature", AnsiYellow) + " = fightable",
			paint("Boss", AnsiOrange) + " = boss fight",
			paint("End-boss", AnsiRed) + " = Makor / Witch",
			paint("Item", AnsiGreen) + " = item/equipment",
			paint("Rare/Quest", AnsiPurple) + " = rare or important reward",
			paint("Skill", AnsiPink) + " = train/combat skill terms",
		}, ", "),
	)
	return strings.Join(lines, "\n")
}

func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

// FormatStatus 渲染玩家状态块
func FormatStatus(p *state.Player) string {
	stats := state.EffectiveStats(p)
	equipped := make([]string, 0, len(content.EquipmentSlots))
	for _, slot := range content.EquipmentSlots {
		itemID := p.Equipment[slot]
		name := "none"
		if itemID != "" {
			name = content.ItemName(itemID)
		}
		equipped = append(equipped, fmt.Sprintf("%s:%s", slot, name))
	}
	titles := "none"
	if len(p.Titles) > 0 {
		titles = strings.Join(p.Titles, ", ")
	}

	return strings.Join([]string{
		divider,
		fmt.Sprintf("%s  Level %d", p.Name, p.Level),
		fmt.Sprintf("HP: %d/%d  Attack: %d  Defense: %d", p.HP, stats.MaxHP, stats.Attack, stats.Defense),
		fmt.Sprintf("HP Bar: %s", HealthBar(p.HP, stats.MaxHP)),
		fmt.Sprintf("XP: %d  Skill Points: %d  Gold: %d", p.XP, p.SkillPoints, p.Gold),
		fmt.Sprintf("Titles: %s", titles),
		fmt.Sprintf("Equipped: %s", strings.Join(equipped, ", ")),
	}, "\n")
}

func itemStatSuffix(item *content.Item) string {
	var parts []string
	if item.AttackBonus != 0 {
		parts = append(parts, fmt.Sprintf("attack %+d", item.AttackBonus))
	}
	if item.DefenseBonus != 0 {
		parts = append(parts, fmt.Sprintf("defense %+d", item.DefenseBonus))
	}
	if item.MaxHPBonus != 0 {
		parts = append(parts, fmt.Sprintf("health %+d", item.MaxHPBonus))
	}
	if item.HealAmount != 0 {
		parts = append(parts, fmt.Sprintf("heal +%d", item.HealAmount))
	}
	if item.SkillPointBonus != 0 {
		parts = append(parts, fmt.Sprintf("skill points +%d", item.SkillPointBonus))
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

// FormatInventory 渲染背包列表
func FormatInventory(inventory map[string]int) string {
	if len(inventory) == 0 {
		return "Inventory is empty."
	}
	ids := make([]string, 0, len(inventory))
	for id := range inventory {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := []string{divider, "Inventory:"}
	for _, id := range ids {
		item, ok := content.Items[id]
		if !ok {
			lines = append(lines, fmt.Sprintf("  %s x%d (unknown)", id, inventory[id]))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s x%d (%s)%s", item.Name, inventory[id], item.Type, itemStatSuffix(item)))
	}
	return strings.Join(lines, "\n")
}

// FormatQuest 渲染当前任务块
func FormatQuest(title, description, hint string) string {
	return strings.Join([]string{
		divider,
		fmt.Sprintf("Quest: %s", title),
		description,
		fmt.Sprintf("Hint: %s", hint),
	}, "\n")
}

// FormatMessages 着色并拼接消息行
func FormatMessages(messages []string) string {
	var formatted []string
	for _, msg := range messages {
		if msg == "" {
			continue
		}
		formatted = append(formatted, ColorizeInteractables(msg))
	}
	return strings.Join(formatted, "\n")
}

// FormatActionBlock 将一次命令结果渲染为分隔块
func FormatActionBlock(messages []string) string {
	body := FormatMessages(messages)
	if body == "" {
		return ""
	}
	return strings.Join([]string{actionSeparator, body, actionSeparator}, "\n")
}
