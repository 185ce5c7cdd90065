package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// Engine 规则引擎：命令解析、战斗、探索、任务推进与屏幕渲染
type Engine struct {
	logger *zap.Logger
}

// NewEngine 创建规则引擎
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// actionList 保序的动作表（命令 -> 描述），重复添加被忽略
type actionList struct {
	commands []string
	byCmd    map[string]string
}

func newActionList() *actionList {
	return &actionList{byCmd: make(map[string]string)}
}

func (a *actionList) add(command, description string) {
	if command == "" {
		return
	}
	if _, exists := a.byCmd[command]; exists {
		return
	}
	a.commands = append(a.commands, command)
	a.byCmd[command] = description
}

func (a *actionList) lines(heading string) []string {
	lines := []string{fmt.Sprintf("%s (%d):", heading, len(a.commands))}
	for _, cmd := range a.commands {
		lines = append(lines, fmt.Sprintf("  %s: %s", cmd, a.byCmd[cmd]))
	}
	return lines
}

func itemQueryName(itemID string) string {
	return strings.ToLower(content.ItemName(itemID))
}

func itemStatSummary(item *content.Item) string {
	var pieces []string
	if item.AttackBonus != 0 {
		pieces = append(pieces, fmt.Sprintf("%+d ATK", item.AttackBonus))
	}
	if item.DefenseBonus != 0 {
		pieces = append(pieces, fmt.Sprintf("%+d DEF", item.DefenseBonus))
	}
	if item.MaxHPBonus != 0 {
		pieces = append(pieces, fmt.Sprintf("%+d max HP", item.MaxHPBonus))
	}
	if len(pieces) == 0 {
		return ""
	}
	return " (" + strings.Join(pieces, ", ") + ")"
}

// talkDescription NPC对话动作的上下文描述
func (e *Engine) talkDescription(s *state.GameState, npcName string) string {
	switch strings.ToLower(npcName) {
	case "wise old man":
		if !s.Flags["met_old_man"] {
			return "Starts his intro dialogue and teaches core combat skills."
		}
		if state.HasItem(s.Player, "hoard_treasure") && !s.Flags["hoard_delivered"] {
			return "Gives guidance and can accept the hoard via `use hoard`."
		}
		return "Get guidance and story hints."
	case "elle":
		if !s.Flags["elle_freed"] {
			return "She is chained right now."
		}
		if !s.Flags["elle_met"] {
			return "Starts Elle's post-rescue dialogue."
		}
		if !s.Flags["elle_cleansed"] {
			return "Gives hints about cleansing the corruption."
		}
		return "Closing dialogue after ending."
	}
	return "Talk to this NPC."
}

// useItemDescription 使用物品动作的上下文描述
func (e *Engine) useItemDescription(s *state.GameState, itemID string, inCombat bool) string {
	item, ok := content.Items[itemID]
	if !ok {
		return "Try using it."
	}
	maxHP := state.EffectiveStats(s.Player).MaxHP
	enc := s.ActiveEncounter

	if item.Type == content.ItemTypeConsumable {
		missing := maxHP - s.Player.HP
		if missing > 0 {
			return fmt.Sprintf("Heals up to %d HP (currently missing %d).", item.HealAmount, missing)
		}
		return fmt.Sprintf("Heals up to %d HP (you are already at full HP).", item.HealAmount)
	}

	switch itemID {
	case "mysterious_ring":
		if s.Flags["ring_surge_active"] {
			return "Ring surge is already active; using now has no effect."
		}
		return "Triggers a temporary +4 ATK / +2 DEF surge."
	case "goblin_riddle":
		if inCombat && enc != nil && enc.EnemyID == "onyx_witch" && enc.WitchBarrierActive {
			return "Breaks the Onyx Witch barrier so your attacks can land."
		}
		return "Read for lore now; its key combat effect is for the Onyx Witch."
	case "crusty_key":
		if s.CurrentLocationID == "witch_terrace" && s.Flags["onyx_witch_defeated"] && !s.Flags["elle_freed"] {
			return "Unlocks Elle's chains."
		}
		return "No matching lock in your current state."
	case "vial_of_tears":
		if s.CurrentLocationID == "witch_terrace" && s.Flags["elle_freed"] && !s.Flags["elle_cleansed"] {
			return "Cleanses Elle and completes the main storyline."
		}
		return "No reaction in this state."
	case "hoard_treasure":
		if s.CurrentLocationID == content.StartLocationID && !s.Flags["hoard_delivered"] {
			return "Turns in the hoard to the Wise Old Man for 180 gold."
		}
		return "No turn-in available here."
	}

	if slot, equippable := content.EquipmentSlotByType[item.Type]; equippable {
		return fmt.Sprintf("No direct use. Equip it in the %s slot.", slot)
	}
	return "No immediate effect in the current state."
}

// skillDescription 战斗技能描述
func (e *Engine) skillDescription(skillName string) string {
	switch skillName {
	case "focus strike":
		return "Heavy attack (about 1.8x damage), 2-turn cooldown."
	case "guard stance":
		return "Defend this turn and restore 6 HP, 3-turn cooldown."
	case "second wind":
		return "Restore 16 HP, 4-turn cooldown."
	}
	return "Use a learned combat skill."
}

// combatItemRelevant 物品是否出现在战斗动作表里
func combatItemRelevant(itemID, enemyID string) bool {
	item, ok := content.Items[itemID]
	if !ok {
		return false
	}
	if item.Type == content.ItemTypeConsumable {
		return true
	}
	if itemID == "mysterious_ring" {
		return true
	}
	return itemID == "goblin_riddle" && enemyID == "onyx_witch"
}

// explorationActions 非战斗状态下的可用动作表
func (e *Engine) explorationActions(s *state.GameState) *actionList {
	loc := content.Locations[s.CurrentLocationID]
	actions := newActionList()
	hasEquippable := false

	var encounterNames []string
	for _, entry := range loc.Encounters {
		encounterNames = append(encounterNames, content.EnemyName(entry.EnemyID))
	}
	encounterNote := ""
	if len(encounterNames) > 0 && loc.EncounterChance > 0 {
		if len(encounterNames) <= 3 {
			encounterNote = fmt.Sprintf(" Travel can trigger combat with %s.", strings.Join(encounterNames, ", "))
		} else {
			encounterNote = fmt.Sprintf(" Travel can trigger combat with %d creature types (e.g. %s).",
				len(encounterNames), strings.Join(encounterNames[:3], ", "))
		}
	}

	actions.add("look", "Re-describe your current location and exits.")
	actions.add("sense", "Get environmental hints for this area.")
	actions.add("status", "View HP, combat stats, level, and equipped gear.")
	actions.add("quest", "Show your current objective and hint.")
	actions.add("map", "Show a directional map with route hints.")
	if len(loc.Encounters) > 0 {
		actions.add("hunt", "Force a creature encounter in this area for farming.")
	}
	actions.add("inventory", "List your inventory items.")
	actions.add("help", "Open the full command menu.")
	actions.add("quit", "End the game session.")

	dirs := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		if req := loc.ExitRequirements[dir]; req != nil && !exitRequirementMet(s, req) {
			continue
		}
		destName := content.LocationName(loc.Exits[dir])
		actions.add("move "+dir, strings.TrimSpace(fmt.Sprintf("Travel to %s.%s", destName, encounterNote)))
	}

	for _, npcName := range visibleNPCNames(s, loc) {
		actions.add("talk "+strings.ToLower(npcName), e.talkDescription(s, npcName))
	}

	itemIDs := make([]string, 0, len(s.Player.Inventory))
	for id := range s.Player.Inventory {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)
	for _, itemID := range itemIDs {
		item, ok := content.Items[itemID]
		if !ok {
			continue
		}
		query := itemQueryName(itemID)

		if slot, equippable := content.EquipmentSlotByType[item.Type]; equippable {
			hasEquippable = true
			current := s.Player.Equipment[slot]
			statText := itemStatSummary(item)
			var equipDesc string
			switch {
			case current == itemID:
				equipDesc = fmt.Sprintf("Already equipped in %s slot%s.", slot, statText)
			case current != "":
				equipDesc = fmt.Sprintf("Equip in %s slot (replaces %s)%s.", slot, content.ItemName(current), statText)
			default:
				equipDesc = fmt.Sprintf("Equip in %s slot%s.", slot, statText)
			}
			actions.add("equip "+query, equipDesc)
		}

		actions.add("use "+query, e.useItemDescription(s, itemID, false))

		if itemID == "goblin_riddle" {
			actions.add("read "+query, "Read the riddle text; key to the Onyx Witch fight.")
		}
	}

	if hasEquippable {
		actions.add("equip all", "Auto-equip the best available item for every gear slot.")
	}

	if s.Player.SkillPoints > 0 {
		actions.add("train attack 1",
			fmt.Sprintf("Spend 1 skill point for +1 base ATK (%d available).", s.Player.SkillPoints))
		actions.add("train defense 1",
			fmt.Sprintf("Spend 1 skill point for +1 base DEF (%d available).", s.Player.SkillPoints))
		actions.add("train health 1",
			fmt.Sprintf("Spend 1 skill point for +3 max HP (%d available).", s.Player.SkillPoints))
		if s.Player.SkillPoints >= 3 {
			actions.add("train all", "Split skill points equally across attack, defense, and health.")
		}
		actions.add("train a,b,c", "Train exact points as attack,defense,health (example: train 3,4,3).")
	}

	return actions
}

// encounterActions 战斗状态下的可用动作表
func (e *Engine) encounterActions(s *state.GameState) *actionList {
	actions := newActionList()
	enc := s.ActiveEncounter
	if enc == nil {
		return actions
	}

	enemy := content.Enemies[enc.EnemyID]
	enemyName := content.EnemyName(enc.EnemyID)

	if enc.SpecialPhase == state.PhaseNegotiation {
		actions.add("joke", fmt.Sprintf("Try to make %s laugh and avoid combat.", enemyName))
		actions.add("bribe", fmt.Sprintf("Pay all your gold (%d) to avoid combat.", s.Player.Gold))
		actions.add("fight", fmt.Sprintf("Start full combat against %s.", enemyName))
		return actions
	}

	actions.add("fight", fmt.Sprintf("Attack %s with a basic strike.", enemyName))
	actions.add("defend", "Reduce damage from the next enemy hit.")
	actions.add("run", fmt.Sprintf("Attempt to escape (about %d%% success chance).", int(RunChance(enemy)*100)))

	skills := make([]string, 0, len(s.Player.Skills))
	for skill := range s.Player.Skills {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	for _, skill := range skills {
		desc := e.skillDescription(skill)
		if cd := s.Player.Cooldowns[skill]; cd > 0 {
			desc = fmt.Sprintf("%s Currently on cooldown (%d turn(s)).", desc, cd)
		}
		actions.add("skill "+skill, desc)
	}

	itemIDs := make([]string, 0, len(s.Player.Inventory))
	for id := range s.Player.Inventory {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)
	for _, itemID := range itemIDs {
		if !combatItemRelevant(itemID, enc.EnemyID) {
			continue
		}
		query := itemQueryName(itemID)
		actions.add("use "+query, e.useItemDescription(s, itemID, true))
		if itemID == "goblin_riddle" {
			readDesc := "Read the riddle text; mainly useful against the witch."
			if enc.EnemyID == "onyx_witch" && enc.WitchBarrierActive {
				readDesc = "Read now to break the witch's barrier."
			}
			actions.add("read "+query, readDesc)
		}
	}

	return actions
}

// BuildActionHints 生成当前状态的动作提示行（首行为标题）
func (e *Engine) BuildActionHints(s *state.GameState) []string {
	if s.ActiveEncounter != nil {
		return e.encounterActions(s).lines("Combat actions")
	}
	return e.explorationActions(s).lines("Available actions")
}

// neighbors 当前地点的相邻地点（可选忽略封锁条件）
func (e *Engine) neighbors(s *state.GameState, locationID string, respectLocks bool) [][2]string {
	loc, ok := content.Locations[locationID]
	if !ok {
		return nil
	}
	dirs := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var result [][2]string
	for _, dir := range dirs {
		if respectLocks {
			if req := loc.ExitRequirements[dir]; req != nil && !exitRequirementMet(s, req) {
				continue
			}
		}
		result = append(result, [2]string{dir, loc.Exits[dir]})
	}
	return result
}

// shortestDirectionPath BFS求两地点间最短方向路径，不可达返回nil
func (e *Engine) shortestDirectionPath(s *state.GameState, startID, targetID string, respectLocks bool) []string {
	if startID == targetID {
		return []string{}
	}

	type node struct {
		locationID string
		path       []string
	}
	frontier := []node{{locationID: startID}}
	visited := map[string]bool{startID: true}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, next := range e.neighbors(s, current.locationID, respectLocks) {
			direction, nextID := next[0], next[1]
			if visited[nextID] {
				continue
			}
			nextPath := append(append([]string{}, current.path...), direction)
			if nextID == targetID {
				return nextPath
			}
			visited[nextID] = true
			frontier = append(frontier, node{locationID: nextID, path: nextPath})
		}
	}
	return nil
}

// questTargetByStage 各任务阶段的推荐目的地
var questTargetByStage = map[string]string{
	content.StageAwakening:     "old_shack",
	content.StageSwampSecret:   "swamp",
	content.StageMountainFlame: "mountain_peak",
	content.StageCastleRoad:    "desolate_road",
	content.StageBlackHall:     "black_hall",
	content.StageWitchBane:     "witch_terrace",
	content.StageRescueElle:    "witch_terrace",
	content.StageHomecoming:    "old_shack",
}

// RecommendedMapStep 返回(推荐目的地, 下一步方向)
// 已在目的地或无路可走时方向为空。
func (e *Engine) RecommendedMapStep(s *state.GameState) (string, string) {
	targetID, ok := questTargetByStage[s.QuestStage]
	if !ok {
		return "", ""
	}
	if targetID == s.CurrentLocationID {
		return targetID, ""
	}

	if open := e.shortestDirectionPath(s, s.CurrentLocationID, targetID, true); len(open) > 0 {
		return targetID, open[0]
	}
	if eventual := e.shortestDirectionPath(s, s.CurrentLocationID, targetID, false); len(eventual) > 0 {
		return targetID, eventual[0]
	}
	return targetID, ""
}

// mapDirectionLabels 各方向的地图标签
func (e *Engine) mapDirectionLabels(s *state.GameState, recommendedDirection string) map[string]string {
	loc := content.Locations[s.CurrentLocationID]
	labels := make(map[string]string, len(content.Directions))

	for _, dir := range content.Directions {
		destID, ok := loc.Exits[dir]
		if !ok {
			labels[dir] = "---"
			continue
		}
		label := content.LocationName(destID)
		if req := loc.ExitRequirements[dir]; req != nil && !exitRequirementMet(s, req) {
			label += " (locked)"
		}
		if dir == recommendedDirection {
			label += " (recommended)"
		}
		labels[dir] = label
	}
	return labels
}

// mapKeyTargets 地图快速导航的关键地点
var mapKeyTargets = [][2]string{
	{"old_shack", "Old Shack"},
	{"swamp", "Swamp"},
	{"mountain_peak", "Dragon Mountain Peak"},
	{"desolate_road", "Desolate Road"},
	{"black_hall", "Black Hall"},
	{"witch_terrace", "Witch's Terrace"},
}

// mapRouteLines 关键地点的导航提示行
func (e *Engine) mapRouteLines(s *state.GameState, recommendedTargetID string) []string {
	currentID := s.CurrentLocationID
	var lines []string

	for _, target := range mapKeyTargets {
		targetID, label := target[0], target[1]
		suffix := ""
		if targetID == recommendedTargetID {
			suffix = " (recommended)"
		}
		if targetID == currentID {
			lines = append(lines, fmt.Sprintf("%s: you are here.%s", label, suffix))
			continue
		}

		if open := e.shortestDirectionPath(s, currentID, targetID, true); open != nil {
			lines = append(lines, fmt.Sprintf("%s: go %s.%s", label, open[0], suffix))
			continue
		}
		if eventual := e.shortestDirectionPath(s, currentID, targetID, false); eventual != nil {
			lines = append(lines, fmt.Sprintf("%s: locked now (later go %s).%s", label, eventual[0], suffix))
		} else {
			lines = append(lines, fmt.Sprintf("%s: no route found.%s", label, suffix))
		}
	}
	return lines
}

// worldMap 渲染当前地点的方向地图
func (e *Engine) worldMap(s *state.GameState) string {
	targetID, direction := e.RecommendedMapStep(s)
	labels := e.mapDirectionLabels(s, direction)
	routes := e.mapRouteLines(s, targetID)
	return FormatWorldMap(content.LocationName(s.CurrentLocationID), labels, routes)
}

// resolveTurn 解析一条命令并处理任务推进与胜利播报
func (e *Engine) resolveTurn(s *state.GameState, command string, args []string) []string {
	messages := e.handleCommand(s, command, args)
	messages = append(messages, e.checkAndAdvanceQuest(s)...)

	if s.Victory && !s.Flags["victory_announced"] {
		s.Flags["victory_announced"] = true
		messages = append(messages,
			"You have completed the main storyline.",
			"You can keep exploring or type `quit`.")
	}
	return messages
}

// renderScreen 渲染当前游戏屏幕
func (e *Engine) renderScreen(s *state.GameState, actionMessages []string, includeBanner bool) string {
	var parts []string
	if includeBanner {
		parts = append(parts, Banner())
	}
	if len(actionMessages) > 0 {
		if block := FormatActionBlock(actionMessages); block != "" {
			parts = append(parts, block)
		}
	}
	if !s.GameOver {
		if hints := FormatMessages(e.BuildActionHints(s)); hints != "" {
			parts = append(parts, hints)
		}
	}
	return strings.Join(parts, "\n")
}

// InitialScreen 渲染新会话的首屏
func (e *Engine) InitialScreen(s *state.GameState) string {
	intro := append(e.Look(s), "Type `help` for commands.")
	return e.renderScreen(s, intro, true)
}

// ProcessCommand 解析并执行一条原始命令，返回渲染后的屏幕文本
func (e *Engine) ProcessCommand(s *state.GameState, rawCommand string) string {
	command, args := ParseCommand(rawCommand)
	if command == "" {
		return e.renderScreen(s, nil, false)
	}
	e.logger.Debug("处理游戏命令",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.String("location", s.CurrentLocationID))
	messages := e.resolveTurn(s, command, args)
	return e.renderScreen(s, messages, false)
}

// encounterAllowedCommands 战斗中允许的命令
var encounterAllowedCommands = map[string]bool{
	"help": true, "status": true, "inventory": true, "use": true, "read": true,
	"fight": true, "defend": true, "skill": true, "run": true, "quest": true,
	"joke": true, "bribe": true, "quit": true,
}

func (e *Engine) handleCommand(s *state.GameState, command string, args []string) []string {
	if s.ActiveEncounter != nil && !encounterAllowedCommands[command] {
		return []string{"You are in an encounter. Use combat commands or `run`."}
	}

	switch command {
	case "help":
		return []string{HelpText()}

	case "status":
		messages := []string{FormatStatus(s.Player)}
		if s.ActiveEncounter != nil {
			messages = append(messages, e.EncounterStatus(s)...)
		}
		return messages

	case "look":
		messages := e.Look(s)
		if s.ActiveEncounter != nil {
			messages = append(messages, e.EncounterStatus(s)...)
		}
		return messages

	case "sense":
		return e.Sense(s)

	case "map":
		return []string{e.worldMap(s)}

	case "hunt":
		return e.Hunt(s)

	case "move":
		if len(args) == 0 {
			return []string{"Move where? Example: move north"}
		}
		return e.Move(s, args[0])

	case "inventory":
		return []string{FormatInventory(s.Player.Inventory)}

	case "equip":
		if len(args) == 0 {
			return []string{"Equip what? Example: equip crusty sword, or use `equip all`."}
		}
		if len(args) == 1 && strings.EqualFold(args[0], "all") {
			return e.EquipBestAvailable(s)
		}
		return e.EquipItem(s, strings.Join(args, " "))

	case "use", "read":
		if len(args) == 0 {
			return []string{"Use what? Example: use minor potion"}
		}
		if s.ActiveEncounter != nil {
			return e.PlayerAction(s, command, args)
		}
		messages, _ := e.useItem(s, strings.Join(args, " "), false, "")
		return messages

	case "fight", "defend", "skill", "joke", "bribe":
		return e.PlayerAction(s, command, args)

	case "run":
		return e.AttemptRun(s)

	case "train":
		return e.handleTrain(s, args)

	case "talk":
		if len(args) == 0 {
			return []string{"Talk to whom? Example: talk wise old man"}
		}
		return e.Talk(s, strings.Join(args, " "))

	case "quest":
		obj := e.CurrentObjective(s)
		return []string{FormatQuest(obj.Title, obj.Description, obj.Hint)}

	case "quit":
		s.GameOver = true
		return []string{"Game ended."}
	}

	return []string{fmt.Sprintf("Unknown command: %s. Type `help` for a command list.", command)}
}

func (e *Engine) handleTrain(s *state.GameState, args []string) []string {
	if len(args) == 0 {
		return []string{"Train what? Examples: train attack 2, train all, train 3,4,3"}
	}

	raw := strings.TrimSpace(strings.Join(args, " "))
	if strings.EqualFold(raw, "all") {
		return e.TrainAllEqually(s)
	}

	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		if len(parts) != 3 {
			return []string{"Use format: train attack,defense,health (example: train 3,4,3)."}
		}
		values := make([]int, 3)
		for i, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				return []string{"Use format: train attack,defense,health (example: train 3,4,3)."}
			}
			value, err := strconv.Atoi(part)
			if err != nil {
				return []string{"Training allocation must be numbers. Example: train 3,4,3"}
			}
			values[i] = value
		}
		return e.TrainAllocation(s, values[0], values[1], values[2])
	}

	skillName := strings.ToLower(args[0])
	amount := 1
	if len(args) > 1 {
		value, err := strconv.Atoi(args[1])
		if err != nil {
			return []string{"Training amount must be a number."}
		}
		amount = value
	}
	return e.TrainSkill(s, skillName, amount)
}
