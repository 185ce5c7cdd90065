package game

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/engine"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// 优先级分值，战斗分支整体压过非战斗分支
const (
	scoreBaseline     = 10
	scoreInfo         = 30
	scoreFieldHeal    = 35 // 基准值，按缺血比例追加
	scoreMapMove      = 70
	scoreFirstTalk    = 75
	scoreQuestItem    = 88
	scoreEquipUpgrade = 90
	scoreEquipAll     = 92
	scoreTrainStat    = 94
	scoreTrainAll     = 96

	scoreCombatRun         = 60
	scoreCombatDefend      = 70
	scoreCombatRunCritical = 78
	scoreCombatFight       = 80
	scoreCombatBurst       = 85
	scoreCombatHeal        = 95
	scoreCombatBarrier     = 100

	scoreNegotiationFight = 70
	scoreNegotiationBribe = 80
	scoreNegotiationJoke  = 90
)

const (
	healHPRatio     = 0.45
	criticalHPRatio = 0.3
)

// DefaultMaxHints 推荐列表默认长度上限
const DefaultMaxHints = 5

// Advisor 动作优先级评分与推荐提示推导
type Advisor struct {
	engine   RuleEngine
	maxHints int
	logger   *zap.Logger
}

// NewAdvisor 创建推荐引擎，maxHints<=0时取默认上限
func NewAdvisor(ruleEngine RuleEngine, maxHints int, logger *zap.Logger) *Advisor {
	if maxHints <= 0 {
		maxHints = DefaultMaxHints
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{engine: ruleEngine, maxHints: maxHints, logger: logger}
}

// scoreContext 一次评分/推荐过程共享的状态快照
type scoreContext struct {
	state       *state.GameState
	inCombat    bool
	negotiation bool
	barrier     bool
	hpRatio     float64
	recommended string // 推荐的移动命令，如 "move north"
}

func (a *Advisor) newScoreContext(s *state.GameState) *scoreContext {
	ctx := &scoreContext{state: s, hpRatio: 1}

	stats := state.EffectiveStats(s.Player)
	if stats.MaxHP > 0 {
		ctx.hpRatio = float64(s.Player.HP) / float64(stats.MaxHP)
	}

	if enc := s.ActiveEncounter; enc != nil {
		ctx.inCombat = true
		ctx.negotiation = enc.SpecialPhase == state.PhaseNegotiation
		ctx.barrier = enc.WitchBarrierActive
	} else if a.engine != nil {
		if _, direction := a.engine.RecommendedMapStep(s); direction != "" {
			ctx.recommended = "move " + direction
		}
	}
	return ctx
}

// resolveItem 将动作参数解析为背包物品
func resolveItem(s *state.GameState, argument string) *content.Item {
	if argument == "" {
		return nil
	}
	itemID := state.FindItemByQuery(s.Player, argument)
	if itemID == "" {
		return nil
	}
	return content.Items[itemID]
}

func isHealItemAction(ctx *scoreContext, action Action) bool {
	if action.Verb != "use" {
		return false
	}
	item := resolveItem(ctx.state, action.Argument)
	return item != nil && item.Type == content.ItemTypeConsumable && item.HealAmount > 0
}

func isBarrierBreakAction(ctx *scoreContext, action Action) bool {
	if action.Verb != "use" && action.Verb != "read" {
		return false
	}
	item := resolveItem(ctx.state, action.Argument)
	return item != nil && item.ID == "goblin_riddle"
}

// isGearUpgradeAction equip动作指向严格优于当前装备的物品
func isGearUpgradeAction(ctx *scoreContext, action Action) bool {
	if action.Verb != "equip" || strings.EqualFold(action.Argument, "all") {
		return false
	}
	item := resolveItem(ctx.state, action.Argument)
	if item == nil {
		return false
	}
	slot, equippable := content.EquipmentSlotByType[item.Type]
	if !equippable {
		return false
	}
	current := ctx.state.Player.Equipment[slot]
	if current == item.ID {
		return false
	}
	return engine.ItemPowerOf(item.ID).Beats(engine.ItemPowerOf(current))
}

// hasGearUpgrade 背包中存在任一可升级装备
func hasGearUpgrade(s *state.GameState) bool {
	for itemID := range s.Player.Inventory {
		item, ok := content.Items[itemID]
		if !ok {
			continue
		}
		slot, equippable := content.EquipmentSlotByType[item.Type]
		if !equippable {
			continue
		}
		current := s.Player.Equipment[slot]
		if current != itemID && engine.ItemPowerOf(itemID).Beats(engine.ItemPowerOf(current)) {
			return true
		}
	}
	return false
}

// questItemReady 上下文敏感的剧情物品此刻可生效
func questItemReady(s *state.GameState, itemID string) bool {
	switch itemID {
	case "crusty_key":
		return s.CurrentLocationID == "witch_terrace" &&
			s.Flags["onyx_witch_defeated"] && !s.Flags["elle_freed"]
	case "vial_of_tears":
		return s.CurrentLocationID == "witch_terrace" &&
			s.Flags["elle_freed"] && !s.Flags["elle_cleansed"]
	case "hoard_treasure":
		return s.CurrentLocationID == content.StartLocationID && !s.Flags["hoard_delivered"]
	}
	return false
}

func isQuestItemAction(ctx *scoreContext, action Action) bool {
	if action.Verb != "use" {
		return false
	}
	item := resolveItem(ctx.state, action.Argument)
	return item != nil && questItemReady(ctx.state, item.ID)
}

func skillNameOf(action Action) string {
	if action.Verb != "skill" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(action.Argument))
}

func skillReady(s *state.GameState, skillName string) bool {
	return s.Player.Skills[skillName] && s.Player.Cooldowns[skillName] <= 0
}

// Score 按固定优先级规则表为单个动作评分，首个命中的高优先级规则生效
func (a *Advisor) Score(action Action, ctx *scoreContext) int {
	s := ctx.state

	if ctx.inCombat {
		// 谈判子阶段短路其余全部战斗规则
		if ctx.negotiation {
			switch action.Command {
			case "joke":
				return scoreNegotiationJoke
			case "bribe":
				return scoreNegotiationBribe
			case "fight":
				return scoreNegotiationFight
			}
			return scoreBaseline
		}

		if ctx.barrier && isBarrierBreakAction(ctx, action) {
			return scoreCombatBarrier
		}
		if ctx.hpRatio <= healHPRatio {
			if isHealItemAction(ctx, action) {
				return scoreCombatHeal
			}
			if skillNameOf(action) == "second wind" && skillReady(s, "second wind") {
				return scoreCombatHeal - 1
			}
		}
		if skillNameOf(action) == "focus strike" && skillReady(s, "focus strike") {
			return scoreCombatBurst
		}
		switch action.Command {
		case "fight":
			return scoreCombatFight
		case "defend":
			return scoreCombatDefend
		case "run":
			if ctx.hpRatio <= criticalHPRatio {
				return scoreCombatRunCritical
			}
			return scoreCombatRun
		}
		if skillNameOf(action) == "guard stance" && skillReady(s, "guard stance") {
			return scoreCombatDefend
		}
		return scoreBaseline
	}

	// 非战斗分支
	if action.Verb == "train" && s.Player.SkillPoints > 0 {
		if strings.EqualFold(action.Argument, "all") {
			return scoreTrainAll
		}
		return scoreTrainStat
	}
	if action.Verb == "equip" {
		if strings.EqualFold(action.Argument, "all") {
			if hasGearUpgrade(s) {
				return scoreEquipAll
			}
			return scoreBaseline
		}
		if isGearUpgradeAction(ctx, action) {
			return scoreEquipUpgrade
		}
	}
	if isQuestItemAction(ctx, action) {
		return scoreQuestItem
	}
	if ctx.recommended != "" && action.Command == ctx.recommended {
		return scoreMapMove
	}
	if action.Command == "talk wise old man" && !s.Flags["met_old_man"] {
		return scoreFirstTalk
	}
	if isHealItemAction(ctx, action) && ctx.hpRatio < 1 {
		boost := int((1 - ctx.hpRatio) * 30)
		return scoreFieldHeal + boost
	}
	switch action.Command {
	case "status", "quest", "look":
		return scoreInfo
	}

	return scoreBaseline
}

// ScoreActions 为整组动作填充优先级分值（原序返回）
func (a *Advisor) ScoreActions(actions []Action, s *state.GameState) []Action {
	ctx := a.newScoreContext(s)
	scored := make([]Action, len(actions))
	for i, action := range actions {
		action.Priority = a.Score(action, ctx)
		scored[i] = action
	}
	return scored
}

// hintBuilder 保序去重的推荐列表构建器
type hintBuilder struct {
	hints []Hint
	seen  map[string]bool
	limit int
}

func newHintBuilder(limit int) *hintBuilder {
	return &hintBuilder{seen: make(map[string]bool), limit: limit}
}

func (b *hintBuilder) full() bool {
	return len(b.hints) >= b.limit
}

func (b *hintBuilder) add(command, reason string) {
	if command == "" || b.full() || b.seen[command] {
		return
	}
	b.seen[command] = true
	b.hints = append(b.hints, Hint{Command: command, Reason: reason})
}

// findAction 按谓词返回首个匹配动作的命令（动作按字典序预排）
func findAction(actions []Action, match func(Action) bool) string {
	for _, action := range actions {
		if match(action) {
			return action.Command
		}
	}
	return ""
}

// Recommend 推导有界的推荐动作列表，分支结构与评分规则一致
func (a *Advisor) Recommend(actions []Action, s *state.GameState) []Hint {
	ctx := a.newScoreContext(s)
	b := newHintBuilder(a.maxHints)

	// 字典序稳定遍历，保证并列时推荐可复现
	ordered := make([]Action, len(actions))
	copy(ordered, actions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Command < ordered[j].Command })

	if ctx.inCombat {
		a.recommendCombat(ctx, ordered, b)
	} else {
		a.recommendField(ctx, ordered, b)
	}
	return b.hints
}

func (a *Advisor) recommendCombat(ctx *scoreContext, actions []Action, b *hintBuilder) {
	s := ctx.state

	if ctx.negotiation {
		b.add("joke", "A good joke might end this without bloodshed.")
		b.add("bribe", "Gold can buy your way past this fight.")
		b.add("fight", "Settle it by force if talking fails.")
		return
	}

	if ctx.barrier {
		if cmd := findAction(actions, func(x Action) bool { return isBarrierBreakAction(ctx, x) }); cmd != "" {
			b.add(cmd, "The barrier blocks your attacks until it is broken.")
		}
	}
	if ctx.hpRatio <= healHPRatio {
		if cmd := findAction(actions, func(x Action) bool { return isHealItemAction(ctx, x) }); cmd != "" {
			b.add(cmd, "Your HP is dangerously low; heal before trading blows.")
		} else if skillReady(s, "second wind") {
			b.add("skill second wind", "Your HP is dangerously low; recover with second wind.")
		}
	}
	if skillReady(s, "focus strike") {
		b.add("skill focus strike", "Focus strike is off cooldown for burst damage.")
	}
	b.add("fight", "Keep up the pressure with basic attacks.")
	if ctx.hpRatio <= criticalHPRatio {
		b.add("run", "You may not survive another hit; escaping is reasonable.")
	}
}

func (a *Advisor) recommendField(ctx *scoreContext, actions []Action, b *hintBuilder) {
	s := ctx.state

	if s.Player.SkillPoints > 0 {
		if s.Player.SkillPoints >= 3 {
			b.add("train all", fmt.Sprintf("You have %d unspent skill points.", s.Player.SkillPoints))
		} else {
			cmd := findAction(actions, func(x Action) bool { return x.Verb == "train" })
			b.add(cmd, fmt.Sprintf("You have %d unspent skill points.", s.Player.SkillPoints))
		}
	}
	if hasGearUpgrade(s) {
		b.add("equip all", "Better gear is sitting unused in your pack.")
	}
	if !s.Flags["met_old_man"] {
		if cmd := findAction(actions, func(x Action) bool { return x.Command == "talk wise old man" }); cmd != "" {
			b.add(cmd, "The old man starts your journey and teaches core skills.")
		}
	}
	if cmd := findAction(actions, func(x Action) bool { return isQuestItemAction(ctx, x) }); cmd != "" {
		b.add(cmd, "A quest item can be used right here, right now.")
	}
	if ctx.hpRatio <= healHPRatio {
		if cmd := findAction(actions, func(x Action) bool { return isHealItemAction(ctx, x) }); cmd != "" {
			b.add(cmd, "Top up your HP before the next fight.")
		}
	}
	if ctx.recommended != "" {
		b.add(ctx.recommended, "This direction leads toward your current objective.")
	}
	b.add("quest", "Check your current objective.")
	b.add("status", "Review your stats and equipment.")
}
