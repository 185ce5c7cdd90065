package state

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/rng"
)

// Player 玩家全部可变状态
type Player struct {
	Name        string
	BaseMaxHP   int
	BaseAttack  int
	BaseDefense int
	HP          int
	XP          int
	Level       int
	SkillPoints int
	Gold        int
	Inventory   map[string]int
	Equipment   map[string]string
	Skills      map[string]bool
	Cooldowns   map[string]int
	Titles      []string
	TempBonus   map[string]int
}

// Encounter 进行中的遭遇战状态
type Encounter struct {
	EnemyID            string
	CurrentHP          int
	IntentIndex        int
	PlayerDefending    bool
	SpecialPhase       string
	WitchBarrierActive bool
	TurnCount          int
}

// 遭遇战子阶段
const (
	PhaseCombat      = "combat"
	PhaseNegotiation = "negotiation"
)

// GameState 单局游戏运行时的唯一事实来源
type GameState struct {
	Player              *Player
	CurrentLocationID   string
	QuestStage          string
	Flags               map[string]bool
	ActiveEncounter     *Encounter
	DiscoveredLocations map[string]bool
	Kills               map[string]map[string]int
	TurnCount           int
	GameOver            bool
	Victory             bool
	RNG                 *rng.Generator
}

// NewPlayer 创建带初始装备的玩家
func NewPlayer() *Player {
	return &Player{
		Name:        "Wanderer",
		BaseMaxHP:   50,
		BaseAttack:  8,
		BaseDefense: 5,
		HP:          50,
		Level:       1,
		Gold:        20,
		Inventory: map[string]int{
			"rusted_blade":   1,
			"patched_coat":   1,
			"minor_potion":   2,
			"sturdy_bandage": 1,
		},
		Equipment: map[string]string{
			"weapon":    "rusted_blade",
			"armor":     "patched_coat",
			"shield":    "",
			"accessory": "",
			"aura":      "",
		},
		Skills:    make(map[string]bool),
		Cooldowns: make(map[string]int),
		TempBonus: make(map[string]int),
	}
}

// NewGameState 创建新一局的初始状态
func NewGameState() *GameState {
	s := &GameState{
		Player:              NewPlayer(),
		CurrentLocationID:   content.StartLocationID,
		QuestStage:          content.StageAwakening,
		Flags:               make(map[string]bool),
		DiscoveredLocations: make(map[string]bool),
		Kills:               make(map[string]map[string]int),
		RNG:                 rng.New(),
	}
	s.DiscoveredLocations[s.CurrentLocationID] = true
	return s
}

// Stats 玩家有效战斗属性
type Stats struct {
	MaxHP   int
	Attack  int
	Defense int
}

// EffectiveStats 计算装备与临时加成后的有效属性
func EffectiveStats(p *Player) Stats {
	attack := p.BaseAttack
	defense := p.BaseDefense
	maxHP := p.BaseMaxHP

	for _, itemID := range p.Equipment {
		if itemID == "" {
			continue
		}
		item, ok := content.Items[itemID]
		if !ok {
			continue
		}
		attack += item.AttackBonus
		defense += item.DefenseBonus
		maxHP += item.MaxHPBonus
	}

	attack += p.TempBonus["attack"]
	defense += p.TempBonus["defense"]
	maxHP += p.TempBonus["max_hp"]

	if maxHP < 1 {
		maxHP = 1
	}
	if attack < 1 {
		attack = 1
	}
	if defense < 0 {
		defense = 0
	}
	return Stats{MaxHP: maxHP, Attack: attack, Defense: defense}
}

// ClampHP 将HP限制在[0,有效最大HP]
func ClampHP(p *Player) {
	maxHP := EffectiveStats(p).MaxHP
	if p.HP > maxHP {
		p.HP = maxHP
	}
	if p.HP < 0 {
		p.HP = 0
	}
}

// Heal 恢复HP并返回实际恢复量
func Heal(p *Player, amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := p.HP
	p.HP += amount
	ClampHP(p)
	return p.HP - before
}

// AddItem 添加物品到背包
func AddItem(p *Player, itemID string, qty int) {
	if qty <= 0 {
		return
	}
	p.Inventory[itemID] += qty
}

// RemoveItem 移除物品，数量不足时返回false
func RemoveItem(p *Player, itemID string, qty int) bool {
	if qty <= 0 {
		return true
	}
	owned := p.Inventory[itemID]
	if owned < qty {
		return false
	}
	if owned == qty {
		delete(p.Inventory, itemID)
	} else {
		p.Inventory[itemID] = owned - qty
	}
	return true
}

// HasItem 判断是否持有至少一个指定物品
func HasItem(p *Player, itemID string) bool {
	return p.Inventory[itemID] > 0
}

// XPToNextLevel 升级所需经验曲线
func XPToNextLevel(level int) int {
	extra := level - 1
	if extra < 0 {
		extra = 0
	}
	return 40 + extra*30
}

// AwardXP 发放经验并按需升级，返回消息列表
func AwardXP(p *Player, amount int) []string {
	var messages []string
	if amount <= 0 {
		return messages
	}

	p.XP += amount
	messages = append(messages, fmt.Sprintf("You gain %d XP.", amount))

	for p.XP >= XPToNextLevel(p.Level) {
		p.XP -= XPToNextLevel(p.Level)
		p.Level++
		p.BaseMaxHP += 6
		p.BaseAttack++
		p.BaseDefense++
		ClampHP(p)
		p.HP = EffectiveStats(p).MaxHP
		messages = append(messages, fmt.Sprintf(
			"Level up! You are now level %d. Base stats increased and HP fully restored.", p.Level))
	}
	return messages
}

// RecordKill 记录击杀到按地点分组的击杀台账
func (s *GameState) RecordKill(locationID, enemyName string) {
	if s.Kills == nil {
		s.Kills = make(map[string]map[string]int)
	}
	if s.Kills[locationID] == nil {
		s.Kills[locationID] = make(map[string]int)
	}
	s.Kills[locationID][enemyName]++
}

// NormalizeName 规范化文本用于命令匹配
func NormalizeName(text string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(strings.TrimSpace(text)) {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) || unicode.IsSpace(ch) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// FindItemByQuery 按ID或模糊名称查找持有的物品
func FindItemByQuery(p *Player, query string) string {
	queryNorm := NormalizeName(query)
	if queryNorm == "" {
		return ""
	}

	if _, ok := p.Inventory[query]; ok {
		return query
	}
	if _, ok := p.Inventory[queryNorm]; ok {
		return queryNorm
	}

	// 先找全名匹配，再退化为包含匹配
	var partial string
	for itemID := range p.Inventory {
		name := NormalizeName(content.ItemName(itemID))
		if name == queryNorm {
			return itemID
		}
		if partial == "" && strings.Contains(name, queryNorm) {
			partial = itemID
		}
	}
	return partial
}
