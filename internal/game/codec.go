package game

import (
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/rng"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// SnapshotVersion 当前快照文档版本
const SnapshotVersion = 1

// SnapshotDocument 持久化/导出的版本化快照信封
type SnapshotDocument struct {
	Version int            `json:"version"`
	State   *SnapshotState `json:"state"`
}

// SnapshotState 会话状态的纯值形式，不含派生字段
type SnapshotState struct {
	PlayerName  string            `json:"player_name"`
	BaseMaxHP   int               `json:"base_max_hp"`
	BaseAttack  int               `json:"base_attack"`
	BaseDefense int               `json:"base_defense"`
	HP          int               `json:"hp"`
	XP          int               `json:"xp"`
	Level       int               `json:"level"`
	SkillPoints int               `json:"skill_points"`
	Gold        int               `json:"gold"`
	Inventory   map[string]int    `json:"inventory"`
	Equipment   map[string]string `json:"equipment"`
	Skills      []string          `json:"skills"`
	Cooldowns   map[string]int    `json:"cooldowns"`
	Titles      []string          `json:"titles"`
	TempBonus   map[string]int    `json:"temp_bonus"`

	CurrentLocationID   string                    `json:"current_location_id"`
	QuestStage          string                    `json:"quest_stage"`
	Flags               []string                  `json:"flags"`
	Encounter           *SnapshotEncounter        `json:"encounter,omitempty"`
	DiscoveredLocations []string                  `json:"discovered_locations"`
	Kills               map[string]map[string]int `json:"kills"`
	TurnCount           int                       `json:"turn_count"`
	GameOver            bool                      `json:"game_over"`
	Victory             bool                      `json:"victory"`
	RNGToken            string                    `json:"rng_token"`
}

// SnapshotEncounter 进行中遭遇战的纯值形式
type SnapshotEncounter struct {
	EnemyID            string `json:"enemy_id"`
	CurrentHP          int    `json:"current_hp"`
	IntentIndex        int    `json:"intent_index"`
	PlayerDefending    bool   `json:"player_defending"`
	SpecialPhase       string `json:"special_phase"`
	WitchBarrierActive bool   `json:"witch_barrier_active"`
	TurnCount          int    `json:"turn_count"`
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// EncodeSnapshot 将会话状态序列化为版本化快照文档
// RNG以不透明续算令牌形式捕获，恢复后续随机序列与原会话一致。
func EncodeSnapshot(s *state.GameState) *SnapshotDocument {
	p := s.Player
	doc := &SnapshotState{
		PlayerName:  p.Name,
		BaseMaxHP:   p.BaseMaxHP,
		BaseAttack:  p.BaseAttack,
		BaseDefense: p.BaseDefense,
		HP:          p.HP,
		XP:          p.XP,
		Level:       p.Level,
		SkillPoints: p.SkillPoints,
		Gold:        p.Gold,
		Inventory:   make(map[string]int, len(p.Inventory)),
		Equipment:   make(map[string]string, len(p.Equipment)),
		Skills:      sortedKeys(p.Skills),
		Cooldowns:   make(map[string]int, len(p.Cooldowns)),
		Titles:      append([]string{}, p.Titles...),
		TempBonus:   make(map[string]int, len(p.TempBonus)),

		CurrentLocationID:   s.CurrentLocationID,
		QuestStage:          s.QuestStage,
		Flags:               sortedKeys(s.Flags),
		DiscoveredLocations: sortedKeys(s.DiscoveredLocations),
		Kills:               make(map[string]map[string]int, len(s.Kills)),
		TurnCount:           s.TurnCount,
		GameOver:            s.GameOver,
		Victory:             s.Victory,
		RNGToken:            s.RNG.Token(),
	}

	for id, count := range p.Inventory {
		doc.Inventory[id] = count
	}
	for slot, id := range p.Equipment {
		doc.Equipment[slot] = id
	}
	for skill, cd := range p.Cooldowns {
		doc.Cooldowns[skill] = cd
	}
	for key, bonus := range p.TempBonus {
		doc.TempBonus[key] = bonus
	}
	for loc, byEnemy := range s.Kills {
		inner := make(map[string]int, len(byEnemy))
		for enemy, count := range byEnemy {
			inner[enemy] = count
		}
		doc.Kills[loc] = inner
	}

	if enc := s.ActiveEncounter; enc != nil {
		doc.Encounter = &SnapshotEncounter{
			EnemyID:            enc.EnemyID,
			CurrentHP:          enc.CurrentHP,
			IntentIndex:        enc.IntentIndex,
			PlayerDefending:    enc.PlayerDefending,
			SpecialPhase:       enc.SpecialPhase,
			WitchBarrierActive: enc.WitchBarrierActive,
			TurnCount:          enc.TurnCount,
		}
	}

	return &SnapshotDocument{Version: SnapshotVersion, State: doc}
}

// 宽松的字段取值：类型不符时保持默认值

func overlayString(raw map[string]any, key string, target *string) {
	if value, ok := raw[key].(string); ok {
		*target = value
	}
}

func overlayInt(raw map[string]any, key string, target *int) {
	if value, ok := raw[key].(float64); ok {
		*target = int(value)
	}
}

func overlayBool(raw map[string]any, key string, target *bool) {
	if value, ok := raw[key].(bool); ok {
		*target = value
	}
}

func overlayStringSlice(raw map[string]any, key string) []string {
	list, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	var result []string
	for _, entry := range list {
		if value, ok := entry.(string); ok {
			result = append(result, value)
		}
	}
	return result
}

func overlayIntMap(raw map[string]any, key string, target map[string]int, allowNegative bool) {
	obj, ok := raw[key].(map[string]any)
	if !ok {
		return
	}
	for mapKey, entry := range obj {
		value, ok := entry.(float64)
		if !ok {
			continue
		}
		n := int(value)
		if n < 0 && !allowNegative {
			continue
		}
		target[mapKey] = n
	}
}

// DecodeSnapshotBytes 解析原始JSON并恢复会话状态
// 顶层解析失败、信封结构错误、state字段缺失/非对象为硬失败；
// state内部字段逐项覆盖默认状态，非法值保持默认。
func DecodeSnapshotBytes(raw []byte, logger *zap.Logger) (*state.GameState, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(raw) == 0 {
		return nil, errors.New(errors.ErrSnapshotRestoreFailed, "空快照文档")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// 顶层不是合法JSON对象：区分语法错误与结构错误
		if !json.Valid(raw) {
			return nil, errors.Wrap(err, errors.ErrSnapshotInvalidJSON)
		}
		return nil, errors.Wrap(err, errors.ErrSnapshotInvalidPayload, "快照顶层必须是对象")
	}

	if versionRaw, ok := envelope["version"]; ok {
		var version int
		if err := json.Unmarshal(versionRaw, &version); err != nil || version != SnapshotVersion {
			return nil, errors.Newf(errors.ErrSnapshotInvalidPayload, "不支持的快照版本: %s", string(versionRaw))
		}
	}

	stateRaw, ok := envelope["state"]
	if !ok {
		return nil, errors.New(errors.ErrSnapshotMissingState)
	}
	var stateObj map[string]any
	if err := json.Unmarshal(stateRaw, &stateObj); err != nil || stateObj == nil {
		return nil, errors.New(errors.ErrSnapshotMissingState, "state字段必须是对象")
	}

	return restoreState(stateObj, logger), nil
}

// DecodeSnapshot 从已解析的快照文档恢复会话状态
func DecodeSnapshot(doc *SnapshotDocument, logger *zap.Logger) (*state.GameState, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrSnapshotRestoreFailed, "快照文档为空")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSnapshotRestoreFailed)
	}
	return DecodeSnapshotBytes(raw, logger)
}

// restoreState 在新的默认状态上逐字段覆盖快照值
func restoreState(raw map[string]any, logger *zap.Logger) *state.GameState {
	s := state.NewGameState()
	p := s.Player

	overlayString(raw, "player_name", &p.Name)
	overlayInt(raw, "base_max_hp", &p.BaseMaxHP)
	overlayInt(raw, "base_attack", &p.BaseAttack)
	overlayInt(raw, "base_defense", &p.BaseDefense)
	overlayInt(raw, "hp", &p.HP)
	overlayInt(raw, "xp", &p.XP)
	overlayInt(raw, "level", &p.Level)
	overlayInt(raw, "skill_points", &p.SkillPoints)
	overlayInt(raw, "gold", &p.Gold)

	// 数值下限修正
	if p.BaseMaxHP < 1 {
		p.BaseMaxHP = 1
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.SkillPoints < 0 {
		p.SkillPoints = 0
	}
	if p.Gold < 0 {
		p.Gold = 0
	}

	if _, ok := raw["inventory"].(map[string]any); ok {
		p.Inventory = make(map[string]int)
		overlayIntMap(raw, "inventory", p.Inventory, false)
		for itemID, count := range p.Inventory {
			if count <= 0 {
				delete(p.Inventory, itemID)
			}
		}
	}

	if equipRaw, ok := raw["equipment"].(map[string]any); ok {
		for slot := range p.Equipment {
			entry, ok := equipRaw[slot]
			if !ok {
				continue
			}
			itemID, ok := entry.(string)
			if !ok {
				continue
			}
			if itemID == "" {
				p.Equipment[slot] = ""
				continue
			}
			// 槽位值必须指向该槽位的合法装备
			item, exists := content.Items[itemID]
			if !exists {
				continue
			}
			if wantSlot, equippable := content.EquipmentSlotByType[item.Type]; equippable && wantSlot == slot {
				p.Equipment[slot] = itemID
			}
		}
	}

	for _, skill := range overlayStringSlice(raw, "skills") {
		p.Skills[skill] = true
	}
	overlayIntMap(raw, "cooldowns", p.Cooldowns, false)
	if titles := overlayStringSlice(raw, "titles"); titles != nil {
		p.Titles = titles
	}
	overlayIntMap(raw, "temp_bonus", p.TempBonus, true)

	overlayString(raw, "current_location_id", &s.CurrentLocationID)
	if _, ok := content.Locations[s.CurrentLocationID]; !ok {
		logger.Debug("快照位置未知，回退到起点", zap.String("location", s.CurrentLocationID))
		s.CurrentLocationID = content.StartLocationID
	}

	overlayString(raw, "quest_stage", &s.QuestStage)
	if !content.ValidQuestStage(s.QuestStage) {
		logger.Debug("快照任务阶段未知，回退到初始阶段", zap.String("stage", s.QuestStage))
		s.QuestStage = content.StageAwakening
	}

	for _, flag := range overlayStringSlice(raw, "flags") {
		s.Flags[flag] = true
	}
	for _, locID := range overlayStringSlice(raw, "discovered_locations") {
		if _, ok := content.Locations[locID]; ok {
			s.DiscoveredLocations[locID] = true
		}
	}
	// 当前位置始终视为已发现
	s.DiscoveredLocations[s.CurrentLocationID] = true

	if killsRaw, ok := raw["kills"].(map[string]any); ok {
		for locID, inner := range killsRaw {
			innerObj, ok := inner.(map[string]any)
			if !ok {
				continue
			}
			for enemyName, countRaw := range innerObj {
				count, ok := countRaw.(float64)
				if !ok || count <= 0 {
					continue
				}
				if s.Kills[locID] == nil {
					s.Kills[locID] = make(map[string]int)
				}
				s.Kills[locID][enemyName] = int(count)
			}
		}
	}

	overlayInt(raw, "turn_count", &s.TurnCount)
	if s.TurnCount < 0 {
		s.TurnCount = 0
	}
	overlayBool(raw, "game_over", &s.GameOver)
	overlayBool(raw, "victory", &s.Victory)

	// 遭遇战：敌人不在目录中则整体丢弃
	if encRaw, ok := raw["encounter"].(map[string]any); ok {
		enc := &state.Encounter{SpecialPhase: state.PhaseCombat}
		overlayString(encRaw, "enemy_id", &enc.EnemyID)
		if enemy, exists := content.Enemies[enc.EnemyID]; exists {
			enc.CurrentHP = enemy.HP
			overlayInt(encRaw, "current_hp", &enc.CurrentHP)
			if enc.CurrentHP < 1 {
				enc.CurrentHP = 1
			}
			if enc.CurrentHP > enemy.HP {
				enc.CurrentHP = enemy.HP
			}
			overlayInt(encRaw, "intent_index", &enc.IntentIndex)
			if enc.IntentIndex < 0 {
				enc.IntentIndex = 0
			}
			overlayBool(encRaw, "player_defending", &enc.PlayerDefending)
			overlayString(encRaw, "special_phase", &enc.SpecialPhase)
			if enc.SpecialPhase != state.PhaseCombat && enc.SpecialPhase != state.PhaseNegotiation {
				enc.SpecialPhase = state.PhaseCombat
			}
			overlayBool(encRaw, "witch_barrier_active", &enc.WitchBarrierActive)
			overlayInt(encRaw, "turn_count", &enc.TurnCount)
			if enc.TurnCount < 0 {
				enc.TurnCount = 0
			}
			s.ActiveEncounter = enc
		} else {
			logger.Debug("快照遭遇战敌人未知，已丢弃", zap.String("enemy_id", enc.EnemyID))
		}
	}

	// RNG令牌损坏时退化为全新种子，不作为硬失败
	if token, ok := raw["rng_token"].(string); ok && token != "" {
		if gen, err := rng.FromToken(token); err == nil {
			s.RNG = gen
		} else {
			logger.Warn("RNG令牌无效，使用新种子", zap.Error(err))
		}
	}

	// 恢复后HP压回[0,有效最大值]
	state.ClampHP(p)

	return s
}
