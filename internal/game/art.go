package game

import (
	"strings"

	"github.com/Joey1399/byte-world-ai/internal/content"
	"github.com/Joey1399/byte-world-ai/internal/state"
)

// ArtSelection 展示层使用的场景画面，ASCII与Image二选一
type ArtSelection struct {
	Title string `json:"title"`
	ASCII string `json:"ascii,omitempty"`
	Image string `json:"image,omitempty"`
}

// 通用占位画，未知ID按类别合成
const (
	genericCreatureGlyph = `
   (\_/)
   (o.o)  ?
   /   \
`
	genericBossGlyph = `
   /\ /\
  ( >w< )  !!
  /|###|\
`
	genericLocationGlyph = `
  .  *  .
 /|\ ___ /|\
  |  | |  |
`
	genericNPCGlyph = `
    o
   /|\  ...
   / \
`
)

// enemyArt 手绘的敌人画面，未收录的敌人走类别占位
var enemyArt = map[string]ArtSelection{
	"dragon": {
		Title: "The Dragon",
		ASCII: `
        __====-_
   _--~~        \
  <  )   (o)     \__
   \_|    __   __--~
      ~~~~  ~~~`,
	},
	"king_makor": {
		Title: "King Makor",
		ASCII: `
     |VVVVV|
     | o o |
     |  ^  |
    /|=====|\
   d | RING | b`,
	},
	"onyx_witch": {
		Title: "The Onyx Witch",
		ASCII: `
      /\
     /**\
    | @@ |~~~
     \~~/  * *
   ___||___`,
	},
	"goblin_army": {
		Title: "The Goblin Army",
		ASCII: `
  .o.  .o.  .o.
  \Y/  \Y/  \Y/
  /\   /\   /\`,
	},
	"giant_frog": {
		Title: "The Giant Frog",
		ASCII: `
    @..@
   (----)
  ( >__< )
  ^^ ~~ ^^`,
	},
	"ogre": {
		Title: "The Cave Ogre",
		ASCII: `
    ___
   (O_O)
  /|###|\
   |   |  ===[
  _|   |_`,
	},
}

// locationArt 地点画面，大图走静态资源引用
var locationArt = map[string]ArtSelection{
	"old_shack":     {Title: "The Old Shack", Image: "/static/art/old_shack.png"},
	"swamp":         {Title: "The Swamp", Image: "/static/art/swamp.png"},
	"mountain_peak": {Title: "Dragon Mountain Peak", Image: "/static/art/mountain_peak.png"},
	"black_hall": {
		Title: "The Black Hall",
		ASCII: `
  |~| |~| |~|
  | |_| |_| |
  |  BLACK  |
  |__HALL___|`,
	},
	"witch_terrace": {
		Title: "The Witch's Terrace",
		ASCII: `
    )    (
   (  /\  )
    ~|  |~
  ___|__|___`,
	},
}

var npcArt = map[string]ArtSelection{
	"wise_old_man": {
		Title: "The Wise Old Man",
		ASCII: `
    ,~~.
   ( 6 6)
    \ = /  ~staff~
    /||\\`,
	},
	"elle": {Title: "Elle", Image: "/static/art/elle.png"},
}

// ArtSelector 边沿触发的场景画面选择器
// 仅在新遭遇开始、成功对话NPC、发现新地点时切换，其余回合保持不变。
type ArtSelector struct {
	current ArtSelection
}

// NewArtSelector 创建选择器并定位到起始地点画面
func NewArtSelector(s *state.GameState) *ArtSelector {
	sel := &ArtSelector{}
	sel.current = artForLocation(s.CurrentLocationID)
	return sel
}

// Current 当前画面
func (sel *ArtSelector) Current() ArtSelection {
	return sel.current
}

// TurnObservation 一个回合前后的切换判定输入
type TurnObservation struct {
	PrevEnemyID    string // 回合前的遭遇敌人ID，无遭遇为空
	PrevLocationID string
	PrevDiscovered int // 回合前已发现地点数
	Command        string
}

// Observe 根据回合前后状态差异做边沿切换
func (sel *ArtSelector) Observe(obs TurnObservation, s *state.GameState) {
	// 新遭遇开始：只在敌人切换的第一回合触发
	if enc := s.ActiveEncounter; enc != nil {
		if enc.EnemyID != obs.PrevEnemyID {
			sel.current = artForEnemy(enc.EnemyID)
		}
		return
	}

	// talk命令命中当前地点的NPC
	if npcID := talkedNPC(obs.Command, s); npcID != "" {
		sel.current = artForNPC(npcID)
		return
	}

	// 移动发现了新地点
	if s.CurrentLocationID != obs.PrevLocationID && len(s.DiscoveredLocations) > obs.PrevDiscovered {
		sel.current = artForLocation(s.CurrentLocationID)
	}
}

// talkedNPC 解析talk命令指向的当前地点可见NPC
func talkedNPC(command string, s *state.GameState) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(command)))
	if len(fields) < 2 || fields[0] != "talk" {
		return ""
	}
	query := strings.Join(fields[1:], " ")

	loc, ok := content.Locations[s.CurrentLocationID]
	if !ok {
		return ""
	}
	for _, npcID := range loc.NPCs {
		npc, exists := content.NPCs[npcID]
		if !exists {
			continue
		}
		if npcID == "elle" && !s.Flags["onyx_witch_defeated"] {
			continue
		}
		name := strings.ToLower(npc.Name)
		if query == npcID || query == name || strings.Contains(name, query) {
			return npcID
		}
	}
	return ""
}

func artForEnemy(enemyID string) ArtSelection {
	if art, ok := enemyArt[enemyID]; ok {
		return art
	}
	enemy, ok := content.Enemies[enemyID]
	if !ok {
		return ArtSelection{Title: "Unknown Creature", ASCII: genericCreatureGlyph}
	}
	if enemy.Category == content.EnemyBoss {
		return ArtSelection{Title: enemy.Name, ASCII: genericBossGlyph}
	}
	return ArtSelection{Title: enemy.Name, ASCII: genericCreatureGlyph}
}

func artForLocation(locationID string) ArtSelection {
	if art, ok := locationArt[locationID]; ok {
		return art
	}
	if loc, ok := content.Locations[locationID]; ok {
		return ArtSelection{Title: loc.Name, ASCII: genericLocationGlyph}
	}
	return ArtSelection{Title: "Uncharted Ground", ASCII: genericLocationGlyph}
}

func artForNPC(npcID string) ArtSelection {
	if art, ok := npcArt[npcID]; ok {
		return art
	}
	if npc, ok := content.NPCs[npcID]; ok {
		return ArtSelection{Title: npc.Name, ASCII: genericNPCGlyph}
	}
	return ArtSelection{Title: "A Stranger", ASCII: genericNPCGlyph}
}
