package content

// StartLocationID 新游戏的出生地点
const StartLocationID = "old_shack"

// ExitRequirement 出口通行条件
type ExitRequirement struct {
	AllFlags []string
	AnyFlags []string
	Message  string
}

// Location 地点定义
type Location struct {
	ID                 string
	Name               string
	Area               string
	Descriptions       []string
	Exits              map[string]string
	ExitRequirements   map[string]*ExitRequirement
	EncounterChance    float64
	Encounters         []WeightedEnemy
	SkillPointsPerKill int
	BossID             string
	BossFlag           string
	BossOptional       bool
	BossRequireFlags   []string
	SenseHint          string
	NPCs               []string
}

// Directions 固定方向顺序（地图渲染用）
var Directions = []string{"north", "east", "south", "west", "up", "down"}

// Locations 世界地图，按地点ID索引
var Locations = map[string]*Location{
	"old_shack": {
		ID: "old_shack", Name: "Old Shack", Area: "Forest of Magic",
		Descriptions: []string{
			"A leaning shack creaks in the wind. Candlelight flickers around old maps.",
			"The Wise Old Man's shack smells of herbs, smoke, and wet soil.",
		},
		Exits:              map[string]string{"east": "forest"},
		EncounterChance:    0.28,
		Encounters:         AreaEncounterTables["old_shack"],
		SkillPointsPerKill: 1,
		SenseHint:          "You hear quiet muttering from inside the shack, and soft scratching outside.",
		NPCs:               []string{"wise_old_man"},
	},
	"forest": {
		ID: "forest", Name: "Forest", Area: "Forest of Magic",
		Descriptions: []string{
			"Thick trees bend over a narrow path cut by old boots and claws.",
			"Mist hangs low between roots. Every branch creak sounds like footsteps.",
		},
		Exits: map[string]string{"west": "old_shack", "east": "swamp", "south": "underground_tunnel", "north": "mountain_base"},
		ExitRequirements: map[string]*ExitRequirement{
			"north": {
				AllFlags: []string{"frog_defeated"},
				Message:  "The mountain trail feels wrong. You should settle the swamp first.",
			},
		},
		EncounterChance:    0.48,
		Encounters:         AreaEncounterTables["forest"],
		SkillPointsPerKill: 2,
		SenseHint:          "Water stench drifts from the east, while cold mountain air leaks from the north.",
	},
	"swamp": {
		ID: "swamp", Name: "Swamp", Area: "Forest of Magic",
		Descriptions: []string{
			"Black water bubbles around rotted trees and broken reeds.",
			"The swamp is silent except for distant croaks that sound almost human.",
		},
		Exits:     map[string]string{"west": "forest"},
		BossID:    "giant_frog",
		BossFlag:  "frog_defeated",
		SenseHint: "Something heavy moves beneath the water.",
	},
	"underground_tunnel": {
		ID: "underground_tunnel", Name: "Underground Tunnel", Area: "Forest of Magic",
		Descriptions: []string{
			"Packed earth walls squeeze around a tunnel lined with claw marks.",
			"Loose stones shift under your boots in the stale underground air.",
		},
		Exits:              map[string]string{"north": "forest"},
		EncounterChance:    0.52,
		Encounters:         AreaEncounterTables["underground_tunnel"],
		SkillPointsPerKill: 3,
		SenseHint:          "You hear digging farther in, like a drumbeat through dirt.",
	},
	"mountain_base": {
		ID: "mountain_base", Name: "Dragon Mountain Base", Area: "Dragon Mountain",
		Descriptions: []string{
			"Steep cliffs rise ahead as embers drift down from somewhere above.",
			"Broken pillars and charred shrubs mark the mountain foothills.",
		},
		Exits: map[string]string{"south": "forest", "east": "abandoned_mine", "north": "mountain_peak", "west": "desolate_road"},
		ExitRequirements: map[string]*ExitRequirement{
			"west": {
				AllFlags: []string{"dragon_defeated"},
				Message:  "A dreadful road calls to Makor's Castle. You are not ready yet.",
			},
		},
		EncounterChance:    0.56,
		Encounters:         AreaEncounterTables["mountain_base"],
		SkillPointsPerKill: 4,
		SenseHint:          "Heat washes down from the peak, but a dead stillness sits to the west.",
	},
	"abandoned_mine": {
		ID: "abandoned_mine", Name: "Abandoned Mine", Area: "Dragon Mountain",
		Descriptions: []string{
			"Collapsed rails and black ore veins cut through the cavern walls.",
			"Lantern hooks swing empty above a mine swallowed by ash.",
		},
		Exits:              map[string]string{"west": "mountain_base"},
		EncounterChance:    0.62,
		Encounters:         AreaEncounterTables["abandoned_mine"],
		SkillPointsPerKill: 5,
		SenseHint:          "You hear scraping picks and hoarse whispers from deeper shafts.",
	},
	"mountain_peak": {
		ID: "mountain_peak", Name: "Dragon Mountain Peak", Area: "Dragon Mountain",
		Descriptions: []string{
			"The summit is a ring of cracked stone and ancient bones.",
			"Winds scream across the peak, carrying ash and old warnings.",
		},
		Exits: map[string]string{"south": "mountain_base", "east": "mountain_cave"},
		ExitRequirements: map[string]*ExitRequirement{
			"east": {
				AllFlags: []string{"dragon_defeated"},
				Message:  "The cave path is sealed by heat and rubble while the dragon lives.",
			},
		},
		BossID:    "dragon",
		BossFlag:  "dragon_defeated",
		SenseHint: "A shadow circles above, then vanishes in cloud.",
	},
	"mountain_cave": {
		ID: "mountain_cave", Name: "Dragon Mountain Cave", Area: "Dragon Mountain",
		Descriptions: []string{
			"Gold glints between stalagmites under a low, rumbling growl.",
			"The cave floor is buried in coins, armor, and splintered bones.",
		},
		Exits:            map[string]string{"west": "mountain_peak"},
		BossID:           "ogre",
		BossFlag:         "ogre_defeated",
		BossOptional:     true,
		BossRequireFlags: []string{"dragon_defeated"},
		SenseHint:        "Treasure shines in the dark, but something bigger breathes nearby.",
	},
	"desolate_road": {
		ID: "desolate_road", Name: "Desolate Road", Area: "Makor's Castle",
		Descriptions: []string{
			"A dead road of cracked stone runs toward distant castle towers.",
			"No birds fly here. Only old battle standards flap in torn strips.",
		},
		Exits:              map[string]string{"east": "mountain_base", "west": "royal_yard"},
		EncounterChance:    0.52,
		Encounters:         AreaEncounterTables["desolate_road"],
		SkillPointsPerKill: 6,
		BossID:             "goblin_army",
		BossFlag:           "goblin_army_defeated",
		BossRequireFlags:   []string{"dragon_defeated"},
		SenseHint:          "You spot tiny shadows shifting along the road walls.",
	},
	"royal_yard": {
		ID: "royal_yard", Name: "Royal Yard", Area: "Makor's Castle",
		Descriptions: []string{
			"Shattered statues and rusted spears fill the yard before the black keep.",
			"The ground is pitted with old fire and fresh blood.",
		},
		Exits: map[string]string{"east": "desolate_road", "north": "black_hall"},
		ExitRequirements: map[string]*ExitRequirement{
			"north": {
				AnyFlags: []string{"goblin_army_defeated", "goblin_pass_granted"},
				Message:  "You should survive the road's goblin ambush before entering the keep.",
			},
		},
		EncounterChance:    0.6,
		Encounters:         AreaEncounterTables["royal_yard"],
		SkillPointsPerKill: 7,
		SenseHint:          "A hollow laugh echoes from inside the keep.",
	},
	"black_hall": {
		ID: "black_hall", Name: "Black Hall", Area: "Makor's Castle",
		Descriptions: []string{
			"Columns vanish into darkness while red torchlight stains the stone.",
			"The hall is empty, but a pulse beats behind the walls.",
		},
		Exits: map[string]string{"south": "royal_yard", "down": "dungeon", "north": "witch_terrace"},
		ExitRequirements: map[string]*ExitRequirement{
			"north": {
				AllFlags: []string{"makor_defeated"},
				Message:  "A wall of pressure blocks the terrace stairs. Makor still stands.",
			},
		},
		SenseHint: "Two red points flare in the dark, then blink out.",
	},
	"dungeon": {
		ID: "dungeon", Name: "Dungeon", Area: "Makor's Castle",
		Descriptions: []string{
			"Iron bars and wet stone frame a pit beneath the castle.",
			"Chains drag across the floor as if pulled by unseen hands.",
		},
		Exits:     map[string]string{"up": "black_hall"},
		BossID:    "king_makor",
		BossFlag:  "makor_defeated",
		SenseHint: "A blade scrapes against stone nearby.",
	},
	"witch_terrace": {
		ID: "witch_terrace", Name: "Witch's Terrace", Area: "Makor's Castle",
		Descriptions: []string{
			"An open terrace hangs over a black void with runes carved in circles.",
			"Cold wind whips around a ritual platform stained with shadow.",
		},
		Exits:     map[string]string{"south": "black_hall"},
		BossID:    "onyx_witch",
		BossFlag:  "onyx_witch_defeated",
		SenseHint: "You hear a woman sobbing between ritual chants.",
		NPCs:      []string{"elle"},
	},
}

// NPC 非玩家角色定义
type NPC struct {
	ID               string
	Name             string
	LocationID       string
	FirstDialogue    []string
	RepeatDialogue   []string
	CleansedDialogue []string
}

// NPCs 全部NPC，按ID索引
var NPCs = map[string]*NPC{
	"wise_old_man": {
		ID: "wise_old_man", Name: "Wise Old Man", LocationID: "old_shack",
		FirstDialogue: []string{
			"The old man lowers his hood and studies you.",
			"\"Three paths define survival: strike true, guard well, and harden your life.\"",
			"\"The swamp holds what was hidden. The mountain guards what was stolen.\"",
			"\"Listen to roads and ruins. They whisper before they kill.\"",
			"You learn combat skill: Focus Strike.",
		},
		RepeatDialogue: []string{
			"\"The key in the swamp opens more than doors.\"",
			"\"If goblins laugh, they may spare you. If they fear you, they may bargain.\"",
			"\"Do not trust victory over Makor to be the end.\"",
		},
	},
	"elle": {
		ID: "elle", Name: "Elle", LocationID: "witch_terrace",
		FirstDialogue: []string{
			"Elle rubs her wrists where shackles once held her.",
			"\"I knew someone would come, but not you.\"",
		},
		RepeatDialogue: []string{
			"\"The witch's corruption still burns in me... maybe the vial can purge it.\"",
		},
		CleansedDialogue: []string{
			"Silver light leaves Elle's eyes as the corruption fades.",
			"\"It is over. Let's go home.\"",
		},
	},
}

// LocationName 根据ID返回地点名称，未知ID返回原始ID
func LocationName(locationID string) string {
	if loc, ok := Locations[locationID]; ok {
		return loc.Name
	}
	return locationID
}
