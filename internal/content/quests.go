package content

// 主线任务阶段标签（有序）
const (
	StageAwakening     = "awakening"
	StageSwampSecret   = "swamp_secret"
	StageMountainFlame = "mountain_flame"
	StageCastleRoad    = "castle_road"
	StageBlackHall     = "black_hall"
	StageWitchBane     = "witch_bane"
	StageRescueElle    = "rescue_elle"
	StageHomecoming    = "homecoming"
)

// QuestOrder 主线阶段顺序
var QuestOrder = []string{
	StageAwakening,
	StageSwampSecret,
	StageMountainFlame,
	StageCastleRoad,
	StageBlackHall,
	StageWitchBane,
	StageRescueElle,
	StageHomecoming,
}

// QuestStage 任务阶段元数据
type QuestStage struct {
	Title       string
	Description string
	Hint        string
}

// QuestStages 阶段标签到元数据的映射
var QuestStages = map[string]*QuestStage{
	StageAwakening: {
		Title:       "Awakening",
		Description: "Meet the Wise Old Man in the Old Shack and learn what must be done.",
		Hint:        "Use `talk wise old man` if you have not spoken to him.",
	},
	StageSwampSecret: {
		Title:       "The Swamp Secret",
		Description: "Travel to the swamp and defeat the Giant Frog.",
		Hint:        "Forest creatures can be farmed for skill points before the boss.",
	},
	StageMountainFlame: {
		Title:       "Ash on the Peak",
		Description: "Climb Dragon Mountain, defeat the dragon, and claim its relics.",
		Hint:        "The cave is optional, but dangerous treasure waits there.",
	},
	StageCastleRoad: {
		Title:       "Road of Knives",
		Description: "Survive the desolate road and deal with the Army of Goblins.",
		Hint:        "You may joke, bribe, or fight.",
	},
	StageBlackHall: {
		Title:       "King in Rot",
		Description: "Enter Makor's keep and defeat King Makor in the dungeon.",
		Hint:        "The mysterious ring awakens when the fight turns desperate.",
	},
	StageWitchBane: {
		Title:       "Break the Curse",
		Description: "Defeat the Onyx Witch. Her black magic must be countered.",
		Hint:        "The goblin riddle can break her binding spell.",
	},
	StageRescueElle: {
		Title:       "Rescue Elle",
		Description: "Free Elle with the crusty key and cleanse her corruption with the vial.",
		Hint:        "Use `use crusty key` and `use vial of tears` at the Witch's Terrace.",
	},
	StageHomecoming: {
		Title:       "Homecoming",
		Description: "Elle is free and the corruption is gone. The journey is complete.",
		Hint:        "Talk to Elle or the Wise Old Man for closing dialogue.",
	},
}

// ValidQuestStage 判断阶段标签是否存在
func ValidQuestStage(stage string) bool {
	_, ok := QuestStages[stage]
	return ok
}
