package content

// EnemyCategory 敌人类别
type EnemyCategory string

const (
	EnemyNormal EnemyCategory = "normal"
	EnemyBoss   EnemyCategory = "boss"
)

// 特殊遭遇机制标识
const (
	SpecialGoblinNegotiation = "goblin_negotiation"
	SpecialWitchBarrier      = "witch_barrier"
)

// Intent 敌人攻击意图（按序循环）
type Intent struct {
	Name             string
	Telegraph        string
	BaseDamage       int
	DefendMultiplier float64
}

// WeightedDrop 加权掉落条目
type WeightedDrop struct {
	ItemID string
	Weight int
}

// WeightedEnemy 加权遭遇条目
type WeightedEnemy struct {
	EnemyID string
	Weight  int
}

// Enemy 敌人定义
type Enemy struct {
	ID                string
	Name              string
	Category          EnemyCategory
	HP                int
	Attack            int
	Defense           int
	XPReward          int
	GoldReward        int
	SkillPointsReward int
	GuaranteedDrops   []string
	LootTable         []WeightedDrop
	PreDialogue       []string
	PostDialogue      []string
	Intents           []Intent
	Special           string
}

// Enemies 全部敌人目录（含程序生成的地区变体），按ID索引
var Enemies = map[string]*Enemy{
	"rat": {
		ID: "rat", Name: "Sewer Rat", Category: EnemyNormal,
		HP: 14, Attack: 4, Defense: 1, XPReward: 8, GoldReward: 4,
		LootTable: []WeightedDrop{{"sturdy_bandage", 35}, {"minor_potion", 12}},
	},
	"wolf": {
		ID: "wolf", Name: "Forest Wolf", Category: EnemyNormal,
		HP: 22, Attack: 7, Defense: 2, XPReward: 14, GoldReward: 8,
		LootTable: []WeightedDrop{{"minor_potion", 18}},
	},
	"giant_mole": {
		ID: "giant_mole", Name: "Giant Mole", Category: EnemyNormal,
		HP: 28, Attack: 8, Defense: 4, XPReward: 18, GoldReward: 12,
		LootTable: []WeightedDrop{{"minor_potion", 20}, {"patched_coat", 10}},
	},
	"whelp": {
		ID: "whelp", Name: "Mountain Whelp", Category: EnemyNormal,
		HP: 35, Attack: 10, Defense: 4, XPReward: 24, GoldReward: 16,
		LootTable: []WeightedDrop{{"minor_potion", 24}},
	},
	"corrupt_dwarf": {
		ID: "corrupt_dwarf", Name: "Corrupt Dwarf", Category: EnemyNormal,
		HP: 42, Attack: 12, Defense: 6, XPReward: 30, GoldReward: 22,
		LootTable: []WeightedDrop{{"minor_potion", 20}, {"rusted_blade", 10}},
	},
	"goblin_squire": {
		ID: "goblin_squire", Name: "Goblin Squire", Category: EnemyNormal,
		HP: 48, Attack: 14, Defense: 7, XPReward: 36, GoldReward: 26,
		LootTable: []WeightedDrop{{"minor_potion", 16}},
	},
	"corrupted_knight": {
		ID: "corrupted_knight", Name: "Corrupted Knight", Category: EnemyNormal,
		HP: 56, Attack: 16, Defense: 9, XPReward: 42, GoldReward: 32,
		LootTable: []WeightedDrop{{"minor_potion", 20}, {"patched_coat", 6}},
	},
	"giant_frog": {
		ID: "giant_frog", Name: "Giant Frog, Prince of the Swamp", Category: EnemyBoss,
		HP: 85, Attack: 13, Defense: 6, XPReward: 80, GoldReward: 55, SkillPointsReward: 6,
		GuaranteedDrops: []string{"crusty_key", "crusty_sword", "froghide_armor"},
		PreDialogue: []string{
			"The swamp bubbles and a giant frog rises from the black water.",
			"\"I am the Prince of this swamp. A dark secret sleeps inside me.\"",
		},
		PostDialogue: []string{
			"The prince collapses into the mud.",
			"You pry a crusty key from the corpse.",
			"A whisper crosses the water: the Onyx Witch hid this key far away, and the frog swallowed it.",
		},
		Intents: []Intent{
			{Name: "Tongue Lash", Telegraph: "The frog coils its tongue like a spring.", BaseDamage: 12, DefendMultiplier: 0.4},
			{Name: "Bog Burst", Telegraph: "Its throat glows green as swamp gas gathers.", BaseDamage: 16, DefendMultiplier: 0.25},
		},
	},
	"dragon": {
		ID: "dragon", Name: "Ash Dragon", Category: EnemyBoss,
		HP: 130, Attack: 19, Defense: 10, XPReward: 140, GoldReward: 95, SkillPointsReward: 10,
		GuaranteedDrops: []string{"mysterious_ring", "dragon_armor", "obsidian_amulet", "obsidian_scimitar"},
		PreDialogue: []string{
			"At the peak, a dragon lands on ancient bones with a hiss.",
			"\"No one survives this summit. Not even Makor's oldest son.\"",
		},
		PostDialogue: []string{
			"The dragon turns to drifting ash.",
			"An echo rides the wind: \"Treasure waits in the cave, but peril owns it.\"",
		},
		Intents: []Intent{
			{Name: "Cinder Breath", Telegraph: "Flames gather in the dragon's chest.", BaseDamage: 20, DefendMultiplier: 0.35},
			{Name: "Tail Reap", Telegraph: "Its tail carves a wide arc through the air.", BaseDamage: 17, DefendMultiplier: 0.5},
			{Name: "Sky Dive", Telegraph: "The dragon launches upward, shadow swallowing the ground.", BaseDamage: 24, DefendMultiplier: 0.3},
		},
	},
	"ogre": {
		ID: "ogre", Name: "Hoard Ogre", Category: EnemyBoss,
		HP: 150, Attack: 21, Defense: 11, XPReward: 160, GoldReward: 120, SkillPointsReward: 12,
		GuaranteedDrops: []string{"hoard_treasure", "dragon_ring", "dragon_shield"},
		PreDialogue: []string{
			"A hulking ogre stomps out of the treasure cave.",
			"\"Leave now or die. This hoard is mine.\"",
		},
		PostDialogue: []string{
			"The ogre slumps over the treasure.",
			"\"Take... the hoard... back to the old man...\"",
		},
		Intents: []Intent{
			{Name: "Boulder Crush", Telegraph: "The ogre raises a boulder over its head.", BaseDamage: 22, DefendMultiplier: 0.35},
			{Name: "Ground Slam", Telegraph: "It digs both feet in, preparing a shockwave.", BaseDamage: 19, DefendMultiplier: 0.45},
		},
	},
	"goblin_army": {
		ID: "goblin_army", Name: "Army of Goblins", Category: EnemyBoss,
		HP: 165, Attack: 18, Defense: 9, XPReward: 170, GoldReward: 130, SkillPointsReward: 14,
		GuaranteedDrops: []string{"goblin_riddle"},
		PreDialogue: []string{
			"Ropes snap tight around your arms as goblins surround you.",
			"\"Traveling near Makor's Castle? Brave... and stupid.\"",
			"You can try `joke`, `bribe`, or `fight`.",
		},
		PostDialogue: []string{
			"Most of the goblins fall. One survivor throws you a scrap of parchment.",
			"\"Take it! A riddle to break the witch's curse. Just let me live.\"",
		},
		Intents: []Intent{
			{Name: "Mob Rush", Telegraph: "The front rank lowers spears and stamps forward.", BaseDamage: 18, DefendMultiplier: 0.45},
			{Name: "Javelin Volley", Telegraph: "A rain of crude javelins rises into the sky.", BaseDamage: 21, DefendMultiplier: 0.35},
		},
		Special: SpecialGoblinNegotiation,
	},
	"king_makor": {
		ID: "king_makor", Name: "King Makor the Rot", Category: EnemyBoss,
		HP: 190, Attack: 25, Defense: 13, XPReward: 220, GoldReward: 160, SkillPointsReward: 18,
		GuaranteedDrops: []string{"makor_soul"},
		PreDialogue: []string{
			"A voice booms through the Black Hall: \"So this is the one Elle mentioned.\"",
			"Red eyes ignite in darkness and then your vision goes black.",
			"You wake in a dungeon cell. Makor laughs, certain you are weak.",
			"Your hand finds the mysterious ring. It burns with sudden power.",
		},
		PostDialogue: []string{
			"Makor drops to one knee and begs forgiveness.",
			"You strike anyway. His final scream echoes: \"You'll never defeat her!\"",
			"His body collapses into dust.",
		},
		Intents: []Intent{
			{Name: "Rot Blade", Telegraph: "Makor draws a blackened blade dripping shadow.", BaseDamage: 25, DefendMultiplier: 0.4},
			{Name: "Soul Rend", Telegraph: "Dark sigils spiral around Makor's gauntlet.", BaseDamage: 28, DefendMultiplier: 0.35},
			{Name: "Crushing Lunge", Telegraph: "He crouches low, preparing to cross the room in one leap.", BaseDamage: 23, DefendMultiplier: 0.45},
		},
	},
	"onyx_witch": {
		ID: "onyx_witch", Name: "The Onyx Witch", Category: EnemyBoss,
		HP: 230, Attack: 29, Defense: 16, XPReward: 300, GoldReward: 200, SkillPointsReward: 22,
		GuaranteedDrops: []string{"vial_of_tears"},
		PreDialogue: []string{
			"The witch drags Elle forward in chains and smiles.",
			"\"Makor was weak. You are weaker.\"",
			"Black magic coils around your limbs. You cannot strike.",
			"Try `read riddle` when the time is right.",
		},
		PostDialogue: []string{
			"The witch's soul collapses inward and vanishes beneath the stone.",
			"A thousand-voice scream rises and then cuts to silence.",
		},
		Intents: []Intent{
			{Name: "Curse Pulse", Telegraph: "Black runes flare across the terrace floor.", BaseDamage: 24, DefendMultiplier: 0.45},
			{Name: "Void Lance", Telegraph: "She forms a spear of onyx light in her palm.", BaseDamage: 30, DefendMultiplier: 0.3},
			{Name: "Blood Hex", Telegraph: "Her voice drops to a whisper as your pulse stutters.", BaseDamage: 26, DefendMultiplier: 0.4},
		},
		Special: SpecialWitchBarrier,
	},
}

// EndBossIDs 终局首领（渲染成红色）
var EndBossIDs = map[string]bool{
	"king_makor": true,
	"onyx_witch": true,
}

// baseEnemyByLocation 各可刷怪地点的基准敌人
var baseEnemyByLocation = map[string]string{
	"old_shack":          "rat",
	"forest":             "wolf",
	"underground_tunnel": "giant_mole",
	"mountain_base":      "whelp",
	"abandoned_mine":     "corrupt_dwarf",
	"desolate_road":      "goblin_squire",
	"royal_yard":         "corrupted_knight",
}

type variantName struct {
	id   string
	name string
}

// locationCreatureVariants 每个可刷怪地点附加的19种变体
var locationCreatureVariants = map[string][]variantName{
	"old_shack": {
		{"cellar_rat", "Cellar Rat"}, {"attic_rat", "Attic Rat"}, {"needle_mouse", "Needle Mouse"},
		{"splinter_mouse", "Splinter Mouse"}, {"mold_mite_swarm", "Mold Mite Swarm"}, {"soot_lizard", "Soot Lizard"},
		{"root_gecko", "Root Gecko"}, {"bog_tick_cluster", "Bog Tick Cluster"}, {"scrap_beetle", "Scrap Beetle"},
		{"shack_spider", "Shack Spider"}, {"thorn_snail", "Thorn Snail"}, {"gutter_newt", "Gutter Newt"},
		{"splint_crow", "Splint Crow"}, {"moss_crab", "Moss Crab"}, {"burrow_flea_pack", "Burrow Flea Pack"},
		{"lantern_moth", "Lantern Moth"}, {"mud_slug", "Mud Slug"}, {"hollow_weasel", "Hollow Weasel"},
		{"woodworm_hive", "Woodworm Hive"},
	},
	"forest": {
		{"briar_wolf", "Briar Wolf"}, {"feral_fox", "Feral Fox"}, {"thorn_boar", "Thorn Boar"},
		{"bark_serpent", "Bark Serpent"}, {"shade_hare", "Shade Hare"}, {"vine_panther", "Vine Panther"},
		{"iron_ant_swarm", "Iron Ant Swarm"}, {"mist_stag", "Mist Stag"}, {"bramble_lurker", "Bramble Lurker"},
		{"hollow_hound", "Hollow Hound"}, {"ivy_mantis", "Ivy Mantis"}, {"root_tortoise", "Root Tortoise"},
		{"crow_hexer", "Crow Hexer"}, {"moss_lynx", "Moss Lynx"}, {"glade_viper", "Glade Viper"},
		{"antler_fiend", "Antler Fiend"}, {"fungus_ape", "Fungus Ape"}, {"dusk_howler", "Dusk Howler"},
		{"fern_stalker", "Fern Stalker"},
	},
	"underground_tunnel": {
		{"tunnel_mole", "Tunnel Mole"}, {"stone_mole", "Stone Mole"}, {"cave_rat_alpha", "Cave Rat Alpha"},
		{"burrow_serpent", "Burrow Serpent"}, {"cave_spider", "Cave Spider"}, {"blind_bat_swarm", "Blind Bat Swarm"},
		{"shale_beetle", "Shale Beetle"}, {"tunnel_ghoul", "Tunnel Ghoul"}, {"mud_golemlet", "Mud Golemlet"},
		{"ore_maggot_swarm", "Ore Maggot Swarm"}, {"tremor_worm", "Tremor Worm"}, {"rust_mole", "Rust Mole"},
		{"echo_bat", "Echo Bat"}, {"cavern_newt", "Cavern Newt"}, {"dirt_wraith", "Dirt Wraith"},
		{"slag_crab", "Slag Crab"}, {"granite_tunneler", "Granite Tunneler"}, {"hollow_digger", "Hollow Digger"},
		{"sinkhole_leech", "Sinkhole Leech"},
	},
	"mountain_base": {
		{"ash_whelp", "Ash Whelp"}, {"ember_whelp", "Ember Whelp"}, {"cliff_harpy", "Cliff Harpy"},
		{"basalt_ram", "Basalt Ram"}, {"cinder_imp", "Cinder Imp"}, {"smoke_serpent", "Smoke Serpent"},
		{"crag_stalker", "Crag Stalker"}, {"magma_hound", "Magma Hound"}, {"ash_scorpid", "Ash Scorpid"},
		{"lava_lizard", "Lava Lizard"}, {"ember_hawk", "Ember Hawk"}, {"stone_gargoyle", "Stone Gargoyle"},
		{"ember_mantis", "Ember Mantis"}, {"soot_tiger", "Soot Tiger"}, {"cliff_wyvernling", "Cliff Wyvernling"},
		{"charred_boar", "Charred Boar"}, {"hotwind_spirit", "Hotwind Spirit"}, {"flint_ogrekin", "Flint Ogrekin"},
		{"blaze_wolf", "Blaze Wolf"},
	},
	"abandoned_mine": {
		{"mine_wraith", "Mine Wraith"}, {"pickaxe_ghoul", "Pickaxe Ghoul"}, {"ore_spider", "Ore Spider"},
		{"cursed_miner", "Cursed Miner"}, {"ash_bat_swarm", "Ash Bat Swarm"}, {"lantern_specter", "Lantern Specter"},
		{"slag_hound", "Slag Hound"}, {"vein_serpent", "Vein Serpent"}, {"iron_golemlet", "Iron Golemlet"},
		{"dust_imp", "Dust Imp"}, {"collapse_beetle", "Collapse Beetle"}, {"soot_dwarf", "Soot Dwarf"},
		{"chain_revenant", "Chain Revenant"}, {"coal_mimic", "Coal Mimic"}, {"crystal_lurker", "Crystal Lurker"},
		{"tunnel_fiend", "Tunnel Fiend"}, {"drill_mole", "Drill Mole"}, {"shaft_stalker", "Shaft Stalker"},
		{"blast_bomber", "Blast Bomber"},
	},
	"desolate_road": {
		{"goblin_raider", "Goblin Raider"}, {"goblin_archer", "Goblin Archer"}, {"goblin_skirmisher", "Goblin Skirmisher"},
		{"goblin_bruiser", "Goblin Bruiser"}, {"goblin_shaman", "Goblin Shaman"}, {"goblin_bombardier", "Goblin Bombardier"},
		{"goblin_wolf_rider", "Goblin Wolf Rider"}, {"goblin_pikeman", "Goblin Pikeman"}, {"goblin_duelist", "Goblin Duelist"},
		{"goblin_reaver", "Goblin Reaver"}, {"goblin_scout", "Goblin Scout"}, {"goblin_juggernaut", "Goblin Juggernaut"},
		{"goblin_pyro", "Goblin Pyro"}, {"goblin_hexer", "Goblin Hexer"}, {"goblin_banneret", "Goblin Banneret"},
		{"goblin_ambusher", "Goblin Ambusher"}, {"goblin_sapper", "Goblin Sapper"}, {"goblin_warlock", "Goblin Warlock"},
		{"goblin_veteran", "Goblin Veteran"},
	},
	"royal_yard": {
		{"corrupted_sentinel", "Corrupted Sentinel"}, {"corrupted_halberdier", "Corrupted Halberdier"},
		{"cursed_arbalist", "Cursed Arbalist"}, {"blood_guard", "Blood Guard"}, {"black_lancer", "Black Lancer"},
		{"iron_watcher", "Iron Watcher"}, {"shade_templar", "Shade Templar"}, {"hollow_paladin", "Hollow Paladin"},
		{"dusk_executioner", "Dusk Executioner"}, {"blight_captain", "Blight Captain"}, {"grave_warden", "Grave Warden"},
		{"scarlet_marshal", "Scarlet Marshal"}, {"ruin_champion", "Ruin Champion"}, {"void_squire", "Void Squire"},
		{"oathbreaker_knight", "Oathbreaker Knight"}, {"chain_knight", "Chain Knight"}, {"soul_bastion", "Soul Bastion"},
		{"fallen_duke", "Fallen Duke"}, {"dread_cavalier", "Dread Cavalier"},
	},
}

// AreaEncounterTables 各地点的遭遇表（基准敌人+变体，权重均为1）
var AreaEncounterTables = buildAreaEncounterTables()

// buildVariantEnemy 基于地区基准敌人派生平衡的普通敌人变体
func buildVariantEnemy(base *Enemy, id, name string, index int) *Enemy {
	loot := make([]WeightedDrop, len(base.LootTable))
	copy(loot, base.LootTable)
	return &Enemy{
		ID:         id,
		Name:       name,
		Category:   EnemyNormal,
		HP:         base.HP + index*2,
		Attack:     base.Attack + (index+2)/4,
		Defense:    base.Defense + (index+3)/6,
		XPReward:   base.XPReward + index*2,
		GoldReward: base.GoldReward + index*2,
		LootTable:  loot,
	}
}

// buildAreaEncounterTables 注册每个地点的变体敌人并生成遭遇表
func buildAreaEncounterTables() map[string][]WeightedEnemy {
	tables := make(map[string][]WeightedEnemy, len(baseEnemyByLocation))
	for locationID, baseID := range baseEnemyByLocation {
		base := Enemies[baseID]
		ids := []string{baseID}
		for i, v := range locationCreatureVariants[locationID] {
			Enemies[v.id] = buildVariantEnemy(base, v.id, v.name, i+1)
			ids = append(ids, v.id)
		}
		table := make([]WeightedEnemy, 0, len(ids))
		for _, id := range ids {
			table = append(table, WeightedEnemy{EnemyID: id, Weight: 1})
		}
		tables[locationID] = table
	}
	return tables
}

// RarityTables 稀有掉落加权表
var RarityTables = map[string][]WeightedDrop{
	"common_field": {
		{"moonbite_dagger", 16}, {"echo_plate", 14}, {"warding_totem", 12},
		{"obsidian_amulet", 8}, {"dragon_ring", 5},
		{"skill_cache_10", 5}, {"skill_cache_20", 3}, {"skill_cache_30", 1},
	},
	"interesting_gear": {
		{"crusty_sword", 15}, {"froghide_armor", 14}, {"obsidian_amulet", 10},
		{"moonbite_dagger", 9}, {"echo_plate", 9}, {"warding_totem", 8},
		{"dragon_ring", 4}, {"dragon_shield", 3},
	},
}

// EnemyName 根据ID返回敌人名称，未知ID返回原始ID
func EnemyName(enemyID string) string {
	if enemy, ok := Enemies[enemyID]; ok {
		return enemy.Name
	}
	return enemyID
}
