package content

// ItemType 物品类型
type ItemType string

const (
	ItemTypeWeapon     ItemType = "weapon"
	ItemTypeArmor      ItemType = "armor"
	ItemTypeShield     ItemType = "shield"
	ItemTypeAccessory  ItemType = "accessory"
	ItemTypeAura       ItemType = "aura"
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeKey        ItemType = "key"
	ItemTypeQuest      ItemType = "quest"
	ItemTypeBoon       ItemType = "boon"
)

// Item 物品定义
type Item struct {
	ID              string
	Name            string
	Type            ItemType
	Description     string
	AttackBonus     int
	DefenseBonus    int
	MaxHPBonus      int
	HealAmount      int
	SkillPointBonus int
	Value           int
}

// EquipmentSlotByType 物品类型到装备槽位的映射
var EquipmentSlotByType = map[ItemType]string{
	ItemTypeWeapon:    "weapon",
	ItemTypeArmor:     "armor",
	ItemTypeShield:    "shield",
	ItemTypeAccessory: "accessory",
	ItemTypeAura:      "aura",
}

// EquipmentSlots 装备槽位（固定顺序）
var EquipmentSlots = []string{"weapon", "armor", "shield", "accessory", "aura"}

// Items 全部物品目录，按ID索引
var Items = map[string]*Item{
	"rusted_blade": {
		ID: "rusted_blade", Name: "Rusted Blade", Type: ItemTypeWeapon,
		Description: "A chipped sword that still holds an edge.",
		AttackBonus: 1, Value: 8,
	},
	"patched_coat": {
		ID: "patched_coat", Name: "Patched Coat", Type: ItemTypeArmor,
		Description:  "Threadbare but serviceable cloth armor.",
		DefenseBonus: 1, MaxHPBonus: 2, Value: 8,
	},
	"minor_potion": {
		ID: "minor_potion", Name: "Minor Potion", Type: ItemTypeConsumable,
		Description: "Restores a small amount of health.",
		HealAmount:  18, Value: 10,
	},
	"sturdy_bandage": {
		ID: "sturdy_bandage", Name: "Sturdy Bandage", Type: ItemTypeConsumable,
		Description: "A field dressing used between skirmishes.",
		HealAmount:  12, Value: 6,
	},
	"crusty_sword": {
		ID: "crusty_sword", Name: "Crusty Sword", Type: ItemTypeWeapon,
		Description: "Rust and swamp slime hide surprising sharpness.",
		AttackBonus: 4, Value: 35,
	},
	"froghide_armor": {
		ID: "froghide_armor", Name: "Froghide Armor", Type: ItemTypeArmor,
		Description:  "Thick hide that shrugs off glancing blows.",
		DefenseBonus: 3, MaxHPBonus: 6, Value: 32,
	},
	"crusty_key": {
		ID: "crusty_key", Name: "Crusty Key", Type: ItemTypeKey,
		Description: "An old key caked in swamp grit.",
	},
	"obsidian_scimitar": {
		ID: "obsidian_scimitar", Name: "Obsidian Scimitar", Type: ItemTypeWeapon,
		Description: "A curved black blade forged for fast strikes.",
		AttackBonus: 7, Value: 80,
	},
	"dragon_armor": {
		ID: "dragon_armor", Name: "Dragon Armor", Type: ItemTypeArmor,
		Description:  "Scaled plate that channels heat into protection.",
		DefenseBonus: 6, MaxHPBonus: 12, Value: 85,
	},
	"obsidian_amulet": {
		ID: "obsidian_amulet", Name: "Obsidian Amulet", Type: ItemTypeAccessory,
		Description: "A volcanic charm that hardens your resolve.",
		AttackBonus: 2, DefenseBonus: 1, Value: 55,
	},
	"mysterious_ring": {
		ID: "mysterious_ring", Name: "Mysterious Ring", Type: ItemTypeAccessory,
		Description: "Warm to the touch. It hums when danger peaks.",
		AttackBonus: 1, DefenseBonus: 1, Value: 60,
	},
	"dragon_ring": {
		ID: "dragon_ring", Name: "Dragon Ring", Type: ItemTypeAccessory,
		Description: "A ring carved from horn and fused with ash.",
		AttackBonus: 3, Value: 95,
	},
	"dragon_shield": {
		ID: "dragon_shield", Name: "Dragon Shield", Type: ItemTypeShield,
		Description:  "A heavy shield from the ogre's stolen hoard.",
		DefenseBonus: 5, MaxHPBonus: 8, Value: 90,
	},
	"hoard_treasure": {
		ID: "hoard_treasure", Name: "Hoard of Treasure", Type: ItemTypeQuest,
		Description: "An overstuffed sack of coins and relics.",
		Value:       200,
	},
	"goblin_riddle": {
		ID: "goblin_riddle", Name: "Goblin Riddle", Type: ItemTypeQuest,
		Description: "A scribbled riddle rumored to break black magic.",
	},
	"makor_soul": {
		ID: "makor_soul", Name: "Makor's Soul", Type: ItemTypeAura,
		Description: "A volatile aura: savage offense, brittle defense.",
		AttackBonus: 9, DefenseBonus: -4,
	},
	"vial_of_tears": {
		ID: "vial_of_tears", Name: "Vial of Tears", Type: ItemTypeQuest,
		Description: "Silvery tears able to strip corruption from Elle.",
	},
	"moonbite_dagger": {
		ID: "moonbite_dagger", Name: "Moonbite Dagger", Type: ItemTypeWeapon,
		Description: "A rare dagger that punishes overconfident foes.",
		AttackBonus: 5, Value: 50,
	},
	"echo_plate": {
		ID: "echo_plate", Name: "Echo Plate", Type: ItemTypeArmor,
		Description:  "A rare chestplate that dampens impact.",
		DefenseBonus: 4, MaxHPBonus: 10, Value: 60,
	},
	"warding_totem": {
		ID: "warding_totem", Name: "Warding Totem", Type: ItemTypeAura,
		Description:  "A rare aura that thickens your guard.",
		DefenseBonus: 4, Value: 75,
	},
	"skill_cache_10": {
		ID: "skill_cache_10", Name: "Skill Cache (+10)", Type: ItemTypeBoon,
		Description:     "Instantly grants 10 skill points.",
		SkillPointBonus: 10,
	},
	"skill_cache_20": {
		ID: "skill_cache_20", Name: "Skill Cache (+20)", Type: ItemTypeBoon,
		Description:     "Instantly grants 20 skill points.",
		SkillPointBonus: 20,
	},
	"skill_cache_30": {
		ID: "skill_cache_30", Name: "Skill Cache (+30)", Type: ItemTypeBoon,
		Description:     "Instantly grants 30 skill points.",
		SkillPointBonus: 30,
	},
}

// ItemName 根据ID返回物品名称，未知ID返回原始ID
func ItemName(itemID string) string {
	if item, ok := Items[itemID]; ok {
		return item.Name
	}
	return itemID
}
