package engine

import "strings"

// commandAliases 输入别名展开表
var commandAliases = map[string]string{
	"n":      "move north",
	"s":      "move south",
	"e":      "move east",
	"w":      "move west",
	"u":      "move up",
	"d":      "move down",
	"north":  "move north",
	"south":  "move south",
	"east":   "move east",
	"west":   "move west",
	"up":     "move up",
	"down":   "move down",
	"farm":   "hunt",
	"grind":  "hunt",
	"i":      "inventory",
	"inv":    "inventory",
	"q":      "quit",
	"exit":   "quit",
	"attack": "fight",
	"atk":    "fight",
}

// ParseCommand 解析用户输入为(命令, 参数)
func ParseCommand(raw string) (string, []string) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return "", nil
	}

	if expanded, ok := commandAliases[text]; ok {
		text = expanded
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}
