package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a bit set of modifier keys
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"meta":    ModSuper,
	"win":     ModSuper,
}

// keyCode holds the platform identities of a key. darwin is a Carbon
// virtual key code, -1 when the key has none.
type keyCode struct {
	x11    string
	darwin int
}

var keys = map[string]keyCode{
	"space":      {"space", 49},
	"scrolllock": {"Scroll_Lock", 107}, // F14 on Apple keyboards
	"pause":      {"Pause", 113},       // F15 on Apple keyboards
	"insert":     {"Insert", 114},
	"home":       {"Home", 115},
	"end":        {"End", 119},
	"pageup":     {"Prior", 116},
	"pagedown":   {"Next", 121},
	"menu":       {"Menu", -1},
	"capslock":   {"Caps_Lock", 57},
	"tab":        {"Tab", 48},
	"escape":     {"Escape", 53},
	"return":     {"Return", 36},
	"f1":         {"F1", 122},
	"f2":         {"F2", 120},
	"f3":         {"F3", 99},
	"f4":         {"F4", 118},
	"f5":         {"F5", 96},
	"f6":         {"F6", 97},
	"f7":         {"F7", 98},
	"f8":         {"F8", 100},
	"f9":         {"F9", 101},
	"f10":        {"F10", 109},
	"f11":        {"F11", 103},
	"f12":        {"F12", 111},
	"f13":        {"F13", 105},
	"f14":        {"F14", 107},
	"f15":        {"F15", 113},
	"a":          {"a", 0},
	"b":          {"b", 11},
	"c":          {"c", 8},
	"d":          {"d", 2},
	"e":          {"e", 14},
	"f":          {"f", 3},
	"g":          {"g", 5},
	"h":          {"h", 4},
	"i":          {"i", 34},
	"j":          {"j", 38},
	"k":          {"k", 40},
	"l":          {"l", 37},
	"m":          {"m", 46},
	"n":          {"n", 45},
	"o":          {"o", 31},
	"p":          {"p", 35},
	"q":          {"q", 12},
	"r":          {"r", 15},
	"s":          {"s", 1},
	"t":          {"t", 17},
	"u":          {"u", 32},
	"v":          {"v", 9},
	"w":          {"w", 13},
	"x":          {"x", 7},
	"y":          {"y", 16},
	"z":          {"z", 6},
	"0":          {"0", 29},
	"1":          {"1", 18},
	"2":          {"2", 19},
	"3":          {"3", 20},
	"4":          {"4", 21},
	"5":          {"5", 23},
	"6":          {"6", 22},
	"7":          {"7", 26},
	"8":          {"8", 28},
	"9":          {"9", 25},
}

var keyAliases = map[string]string{
	"scroll": "scrolllock",
	"esc":    "escape",
	"enter":  "return",
	"ins":    "insert",
	"pgup":   "pageup",
	"pgdn":   "pagedown",
	"break":  "pause",
}

// Accelerator is a parsed hotkey such as "Alt+Space" or "scroll lock"
type Accelerator struct {
	Mods Modifier
	Key  string
}

// ParseAccelerator parses "+"-separated modifiers followed by one key.
// Names are case-insensitive and may contain spaces or underscores.
func ParseAccelerator(s string) (Accelerator, error) {
	var acc Accelerator

	parts := strings.Split(s, "+")
	for i, part := range parts {
		name := normalize(part)
		if name == "" {
			return Accelerator{}, fmt.Errorf("invalid hotkey %q: empty key name", s)
		}

		if i < len(parts)-1 {
			mod, ok := modifierNames[name]
			if !ok {
				return Accelerator{}, fmt.Errorf("invalid hotkey %q: unknown modifier %q", s, part)
			}
			acc.Mods |= mod
			continue
		}

		if alias, ok := keyAliases[name]; ok {
			name = alias
		}
		if _, ok := keys[name]; !ok {
			return Accelerator{}, fmt.Errorf("invalid hotkey %q: unknown key %q", s, part)
		}
		acc.Key = name
	}

	return acc, nil
}

func (a Accelerator) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{{ModCtrl, "Ctrl"}, {ModAlt, "Alt"}, {ModShift, "Shift"}, {ModSuper, "Super"}} {
		if a.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, keys[a.Key].x11), "+")
}

func (a Accelerator) x11Keysym() string {
	return keys[a.Key].x11
}

func (a Accelerator) darwinKeyCode() (int, bool) {
	code := keys[a.Key].darwin
	return code, code >= 0
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}
