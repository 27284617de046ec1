package hotkeys

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

var namedKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"enter":  hotkey.KeyReturn,
	"return": hotkey.KeyReturn,
	"tab":    hotkey.KeyTab,
	"esc":    hotkey.KeyEscape,
	"escape": hotkey.KeyEscape,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
}

var letterKeys = map[rune]hotkey.Key{
	'a': hotkey.KeyA, 'b': hotkey.KeyB, 'c': hotkey.KeyC, 'd': hotkey.KeyD,
	'e': hotkey.KeyE, 'f': hotkey.KeyF, 'g': hotkey.KeyG, 'h': hotkey.KeyH,
	'i': hotkey.KeyI, 'j': hotkey.KeyJ, 'k': hotkey.KeyK, 'l': hotkey.KeyL,
	'm': hotkey.KeyM, 'n': hotkey.KeyN, 'o': hotkey.KeyO, 'p': hotkey.KeyP,
	'q': hotkey.KeyQ, 'r': hotkey.KeyR, 's': hotkey.KeyS, 't': hotkey.KeyT,
	'u': hotkey.KeyU, 'v': hotkey.KeyV, 'w': hotkey.KeyW, 'x': hotkey.KeyX,
	'y': hotkey.KeyY, 'z': hotkey.KeyZ,
	'0': hotkey.Key0, '1': hotkey.Key1, '2': hotkey.Key2, '3': hotkey.Key3,
	'4': hotkey.Key4, '5': hotkey.Key5, '6': hotkey.Key6, '7': hotkey.Key7,
	'8': hotkey.Key8, '9': hotkey.Key9,
}

// Parse accepts specs like "ctrl+shift+m" and returns the modifier set and
// key for OS-level registration.
func Parse(spec string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(spec, "+")
	for i := range parts {
		parts[i] = strings.TrimSpace(strings.ToLower(parts[i]))
	}
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return nil, 0, fmt.Errorf("empty hotkey spec %q", spec)
	}

	var mods []hotkey.Modifier
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierNames[p]
		if !ok {
			return nil, 0, fmt.Errorf("unknown modifier %q in %q", p, spec)
		}
		mods = append(mods, mod)
	}

	token := parts[len(parts)-1]
	if key, ok := namedKeys[token]; ok {
		return mods, key, nil
	}
	if len(token) == 1 {
		if key, ok := letterKeys[rune(token[0])]; ok {
			return mods, key, nil
		}
	}
	return nil, 0, fmt.Errorf("unsupported key %q in %q", token, spec)
}
