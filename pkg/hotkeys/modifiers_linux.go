//go:build linux

package hotkeys

import "golang.design/x/hotkey"

var modifierNames = map[string]hotkey.Modifier{
	"ctrl":    hotkey.ModCtrl,
	"control": hotkey.ModCtrl,
	"shift":   hotkey.ModShift,
	"alt":     hotkey.Mod1,
	"win":     hotkey.Mod4,
	"super":   hotkey.Mod4,
	"meta":    hotkey.Mod4,
}
