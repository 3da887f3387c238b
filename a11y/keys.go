package a11y

import "fmt"

// Modifier is an X11 modifier mask.
type Modifier uint32

const (
	ModShift   Modifier = 1 << 0
	ModControl Modifier = 1 << 2
	ModAlt     Modifier = 1 << 3
)

// Key is a keysym plus the modifiers held while it is pressed.
type Key struct {
	Modifiers Modifier
	Keysym    uint32
}

// Special keys, by X11 keysym.
var (
	Enter     = Key{Keysym: 0xff0d}
	Escape    = Key{Keysym: 0xff1b}
	Tab       = Key{Keysym: 0xff09}
	Backspace = Key{Keysym: 0xff08}
	Delete    = Key{Keysym: 0xffff}
	Home      = Key{Keysym: 0xff50}
	End       = Key{Keysym: 0xff57}
	Up        = Key{Keysym: 0xff52}
	Down      = Key{Keysym: 0xff54}
	Left      = Key{Keysym: 0xff51}
	Right     = Key{Keysym: 0xff53}
)

// Ctrl returns the key for Ctrl+<c>. Latin-1 keysyms equal their code point.
func Ctrl(c byte) Key {
	return Key{Modifiers: ModControl, Keysym: uint32(c)}
}

// Alt returns the key for Alt+<c>.
func Alt(c byte) Key {
	return Key{Modifiers: ModAlt, Keysym: uint32(c)}
}

func (k Key) String() string {
	var s string
	if k.Modifiers&ModControl != 0 {
		s += "<Control>"
	}
	if k.Modifiers&ModAlt != 0 {
		s += "<Alt>"
	}
	if k.Modifiers&ModShift != 0 {
		s += "<Shift>"
	}
	if k.Keysym >= 0x20 && k.Keysym < 0x7f {
		return s + string(rune(k.Keysym))
	}
	return s + fmt.Sprintf("0x%04x", k.Keysym)
}
