// ABOUTME: Defines the Key type and ParseKey for raw terminal keyboard input.
// ABOUTME: Handles printable runes, UTF-8, control bytes and delegates escape sequences to sequence.go.

package key

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key is one decoded keyboard input event. Raw holds the exact bytes
// that produced it.
type Key struct {
	Type  KeyType
	Rune  rune // printable characters, and the letter of a generic Ctrl key
	Alt   bool
	Ctrl  bool
	Shift bool
	Raw   string
}

// KeyType enumerates the kinds of key events the reader produces.
type KeyType int

const (
	KeyRune      KeyType = iota // Printable character
	KeyEnter                    // Enter / Return (CR)
	KeyTab                      // Tab
	KeyBackTab                  // Shift+Tab
	KeyBackspace                // Backspace (DEL 0x7F, or Ctrl+H)
	KeyDelete                   // Delete key
	KeyInsert                   // Insert key
	KeyUp                       // Arrow up
	KeyDown                     // Arrow down
	KeyLeft                     // Arrow left
	KeyRight                    // Arrow right
	KeyHome                     // Home
	KeyEnd                      // End
	KeyPageUp                   // Page Up
	KeyPageDown                 // Page Down
	KeyEscape                   // Escape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlA // Ctrl+A
	KeyCtrlC // Ctrl+C
	KeyCtrlD // Ctrl+D
	KeyCtrlE // Ctrl+E
	KeyCtrlF // Ctrl+F
	KeyCtrlG // Ctrl+G
	KeyCtrlK // Ctrl+K
	KeyCtrlL // Ctrl+L
	KeyCtrlO // Ctrl+O
	KeyCtrlQ // Ctrl+Q
	KeyCtrlR // Ctrl+R
	KeyCtrlS // Ctrl+S
	KeyCtrlU // Ctrl+U
	KeyCtrlW // Ctrl+W
	KeyCtrlZ // Ctrl+Z
	KeyCtrl  // Other control byte; Rune holds the letter or symbol
	KeyUnknown
)

// ctrlKeys maps control bytes with a named shortcut to their Key.
var ctrlKeys = map[byte]KeyType{
	0x01: KeyCtrlA,
	0x03: KeyCtrlC,
	0x04: KeyCtrlD,
	0x05: KeyCtrlE,
	0x06: KeyCtrlF,
	0x07: KeyCtrlG,
	0x0b: KeyCtrlK,
	0x0c: KeyCtrlL,
	0x0f: KeyCtrlO,
	0x11: KeyCtrlQ,
	0x12: KeyCtrlR,
	0x13: KeyCtrlS,
	0x15: KeyCtrlU,
	0x17: KeyCtrlW,
	0x1a: KeyCtrlZ,
}

// ParseKey decodes one complete key's worth of raw input: a single
// byte, a UTF-8 encoded rune or an escape sequence.
func ParseKey(data string) Key {
	var k Key
	switch {
	case len(data) == 0:
		k = Key{Type: KeyUnknown}
	case len(data) == 1:
		k = parseSingleByte(data[0])
	case data[0] == 0x1b:
		k = parseEscapeSequence(data)
	default:
		r, size := utf8.DecodeRuneInString(data)
		if r == utf8.RuneError || size != len(data) {
			k = Key{Type: KeyUnknown}
		} else {
			k = Key{Type: KeyRune, Rune: r}
		}
	}
	k.Raw = data
	return k
}

// parseSingleByte handles a single-byte input (ASCII or control character).
func parseSingleByte(b byte) Key {
	switch {
	case b == 0x0d:
		return Key{Type: KeyEnter}
	case b == 0x09:
		return Key{Type: KeyTab}
	case b == 0x7f:
		return Key{Type: KeyBackspace}
	case b == 0x08:
		return Key{Type: KeyBackspace, Ctrl: true}
	case b == 0x1b:
		return Key{Type: KeyEscape}
	case b >= 0x20 && b <= 0x7e:
		return Key{Type: KeyRune, Rune: rune(b)}
	case b >= 0x80:
		return Key{Type: KeyUnknown}
	}

	if t, ok := ctrlKeys[b]; ok {
		return Key{Type: t, Ctrl: true}
	}
	// 0x00 is Ctrl+@, 0x01..0x1a Ctrl+A..Z, 0x1c..0x1f Ctrl+\ ] ^ _
	r := rune(b) + '@'
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return Key{Type: KeyCtrl, Ctrl: true, Rune: r}
}

// Matches reports whether k and o are the same key, ignoring Raw.
func (k Key) Matches(o Key) bool {
	return k.Type == o.Type && k.Rune == o.Rune && k.Alt == o.Alt && k.Ctrl == o.Ctrl && k.Shift == o.Shift
}

// keyTypeNames provides human-readable labels for each KeyType.
var keyTypeNames = map[KeyType]string{
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackTab:   "BackTab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyInsert:    "Insert",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyEscape:    "Escape",
	KeyF1:        "F1",
	KeyF2:        "F2",
	KeyF3:        "F3",
	KeyF4:        "F4",
	KeyF5:        "F5",
	KeyF6:        "F6",
	KeyF7:        "F7",
	KeyF8:        "F8",
	KeyF9:        "F9",
	KeyF10:       "F10",
	KeyF11:       "F11",
	KeyF12:       "F12",
	KeyCtrlA:     "Ctrl+A",
	KeyCtrlC:     "Ctrl+C",
	KeyCtrlD:     "Ctrl+D",
	KeyCtrlE:     "Ctrl+E",
	KeyCtrlF:     "Ctrl+F",
	KeyCtrlG:     "Ctrl+G",
	KeyCtrlK:     "Ctrl+K",
	KeyCtrlL:     "Ctrl+L",
	KeyCtrlO:     "Ctrl+O",
	KeyCtrlQ:     "Ctrl+Q",
	KeyCtrlR:     "Ctrl+R",
	KeyCtrlS:     "Ctrl+S",
	KeyCtrlU:     "Ctrl+U",
	KeyCtrlW:     "Ctrl+W",
	KeyCtrlZ:     "Ctrl+Z",
	KeyUnknown:   "Unknown",
}

// String returns a human-readable representation of the Key for debug display.
func (k Key) String() string {
	mods := k
	var base string
	switch {
	case k.Type == KeyRune:
		base = string(k.Rune)
	case k.Type == KeyCtrl:
		base = "Ctrl+" + strings.ToUpper(string(k.Rune))
		mods.Ctrl = false
	case k.Type >= KeyCtrlA && k.Type <= KeyCtrlZ:
		base = keyTypeNames[k.Type]
		mods.Ctrl = false
	case k.Type == KeyBackspace:
		// Ctrl+H arrives as Backspace on many terminals.
		base = "Backspace"
		mods.Ctrl = false
	case k.Type == KeyBackTab:
		base = "BackTab"
		mods.Shift = false
	default:
		name, ok := keyTypeNames[k.Type]
		if !ok {
			return "Unknown"
		}
		base = name
	}
	return formatModifiers(mods, base)
}

// formatModifiers prefixes s with the modifiers held on k.
func formatModifiers(k Key, s string) string {
	if k.Shift {
		s = "Shift+" + s
	}
	if k.Alt {
		s = fmt.Sprintf("Alt+%s", s)
	}
	if k.Ctrl {
		s = "Ctrl+" + s
	}
	return s
}
