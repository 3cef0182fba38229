// ABOUTME: Lookup resolves human key names like "ctrl+q" or "alt+up" to Key values.
// ABOUTME: Names lists the canonical spellings, used for configuration and suggestions.

package key

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// namedKeys maps lower-case names to the key types they denote.
var namedKeys = map[string]KeyType{
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"tab":       KeyTab,
	"backtab":   KeyBackTab,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"insert":    KeyInsert,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pagedown":  KeyPageDown,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"space":     KeyRune,
}

// Lookup parses a key name: optional "ctrl+", "alt+" and "shift+"
// prefixes followed by a named key ("up", "f5", "esc") or a single
// character. The result is the Key the reader decodes for the bytes a
// terminal sends for that combination, so ctrl+h is Ctrl+Backspace and
// shift+tab is BackTab. Combinations no terminal byte sequence carries,
// such as shift+a or alt+esc, are rejected.
func Lookup(name string) (Key, error) {
	parts := strings.Split(strings.TrimSpace(name), "+")
	base := parts[len(parts)-1]
	if base == "" && len(parts) > 1 {
		// "ctrl++" or a trailing "+"
		base = "+"
		parts = parts[:len(parts)-1]
	}

	var ctrl, alt, shift bool
	for _, m := range parts[:len(parts)-1] {
		switch strings.ToLower(m) {
		case "ctrl":
			ctrl = true
		case "alt", "meta":
			alt = true
		case "shift":
			shift = true
		default:
			return Key{}, fmt.Errorf("key %q: unknown modifier %q", name, m)
		}
	}

	k, err := lookupBase(base)
	if err != nil {
		return Key{}, fmt.Errorf("key %q: %w", name, err)
	}

	if ctrl && k.Type == KeyRune {
		r := k.Rune
		if r == ' ' || r >= 'a' && r <= 'z' || r >= '@' && r <= '_' {
			k = parseSingleByte(byte(r) & 0x1f)
			ctrl = false
		}
	}
	if shift && k.Type == KeyTab {
		k = Key{Type: KeyBackTab}
	}
	k.Ctrl = k.Ctrl || ctrl
	k.Alt = alt
	k.Shift = k.Shift || shift

	raw, ok := encode(k)
	if !ok {
		return Key{}, fmt.Errorf("key %q: no terminal sends this combination", name)
	}
	decoded := ParseKey(raw)
	if !decoded.Matches(k) {
		return Key{}, fmt.Errorf("key %q: terminals deliver it as %s", name, decoded)
	}
	return decoded, nil
}

// tildeCodes is the CSI <n> ~ number sent for keys without a letter final.
var tildeCodes = map[KeyType]int{
	KeyInsert:   2,
	KeyDelete:   3,
	KeyPageUp:   5,
	KeyPageDown: 6,
	KeyF5:       15,
	KeyF6:       17,
	KeyF7:       18,
	KeyF8:       19,
	KeyF9:       20,
	KeyF10:      21,
	KeyF11:      23,
	KeyF12:      24,
}

// letterFinals is the CSI final byte for cursor keys and F1..F4.
var letterFinals = map[KeyType]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
	KeyF1:    'P',
	KeyF2:    'Q',
	KeyF3:    'R',
	KeyF4:    'S',
}

// encode returns the bytes an xterm-style terminal sends for k, and
// false when k has no encoding.
func encode(k Key) (string, bool) {
	mod := 1
	if k.Shift {
		mod += modShift
	}
	if k.Alt {
		mod += modAlt
	}
	if k.Ctrl {
		mod += modCtrl
	}

	if final, ok := letterFinals[k.Type]; ok {
		switch {
		case mod > 1:
			return fmt.Sprintf("\x1b[1;%d%c", mod, final), true
		case k.Type >= KeyF1 && k.Type <= KeyF4:
			return "\x1bO" + string(final), true
		}
		return "\x1b[" + string(final), true
	}
	if n, ok := tildeCodes[k.Type]; ok {
		if mod > 1 {
			return fmt.Sprintf("\x1b[%d;%d~", n, mod), true
		}
		return fmt.Sprintf("\x1b[%d~", n), true
	}
	if k.Type == KeyBackTab {
		if mod > 1+modShift {
			return fmt.Sprintf("\x1b[1;%dZ", mod), true
		}
		return "\x1b[Z", true
	}

	// Everything else is one byte or character, optionally behind ESC for Alt.
	if k.Shift {
		return "", false
	}
	var s string
	switch k.Type {
	case KeyRune:
		if k.Ctrl {
			return "", false
		}
		s = string(k.Rune)
		if k.Alt && (k.Rune > 0x7e || k.Rune == '[' || k.Rune == 'O') {
			// ESC [ and ESC O open CSI and SS3 sequences.
			return "", false
		}
	case KeyEnter, KeyTab, KeyEscape:
		if k.Ctrl || (k.Alt && k.Type == KeyEscape) {
			return "", false
		}
		s = map[KeyType]string{KeyEnter: "\r", KeyTab: "\t", KeyEscape: "\x1b"}[k.Type]
	case KeyBackspace:
		s = "\x7f"
		if k.Ctrl {
			s = "\x08"
		}
	case KeyCtrl:
		s = string([]byte{byte(k.Rune) & 0x1f})
	default:
		b, ok := ctrlByte(k.Type)
		if !ok {
			return "", false
		}
		s = string([]byte{b})
	}
	if k.Alt {
		s = "\x1b" + s
	}
	return s, true
}

// ctrlByte reverses ctrlKeys.
func ctrlByte(t KeyType) (byte, bool) {
	for b, kt := range ctrlKeys {
		if kt == t {
			return b, true
		}
	}
	return 0, false
}

func lookupBase(base string) (Key, error) {
	lower := strings.ToLower(base)
	if t, ok := namedKeys[lower]; ok {
		if lower == "space" {
			return Key{Type: KeyRune, Rune: ' '}, nil
		}
		if t == KeyBackTab {
			return Key{Type: t, Shift: true}, nil
		}
		return Key{Type: t}, nil
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 12 {
			return Key{Type: KeyF1 + KeyType(n-1)}, nil
		}
	}
	if r, size := utf8.DecodeRuneInString(base); size == len(base) && r != utf8.RuneError && r >= 0x20 {
		return Key{Type: KeyRune, Rune: r}, nil
	}
	return Key{}, fmt.Errorf("unknown key name %q", base)
}

// Names returns the canonical key names Lookup accepts, excluding
// single characters: named keys, f1..f12 and ctrl+a..ctrl+z.
func Names() []string {
	names := make([]string, 0, len(namedKeys)+12+26)
	for n := range namedKeys {
		names = append(names, n)
	}
	for i := 1; i <= 12; i++ {
		names = append(names, fmt.Sprintf("f%d", i))
	}
	for c := 'a'; c <= 'z'; c++ {
		names = append(names, "ctrl+"+string(c))
	}
	slices.Sort(names)
	return names
}
