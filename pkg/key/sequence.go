// ABOUTME: Escape sequence decoding for CSI and SS3 key codes, with xterm modifier parameters.
// ABOUTME: sequenceStatus tells the reader whether a partial sequence needs more bytes.

package key

import (
	"strconv"
	"strings"
)

// csiLetterKeys maps CSI and SS3 final letters to key types.
var csiLetterKeys = map[byte]KeyType{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
}

// csiTildeKeys maps the number in CSI <n> ~ to key types. Home and End
// have two codes each depending on the terminal.
var csiTildeKeys = map[int]KeyType{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	11: KeyF1,
	12: KeyF2,
	13: KeyF3,
	14: KeyF4,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// xterm modifier parameter bits (encoded as bits+1 on the wire).
const (
	modShift = 1 << iota
	modAlt
	modCtrl
)

// parseEscapeSequence decodes ESC-prefixed data longer than one byte.
func parseEscapeSequence(data string) Key {
	switch {
	case data[1] == '[' && len(data) >= 3:
		return parseCSI(data[2:])
	case data[1] == 'O' && len(data) == 3:
		if t, ok := csiLetterKeys[data[2]]; ok {
			return Key{Type: t}
		}
		return Key{Type: KeyUnknown}
	case len(data) == 2 && data[1] == 0x7f:
		return Key{Type: KeyBackspace, Alt: true}
	case len(data) == 2 && data[1] >= 0x20 && data[1] <= 0x7e:
		// Alt+key: ESC followed by a single printable byte
		return Key{Type: KeyRune, Rune: rune(data[1]), Alt: true}
	case len(data) == 2 && data[1] < 0x20 && data[1] != 0x1b:
		// Alt with a control key: ESC followed by a C0 byte (Alt+Enter, Ctrl+Alt+X)
		k := parseSingleByte(data[1])
		k.Alt = true
		return k
	}
	return Key{Type: KeyUnknown}
}

// parseCSI decodes the body of ESC [ ... (parameters and final byte).
func parseCSI(body string) Key {
	// Linux console function keys: ESC [ [ A .. ESC [ [ E
	if len(body) == 2 && body[0] == '[' && body[1] >= 'A' && body[1] <= 'E' {
		return Key{Type: KeyF1 + KeyType(body[1]-'A')}
	}

	final := body[len(body)-1]
	params := strings.Split(body[:len(body)-1], ";")

	var k Key
	switch {
	case final == '~':
		n, err := strconv.Atoi(params[0])
		if err != nil {
			return Key{Type: KeyUnknown}
		}
		t, ok := csiTildeKeys[n]
		if !ok {
			return Key{Type: KeyUnknown}
		}
		k = Key{Type: t}
	case final == 'Z':
		k = Key{Type: KeyBackTab, Shift: true}
	default:
		t, ok := csiLetterKeys[final]
		if !ok {
			return Key{Type: KeyUnknown}
		}
		// Unmodified letter keys carry no parameters; modified ones use "1;<mod>".
		if len(params) == 1 && params[0] != "" {
			return Key{Type: KeyUnknown}
		}
		k = Key{Type: t}
	}

	if len(params) >= 2 {
		m, err := strconv.Atoi(params[1])
		if err != nil || m < 1 {
			return Key{Type: KeyUnknown}
		}
		bits := m - 1
		k.Shift = k.Shift || bits&modShift != 0
		k.Alt = bits&modAlt != 0
		k.Ctrl = bits&modCtrl != 0
	}
	return k
}

// sequenceStatus inspects a partial escape sequence starting with ESC.
// complete means seq is a whole sequence; valid=false means no further
// bytes can make it one.
func sequenceStatus(seq []byte) (complete, valid bool) {
	if len(seq) < 2 {
		return false, true
	}

	switch b := seq[1]; {
	case b == '[':
		return csiStatus(seq[2:])
	case b == 'O':
		if len(seq) == 2 {
			return false, true
		}
		ok := len(seq) == 3 && seq[2] >= 0x40 && seq[2] <= 0x7e
		return ok, ok
	case b >= 0x20 && b <= 0x7f, b < 0x20 && b != 0x1b:
		// Alt+key is always exactly two bytes.
		return len(seq) == 2, len(seq) == 2
	}
	return false, false
}

// csiStatus checks the bytes after ESC [.
func csiStatus(body []byte) (complete, valid bool) {
	if len(body) == 0 {
		return false, true
	}
	if body[0] == '[' {
		switch len(body) {
		case 1:
			return false, true
		case 2:
			return true, true
		}
		return false, false
	}

	for i, b := range body {
		switch {
		case b >= 0x20 && b <= 0x3f:
			// parameter or intermediate byte
		case b >= 0x40 && b <= 0x7e:
			return i == len(body)-1, i == len(body)-1
		default:
			return false, false
		}
	}
	return false, true
}
