// ABOUTME: ANSI escape sequence scanning for width measurement
// ABOUTME: Recognizes CSI, OSC, string sequences (DCS/APC/PM) and two-byte ESC sequences

package width

import "strings"

// StripANSI removes all ANSI escape sequences from s.
func StripANSI(s string) string {
	if !strings.Contains(s, "\x1b") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = seqEnd(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// seqEnd returns the index just past the escape sequence starting at s[i].
// An unterminated sequence runs to the end of s.
func seqEnd(s string, i int) int {
	i++ // ESC
	if i >= len(s) {
		return i
	}
	switch s[i] {
	case '[':
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return i
	case ']', 'P', '_', '^':
		// terminated by BEL (OSC only) or ST
		osc := s[i] == ']'
		for i++; i < len(s); i++ {
			if osc && s[i] == '\x07' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	case '(', ')':
		return min(i+2, len(s))
	}
	return i + 1
}
