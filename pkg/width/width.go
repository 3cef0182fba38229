// ABOUTME: Display width and truncation for status-line text
// ABOUTME: Grapheme-aware via uniseg, cell widths via go-runewidth, ANSI sequences count as zero

package width

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Ellipsis is appended by Truncate when text is cut.
const Ellipsis = "…"

// VisibleWidth returns the number of terminal cells s occupies.
func VisibleWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	forEachCluster(StripANSI(s), func(cluster string, cw int) bool {
		w += cw
		return true
	})
	return w
}

// Truncate shortens s to at most maxWidth cells, ending it with Ellipsis
// when anything was removed. Escape sequences are kept so styling
// survives, and a reset is appended if any were present.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleWidth(s) <= maxWidth {
		return s
	}

	limit := maxWidth - runewidth.StringWidth(Ellipsis)
	var (
		b      strings.Builder
		used   int
		styled bool
		full   bool
	)
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			end := seqEnd(s, i)
			b.WriteString(s[i:end])
			styled = true
			i = end
			continue
		}
		next := strings.IndexByte(s[i:], '\x1b')
		if next < 0 {
			next = len(s) - i
		}
		if !full {
			forEachCluster(s[i:i+next], func(cluster string, cw int) bool {
				if used+cw > limit {
					full = true
					return false
				}
				b.WriteString(cluster)
				used += cw
				return true
			})
		}
		i += next
	}
	b.WriteString(Ellipsis)
	if styled {
		b.WriteString("\x1b[0m")
	}
	return b.String()
}

// PadRight appends spaces so s fills width cells.
func PadRight(s string, width int) string {
	if w := VisibleWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// forEachCluster calls fn with each grapheme cluster of s and its cell
// width until fn returns false.
func forEachCluster(s string, fn func(cluster string, width int) bool) {
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		r, _ := utf8.DecodeRuneInString(cluster)
		if !fn(cluster, runewidth.RuneWidth(r)) {
			return
		}
	}
}
