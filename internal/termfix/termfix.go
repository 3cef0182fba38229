// ABOUTME: lipgloss renderers that never query the terminal for its background or colors
// ABOUTME: A query reply would arrive on stdin while raw mode is on and be decoded as keystrokes

package termfix

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// The default renderer sends OSC 11 the first time a style asks for
	// the background; pinning it here keeps the sync.Once from firing.
	lipgloss.SetHasDarkBackground(true)
}

// Renderer returns a renderer for w with a dark background and the given
// color profile set up front, so styling never writes a query.
func Renderer(w io.Writer, profile termenv.Profile) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetHasDarkBackground(true)
	r.SetColorProfile(profile)
	return r
}

// EnvProfile picks a color profile from TERM, COLORTERM and NO_COLOR
// for f without talking to the terminal.
func EnvProfile(f *os.File) termenv.Profile {
	return termenv.NewOutput(f).EnvColorProfile()
}
