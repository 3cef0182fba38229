// ABOUTME: lipgloss styles for the key viewer, bound to one renderer
// ABOUTME: Adaptive colors resolve against the renderer's pinned background

package keyview

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title  lipgloss.Style
	key    lipgloss.Style
	raw    lipgloss.Style
	dim    lipgloss.Style
	action lipgloss.Style
	status lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#9D8CFF"}),
		key:    r.NewStyle().Bold(true),
		raw:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1F6F8B", Dark: "#7FDBFF"}),
		dim:    r.NewStyle().Faint(true),
		action: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD166"}),
		status: r.NewStyle().Reverse(true),
	}
}
