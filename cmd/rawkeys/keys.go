// ABOUTME: Renders the active key bindings as a Markdown table through glamour
// ABOUTME: Runs before raw mode; a fixed style avoids glamour's background query

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mauromedda/rawtty/internal/config"
)

// keyTable builds the Markdown listing of actions and their keys.
func keyTable(b config.Bindings) string {
	var sb strings.Builder
	sb.WriteString("# rawkeys bindings\n\n")
	sb.WriteString("| Action | Keys |\n|---|---|\n")
	for _, a := range []config.Action{config.ActionQuit, config.ActionClear, config.ActionTrace} {
		var names []string
		for _, k := range b.Keys(a) {
			names = append(names, "`"+k.String()+"`")
		}
		if len(names) == 0 {
			names = []string{"(unbound)"}
		}
		fmt.Fprintf(&sb, "| %s | %s |\n", a, strings.Join(names, ", "))
	}
	sb.WriteString("\nBind keys under `keybindings:` in `~/.rawkeys/config.yaml` or `.rawkeys/config.yaml`, ")
	sb.WriteString("using names such as `ctrl+q`, `alt+x`, `shift+up` or `f5`. ")
	sb.WriteString("Combinations a terminal cannot send, such as `shift+a`, are rejected.\n")
	return sb.String()
}

// renderKeys writes the binding table to w. style is a glamour standard
// style name ("dark", "light", "notty").
func renderKeys(w io.Writer, b config.Bindings, style string, wrap int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(keyTable(b))
	if err != nil {
		return fmt.Errorf("rendering key table: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
