// ABOUTME: Keybinding resolution: action names mapped to key names parsed with key.Lookup
// ABOUTME: Unknown actions and key names get a fuzzy "did you mean" suggestion

package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/rawtty/pkg/key"
)

// Action is something the key viewer does in response to a bound key.
type Action string

const (
	ActionQuit  Action = "quit"
	ActionClear Action = "clear"
	ActionTrace Action = "toggle_trace"
)

// actions lists every bindable action.
var actions = []Action{ActionQuit, ActionClear, ActionTrace}

func defaultKeybindings() map[string][]string {
	return map[string][]string{
		string(ActionQuit):  {"ctrl+q"},
		string(ActionClear): {"ctrl+l"},
		string(ActionTrace): {"ctrl+t"},
	}
}

// Bindings maps resolved keys to actions.
type Bindings struct {
	keys    []key.Key
	actions []Action
}

// Action returns the action bound to k, if any.
func (b Bindings) Action(k key.Key) (Action, bool) {
	for i, bk := range b.keys {
		if bk.Matches(k) {
			return b.actions[i], true
		}
	}
	return "", false
}

// Keys returns the keys bound to a, in configuration order.
func (b Bindings) Keys(a Action) []key.Key {
	var out []key.Key
	for i, ba := range b.actions {
		if ba == a {
			out = append(out, b.keys[i])
		}
	}
	return out
}

// Bindings resolves the configured key names. Every action must keep at
// least one key for quit, and a key may be bound to one action only.
func (s *Settings) Bindings() (Bindings, error) {
	names := make([]string, 0, len(s.Keybindings))
	for a := range s.Keybindings {
		names = append(names, a)
	}
	sort.Strings(names)

	var (
		b    Bindings
		errs []error
	)
	for _, name := range names {
		a := Action(name)
		if !slices.Contains(actions, a) {
			errs = append(errs, fmt.Errorf("keybindings: unknown action %q%s", name, suggest(name, actionNames())))
			continue
		}
		for _, kn := range s.Keybindings[name] {
			k, err := key.Lookup(kn)
			if err != nil {
				errs = append(errs, fmt.Errorf("keybindings: %s: %w%s", name, err, suggest(kn, key.Names())))
				continue
			}
			if prev, ok := b.Action(k); ok {
				errs = append(errs, fmt.Errorf("keybindings: %q bound to both %s and %s", kn, prev, a))
				continue
			}
			b.keys = append(b.keys, k)
			b.actions = append(b.actions, a)
		}
	}

	if len(errs) == 0 && len(b.Keys(ActionQuit)) == 0 {
		errs = append(errs, errors.New("keybindings: quit has no key"))
	}
	if len(errs) > 0 {
		return Bindings{}, errors.Join(errs...)
	}
	return b, nil
}

func actionNames() []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

// suggest returns `, did you mean "x"?` for the closest candidate, or ""
// when nothing matches.
func suggest(name string, candidates []string) string {
	matches := fuzzy.Find(name, candidates)
	if len(matches) == 0 {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", matches[0].Str)
}
