package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// Resolver maps key strings to actions.
type Resolver struct {
	bindings []Binding
	byKey    map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys (for help)
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: bindings,
		byKey:    make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			r.byKey[k] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(k string) Action {
	return r.byKey[k]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Help returns the bindings of a context as bubbles key bindings, for
// rendering with the bubbles help component.
func (r *Resolver) Help(context string) []key.Binding {
	var out []key.Binding
	for _, b := range r.bindings {
		if b.Context != context {
			continue
		}
		out = append(out, key.NewBinding(
			key.WithKeys(b.Keys...),
			key.WithHelp(displayKey(b.Keys[0]), b.Description),
		))
	}
	return out
}

// displayKey names keys that render as blanks.
func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

// dedupe removes duplicate strings from a slice, keeping the first.
func dedupe(s []string) []string {
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !slices.Contains(result, v) {
			result = append(result, v)
		}
	}
	return result
}
