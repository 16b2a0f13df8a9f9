// Package keys maps key events to actions per page.
package keys

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/tui/ui"
)

// GlobalScope holds bindings active on every page.
const GlobalScope = ""

// Action is one key binding.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Handler     func()
}

// Matches reports whether ev triggers a.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds bindings by page, in registration order.
type Registry struct {
	scopes map[string][]*Action
}

func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string][]*Action)}
}

// Bind registers a on page. An earlier binding of the same key on that page
// is replaced.
func (r *Registry) Bind(page string, a *Action) {
	list := r.scopes[page]
	for i, old := range list {
		if old.Key == a.Key && old.Rune == a.Rune {
			list[i] = a
			return
		}
	}
	r.scopes[page] = append(list, a)
}

// Rune is shorthand for binding a printable key.
func (r *Registry) Rune(page string, ch rune, desc string, fn func()) {
	r.Bind(page, &Action{Key: tcell.KeyRune, Rune: ch, Label: string(ch), Description: desc, Handler: fn})
}

// Hints lists the labelled bindings of page followed by the global ones.
func (r *Registry) Hints(page string) []ui.MenuHint {
	var out []ui.MenuHint
	for _, scope := range []string{page, GlobalScope} {
		for _, a := range r.scopes[scope] {
			if a.Label != "" {
				out = append(out, ui.MenuHint{Key: a.Label, Description: a.Description})
			}
		}
		if page == GlobalScope {
			break
		}
	}
	return out
}

// Handle runs the first binding of page, then of the global scope, that
// matches ev. It reports whether one ran.
func (r *Registry) Handle(page string, ev *tcell.EventKey) bool {
	for _, scope := range []string{page, GlobalScope} {
		for _, a := range r.scopes[scope] {
			if a.Matches(ev) {
				a.Handler()
				return true
			}
		}
	}
	return false
}
