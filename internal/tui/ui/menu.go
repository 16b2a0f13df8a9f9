package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Menu lists the shortcuts of the current page, one per line.
type Menu struct {
	*tview.TextView
	theme *Theme
}

func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetBorderPadding(0, 0, 2, 0)
	return &Menu{TextView: tv, theme: theme}
}

// Update replaces the listed hints.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	key := Tag(m.theme.Key)
	for _, h := range hints {
		_, _ = fmt.Fprintf(m, "[%s::b]<%s>[-:-:-] %s\n", key, tview.Escape(h.Key), h.Description)
	}
}
