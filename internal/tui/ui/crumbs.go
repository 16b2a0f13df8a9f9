package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs shows the page stack as a breadcrumb trail.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.Bg)
	return &Crumbs{TextView: tv, theme: theme}
}

// Update renders labels, the last one highlighted.
func (c *Crumbs) Update(labels []string) {
	c.Clear()
	parts := make([]string, len(labels))
	for i, l := range labels {
		bg, attr := c.theme.CrumbBg, ""
		if i == len(labels)-1 {
			bg, attr = c.theme.CrumbActiveBg, "b"
		}
		parts[i] = fmt.Sprintf("[%s:%s:%s] %s [-:-:-]", Tag(c.theme.CrumbFg), Tag(bg), attr, tview.Escape(l))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}
