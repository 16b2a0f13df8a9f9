package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo is the header's wordmark.
type Logo struct {
	*tview.TextView
}

func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetBorderPadding(1, 0, 1, 0)
	title, fg := Tag(theme.Title), Tag(theme.Fg)
	_, _ = fmt.Fprintf(tv,
		"[%s::b]╔═╗╔═╗╔╗╔╦  ╦[-:-:-]\n"+
			"[%s::b]║  ║ ║║║║╚╗╔╝[-:-:-]\n"+
			"[%s::b]╚═╝╚═╝╝╚╝ ╚╝ [-:-:-]\n"+
			"[%s]conversa[-:-:-]",
		title, title, title, fg)
	return &Logo{TextView: tv}
}
