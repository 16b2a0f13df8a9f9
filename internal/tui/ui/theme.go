package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Theme holds the palette of every TUI component.
type Theme struct {
	Bg, Fg              tcell.Color
	Border, BorderFocus tcell.Color
	Title, Counter      tcell.Color
	HeaderFg, HeaderBg  tcell.Color
	CursorFg, CursorBg  tcell.Color
	CrumbFg             tcell.Color
	CrumbActiveBg       tcell.Color
	CrumbBg             tcell.Color
	Key                 tcell.Color

	// Conversation colors.
	Mine, Peer tcell.Color
	DateLabel  tcell.Color
	Reaction   tcell.Color
	Quote      tcell.Color
	Typing     tcell.Color
	Online     tcell.Color
	Offline    tcell.Color
	Highlight  tcell.Color
	Info, Warn tcell.Color
	Err        tcell.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Bg:            tcell.ColorBlack,
		Fg:            tcell.ColorCadetBlue,
		Border:        tcell.ColorDodgerBlue,
		BorderFocus:   tcell.ColorLightSkyBlue,
		Title:         tcell.ColorFuchsia,
		Counter:       tcell.ColorPapayaWhip,
		HeaderFg:      tcell.ColorWhite,
		HeaderBg:      tcell.ColorBlack,
		CursorFg:      tcell.ColorBlack,
		CursorBg:      tcell.ColorAqua,
		CrumbFg:       tcell.ColorBlack,
		CrumbActiveBg: tcell.ColorOrange,
		CrumbBg:       tcell.ColorAqua,
		Key:           tcell.ColorDodgerBlue,
		Mine:          tcell.ColorMediumSeaGreen,
		Peer:          tcell.ColorLightSkyBlue,
		DateLabel:     tcell.ColorGray,
		Reaction:      tcell.ColorGold,
		Quote:         tcell.ColorDarkGray,
		Typing:        tcell.ColorLightGreen,
		Online:        tcell.ColorLime,
		Offline:       tcell.ColorGray,
		Highlight:     tcell.ColorYellow,
		Info:          tcell.ColorNavajoWhite,
		Warn:          tcell.ColorOrange,
		Err:           tcell.ColorOrangeRed,
	}
}

// Tag returns c as a tview color tag value.
func Tag(c tcell.Color) string {
	for name, val := range tcell.ColorNames {
		if val == c {
			return name
		}
	}
	return fmt.Sprintf("#%06x", c.Hex())
}
