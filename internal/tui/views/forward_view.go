package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// ForwardView picks the recipients of a forwarded message.
type ForwardView struct {
	*tview.Table
	theme    *ui.Theme
	contacts []rpc.Contact
	checked  map[string]bool
	onDone   func(recipients []string)
}

func NewForwardView(theme *ui.Theme) *ForwardView {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	table.SetBorder(true)
	table.SetBorderColor(theme.Border)
	table.SetBackgroundColor(theme.Bg)
	table.SetTitleColor(theme.Title)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.CursorFg).
		Background(theme.CursorBg))

	fv := &ForwardView{Table: table, theme: theme, checked: make(map[string]bool)}
	table.SetSelectedFunc(func(row, _ int) {
		if row >= 0 && row < len(fv.contacts) {
			fv.Toggle(fv.contacts[row].ID)
		}
	})
	table.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 's' && fv.onDone != nil {
			fv.onDone(fv.Recipients())
			return nil
		}
		return ev
	})
	return fv
}

func (fv *ForwardView) Name() string { return "Encaminhar" }

func (fv *ForwardView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Marcar"},
		{Key: "s", Description: "Enviar"},
		{Key: "Esc", Description: "Cancelar"},
	}
}

// SetOnDone registers the callback run when the user confirms.
func (fv *ForwardView) SetOnDone(fn func(recipients []string)) { fv.onDone = fn }

// Update lists candidates and clears previous marks.
func (fv *ForwardView) Update(contacts []rpc.Contact) {
	fv.contacts = contacts
	fv.checked = make(map[string]bool)
	fv.render()
	fv.Select(0, 0)
}

// Toggle marks or unmarks id.
func (fv *ForwardView) Toggle(id string) {
	fv.checked[id] = !fv.checked[id]
	fv.render()
}

// Recipients returns the marked ids in list order.
func (fv *ForwardView) Recipients() []string {
	var out []string
	for _, c := range fv.contacts {
		if fv.checked[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

func (fv *ForwardView) render() {
	fv.Clear()
	for i, c := range fv.contacts {
		mark := "[ ]"
		if fv.checked[c.ID] {
			mark = "[x]"
		}
		fv.SetCell(i, 0, tview.NewTableCell(" "+tview.Escape(mark)).SetTextColor(fv.theme.Key))
		fv.SetCell(i, 1, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(c.Name))).SetExpansion(1).SetTextColor(fv.theme.Fg))
	}
	fv.SetTitle(fmt.Sprintf(" Encaminhar para (%d marcados) ", len(fv.Recipients())))
}
