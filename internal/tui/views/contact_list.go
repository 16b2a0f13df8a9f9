package views

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactList is the root page: every contact with presence and unread
// badge.
type ContactList struct {
	*tview.Table
	theme    *ui.Theme
	contacts []rpc.Contact
}

func NewContactList(theme *ui.Theme) *ContactList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.Border)
	table.SetBackgroundColor(theme.Bg)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.CursorFg).
		Background(theme.CursorBg))
	table.SetTitle(" Contatos ")
	table.SetTitleColor(theme.Title)
	return &ContactList{Table: table, theme: theme}
}

func (cl *ContactList) Name() string { return "Contatos" }

func (cl *ContactList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Abrir"},
		{Key: "/", Description: "Buscar"},
		{Key: "o", Description: "Online"},
		{Key: "f", Description: "Offline"},
		{Key: "a", Description: "Todos"},
		{Key: "S", Description: "Compartilhar"},
	}
}

// Update renders contacts under the given status filter and search text.
func (cl *ContactList) Update(contacts []rpc.Contact, status, search string) {
	cl.contacts = contacts
	cl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NOME", 1},
		{" STATUS", 0},
		{" NÃO LIDAS", 0},
	}
	for col, h := range headers {
		cl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(cl.theme.HeaderFg).
			SetBackgroundColor(cl.theme.HeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	for i, c := range contacts {
		row := i + 1
		name := c.Name
		if name == "" {
			name = c.ID
		}
		presence := cl.theme.Offline
		if c.Status == "online" {
			presence = cl.theme.Online
		}
		unread := ""
		if c.Unread > 0 {
			unread = fmt.Sprintf("(%d)", c.Unread)
		}
		cl.SetCell(row, 0, tview.NewTableCell(" "+tview.Escape(sanitizeForTerminal(name))).SetExpansion(1).SetTextColor(cl.theme.Fg))
		cl.SetCell(row, 1, tview.NewTableCell(" ● "+c.Status).SetTextColor(presence))
		cl.SetCell(row, 2, tview.NewTableCell(unread).SetTextColor(cl.theme.Counter).SetAlign(tview.AlignRight))
	}

	title := fmt.Sprintf(" Contatos [%s](%d)[-] %s ", ui.Tag(cl.theme.Counter), len(contacts), status)
	if search != "" {
		title += fmt.Sprintf("/%s ", tview.Escape(search))
	}
	cl.SetTitle(title)
}

// Selected returns the id of the highlighted contact.
func (cl *ContactList) Selected() string {
	row, _ := cl.GetSelection()
	if row < 1 || row > len(cl.contacts) {
		return ""
	}
	return cl.contacts[row-1].ID
}
