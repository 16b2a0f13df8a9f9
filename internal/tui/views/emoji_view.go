package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// EmojiView searches the emoji catalog and picks a reaction.
type EmojiView struct {
	*tview.Flex
	theme   *ui.Theme
	input   *tview.InputField
	results *tview.Table
	items   []rpc.Emoji
	onQuery func(query string)
	onPick  func(emoji string)
}

func NewEmojiView(theme *ui.Theme) *EmojiView {
	input := tview.NewInputField().
		SetLabel(" Emoji: ").
		SetFieldWidth(0)
	input.SetBackgroundColor(theme.Bg)
	input.SetFieldBackgroundColor(theme.Bg)
	input.SetFieldTextColor(theme.Fg)
	input.SetLabelColor(theme.Key)

	results := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false)
	results.SetBorder(true)
	results.SetBorderColor(theme.Border)
	results.SetBackgroundColor(theme.Bg)
	results.SetTitle(" Reações ")
	results.SetTitleColor(theme.Title)
	results.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.CursorFg).
		Background(theme.CursorBg))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(input, 1, 0, true).
		AddItem(results, 0, 1, false)

	ev := &EmojiView{Flex: flex, theme: theme, input: input, results: results}
	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && ev.onQuery != nil {
			ev.onQuery(input.GetText())
		}
	})
	results.SetSelectedFunc(func(row, _ int) {
		if row >= 0 && row < len(ev.items) && ev.onPick != nil {
			ev.onPick(ev.items[row].Char)
		}
	})
	return ev
}

func (ev *EmojiView) Name() string { return "Emoji" }

func (ev *EmojiView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Buscar / reagir"},
		{Key: "Tab", Description: "Resultados"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (ev *EmojiView) SetOnQuery(fn func(query string)) { ev.onQuery = fn }
func (ev *EmojiView) SetOnPick(fn func(emoji string))  { ev.onPick = fn }

// Reset clears the query.
func (ev *EmojiView) Reset() {
	ev.input.SetText("")
}

// Update lists the quick reactions first, then the search results.
func (ev *EmojiView) Update(resp *rpc.SearchEmojiResponse) {
	ev.results.Clear()
	ev.items = ev.items[:0]
	for _, q := range resp.Quick {
		ev.items = append(ev.items, rpc.Emoji{Char: q, Name: "rápida"})
	}
	ev.items = append(ev.items, resp.Results...)
	for i, e := range ev.items {
		ev.results.SetCell(i, 0, tview.NewTableCell(" "+sanitizeForTerminal(e.Char)).SetTextColor(ev.theme.Reaction))
		ev.results.SetCell(i, 1, tview.NewTableCell(" "+tview.Escape(e.Name)).SetExpansion(1).SetTextColor(ev.theme.Fg))
	}
	ev.results.ScrollToBeginning()
	ev.results.Select(0, 0)
}

func (ev *EmojiView) Input() *tview.InputField { return ev.input }
func (ev *EmojiView) Results() *tview.Table    { return ev.results }
