package views

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// Conversation shows one conversation: date-grouped messages, the peer's
// typing line and the composer.
type Conversation struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	typing   *tview.TextView
	composer *tview.InputField
	peerName string

	onText   func(text string)
	onSubmit func(text string)
	syncing  bool
}

func NewConversation(theme *ui.Theme) *Conversation {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.Border)
	messages.SetBackgroundColor(theme.Bg)
	messages.SetTextColor(theme.Fg)
	messages.SetTitleColor(theme.Title)

	typing := tview.NewTextView().SetDynamicColors(true)
	typing.SetBackgroundColor(theme.Bg)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.Border)
	composer.SetBackgroundColor(theme.Bg)
	composer.SetFieldBackgroundColor(theme.Bg)
	composer.SetFieldTextColor(theme.Fg)
	composer.SetLabelColor(theme.Key)
	composer.SetTitleColor(theme.Title)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(typing, 1, 0, false).
		AddItem(composer, 3, 0, false)

	c := &Conversation{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		typing:   typing,
		composer: composer,
	}
	composer.SetFocusFunc(func() { composer.SetBorderColor(theme.BorderFocus) })
	composer.SetBlurFunc(func() { composer.SetBorderColor(theme.Border) })
	composer.SetChangedFunc(func(text string) {
		if !c.syncing && c.onText != nil {
			c.onText(text)
		}
	})
	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSubmit != nil {
			c.onSubmit(composer.GetText())
		}
	})
	return c
}

func (c *Conversation) Name() string {
	if c.peerName != "" {
		return c.peerName
	}
	return "Conversa"
}

func (c *Conversation) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Escrever"},
		{Key: "j/k", Description: "Selecionar"},
		{Key: "r", Description: "Responder"},
		{Key: "e", Description: "Editar"},
		{Key: "x", Description: "Apagar"},
		{Key: "+", Description: "Reagir"},
		{Key: "g", Description: "Ir à resposta"},
		{Key: "F", Description: "Encaminhar"},
		{Key: "A", Description: "Anexar"},
		{Key: "R", Description: "Reenviar"},
		{Key: "d", Description: "Detalhes"},
		{Key: "Esc", Description: "Voltar"},
	}
}

// SetOnText registers the callback run on every composer keystroke.
func (c *Conversation) SetOnText(fn func(text string)) { c.onText = fn }

// SetOnSubmit registers the callback run when Enter is pressed.
func (c *Conversation) SetOnSubmit(fn func(text string)) { c.onSubmit = fn }

// Update renders v with selected highlighted.
func (c *Conversation) Update(v *rpc.ConversationView, selected string) {
	if v == nil {
		return
	}
	c.peerName = v.Peer.Name
	presence := c.theme.Offline
	if v.Peer.Status == "online" {
		presence = c.theme.Online
	}
	c.messages.SetTitle(fmt.Sprintf(" %s [%s]● %s[-] ", tview.Escape(v.Peer.Name), ui.Tag(presence), v.Peer.Status))

	c.messages.Clear()
	_, _ = fmt.Fprint(c.messages, RenderView(v, c.theme))
	if selected != "" {
		c.messages.Highlight(selected)
		c.messages.ScrollToHighlight()
	} else {
		c.messages.ScrollToEnd()
	}

	c.typing.Clear()
	if v.PeerStatus != "" {
		_, _ = fmt.Fprintf(c.typing, " [%s::i]%s %s...[-:-:-]", ui.Tag(c.theme.Typing), tview.Escape(v.Peer.Name), v.PeerStatus)
	}

	c.updateComposer(v.Composer)
}

func (c *Conversation) updateComposer(cs rpc.ComposerState) {
	c.composer.SetTitle(composerTitle(cs))
	want := cs.Text
	if cs.DraftKind != "" {
		want = cs.Caption
	}
	// Daemon state never overwrites what the user is typing.
	if c.composer.GetText() != want && !c.composer.HasFocus() {
		c.syncing = true
		c.composer.SetText(want)
		c.syncing = false
	}
}

// LoadComposer replaces the input with text, e.g. when an edit starts.
func (c *Conversation) LoadComposer(text string) {
	c.syncing = true
	c.composer.SetText(text)
	c.syncing = false
}

func composerTitle(cs rpc.ComposerState) string {
	var parts []string
	switch {
	case cs.EditingID != "":
		parts = append(parts, "editando")
	case cs.DraftKind != "":
		name := cs.DraftName
		if name == "" {
			name = cs.DraftKind
		}
		parts = append(parts, fmt.Sprintf("%s: %s (legenda)", cs.DraftKind, tview.Escape(name)))
	}
	if cs.ReplyTo != nil {
		parts = append(parts, "respondendo "+tview.Escape(sanitizeForTerminal(cs.ReplyTo.Label)))
	}
	if cs.Failed {
		parts = append(parts, "falha no envio (R)")
	}
	var aff []string
	if cs.Affordances.Attach {
		aff = append(aff, "anexo")
	}
	if cs.Affordances.Camera {
		aff = append(aff, "câmera")
	}
	if cs.Affordances.Mic {
		aff = append(aff, "microfone")
	}
	if cs.Affordances.Send {
		aff = append(aff, "enviar")
	}
	if len(aff) > 0 {
		parts = append(parts, strings.Join(aff, " "))
	}
	if len(parts) == 0 {
		return " Mensagem "
	}
	return " " + strings.Join(parts, " | ") + " "
}

// Input returns the composer field for focus management.
func (c *Conversation) Input() *tview.InputField { return c.composer }

// Messages returns the message pane for focus management.
func (c *Conversation) Messages() *tview.TextView { return c.messages }

// RenderView formats the grouped messages of v as tview markup. Each message
// is a region named after its id.
func RenderView(v *rpc.ConversationView, theme *ui.Theme) string {
	var sb strings.Builder
	for _, g := range v.Groups {
		fmt.Fprintf(&sb, "[%s]──── %s ────[-]\n\n", ui.Tag(theme.DateLabel), tview.Escape(g.Label))
		for _, m := range g.Messages {
			writeMessage(&sb, m, v.Peer.Name, v.Overlay.Highlighted == m.ID, theme)
		}
	}
	return sb.String()
}

func writeMessage(sb *strings.Builder, m rpc.Message, peerName string, flashed bool, theme *ui.Theme) {
	sender, color := peerName, theme.Peer
	if m.Mine {
		sender, color = "Você", theme.Mine
	}
	fmt.Fprintf(sb, `["%s"]`, m.ID)
	fmt.Fprintf(sb, "[%s::b]%s[-:-:-] [%s]%s[-]", ui.Tag(color), tview.Escape(sanitizeForTerminal(sender)), ui.Tag(theme.DateLabel), m.Time)
	if m.Mine && m.Read {
		fmt.Fprintf(sb, " [%s]✓✓[-]", ui.Tag(theme.Peer))
	}
	if flashed {
		fmt.Fprintf(sb, " [%s]◀[-]", ui.Tag(theme.Highlight))
	}
	sb.WriteString("\n")

	if m.Forwarded {
		fmt.Fprintf(sb, "[%s::i]↪ encaminhada de %s[-:-:-]\n", ui.Tag(theme.Quote), tview.Escape(sanitizeForTerminal(m.OriginalSenderName)))
	}
	if m.ReplyLabel != "" {
		fmt.Fprintf(sb, "[%s]│ %s[-]\n", ui.Tag(theme.Quote), tview.Escape(sanitizeForTerminal(m.ReplyLabel)))
	}
	switch m.Kind {
	case "texto", "":
		sb.WriteString(markupTags(m.Body))
		sb.WriteString("\n")
	default:
		name := m.Attachment
		if name == "" {
			name = m.Body
		}
		fmt.Fprintf(sb, "[%s]%s[-] %s\n", ui.Tag(theme.Key), tview.Escape("["+m.Kind+"]"), tview.Escape(name))
		if m.Caption != "" {
			sb.WriteString(markupTags(m.Caption))
			sb.WriteString("\n")
		}
	}
	if len(m.Reactions) > 0 {
		var rs []string
		for _, r := range m.Reactions {
			item := sanitizeForTerminal(r.Emoji)
			if r.Count > 1 {
				item += fmt.Sprintf(" %d", r.Count)
			}
			if r.Mine {
				item = "(" + item + ")"
			}
			rs = append(rs, item)
		}
		fmt.Fprintf(sb, "[%s]%s[-]\n", ui.Tag(theme.Reaction), tview.Escape(strings.Join(rs, "  ")))
	}
	sb.WriteString(`[""]` + "\n")
}
