// Package tui is the terminal client of a conversa daemon.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/conversa/internal/tui/keys"
	"github.com/matheus3301/conversa/internal/tui/model"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/matheus3301/conversa/internal/tui/views"
	"github.com/rivo/tview"
)

// Page names.
const (
	pageContacts = "contatos"
	pageConv     = "conversa"
	pageInfo     = "detalhes"
	pageHelp     = "ajuda"
	pageEmoji    = "emoji"
	pageShare    = "compartilhar"
	pageForward  = "encaminhar"
	pageProfile  = "configuracoes"
)

const (
	callTimeout  = 10 * time.Second
	statusEvery  = 5 * time.Second
	watchBackoff = 2 * time.Second
	promptHeight = 3
	headerHeight = 7
)

// App is the TUI shell: header, breadcrumbs, prompt, pages and flash bar.
type App struct {
	app       *tview.Application
	theme     *ui.Theme
	vm        *model.ViewModel
	keys      *keys.Registry
	flash     *ui.Flash
	workspace string

	root     *tview.Flex
	pages    *ui.Pages
	info     *ui.WorkspaceInfo
	menu     *ui.Menu
	crumbs   *ui.Crumbs
	prompt   *ui.Prompt
	flashBar *ui.FlashBar

	contacts *views.ContactList
	conv     *views.Conversation
	details  *views.ContactInfo
	help     *views.HelpView
	emoji    *views.EmojiView
	share    *views.ShareView
	forward  *views.ForwardView
	profile  *views.ProfileView
	comps    map[string]ui.Component

	typed chan string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the TUI over d for the named workspace.
func NewApp(d model.Daemon, workspace string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()
	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		vm:        model.NewViewModel(d),
		keys:      keys.NewRegistry(),
		flash:     ui.NewFlash(),
		workspace: workspace,
		pages:     ui.NewPages(),
		info:      ui.NewWorkspaceInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		prompt:    ui.NewPrompt(theme),
		flashBar:  ui.NewFlashBar(theme),
		contacts:  views.NewContactList(theme),
		conv:      views.NewConversation(theme),
		details:   views.NewContactInfo(theme),
		help:      views.NewHelpView(theme),
		emoji:     views.NewEmojiView(theme),
		share:     views.NewShareView(theme),
		forward:   views.NewForwardView(theme),
		profile:   views.NewProfileView(theme),
		typed:     make(chan string, 1),
		ctx:       ctx,
		cancel:    cancel,
	}
	a.comps = map[string]ui.Component{
		pageContacts: a.contacts,
		pageConv:     a.conv,
		pageInfo:     a.details,
		pageHelp:     a.help,
		pageEmoji:    a.emoji,
		pageShare:    a.share,
		pageForward:  a.forward,
		pageProfile:  a.profile,
	}
	a.setupLayout()
	a.setupBindings()
	a.setupCallbacks()
	a.pages.Reset(pageContacts)
	return a
}

func (a *App) setupLayout() {
	header := tview.NewFlex().
		AddItem(a.info, 36, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 16, 0, false)

	a.pages.AddPage(pageContacts, a.contacts, true, false)
	a.pages.AddPage(pageConv, a.conv, true, false)
	a.pages.AddPage(pageInfo, a.details, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)
	a.pages.AddPage(pageEmoji, a.emoji, true, false)
	a.pages.AddPage(pageShare, a.share, true, false)
	a.pages.AddPage(pageForward, a.forward, true, false)
	a.pages.AddPage(pageProfile, a.profile, true, false)
	a.pages.SetOnChange(a.pageChanged)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.flashBar, 1, 0, false)
	a.root.SetBackgroundColor(a.theme.Bg)
	a.app.SetRoot(a.root, true)
}

func (a *App) pageChanged(stack []string) {
	labels := make([]string, len(stack))
	for i, name := range stack {
		labels[i] = a.comps[name].Name()
	}
	a.crumbs.Update(labels)
	top := stack[len(stack)-1]
	a.menu.Update(append(a.comps[top].Hints(), a.keys.Hints(keys.GlobalScope)...))
	a.app.SetFocus(a.focusTarget(top))
}

func (a *App) focusTarget(page string) tview.Primitive {
	switch page {
	case pageConv:
		return a.conv.Messages()
	case pageEmoji:
		return a.emoji.Input()
	case pageProfile:
		return a.profile
	default:
		return a.pages
	}
}

func (a *App) setupBindings() {
	r := a.keys
	r.Rune(keys.GlobalScope, ':', "Comando", func() { a.showPrompt(ui.PromptCommand) })
	r.Rune(keys.GlobalScope, '?', "Ajuda", func() { a.pages.Push(pageHelp) })

	r.Rune(pageContacts, '/', "Buscar", func() { a.showPrompt(ui.PromptFilter) })
	r.Rune(pageContacts, 'o', "Online", func() { a.setFilter("online") })
	r.Rune(pageContacts, 'f', "Offline", func() { a.setFilter("offline") })
	r.Rune(pageContacts, 'a', "Todos", func() { a.setFilter("todos") })
	r.Rune(pageContacts, 'S', "Compartilhar", a.showShare)
	r.Rune(pageContacts, 'P', "Perfil", a.showProfile)
	r.Rune(pageContacts, 'q', "Sair", a.Stop)

	r.Rune(pageConv, 'i', "Escrever", func() { a.app.SetFocus(a.conv.Input()) })
	r.Rune(pageConv, 'j', "Próxima", func() { a.vm.SelectNext(1) })
	r.Rune(pageConv, 'k', "Anterior", func() { a.vm.SelectNext(-1) })
	r.Bind(pageConv, &keys.Action{Key: tcell.KeyDown, Handler: func() { a.vm.SelectNext(1) }})
	r.Bind(pageConv, &keys.Action{Key: tcell.KeyUp, Handler: func() { a.vm.SelectNext(-1) }})
	r.Rune(pageConv, 'r', "Responder", func() {
		a.call(func(ctx context.Context) error {
			if err := a.vm.ReplyToSelected(ctx); err != nil {
				return err
			}
			a.app.QueueUpdateDraw(func() { a.app.SetFocus(a.conv.Input()) })
			return nil
		})
	})
	r.Rune(pageConv, 'e', "Editar", a.editSelected)
	r.Rune(pageConv, 'x', "Apagar", func() {
		a.call(func(ctx context.Context) error {
			ok, err := a.vm.DeleteSelected(ctx)
			if err == nil && !ok {
				a.flash.Warn("só é possível apagar as próprias mensagens")
			}
			return err
		})
	})
	r.Rune(pageConv, '+', "Reagir", func() { a.showEmoji("") })
	r.Rune(pageConv, 'g', "Ir à resposta", func() {
		a.call(func(ctx context.Context) error {
			ok, err := a.vm.JumpToReply(ctx)
			if err == nil && !ok {
				a.flash.Warn("mensagem respondida não está carregada")
			}
			return err
		})
	})
	r.Rune(pageConv, 'F', "Encaminhar", a.showForward)
	r.Rune(pageConv, 'A', "Anexar", func() { a.showPrompt(ui.PromptAttach) })
	r.Rune(pageConv, 'c', "Descartar", func() { a.call(a.vm.CancelDraft) })
	r.Rune(pageConv, 'R', "Reenviar", func() {
		a.call(func(ctx context.Context) error {
			ok, err := a.vm.Retry(ctx)
			if err == nil && !ok {
				a.flash.Info("nenhum envio com falha")
			}
			if ok {
				a.app.QueueUpdateDraw(func() { a.conv.LoadComposer(a.composerText()) })
			}
			return err
		})
	})
	r.Rune(pageConv, 'd', "Detalhes", a.showDetails)
}

func (a *App) setupCallbacks() {
	a.contacts.SetSelectedFunc(func(_, _ int) {
		if id := a.contacts.Selected(); id != "" {
			a.open(id)
		}
	})

	a.conv.SetOnText(func(text string) {
		// Keep only the latest input.
		select {
		case <-a.typed:
		default:
		}
		a.typed <- text
	})
	a.conv.SetOnSubmit(func(text string) {
		a.call(func(ctx context.Context) error {
			if _, err := a.vm.Submit(ctx, text); err != nil {
				return fmt.Errorf("envio: %w", err)
			}
			a.app.QueueUpdateDraw(func() { a.conv.LoadComposer("") })
			return nil
		})
	})

	a.emoji.SetOnQuery(func(q string) { a.loadEmoji(q) })
	a.emoji.SetOnPick(func(e string) {
		a.pages.Pop()
		a.call(func(ctx context.Context) error {
			_, err := a.vm.ReactSelected(ctx, e)
			return err
		})
	})

	a.forward.SetOnDone(func(recipients []string) {
		if len(recipients) == 0 {
			a.flash.Warn("marque ao menos um contato")
			return
		}
		a.pages.Pop()
		a.call(func(ctx context.Context) error {
			resp, err := a.vm.ForwardSelected(ctx, recipients)
			if err != nil {
				return err
			}
			a.flash.Info(fmt.Sprintf("encaminhada para %d contato(s)", len(resp.MessageIDs)))
			if resp.Navigate != "" {
				return a.openPeer(ctx, resp.Navigate)
			}
			return nil
		})
	})

	a.profile.SetOnSave(func(f views.ProfileForm) {
		if f.Name == "" {
			a.flash.Warn("o nome não pode ficar vazio")
			return
		}
		a.call(func(ctx context.Context) error {
			if _, err := a.vm.UpdateProfile(ctx, f.Name, f.Status, f.Avatar); err != nil {
				return fmt.Errorf("erro ao atualizar o perfil: %w", err)
			}
			a.flash.Info("Perfil atualizado com sucesso!")
			a.app.QueueUpdateDraw(func() { a.pages.Pop() })
			return nil
		})
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.vm.SetContactFilter("", strings.TrimSpace(text))
			a.call(a.vm.LoadContacts)
		case ui.PromptAttach:
			path := strings.TrimSpace(text)
			if path == "" {
				return
			}
			a.call(func(ctx context.Context) error {
				if err := a.vm.Attach(ctx, path); err != nil {
					return err
				}
				a.app.QueueUpdateDraw(func() { a.app.SetFocus(a.conv.Input()) })
				return nil
			})
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.app.SetInputCapture(a.handleKey)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if ev.Key() == tcell.KeyCtrlC {
		a.Stop()
		return nil
	}
	page := a.pages.Current()
	focused := a.app.GetFocus()

	if a.prompt.HasFocus() {
		return ev
	}

	if focused == a.conv.Input() {
		if ev.Key() == tcell.KeyEscape {
			a.app.SetFocus(a.conv.Messages())
			return nil
		}
		return ev
	}
	if focused == a.emoji.Input() {
		switch ev.Key() {
		case tcell.KeyEscape:
			a.pages.Pop()
			return nil
		case tcell.KeyTab:
			a.app.SetFocus(a.emoji.Results())
			return nil
		}
		return ev
	}

	if page == pageProfile {
		if ev.Key() == tcell.KeyEscape {
			a.pages.Pop()
			return nil
		}
		return ev
	}

	if ev.Key() == tcell.KeyEscape {
		a.back()
		return nil
	}
	if a.keys.Handle(page, ev) {
		return nil
	}
	return ev
}

func (a *App) back() {
	switch a.pages.Current() {
	case pageContacts:
		a.vm.SetContactFilter("", "")
		a.call(a.vm.LoadContacts)
	case pageConv:
		a.pages.Pop()
		go a.vm.CloseActive(a.ctx)
	default:
		a.pages.Pop()
	}
}

func (a *App) showPrompt(mode ui.PromptMode) {
	a.prompt.Activate(mode)
	a.root.ResizeItem(a.prompt, promptHeight, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) hidePrompt() {
	a.root.ResizeItem(a.prompt, 0, 0)
	a.app.SetFocus(a.focusTarget(a.pages.Current()))
}

func (a *App) runCommand(cmd Command) {
	if err := cmd.Validate(); err != nil {
		a.flash.Err(err)
		return
	}
	switch cmd.Kind {
	case CmdContact:
		id, ok := a.findContact(cmd.Args)
		if !ok {
			a.flash.Warn("contato não encontrado: " + cmd.Args)
			return
		}
		a.open(id)
	case CmdFilter:
		a.setFilter(cmd.Filter())
	case CmdShare:
		a.showShare()
	case CmdProfile:
		a.showProfile()
	case CmdMedia:
		a.showDetails()
	case CmdEmoji:
		a.showEmoji(cmd.Args)
	case CmdHelp:
		a.pages.Push(pageHelp)
	case CmdQuit:
		a.Stop()
	}
}

func (a *App) findContact(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, c := range a.vm.Contacts() {
		if strings.ToLower(c.ID) == q {
			return c.ID, true
		}
	}
	for _, c := range a.vm.Contacts() {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return c.ID, true
		}
	}
	return "", false
}

func (a *App) setFilter(status string) {
	_, search := a.vm.ContactFilter()
	a.vm.SetContactFilter(status, search)
	a.call(a.vm.LoadContacts)
}

func (a *App) open(peer string) {
	a.call(func(ctx context.Context) error { return a.openPeer(ctx, peer) })
}

// openPeer opens peer and shows its conversation over the contact list.
func (a *App) openPeer(ctx context.Context, peer string) error {
	if err := a.vm.Open(ctx, peer); err != nil {
		return err
	}
	a.app.QueueUpdateDraw(func() {
		a.conv.LoadComposer(a.composerText())
		a.pages.Reset(pageContacts)
		a.pages.Push(pageConv)
	})
	return nil
}

func (a *App) editSelected() {
	a.call(func(ctx context.Context) error {
		ok, err := a.vm.EditSelected(ctx)
		if err != nil {
			return err
		}
		if !ok {
			a.flash.Warn("só é possível editar as próprias mensagens")
			return nil
		}
		a.app.QueueUpdateDraw(func() {
			a.conv.LoadComposer(a.composerText())
			a.app.SetFocus(a.conv.Input())
		})
		return nil
	})
}

func (a *App) composerText() string {
	cs := a.vm.Composer()
	if cs.DraftKind != "" {
		return cs.Caption
	}
	return cs.Text
}

func (a *App) showEmoji(query string) {
	if a.vm.Active() == "" {
		a.flash.Warn(model.ErrNoConversation.Error())
		return
	}
	a.emoji.Reset()
	a.emoji.Input().SetText(query)
	a.pages.Push(pageEmoji)
	a.loadEmoji(query)
}

func (a *App) loadEmoji(query string) {
	a.call(func(ctx context.Context) error {
		resp, err := a.vm.SearchEmoji(ctx, query)
		if err != nil {
			return err
		}
		a.app.QueueUpdateDraw(func() { a.emoji.Update(resp) })
		return nil
	})
}

func (a *App) showForward() {
	a.call(func(ctx context.Context) error {
		cands, err := a.vm.ForwardCandidates(ctx)
		if err != nil {
			return err
		}
		a.app.QueueUpdateDraw(func() {
			a.forward.Update(cands)
			a.pages.Push(pageForward)
		})
		return nil
	})
}

func (a *App) showDetails() {
	v := a.vm.View()
	if v == nil {
		a.flash.Warn(model.ErrNoConversation.Error())
		return
	}
	peer := v.Peer
	a.details.Update(peer, nil)
	a.pages.Push(pageInfo)
	a.call(func(ctx context.Context) error {
		media, err := a.vm.SharedMedia(ctx)
		if err != nil {
			return err
		}
		a.app.QueueUpdateDraw(func() { a.details.Update(peer, media) })
		return nil
	})
}

func (a *App) showShare() {
	st := a.vm.Status()
	if st == nil {
		a.flash.Warn("status do daemon indisponível")
		return
	}
	a.share.Show(a.workspace, st.UserID)
	a.pages.Push(pageShare)
}

func (a *App) showProfile() {
	a.call(func(ctx context.Context) error {
		me, err := a.vm.Profile(ctx)
		if err != nil {
			return err
		}
		a.app.QueueUpdateDraw(func() {
			a.profile.Load(*me)
			a.pages.Push(pageProfile)
		})
		return nil
	})
}

// call runs fn off the UI goroutine and flashes its error.
func (a *App) call(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := fn(ctx); err != nil && a.ctx.Err() == nil {
			a.flash.Err(err)
			a.app.QueueUpdateDraw(a.render)
		}
	}()
}

// render copies view model state into every view.
func (a *App) render() {
	if st := a.vm.Status(); st != nil {
		a.info.Update(ui.WorkspaceData{
			Workspace: st.Workspace,
			User:      st.UserID,
			Status:    st.Status,
			Contacts:  len(a.vm.Contacts()),
			Messages:  st.MessageCount,
			Uptime:    time.Duration(st.UptimeMs) * time.Millisecond,
		})
	}
	status, search := a.vm.ContactFilter()
	a.contacts.Update(a.vm.Contacts(), status, search)
	if a.vm.Active() != "" {
		a.conv.Update(a.vm.View(), a.vm.Selected())
	}
	a.flashBar.Update(a.flash.Current())
}

// Run loads initial state, starts background refreshes and blocks until the
// UI exits.
func (a *App) Run() error {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if err := a.vm.LoadStatus(ctx); err != nil {
			a.flash.Err(err)
		}
		if err := a.vm.LoadContacts(ctx); err != nil {
			a.flash.Err(err)
		}
	}()
	go a.refreshLoop()
	go a.watchLoop()
	go a.typingLoop()
	defer a.cancel()
	return a.app.Run()
}

func (a *App) refreshLoop() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	lastStatus := time.Now()
	for {
		select {
		case <-a.vm.RefreshCh():
			a.app.QueueUpdateDraw(a.render)
		case now := <-tick.C:
			if now.Sub(lastStatus) >= statusEvery {
				lastStatus = now
				a.call(a.vm.LoadStatus)
			}
			a.app.QueueUpdateDraw(func() { a.flashBar.Update(a.flash.Current()) })
		case <-a.ctx.Done():
			return
		}
	}
}

// typingLoop mirrors composer input to the daemon in keystroke order.
func (a *App) typingLoop() {
	for {
		select {
		case text := <-a.typed:
			ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
			err := a.vm.SetText(ctx, text)
			cancel()
			if err != nil && !errors.Is(err, model.ErrNoConversation) && a.ctx.Err() == nil {
				a.flash.Err(err)
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// watchLoop follows daemon events, reconnecting after stream errors.
func (a *App) watchLoop() {
	for {
		err := a.vm.Watch(a.ctx)
		if a.ctx.Err() != nil {
			return
		}
		if err != nil {
			a.flash.Warn("eventos interrompidos: " + err.Error())
		}
		select {
		case <-time.After(watchBackoff):
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop shuts the UI down.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
