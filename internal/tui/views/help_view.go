package views

import (
	"fmt"

	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView lists key bindings and commands.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.Border)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetTextColor(theme.Fg)
	tv.SetTitle(" Ajuda ")
	tv.SetTitleColor(theme.Title)

	hv := &HelpView{TextView: tv, theme: theme}
	hv.render()
	return hv
}

func (hv *HelpView) Name() string { return "Ajuda" }

func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Voltar"}}
}

type helpSection struct {
	title string
	rows  [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{":", "Modo comando"},
		{"Esc", "Cancelar / voltar"},
		{"?", "Ajuda"},
		{"Ctrl-C", "Sair"},
	}},
	{"Contatos", [][2]string{
		{"Enter", "Abrir conversa"},
		{"/", "Buscar por nome"},
		{"o / f / a", "Filtrar online, offline, todos"},
		{"S", "Compartilhar meu código"},
		{"P", "Editar meu perfil"},
	}},
	{"Conversa", [][2]string{
		{"i", "Escrever (Enter envia)"},
		{"j / k", "Selecionar mensagem"},
		{"r", "Responder à selecionada"},
		{"e", "Editar a selecionada (minhas)"},
		{"x", "Apagar a selecionada (minhas)"},
		{"+", "Reagir com emoji"},
		{"g", "Ir à mensagem respondida"},
		{"F", "Encaminhar"},
		{"A", "Anexar arquivo"},
		{"c", "Descartar rascunho ou edição"},
		{"R", "Restaurar envio com falha"},
		{"d", "Detalhes e mídia"},
	}},
	{"Comandos", [][2]string{
		{":contact <nome>", "Abrir conversa"},
		{":online / :offline / :all", "Filtrar contatos"},
		{":media", "Mídia compartilhada"},
		{":emoji <busca>", "Buscar emoji"},
		{":share", "Compartilhar meu código"},
		{":profile", "Nome, status e foto"},
		{":help", "Esta tela"},
		{":quit", "Sair"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.Key)
	for _, s := range helpSections {
		_, _ = fmt.Fprintf(hv, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, r := range s.rows {
			_, _ = fmt.Fprintf(hv, "  [%s]%-28s[-:-:-] %s\n", kc, tview.Escape(r[0]), r[1])
		}
	}
}
