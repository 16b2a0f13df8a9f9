package views

import (
	"strings"

	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// ProfileStatuses are the statuses the settings form offers, in order.
var ProfileStatuses = []string{"online", "ausente", "ocupado"}

var profileStatusLabels = []string{"Online", "Ausente", "Ocupado"}

// ProfileForm holds the edited settings. Avatar is a local image path, empty
// to keep the current picture.
type ProfileForm struct {
	Name   string
	Status string
	Avatar string
}

// ProfileView edits the signed-in user's name, status and picture.
type ProfileView struct {
	*tview.Form
	theme  *ui.Theme
	name   *tview.InputField
	status *tview.DropDown
	avatar *tview.InputField
	onSave func(ProfileForm)
}

func NewProfileView(theme *ui.Theme) *ProfileView {
	pv := &ProfileView{
		Form:   tview.NewForm(),
		theme:  theme,
		name:   tview.NewInputField().SetLabel("Nome").SetFieldWidth(32),
		status: tview.NewDropDown().SetLabel("Status").SetOptions(profileStatusLabels, nil),
		avatar: tview.NewInputField().SetLabel("Foto (arquivo)").SetFieldWidth(48),
	}
	pv.status.SetCurrentOption(0)
	pv.AddFormItem(pv.name).
		AddFormItem(pv.status).
		AddFormItem(pv.avatar).
		AddButton("Salvar", func() {
			if pv.onSave != nil {
				pv.onSave(pv.Values())
			}
		})
	pv.SetBorder(true)
	pv.SetBorderColor(theme.Border)
	pv.SetBackgroundColor(theme.Bg)
	pv.SetTitle(" Configurações ")
	pv.SetTitleColor(theme.Title)
	pv.SetLabelColor(theme.Key)
	pv.SetFieldBackgroundColor(theme.CursorBg)
	pv.SetFieldTextColor(theme.Fg)
	pv.SetButtonBackgroundColor(theme.CursorBg)
	pv.SetButtonTextColor(theme.CursorFg)
	return pv
}

func (pv *ProfileView) Name() string { return "Configurações" }

func (pv *ProfileView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Próximo campo"},
		{Key: "Enter", Description: "Salvar"},
		{Key: "Esc", Description: "Cancelar"},
	}
}

// SetOnSave registers the callback run by the save button.
func (pv *ProfileView) SetOnSave(fn func(ProfileForm)) { pv.onSave = fn }

// Load fills the form from the stored profile.
func (pv *ProfileView) Load(me rpc.Contact) {
	pv.name.SetText(me.Name)
	pv.status.SetCurrentOption(statusIndex(me.Status))
	pv.avatar.SetText("")
	title := " Configurações "
	if me.PhotoURL != "" {
		title = " Configurações · foto: " + tview.Escape(me.PhotoURL) + " "
	}
	pv.SetTitle(title)
	pv.SetFocus(0)
}

// Values returns the form contents.
func (pv *ProfileView) Values() ProfileForm {
	i, _ := pv.status.GetCurrentOption()
	if i < 0 {
		i = 0
	}
	return ProfileForm{
		Name:   strings.TrimSpace(pv.name.GetText()),
		Status: ProfileStatuses[i],
		Avatar: strings.TrimSpace(pv.avatar.GetText()),
	}
}

func statusIndex(status string) int {
	for i, s := range ProfileStatuses {
		if s == status {
			return i
		}
	}
	return 0
}
