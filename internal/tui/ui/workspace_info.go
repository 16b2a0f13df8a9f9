package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// WorkspaceData is what the header shows about the daemon.
type WorkspaceData struct {
	Workspace string
	User      string
	Status    string
	Contacts  int
	Messages  int
	Uptime    time.Duration
}

// WorkspaceInfo renders WorkspaceData as a label/value block.
type WorkspaceInfo struct {
	*tview.TextView
	theme *Theme
}

func NewWorkspaceInfo(theme *Theme) *WorkspaceInfo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetBorderPadding(0, 0, 1, 1)
	return &WorkspaceInfo{TextView: tv, theme: theme}
}

func (wi *WorkspaceInfo) Update(d WorkspaceData) {
	wi.Clear()
	label, value := Tag(wi.theme.Fg), Tag(wi.theme.Counter)
	rows := []struct{ k, v string }{
		{"Workspace", d.Workspace},
		{"Usuário", d.User},
		{"Status", d.Status},
		{"Contatos", fmt.Sprint(d.Contacts)},
		{"Mensagens", fmt.Sprint(d.Messages)},
		{"Ativo há", Uptime(d.Uptime)},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(wi, "[%s::b]%-10s[-:-:-] [%s]%s[-]\n", label, r.k+":", value, tview.Escape(r.v))
	}
}

// Uptime formats d as hours and minutes.
func Uptime(d time.Duration) string {
	h, m := int(d.Hours()), int(d.Minutes())%60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
