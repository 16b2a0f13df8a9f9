package views

import (
	"fmt"
	"time"

	"github.com/matheus3301/conversa/internal/rpc"
	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactInfo shows the peer's profile and the media shared with them.
type ContactInfo struct {
	*tview.TextView
	theme *ui.Theme
}

func NewContactInfo(theme *ui.Theme) *ContactInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.Border)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetTextColor(theme.Fg)
	tv.SetTitle(" Detalhes ")
	tv.SetTitleColor(theme.Title)
	return &ContactInfo{TextView: tv, theme: theme}
}

func (ci *ContactInfo) Name() string { return "Detalhes" }

func (ci *ContactInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Voltar"}}
}

// Update renders peer and media. media may be nil while loading.
func (ci *ContactInfo) Update(peer rpc.Contact, media *rpc.SharedMediaResponse) {
	ci.Clear()
	label := ui.Tag(ci.theme.Key)
	_, _ = fmt.Fprintf(ci, "\n  [%s::b]Nome:[-:-:-]    %s\n", label, tview.Escape(sanitizeForTerminal(peer.Name)))
	_, _ = fmt.Fprintf(ci, "  [%s::b]ID:[-:-:-]      %s\n", label, tview.Escape(peer.ID))
	_, _ = fmt.Fprintf(ci, "  [%s::b]Status:[-:-:-]  %s\n", label, peer.Status)
	if peer.PhotoURL != "" {
		_, _ = fmt.Fprintf(ci, "  [%s::b]Foto:[-:-:-]    %s\n", label, tview.Escape(peer.PhotoURL))
	}
	if media == nil {
		_, _ = fmt.Fprint(ci, "\n  [::d]carregando mídia...[-:-:-]\n")
		return
	}
	ci.section("Imagens", media.Images)
	ci.section("Áudios", media.Audios)
	ci.section("Anexos", media.Attachments)
}

func (ci *ContactInfo) section(title string, items []rpc.MediaItem) {
	_, _ = fmt.Fprintf(ci, "\n  [%s::b]%s (%d)[-:-:-]\n", ui.Tag(ci.theme.Title), title, len(items))
	for _, it := range items {
		when := time.UnixMilli(it.CreatedAtUnixMs).Format("02/01/2006 15:04")
		name := it.Name
		if it.Class != "" {
			name += " " + tview.Escape("["+it.Class+"]")
		}
		_, _ = fmt.Fprintf(ci, "    %s  %s\n", when, name)
		if it.Caption != "" {
			_, _ = fmt.Fprintf(ci, "      %s\n", markupTags(it.Caption))
		}
	}
}
