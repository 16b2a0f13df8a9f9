package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/conversa/internal/tui/ui"
	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"
)

// ShareView shows the user's id as a QR code so a contact can add them.
type ShareView struct {
	*tview.TextView
	theme *ui.Theme
}

func NewShareView(theme *ui.Theme) *ShareView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.Border)
	tv.SetBackgroundColor(theme.Bg)
	tv.SetTextColor(theme.Fg)
	tv.SetTitle(" Compartilhar ")
	tv.SetTitleColor(theme.Title)
	return &ShareView{TextView: tv, theme: theme}
}

func (sv *ShareView) Name() string { return "Compartilhar" }

func (sv *ShareView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Voltar"}}
}

// Show renders the QR code for userID.
func (sv *ShareView) Show(workspace, userID string) {
	sv.Clear()
	_, _ = fmt.Fprintf(sv, "\n  Escaneie para conversar com [::b]%s[-:-:-]:\n\n%s\n  [::d]conversa:%s/%s[-:-:-]",
		tview.Escape(userID), renderQR(ShareURI(workspace, userID)), tview.Escape(workspace), tview.Escape(userID))
}

// ShareURI is the payload encoded in the share QR code.
func ShareURI(workspace, userID string) string {
	return "conversa:" + workspace + "/" + userID
}

// renderQR draws content as a QR code with half-block characters, two
// bitmap rows per line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "  (falha ao gerar QR: " + err.Error() + ")"
	}
	bitmap := qr.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
