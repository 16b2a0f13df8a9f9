package views

import (
	"strings"

	"github.com/matheus3301/conversa/internal/content"
	"github.com/rivo/tview"
)

// markupTags converts message markup to tview color tags.
func markupTags(body string) string {
	var sb strings.Builder
	for _, seg := range content.Segments(body) {
		text := tview.Escape(sanitizeForTerminal(seg.Text))
		attrs := segmentAttrs(seg)
		if seg.Color == "" && attrs == "" {
			sb.WriteString(text)
			continue
		}
		fg := "-"
		if seg.Color != "" {
			fg = expandHex(seg.Color)
		}
		if attrs == "" {
			attrs = "-"
		}
		sb.WriteString("[" + fg + "::" + attrs + "]" + text + "[-:-:-]")
	}
	return sb.String()
}

func segmentAttrs(seg content.Segment) string {
	var attrs string
	if seg.Bold {
		attrs += "b"
	}
	if seg.Italic {
		attrs += "i"
	}
	if seg.Underline {
		attrs += "u"
	}
	return attrs
}

// expandHex turns #abc into #aabbcc; tview only parses the long form.
func expandHex(c string) string {
	if len(c) != 4 {
		return strings.ToLower(c)
	}
	var sb strings.Builder
	sb.WriteByte('#')
	for _, ch := range strings.ToLower(c[1:]) {
		sb.WriteRune(ch)
		sb.WriteRune(ch)
	}
	return sb.String()
}
