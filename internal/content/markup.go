package content

import (
	"html"
	"regexp"
	"strings"
)

var (
	colorToken  = regexp.MustCompile(`\|COLOR:(#[0-9a-fA-F]{6}|#[0-9a-fA-F]{3})\||\|ENDCOLOR\|`)
	inlineToken = regexp.MustCompile(`\*([^*|]+)\*|~([^~|]+)~|_([^_|]+)_`)
)

// Segment is a run of text sharing one style.
type Segment struct {
	Text      string
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
}

type style struct {
	bold, italic, underline bool
}

// node is one element of a parsed markup string. Exactly one of text, open,
// close or inline is set.
type node struct {
	text   string
	open   string // color opener
	close  bool
	inline *inlineNode
}

type inlineNode struct {
	tag      string // strong, em or u
	children []node
}

// parse tokenizes color spans with a stack. Unmatched closers are dropped and
// openers still pending at the end are closed.
func parse(text string) []node {
	var (
		out   []node
		depth int
		pos   int
	)
	for _, loc := range colorToken.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > pos {
			out = append(out, parseInline(text[pos:loc[0]])...)
		}
		pos = loc[1]
		if loc[2] >= 0 {
			out = append(out, node{open: text[loc[2]:loc[3]]})
			depth++
			continue
		}
		if depth == 0 {
			continue
		}
		out = append(out, node{close: true})
		depth--
	}
	if pos < len(text) {
		out = append(out, parseInline(text[pos:])...)
	}
	for ; depth > 0; depth-- {
		out = append(out, node{close: true})
	}
	return out
}

func parseInline(text string) []node {
	var out []node
	for text != "" {
		loc := inlineToken.FindStringSubmatchIndex(text)
		if loc == nil {
			out = append(out, node{text: text})
			break
		}
		if loc[0] > 0 {
			out = append(out, node{text: text[:loc[0]]})
		}
		var tag string
		var inner string
		switch {
		case loc[2] >= 0:
			tag, inner = "strong", text[loc[2]:loc[3]]
		case loc[4] >= 0:
			tag, inner = "em", text[loc[4]:loc[5]]
		default:
			tag, inner = "u", text[loc[6]:loc[7]]
		}
		out = append(out, node{inline: &inlineNode{tag: tag, children: parseInline(inner)}})
		text = text[loc[1]:]
	}
	return out
}

// RenderHTML renders markup to HTML. All literal text is escaped.
func RenderHTML(text string) string {
	var sb strings.Builder
	writeHTML(&sb, parse(text))
	return sb.String()
}

func writeHTML(sb *strings.Builder, nodes []node) {
	for _, n := range nodes {
		switch {
		case n.open != "":
			sb.WriteString(`<span style="color:`)
			sb.WriteString(n.open)
			sb.WriteString(`">`)
		case n.close:
			sb.WriteString("</span>")
		case n.inline != nil:
			sb.WriteString("<" + n.inline.tag + ">")
			writeHTML(sb, n.inline.children)
			sb.WriteString("</" + n.inline.tag + ">")
		default:
			sb.WriteString(html.EscapeString(n.text))
		}
	}
}

// Segments flattens markup into styled runs for renderers without HTML.
func Segments(text string) []Segment {
	var (
		out    []Segment
		colors []string
	)
	var walk func(nodes []node, st style)
	walk = func(nodes []node, st style) {
		for _, n := range nodes {
			switch {
			case n.open != "":
				colors = append(colors, n.open)
			case n.close:
				colors = colors[:len(colors)-1]
			case n.inline != nil:
				next := st
				switch n.inline.tag {
				case "strong":
					next.bold = true
				case "em":
					next.italic = true
				case "u":
					next.underline = true
				}
				walk(n.inline.children, next)
			default:
				seg := Segment{Text: n.text, Bold: st.bold, Italic: st.italic, Underline: st.underline}
				if len(colors) > 0 {
					seg.Color = colors[len(colors)-1]
				}
				out = append(out, seg)
			}
		}
	}
	walk(parse(text), style{})
	return out
}

// Plain strips all markup tokens.
func Plain(text string) string {
	var sb strings.Builder
	for _, s := range Segments(text) {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
